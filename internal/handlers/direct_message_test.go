package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thereayou/slack-lite/internal/handlers"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

var _ = Describe("DirectMessageHandler", func() {
	var (
		router      *gin.Engine
		svc         *mockDirectMessageService
		callerID    uuid.UUID
		workspaceID uuid.UUID
		otherID     uuid.UUID
		path        string
	)

	BeforeEach(func() {
		callerID = uuid.New()
		workspaceID = uuid.New()
		otherID = uuid.New()
		svc = &mockDirectMessageService{}
		authn := authWith(callerID)
		path = "/workspaces/" + workspaceID.String() + "/dms/" + otherID.String()

		h := handlers.NewDirectMessageHandler(svc)
		router = gin.New()
		router.GET("/workspaces/:id/dms/:userId", middleware.OptionalAuth(authn), h.List)
		router.POST("/workspaces/:id/dms/:userId", middleware.RequireAuth(authn), h.Send)
		router.POST("/workspaces/:id/dms/:userId/read", middleware.RequireAuth(authn), h.MarkRead)
		router.PATCH("/dms/:id", middleware.RequireAuth(authn), h.Edit)
		router.DELETE("/dms/:id", middleware.RequireAuth(authn), h.Delete)
	})

	It("sends to the recipient named in the path", func() {
		svc.sendFn = func(_ context.Context, caller, ws, recipient uuid.UUID, content string) (*services.DirectMessageView, error) {
			Expect(caller).To(Equal(callerID))
			Expect(ws).To(Equal(workspaceID))
			Expect(recipient).To(Equal(otherID))
			return &services.DirectMessageView{ID: uuid.New(), SenderID: caller, RecipientID: recipient, Content: content}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodPost, path, map[string]string{"content": "hi"}, true))

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(decode[map[string]any](w)).To(HaveKeyWithValue("content", "hi"))
	})

	It("answers 204 when the message was empty", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodPost, path, map[string]string{"content": "  "}, true))

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Body.Len()).To(BeZero())
	})

	It("returns an empty conversation to anonymous callers", func() {
		var seen uuid.UUID
		svc.listFn = func(_ context.Context, caller, _, _ uuid.UUID) ([]services.DirectMessageView, error) {
			seen = caller
			return []services.DirectMessageView{}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodGet, path, nil, false))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("[]"))
		Expect(seen).To(Equal(uuid.Nil))
	})

	It("reports how many messages were marked read", func() {
		svc.markReadFn = func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (int64, error) {
			return 3, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodPost, path+"/read", nil, true))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode[map[string]int](w)).To(HaveKeyWithValue("updated", 3))
	})

	It("returns 400 for a malformed recipient id", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodPost, "/workspaces/"+workspaceID.String()+"/dms/bob",
			map[string]string{"content": "hi"}, true))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	DescribeTable("maps edit and delete errors",
		func(err error, want int) {
			svc.editFn = func(context.Context, uuid.UUID, uuid.UUID, string) (*services.DirectMessageView, error) {
				return nil, err
			}
			svc.deleteFn = func(context.Context, uuid.UUID, uuid.UUID) error {
				return err
			}
			id := uuid.NewString()

			edit := httptest.NewRecorder()
			router.ServeHTTP(edit, newRequest(http.MethodPatch, "/dms/"+id, map[string]string{"content": "x"}, true))
			Expect(edit.Code).To(Equal(want))

			del := httptest.NewRecorder()
			router.ServeHTTP(del, newRequest(http.MethodDelete, "/dms/"+id, nil, true))
			Expect(del.Code).To(Equal(want))
		},
		Entry("recipient acting on the sender's message", services.ErrNotAuthorized, http.StatusForbidden),
		Entry("outsider or unknown message", services.ErrNotFound, http.StatusNotFound),
		Entry("already deleted", services.ErrMessageDeleted, http.StatusConflict),
	)
})
