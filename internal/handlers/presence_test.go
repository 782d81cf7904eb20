package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thereayou/slack-lite/internal/handlers"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/services"
)

var _ = Describe("Presence and user handlers", func() {
	var (
		router   *gin.Engine
		presence *mockPresenceService
		authSvc  *mockAuthService
		callerID uuid.UUID
	)

	BeforeEach(func() {
		callerID = uuid.New()
		presence = &mockPresenceService{}
		authSvc = authWith(callerID)

		presenceH := handlers.NewPresenceHandler(presence)
		userH := handlers.NewUserHandler(authSvc, presence)
		router = gin.New()
		router.POST("/presence/heartbeat", middleware.RequireAuth(authSvc), presenceH.Heartbeat)
		router.GET("/presence/me", middleware.OptionalAuth(authSvc), presenceH.Me)
		router.GET("/users/me", middleware.OptionalAuth(authSvc), userH.Me)
		router.GET("/users/:id", middleware.OptionalAuth(authSvc), userH.Get)
	})

	It("records a heartbeat for the caller", func() {
		var beat uuid.UUID
		presence.heartbeatFn = func(_ context.Context, caller uuid.UUID) error {
			beat = caller
			return nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodPost, "/presence/heartbeat", nil, true))

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(beat).To(Equal(callerID))
	})

	It("requires a session for heartbeats", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodPost, "/presence/heartbeat", nil, false))

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns a null last-seen for callers never seen", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodGet, "/presence/me", nil, false))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"last_seen": null}`))
	})

	It("returns the caller's last-seen timestamp", func() {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		presence.lastSeenFn = func(context.Context, uuid.UUID) (*time.Time, error) {
			return &at, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodGet, "/presence/me", nil, true))

		Expect(w.Body.String()).To(MatchJSON(`{"last_seen": "2026-01-02T03:04:05Z"}`))
	})

	It("returns null for an anonymous current user", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodGet, "/users/me", nil, false))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("null"))
	})

	It("returns another user with presence", func() {
		userID := uuid.New()
		presence.userFn = func(_ context.Context, caller, id uuid.UUID) (*services.UserPresence, error) {
			Expect(caller).To(Equal(callerID))
			return &services.UserPresence{User: models.User{ID: id, Name: "Bob", PasswordHash: "hidden"}, Online: true}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(http.MethodGet, "/users/"+userID.String(), nil, true))

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode[map[string]any](w)
		Expect(resp).To(HaveKeyWithValue("name", "Bob"))
		Expect(resp).To(HaveKeyWithValue("online", true))
		Expect(w.Body.String()).NotTo(ContainSubstring("hidden"))
	})
})
