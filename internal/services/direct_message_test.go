package services_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/services"
)

var _ = Describe("DirectMessageService", func() {
	var (
		ctx       context.Context
		db        *database.Database
		publisher *mockPublisher
		svc       services.DirectMessageService
		alice     *models.User
		bob       *models.User
		ws        *models.Workspace
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()
		publisher = &mockPublisher{}
		svc = services.NewDirectMessageService(db, publisher)

		alice = createUser(db, "alice")
		bob = createUser(db, "bob")
		var err error
		ws, err = services.NewWorkspaceService(db, nil, nil, "").Create(ctx, alice.ID, "Acme")
		Expect(err).NotTo(HaveOccurred())
		addMember(db, ws.ID, bob.ID, models.RoleMember)
	})

	It("returns the same conversation to both participants", func() {
		_, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "hi bob")
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Send(ctx, bob.ID, ws.ID, alice.ID, "hi alice")
		Expect(err).NotTo(HaveOccurred())

		fromAlice, err := svc.List(ctx, alice.ID, ws.ID, bob.ID)
		Expect(err).NotTo(HaveOccurred())
		fromBob, err := svc.List(ctx, bob.ID, ws.ID, alice.ID)
		Expect(err).NotTo(HaveOccurred())

		Expect(fromAlice).To(HaveLen(2))
		Expect(fromBob).To(Equal(fromAlice))
	})

	It("enriches messages with sender and recipient records", func() {
		sent, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(sent.Read).To(BeFalse())
		Expect(sent.Sender).NotTo(BeNil())
		Expect(sent.Sender.Name).To(Equal("alice"))
		Expect(sent.Recipient).NotTo(BeNil())
		Expect(sent.Recipient.Name).To(Equal("bob"))

		events := publisher.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Topic).To(Equal(services.ConversationTopic(ws.ID, bob.ID, alice.ID)))
	})

	It("treats empty content as a no-op", func() {
		sent, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(BeNil())
	})

	It("requires the recipient to be a workspace member", func() {
		carol := createUser(db, "carol")
		_, err := svc.Send(ctx, alice.ID, ws.ID, carol.ID, "hi")
		Expect(errors.Is(err, services.ErrValidation)).To(BeTrue())
	})

	It("requires the sender to be a workspace member", func() {
		carol := createUser(db, "carol")
		_, err := svc.Send(ctx, carol.ID, ws.ID, alice.ID, "hi")
		Expect(err).To(MatchError(services.ErrNotAuthorized))
	})

	It("returns an empty conversation to anonymous callers", func() {
		list, err := svc.List(ctx, uuid.Nil, ws.ID, bob.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).NotTo(BeNil())
		Expect(list).To(BeEmpty())
	})

	It("hides a conversation's messages from users outside it", func() {
		sent, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "private")
		Expect(err).NotTo(HaveOccurred())

		carol := createUser(db, "carol")
		addMember(db, ws.ID, carol.ID, models.RoleMember)

		_, err = svc.Edit(ctx, carol.ID, sent.ID, "tampered")
		Expect(err).To(MatchError(services.ErrNotFound))
		Expect(svc.Delete(ctx, carol.ID, sent.ID)).To(MatchError(services.ErrNotFound))

		list, err := svc.List(ctx, alice.ID, ws.ID, bob.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(ConsistOf(HaveField("Content", "private")))
	})

	It("lets only the sender edit or delete", func() {
		sent, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "original")
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Edit(ctx, bob.ID, sent.ID, "tampered")
		Expect(err).To(MatchError(services.ErrNotAuthorized))
		Expect(svc.Delete(ctx, bob.ID, sent.ID)).To(MatchError(services.ErrNotAuthorized))

		edited, err := svc.Edit(ctx, alice.ID, sent.ID, "edited")
		Expect(err).NotTo(HaveOccurred())
		Expect(edited.Content).To(Equal("edited"))
		Expect(edited.EditedAt).NotTo(BeNil())
	})

	It("hides the content of deleted messages", func() {
		sent, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "oops")
		Expect(err).NotTo(HaveOccurred())
		Expect(svc.Delete(ctx, alice.ID, sent.ID)).To(Succeed())
		Expect(svc.Delete(ctx, alice.ID, sent.ID)).To(MatchError(services.ErrMessageDeleted))

		list, err := svc.List(ctx, bob.ID, ws.ID, alice.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].Deleted).To(BeTrue())
		Expect(list[0].Content).To(BeEmpty())
	})

	Describe("MarkRead", func() {
		It("marks only messages the caller received from the other user", func() {
			_, err := svc.Send(ctx, alice.ID, ws.ID, bob.ID, "one")
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Send(ctx, alice.ID, ws.ID, bob.ID, "two")
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Send(ctx, bob.ID, ws.ID, alice.ID, "reply")
			Expect(err).NotTo(HaveOccurred())

			n, err := svc.MarkRead(ctx, bob.ID, ws.ID, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(2)))
			Expect(publisher.Names()).To(ContainElement(services.EventDirectMessagesRead))

			list, err := svc.List(ctx, bob.ID, ws.ID, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			for _, dm := range list {
				Expect(dm.Read).To(Equal(dm.SenderID == alice.ID))
			}

			n, err = svc.MarkRead(ctx, bob.ID, ws.ID, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})
})
