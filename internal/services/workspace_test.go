package services_test

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/services"
)

var _ = Describe("WorkspaceService", func() {
	var (
		ctx       context.Context
		db        *database.Database
		mailer    *mockMailer
		publisher *mockPublisher
		svc       services.WorkspaceService
		owner     *models.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()
		mailer = &mockMailer{}
		publisher = &mockPublisher{}
		svc = services.NewWorkspaceService(db, mailer, publisher, "https://chat.example.com/")
		owner = createUser(db, "owner")
	})

	Describe("Create", func() {
		It("creates exactly one admin membership for the creator", func() {
			ws, err := svc.Create(ctx, owner.ID, "  Acme  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.Name).To(Equal("Acme"))
			Expect(ws.CreatedBy).To(Equal(owner.ID))

			members, err := db.GetWorkspaceMembers(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))
			Expect(members[0].UserID).To(Equal(owner.ID))
			Expect(members[0].Role).To(Equal(models.RoleAdmin))
		})

		It("generates a six character uppercase alphanumeric join code", func() {
			ws, err := svc.Create(ctx, owner.ID, "Acme")
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.JoinCode).To(MatchRegexp(`^[A-Z0-9]{6}$`))
		})

		It("rejects anonymous callers", func() {
			_, err := svc.Create(ctx, uuid.Nil, "Acme")
			Expect(err).To(MatchError(services.ErrNotAuthenticated))
		})

		It("rejects a blank name", func() {
			_, err := svc.Create(ctx, owner.ID, "   ")
			Expect(errors.Is(err, services.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		var ws *models.Workspace

		BeforeEach(func() {
			var err error
			ws, err = svc.Create(ctx, owner.ID, "Acme")
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the workspace with resolved members for a member", func() {
			detail, err := svc.Get(ctx, owner.ID, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail).NotTo(BeNil())
			Expect(detail.Name).To(Equal("Acme"))
			Expect(detail.Role).To(Equal(models.RoleAdmin))
			Expect(detail.Members).To(HaveLen(1))
			Expect(detail.Members[0].Name).To(Equal("owner"))
			Expect(detail.Members[0].Role).To(Equal(models.RoleAdmin))
		})

		It("returns nil for anonymous callers", func() {
			detail, err := svc.Get(ctx, uuid.Nil, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail).To(BeNil())
		})

		It("returns nil for non-members", func() {
			stranger := createUser(db, "stranger")
			detail, err := svc.Get(ctx, stranger.ID, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail).To(BeNil())
		})

		It("returns nil for unknown workspaces", func() {
			detail, err := svc.Get(ctx, owner.ID, uuid.New())
			Expect(err).NotTo(HaveOccurred())
			Expect(detail).To(BeNil())
		})
	})

	Describe("List", func() {
		It("returns only workspaces the caller belongs to", func() {
			_, err := svc.Create(ctx, owner.ID, "Mine")
			Expect(err).NotTo(HaveOccurred())
			other := createUser(db, "other")
			_, err = svc.Create(ctx, other.ID, "Theirs")
			Expect(err).NotTo(HaveOccurred())

			list, err := svc.List(ctx, owner.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Name).To(Equal("Mine"))
		})

		It("returns an empty list for anonymous callers", func() {
			list, err := svc.List(ctx, uuid.Nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).NotTo(BeNil())
			Expect(list).To(BeEmpty())
		})
	})

	Describe("Join", func() {
		var (
			ws     *models.Workspace
			joiner *models.User
		)

		BeforeEach(func() {
			var err error
			ws, err = svc.Create(ctx, owner.ID, "Acme")
			Expect(err).NotTo(HaveOccurred())
			joiner = createUser(db, "joiner")
		})

		It("adds exactly one member row with the member role", func() {
			member, err := svc.Join(ctx, joiner.ID, ws.ID, ws.JoinCode)
			Expect(err).NotTo(HaveOccurred())
			Expect(member.Role).To(Equal(models.RoleMember))

			members, err := db.GetWorkspaceMembers(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(2))
			Expect(publisher.Names()).To(ContainElement(services.EventMemberJoined))
		})

		It("accepts a lowercase code with surrounding whitespace", func() {
			_, err := svc.Join(ctx, joiner.ID, ws.ID, "  "+strings.ToLower(ws.JoinCode)+" ")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a second join as already a member", func() {
			_, err := svc.Join(ctx, joiner.ID, ws.ID, ws.JoinCode)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Join(ctx, joiner.ID, ws.ID, ws.JoinCode)
			Expect(err).To(MatchError(services.ErrAlreadyMember))

			members, err := db.GetWorkspaceMembers(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(ContainElement(HaveField("UserID", joiner.ID)))
			Expect(members).To(HaveLen(2))
		})

		It("rejects a wrong code", func() {
			_, err := svc.Join(ctx, joiner.ID, ws.ID, "ZZZZZZ")
			Expect(errors.Is(err, services.ErrValidation)).To(BeTrue())
		})

		It("reports unknown workspaces as not found", func() {
			_, err := svc.Join(ctx, joiner.ID, uuid.New(), ws.JoinCode)
			Expect(err).To(MatchError(services.ErrNotFound))
		})

		It("requires a session", func() {
			_, err := svc.Join(ctx, uuid.Nil, ws.ID, ws.JoinCode)
			Expect(err).To(MatchError(services.ErrNotAuthenticated))
		})
	})

	Describe("Update and RegenerateJoinCode", func() {
		var (
			ws     *models.Workspace
			member *models.User
		)

		BeforeEach(func() {
			var err error
			ws, err = svc.Create(ctx, owner.ID, "Acme")
			Expect(err).NotTo(HaveOccurred())
			member = createUser(db, "member")
			addMember(db, ws.ID, member.ID, models.RoleMember)
		})

		It("lets an admin rename the workspace", func() {
			name, desc := "Acme Corp", "widgets"
			updated, err := svc.Update(ctx, owner.ID, ws.ID, services.UpdateWorkspaceInput{Name: &name, Description: &desc})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Acme Corp"))
			Expect(updated.Description).To(Equal("widgets"))
		})

		It("forbids members from updating", func() {
			name := "Hijacked"
			_, err := svc.Update(ctx, member.ID, ws.ID, services.UpdateWorkspaceInput{Name: &name})
			Expect(err).To(MatchError(services.ErrNotAuthorized))
		})

		It("issues a new code that replaces the old one", func() {
			code, err := svc.RegenerateJoinCode(ctx, owner.ID, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(MatchRegexp(`^[A-Z0-9]{6}$`))

			stored, err := db.GetWorkspace(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.JoinCode).To(Equal(code))
		})

		It("forbids members from regenerating the code", func() {
			_, err := svc.RegenerateJoinCode(ctx, member.ID, ws.ID)
			Expect(err).To(MatchError(services.ErrNotAuthorized))
		})
	})

	Describe("Invite", func() {
		var ws *models.Workspace

		BeforeEach(func() {
			var err error
			ws, err = svc.Create(ctx, owner.ID, "Acme")
			Expect(err).NotTo(HaveOccurred())
		})

		It("sends an invite link carrying the workspace id and join code", func() {
			var gotTo, gotWorkspace, gotInviter, gotLink string
			mailer.sendInviteFn = func(to, workspaceName, inviterName, link string) error {
				gotTo, gotWorkspace, gotInviter, gotLink = to, workspaceName, inviterName, link
				return nil
			}

			Expect(svc.Invite(ctx, owner.ID, ws.ID, "friend@example.com")).To(Succeed())
			Expect(gotTo).To(Equal("friend@example.com"))
			Expect(gotWorkspace).To(Equal("Acme"))
			Expect(gotInviter).To(Equal("owner"))
			Expect(gotLink).To(HavePrefix("https://chat.example.com/?"))
			Expect(gotLink).To(ContainSubstring("workspaceId=" + ws.ID.String()))
			Expect(gotLink).To(ContainSubstring("joinCode=" + ws.JoinCode))
		})

		It("maps delivery failures to ErrEmailDelivery", func() {
			mailer.sendInviteFn = func(string, string, string, string) error {
				return errors.New("smtp down")
			}
			err := svc.Invite(ctx, owner.ID, ws.ID, "friend@example.com")
			Expect(errors.Is(err, services.ErrEmailDelivery)).To(BeTrue())
		})

		It("rejects an invalid address", func() {
			err := svc.Invite(ctx, owner.ID, ws.ID, "not-an-email")
			Expect(errors.Is(err, services.ErrValidation)).To(BeTrue())
		})

		It("requires the caller to be a member", func() {
			stranger := createUser(db, "stranger")
			err := svc.Invite(ctx, stranger.ID, ws.ID, "friend@example.com")
			Expect(err).To(MatchError(services.ErrNotAuthorized))
		})
	})
})
