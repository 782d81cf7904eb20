package services_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/presence"
	"github.com/thereayou/slack-lite/internal/services"
)

var _ = Describe("PresenceService", func() {
	var (
		ctx   context.Context
		db    *database.Database
		store *presence.Store
		svc   services.PresenceService
		user  *models.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()

		mr := miniredis.RunT(GinkgoT())
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(client.Close)
		store = presence.NewStore(client)

		svc = services.NewPresenceService(db, store, 7*time.Second, time.Second)
		user = createUser(db, "user")
	})

	It("reports a user online right after a heartbeat", func() {
		Expect(svc.Heartbeat(ctx, user.ID)).To(Succeed())

		seen, err := svc.LastSeen(ctx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).NotTo(BeNil())
		Expect(*seen).To(BeTemporally("~", time.Now(), time.Second))

		p, err := svc.User(ctx, user.ID, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Online).To(BeTrue())
		Expect(p.Name).To(Equal("user"))
	})

	It("reports a user offline once the window has passed", func() {
		Expect(store.Touch(ctx, user.ID, time.Now().Add(-8*time.Second))).To(Succeed())

		p, err := svc.User(ctx, user.ID, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.LastSeen).NotTo(BeNil())
		Expect(p.Online).To(BeFalse())
	})

	It("returns no last-seen time for users never seen", func() {
		seen, err := svc.LastSeen(ctx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(BeNil())

		p, err := svc.User(ctx, user.ID, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.LastSeen).To(BeNil())
		Expect(p.Online).To(BeFalse())
	})

	It("rejects anonymous heartbeats", func() {
		Expect(svc.Heartbeat(ctx, uuid.Nil)).To(MatchError(services.ErrNotAuthenticated))
	})

	It("returns nil for anonymous lookups and unknown users", func() {
		p, err := svc.User(ctx, uuid.Nil, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeNil())

		p, err = svc.User(ctx, user.ID, uuid.New())
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeNil())
	})

	It("lists presence for every member of the workspace", func() {
		ws, err := services.NewWorkspaceService(db, nil, nil, "").Create(ctx, user.ID, "Acme")
		Expect(err).NotTo(HaveOccurred())
		idle := createUser(db, "idle")
		addMember(db, ws.ID, idle.ID, models.RoleMember)
		Expect(svc.Heartbeat(ctx, user.ID)).To(Succeed())

		list, err := svc.Workspace(ctx, idle.ID, ws.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		online := map[uuid.UUID]bool{}
		for _, p := range list {
			online[p.ID] = p.Online
		}
		Expect(online).To(Equal(map[uuid.UUID]bool{user.ID: true, idle.ID: false}))
	})

	It("keeps a user online until the keep-alive is cancelled", func() {
		keepCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			svc.KeepAlive(keepCtx, user.ID)
		}()

		Eventually(func() *time.Time {
			seen, _ := svc.LastSeen(ctx, user.ID)
			return seen
		}).ShouldNot(BeNil())

		cancel()
		Eventually(done).Should(BeClosed())
	})
})
