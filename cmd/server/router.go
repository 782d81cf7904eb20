package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/thereayou/slack-lite/internal/config"
	"github.com/thereayou/slack-lite/internal/handlers"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
	ws "github.com/thereayou/slack-lite/internal/websocket"
)

type healthChecks map[string]func(context.Context) error

func setupRouter(cfg config.Config, svcs *services.Services, hub *ws.Hub, checks healthChecks) *gin.Engine {
	router := gin.New()

	// OTel opens the span first so recovery and request logs carry the trace.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	router.Use(middleware.RateLimit(uint(cfg.RateLimit.Requests), cfg.RateLimit.Per))

	router.GET("/health", health(checks))

	subscriptions := handlers.NewSubscriptionHandler(svcs.Realtime, hub)
	wsH := handlers.NewWebSocketHandler(hub, subscriptions, svcs.Presence, cfg.CORS.AllowOrigins)
	router.GET("/ws", middleware.WSAuth(svcs.Auth), wsH.HandleWebSocket)

	APIEndpoints(router, svcs, hub)
	return router
}

func APIEndpoints(r *gin.Engine, svcs *services.Services, hub *ws.Hub) {
	requireAuth := middleware.RequireAuth(svcs.Auth)
	optionalAuth := middleware.OptionalAuth(svcs.Auth)

	authH := handlers.NewAuthHandler(svcs.Auth, hub)
	userH := handlers.NewUserHandler(svcs.Auth, svcs.Presence)
	workspaceH := handlers.NewWorkspaceHandler(svcs.Workspaces, svcs.Presence)
	channelH := handlers.NewChannelHandler(svcs.Channels)
	messageH := handlers.NewMessageHandler(svcs.Messages)
	dmH := handlers.NewDirectMessageHandler(svcs.DirectMessages)
	presenceH := handlers.NewPresenceHandler(svcs.Presence)
	uploadH := handlers.NewUploadHandler(svcs.Uploads)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", requireAuth, authH.Logout)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/users/me", optionalAuth, userH.Me)
		api.GET("/users/:id", optionalAuth, userH.Get)

		api.POST("/workspaces", requireAuth, workspaceH.Create)
		api.GET("/workspaces", optionalAuth, workspaceH.List)
		api.GET("/workspaces/:id", optionalAuth, workspaceH.Get)
		api.PATCH("/workspaces/:id", requireAuth, workspaceH.Update)
		api.POST("/workspaces/:id/join", requireAuth, workspaceH.Join)
		api.POST("/workspaces/:id/join-code", requireAuth, workspaceH.RegenerateJoinCode)
		api.POST("/workspaces/:id/invites", requireAuth, workspaceH.Invite)
		api.GET("/workspaces/:id/presence", optionalAuth, workspaceH.Presence)

		api.POST("/workspaces/:id/channels", requireAuth, channelH.Create)
		api.GET("/workspaces/:id/channels", optionalAuth, channelH.List)
		api.GET("/channels/:id", optionalAuth, channelH.Get)
		api.GET("/channels/:id/members", optionalAuth, channelH.Members)
		api.POST("/channels/:id/members", requireAuth, channelH.AddMember)

		api.GET("/channels/:id/messages", optionalAuth, messageH.List)
		api.POST("/channels/:id/messages", requireAuth, messageH.Send)
		api.PATCH("/messages/:id", requireAuth, messageH.Edit)
		api.DELETE("/messages/:id", requireAuth, messageH.Delete)

		api.GET("/workspaces/:id/dms/:userId", optionalAuth, dmH.List)
		api.POST("/workspaces/:id/dms/:userId", requireAuth, dmH.Send)
		api.POST("/workspaces/:id/dms/:userId/read", requireAuth, dmH.MarkRead)
		api.PATCH("/dms/:id", requireAuth, dmH.Edit)
		api.DELETE("/dms/:id", requireAuth, dmH.Delete)

		api.POST("/presence/heartbeat", requireAuth, presenceH.Heartbeat)
		api.GET("/presence/me", optionalAuth, presenceH.Me)

		api.POST("/uploads", requireAuth, uploadH.Create)
		api.GET("/uploads/:storageId", requireAuth, uploadH.Get)
	}
}

func health(checks healthChecks) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, result)
	}
}
