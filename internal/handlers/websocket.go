package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thereayou/slack-lite/internal/logger"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
	ws "github.com/thereayou/slack-lite/internal/websocket"
)

// WebSocketHandler upgrades authenticated requests and keeps the caller's
// presence fresh for as long as the socket stays open.
type WebSocketHandler struct {
	hub           *ws.Hub
	subscriptions *SubscriptionHandler
	presence      services.PresenceService
	upgrader      websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, subscriptions *SubscriptionHandler, presence services.PresenceService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		subscriptions: subscriptions,
		presence:      presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.CallerID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	client.Session = middleware.Token(c)
	h.hub.Register(client)

	// The request context ends once the upgrade handler returns.
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "websocket"})

	go h.presence.KeepAlive(ctx, userID)
	go client.WritePump()
	go func() {
		defer cancel()
		client.ReadPump(ctx, h.subscriptions)
	}()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
