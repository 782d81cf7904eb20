package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/thereayou/slack-lite/internal/services"
	ws "github.com/thereayou/slack-lite/internal/websocket"
)

var errSubscriptionFailed = errors.New("subscription failed")

// SubscriptionHandler handles subscribe and unsubscribe frames, checking
// each subscription against the caller's read access.
type SubscriptionHandler struct {
	realtime services.RealtimeService
	hub      *ws.Hub
}

func NewSubscriptionHandler(realtime services.RealtimeService, hub *ws.Hub) *SubscriptionHandler {
	return &SubscriptionHandler{realtime: realtime, hub: hub}
}

func (h *SubscriptionHandler) HandleFrame(ctx context.Context, client *ws.Client, msg *ws.Message) error {
	switch msg.Type {
	case ws.TypeSubscribe:
		return h.subscribe(ctx, client, msg.Topic)
	case ws.TypeUnsubscribe:
		h.hub.LeaveRoom(client, msg.Topic)
		return client.SendMessage(ws.TypeUnsubscribed, msg.Topic, nil)
	default:
		slog.DebugContext(ctx, "unknown websocket frame", "type", msg.Type)
		return ws.ErrInvalidMessage
	}
}

func (h *SubscriptionHandler) subscribe(ctx context.Context, client *ws.Client, topic string) error {
	if topic == "" {
		return ws.ErrInvalidMessage
	}

	canonical, ok, err := h.realtime.CanSubscribe(ctx, client.UserID, topic)
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusInternalServerError {
			slog.ErrorContext(ctx, "subscription check failed", "error", err, "topic", topic)
			return errSubscriptionFailed
		}
		return err
	}
	if !ok {
		return ws.ErrUnauthorized
	}

	h.hub.JoinRoom(client, canonical)
	return client.SendMessage(ws.TypeSubscribed, canonical, nil)
}
