// Package websocket fans realtime events out to subscribed connections.
// Connections subscribe to string topics; the hub keeps the topic index.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type MessageType string

const (
	TypeSubscribe    MessageType = "subscribe"
	TypeUnsubscribe  MessageType = "unsubscribe"
	TypeSubscribed   MessageType = "subscribed"
	TypeUnsubscribed MessageType = "unsubscribed"
	TypeError        MessageType = "error"
	TypePing         MessageType = "ping"
	TypePong         MessageType = "pong"
)

// Message is the envelope for every frame in both directions. For server
// events Type carries the event name.
type Message struct {
	Type      MessageType     `json:"type"`
	Topic     string          `json:"topic,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// Session is the token the connection authenticated with.
	Session string
	Conn    *websocket.Conn
	Send    chan []byte
	Hub     *Hub

	mu     sync.RWMutex
	topics map[string]bool
	closed bool
}

type Hub struct {
	clients map[uuid.UUID]*Client
	topics  map[string]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		topics:     make(map[string]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run owns client registration until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop closes every connection and drops all subscriptions.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		client.closeSend()
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, id)
	}
	h.topics = make(map[string]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	slog.Debug("websocket client registered", "client_id", client.ID, "user_id", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	for _, topic := range client.Topics() {
		h.leaveUnsafe(client, topic)
	}
	delete(h.clients, client.ID)
	client.closeSend()

	slog.Debug("websocket client unregistered", "client_id", client.ID, "user_id", client.UserID)
}

// CloseSession disconnects every client that authenticated with session and
// returns how many were closed.
func (h *Hub) CloseSession(session string) int {
	if session == "" {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	closed := 0
	for id, client := range h.clients {
		if client.Session != session {
			continue
		}
		for _, topic := range client.Topics() {
			h.leaveUnsafe(client, topic)
		}
		delete(h.clients, id)
		client.closeSend()
		if client.Conn != nil {
			client.Conn.Close()
		}
		closed++
	}
	if closed > 0 {
		slog.Debug("websocket session closed", "clients", closed)
	}
	return closed
}

// JoinRoom subscribes client to topic. Callers authorize the subscription.
func (h *Hub) JoinRoom(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[uuid.UUID]*Client)
		h.topics[topic] = subs
	}
	subs[client.ID] = client

	client.mu.Lock()
	client.topics[topic] = true
	client.mu.Unlock()
}

func (h *Hub) LeaveRoom(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveUnsafe(client, topic)
}

func (h *Hub) leaveUnsafe(client *Client, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, client.ID)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}

	client.mu.Lock()
	delete(client.topics, topic)
	client.mu.Unlock()
}

// SendToRoom queues message for every subscriber of topic. Subscribers whose
// queue is full miss the message.
func (h *Hub) SendToRoom(topic string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.topics[topic] {
		if err := client.enqueue(message); err != nil {
			slog.Warn("websocket message dropped", "error", err, "client_id", client.ID, "topic", topic)
		}
	}
}

// Publish encodes payload as an event on topic and fans it out.
func (h *Hub) Publish(topic, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode realtime event", "error", err, "event", event, "topic", topic)
		return
	}

	msg, err := json.Marshal(Message{
		Type:      MessageType(event),
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		slog.Error("failed to encode realtime event", "error", err, "event", event, "topic", topic)
		return
	}
	h.SendToRoom(topic, msg)
}

// Subscribers returns the number of connections subscribed to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
