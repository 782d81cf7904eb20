package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thereayou/slack-lite/internal/handlers"
	"github.com/thereayou/slack-lite/internal/middleware"
	ws "github.com/thereayou/slack-lite/internal/websocket"
)

var _ = Describe("WebSocketHandler", func() {
	var (
		hub      *ws.Hub
		server   *httptest.Server
		presence *mockPresenceService
		callerID uuid.UUID
		wsURL    string
	)

	const (
		allowedTopic = "channel:allowed"
		aliasTopic   = "channel:ALLOWED"
	)

	BeforeEach(func() {
		callerID = uuid.New()
		hub = ws.NewHub()
		go hub.Run()

		presence = &mockPresenceService{keepAlive: make(chan uuid.UUID, 1)}
		realtime := &mockRealtimeService{
			canSubscribeFn: func(_ context.Context, caller uuid.UUID, topic string) (string, bool, error) {
				if caller != callerID {
					return "", false, nil
				}
				switch topic {
				case allowedTopic, aliasTopic:
					return allowedTopic, true, nil
				}
				return "", false, nil
			},
		}

		h := handlers.NewWebSocketHandler(hub, handlers.NewSubscriptionHandler(realtime, hub), presence, nil)
		router := gin.New()
		router.GET("/ws", middleware.WSAuth(authWith(callerID)), h.HandleWebSocket)

		server = httptest.NewServer(router)
		wsURL = "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	})

	AfterEach(func() {
		hub.Stop()
		server.Close()
	})

	dial := func() *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+validToken, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = conn.Close() })
		return conn
	}

	read := func(conn *websocket.Conn) ws.Message {
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		var msg ws.Message
		Expect(conn.ReadJSON(&msg)).To(Succeed())
		return msg
	}

	It("refuses the upgrade without a token", func() {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("keeps presence alive for the connected user", func() {
		dial()
		Eventually(presence.keepAlive).Should(Receive(Equal(callerID)))
	})

	It("delivers published events after a subscription", func() {
		conn := dial()
		Expect(conn.WriteJSON(ws.Message{Type: ws.TypeSubscribe, Topic: allowedTopic})).To(Succeed())

		ack := read(conn)
		Expect(ack.Type).To(Equal(ws.TypeSubscribed))
		Expect(ack.Topic).To(Equal(allowedTopic))

		hub.Publish(allowedTopic, "message_created", map[string]string{"content": "hello"})

		event := read(conn)
		Expect(event.Type).To(Equal(ws.MessageType("message_created")))
		Expect(string(event.Data)).To(ContainSubstring("hello"))
	})

	It("subscribes to the canonical topic rather than the one requested", func() {
		conn := dial()
		Expect(conn.WriteJSON(ws.Message{Type: ws.TypeSubscribe, Topic: aliasTopic})).To(Succeed())

		ack := read(conn)
		Expect(ack.Type).To(Equal(ws.TypeSubscribed))
		Expect(ack.Topic).To(Equal(allowedTopic))
		Expect(hub.Subscribers(aliasTopic)).To(BeZero())

		hub.Publish(allowedTopic, "message_created", map[string]string{"content": "hi"})
		Expect(read(conn).Topic).To(Equal(allowedTopic))
	})

	It("answers a denied subscription with an error frame", func() {
		conn := dial()
		Expect(conn.WriteJSON(ws.Message{Type: ws.TypeSubscribe, Topic: "channel:secret"})).To(Succeed())

		msg := read(conn)
		Expect(msg.Type).To(Equal(ws.TypeError))
		Expect(msg.Topic).To(Equal("channel:secret"))
		Expect(hub.Subscribers("channel:secret")).To(BeZero())
	})

	It("drops the connection when its session is closed", func() {
		conn := dial()
		Expect(conn.WriteJSON(ws.Message{Type: ws.TypeSubscribe, Topic: allowedTopic})).To(Succeed())
		Expect(read(conn).Type).To(Equal(ws.TypeSubscribed))

		Expect(hub.CloseSession(validToken)).To(Equal(1))

		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		var msg ws.Message
		Expect(conn.ReadJSON(&msg)).NotTo(Succeed())
		Expect(hub.Subscribers(allowedTopic)).To(BeZero())
	})

	It("stops delivery after unsubscribing", func() {
		conn := dial()
		Expect(conn.WriteJSON(ws.Message{Type: ws.TypeSubscribe, Topic: allowedTopic})).To(Succeed())
		Expect(read(conn).Type).To(Equal(ws.TypeSubscribed))

		Expect(conn.WriteJSON(ws.Message{Type: ws.TypeUnsubscribe, Topic: allowedTopic})).To(Succeed())
		Expect(read(conn).Type).To(Equal(ws.TypeUnsubscribed))
		Expect(hub.Subscribers(allowedTopic)).To(BeZero())
	})
})
