package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/hostel-survival-kit/internal/services"
)

const (
	feedReadLimit    = 4 * 1024
	feedReadDeadline = 90 * time.Second
	feedPingInterval = 30 * time.Second
)

// feedClientMessage is what browsers send over the feed socket.
type feedClientMessage struct {
	Type   string           `json:"type"` // "subscribe", "unsubscribe", "ping"
	Topics []services.Topic `json:"topics,omitempty"`
}

type feedReply struct {
	Type   string           `json:"type"`
	Topics []services.Topic `json:"topics,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// validTopics drops unknown topic names.
func validTopics(in []services.Topic) []services.Topic {
	out := make([]services.Topic, 0, len(in))
	for _, t := range in {
		if t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// topicsFromQuery reads ?topics=vents,tips so clients can subscribe on
// connect.
func topicsFromQuery(r *http.Request) []services.Topic {
	raw := r.URL.Query().Get("topics")
	if raw == "" {
		return nil
	}
	var topics []services.Topic
	for _, part := range strings.Split(raw, ",") {
		topics = append(topics, services.Topic(strings.TrimSpace(part)))
	}
	return validTopics(topics)
}

// FeedSocket streams change events for the topics a client subscribes to.
func (h *Handler) FeedSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := h.hub.Register(conn)
	defer h.hub.Unregister(client)

	if initial := topicsFromQuery(r); len(initial) > 0 {
		client.Subscribe(initial...)
		_ = client.Send(feedReply{Type: "subscribed", Topics: initial})
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(feedPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(feedReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(feedReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedReadDeadline))
	})

	for {
		var msg feedClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("client", client.ID).Debug("feed socket closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(feedReadDeadline))

		switch msg.Type {
		case "subscribe":
			topics := validTopics(msg.Topics)
			client.Subscribe(topics...)
			_ = client.Send(feedReply{Type: "subscribed", Topics: topics})
		case "unsubscribe":
			topics := validTopics(msg.Topics)
			client.Unsubscribe(topics...)
			_ = client.Send(feedReply{Type: "unsubscribed", Topics: topics})
		case "ping":
			_ = client.Send(feedReply{Type: "pong"})
		default:
			_ = client.Send(feedReply{Type: "error", Error: "unknown message type"})
		}
	}
}
