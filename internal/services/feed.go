package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Topic groups feed events by the screen that shows them.
type Topic string

const (
	TopicVents    Topic = "vents"
	TopicTips     Topic = "tips"
	TopicMess     Topic = "mess"
	TopicCalendar Topic = "calendar"
)

var Topics = []Topic{TopicVents, TopicTips, TopicMess, TopicCalendar}

func (t Topic) Valid() bool {
	for _, v := range Topics {
		if t == v {
			return true
		}
	}
	return false
}

const (
	EventVentCreated   = "vent_created"
	EventVentLiked     = "vent_liked"
	EventVentsExpired  = "vents_expired"
	EventTipCreated    = "tip_created"
	EventTipUpvoted    = "tip_upvoted"
	EventRatingAdded   = "rating_added"
	EventEventsChanged = "events_changed"
)

const feedChannelPrefix = "hsk:feed:"

// FeedEvent is the payload broadcast over Redis and WebSocket. It never
// carries author or voter ids.
type FeedEvent struct {
	Type      string    `json:"type"`
	Topic     Topic     `json:"topic"`
	ID        string    `json:"id,omitempty"`
	Count     *int      `json:"count,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev FeedEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, FeedEvent) error { return nil }

// FeedConn is the minimal interface our WebSocket implementation must satisfy.
type FeedConn interface {
	WriteJSON(v interface{}) error
	ReadJSON(dest interface{}) error
	Close() error
}

// FeedClient tracks one socket and its topic subscriptions.
type FeedClient struct {
	ID   uuid.UUID
	conn FeedConn

	mu     sync.RWMutex
	topics map[Topic]struct{}

	writeMu sync.Mutex
}

func (c *FeedClient) Subscribe(topics ...Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		c.topics[t] = struct{}{}
	}
}

func (c *FeedClient) Unsubscribe(topics ...Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.topics, t)
	}
}

func (c *FeedClient) subscribed(t Topic) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[t]
	return ok
}

// Send writes v to the socket. Writes are serialized per client.
func (c *FeedClient) Send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans feed events out to the sockets connected to this instance. With
// a Redis client, Publish goes through Redis Pub/Sub so every instance sees
// every event; without one it delivers in-process.
type Hub struct {
	redis *redis.Client
	log   *logrus.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*FeedClient

	started sync.Once
	// onConnect reports the client count after each register/unregister.
	onConnect func(n int)
}

func NewHub(client *redis.Client, log *logrus.Logger, onConnect func(n int)) *Hub {
	if onConnect == nil {
		onConnect = func(int) {}
	}
	return &Hub{
		redis:     client,
		log:       log,
		clients:   make(map[uuid.UUID]*FeedClient),
		onConnect: onConnect,
	}
}

func (h *Hub) Register(conn FeedConn) *FeedClient {
	c := &FeedClient{ID: uuid.New(), conn: conn, topics: make(map[Topic]struct{})}

	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()

	h.onConnect(n)
	return c
}

func (h *Hub) Unregister(c *FeedClient) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	n := len(h.clients)
	h.mu.Unlock()

	h.onConnect(n)
}

// FanOut sends ev to every local client subscribed to its topic and returns
// how many were addressed.
func (h *Hub) FanOut(ev FeedEvent) int {
	h.mu.RLock()
	targets := make([]*FeedClient, 0, len(h.clients))
	for _, c := range h.clients {
		if c.subscribed(ev.Topic) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(ev); err != nil {
			h.log.WithError(err).WithField("client", c.ID).Debug("feed write failed")
		}
	}
	return len(targets)
}

func (h *Hub) Publish(ctx context.Context, ev FeedEvent) error {
	if !ev.Topic.Valid() {
		return errors.New("unknown feed topic " + string(ev.Topic))
	}
	if h.redis == nil {
		h.FanOut(ev)
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, feedChannelPrefix+string(ev.Topic), data).Err()
}

// Start launches the shared Redis listener once per hub. It is a no-op
// without Redis.
func (h *Hub) Start(ctx context.Context) {
	if h.redis == nil {
		return
	}
	h.started.Do(func() {
		go h.runSubscriber(ctx)
	})
}

func (h *Hub) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.redis.PSubscribe(ctx, feedChannelPrefix+"*")
			defer pubsub.Close()

			h.log.WithField("pattern", feedChannelPrefix+"*").Info("feed subscriber started")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					h.log.WithError(err).Warn("feed subscriber error")
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var ev FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					h.log.WithError(err).Warn("malformed feed event")
					continue
				}
				if ev.Topic == "" {
					ev.Topic = Topic(strings.TrimPrefix(msg.Channel, feedChannelPrefix))
				}
				h.FanOut(ev)
			}
		}()
	}
}
