package services

import (
	"context"
	"sync"
	"testing"

	"github.com/AnshRaj112/hostel-survival-kit/internal/logging"
)

type fakeConn struct {
	mu  sync.Mutex
	got []FeedEvent
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, v.(FeedEvent))
	return nil
}

func (c *fakeConn) ReadJSON(interface{}) error { return nil }
func (c *fakeConn) Close() error               { return nil }

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestHubLocalFanOut(t *testing.T) {
	var clients int
	hub := NewHub(nil, logging.Discard(), func(n int) { clients = n })

	ventsConn, tipsConn := &fakeConn{}, &fakeConn{}
	vents := hub.Register(ventsConn)
	tips := hub.Register(tipsConn)
	vents.Subscribe(TopicVents)
	tips.Subscribe(TopicTips, TopicVents)
	tips.Unsubscribe(TopicVents)

	if clients != 2 {
		t.Errorf("clients = %d", clients)
	}

	ctx := context.Background()
	if err := hub.Publish(ctx, FeedEvent{Type: EventVentCreated, Topic: TopicVents}); err != nil {
		t.Fatal(err)
	}
	if err := hub.Publish(ctx, FeedEvent{Type: EventTipCreated, Topic: TopicTips}); err != nil {
		t.Fatal(err)
	}
	if err := hub.Publish(ctx, FeedEvent{Type: "x", Topic: "gossip"}); err == nil {
		t.Error("unknown topic should be rejected")
	}

	if ventsConn.count() != 1 || tipsConn.count() != 1 {
		t.Errorf("deliveries = %d / %d", ventsConn.count(), tipsConn.count())
	}

	hub.Unregister(vents)
	if n := hub.FanOut(FeedEvent{Topic: TopicVents}); n != 0 {
		t.Errorf("unregistered client still addressed: %d", n)
	}
	if clients != 1 {
		t.Errorf("clients = %d", clients)
	}
}
