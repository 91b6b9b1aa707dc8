package live

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/yoockh/jobbo/internal/logger"
)

func TestChannel(t *testing.T) {
	if got := Channel("u1", TopicSavedJobs); got != "user:u1:saved_jobs" {
		t.Fatalf("Channel = %q", got)
	}
}

func TestTopicValid(t *testing.T) {
	for _, tp := range []Topic{TopicSavedJobs, TopicProfile, TopicAuth} {
		if !tp.Valid() {
			t.Errorf("%s should be valid", tp)
		}
	}
	if Topic("buffers").Valid() {
		t.Error("unknown topic reported valid")
	}
}

func newTestHub(t *testing.T) (*Hub, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewHub(rdb, logger.Discard()), mr
}

// waitSubscribers blocks until channel has n subscribers on the server.
func waitSubscribers(t *testing.T, mr *miniredis.Miniredis, channel string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for mr.PubSubNumSub(channel)[channel] != n {
		if time.Now().After(deadline) {
			t.Fatalf("%s: subscribers = %d, want %d", channel, mr.PubSubNumSub(channel)[channel], n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func nextEvent(t *testing.T, s Stream) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		if !ok {
			t.Fatal("events closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
	return Event{}
}

func TestHubDropsMalformedPayloads(t *testing.T) {
	h, mr := newTestHub(t)
	ctx := context.Background()

	s, err := h.Subscribe(ctx, "u1", TopicSavedJobs)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ch := Channel("u1", TopicSavedJobs)
	waitSubscribers(t, mr, ch, 1)

	mr.Publish(ch, "not json")
	if err := h.Publish(ctx, "u1", TopicSavedJobs, "upsert"); err != nil {
		t.Fatal(err)
	}

	ev := nextEvent(t, s)
	if ev.Topic != TopicSavedJobs || ev.UserID != "u1" || ev.Action != "upsert" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestHubAddRemoveTopics(t *testing.T) {
	h, mr := newTestHub(t)
	ctx := context.Background()

	s, err := h.Subscribe(ctx, "u1", TopicSavedJobs)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Add(ctx, TopicProfile); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, TopicSavedJobs); err != nil {
		t.Fatal(err)
	}
	waitSubscribers(t, mr, Channel("u1", TopicProfile), 1)
	waitSubscribers(t, mr, Channel("u1", TopicSavedJobs), 0)

	_ = h.Publish(ctx, "u1", TopicSavedJobs, "delete")
	_ = h.Publish(ctx, "u2", TopicProfile, "upsert")
	_ = h.Publish(ctx, "u1", TopicProfile, "upsert")

	if ev := nextEvent(t, s); ev.Topic != TopicProfile || ev.UserID != "u1" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestHubCloseClosesEvents(t *testing.T) {
	h, mr := newTestHub(t)

	s, err := h.Subscribe(context.Background(), "u1", TopicAuth)
	if err != nil {
		t.Fatal(err)
	}
	waitSubscribers(t, mr, Channel("u1", TopicAuth), 1)

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close = %v", err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("events never closed")
		}
	}
}
