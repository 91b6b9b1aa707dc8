// Package live carries change notifications for per-identity documents over
// Redis pub/sub. Writers publish after every successful write; readers hold a
// Subscription for as long as they want updates and must Close it.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Topic string

const (
	TopicSavedJobs Topic = "saved_jobs"
	TopicProfile   Topic = "profile"
	TopicAuth      Topic = "auth"
)

func (t Topic) Valid() bool {
	switch t {
	case TopicSavedJobs, TopicProfile, TopicAuth:
		return true
	}
	return false
}

func Channel(userID string, t Topic) string {
	return "user:" + userID + ":" + string(t)
}

type Event struct {
	Topic  Topic     `json:"topic"`
	UserID string    `json:"user_id"`
	Action string    `json:"action"` // upsert|delete|login|logout|update
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, userID string, topic Topic, action string) error
}

// Stream is one open subscription: topics can be added and removed while it
// is live, and Events is closed after Close.
type Stream interface {
	Add(ctx context.Context, topics ...Topic) error
	Remove(ctx context.Context, topics ...Topic) error
	Events() <-chan Event
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, userID string, topics ...Topic) (Stream, error)
}

type Hub struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewHub(rdb *redis.Client, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{rdb: rdb, log: log}
}

func (h *Hub) Publish(ctx context.Context, userID string, topic Topic, action string) error {
	b, err := json.Marshal(Event{Topic: topic, UserID: userID, Action: action, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, Channel(userID, topic), b).Err()
}

// Subscribe opens a subscription for userID. Topics can be added and removed
// later; events arrive on Events until Close.
func (h *Hub) Subscribe(ctx context.Context, userID string, topics ...Topic) (Stream, error) {
	s := &Subscription{
		userID: userID,
		ps:     h.rdb.Subscribe(ctx),
		out:    make(chan Event, 16),
		done:   make(chan struct{}),
		log:    h.log,
	}
	if len(topics) > 0 {
		if err := s.Add(ctx, topics...); err != nil {
			_ = s.ps.Close()
			return nil, err
		}
	}
	go s.pump()
	return s, nil
}

type Subscription struct {
	userID string
	ps     *redis.PubSub
	out    chan Event
	done   chan struct{}
	once   sync.Once
	log    *logrus.Logger
}

func (s *Subscription) channels(topics []Topic) []string {
	chs := make([]string, 0, len(topics))
	for _, t := range topics {
		chs = append(chs, Channel(s.userID, t))
	}
	return chs
}

func (s *Subscription) Add(ctx context.Context, topics ...Topic) error {
	return s.ps.Subscribe(ctx, s.channels(topics)...)
}

func (s *Subscription) Remove(ctx context.Context, topics ...Topic) error {
	return s.ps.Unsubscribe(ctx, s.channels(topics)...)
}

func (s *Subscription) Events() <-chan Event { return s.out }

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *Subscription) pump() {
	defer close(s.out)
	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				s.log.WithError(err).WithField("channel", m.Channel).Warn("dropping malformed live event")
				continue
			}
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}
	}
}
