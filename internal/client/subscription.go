package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yoockh/jobbo/internal/live"
)

type liveFrame struct {
	Type    string          `json:"type"`
	Topic   live.Topic      `json:"topic"`
	Action  string          `json:"action"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

// Subscription is a standing registration for one topic. onData runs on the
// subscription's own goroutine for every snapshot until Close.
type Subscription struct {
	conn  *websocket.Conn
	topic live.Topic
	done  chan struct{}
	once  sync.Once
}

func (c *Client) subscribe(ctx context.Context, topic live.Topic, onData func(json.RawMessage)) (*Subscription, error) {
	tok := c.tokens.Token()
	if tok == "" {
		return nil, ErrNotSignedIn
	}
	target, err := c.wsURL("/api/ws")
	if err != nil {
		return nil, err
	}

	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+tok)
	conn, resp, err := c.dialer.DialContext(ctx, target, hdr)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
		}
		return nil, err
	}

	s := &Subscription{conn: conn, topic: topic, done: make(chan struct{})}
	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "topic": string(topic)}); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go s.read(c, onData)
	return s, nil
}

func (s *Subscription) read(c *Client, onData func(json.RawMessage)) {
	defer close(s.done)
	for {
		var f liveFrame
		if err := s.conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Topic != s.topic {
			continue
		}
		switch f.Type {
		case "snapshot":
			onData(f.Data)
		case "error":
			c.log.WithField("topic", f.Topic).Warn("live update failed: " + f.Message)
		}
	}
}

// Done is closed once the subscription stops delivering.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close releases the subscription and waits for its reader to stop.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.conn.Close()
		<-s.done
	})
	return err
}
