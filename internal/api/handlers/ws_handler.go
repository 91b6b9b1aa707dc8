package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/services"
	"github.com/yoockh/jobbo/internal/utils"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsWriteWait  = 10 * time.Second
)

// WSHandler serves live snapshots. A client subscribes to topics; the server
// sends the current state right away and again after every change event.
type WSHandler struct {
	hub      live.Subscriber
	saved    services.SavedJobService
	profiles services.ProfileService
	auth     services.AuthService
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(
	hub live.Subscriber,
	saved services.SavedJobService,
	profiles services.ProfileService,
	auth services.AuthService,
	log *logrus.Logger,
	checkOrigin func(r *http.Request) bool,
) *WSHandler {
	if log == nil {
		log = logrus.New()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		hub:      hub,
		saved:    saved,
		profiles: profiles,
		auth:     auth,
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

type wsClientMsg struct {
	Type  string     `json:"type"` // subscribe|unsubscribe
	Topic live.Topic `json:"topic"`
}

type wsServerMsg struct {
	Type    string     `json:"type"` // snapshot|error
	Topic   live.Topic `json:"topic,omitempty"`
	Action  string     `json:"action,omitempty"`
	Data    any        `json:"data,omitempty"`
	Code    utils.Code `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// topicSet is shared by the reader and writer goroutines.
type topicSet struct {
	mu sync.Mutex
	m  map[live.Topic]bool
}

func (s *topicSet) set(t live.Topic, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.m[t] = true
	} else {
		delete(s.m, t)
	}
}

func (s *topicSet) has(t live.Topic) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[t]
}

func (h *WSHandler) Live(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	stream, err := h.hub.Subscribe(ctx, userID)
	if err != nil {
		writeError(c, utils.E(utils.CodeUnavailable, "WSHandler.Live", "live updates unavailable", err))
		return
	}
	defer stream.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader already wrote the response
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	topics := &topicSet{m: map[live.Topic]bool{}}
	log := h.log.WithField("user_id", userID)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "invalid json"})
				continue
			}
			if !msg.Topic.Valid() {
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "unknown topic"})
				continue
			}

			switch msg.Type {
			case "subscribe":
				if err := stream.Add(ctx, msg.Topic); err != nil {
					log.WithError(err).WithField("topic", msg.Topic).Warn("live subscribe failed")
					_ = wc.writeJSON(wsServerMsg{Type: "error", Topic: msg.Topic, Code: utils.CodeUnavailable, Message: "subscribe failed"})
					continue
				}
				topics.set(msg.Topic, true)
				_ = wc.writeJSON(h.snapshot(ctx, userID, msg.Topic, "subscribe"))

			case "unsubscribe":
				topics.set(msg.Topic, false)
				_ = stream.Remove(ctx, msg.Topic)

			default:
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "unknown message type"})
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	events := stream.Events()
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wc.ping(); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !topics.has(ev.Topic) {
				continue
			}
			if err := wc.writeJSON(h.snapshot(ctx, userID, ev.Topic, ev.Action)); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) snapshot(ctx context.Context, userID string, t live.Topic, action string) wsServerMsg {
	var (
		data any
		err  error
	)
	switch t {
	case live.TopicSavedJobs:
		var jobs []models.SavedJob
		jobs, err = h.saved.List(ctx, userID)
		if jobs == nil {
			jobs = []models.SavedJob{}
		}
		data = jobs
	case live.TopicProfile:
		data, err = h.profiles.Get(ctx, userID)
	case live.TopicAuth:
		data, err = h.auth.Me(ctx, userID)
	}
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "topic": t}).Warn("live snapshot failed")
		return wsServerMsg{Type: "error", Topic: t, Code: utils.CodeInternal, Message: utils.MessageOf(err, "snapshot failed")}
	}
	return wsServerMsg{Type: "snapshot", Topic: t, Action: action, Data: data}
}
