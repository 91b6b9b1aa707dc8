package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/yoockh/jobbo/internal/models"
)

const testToken = "tok-1"

// fakeAPI is a small in-memory stand-in for the jobbo service.
type fakeAPI struct {
	t     *testing.T
	srv   *httptest.Server
	calls int32

	mu          sync.Mutex
	saved       map[string]models.SavedJob
	profile     models.Profile
	failProfile bool
	profileSubs []*websocket.Conn
	identity    models.Identity
	authSubs    []*websocket.Conn
	muteAuth    bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t:        t,
		saved:    map[string]models.SavedJob{},
		profile:  models.Profile{UserID: "u1"},
		identity: models.Identity{UID: "u1", Email: "ada@example.com", DisplayName: "Ada"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", f.login)
	mux.HandleFunc("/api/auth/register", f.register)
	mux.HandleFunc("/api/auth/logout", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": models.MsgLoggedOut})
	}))
	mux.HandleFunc("/api/auth/me", f.authed(f.me))
	mux.HandleFunc("/api/saved-jobs/toggle", f.authed(f.toggle))
	mux.HandleFunc("/api/saved-jobs/", f.authed(f.status))
	mux.HandleFunc("/api/profile", f.authed(f.profileHandler))
	mux.HandleFunc("/api/ws", f.authed(f.ws))
	f.srv = httptest.NewServer(countCalls(&f.calls, mux))
	t.Cleanup(f.srv.Close)
	return f
}

func countCalls(n *int32, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(n, 1)
		h.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "UNAUTHORIZED", "message": "invalid token"})
			return
		}
		h(w, r)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req["password"] != "secret1" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "UNAUTHORIZED", "message": "invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, authResult{Token: testToken, User: models.Identity{UID: "u1", Email: req["email"]}})
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusConflict, map[string]string{"code": "CONFLICT", "message": "email already in use"})
}

func (f *fakeAPI) toggle(w http.ResponseWriter, r *http.Request) {
	var job models.JobListing
	_ = json.NewDecoder(r.Body).Decode(&job)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.saved[job.ID]; ok {
		delete(f.saved, job.ID)
		writeJSON(w, http.StatusOK, savedStatus{Saved: false})
		return
	}
	f.saved[job.ID] = *models.NewSavedJob("u1", job, testNow)
	writeJSON(w, http.StatusOK, savedStatus{Saved: true})
}

func (f *fakeAPI) status(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/saved-jobs/")
	f.mu.Lock()
	_, ok := f.saved[id]
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, savedStatus{Saved: ok})
}

func (f *fakeAPI) profileHandler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, f.profile)
	case http.MethodPut:
		if f.failProfile {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "INTERNAL", "message": "db down"})
			return
		}
		var fields models.ProfileFields
		_ = json.NewDecoder(r.Body).Decode(&fields)
		f.profile.Apply(fields)
		writeJSON(w, http.StatusOK, f.profile)
	}
}

func (f *fakeAPI) ws(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	var msg struct {
		Type  string `json:"type"`
		Topic string `json:"topic"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.Topic == "auth" {
		_ = conn.WriteJSON(map[string]any{"type": "snapshot", "topic": msg.Topic, "data": f.identity})
		f.authSubs = append(f.authSubs, conn)
		return
	}
	if msg.Topic == "saved_jobs" {
		jobs := []models.SavedJob{}
		for _, j := range f.saved {
			jobs = append(jobs, j)
		}
		_ = conn.WriteJSON(map[string]any{"type": "snapshot", "topic": msg.Topic, "data": jobs})
		_ = conn.Close()
		return
	}
	// registered only after the first frame, so pushProfile never races it
	_ = conn.WriteJSON(map[string]any{"type": "snapshot", "topic": msg.Topic, "data": f.profile})
	f.profileSubs = append(f.profileSubs, conn)
}

// pushProfile simulates a write from another session.
func (f *fakeAPI) pushProfile(p models.Profile) {
	f.mu.Lock()
	f.profile = p
	subs := append([]*websocket.Conn(nil), f.profileSubs...)
	f.mu.Unlock()
	for _, c := range subs {
		_ = c.WriteJSON(map[string]any{"type": "snapshot", "topic": "profile", "action": "upsert", "data": p})
	}
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPatch {
		var upd models.IdentityUpdate
		_ = json.NewDecoder(r.Body).Decode(&upd)
		f.mu.Lock()
		if upd.DisplayName != nil {
			f.identity.DisplayName = *upd.DisplayName
		}
		if upd.PhotoURL != nil {
			f.identity.PhotoURL = *upd.PhotoURL
		}
		id := f.identity
		subs := append([]*websocket.Conn(nil), f.authSubs...)
		if f.muteAuth {
			subs = nil
		}
		f.mu.Unlock()
		for _, c := range subs {
			_ = c.WriteJSON(map[string]any{"type": "snapshot", "topic": "auth", "action": "update", "data": id})
		}
		writeJSON(w, http.StatusOK, id)
		return
	}
	f.mu.Lock()
	id := f.identity
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, id)
}
