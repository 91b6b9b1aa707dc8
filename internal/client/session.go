package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
)

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "loading"
	}
}

type authResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.Identity `json:"user"`
}

// Session is the process-wide identity state. It starts Loading and moves
// only on provider notifications: the token store reports sign-in and
// sign-out, and while a token is held the server's auth topic delivers the
// current identity, including changes made by other sessions. Operations
// never set the state themselves.
type Session struct {
	c *Client

	mu       sync.Mutex
	state    State
	identity *models.Identity
	gen      uint64
	ready    chan struct{}
	nextSub  int
	subs     map[int]func(State, *models.Identity)
	authSub  *Subscription

	stop func()
}

func NewSession(c *Client) *Session {
	s := &Session{
		c:     c,
		ready: make(chan struct{}),
		subs:  map[int]func(State, *models.Identity){},
	}
	s.stop = c.tokens.Subscribe(s.onToken)
	return s
}

// Close stops following the token store and the auth topic.
func (s *Session) Close() {
	s.stop()
	s.mu.Lock()
	s.gen++
	sub := s.authSub
	s.authSub = nil
	s.mu.Unlock()
	if sub != nil {
		_ = sub.Close()
	}
}

func (s *Session) onToken(token string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	old := s.authSub
	s.authSub = nil
	s.mu.Unlock()

	// may run on the old subscription's reader, which Close waits for
	if old != nil {
		go old.Close()
	}

	if token == "" {
		s.resolve(gen, StateAnonymous, nil)
		return
	}
	go s.follow(gen)
}

// follow subscribes to the auth topic for the current token. The first
// snapshot resolves the session; later ones replace the identity.
func (s *Session) follow(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	first := make(chan struct{})
	var once sync.Once
	sub, err := s.c.subscribe(ctx, live.TopicAuth, func(raw json.RawMessage) {
		var id models.Identity
		if err := json.Unmarshal(raw, &id); err != nil {
			s.c.log.WithError(err).Warn("bad identity snapshot")
			return
		}
		s.resolve(gen, StateAuthenticated, &id)
		once.Do(func() { close(first) })
	})
	if err != nil {
		s.c.log.WithError(err).Debug("session token rejected")
		var ae *APIError
		if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized {
			err := s.c.tokens.SetToken("")
			if err == nil {
				return
			}
			s.c.log.WithError(err).Warn("clearing rejected token")
		}
		s.resolve(gen, StateAnonymous, nil)
		return
	}

	s.mu.Lock()
	current := gen == s.gen
	if current {
		s.authSub = sub
	}
	s.mu.Unlock()
	if !current {
		_ = sub.Close()
		return
	}

	select {
	case <-first:
	case <-sub.Done():
		select {
		case <-first:
			return
		default:
		}
		s.resolve(gen, StateAnonymous, nil)
	case <-ctx.Done():
		s.resolve(gen, StateAnonymous, nil)
	}
}

func (s *Session) resolve(gen uint64, st State, id *models.Identity) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = st
	s.identity = id
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
	fns := make([]func(State, *models.Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st, id)
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the signed-in identity, or nil.
func (s *Session) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Wait blocks until the state has left Loading.
func (s *Session) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.State(), nil
	case <-ctx.Done():
		return StateLoading, ctx.Err()
	}
}

// Subscribe calls fn on every identity change until the returned func is
// called.
func (s *Session) Subscribe(fn func(State, *models.Identity)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) signIn(ctx context.Context, path string, body any, okMsg, failMsg string, useServerMsg bool) (*models.Identity, error) {
	var res authResult
	if err := s.c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		msg := failMsg
		if useServerMsg {
			msg = messageOr(err, failMsg)
		}
		s.c.notify.Error(msg)
		return nil, err
	}
	if err := s.c.tokens.SetToken(res.Token); err != nil {
		s.c.notify.Error(failMsg)
		return nil, err
	}
	s.c.notify.Success(okMsg)
	return &res.User, nil
}

// Register creates an email/password account and signs in with it. On
// failure the notification carries the server's reason.
func (s *Session) Register(ctx context.Context, email, password, displayName string) (*models.Identity, error) {
	return s.signIn(ctx, "/api/auth/register", map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}, models.MsgAccountCreated, "Failed to create account.", true)
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.signIn(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, models.MsgLoggedIn, models.MsgLoginFailed, false)
}

// LoginWithGoogle exchanges a Google ID token for a session.
func (s *Session) LoginWithGoogle(ctx context.Context, idToken string) (*models.Identity, error) {
	return s.signIn(ctx, "/api/auth/google", map[string]string{
		"id_token": idToken,
	}, models.MsgGoogleLoggedIn, models.MsgGoogleLoginFailed, false)
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		s.c.notify.Error(models.MsgLogoutFailed)
		return err
	}
	if err := s.c.tokens.SetToken(""); err != nil {
		s.c.notify.Error(models.MsgLogoutFailed)
		return err
	}
	s.c.notify.Success(models.MsgLoggedOut)
	return nil
}

func (s *Session) ResetPassword(ctx context.Context, email string) error {
	if err := s.c.do(ctx, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": email}, nil); err != nil {
		s.c.notify.Error(models.MsgResetFailed)
		return err
	}
	s.c.notify.Success(models.MsgResetSent)
	return nil
}

// ConfirmPasswordReset sets a new password using the token from the reset
// email.
func (s *Session) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	if err := s.c.do(ctx, http.MethodPost, "/api/auth/password-reset/confirm", body, nil); err != nil {
		s.c.notify.Error(messageOr(err, models.MsgPasswordFailed))
		return err
	}
	s.c.notify.Success(models.MsgPasswordChanged)
	return nil
}

// UpdateProfile changes the identity's display name and/or photo URL; nil
// leaves a field as it is. The session picks the change up from the auth
// topic like any other session would.
func (s *Session) UpdateProfile(ctx context.Context, upd models.IdentityUpdate) (*models.Identity, error) {
	var id models.Identity
	if err := s.c.do(ctx, http.MethodPatch, "/api/auth/me", upd, &id); err != nil {
		s.c.notify.Error(models.MsgProfileFailed)
		return nil, err
	}
	s.c.notify.Success(models.MsgProfileUpdated)
	return &id, nil
}
