package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
)

// ProfileEditor is a live profile form. The form is dirty when any field
// differs from the last snapshot received from the server; Save writes only
// when dirty.
type ProfileEditor struct {
	c   *Client
	sub *Subscription

	mu       sync.Mutex
	form     models.ProfileFields
	snapshot models.ProfileFields
	onChange func(models.ProfileFields)

	first chan struct{}
	once  sync.Once
}

// Profile fetches the stored profile, or the default shape when none exists.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	if !c.signedIn() {
		return nil, ErrNotSignedIn
	}
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &p); err != nil {
		c.notify.Error(models.MsgProfileLoadFailed)
		return nil, err
	}
	return &p, nil
}

// LoadProfile opens a live profile and returns once the first snapshot has
// arrived. A later live update replaces the form, unsaved edits included.
func (c *Client) LoadProfile(ctx context.Context) (*ProfileEditor, error) {
	e := &ProfileEditor{c: c, first: make(chan struct{})}
	sub, err := c.subscribe(ctx, live.TopicProfile, e.apply)
	if err != nil {
		if !errors.Is(err, ErrNotSignedIn) {
			c.notify.Error(models.MsgProfileLoadFailed)
		}
		return nil, err
	}
	e.sub = sub

	select {
	case <-e.first:
		return e, nil
	case <-sub.Done():
		c.notify.Error(models.MsgProfileLoadFailed)
		return nil, errors.New("profile subscription closed before first snapshot")
	case <-ctx.Done():
		_ = sub.Close()
		return nil, ctx.Err()
	}
}

func (e *ProfileEditor) apply(raw json.RawMessage) {
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		e.c.log.WithError(err).Warn("bad profile snapshot")
		e.c.notify.Error(models.MsgProfileLoadFailed)
		return
	}

	e.mu.Lock()
	e.form = p.Fields()
	e.snapshot = p.Fields()
	fn := e.onChange
	f := e.form
	e.mu.Unlock()
	e.once.Do(func() { close(e.first) })

	if fn != nil {
		fn(f)
	}
}

// OnChange registers fn to run after every live update.
func (e *ProfileEditor) OnChange(fn func(models.ProfileFields)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

func (e *ProfileEditor) Fields() models.ProfileFields {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// Set changes one form field by its JSON name.
func (e *ProfileEditor) Set(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form.Set(field, value)
}

func (e *ProfileEditor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form != e.snapshot
}

// Save writes the whole form. It does nothing, and notifies nothing, when
// the form is clean.
func (e *ProfileEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	form, clean := e.form, e.form == e.snapshot
	e.mu.Unlock()
	if clean {
		return nil
	}

	var p models.Profile
	if err := e.c.do(ctx, http.MethodPut, "/api/profile", form, &p); err != nil {
		e.c.notify.Error(messageOr(err, models.MsgProfileSaveFailed))
		return err
	}

	e.mu.Lock()
	e.snapshot = form
	e.mu.Unlock()
	e.c.notify.Success(models.MsgProfileUpdated)
	return nil
}

func (e *ProfileEditor) Close() error {
	if e.sub == nil {
		return nil
	}
	return e.sub.Close()
}
