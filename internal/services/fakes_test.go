package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/providers/identity"
	mongorepo "github.com/yoockh/jobbo/internal/repositories/mongo"
	"github.com/yoockh/jobbo/internal/utils"
)

var _ mongorepo.SavedJobRepository = (*fakeSavedJobRepo)(nil)

type publishedEvent struct {
	userID string
	topic  live.Topic
	action string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, userID string, topic live.Topic, action string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID, topic, action})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakeSavedJobRepo struct {
	mu       sync.Mutex
	docs     map[string]models.SavedJob
	writeErr error
	lookups  int
}

func newFakeSavedJobRepo() *fakeSavedJobRepo {
	return &fakeSavedJobRepo{docs: make(map[string]models.SavedJob)}
}

func (r *fakeSavedJobRepo) Exists(ctx context.Context, userID, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	_, ok := r.docs[models.SavedJobKey(userID, jobID)]
	return ok, nil
}

func (r *fakeSavedJobRepo) Upsert(ctx context.Context, s *models.SavedJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.docs[s.ID] = *s
	return nil
}

func (r *fakeSavedJobRepo) Delete(ctx context.Context, userID, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	delete(r.docs, models.SavedJobKey(userID, jobID))
	return nil
}

func (r *fakeSavedJobRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.SavedJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SavedJob{}
	for _, d := range r.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	rows     map[string]models.Profile
	upserts  int
	writeErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{rows: make(map[string]models.Profile)}
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.upserts++
	r.rows[p.UserID] = *p
	return nil
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if u.Email != "" && x.Email == u.Email {
			return utils.ErrConflict
		}
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeUserRepo) GetByGoogleSubject(ctx context.Context, sub string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.GoogleSubject != nil && *u.GoogleSubject == sub {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeUserRepo) Save(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *fakeCache) TakeJSON(ctx context.Context, key string, dst any) (bool, error) {
	hit, err := c.GetJSON(ctx, key, dst)
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return hit, err
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type recordingMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = map[string]string{}
	}
	m.links[email] = link
	return nil
}

type stubVerifier struct {
	claims *identity.FederatedClaims
	err    error
}

func (v stubVerifier) Verify(ctx context.Context, raw string) (*identity.FederatedClaims, error) {
	return v.claims, v.err
}
