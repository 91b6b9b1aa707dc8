package handlers

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/jobbo/internal/api/middleware"
	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/security"
	"github.com/yoockh/jobbo/internal/utils"
)

func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Set(middleware.CtxClaims, &security.Claims{})
		c.Next()
	}
}

type fakeSavedJobs struct {
	mu   sync.Mutex
	jobs map[string]models.SavedJob
	err  error
}

func newFakeSavedJobs() *fakeSavedJobs {
	return &fakeSavedJobs{jobs: map[string]models.SavedJob{}}
}

func (f *fakeSavedJobs) IsSaved(ctx context.Context, userID, jobID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.jobs[models.SavedJobKey(userID, jobID)]
	return ok, nil
}

func (f *fakeSavedJobs) Toggle(ctx context.Context, userID string, job models.JobListing) (bool, error) {
	saved, err := f.IsSaved(ctx, userID, job.ID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, f.Remove(ctx, userID, job.ID)
	}
	_, err = f.Save(ctx, userID, job)
	return err == nil, err
}

func (f *fakeSavedJobs) Save(ctx context.Context, userID string, job models.JobListing) (*models.SavedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if job.ID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, "fake", models.MsgJobIDMissing, nil)
	}
	snap := models.NewSavedJob(userID, job, testNow)
	f.jobs[snap.ID] = *snap
	return snap, nil
}

func (f *fakeSavedJobs) Remove(ctx context.Context, userID, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.jobs, models.SavedJobKey(userID, jobID))
	return nil
}

func (f *fakeSavedJobs) List(ctx context.Context, userID string) ([]models.SavedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SavedJob
	for _, j := range f.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	stored map[string]*models.Profile
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if p, ok := f.stored[userID]; ok {
		return p, nil
	}
	return models.DefaultProfile(userID), nil
}

func (f *fakeProfiles) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	p := models.DefaultProfile(userID)
	p.Apply(fields)
	p.UpdatedAt = testNow
	if f.stored == nil {
		f.stored = map[string]*models.Profile{}
	}
	f.stored[userID] = p
	return p, nil
}

// fakeStream is a live.Stream driven by the test.
type fakeStream struct {
	mu     sync.Mutex
	topics map[live.Topic]bool
	events chan live.Event
	closed chan struct{}
	once   sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		topics: map[live.Topic]bool{},
		events: make(chan live.Event, 4),
		closed: make(chan struct{}),
	}
}

func (s *fakeStream) Add(ctx context.Context, topics ...live.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		s.topics[t] = true
	}
	return nil
}

func (s *fakeStream) Remove(ctx context.Context, topics ...live.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		delete(s.topics, t)
	}
	return nil
}

func (s *fakeStream) Events() <-chan live.Event { return s.events }

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeSubscriber struct {
	stream *fakeStream
	userID string
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, userID string, topics ...live.Topic) (live.Stream, error) {
	f.userID = userID
	_ = f.stream.Add(ctx, topics...)
	return f.stream, nil
}
