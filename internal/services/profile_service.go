package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
	pgrepo "github.com/yoockh/jobbo/internal/repositories/postgres"
	"github.com/yoockh/jobbo/internal/utils"
)

type ProfileService interface {
	// Get returns the stored profile, or the default record if none exists yet.
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, userID string, f models.ProfileFields) (*models.Profile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	pub      live.Publisher
	now      func() time.Time
}

func NewProfileService(profiles pgrepo.ProfileRepository, pub live.Publisher) ProfileService {
	return &profileService{profiles: profiles, pub: pub, now: time.Now}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return models.DefaultProfile(userID), nil
		}
		return nil, utils.E(utils.CodeInternal, op, models.MsgProfileLoadFailed, err)
	}
	return p, nil
}

func (s *profileService) Upsert(ctx context.Context, userID string, f models.ProfileFields) (*models.Profile, error) {
	const op = "ProfileService.Upsert"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "user_id is required", nil)
	}

	p := models.DefaultProfile(userID)
	p.Apply(f)
	p.UpdatedAt = s.now().UTC()

	if err := s.profiles.Upsert(ctx, p); err != nil {
		if errors.Is(err, utils.ErrPermissionDenied) {
			return nil, utils.E(utils.CodeForbidden, op, "You do not have permission to update this profile.", err)
		}
		return nil, utils.E(utils.CodeInternal, op, models.MsgProfileFailed, err)
	}
	_ = s.pub.Publish(ctx, userID, live.TopicProfile, "upsert")
	return p, nil
}
