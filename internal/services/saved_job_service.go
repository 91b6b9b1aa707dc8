package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
	mongorepo "github.com/yoockh/jobbo/internal/repositories/mongo"
	"github.com/yoockh/jobbo/internal/utils"
)

// SavedJobService manages the per-identity saved list. Toggle is a plain
// read-then-write: concurrent toggles from two sessions resolve as last write wins.
type SavedJobService interface {
	IsSaved(ctx context.Context, userID, jobID string) (bool, error)
	Toggle(ctx context.Context, userID string, job models.JobListing) (saved bool, err error)
	Save(ctx context.Context, userID string, job models.JobListing) (*models.SavedJob, error)
	Remove(ctx context.Context, userID, jobID string) error
	List(ctx context.Context, userID string) ([]models.SavedJob, error)
}

type savedJobService struct {
	repo mongorepo.SavedJobRepository
	pub  live.Publisher
	now  func() time.Time
}

func NewSavedJobService(repo mongorepo.SavedJobRepository, pub live.Publisher) SavedJobService {
	return &savedJobService{repo: repo, pub: pub, now: time.Now}
}

func (s *savedJobService) IsSaved(ctx context.Context, userID, jobID string) (bool, error) {
	const op = "SavedJobService.IsSaved"

	if err := requireKeys(op, userID, jobID); err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, userID, jobID)
	if err != nil {
		return false, storeError(op, models.MsgSavedStatusFailed, err)
	}
	return ok, nil
}

func (s *savedJobService) Toggle(ctx context.Context, userID string, job models.JobListing) (bool, error) {
	const op = "SavedJobService.Toggle"

	if err := requireKeys(op, userID, job.ID); err != nil {
		return false, err
	}
	saved, err := s.repo.Exists(ctx, userID, job.ID)
	if err != nil {
		return false, storeError(op, models.MsgSaveFailed, err)
	}
	if saved {
		if err := s.Remove(ctx, userID, job.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := s.Save(ctx, userID, job); err != nil {
		return false, err
	}
	return true, nil
}

func (s *savedJobService) Save(ctx context.Context, userID string, job models.JobListing) (*models.SavedJob, error) {
	const op = "SavedJobService.Save"

	if err := requireKeys(op, userID, job.ID); err != nil {
		return nil, err
	}
	snap := models.NewSavedJob(userID, job, s.now())
	if err := s.repo.Upsert(ctx, snap); err != nil {
		return nil, storeError(op, models.MsgSaveFailed, err)
	}
	_ = s.pub.Publish(ctx, userID, live.TopicSavedJobs, "upsert")
	return snap, nil
}

func (s *savedJobService) Remove(ctx context.Context, userID, jobID string) error {
	const op = "SavedJobService.Remove"

	if err := requireKeys(op, userID, jobID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, jobID); err != nil {
		return storeError(op, models.MsgSaveFailed, err)
	}
	_ = s.pub.Publish(ctx, userID, live.TopicSavedJobs, "delete")
	return nil
}

func (s *savedJobService) List(ctx context.Context, userID string) ([]models.SavedJob, error) {
	const op = "SavedJobService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, models.MsgLoginToSave, nil)
	}
	out, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, storeError(op, models.MsgSavedJobsLoadError, err)
	}
	return out, nil
}

func requireKeys(op, userID, jobID string) error {
	if userID == "" {
		return utils.E(utils.CodeUnauthorized, op, models.MsgLoginToSave, nil)
	}
	if jobID == "" {
		return utils.E(utils.CodeInvalidArgument, op, models.MsgJobIDMissing, nil)
	}
	return nil
}

func storeError(op, msg string, err error) error {
	if errors.Is(err, utils.ErrPermissionDenied) {
		return utils.E(utils.CodeForbidden, op, models.MsgSavePermission, err)
	}
	return utils.E(utils.CodeInternal, op, msg, err)
}
