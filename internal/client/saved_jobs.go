package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
)

type savedStatus struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}

// IsSaved reports whether the signed-in identity saved jobID. With no
// identity or no job id the answer is false.
func (c *Client) IsSaved(ctx context.Context, jobID string) (bool, error) {
	if !c.signedIn() || jobID == "" {
		return false, nil
	}
	var out savedStatus
	if err := c.do(ctx, http.MethodGet, "/api/saved-jobs/"+url.PathEscape(jobID), nil, &out); err != nil {
		c.notify.Error(models.MsgSavedStatusFailed)
		return false, err
	}
	return out.Saved, nil
}

// ToggleSave flips membership of job in the saved list and returns the new
// state.
func (c *Client) ToggleSave(ctx context.Context, job models.JobListing) (bool, error) {
	if !c.signedIn() {
		c.notify.Error(models.MsgLoginToSave)
		return false, ErrNotSignedIn
	}
	if job.ID == "" {
		c.notify.Error(models.MsgJobIDMissing)
		return false, &APIError{Status: http.StatusBadRequest, Code: "INVALID_ARGUMENT", Message: models.MsgJobIDMissing}
	}

	var out savedStatus
	if err := c.do(ctx, http.MethodPost, "/api/saved-jobs/toggle", job, &out); err != nil {
		c.notify.Error(messageOr(err, models.MsgSaveFailed))
		return false, err
	}

	if out.Saved {
		c.notify.Success(models.MsgJobSaved)
	} else {
		c.notify.Success(models.MsgJobRemoved)
	}
	return out.Saved, nil
}

func (c *Client) SavedJobs(ctx context.Context) ([]models.SavedJob, error) {
	if !c.signedIn() {
		return nil, ErrNotSignedIn
	}
	var out struct {
		Jobs []models.SavedJob `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/saved-jobs", nil, &out); err != nil {
		c.notify.Error(models.MsgSavedJobsLoadError)
		return nil, err
	}
	return out.Jobs, nil
}

// WatchSavedJobs calls fn with the full saved list, newest first, now and
// after every change until the subscription is closed.
func (c *Client) WatchSavedJobs(ctx context.Context, fn func([]models.SavedJob)) (*Subscription, error) {
	return c.subscribe(ctx, live.TopicSavedJobs, func(raw json.RawMessage) {
		var jobs []models.SavedJob
		if err := json.Unmarshal(raw, &jobs); err != nil {
			c.log.WithError(err).Warn("bad saved jobs snapshot")
			c.notify.Error(models.MsgSavedJobsLoadError)
			return
		}
		fn(jobs)
	})
}
