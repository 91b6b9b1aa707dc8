package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SavedJobsCollection = "saved_jobs"

// mongo "Unauthorized" server error code.
const codeUnauthorized = 13

type SavedJobRepository interface {
	Exists(ctx context.Context, userID, jobID string) (bool, error)
	Upsert(ctx context.Context, s *models.SavedJob) error
	Delete(ctx context.Context, userID, jobID string) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.SavedJob, error)
}

type savedJobRepo struct {
	col *mongo.Collection
}

func NewSavedJobRepo(db *mongo.Database) SavedJobRepository {
	return &savedJobRepo{col: db.Collection(SavedJobsCollection)}
}

func (r *savedJobRepo) Exists(ctx context.Context, userID, jobID string) (bool, error) {
	err := r.col.FindOne(ctx,
		bson.M{"_id": models.SavedJobKey(userID, jobID)},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, mapErr(err)
	}
	return true, nil
}

func (r *savedJobRepo) Upsert(ctx context.Context, s *models.SavedJob) error {
	s.ID = models.SavedJobKey(s.UserID, s.JobID)
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": s.ID},
		s,
		options.Replace().SetUpsert(true),
	)
	return mapErr(err)
}

func (r *savedJobRepo) Delete(ctx context.Context, userID, jobID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": models.SavedJobKey(userID, jobID)})
	return mapErr(err)
}

func (r *savedJobRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.SavedJob, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)

	out := []models.SavedJob{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeUnauthorized) {
		return fmt.Errorf("%w: %v", utils.ErrPermissionDenied, err)
	}
	return err
}
