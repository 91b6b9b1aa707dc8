package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved := MongoDatabase().Collection("saved_jobs")
	_, err := saved.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// one snapshot per identity and job
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "job_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_user_job").
				SetUnique(true),
		},
		// list view, newest first
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "saved_at", Value: -1}},
			Options: options.Index().SetName("by_user_saved_at"),
		},
	})
	return err
}
