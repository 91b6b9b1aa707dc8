package config

import (
	"context"
	"crypto/tls"
	"errors"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client

const (
	DefaultMongoDB       = "jobbo"
	defaultMongoPoolSize = 10
)

// MongoDatabase returns the saved-jobs database; InitMongo must have run.
func MongoDatabase() *mongo.Database {
	return MongoClient.Database(getenv("MONGO_DB", DefaultMongoDB))
}

// mongoOptions builds client options for uri. MONGO_MAX_POOL overrides the
// pool size; MONGO_FORCE_TLS_CONFIG pins TLS 1.2 for clusters whose proxies
// negotiate nothing newer.
func mongoOptions(uri string) (*options.ClientOptions, error) {
	pool := uint64(defaultMongoPoolSize)
	if v := os.Getenv("MONGO_MAX_POOL"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return nil, errors.New("MONGO_MAX_POOL must be a positive integer")
		}
		pool = n
	}

	opts := options.Client().ApplyURI(uri).
		SetAppName("jobbo").
		SetServerSelectionTimeout(20 * time.Second).
		SetConnectTimeout(15 * time.Second).
		SetMaxPoolSize(pool).
		SetMinPoolSize(1)

	if os.Getenv("MONGO_FORCE_TLS_CONFIG") == "true" {
		opts = opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: os.Getenv("MONGO_INSECURE_TLS") == "true",
			MinVersion:         tls.VersionTLS12,
			MaxVersion:         tls.VersionTLS12,
		})
	}
	return opts, opts.Validate()
}

// InitMongo connects to MONGO_URI and pings it.
func InitMongo() error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}
	opts, err := mongoOptions(uri)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	MongoClient = client
	return nil
}
