// Package mongodb holds the connection setup shared by the Mongo backed
// services.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Options struct {
	URI      string
	Database string
	MaxPool  uint64
	MinPool  uint64
}

func Connect(ctx context.Context, o Options) (*mongo.Database, error) {
	if o.MaxPool == 0 {
		o.MaxPool = 100
	}
	if o.MinPool == 0 {
		o.MinPool = 10
	}
	clientOpts := options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(o.MaxPool).
		SetMinPoolSize(o.MinPool)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(o.Database), nil
}

func Disconnect(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.Client().Disconnect(ctx)
}
