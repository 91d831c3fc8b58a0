package database

import (
	"context"
	"fmt"

	"github.com/periferia-labs/perxia-be/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDatabase connects to MongoDB and returns a handle on the
// configured database. The connection is verified with a ping so
// misconfiguration fails at startup, not on the first query.
func NewMongoDatabase(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is not configured")
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{
			ObjectIDAsHexString: true,
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(cfg.Database), nil
}
