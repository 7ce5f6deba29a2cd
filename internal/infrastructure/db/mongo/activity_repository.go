package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuradash/account-system/internal/core/domain"
	"github.com/neuradash/account-system/internal/core/ports"
)

const activityCollection = "activity_events"

// ActivityRepository implements ports.ActivityRepository using MongoDB. It is
// the durable archive behind the capped in-store activity log.
type ActivityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert persists one activity entry to the archive collection.
func (r *ActivityRepository) Insert(ctx context.Context, entry *domain.ActivityEntry) error {
	doc := bson.M{
		"user_id":     entry.UserID,
		"action":      entry.Action,
		"timestamp":   entry.Timestamp.UTC(),
		"archived_at": time.Now().UTC(),
	}
	if len(entry.Meta) > 0 {
		doc["meta"] = entry.Meta
	}

	if _, err := r.db.Collection(activityCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the archive is queried by. Call once at
// startup; index creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(activityCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "archived_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("create activity indexes: %w", err)
	}
	return nil
}
