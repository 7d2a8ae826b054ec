package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classpulse/internal/model"
)

// EventRepo persists durable snapshot records to MongoDB.
type EventRepo interface {
	Insert(ctx context.Context, snap *model.Snapshot) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Snapshot, error)
}

type eventRepo struct {
	collection *mongo.Collection
}

// NewEventRepo creates a new event repository
func NewEventRepo(db *mongo.Database) EventRepo {
	return &eventRepo{
		collection: db.Collection("snapshots"),
	}
}

func (r *eventRepo) Insert(ctx context.Context, snap *model.Snapshot) error {
	_, err := r.collection.InsertOne(ctx, snap)
	return err
}

func (r *eventRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Snapshot, error) {
	// Receipt order, matching the in-memory partition.
	opts := options.Find().SetSort(bson.D{{Key: "serverTs", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snaps []model.Snapshot
	if err := cursor.All(ctx, &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}
