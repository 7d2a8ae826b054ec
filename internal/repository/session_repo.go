package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classpulse/internal/model"
)

// SessionRepo persists session records to MongoDB. The in-memory store is
// the source of truth for the running process; this is the durable copy.
type SessionRepo interface {
	Create(ctx context.Context, sess *model.Session) error
	Update(ctx context.Context, sess *model.Session) error
	ListAll(ctx context.Context) ([]*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, sess *model.Session) error {
	_, err := r.collection.InsertOne(ctx, sess)
	return err
}

func (r *sessionRepo) Update(ctx context.Context, sess *model.Session) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sess.ID}, sess, opts)
	return err
}

func (r *sessionRepo) ListAll(ctx context.Context) ([]*model.Session, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
