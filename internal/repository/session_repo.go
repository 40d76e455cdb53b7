package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/placehub/anonqa-service/internal/models"
)

type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(coll *mongo.Collection) *SessionRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("session_id_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &SessionRepository{coll: coll}
}

// Init creates the session on first contact and is a no-op afterwards.
// The upsert with $setOnInsert makes concurrent first contacts for the same
// id converge on one record instead of tripping the unique index; the icon
// chosen by whichever write lands first is never overwritten.
func (r *SessionRepository) Init(ctx context.Context, sessionID, icon string) (*models.Session, error) {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$setOnInsert": bson.M{
			"session_id":  sessionID,
			"animal_icon": icon,
			"created_at":  time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	var s models.Session
	if err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	if err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
