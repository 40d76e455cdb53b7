package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/placehub/anonqa-service/internal/models"
)

type AnswerRepository struct {
	coll *mongo.Collection
}

func NewAnswerRepository(coll *mongo.Collection) *AnswerRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "question_id", Value: 1}},
		Options: options.Index().SetName("question_id_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &AnswerRepository{coll: coll}
}

func (r *AnswerRepository) Create(ctx context.Context, a *models.Answer) (*models.Answer, error) {
	a.Status = models.AnswerStatusOpen
	if a.Reactions == nil {
		a.Reactions = models.DefaultReactions()
	}
	a.CreatedAt = time.Now().UTC()
	res, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return a, nil
}

// ListByQuestion returns a question's answers oldest-first, the reading
// order of a thread.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error) {
	cur, err := r.coll.Find(ctx, bson.M{"question_id": questionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Answer{}
	for cur.Next(ctx) {
		var a models.Answer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Answer, error) {
	cur, err := r.coll.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Answer{}
	for cur.Next(ctx) {
		var a models.Answer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

// React bumps the tally for label by one and returns the updated answer.
// This is a read-then-write, not an atomic $inc: two overlapping reactions
// on the same label can read the same base count and lose one increment.
// The counters are best-effort social signals, so that trade stands.
func (r *AnswerRepository) React(ctx context.Context, answerID primitive.ObjectID, label string) (*models.Answer, error) {
	var a models.Answer
	if err := r.coll.FindOne(ctx, bson.M{"_id": answerID}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if a.Reactions == nil {
		a.Reactions = models.DefaultReactions()
	}
	a.Reactions[label] = a.Reactions[label] + 1
	if _, err := r.coll.UpdateByID(ctx, answerID, bson.M{"$set": bson.M{"reactions": a.Reactions}}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) SetStatus(ctx context.Context, answerID primitive.ObjectID, status models.AnswerStatus) (*models.Answer, error) {
	res, err := r.coll.UpdateByID(ctx, answerID, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	var a models.Answer
	if err := r.coll.FindOne(ctx, bson.M{"_id": answerID}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}
