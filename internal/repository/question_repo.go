package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/placehub/anonqa-service/internal/models"
)

type QuestionRepository struct {
	questions *mongo.Collection
	answers   *mongo.Collection
}

func NewQuestionRepository(questions, answers *mongo.Collection) *QuestionRepository {
	return &QuestionRepository{questions: questions, answers: answers}
}

func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) (*models.Question, error) {
	q.Status = models.QuestionStatusOpen
	q.CreatedAt = time.Now().UTC()
	res, err := r.questions.InsertOne(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = res.InsertedID.(primitive.ObjectID)
	return q, nil
}

// List returns every question newest-first, each joined with the live count
// of answers referencing it. The count is computed per call so a freshly
// written answer shows up on the very next listing.
func (r *QuestionRepository) List(ctx context.Context) ([]models.QuestionWithCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         r.answers.Name(),
			"localField":   "_id",
			"foreignField": "question_id",
			"as":           "answers",
		}}},
		{{Key: "$addFields", Value: bson.M{"answer_count": bson.M{"$size": "$answers"}}}},
		{{Key: "$project", Value: bson.M{"answers": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}
	cur, err := r.questions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.QuestionWithCount{}
	for cur.Next(ctx) {
		var q models.QuestionWithCount
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, cur.Err()
}

func (r *QuestionRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var q models.Question
	if err := r.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// SetStatus overwrites the status unconditionally; the moderation path may
// move a question between any two statuses.
func (r *QuestionRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.QuestionStatus) (*models.Question, error) {
	res, err := r.questions.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// ArchiveOlderThan flips every non-archived question created before cutoff
// to archived and reports how many were touched. The predicate is
// idempotent, so a failed sweep is simply retried by the next one.
func (r *QuestionRepository) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.questions.UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$ne": models.QuestionStatusArchived},
			"created_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"status": models.QuestionStatusArchived}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
