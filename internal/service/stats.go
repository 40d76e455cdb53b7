package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/placehub/anonqa-service/internal/models"
	"github.com/placehub/anonqa-service/internal/repository"
)

// SessionStats groups the session's answers by the status of their parent
// question. Composed from the two stores at read time; answers whose parent
// question no longer resolves are left out of the buckets.
func (s *QA) SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error) {
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	statuses := map[primitive.ObjectID]models.QuestionStatus{}
	stats := &models.SessionStats{}
	for _, a := range answers {
		st, ok := statuses[a.QuestionID]
		if !ok {
			q, err := s.questions.Get(ctx, a.QuestionID)
			switch {
			case err == repository.ErrNotFound:
				st = "" // orphan; remember the miss so we don't re-query
			case err != nil:
				return nil, err
			default:
				st = q.Status
			}
			statuses[a.QuestionID] = st
		}
		if st == "" {
			continue
		}
		switch st {
		case models.QuestionStatusOpen:
			stats.Open++
		case models.QuestionStatusActive:
			stats.Active++
		case models.QuestionStatusArchived:
			stats.Archived++
		case models.QuestionStatusReported:
			stats.Reported++
		}
	}
	stats.Total = stats.Open + stats.Active + stats.Archived + stats.Reported
	return stats, nil
}
