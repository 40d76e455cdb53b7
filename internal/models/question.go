package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionStatus string

const (
	QuestionStatusOpen     QuestionStatus = "open"
	QuestionStatusActive   QuestionStatus = "active"
	QuestionStatusArchived QuestionStatus = "archived"
	QuestionStatusReported QuestionStatus = "reported"
)

// ValidQuestionStatus reports whether s is one of the known lifecycle
// statuses. The moderation path may set any of them from any prior state.
func ValidQuestionStatus(s QuestionStatus) bool {
	switch s {
	case QuestionStatusOpen, QuestionStatusActive, QuestionStatusArchived, QuestionStatusReported:
		return true
	}
	return false
}

type Question struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text      string             `bson:"text" json:"text"`
	SessionID string             `bson:"session_id" json:"sessionId"`
	Status    QuestionStatus     `bson:"status" json:"status"`
	Summary   string             `bson:"summary,omitempty" json:"summary,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// QuestionWithCount is the listing shape: the question joined with the live
// number of answers referencing it. The count is computed at read time.
type QuestionWithCount struct {
	Question    `bson:",inline"`
	AnswerCount int `bson:"answer_count" json:"answerCount"`
}
