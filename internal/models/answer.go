package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnswerStatus string

const (
	AnswerStatusOpen     AnswerStatus = "open"
	AnswerStatusReported AnswerStatus = "reported"
)

// Default reaction labels pre-seeded at zero on every new answer. Clients
// may react with any label; new ones are added to the tally on first use.
const (
	ReactionHelpful = "helpful"
	ReactionClear   = "clear"
	ReactionSmart   = "smart"
)

type Answer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionID primitive.ObjectID `bson:"question_id" json:"questionId"`
	Text       string             `bson:"text,omitempty" json:"text,omitempty"`
	ImageURL   string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	SenderIcon string             `bson:"sender_icon" json:"senderIcon"`
	SessionID  string             `bson:"session_id" json:"sessionId"`
	Status     AnswerStatus       `bson:"status" json:"status"`
	Reactions  map[string]int     `bson:"reactions" json:"reactions"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

func DefaultReactions() map[string]int {
	return map[string]int{
		ReactionHelpful: 0,
		ReactionClear:   0,
		ReactionSmart:   0,
	}
}
