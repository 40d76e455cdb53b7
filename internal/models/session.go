package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the pseudonymous identity of one anonymous chat participant.
// The session id is a client-chosen opaque token; the icon picked on first
// contact sticks for the session's lifetime.
type Session struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"sessionId"`
	AnimalIcon string             `bson:"animal_icon" json:"animalIcon"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

// SessionStats groups a session's answers by the status of their parent
// question. Zero-valued statuses are reported, not omitted.
type SessionStats struct {
	Open     int `json:"open"`
	Active   int `json:"active"`
	Archived int `json:"archived"`
	Reported int `json:"reported"`
	Total    int `json:"total"`
}
