package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/placehub/anonqa-service/internal/models"
	"github.com/placehub/anonqa-service/internal/repository"
)

// ErrInvalidInput marks client mistakes: missing fields, malformed ids,
// unknown statuses. Handlers map it to a 400.
var ErrInvalidInput = errors.New("invalid input")

// Outbound realtime event types.
const (
	EventAnswerReceived  = "ANSWER_RECEIVED"
	EventReactionUpdated = "REACTION_UPDATED"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ReactionUpdate struct {
	AnswerID  string         `json:"answerId"`
	Reactions map[string]int `json:"reactions"`
	Reaction  string         `json:"reaction"`
	Timestamp time.Time      `json:"timestamp"`
}

type SessionStore interface {
	Init(ctx context.Context, sessionID, icon string) (*models.Session, error)
}

type QuestionStore interface {
	Create(ctx context.Context, q *models.Question) (*models.Question, error)
	List(ctx context.Context) ([]models.QuestionWithCount, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Question, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.QuestionStatus) (*models.Question, error)
}

type AnswerStore interface {
	Create(ctx context.Context, a *models.Answer) (*models.Answer, error)
	ListByQuestion(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Answer, error)
	React(ctx context.Context, answerID primitive.ObjectID, label string) (*models.Answer, error)
	SetStatus(ctx context.Context, answerID primitive.ObjectID, status models.AnswerStatus) (*models.Answer, error)
}

// Broadcaster pushes an event to every connected realtime client.
type Broadcaster interface {
	Broadcast(event any)
}

// EventPublisher hands domain events to the message bus for downstream
// consumers (notification service). Publishing is fire-and-forget from the
// caller's point of view.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type QA struct {
	sessions  SessionStore
	questions QuestionStore
	answers   AnswerStore
	hub       Broadcaster
	events    EventPublisher
	log       *zap.SugaredLogger
}

func NewQA(sessions SessionStore, questions QuestionStore, answers AnswerStore, hub Broadcaster, events EventPublisher, log *zap.SugaredLogger) *QA {
	return &QA{sessions: sessions, questions: questions, answers: answers, hub: hub, events: events, log: log}
}

func (s *QA) InitSession(ctx context.Context, sessionID, icon string) (*models.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	return s.sessions.Init(ctx, sessionID, icon)
}

func (s *QA) SubmitQuestion(ctx context.Context, text, sessionID string) (*models.Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}
	return s.questions.Create(ctx, &models.Question{Text: text, SessionID: sessionID})
}

func (s *QA) ListQuestions(ctx context.Context) ([]models.QuestionWithCount, error) {
	return s.questions.List(ctx)
}

func (s *QA) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.questions.Get(ctx, oid)
}

func (s *QA) SetQuestionStatus(ctx context.Context, id string, status string) (*models.Question, error) {
	st := models.QuestionStatus(status)
	if !models.ValidQuestionStatus(st) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.questions.SetStatus(ctx, oid, st)
}

type SubmitAnswerInput struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	ImageURL   string `json:"imageUrl"`
	SenderIcon string `json:"senderIcon"`
	SessionID  string `json:"sessionId"`
}

// SubmitAnswer persists the answer and fans it out to every realtime
// client. The parent question id only has to be well-formed; an answer
// referencing a question that no longer resolves is still accepted.
func (s *QA) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (*models.Answer, error) {
	qid, err := primitive.ObjectIDFromHex(in.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed questionId", ErrInvalidInput)
	}
	hasText := strings.TrimSpace(in.Text) != ""
	hasImage := in.ImageURL != ""
	if hasText == hasImage {
		return nil, fmt.Errorf("%w: answer needs either text or imageUrl", ErrInvalidInput)
	}
	a, err := s.answers.Create(ctx, &models.Answer{
		QuestionID: qid,
		Text:       in.Text,
		ImageURL:   in.ImageURL,
		SenderIcon: in.SenderIcon,
		SessionID:  in.SessionID,
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(Event{Type: EventAnswerReceived, Payload: a})
	s.publish(ctx, "answer.created", a)
	return a, nil
}

func (s *QA) ListAnswers(ctx context.Context, questionID string) ([]models.Answer, error) {
	qid, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.answers.ListByQuestion(ctx, qid)
}

// React bumps the label's tally on an answer and broadcasts the updated
// map. A react against an id that does not resolve returns ErrNotFound;
// the realtime path drops that silently, the REST path serves a 404.
func (s *QA) React(ctx context.Context, answerID, label string) (*models.Answer, error) {
	if strings.TrimSpace(label) == "" {
		return nil, fmt.Errorf("%w: reaction label is required", ErrInvalidInput)
	}
	oid, err := primitive.ObjectIDFromHex(answerID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	a, err := s.answers.React(ctx, oid, label)
	if err != nil {
		return nil, err
	}
	update := ReactionUpdate{
		AnswerID:  a.ID.Hex(),
		Reactions: a.Reactions,
		Reaction:  label,
		Timestamp: time.Now().UTC(),
	}
	s.broadcast(Event{Type: EventReactionUpdated, Payload: update})
	s.publish(ctx, "reaction.added", update)
	return a, nil
}

func (s *QA) ReportAnswer(ctx context.Context, answerID string) (*models.Answer, error) {
	oid, err := primitive.ObjectIDFromHex(answerID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.answers.SetStatus(ctx, oid, models.AnswerStatusReported)
}

func (s *QA) broadcast(ev Event) {
	if s.hub != nil {
		s.hub.Broadcast(ev)
	}
}

func (s *QA) publish(ctx context.Context, key string, payload any) {
	if s.events == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.events.Publish(ctx, key, b); err != nil {
		s.log.Warnw("publish event", "key", key, "err", err)
	}
}
