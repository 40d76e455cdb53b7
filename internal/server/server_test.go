package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/placehub/anonqa-service/internal/config"
	"github.com/placehub/anonqa-service/internal/models"
	"github.com/placehub/anonqa-service/internal/repository"
	"github.com/placehub/anonqa-service/internal/service"
	"github.com/placehub/anonqa-service/internal/ws"
)

type stubQA struct {
	knownQuestion *models.Question
	knownAnswer   *models.Answer
	lastCtx       context.Context
}

func (s *stubQA) InitSession(_ context.Context, sessionID, icon string) (*models.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", service.ErrInvalidInput)
	}
	return &models.Session{ID: primitive.NewObjectID(), SessionID: sessionID, AnimalIcon: icon}, nil
}

func (s *stubQA) SessionStats(_ context.Context, _ string) (*models.SessionStats, error) {
	return &models.SessionStats{}, nil
}

func (s *stubQA) SubmitQuestion(_ context.Context, text, sessionID string) (*models.Question, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", service.ErrInvalidInput)
	}
	return &models.Question{ID: primitive.NewObjectID(), Text: text, SessionID: sessionID, Status: models.QuestionStatusOpen}, nil
}

func (s *stubQA) ListQuestions(ctx context.Context) ([]models.QuestionWithCount, error) {
	s.lastCtx = ctx
	return []models.QuestionWithCount{}, nil
}

func (s *stubQA) GetQuestion(_ context.Context, id string) (*models.Question, error) {
	if s.knownQuestion != nil && s.knownQuestion.ID.Hex() == id {
		return s.knownQuestion, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubQA) SetQuestionStatus(_ context.Context, id, status string) (*models.Question, error) {
	q, err := s.GetQuestion(context.Background(), id)
	if err != nil {
		return nil, err
	}
	q.Status = models.QuestionStatus(status)
	return q, nil
}

func (s *stubQA) SubmitAnswer(_ context.Context, in service.SubmitAnswerInput) (*models.Answer, error) {
	if in.Text == "" && in.ImageURL == "" {
		return nil, fmt.Errorf("%w: answer needs either text or imageUrl", service.ErrInvalidInput)
	}
	return &models.Answer{ID: primitive.NewObjectID(), Text: in.Text, Reactions: models.DefaultReactions()}, nil
}

func (s *stubQA) ListAnswers(_ context.Context, _ string) ([]models.Answer, error) {
	return []models.Answer{}, nil
}

func (s *stubQA) React(_ context.Context, answerID, label string) (*models.Answer, error) {
	if s.knownAnswer == nil || s.knownAnswer.ID.Hex() != answerID {
		return nil, repository.ErrNotFound
	}
	s.knownAnswer.Reactions[label]++
	return s.knownAnswer, nil
}

func (s *stubQA) ReportAnswer(_ context.Context, answerID string) (*models.Answer, error) {
	if s.knownAnswer == nil || s.knownAnswer.ID.Hex() != answerID {
		return nil, repository.ErrNotFound
	}
	s.knownAnswer.Status = models.AnswerStatusReported
	return s.knownAnswer, nil
}

func newTestApp(t *testing.T, stub *stubQA, jwtSecret string) *fiber.App {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.JWTSecret = jwtSecret
	log := zap.NewNop().Sugar()
	hub := ws.NewHub(nil, log)
	return New(cfg, stub, hub, log)
}

func jsonReq(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestInitSession_ReturnsRecord(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(jsonReq(t, http.MethodPost, "/api/v1/sessions/init",
		map[string]string{"sessionId": "tok-1", "animalIcon": "🦊"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body models.Session
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID != "tok-1" || body.AnimalIcon != "🦊" {
		t.Fatalf("unexpected session %+v", body)
	}
}

func TestCreateQuestion_EmptyTextIs400(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(jsonReq(t, http.MethodPost, "/api/v1/questions",
		map[string]string{"text": "", "sessionId": "s1"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateQuestion_Returns201(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(jsonReq(t, http.MethodPost, "/api/v1/questions",
		map[string]string{"text": "How hard was the DSA round?", "sessionId": "s1"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var q models.Question
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Status != models.QuestionStatusOpen {
		t.Fatalf("status = %q, want open", q.Status)
	}
}

func TestGetQuestion_UnknownIs404(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/questions/"+primitive.NewObjectID().Hex(), nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestReact_UnknownAnswerIs404(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(jsonReq(t, http.MethodPost,
		"/api/v1/answers/"+primitive.NewObjectID().Hex()+"/react",
		map[string]string{"reaction": "helpful"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestReact_KnownAnswerReturnsUpdatedTally(t *testing.T) {
	answer := &models.Answer{ID: primitive.NewObjectID(), Reactions: models.DefaultReactions()}
	app := newTestApp(t, &stubQA{knownAnswer: answer}, "")
	resp, err := app.Test(jsonReq(t, http.MethodPost,
		"/api/v1/answers/"+answer.ID.Hex()+"/react",
		map[string]string{"reaction": "helpful"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Reactions["helpful"] != 1 {
		t.Fatalf("helpful = %d, want 1", got.Reactions["helpful"])
	}
}

func TestSessionStats_AllBucketsPresent(t *testing.T) {
	app := newTestApp(t, &stubQA{}, "")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/stats", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"open", "active", "archived", "reported", "total"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing %q in %v", key, body)
		}
	}
}

func TestHandlerContext_CarriesConfiguredTimeout(t *testing.T) {
	stub := &stubQA{}
	cfg := &config.Config{RequestTimeout: 250 * time.Millisecond}
	log := zap.NewNop().Sugar()
	app := New(cfg, stub, ws.NewHub(nil, log), log)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if stub.lastCtx == nil {
		t.Fatalf("service never saw a context")
	}
	deadline, ok := stub.lastCtx.Deadline()
	if !ok {
		t.Fatalf("context has no deadline")
	}
	if remaining := time.Until(deadline); remaining > 250*time.Millisecond {
		t.Fatalf("deadline %v away, want the configured 250ms budget", remaining)
	}
	if stub.lastCtx.Err() == nil {
		t.Fatalf("context not canceled once the request finished")
	}
}

func TestModerationRoute_RequiresTokenWhenSecretSet(t *testing.T) {
	q := &models.Question{ID: primitive.NewObjectID(), Status: models.QuestionStatusOpen}
	app := newTestApp(t, &stubQA{knownQuestion: q}, "test-secret")

	resp, err := app.Test(jsonReq(t, http.MethodPatch,
		"/api/v1/questions/"+q.ID.Hex()+"/status",
		map[string]string{"status": "reported"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestModerationRoute_OpenWhenNoSecret(t *testing.T) {
	q := &models.Question{ID: primitive.NewObjectID(), Status: models.QuestionStatusOpen}
	app := newTestApp(t, &stubQA{knownQuestion: q}, "")

	resp, err := app.Test(jsonReq(t, http.MethodPatch,
		"/api/v1/questions/"+q.ID.Hex()+"/status",
		map[string]string{"status": "archived"}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got models.Question
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.QuestionStatusArchived {
		t.Fatalf("status = %q, want archived", got.Status)
	}
}
