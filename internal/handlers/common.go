package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/placehub/anonqa-service/internal/models"
	"github.com/placehub/anonqa-service/internal/repository"
	"github.com/placehub/anonqa-service/internal/service"
)

// QAService is the surface the handlers call; *service.QA satisfies it.
type QAService interface {
	InitSession(ctx context.Context, sessionID, icon string) (*models.Session, error)
	SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error)
	SubmitQuestion(ctx context.Context, text, sessionID string) (*models.Question, error)
	ListQuestions(ctx context.Context) ([]models.QuestionWithCount, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	SetQuestionStatus(ctx context.Context, id, status string) (*models.Question, error)
	SubmitAnswer(ctx context.Context, in service.SubmitAnswerInput) (*models.Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]models.Answer, error)
	React(ctx context.Context, answerID, label string) (*models.Answer, error)
	ReportAnswer(ctx context.Context, answerID string) (*models.Answer, error)
}

type QAHandler struct {
	svc     QAService
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewQAHandler(svc QAService, timeout time.Duration, log *zap.SugaredLogger) *QAHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &QAHandler{svc: svc, timeout: timeout, log: log}
}

// reqCtx derives the store-call context from the request so a client
// disconnect cancels in-flight work.
func (h *QAHandler) reqCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

func (h *QAHandler) respondErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		h.log.Errorw("request failed", "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
