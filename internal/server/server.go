package server

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/placehub/anonqa-service/internal/config"
	"github.com/placehub/anonqa-service/internal/handlers"
	"github.com/placehub/anonqa-service/internal/middleware"
	"github.com/placehub/anonqa-service/internal/ws"
)

// New assembles the Fiber app: REST surface under /api/v1 plus the shared
// websocket endpoint all realtime clients connect to.
func New(cfg *config.Config, svc handlers.QAService, hub *ws.Hub, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(fiberrecover.New())
	app.Use(fiberlogger.New())

	h := handlers.NewQAHandler(svc, cfg.RequestTimeout, log)
	moderated := middleware.BearerAuth(cfg.App.JWTSecret)

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api.Post("/sessions/init", h.InitSession)
	api.Get("/sessions/:sessionId/stats", h.SessionStats)

	api.Post("/questions", h.CreateQuestion)
	api.Get("/questions", h.ListQuestions)
	api.Get("/questions/:id", h.GetQuestion)
	api.Patch("/questions/:id/status", moderated, h.SetQuestionStatus)

	api.Post("/answers", h.CreateAnswer)
	api.Get("/answers/:questionId", h.ListAnswers)
	api.Post("/answers/:answerId/react", h.React)
	api.Post("/answers/:answerId/report", moderated, h.ReportAnswer)

	app.Get("/ws", websocket.New(hub.HandleConn))

	return app
}
