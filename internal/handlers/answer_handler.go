package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/placehub/anonqa-service/internal/service"
)

func (h *QAHandler) CreateAnswer(c *fiber.Ctx) error {
	var body service.SubmitAnswerInput
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	a, err := h.svc.SubmitAnswer(ctx, body)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *QAHandler) ListAnswers(c *fiber.Ctx) error {
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	as, err := h.svc.ListAnswers(ctx, c.Params("questionId"))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(as)
}

func (h *QAHandler) React(c *fiber.Ctx) error {
	var body struct {
		Reaction string `json:"reaction"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	a, err := h.svc.React(ctx, c.Params("answerId"), body.Reaction)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(a)
}

func (h *QAHandler) ReportAnswer(c *fiber.Ctx) error {
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	a, err := h.svc.ReportAnswer(ctx, c.Params("answerId"))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(a)
}
