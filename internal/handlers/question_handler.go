package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *QAHandler) CreateQuestion(c *fiber.Ctx) error {
	var body struct {
		Text      string `json:"text"`
		SessionID string `json:"sessionId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	q, err := h.svc.SubmitQuestion(ctx, body.Text, body.SessionID)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

func (h *QAHandler) ListQuestions(c *fiber.Ctx) error {
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	qs, err := h.svc.ListQuestions(ctx)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(qs)
}

func (h *QAHandler) GetQuestion(c *fiber.Ctx) error {
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	q, err := h.svc.GetQuestion(ctx, c.Params("id"))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(q)
}

func (h *QAHandler) SetQuestionStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	q, err := h.svc.SetQuestionStatus(ctx, c.Params("id"), body.Status)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(q)
}
