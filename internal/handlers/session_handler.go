package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *QAHandler) InitSession(c *fiber.Ctx) error {
	var body struct {
		SessionID  string `json:"sessionId"`
		AnimalIcon string `json:"animalIcon"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	s, err := h.svc.InitSession(ctx, body.SessionID, body.AnimalIcon)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(s)
}

func (h *QAHandler) SessionStats(c *fiber.Ctx) error {
	ctx, cancel := h.reqCtx(c)
	defer cancel()
	stats, err := h.svc.SessionStats(ctx, c.Params("sessionId"))
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(stats)
}
