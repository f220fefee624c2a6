package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthHandler struct {
	timeProvider func() time.Time
}

func NewHealthHandler() Handler {
	return &healthHandler{timeProvider: time.Now}
}

func (h *healthHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"time":   h.timeProvider().UTC().Format(time.RFC3339),
	})
}
