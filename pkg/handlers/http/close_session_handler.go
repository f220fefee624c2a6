package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type closeSessionHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewCloseSessionHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &closeSessionHandler{
		logger:  logger,
		service: service,
	}
}

func (h *closeSessionHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	s, err := h.service.CloseSession(c.Context(), actor.ID, c.Params("session_id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id": s.ID,
		"status":     s.Status,
		"ended_at":   s.EndedAt,
	})
}
