package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listSessionsHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewListSessionsHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &listSessionsHandler{
		logger:  logger,
		service: service,
	}
}

func (h *listSessionsHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	limit := c.QueryInt("limit", conversation.DefaultListLimit)
	sessions, err := h.service.ListSessions(c.Context(), actor.ID, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
