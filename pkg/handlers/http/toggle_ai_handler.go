package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type toggleAIHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewToggleAIHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &toggleAIHandler{
		logger:  logger,
		service: service,
	}
}

func (h *toggleAIHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req request.ToggleAIRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}

	previous, err := h.service.ToggleAIResponses(c.Context(), actor, *req.Enabled)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"previous": previous,
		"enabled":  *req.Enabled,
	}).Info("AI responses toggled")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ai_enabled": *req.Enabled,
		"previous":   previous,
	})
}
