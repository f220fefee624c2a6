package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type startSessionHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewStartSessionHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &startSessionHandler{
		logger:  logger,
		service: service,
	}
}

func (h *startSessionHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req request.StartSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	resp, err := h.service.StartSession(c.Context(), actor.ID, req.ForceNew)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	status := fiber.StatusCreated
	if resp.IsExisting {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(resp)
}
