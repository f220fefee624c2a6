package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getSessionHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewGetSessionHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &getSessionHandler{
		logger:  logger,
		service: service,
	}
}

func (h *getSessionHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	s, err := h.service.GetSessionDetails(c.Context(), actor.ID, c.Params("session_id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(s)
}
