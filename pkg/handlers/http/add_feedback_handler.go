package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type addFeedbackHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewAddFeedbackHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &addFeedbackHandler{
		logger:  logger,
		service: service,
	}
}

func (h *addFeedbackHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req request.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}

	s, err := h.service.AddFeedback(c.Context(), actor.ID, c.Params("session_id"), *req.Rating, req.Comment)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id": s.ID,
		"feedback":   s.Feedback,
	})
}
