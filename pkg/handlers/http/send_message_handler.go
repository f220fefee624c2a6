package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/common"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http/request"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type sendMessageHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewSendMessageHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &sendMessageHandler{
		logger:  logger,
		service: service,
	}
}

func (h *sendMessageHandler) Handle(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req request.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}

	metadata := utils.ParseUserAgent(c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderAcceptLanguage)).Metadata()
	if requestID, ok := c.Locals(common.RequestIDKey).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	// UserContext survives the request; async hooks may still hold it.
	resp, err := h.service.SendMessage(c.UserContext(), conversation.SendRequest{
		ActorID:   actor.ID,
		Text:      req.Message,
		SessionID: req.SessionID,
		Metadata:  metadata,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
