package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getQuickRepliesHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewGetQuickRepliesHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &getQuickRepliesHandler{
		logger:  logger,
		service: service,
	}
}

func (h *getQuickRepliesHandler) Handle(c *fiber.Ctx) error {
	userType := c.Query("user_type")
	replies := h.service.GetQuickReplies(userType)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_type":     userType,
		"quick_replies": replies,
	})
}
