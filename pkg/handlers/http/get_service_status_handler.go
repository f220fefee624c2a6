package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getServiceStatusHandler struct {
	logger  *logrus.Logger
	service conversation.Service
}

func NewGetServiceStatusHandler(logger *logrus.Logger, service conversation.Service) Handler {
	return &getServiceStatusHandler{
		logger:  logger,
		service: service,
	}
}

// Handle always answers 200; model availability is part of the body.
func (h *getServiceStatusHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.GetServiceStatus(c.Context()))
}
