package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Sessions
	StartSessionHandler Handler
	ListSessionsHandler Handler
	GetSessionHandler   Handler
	CloseSessionHandler Handler
	AddFeedbackHandler  Handler

	// Messages
	SendMessageHandler Handler

	// Service
	GetQuickRepliesHandler  Handler
	GetServiceStatusHandler Handler
	ToggleAIHandler         Handler

	GetVersionHandler Handler
	HealthHandler     Handler
}
