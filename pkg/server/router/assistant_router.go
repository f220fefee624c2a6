package router

import (
	"errors"

	handlers "github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type assistantRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewAssistantRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &assistantRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *assistantRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	m := r.middlewareTransport
	if h == nil || m == nil || m.AuthMiddleware == nil || m.AdminMiddleware == nil {
		return ErrInvalidHandlerTransport
	}

	for _, mw := range []middleware.Middleware{m.RecoverMiddleware, m.CORSMiddleware, m.MetricsMiddleware} {
		if mw != nil {
			router.Use(mw.Middleware())
		}
	}

	router.Get("/health", h.HealthHandler.Handle)
	router.Get("/version", h.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		assistant := v1.Group("/assistant", m.AuthMiddleware.Middleware())
		{
			sessions := assistant.Group("/sessions")
			{
				sessions.Post("", h.StartSessionHandler.Handle)
				sessions.Get("", h.ListSessionsHandler.Handle)
				sessions.Get("/:session_id", h.GetSessionHandler.Handle)
				sessions.Post("/:session_id/close", h.CloseSessionHandler.Handle)
				sessions.Post("/:session_id/feedback", h.AddFeedbackHandler.Handle)
			}

			assistant.Post("/messages", h.SendMessageHandler.Handle)
			assistant.Get("/quick-replies", h.GetQuickRepliesHandler.Handle)
			assistant.Get("/status", h.GetServiceStatusHandler.Handle)
			assistant.Put("/settings/ai", m.AdminMiddleware.Middleware(), h.ToggleAIHandler.Handle)
		}
	}
	return nil
}
