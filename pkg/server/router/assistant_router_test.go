package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation/mocks"
	handlers "github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/jwt"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/middleware"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func buildApp(t *testing.T, svc conversation.Service, manager jwt.Manager) *fiber.App {
	t.Helper()
	logger := logrus.New()
	mt := &middleware.Transport{
		AuthMiddleware:    middleware.NewAuthMiddleware(logger, manager),
		AdminMiddleware:   middleware.NewRoleMiddleware(logger, conversation.RoleAdmin),
		RecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
	}
	ht := &handlers.HandlerTransport{
		StartSessionHandler:     handlers.NewStartSessionHandler(logger, svc),
		ListSessionsHandler:     handlers.NewListSessionsHandler(logger, svc),
		GetSessionHandler:       handlers.NewGetSessionHandler(logger, svc),
		CloseSessionHandler:     handlers.NewCloseSessionHandler(logger, svc),
		AddFeedbackHandler:      handlers.NewAddFeedbackHandler(logger, svc),
		SendMessageHandler:      handlers.NewSendMessageHandler(logger, svc),
		GetQuickRepliesHandler:  handlers.NewGetQuickRepliesHandler(logger, svc),
		GetServiceStatusHandler: handlers.NewGetServiceStatusHandler(logger, svc),
		ToggleAIHandler:         handlers.NewToggleAIHandler(logger, svc),
		GetVersionHandler:       handlers.NewGetVersionHandler(logger),
		HealthHandler:           handlers.NewHealthHandler(),
	}
	app := fiber.New()
	require.NoError(t, router.NewAssistantRouter(mt, ht).BuildRoutes(app))
	return app
}

func bearer(t *testing.T, manager jwt.Manager, subject, role string) string {
	t.Helper()
	tok, err := manager.CreateToken(subject, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAssistantRouter_PublicRoutes(t *testing.T) {
	app := buildApp(t, new(mocks.Service), jwt.NewJwtManager("secret", nil))

	for _, path := range []string{"/health", "/version"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestAssistantRouter_RequiresToken(t *testing.T) {
	svc := new(mocks.Service)
	app := buildApp(t, svc, jwt.NewJwtManager("secret", nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/assistant/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	svc.AssertNotCalled(t, "ListSessions", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssistantRouter_ActorComesFromToken(t *testing.T) {
	manager := jwt.NewJwtManager("secret", nil)
	svc := new(mocks.Service)
	svc.On("GetQuickReplies", "productor").Return([]string{"¿Qué programas de apoyo hay para mi cultivo?"})
	app := buildApp(t, svc, manager)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assistant/quick-replies?user_type=productor", nil)
	req.Header.Set("Authorization", bearer(t, manager, "u-1", ""))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestAssistantRouter_ToggleRequiresAdmin(t *testing.T) {
	manager := jwt.NewJwtManager("secret", nil)
	svc := new(mocks.Service)
	svc.On("ToggleAIResponses", mock.Anything, conversation.Actor{ID: "admin-1", Role: "admin"}, true).Return(false, nil)
	app := buildApp(t, svc, manager)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/assistant/settings/ai", bytes.NewBufferString(`{"enabled":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, manager, "u-1", "ciudadano"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/assistant/settings/ai", bytes.NewBufferString(`{"enabled":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, manager, "admin-1", "admin"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestAssistantRouter_InvalidTransport(t *testing.T) {
	err := router.NewAssistantRouter(&middleware.Transport{}, &handlers.HandlerTransport{}).BuildRoutes(fiber.New())
	assert.ErrorIs(t, err, router.ErrInvalidHandlerTransport)
}
