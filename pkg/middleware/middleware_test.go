package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/jwt"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/prometheus"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := logrus.New()
	manager := jwt.NewJwtManager(secret, nil)

	app := fiber.New()
	app.Use(middleware.NewAuthMiddleware(logger, manager).Middleware())
	app.Get("/me", func(c *fiber.Ctx) error {
		id, role, ok := middleware.ActorFromContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"id": id, "role": role})
	})
	app.Put("/admin", middleware.NewRoleMiddleware(logger, "admin").Middleware(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func token(t *testing.T, subject, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := jwt.NewJwtManager(secret, nil).CreateToken(subject, role, ttl)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	app := newAuthApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	app := newAuthApp(t)

	other, err := jwt.NewJwtManager("other", nil).CreateToken("u-1", "", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ValidTokenSetsActor(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u-1", "ciudadano", time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-1", body["id"])
	assert.Equal(t, "ciudadano", body["role"])
}

func TestRoleMiddleware(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest(http.MethodPut, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u-1", "", time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPut, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "admin-1", "admin", time.Hour))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoleMiddleware_WithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", middleware.NewRoleMiddleware(logrus.New(), "admin").Middleware(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPanicRecoverMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(logrus.New()).Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCORSGlobalMiddleware_Preflight(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewCORSGlobalMiddleware([]string{"https://portal.example.gob"}, nil, true, nil, "600").Middleware())
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("OK") })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://portal.example.gob")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://portal.example.gob", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", resp.Header.Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

type syncWorker struct {
	submitted []string
}

func (w *syncWorker) Shutdown()          {}
func (w *syncWorker) StartWorkers(n int) {}
func (w *syncWorker) Submit(name string, task func()) bool {
	w.submitted = append(w.submitted, name)
	task()
	return true
}

func httpCounter(t *testing.T, method, route, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, prometheus.HTTPRequestsTotal.WithLabelValues(method, route, status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetricsMiddleware_CountsAndTagsRequest(t *testing.T) {
	worker := &syncWorker{}
	fixed := uuid.MustParse("7f0c2d1e-0a8b-4c55-9b7e-3f1d2a6c9e10")
	app := fiber.New()
	app.Use(middleware.NewMetricsMiddleware(logrus.New(), worker, &middleware.MetricsOpts{
		UuidProvider: func() uuid.UUID { return fixed },
	}).Middleware())
	app.Get("/sessions/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	before := httpCounter(t, http.MethodGet, "/sessions/:id", "4xx")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, fixed.String(), resp.Header.Get("X-Request-Id"))
	assert.Equal(t, []string{"http_metrics"}, worker.submitted)
	assert.Equal(t, before+1, httpCounter(t, http.MethodGet, "/sessions/:id", "4xx"))
}

func TestMetricsMiddleware_KeepsIncomingRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewMetricsMiddleware(logrus.New(), &syncWorker{}, nil).Middleware())
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("OK") })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-Id"))
}
