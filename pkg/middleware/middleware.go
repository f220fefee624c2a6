package middleware

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/common"
	"github.com/gofiber/fiber/v2"
)

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	AuthMiddleware    Middleware
	AdminMiddleware   Middleware
	MetricsMiddleware Middleware
	RecoverMiddleware Middleware
	CORSMiddleware    Middleware
}

// ActorFromContext returns the identity stored by the auth middleware.
func ActorFromContext(c *fiber.Ctx) (id string, role string, ok bool) {
	id, ok = c.Locals(common.ActorIDContextKey).(string)
	if !ok || id == "" {
		return "", "", false
	}
	role, _ = c.Locals(common.ActorRoleKey).(string)
	return id, role, true
}
