package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// roleMiddleware must run after the auth middleware.
type roleMiddleware struct {
	logger *logrus.Logger
	role   string
}

func NewRoleMiddleware(logger *logrus.Logger, role string) Middleware {
	return &roleMiddleware{
		logger: logger,
		role:   role,
	}
}

func (m *roleMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		actorID, role, ok := ActorFromContext(ctx)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required"})
		}
		if role != m.role {
			m.logger.WithFields(logrus.Fields{
				"actor_id": actorID,
				"role":     role,
				"path":     ctx.Path(),
			}).Debug("insufficient role")
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return ctx.Next()
	}
}
