package http

import (
	"errors"
	"strconv"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/common"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	codeValidation      = "validation_error"
	codeRateLimited     = "rate_limited"
	codeNotFound        = "session_not_found"
	codeExpired         = "session_expired"
	codeClosed          = "session_closed"
	codeTooManySessions = "too_many_sessions"
	codeMessageLimit    = "message_limit_reached"
	codeForbidden       = "forbidden"
	codeUnauthorized    = "unauthorized"
	codeInternal        = "internal_error"
)

// respondError maps the domain error taxonomy to a status code and body.
func respondError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		body := fiber.Map{
			"error": validationErr.Message,
			"code":  codeValidation,
			"rule":  validationErr.Rule,
		}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	var rateErr *domain.RateLimitExceededError
	if errors.As(err, &rateErr) {
		retry := rateErr.RetryAfterSeconds()
		c.Set(common.RetryAfterHeader, strconv.Itoa(retry))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "Too many messages, please wait before trying again",
			"code":        codeRateLimited,
			"retry_after": retry,
		})
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound), domain.IsNotFoundError(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found", "code": codeNotFound})
	case errors.Is(err, domain.ErrSessionExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "Session expired, please start a new session",
			"code":  codeExpired,
		})
	case errors.Is(err, domain.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Session is closed", "code": codeClosed})
	case errors.Is(err, domain.ErrTooManySessions):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Too many active sessions, close one before starting another",
			"code":  codeTooManySessions,
		})
	case errors.Is(err, domain.ErrMessageLimitReached):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This session reached its message limit, please start a new session",
			"code":  codeMessageLimit,
		})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions", "code": codeForbidden})
	}

	logger.WithError(err).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error", "code": codeInternal})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required", "code": codeUnauthorized})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body", "code": codeValidation})
}
