package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type corsGlobalMiddleware struct {
	allowOrigins     []string
	allowMethods     []string
	allowCredentials bool
	exposeHeaders    []string
	maxAge           string
}

func NewCORSGlobalMiddleware(
	allowOrigins []string,
	allowMethods []string,
	allowCredentials bool,
	exposeHeaders []string,
	maxAge string,
) Middleware {
	if len(allowMethods) == 0 {
		allowMethods = []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodOptions}
	}
	return &corsGlobalMiddleware{
		allowOrigins:     allowOrigins,
		allowMethods:     allowMethods,
		allowCredentials: allowCredentials,
		exposeHeaders:    exposeHeaders,
		maxAge:           maxAge,
	}
}

func (m *corsGlobalMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}

		if m.allowed(origin) {
			c.Set("Vary", "Origin")
			if m.allowCredentials {
				c.Set("Access-Control-Allow-Origin", origin)
				c.Set("Access-Control-Allow-Credentials", "true")
			} else {
				if hasStar(m.allowOrigins) {
					c.Set("Access-Control-Allow-Origin", "*")
				} else {
					c.Set("Access-Control-Allow-Origin", origin)
				}
			}
			if len(m.exposeHeaders) > 0 {
				c.Set("Access-Control-Expose-Headers", strings.Join(m.exposeHeaders, ", "))
			}

			// Preflight requests end here.
			if c.Method() == fiber.MethodOptions && c.Get("Access-Control-Request-Method") != "" {
				c.Set("Access-Control-Allow-Methods", strings.Join(m.allowMethods, ", "))
				if reqHeaders := c.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					c.Set("Access-Control-Allow-Headers", reqHeaders)
				} else {
					c.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				}
				if m.maxAge != "" {
					c.Set("Access-Control-Max-Age", m.maxAge)
				}
				return c.SendStatus(fiber.StatusNoContent)
			}
		}
		return c.Next()
	}
}

func (m *corsGlobalMiddleware) allowed(origin string) bool {
	for _, o := range m.allowOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func hasStar(arr []string) bool {
	for _, v := range arr {
		if v == "*" {
			return true
		}
	}
	return false
}
