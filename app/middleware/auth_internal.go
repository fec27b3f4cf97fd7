package middleware

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"
	"inventory-automation/config"

	"github.com/gofiber/fiber/v2"
)

type AuthInternalHeader string

const (
	AuthInternalHeaderKey AuthInternalHeader = "X-Internal-Auth"
)

func AuthInternal(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(string(AuthInternalHeaderKey))
		if authHeader == "" || authHeader != cfg.InternalAuthHeader {
			slog.WarnContext(c.Context(), "[middleware] AuthInternal", "header", "invalid")
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		return c.Next()
	}
}
