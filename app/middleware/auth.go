package middleware

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"
	"inventory-automation/pkg"
	"inventory-automation/pkg/ctxutil"

	"github.com/gofiber/fiber/v2"
)

// Auth admits bearer tokens signed with secretKey whose role claim equals
// adminRole.
func Auth(secretKey, adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {

		token, err := pkg.GetTokenFromHeaders(c.Get("Authorization"))
		if err != nil {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "GetTokenFromHeaders", err)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		claims, err := pkg.ParseJwtToken(token, secretKey)
		if err != nil {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "ParseJwtToken", err)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		if claims.UID == 0 {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "userID", "0")
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		if claims.Role != adminRole {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "role", claims.Role)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		c.Locals(ctxutil.UserIDKey, claims.UID)
		return c.Next()
	}
}
