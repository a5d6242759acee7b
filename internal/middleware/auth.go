package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"portfolio-catalog/internal/service/auth"
)

// AdminRequired rejects requests without a valid admin bearer token.
func AdminRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		if _, err := authService.ValidateAccessToken(parts[1]); err != nil {
			return Unauthorized("Invalid or expired token")
		}
		return c.Next()
	}
}
