package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const ClientIPContextKey = "client_ip"

// RequestInfo resolves the real client IP behind Cloudflare or a reverse proxy.
func RequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(ClientIPContextKey, clientIP(c))
		return c.Next()
	}
}

func GetClientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(ClientIPContextKey).(string); ok && ip != "" {
		return ip
	}
	return clientIP(c)
}

func clientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return c.IP()
}
