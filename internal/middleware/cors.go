package middleware

import (
	"strings"

	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration. An empty AllowedOrigins allows every
// origin (the API carries no credentials).
type CORSConfig struct {
	AllowedOrigins []string
}

// CORS returns a Fiber handler that answers preflights and sets CORS headers
// for allowed origins.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// No origin (same-origin or tools): allow
		if origin == "" {
			return c.Next()
		}
		if !originAllowed(cfg.AllowedOrigins, origin) {
			return response.Error(c, fiber.StatusForbidden, "Not allowed by CORS", "origin "+origin+" is not allowed", nil)
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
