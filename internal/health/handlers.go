package health

import (
	"folio-backend/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers serves the health endpoints.
type Handlers struct {
	Rdb *redis.Client
	DB  DBPinger
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.JSON(Collect(c.Context(), h.Rdb, h.DB))
}

// RefreshFailures GET /health/refresh-failures
func (h *Handlers) RefreshFailures(c *fiber.Ctx) error {
	entries, err := RecentFailures(c.Context(), h.Rdb, c.QueryInt("limit", 50))
	if err != nil {
		return apperrors.External("Failed to read refresh failures", err)
	}
	return c.JSON(fiber.Map{"failures": entries})
}

// ResetCounters GET /health/reset
func (h *Handlers) ResetCounters(c *fiber.Ctx) error {
	if err := Reset(c.Context(), h.Rdb); err != nil {
		return apperrors.External("Failed to reset counters", err)
	}
	return c.JSON(fiber.Map{"message": "Counters reset"})
}
