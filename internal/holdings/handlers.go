package holdings

import (
	"folio-backend/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles holdings handlers. Errors are returned as-is; the global
// error handler maps them to the standard JSON error body.
type Handlers struct {
	Service *Service
}

// List GET /api/v1/holdings
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.Context(), c.Query("type"), c.Query("tags"), c.Query("sort"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create POST /api/v1/holdings
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return apperrors.Validation("Request body must be valid JSON")
	}
	created, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(created)
}

// Update PUT /api/v1/holdings/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("Invalid holding ID format (must be a valid UUID)")
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return apperrors.Validation("Request body must be valid JSON")
	}
	updated, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// Delete DELETE /api/v1/holdings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("Invalid holding ID format (must be a valid UUID)")
	}
	deleted, err := h.Service.Delete(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(deleted)
}

// UpdatePrices GET /api/v1/holdings/update-prices
// Always 200 when the holding set could be loaded; per-holding failures are
// reported in the body, never as an HTTP failure.
func (h *Handlers) UpdatePrices(c *fiber.Ctx) error {
	result, err := h.Service.RefreshAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Prices updated",
		"updates":  result.Updated,
		"failures": result.Failures,
	})
}
