package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/templecast/templecast/internal/models"
)

// Zones returns the current zone data. Reads drive the auto-refresh
// clock: the session decides whether a regeneration is due before the
// state is returned.
func (h *Handler) Zones(c *fiber.Ctx) error {
	h.session.RefreshIfDue(h.now())
	return c.JSON(h.zonesResponse())
}

// Refresh forces a regeneration regardless of the auto-refresh timer.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	h.session.ManualRefresh(h.now())
	return c.JSON(models.RefreshResponse{
		Refreshed: true,
		Zones:     h.zonesResponse(),
	})
}

// AutoRefresh toggles the session's auto-refresh flag.
func (h *Handler) AutoRefresh(c *fiber.Ctx) error {
	var req models.AutoRefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request body: expected {\"enabled\": bool}",
			},
		})
	}

	h.session.SetAutoRefresh(req.Enabled)
	return c.JSON(models.AutoRefreshResponse{Enabled: req.Enabled})
}
