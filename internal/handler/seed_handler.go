package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"prioritytracker/internal/config"
	"prioritytracker/internal/seed"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	seeder *seed.Seeder
	admin  config.Admin
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(seeder *seed.Seeder, admin config.Admin) *SeedHandler {
	return &SeedHandler{seeder: seeder, admin: admin}
}

// SeedDefaults godoc
// @Summary Create the default initiatives and bootstrap admin when missing
// @Tags seed
// @Produce json
// @Security BearerAuth
// @Success 200 {object} seed.Result
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *SeedHandler) SeedDefaults(c echo.Context) error {
	res, err := h.seeder.Run(c.Request().Context(), h.admin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
