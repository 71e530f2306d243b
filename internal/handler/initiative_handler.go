package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"prioritytracker/internal/auth"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/repository"
	"prioritytracker/internal/service"
)

// InitiativeHandler serves strategic initiatives.
type InitiativeHandler struct {
	svc service.InitiativeService
}

// NewInitiativeHandler creates an InitiativeHandler.
func NewInitiativeHandler(svc service.InitiativeService) *InitiativeHandler {
	return &InitiativeHandler{svc: svc}
}

// CreateInitiativeRequest is the body of POST /initiatives.
type CreateInitiativeRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateInitiativeRequest is the body of PUT /initiatives/{id}.
type UpdateInitiativeRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Order       *int    `json:"order" validate:"omitempty,min=1"`
	IsActive    *bool   `json:"isActive"`
}

// ReorderRequest lists initiative ids in their new order. Unlisted initiatives move after them.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// MoveRequest shifts one initiative by a single position.
type MoveRequest struct {
	Direction repository.Direction `json:"direction" validate:"required,oneof=up down"`
}

// ListInitiatives godoc
// @Summary List strategic initiatives
// @Tags initiatives
// @Produce json
// @Security BearerAuth
// @Param activeOnly query bool false "Only active initiatives"
// @Success 200 {array} model.StrategicInitiative
// @Router /initiatives [get]
func (h *InitiativeHandler) ListInitiatives(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), auth.PrincipalFrom(c), queryBool(c, "activeOnly"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetInitiative godoc
// @Summary Get initiative
// @Tags initiatives
// @Produce json
// @Security BearerAuth
// @Param id path string true "Initiative ID"
// @Success 200 {object} model.StrategicInitiative
// @Failure 404 {object} errors.ErrorResponse
// @Router /initiatives/{id} [get]
func (h *InitiativeHandler) GetInitiative(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	initiative, err := h.svc.Get(c.Request().Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, initiative)
}

// CreateInitiative godoc
// @Summary Create initiative
// @Tags initiatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param initiative body CreateInitiativeRequest true "Initiative payload"
// @Success 201 {object} model.StrategicInitiative
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /initiatives [post]
func (h *InitiativeHandler) CreateInitiative(c echo.Context) error {
	var req CreateInitiativeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svc.Create(c.Request().Context(), auth.PrincipalFrom(c), service.CreateInitiativeInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateInitiative godoc
// @Summary Update initiative
// @Tags initiatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Initiative ID"
// @Param initiative body UpdateInitiativeRequest true "Fields to change"
// @Success 200 {object} model.StrategicInitiative
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /initiatives/{id} [put]
func (h *InitiativeHandler) UpdateInitiative(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateInitiativeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.svc.Update(c.Request().Context(), auth.PrincipalFrom(c), id, service.UpdateInitiativeInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Order:       req.Order,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteInitiative godoc
// @Summary Delete initiative
// @Description Initiatives still referenced by priorities cannot be deleted; deactivate them instead.
// @Tags initiatives
// @Produce json
// @Security BearerAuth
// @Param id path string true "Initiative ID"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /initiatives/{id} [delete]
func (h *InitiativeHandler) DeleteInitiative(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.MessageResponse{Message: "initiative deleted"})
}

// ReorderInitiatives godoc
// @Summary Reorder initiatives
// @Tags initiatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderRequest true "Ids in their new order"
// @Success 200 {array} model.StrategicInitiative
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /initiatives/reorder [put]
func (h *InitiativeHandler) ReorderInitiatives(c echo.Context) error {
	var req ReorderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.svc.Reorder(c.Request().Context(), auth.PrincipalFrom(c), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// MoveInitiative godoc
// @Summary Move an initiative up or down
// @Tags initiatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Initiative ID"
// @Param request body MoveRequest true "Direction"
// @Success 200 {array} model.StrategicInitiative
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /initiatives/{id}/move [post]
func (h *InitiativeHandler) MoveInitiative(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req MoveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.svc.Move(c.Request().Context(), auth.PrincipalFrom(c), id, req.Direction)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
