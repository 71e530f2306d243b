package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"prioritytracker/internal/auth"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
	"prioritytracker/internal/service"
)

// PriorityHandler serves weekly priorities.
type PriorityHandler struct {
	svc service.PriorityService
	loc *time.Location
}

// NewPriorityHandler creates a PriorityHandler. Bare dates are read in loc.
func NewPriorityHandler(svc service.PriorityService, loc *time.Location) *PriorityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PriorityHandler{svc: svc, loc: loc}
}

// CreatePriorityRequest is the body of POST /priorities.
// weekStart and weekEnd accept YYYY-MM-DD or RFC 3339; both default to the current week.
type CreatePriorityRequest struct {
	Title                string               `json:"title" validate:"required,max=150"`
	Description          string               `json:"description"`
	InitiativeID         string               `json:"initiativeId" validate:"required,uuid"`
	UserID               *string              `json:"userId" validate:"omitempty,uuid"`
	WeekStart            string               `json:"weekStart"`
	WeekEnd              string               `json:"weekEnd"`
	CompletionPercentage int                  `json:"completionPercentage" validate:"min=0,max=100"`
	Status               model.PriorityStatus `json:"status" validate:"omitempty,oneof=EN_TIEMPO EN_RIESGO BLOQUEADO COMPLETADO"`
	IsCarriedOver        bool                 `json:"isCarriedOver"`
}

// UpdatePriorityRequest is the body of PUT /priorities/{id}. Absent fields are left untouched.
// When version is sent it must match the stored one.
type UpdatePriorityRequest struct {
	Title                *string               `json:"title" validate:"omitempty,max=150"`
	Description          *string               `json:"description"`
	InitiativeID         *string               `json:"initiativeId" validate:"omitempty,uuid"`
	UserID               *string               `json:"userId" validate:"omitempty,uuid"`
	WeekStart            *string               `json:"weekStart"`
	CompletionPercentage *int                  `json:"completionPercentage" validate:"omitempty,min=0,max=100"`
	Status               *model.PriorityStatus `json:"status" validate:"omitempty,oneof=EN_TIEMPO EN_RIESGO BLOQUEADO COMPLETADO"`
	IsCarriedOver        *bool                 `json:"isCarriedOver"`
	Version              *int                  `json:"version" validate:"omitempty,min=1"`
}

// ListPriorities godoc
// @Summary List priorities
// @Description Non-admin callers only see their own priorities.
// @Tags priorities
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Owner"
// @Param initiativeId query string false "Initiative"
// @Param weekStart query string false "Lower bound on weekStart (inclusive)"
// @Param weekEnd query string false "Upper bound on weekStart (inclusive)"
// @Success 200 {array} model.Priority
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /priorities [get]
func (h *PriorityHandler) ListPriorities(c echo.Context) error {
	var (
		q   service.PriorityQuery
		err error
	)
	if q.UserID, err = queryUUID(c, "userId"); err != nil {
		return err
	}
	if q.InitiativeID, err = queryUUID(c, "initiativeId"); err != nil {
		return err
	}
	if q.WeekStart, err = parseInstant(c.QueryParam("weekStart"), h.loc, false); err != nil {
		return err
	}
	if q.WeekEnd, err = parseInstant(c.QueryParam("weekEnd"), h.loc, true); err != nil {
		return err
	}

	list, err := h.svc.List(c.Request().Context(), auth.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetPriority godoc
// @Summary Get priority
// @Tags priorities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Priority ID"
// @Success 200 {object} model.Priority
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /priorities/{id} [get]
func (h *PriorityHandler) GetPriority(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	priority, err := h.svc.Get(c.Request().Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, priority)
}

// CreatePriority godoc
// @Summary Create priority
// @Tags priorities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param priority body CreatePriorityRequest true "Priority payload"
// @Success 201 {object} model.Priority
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /priorities [post]
func (h *PriorityHandler) CreatePriority(c echo.Context) error {
	var req CreatePriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.CreatePriorityInput{
		Title:                req.Title,
		Description:          req.Description,
		InitiativeID:         uuid.MustParse(req.InitiativeID),
		CompletionPercentage: req.CompletionPercentage,
		Status:               req.Status,
		IsCarriedOver:        req.IsCarriedOver,
	}
	var err error
	if in.UserID, err = parseOptionalUUID(req.UserID, "userId"); err != nil {
		return err
	}
	if in.WeekStart, err = parseInstant(req.WeekStart, h.loc, false); err != nil {
		return err
	}
	if in.WeekEnd, err = weekBound(req.WeekEnd, h.loc); err != nil {
		return err
	}

	created, err := h.svc.Create(c.Request().Context(), auth.PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdatePriority godoc
// @Summary Update priority
// @Description Marks the priority as edited and bumps its version.
// @Tags priorities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Priority ID"
// @Param priority body UpdatePriorityRequest true "Fields to change"
// @Success 200 {object} model.Priority
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /priorities/{id} [put]
func (h *PriorityHandler) UpdatePriority(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdatePriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.UpdatePriorityInput{
		Title:                req.Title,
		Description:          req.Description,
		CompletionPercentage: req.CompletionPercentage,
		Status:               req.Status,
		IsCarriedOver:        req.IsCarriedOver,
		Version:              req.Version,
	}
	if in.InitiativeID, err = parseOptionalUUID(req.InitiativeID, "initiativeId"); err != nil {
		return err
	}
	if in.UserID, err = parseOptionalUUID(req.UserID, "userId"); err != nil {
		return err
	}
	if req.WeekStart != nil {
		if in.WeekStart, err = parseInstant(*req.WeekStart, h.loc, false); err != nil {
			return err
		}
	}

	updated, err := h.svc.Update(c.Request().Context(), auth.PrincipalFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePriority godoc
// @Summary Delete priority
// @Tags priorities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Priority ID"
// @Success 200 {object} errors.MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /priorities/{id} [delete]
func (h *PriorityHandler) DeletePriority(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.MessageResponse{Message: "priority deleted"})
}
