package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"prioritytracker/internal/auth"
	"prioritytracker/internal/service"
)

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	svc service.AnalyticsService
	loc *time.Location
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(svc service.AnalyticsService, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{svc: svc, loc: loc}
}

func (h *AnalyticsHandler) query(c echo.Context) (service.AnalyticsQuery, error) {
	var (
		q   service.AnalyticsQuery
		err error
	)
	if q.UserID, err = queryUUID(c, "userId"); err != nil {
		return q, err
	}
	if q.InitiativeID, err = queryUUID(c, "initiativeId"); err != nil {
		return q, err
	}
	if q.WeekStart, err = parseInstant(c.QueryParam("weekStart"), h.loc, false); err != nil {
		return q, err
	}
	q.WeekEnd, err = parseInstant(c.QueryParam("weekEnd"), h.loc, true)
	return q, err
}

// UserStats godoc
// @Summary Per-user completion statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User"
// @Param initiativeId query string false "Initiative"
// @Param weekStart query string false "From week"
// @Param weekEnd query string false "To week"
// @Success 200 {array} analytics.UserStat
// @Failure 403 {object} errors.ErrorResponse
// @Router /analytics/users [get]
func (h *AnalyticsHandler) UserStats(c echo.Context) error {
	q, err := h.query(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.UserStats(c.Request().Context(), auth.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// InitiativeStats godoc
// @Summary Priority distribution per initiative
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User"
// @Param weekStart query string false "From week"
// @Param weekEnd query string false "To week"
// @Success 200 {array} analytics.InitiativeStat
// @Failure 403 {object} errors.ErrorResponse
// @Router /analytics/initiatives [get]
func (h *AnalyticsHandler) InitiativeStats(c echo.Context) error {
	q, err := h.query(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.InitiativeStats(c.Request().Context(), auth.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// History godoc
// @Summary Priorities grouped by week, newest first
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User (admins only)"
// @Param initiativeId query string false "Initiative"
// @Param weekStart query string false "From week"
// @Param weekEnd query string false "To week"
// @Success 200 {array} analytics.WeekStat
// @Failure 403 {object} errors.ErrorResponse
// @Router /analytics/history [get]
func (h *AnalyticsHandler) History(c echo.Context) error {
	q, err := h.query(c)
	if err != nil {
		return err
	}
	history, err := h.svc.History(c.Request().Context(), auth.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

// Summary godoc
// @Summary Dashboard totals
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User (admins only)"
// @Param initiativeId query string false "Initiative"
// @Param weekStart query string false "From week"
// @Param weekEnd query string false "To week"
// @Success 200 {object} analytics.Summary
// @Failure 403 {object} errors.ErrorResponse
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	q, err := h.query(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Summary(c.Request().Context(), auth.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
