package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"prioritytracker/internal/week"
)

// WeekHandler exposes week navigation.
type WeekHandler struct {
	loc *time.Location
	now func() time.Time
}

// NewWeekHandler creates a WeekHandler computing weeks in loc.
func NewWeekHandler(loc *time.Location) *WeekHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &WeekHandler{loc: loc, now: time.Now}
}

// WeekResponse describes a work week and its neighbours.
type WeekResponse struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Label     string    `json:"label"`
	Previous  week.Week `json:"previous"`
	Next      week.Week `json:"next"`
}

// CurrentWeek godoc
// @Summary Week containing a date
// @Tags weeks
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD or RFC 3339); defaults to now"
// @Success 200 {object} WeekResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /weeks/current [get]
func (h *WeekHandler) CurrentWeek(c echo.Context) error {
	at, err := parseInstant(c.QueryParam("date"), h.loc, false)
	if err != nil {
		return err
	}
	if at == nil {
		now := h.now().In(h.loc)
		at = &now
	}

	w := week.Of(*at)
	return c.JSON(http.StatusOK, WeekResponse{
		WeekStart: w.Start,
		WeekEnd:   w.End,
		Label:     w.Label(),
		Previous:  w.Previous(),
		Next:      w.Next(),
	})
}
