package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/week"
)

const dateLayout = "2006-01-02"

// bind decodes the request body into req and runs the registered validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid id")
	}
	return id, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation("invalid " + name)
	}
	return &id, nil
}

func queryBool(c echo.Context, name string) bool {
	v := strings.ToLower(strings.TrimSpace(c.QueryParam(name)))
	return v == "true" || v == "1"
}

// parseInstant accepts a date (2006-01-02, read in loc) or an RFC 3339 timestamp.
// A bare date used as an upper bound covers the whole day.
func parseInstant(raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		if endOfDay {
			d = d.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, apperrors.Validation("invalid date " + raw)
	}
	t = t.In(loc)
	return &t, nil
}

// weekBound parses a weekEnd value; a bare date resolves to the end of that week.
func weekBound(raw string, loc *time.Location) (*time.Time, error) {
	t, err := parseInstant(raw, loc, false)
	if err != nil || t == nil {
		return t, err
	}
	if _, dateErr := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc); dateErr == nil {
		end := week.Of(*t).End
		return &end, nil
	}
	return t, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperrors.Validation("invalid " + field)
	}
	return &id, nil
}
