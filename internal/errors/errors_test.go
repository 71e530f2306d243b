package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found domain error",
			err:        ErrPriorityNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "PRIORITY_NOT_FOUND",
			wantMsg:    "priority not found",
		},
		{
			name:       "wrapped domain error keeps its code",
			err:        fmt.Errorf("update user: %w", ErrDuplicateEmail),
			wantStatus: http.StatusBadRequest,
			wantCode:   "DUPLICATE_EMAIL",
			wantMsg:    "email is already registered",
		},
		{
			name:       "last admin is a bad request",
			err:        ErrLastAdmin,
			wantStatus: http.StatusBadRequest,
			wantCode:   "LAST_ADMIN",
		},
		{
			name:       "bare kind",
			err:        ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantMsg:    "forbidden",
		},
		{
			name:       "version conflict",
			err:        ErrVersionConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "VERSION_CONFLICT",
		},
		{
			name:       "unknown error is hidden",
			err:        errors.New("dial tcp 10.0.0.3:3306: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, httpErr.Message)
			}
		})
	}
}

func TestDomainErrorUnwrapsToKind(t *testing.T) {
	assert.True(t, errors.Is(ErrWeakCredential, ErrValidation))
	assert.True(t, errors.Is(fmt.Errorf("create: %w", ErrUserNotFound), ErrNotFound))
	assert.False(t, errors.Is(ErrUserNotFound, ErrForbidden))
}
