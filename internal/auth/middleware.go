package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
	"prioritytracker/internal/policy"
)

const (
	// SessionCookie carries the access token for browser clients.
	SessionCookie = "pt_session"
	// RefreshCookie carries the refresh token for browser clients.
	RefreshCookie = "pt_refresh"

	tokenContextKey     = "jwt"
	principalContextKey = "principal"
)

// UserLookup returns the stored record behind a session.
type UserLookup interface {
	SessionUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

// GuardConfig configures Guard.
type GuardConfig struct {
	JWT   *JWTService
	Store TokenStoreInterface
	// Users resolves the caller's current role and active flag; the token's role claim is not trusted.
	Users UserLookup
}

// Guard authenticates every request it wraps and stores the Principal in the context.
// Tokens are read from the Authorization header first, then from the session cookie.
func Guard(cfg GuardConfig) echo.MiddlewareFunc {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		SigningKey:  cfg.JWT.Secret(),
		ContextKey:  tokenContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + SessionCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasCredentials(c) {
				return apperrors.ErrAuthRequired
			}
			return apperrors.ErrInvalidToken
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return apperrors.ErrInvalidToken
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.TokenType != TokenTypeAccess || claims.ID == "" {
				return apperrors.ErrInvalidToken
			}
			userID, err := claims.UserUUID()
			if err != nil {
				return apperrors.ErrInvalidToken
			}

			ctx := c.Request().Context()
			if revoked, _ := cfg.Store.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
				return apperrors.ErrInvalidToken
			}
			user, err := cfg.Users.SessionUser(ctx, userID)
			if err != nil || user == nil {
				return apperrors.ErrInvalidToken
			}
			if !user.IsActive {
				return apperrors.ErrInactiveUser
			}

			c.Set(principalContextKey, &policy.Principal{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			})
			return next(c)
		})
	}
}

// RequireAdmin rejects principals without the ADMIN role. It must run after Guard.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.AuthorizeAdmin(PrincipalFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal, or nil.
func PrincipalFrom(c echo.Context) *policy.Principal {
	p, _ := c.Get(principalContextKey).(*policy.Principal)
	return p
}

// RemainingTTL is how long the token behind claims stays valid.
func RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}

func hasCredentials(c echo.Context) bool {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		return true
	}
	cookie, err := c.Cookie(SessionCookie)
	return err == nil && cookie.Value != ""
}

// SetSessionCookies writes the access and refresh cookies.
func SetSessionCookies(c echo.Context, accessToken, refreshToken string, secure bool) {
	c.SetCookie(sessionCookie(SessionCookie, accessToken, AccessTokenExpiry, secure))
	if refreshToken != "" {
		c.SetCookie(sessionCookie(RefreshCookie, refreshToken, RefreshTokenExpiry, secure))
	}
}

// ClearSessionCookies expires both cookies.
func ClearSessionCookies(c echo.Context, secure bool) {
	c.SetCookie(sessionCookie(SessionCookie, "", -1, secure))
	c.SetCookie(sessionCookie(RefreshCookie, "", -1, secure))
}

func sessionCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		cookie.MaxAge = int(ttl.Seconds())
	}
	return cookie
}
