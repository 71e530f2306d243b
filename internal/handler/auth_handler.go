package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"prioritytracker/internal/auth"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
	"prioritytracker/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  service.AuthService
	userService  service.UserService
	jwtService   *auth.JWTService
	cookieSecure bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, userService service.UserService, jwtService *auth.JWTService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		jwtService:   jwtService,
		cookieSecure: cookieSecure,
	}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request. The refresh cookie is used when empty.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *model.User `json:"user,omitempty"`
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookies(c, session.AccessToken, session.RefreshToken, h.cookieSecure)
	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         session.User,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := h.refreshToken(c)
	if refreshToken == "" {
		return apperrors.ErrInvalidToken
	}

	session, err := h.authService.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return err
	}

	auth.SetSessionCookies(c, session.AccessToken, "", h.cookieSecure)
	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken: session.AccessToken,
		User:        session.User,
	})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the refresh token and the presented access token. Always succeeds.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} errors.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := h.refreshToken(c)

	var access *auth.Claims
	if raw := h.accessToken(c); raw != "" {
		if claims, err := h.jwtService.ValidateToken(raw, auth.TokenTypeAccess); err == nil {
			access = claims
		}
	}

	if err := h.authService.Logout(c.Request().Context(), refreshToken, access); err != nil {
		return err
	}

	auth.ClearSessionCookies(c, h.cookieSecure)
	return c.JSON(http.StatusOK, apperrors.MessageResponse{Message: "logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p := auth.PrincipalFrom(c)
	if p == nil {
		return apperrors.ErrAuthRequired
	}
	user, err := h.userService.Get(c.Request().Context(), p, p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) refreshToken(c echo.Context) string {
	var req RefreshRequest
	// an empty or non-JSON body falls through to the cookie
	_ = c.Bind(&req)
	if token := strings.TrimSpace(req.RefreshToken); token != "" {
		return token
	}
	if cookie, err := c.Cookie(auth.RefreshCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandler) accessToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
