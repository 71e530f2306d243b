package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"prioritytracker/internal/auth"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
	"prioritytracker/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the body of POST /users.
// Password length is checked by the service so the WEAK_CREDENTIAL code is preserved.
type CreateUserRequest struct {
	Name     string     `json:"name" validate:"required,max=255"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=ADMIN USER"`
	IsActive *bool      `json:"isActive"`
}

// UpdateUserRequest is the body of PUT /users/{id}.
type UpdateUserRequest struct {
	Name     *string     `json:"name" validate:"omitempty,max=255"`
	Email    *string     `json:"email" validate:"omitempty,email"`
	Password *string     `json:"password"`
	Role     *model.Role `json:"role" validate:"omitempty,oneof=ADMIN USER"`
	IsActive *bool       `json:"isActive"`
}

// ResetPasswordRequest is the body of POST /users/{id}/reset-password.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svc.Create(c.Request().Context(), auth.PrincipalFrom(c), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Description Admins see every user ordered by name; other users only themselves.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param activeOnly query bool false "Only active users"
// @Success 200 {array} model.User
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context(), auth.PrincipalFrom(c), queryBool(c, "activeOnly"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.svc.Update(c.Request().Context(), auth.PrincipalFrom(c), id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.MessageResponse{Message: "user deleted"})
}

// ResetPassword godoc
// @Summary Reset a user's password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResetPassword(c.Request().Context(), auth.PrincipalFrom(c), id, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.MessageResponse{Message: "password updated"})
}
