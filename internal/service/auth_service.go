package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"prioritytracker/internal/auth"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/metrics"
	"prioritytracker/internal/model"
	"prioritytracker/internal/repository"
)

// Session is the result of a successful login or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	// Logout revokes the refresh token and, when present, the access token behind claims.
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Login authenticates an active user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginAttempt("failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// inactive accounts get the same answer as a wrong password
	if !user.IsActive {
		metrics.LoginAttempt("failure")
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttempt("failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttempt("success")
	return session, nil
}

// Refresh exchanges a stored refresh token for a new access token.
// Claims are rebuilt from the current user record so role changes apply.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != userID || storedEmail != claims.Email {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		_ = s.tokenStore.DeleteRefreshToken(ctx, claims.ID)
		return nil, apperrors.ErrInactiveUser
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &Session{AccessToken: accessToken, User: user}, nil
}

// Logout is idempotent: unknown or expired refresh tokens are ignored.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	if refreshToken != "" {
		if claims, err := s.jwtService.ValidateToken(refreshToken, auth.TokenTypeRefresh); err == nil {
			if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
				return fmt.Errorf("delete refresh token: %w", err)
			}
		}
	}
	if access != nil {
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, auth.RemainingTTL(access)); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (*Session, error) {
	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}
