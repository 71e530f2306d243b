package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"prioritytracker/internal/auth"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "  Ana@Empresa.com ",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "ana@empresa.com").Return(&model.User{
					ID:           userID,
					Email:        "ana@empresa.com",
					PasswordHash: hashed(t, "password123"),
					Role:         model.RoleUser,
					IsActive:     true,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, "ana@empresa.com", auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@empresa.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "nobody@empresa.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "ana@empresa.com",
			password: "nope-nope",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "ana@empresa.com").Return(&model.User{
					ID: userID, Email: "ana@empresa.com", PasswordHash: hashed(t, "password123"), IsActive: true,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			email:    "ana@empresa.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "ana@empresa.com").Return(&model.User{
					ID: userID, Email: "ana@empresa.com", PasswordHash: hashed(t, "password123"), IsActive: false,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockTokenStore)
			session, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, session)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, session.AccessToken)
				assert.NotEmpty(t, session.RefreshToken)
				assert.Equal(t, userID, session.User.ID)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), Email: "ana@empresa.com", Role: model.RoleAdmin, IsActive: true}
	tokenID, refresh, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)

	t.Run("issues a fresh access token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(user.ID, user.Email, nil)
		mockRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		session, err := NewAuthService(mockRepo, jwtService, mockTokenStore).Refresh(context.Background(), refresh)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(session.AccessToken, auth.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, "", errors.New("refresh token not found"))

		_, err := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore).Refresh(context.Background(), refresh)
		assert.Equal(t, apperrors.ErrInvalidToken, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, access, err := jwtService.GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore)).Refresh(context.Background(), access)
		assert.Equal(t, apperrors.ErrInvalidToken, err)
	})

	t.Run("deactivated user", func(t *testing.T) {
		inactive := *user
		inactive.IsActive = false
		mockRepo := new(MockUserRepository)
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(user.ID, user.Email, nil)
		mockTokenStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)
		mockRepo.On("FindByID", mock.Anything, user.ID).Return(&inactive, nil)

		_, err := NewAuthService(mockRepo, jwtService, mockTokenStore).Refresh(context.Background(), refresh)
		assert.Equal(t, apperrors.ErrInactiveUser, err)
		mockTokenStore.AssertExpectations(t)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), Email: "ana@empresa.com", Role: model.RoleUser}
	refreshID, refresh, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)
	_, access, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(access, auth.TokenTypeAccess)
	require.NoError(t, err)

	mockTokenStore := new(MockTokenStore)
	mockTokenStore.On("DeleteRefreshToken", mock.Anything, refreshID).Return(nil)
	mockTokenStore.On("BlacklistAccessToken", mock.Anything, claims.ID, mock.AnythingOfType("time.Duration")).Return(nil)

	service := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
	require.NoError(t, service.Logout(context.Background(), refresh, claims))
	mockTokenStore.AssertExpectations(t)

	// garbage refresh tokens are ignored
	assert.NoError(t, service.Logout(context.Background(), "garbage", nil))
}
