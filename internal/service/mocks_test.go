package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"prioritytracker/internal/model"
	"prioritytracker/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, activeOnly bool) ([]model.User, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) CountActiveAdmins(ctx context.Context, excluding uuid.UUID) (int64, error) {
	args := m.Called(ctx, excluding)
	return args.Get(0).(int64), args.Error(1)
}

// MockInitiativeRepository is a mock implementation of InitiativeRepository.
type MockInitiativeRepository struct {
	mock.Mock
}

func (m *MockInitiativeRepository) Create(ctx context.Context, initiative *model.StrategicInitiative) error {
	return m.Called(ctx, initiative).Error(0)
}

func (m *MockInitiativeRepository) Update(ctx context.Context, initiative *model.StrategicInitiative) error {
	return m.Called(ctx, initiative).Error(0)
}

func (m *MockInitiativeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInitiativeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StrategicInitiative, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StrategicInitiative), args.Error(1)
}

func (m *MockInitiativeRepository) List(ctx context.Context, activeOnly bool) ([]model.StrategicInitiative, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StrategicInitiative), args.Error(1)
}

func (m *MockInitiativeRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInitiativeRepository) MaxOrder(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockInitiativeRepository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockInitiativeRepository) Move(ctx context.Context, id uuid.UUID, dir repository.Direction) error {
	return m.Called(ctx, id, dir).Error(0)
}

// WithTransaction runs fn against the mock itself.
func (m *MockInitiativeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.InitiativeRepository) error) error {
	return fn(ctx, m)
}

// MockPriorityRepository is a mock implementation of PriorityRepository.
type MockPriorityRepository struct {
	mock.Mock
}

func (m *MockPriorityRepository) Create(ctx context.Context, priority *model.Priority) error {
	return m.Called(ctx, priority).Error(0)
}

func (m *MockPriorityRepository) Update(ctx context.Context, priority *model.Priority, expectedVersion int) error {
	return m.Called(ctx, priority, expectedVersion).Error(0)
}

func (m *MockPriorityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPriorityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Priority, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Priority), args.Error(1)
}

func (m *MockPriorityRepository) List(ctx context.Context, filter repository.PriorityFilter) ([]model.Priority, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Priority), args.Error(1)
}

func (m *MockPriorityRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPriorityRepository) CountByInitiative(ctx context.Context, initiativeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, initiativeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, userID, email, ttl).Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
