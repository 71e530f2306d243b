package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"prioritytracker/internal/cache"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
	"prioritytracker/internal/policy"
	"prioritytracker/internal/repository"
)

const (
	userCacheTTL = 5 * time.Minute
	bcryptCost   = 10

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
)

// CreateUserInput carries the fields of a new user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	IsActive *bool
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *model.Role
	IsActive *bool
}

// UserService exposes user registry operations.
type UserService interface {
	List(ctx context.Context, p *policy.Principal, activeOnly bool) ([]model.User, error)
	Get(ctx context.Context, p *policy.Principal, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, p *policy.Principal, in CreateUserInput) (*model.User, error)
	Update(ctx context.Context, p *policy.Principal, id uuid.UUID, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, p *policy.Principal, id uuid.UUID) error
	ResetPassword(ctx context.Context, p *policy.Principal, id uuid.UUID, password string) error
	SessionUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	repo       repository.UserRepository
	priorities repository.PriorityRepository
	cache      *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, priorities repository.PriorityRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, priorities: priorities, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// List returns every user for admins and only the caller otherwise.
func (s *userService) List(ctx context.Context, p *policy.Principal, activeOnly bool) ([]model.User, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		self, err := s.find(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		if activeOnly && !self.IsActive {
			return []model.User{}, nil
		}
		return []model.User{*self}, nil
	}

	users, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, p *policy.Principal, id uuid.UUID) (*model.User, error) {
	if err := policy.AuthorizeUser(p, id, policy.ActionRead, policy.UserChange{}); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *userService) Create(ctx context.Context, p *policy.Principal, in CreateUserInput) (*model.User, error) {
	if err := policy.AuthorizeUser(p, uuid.Nil, policy.ActionCreate, policy.UserChange{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("role must be ADMIN or USER")
	}
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, p *policy.Principal, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	change := policy.UserChange{Role: in.Role != nil, IsActive: in.IsActive != nil}
	if err := policy.AuthorizeUser(p, id, policy.ActionUpdate, change); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("name is required")
		}
		user.Name = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, apperrors.Validation("email is required")
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	losesAdmin := false
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.Validation("role must be ADMIN or USER")
		}
		losesAdmin = user.Role == model.RoleAdmin && *in.Role != model.RoleAdmin
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		losesAdmin = losesAdmin || (user.Role == model.RoleAdmin && user.IsActive && !*in.IsActive)
		user.IsActive = *in.IsActive
	}
	if losesAdmin {
		if err := s.ensureAnotherAdmin(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// Delete removes a user. The last active admin and users that still own
// priorities cannot be deleted.
func (s *userService) Delete(ctx context.Context, p *policy.Principal, id uuid.UUID) error {
	if err := policy.AuthorizeUser(p, id, policy.ActionDelete, policy.UserChange{}); err != nil {
		return err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, user.ID); err != nil {
			return err
		}
	}

	owned, err := s.priorities.CountByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("count priorities: %w", err)
	}
	if owned > 0 {
		return apperrors.ErrUserHasPriorities
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, p *policy.Principal, id uuid.UUID, password string) error {
	if err := policy.AuthorizeUser(p, id, policy.ActionUpdate, policy.UserChange{}); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// SessionUser backs the session guard. It reads through the user cache, which
// every write to a user invalidates, so role and status changes apply to live tokens.
func (s *userService) SessionUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.find(ctx, id)
}

// find reads a user through the cache.
func (s *userService) find(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// load reads a user from the database, bypassing the cache.
func (s *userService) load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, owner uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != owner {
		return apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *userService) ensureAnotherAdmin(ctx context.Context, id uuid.UUID) error {
	others, err := s.repo.CountActiveAdmins(ctx, id)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if others == 0 {
		return apperrors.ErrLastAdmin
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperrors.ErrWeakCredential
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
