// Package policy decides which principal may act on which record.
package policy

import (
	"github.com/google/uuid"

	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
)

// Action is the operation requested on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// UserChange describes which sensitive user fields a write touches.
type UserChange struct {
	Role     bool
	IsActive bool
}

// AuthorizePriority allows admins everything and owners their own records.
func AuthorizePriority(p *Principal, ownerID uuid.UUID, action Action) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}
	if ownerID != p.UserID {
		if action == ActionCreate {
			return apperrors.Forbidden("cannot create priorities for other users")
		}
		return apperrors.Forbidden("priority belongs to another user")
	}
	return nil
}

// AuthorizePriorityReassign guards moving a priority to a different owner.
func AuthorizePriorityReassign(p *Principal, currentOwner, newOwner uuid.UUID) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	if currentOwner == newOwner || p.IsAdmin() {
		return nil
	}
	return apperrors.Forbidden("only administrators can reassign priorities")
}

// ScopePriorityOwner resolves the owner filter for listing priorities.
// Non-admins are always scoped to themselves; a nil result means "all owners".
func ScopePriorityOwner(p *Principal, requested *uuid.UUID) (*uuid.UUID, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if p.IsAdmin() {
		return requested, nil
	}
	if requested != nil && *requested != p.UserID {
		return nil, apperrors.Forbidden("cannot list priorities of other users")
	}
	self := p.UserID
	return &self, nil
}

// AuthorizeInitiative makes initiatives read-only for non-admins.
func AuthorizeInitiative(p *Principal, action Action) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	if p.IsAdmin() || action == ActionRead {
		return nil
	}
	return apperrors.Forbidden("only administrators can manage initiatives")
}

// AuthorizeUser lets non-admins read and edit their own profile, except role and active flag.
func AuthorizeUser(p *Principal, targetID uuid.UUID, action Action, change UserChange) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}
	switch action {
	case ActionRead:
		if targetID == p.UserID {
			return nil
		}
		return apperrors.Forbidden("cannot view other users")
	case ActionUpdate:
		if targetID != p.UserID {
			return apperrors.Forbidden("cannot edit other users")
		}
		if change.Role || change.IsActive {
			return apperrors.Forbidden("only administrators can change role or active status")
		}
		return nil
	default:
		return apperrors.Forbidden("only administrators can manage users")
	}
}

// AuthorizeAdmin rejects everyone but administrators.
func AuthorizeAdmin(p *Principal) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return apperrors.Forbidden("administrator role required")
	}
	return nil
}
