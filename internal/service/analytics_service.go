package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prioritytracker/internal/analytics"
	"prioritytracker/internal/policy"
	"prioritytracker/internal/repository"
)

// AnalyticsQuery narrows the priorities an aggregate is computed over.
type AnalyticsQuery struct {
	UserID       *uuid.UUID
	InitiativeID *uuid.UUID
	WeekStart    *time.Time
	WeekEnd      *time.Time
}

// AnalyticsService computes dashboard aggregates.
type AnalyticsService interface {
	UserStats(ctx context.Context, p *policy.Principal, q AnalyticsQuery) ([]analytics.UserStat, error)
	InitiativeStats(ctx context.Context, p *policy.Principal, q AnalyticsQuery) ([]analytics.InitiativeStat, error)
	History(ctx context.Context, p *policy.Principal, q AnalyticsQuery) ([]analytics.WeekStat, error)
	Summary(ctx context.Context, p *policy.Principal, q AnalyticsQuery) (*analytics.Summary, error)
}

type analyticsService struct {
	priorities  repository.PriorityRepository
	users       repository.UserRepository
	initiatives repository.InitiativeRepository
	loc         *time.Location
}

// NewAnalyticsService builds an AnalyticsService. History weeks are grouped in loc.
func NewAnalyticsService(priorities repository.PriorityRepository, users repository.UserRepository, initiatives repository.InitiativeRepository, loc *time.Location) AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &analyticsService{priorities: priorities, users: users, initiatives: initiatives, loc: loc}
}

// UserStats covers every user with the USER role, deactivated ones included. Admin only.
func (s *analyticsService) UserStats(ctx context.Context, p *policy.Principal, q AnalyticsQuery) ([]analytics.UserStat, error) {
	if err := policy.AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	priorities, err := s.priorities.List(ctx, filterFor(q, q.UserID))
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	return analytics.UserStats(users, priorities), nil
}

// InitiativeStats covers every initiative, active or not. Admin only.
func (s *analyticsService) InitiativeStats(ctx context.Context, p *policy.Principal, q AnalyticsQuery) ([]analytics.InitiativeStat, error) {
	if err := policy.AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	initiatives, err := s.initiatives.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	priorities, err := s.priorities.List(ctx, filterFor(q, q.UserID))
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	return analytics.InitiativeStats(initiatives, priorities), nil
}

func (s *analyticsService) History(ctx context.Context, p *policy.Principal, q AnalyticsQuery) ([]analytics.WeekStat, error) {
	owner, err := policy.ScopePriorityOwner(p, q.UserID)
	if err != nil {
		return nil, err
	}
	priorities, err := s.priorities.List(ctx, filterFor(q, owner))
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	return analytics.History(priorities, s.loc), nil
}

func (s *analyticsService) Summary(ctx context.Context, p *policy.Principal, q AnalyticsQuery) (*analytics.Summary, error) {
	owner, err := policy.ScopePriorityOwner(p, q.UserID)
	if err != nil {
		return nil, err
	}
	priorities, err := s.priorities.List(ctx, filterFor(q, owner))
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	summary := analytics.Summarize(priorities)
	return &summary, nil
}

func filterFor(q AnalyticsQuery, owner *uuid.UUID) repository.PriorityFilter {
	return repository.PriorityFilter{
		UserID:       owner,
		InitiativeID: q.InitiativeID,
		WeekFrom:     q.WeekStart,
		WeekTo:       q.WeekEnd,
	}
}
