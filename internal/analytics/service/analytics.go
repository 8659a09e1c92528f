package service

import (
	"context"

	"agrirent/internal/analytics/repository"
	"agrirent/pkg/config"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/model"
)

type AnalyticsService interface {
	RecordCompletion(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error
	InitializeAll(ctx context.Context) error
	GetAll(ctx context.Context) ([]*model.AnalyticsRow, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
	cfg  *config.Config
}

func NewAnalyticsService(repo repository.AnalyticsRepository, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *analyticsService) RecordCompletion(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error {
	if equipmentID == "" {
		return apperrors.InvalidInput("Equipment ID cannot be empty")
	}
	if revenue < 0 {
		return apperrors.InvalidInput("Revenue cannot be negative")
	}
	if durationDays <= 0 {
		return apperrors.InvalidInput("Duration must be at least one day")
	}

	if err := s.repo.IncrementCompletion(ctx, equipmentID, revenue, durationDays, actorID); err != nil {
		s.cfg.Log.Error("Failed to increment analytics",
			"equipment_id", equipmentID,
			"error", err,
		)
		return apperrors.Internal("Failed to record completion", err)
	}

	s.cfg.Log.Info("Completion recorded",
		"equipment_id", equipmentID,
		"revenue", revenue,
		"duration_days", durationDays,
	)
	return nil
}

// InitializeAll backfills zeroed records so every equipment shows up in
// reports. Runs at server start; safe to run repeatedly.
func (s *analyticsService) InitializeAll(ctx context.Context) error {
	created, err := s.repo.EnsureZeroRecords(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to initialize analytics records", "error", err)
		return apperrors.Internal("Failed to initialize analytics", err)
	}

	s.cfg.Log.Info("Analytics records initialized", "created", created)
	return nil
}

func (s *analyticsService) GetAll(ctx context.Context) ([]*model.AnalyticsRow, error) {
	rows, err := s.repo.GetAllRows(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list analytics rows", "error", err)
		return nil, apperrors.Internal("Failed to retrieve analytics", err)
	}

	return rows, nil
}
