package service

import (
	"context"
	"testing"

	"agrirent/pkg/config"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/logger"
	"agrirent/pkg/model"
)

const testEquipmentID = "64b0c4f1a2b3c4d5e6f7a8b9"

type mockAnalyticsRepository struct {
	incrementFunc   func(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error
	ensureZeroFunc  func(ctx context.Context) (int64, error)
	getAllRowsFunc  func(ctx context.Context) ([]*model.AnalyticsRow, error)
	incrementCalled bool
}

func (m *mockAnalyticsRepository) IncrementCompletion(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error {
	m.incrementCalled = true
	if m.incrementFunc != nil {
		return m.incrementFunc(ctx, equipmentID, revenue, durationDays, actorID)
	}
	return nil
}

func (m *mockAnalyticsRepository) EnsureZeroRecords(ctx context.Context) (int64, error) {
	if m.ensureZeroFunc != nil {
		return m.ensureZeroFunc(ctx)
	}
	return 0, nil
}

func (m *mockAnalyticsRepository) GetAllRows(ctx context.Context) ([]*model.AnalyticsRow, error) {
	if m.getAllRowsFunc != nil {
		return m.getAllRowsFunc(ctx)
	}
	return nil, nil
}

func newTestService(repo *mockAnalyticsRepository) AnalyticsService {
	return NewAnalyticsService(repo, &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ErrorLevel,
			Format:  logger.FormatJSON,
			Service: "test",
		}),
	})
}

func TestRecordCompletion_PassesFactsThrough(t *testing.T) {
	var gotRevenue float64
	var gotDays int
	repo := &mockAnalyticsRepository{
		incrementFunc: func(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error {
			gotRevenue = revenue
			gotDays = durationDays
			return nil
		},
	}
	service := newTestService(repo)

	if err := service.RecordCompletion(context.Background(), testEquipmentID, 300, 6, "owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRevenue != 300 || gotDays != 6 {
		t.Errorf("repository got (%.2f, %d), want (300, 6)", gotRevenue, gotDays)
	}
}

func TestRecordCompletion_InputGuards(t *testing.T) {
	tests := []struct {
		name        string
		equipmentID string
		revenue     float64
		days        int
	}{
		{"empty equipment id", "", 100, 2},
		{"negative revenue", testEquipmentID, -1, 2},
		{"zero duration", testEquipmentID, 100, 0},
		{"negative duration", testEquipmentID, 100, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAnalyticsRepository{}
			service := newTestService(repo)

			err := service.RecordCompletion(context.Background(), tt.equipmentID, tt.revenue, tt.days, "owner-1")
			if err == nil {
				t.Fatal("expected an invalid input error")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
			}
			if repo.incrementCalled {
				t.Error("the repository must not be written for invalid input")
			}
		})
	}
}

func TestRecordCompletion_ZeroRevenueAllowed(t *testing.T) {
	repo := &mockAnalyticsRepository{}
	service := newTestService(repo)

	if err := service.RecordCompletion(context.Background(), testEquipmentID, 0, 1, "owner-1"); err != nil {
		t.Fatalf("free rentals still count toward usage, got %v", err)
	}
	if !repo.incrementCalled {
		t.Error("expected the repository increment to run")
	}
}

func TestGetAll_ReturnsRows(t *testing.T) {
	repo := &mockAnalyticsRepository{
		getAllRowsFunc: func(ctx context.Context) ([]*model.AnalyticsRow, error) {
			return []*model.AnalyticsRow{
				{EquipmentID: testEquipmentID, RentalCount: 2, TotalRevenue: 300, TotalDurationDays: 6, AvgDurationDays: 3},
			}, nil
		},
	}
	service := newTestService(repo)

	rows, err := service.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].AvgDurationDays != 3 {
		t.Errorf("expected average 3, got %.2f", rows[0].AvgDurationDays)
	}
}
