package service

import (
	"context"
	"testing"

	"agrirent/internal/equipment/validator"
	"agrirent/pkg/config"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/logger"
	"agrirent/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testEquipmentID = "64b0c4f1a2b3c4d5e6f7a8b9"
	testOwnerID     = "owner-1"
)

// Mock repository for testing

type mockEquipmentRepository struct {
	createFunc         func(ctx context.Context, equipment *model.Equipment) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Equipment, error)
	findFunc           func(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, error)
	countFunc          func(ctx context.Context, filter model.EquipmentFilter) (int64, error)
	addReviewFunc      func(ctx context.Context, id string, review model.Review, newRating float64) error
	setReviewReplyFunc func(ctx context.Context, id string, reviewID string, reply string) error
}

func (m *mockEquipmentRepository) Create(ctx context.Context, equipment *model.Equipment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, equipment)
	}
	return nil
}

func (m *mockEquipmentRepository) FindByID(ctx context.Context, id string) (*model.Equipment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Equipment{ID: id, OwnerID: testOwnerID}, nil
}

func (m *mockEquipmentRepository) Find(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockEquipmentRepository) Count(ctx context.Context, filter model.EquipmentFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockEquipmentRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Equipment, error) {
	return nil, nil
}

func (m *mockEquipmentRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return 0, nil
}

func (m *mockEquipmentRepository) Update(ctx context.Context, id string, equipment *model.Equipment) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockEquipmentRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockEquipmentRepository) AddReview(ctx context.Context, id string, review model.Review, newRating float64) error {
	if m.addReviewFunc != nil {
		return m.addReviewFunc(ctx, id, review, newRating)
	}
	return nil
}

func (m *mockEquipmentRepository) SetReviewReply(ctx context.Context, id string, reviewID string, reply string) error {
	if m.setReviewReplyFunc != nil {
		return m.setReviewReplyFunc(ctx, id, reviewID, reply)
	}
	return nil
}

func newTestService(repo *mockEquipmentRepository) EquipmentService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ErrorLevel,
			Format:  logger.FormatJSON,
			Service: "test",
		}),
	}
	return NewEquipmentService(repo, validator.NewEquipmentValidator(cfg.Log), cfg)
}

func floatPtr(f float64) *float64 { return &f }

func TestCreate_DefaultsAndSanitization(t *testing.T) {
	var created *model.Equipment
	repo := &mockEquipmentRepository{
		createFunc: func(ctx context.Context, equipment *model.Equipment) error {
			created = equipment
			return nil
		},
	}
	service := newTestService(repo)

	_, err := service.Create(context.Background(), testOwnerID, &model.EquipmentCreate{
		Name:        "  john   deere 5050d  ",
		Description: "45 HP utility tractor",
		Category:    model.CategoryTractor,
		DailyRate:   floatPtr(100),
		WeeklyRate:  floatPtr(600),
		MonthlyRate: floatPtr(2000),
		Location:    "  pune  ",
		Features:    []string{"GPS", "gps", " AC Cabin "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected the equipment to be persisted")
	}
	if !created.Availability {
		t.Error("new equipment should default to available")
	}
	if created.Rating != 0 || len(created.Reviews) != 0 {
		t.Errorf("new equipment should start unrated, got rating %.1f with %d reviews", created.Rating, len(created.Reviews))
	}
	if created.Name != "john deere 5050d" {
		t.Errorf("expected whitespace collapsed in the name, got %q", created.Name)
	}
	if len(created.Features) != 2 {
		t.Errorf("expected duplicate features collapsed, got %v", created.Features)
	}
}

func TestCreate_InvalidCategory(t *testing.T) {
	service := newTestService(&mockEquipmentRepository{})

	_, err := service.Create(context.Background(), testOwnerID, &model.EquipmentCreate{
		Name:        "Drone",
		Description: "Crop surveillance drone",
		Category:    "aircraft",
		DailyRate:   floatPtr(100),
		WeeklyRate:  floatPtr(600),
		MonthlyRate: floatPtr(2000),
		Location:    "Pune",
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestUpdate_OnlyOwner(t *testing.T) {
	service := newTestService(&mockEquipmentRepository{})

	_, err := service.Update(context.Background(), testEquipmentID, "someone-else", &model.EquipmentUpdate{
		DailyRate: floatPtr(150),
	})
	if err == nil {
		t.Fatal("expected a forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	repo := &mockEquipmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			return &model.Equipment{
				ID:          id,
				OwnerID:     testOwnerID,
				Name:        "Old Name",
				Description: "Old description",
				DailyRate:   100,
			}, nil
		},
	}
	service := newTestService(repo)

	updated, err := service.Update(context.Background(), testEquipmentID, testOwnerID, &model.EquipmentUpdate{
		DailyRate: floatPtr(150),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.DailyRate != 150 {
		t.Errorf("expected daily rate updated to 150, got %.2f", updated.DailyRate)
	}
	if updated.Name != "Old Name" || updated.Description != "Old description" {
		t.Error("fields not present in the update must be left unchanged")
	}
}

func TestAddReview_RecomputesMeanRating(t *testing.T) {
	repo := &mockEquipmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			return &model.Equipment{
				ID:      id,
				OwnerID: testOwnerID,
				Rating:  4,
				Reviews: []model.Review{
					{ID: "r1", ReviewerID: "farmer-1", Rating: 5},
					{ID: "r2", ReviewerID: "farmer-2", Rating: 3},
				},
			}, nil
		},
	}
	var gotRating float64
	repo.addReviewFunc = func(ctx context.Context, id string, review model.Review, newRating float64) error {
		gotRating = newRating
		return nil
	}
	service := newTestService(repo)

	equipment, err := service.AddReview(context.Background(), testEquipmentID, "farmer-3", &model.ReviewCreate{
		Rating:  4,
		Comment: "Solid machine",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotRating != 4 {
		t.Errorf("expected mean of 5, 3 and 4 to be 4, got %.2f", gotRating)
	}
	if len(equipment.Reviews) != 3 {
		t.Errorf("expected the new review appended, got %d reviews", len(equipment.Reviews))
	}
	if equipment.Reviews[2].ID == "" {
		t.Error("expected a generated review id")
	}
}

func TestAddReview_OnePerReviewer(t *testing.T) {
	repo := &mockEquipmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			return &model.Equipment{
				ID:      id,
				OwnerID: testOwnerID,
				Reviews: []model.Review{
					{ID: "r1", ReviewerID: "farmer-1", Rating: 5},
				},
			}, nil
		},
	}
	service := newTestService(repo)

	_, err := service.AddReview(context.Background(), testEquipmentID, "farmer-1", &model.ReviewCreate{
		Rating: 2,
	})
	if err == nil {
		t.Fatal("expected a conflict error for a repeat reviewer")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestReplyToReview_OnlyOwner(t *testing.T) {
	service := newTestService(&mockEquipmentRepository{})

	err := service.ReplyToReview(context.Background(), testEquipmentID, "r1", "someone-else", &model.ReviewReply{
		Reply: "Thanks for the feedback",
	})
	if err == nil {
		t.Fatal("expected a forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}

func TestList_ReturnsCountAndItems(t *testing.T) {
	repo := &mockEquipmentRepository{
		countFunc: func(ctx context.Context, filter model.EquipmentFilter) (int64, error) {
			return 42, nil
		},
		findFunc: func(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, error) {
			return []*model.Equipment{{ID: testEquipmentID}}, nil
		},
	}
	service := newTestService(repo)

	items, total, err := service.List(context.Background(), model.EquipmentFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("expected total 42, got %d", total)
	}
	if len(items) != 1 {
		t.Errorf("expected one item, got %d", len(items))
	}
}
