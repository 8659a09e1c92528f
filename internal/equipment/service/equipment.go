package service

import (
	"context"
	"errors"
	"sync"
	"time"

	equipmenterrors "agrirent/internal/equipment/errors"
	"agrirent/internal/equipment/repository"
	"agrirent/internal/equipment/validator"
	"agrirent/pkg/config"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/model"
	"agrirent/pkg/sanitizer"

	"github.com/google/uuid"
)

type EquipmentService interface {
	List(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, int64, error)
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	Create(ctx context.Context, ownerID string, req *model.EquipmentCreate) (*model.Equipment, error)
	Update(ctx context.Context, id string, callerID string, req *model.EquipmentUpdate) (*model.Equipment, error)
	Delete(ctx context.Context, id string, callerID string) error
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Equipment, int64, error)
	AddReview(ctx context.Context, id string, reviewerID string, req *model.ReviewCreate) (*model.Equipment, error)
	ReplyToReview(ctx context.Context, id string, reviewID string, callerID string, req *model.ReviewReply) error
}

type equipmentService struct {
	repo      repository.EquipmentRepository
	validator *validator.EquipmentValidator
	cfg       *config.Config
}

func NewEquipmentService(
	repo repository.EquipmentRepository,
	validator *validator.EquipmentValidator,
	cfg *config.Config,
) EquipmentService {
	return &equipmentService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *equipmentService) List(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, int64, error) {
	var count int64
	var equipment []*model.Equipment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count equipment", "error", errCount)
			errCount = apperrors.Internal("Failed to count equipment", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		equipment, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list equipment", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve equipment", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return equipment, count, nil
}

func (s *equipmentService) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return equipment, nil
}

func (s *equipmentService) Create(ctx context.Context, ownerID string, req *model.EquipmentCreate) (*model.Equipment, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Equipment validation failed", "error", err)
		return nil, apperrors.Validation("Equipment validation failed", map[string]any{"error": err.Error()})
	}

	equipment := &model.Equipment{
		OwnerID:        ownerID,
		Name:           sanitizer.NormalizeName(req.Name),
		Description:    sanitizer.TrimAndNormalize(req.Description),
		Category:       req.Category,
		Images:         req.Images,
		DailyRate:      *req.DailyRate,
		WeeklyRate:     *req.WeeklyRate,
		MonthlyRate:    *req.MonthlyRate,
		Availability:   true,
		Specifications: req.Specifications,
		Location:       sanitizer.NormalizeLocation(req.Location),
		Features:       sanitizer.SanitizeSlice(req.Features, sanitizer.NormalizeLabel),
		Rating:         0,
		Reviews:        []model.Review{},
	}

	if err := s.repo.Create(ctx, equipment); err != nil {
		s.cfg.Log.Error("Failed to create equipment", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to create equipment", err)
	}

	s.cfg.Log.Info("Equipment created successfully",
		"id", equipment.ID,
		"owner_id", ownerID,
		"category", equipment.Category,
	)
	return equipment, nil
}

func (s *equipmentService) Update(ctx context.Context, id string, callerID string, req *model.EquipmentUpdate) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(req); err != nil {
		s.cfg.Log.Warn("Equipment update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if existing.OwnerID != callerID {
		return nil, apperrors.Forbidden("Only the equipment owner can update it")
	}

	merged := s.mergeUpdates(existing, req)

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, equipmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Equipment", id)
		}
		s.cfg.Log.Error("Failed to update equipment", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update equipment", err)
	}

	s.cfg.Log.Info("Equipment updated successfully", "id", id)
	return merged, nil
}

func (s *equipmentService) Delete(ctx context.Context, id string, callerID string) error {
	if id == "" {
		return apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if existing.OwnerID != callerID {
		return apperrors.Forbidden("Only the equipment owner can delete it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, equipmenterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Equipment", id)
		}
		s.cfg.Log.Error("Failed to delete equipment", "id", id, "error", err)
		return apperrors.Internal("Failed to delete equipment", err)
	}

	s.cfg.Log.Info("Equipment deleted successfully", "id", id, "owner_id", callerID)
	return nil
}

func (s *equipmentService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Equipment, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	var count int64
	var equipment []*model.Equipment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count owner equipment", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count equipment", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		equipment, errFind = s.repo.FindByOwner(ctx, ownerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list owner equipment", "owner_id", ownerID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve equipment", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return equipment, count, nil
}

func (s *equipmentService) AddReview(ctx context.Context, id string, reviewerID string, req *model.ReviewCreate) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	if err := s.validator.ValidateReview(req); err != nil {
		s.cfg.Log.Warn("Review validation failed", "equipment_id", id, "error", err)
		return nil, apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	for _, existing := range equipment.Reviews {
		if existing.ReviewerID == reviewerID {
			return nil, apperrors.Conflict("You have already reviewed this equipment")
		}
	}

	review := model.Review{
		ID:         uuid.New().String(),
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    sanitizer.TrimAndNormalize(req.Comment),
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}

	newRating := recomputeRating(equipment.Reviews, review)

	if err := s.repo.AddReview(ctx, id, review, newRating); err != nil {
		if errors.Is(err, equipmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Equipment", id)
		}
		s.cfg.Log.Error("Failed to add review", "equipment_id", id, "error", err)
		return nil, apperrors.Internal("Failed to add review", err)
	}

	equipment.Reviews = append(equipment.Reviews, review)
	equipment.Rating = newRating

	s.cfg.Log.Info("Review added",
		"equipment_id", id,
		"reviewer_id", reviewerID,
		"rating", req.Rating,
		"new_rating", newRating,
	)
	return equipment, nil
}

func (s *equipmentService) ReplyToReview(ctx context.Context, id string, reviewID string, callerID string, req *model.ReviewReply) error {
	if id == "" || reviewID == "" {
		return apperrors.InvalidInput("Equipment ID and review ID cannot be empty")
	}

	if err := s.validator.ValidateReply(req); err != nil {
		s.cfg.Log.Warn("Review reply validation failed", "equipment_id", id, "error", err)
		return apperrors.Validation("Reply validation failed", map[string]any{"error": err.Error()})
	}

	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if equipment.OwnerID != callerID {
		return apperrors.Forbidden("Only the equipment owner can reply to reviews")
	}

	err = s.repo.SetReviewReply(ctx, id, reviewID, sanitizer.TrimAndNormalize(req.Reply))
	if err != nil {
		if errors.Is(err, equipmenterrors.ErrReviewNotFound) {
			return apperrors.NotFoundWithID("Review", reviewID)
		}
		s.cfg.Log.Error("Failed to reply to review", "equipment_id", id, "review_id", reviewID, "error", err)
		return apperrors.Internal("Failed to reply to review", err)
	}

	s.cfg.Log.Info("Review reply set", "equipment_id", id, "review_id", reviewID)
	return nil
}

// --- Helpers ---

func (s *equipmentService) mapLookupError(err error, id string) error {
	if errors.Is(err, equipmenterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Equipment", id)
	}
	if errors.Is(err, equipmenterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid equipment ID format")
	}
	return apperrors.Internal("Failed to retrieve equipment", err)
}

func (s *equipmentService) mergeUpdates(existing *model.Equipment, updates *model.EquipmentUpdate) *model.Equipment {
	merged := *existing

	if updates.Name != nil {
		merged.Name = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.Description != nil {
		merged.Description = sanitizer.TrimAndNormalize(*updates.Description)
	}
	if updates.Category != nil {
		merged.Category = *updates.Category
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.DailyRate != nil {
		merged.DailyRate = *updates.DailyRate
	}
	if updates.WeeklyRate != nil {
		merged.WeeklyRate = *updates.WeeklyRate
	}
	if updates.MonthlyRate != nil {
		merged.MonthlyRate = *updates.MonthlyRate
	}
	if updates.Availability != nil {
		merged.Availability = *updates.Availability
	}
	if updates.Specifications != nil {
		merged.Specifications = *updates.Specifications
	}
	if updates.Location != nil {
		merged.Location = sanitizer.NormalizeLocation(*updates.Location)
	}
	if updates.Features != nil {
		merged.Features = sanitizer.SanitizeSlice(*updates.Features, sanitizer.NormalizeLabel)
	}

	return &merged
}

func recomputeRating(existing []model.Review, added model.Review) float64 {
	sum := added.Rating
	for _, r := range existing {
		sum += r.Rating
	}
	return float64(sum) / float64(len(existing)+1)
}
