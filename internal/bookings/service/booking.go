package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "agrirent/internal/bookings/errors"
	"agrirent/internal/bookings/repository"
	"agrirent/internal/bookings/validator"
	equipmenterrors "agrirent/internal/equipment/errors"
	"agrirent/pkg/config"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/events"
	"agrirent/pkg/model"
	"agrirent/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// EquipmentReader is the slice of the equipment repository bookings need.
type EquipmentReader interface {
	FindByID(ctx context.Context, id string) (*model.Equipment, error)
}

// AnalyticsRecorder receives completion facts for incremental aggregation.
type AnalyticsRecorder interface {
	RecordCompletion(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error
}

type BookingService interface {
	Create(ctx context.Context, renterID string, req *model.BookingCreate) (*model.Booking, error)
	GetByID(ctx context.Context, id string, callerID string) (*model.Booking, error)
	ListForRenter(ctx context.Context, renterID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	ListForOwner(ctx context.Context, ownerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	OwnerRequests(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, callerID string, req *model.BookingStatusUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, id string, callerID string) (*model.Booking, error)
	SetPickupDetails(ctx context.Context, id string, callerID string, details *model.PickupDetails) (*model.Booking, error)
	Delete(ctx context.Context, id string, callerID string) error
	UsageSummary(ctx context.Context) (*model.BookingUsageSummary, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	equipment EquipmentReader
	analytics AnalyticsRecorder
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	equipment EquipmentReader,
	analytics AnalyticsRecorder,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		equipment: equipment,
		analytics: analytics,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, renterID string, req *model.BookingCreate) (*model.Booking, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	equipment, err := s.equipment.FindByID(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, equipmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Equipment", req.EquipmentID)
		}
		if errors.Is(err, equipmenterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid equipment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve equipment", err)
	}

	if !equipment.Availability {
		return nil, apperrors.Conflict("Equipment is not available for booking")
	}

	days := RentalDays(req.StartDate, req.EndDate)
	booking := &model.Booking{
		EquipmentID:         equipment.ID,
		RenterID:            renterID,
		OwnerID:             equipment.OwnerID,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		TotalAmount:         ComputeTotal(days, equipment),
		Status:              model.BookingPending,
		PaymentStatus:       model.PaymentStatusPending,
		SpecialRequirements: sanitizer.TrimAndNormalize(req.SpecialRequirements),
	}

	// Advisory lock per equipment serializes the conflict check and insert.
	lockID, err := s.acquireEquipmentLock(ctx, equipment.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseEquipmentLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflicts(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "equipment_id", equipment.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"equipment_id", booking.EquipmentID,
		"renter_id", renterID,
		"total_amount", booking.TotalAmount,
	)

	s.publish(ctx, booking.ID, events.TypeBookingCreated, events.BookingCreated{
		BookingID:   booking.ID,
		EquipmentID: booking.EquipmentID,
		RenterID:    booking.RenterID,
		OwnerID:     booking.OwnerID,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalAmount: booking.TotalAmount,
	})

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string, callerID string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, apperrors.Forbidden("Only the booking participants can view it")
	}

	return booking, nil
}

func (s *bookingService) ListForRenter(ctx context.Context, renterID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx,
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByRenter(ctx, renterID, status, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByRenter(ctx, renterID, status)
		},
	)
}

func (s *bookingService) ListForOwner(ctx context.Context, ownerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx,
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByOwner(ctx, ownerID, status, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByOwner(ctx, ownerID, status)
		},
	)
}

func (s *bookingService) OwnerRequests(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.ListForOwner(ctx, ownerID, model.BookingPending, limit, offset)
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, callerID string, req *model.BookingStatusUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateStatusUpdate(req); err != nil {
		s.cfg.Log.Warn("Status update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid status update", map[string]any{"error": err.Error()})
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.OwnerID != callerID {
		return nil, apperrors.Forbidden("Only the equipment owner can update booking status")
	}

	from := booking.Status
	if from.IsTerminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("Booking is already %s and cannot change status", from))
	}
	if !CanTransition(from, req.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot move booking from %s to %s", from, req.Status))
	}

	booking.Status = req.Status
	if req.Status == model.BookingCompleted {
		condition := model.ReturnCondition(req.Condition)
		if condition == "" {
			condition = model.ConditionGood
		}
		booking.ReturnDetails = &model.ReturnDetails{
			Date:      time.Now().UTC().Truncate(time.Millisecond),
			Condition: condition,
			Notes:     sanitizer.TrimAndNormalize(req.Notes),
		}
	}

	if _, err := s.repo.Update(ctx, id, booking); err != nil {
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	if req.Status == model.BookingCompleted {
		days := RentalDays(booking.StartDate, booking.EndDate)
		if err := s.analytics.RecordCompletion(ctx, booking.EquipmentID, booking.TotalAmount, days, callerID); err != nil {
			// Completion already committed; analytics catches up on the next run.
			s.cfg.Log.Error("Failed to record completion analytics",
				"booking_id", id,
				"equipment_id", booking.EquipmentID,
				"error", err,
			)
		}
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "from", from, "to", req.Status)

	s.publish(ctx, booking.ID, events.TypeBookingStatusChanged, events.BookingStatusChanged{
		BookingID:   booking.ID,
		EquipmentID: booking.EquipmentID,
		From:        string(from),
		To:          string(req.Status),
	})

	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string, callerID string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.RenterID != callerID {
		return nil, apperrors.Forbidden("Only the renter can cancel a booking")
	}

	if !CanCancel(booking.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot cancel a booking that is %s", booking.Status))
	}

	if time.Until(booking.StartDate) < 24*time.Hour {
		return nil, apperrors.Conflict("Bookings cannot be canceled less than 24 hours before the start date")
	}

	from := booking.Status
	booking.Status = model.BookingCanceled

	if _, err := s.repo.Update(ctx, id, booking); err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking canceled", "id", id, "renter_id", callerID)

	s.publish(ctx, booking.ID, events.TypeBookingStatusChanged, events.BookingStatusChanged{
		BookingID:   booking.ID,
		EquipmentID: booking.EquipmentID,
		From:        string(from),
		To:          string(model.BookingCanceled),
	})

	return booking, nil
}

func (s *bookingService) SetPickupDetails(ctx context.Context, id string, callerID string, details *model.PickupDetails) (*model.Booking, error) {
	if err := s.validator.ValidatePickupDetails(details); err != nil {
		s.cfg.Log.Warn("Pickup details validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid pickup details", map[string]any{"error": err.Error()})
	}

	phone := sanitizer.NormalizePhone(details.ContactNumber)
	if phone == "" {
		return nil, apperrors.Validation("Invalid pickup details", map[string]any{
			"error": "contact_number is not a valid phone number",
		})
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.RenterID != callerID {
		return nil, apperrors.Forbidden("Only the renter can set pickup details")
	}

	if booking.Status.IsTerminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot set pickup details on a %s booking", booking.Status))
	}

	booking.PickupDetails = &model.PickupDetails{
		Address:       sanitizer.TrimAndNormalize(details.Address),
		ContactPerson: sanitizer.NormalizeName(details.ContactPerson),
		ContactNumber: phone,
		Instructions:  sanitizer.TrimAndNormalize(details.Instructions),
	}

	if _, err := s.repo.Update(ctx, id, booking); err != nil {
		s.cfg.Log.Error("Failed to set pickup details", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to set pickup details", err)
	}

	s.cfg.Log.Info("Pickup details set", "id", id)
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, id string, callerID string) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}

	if booking.RenterID != callerID {
		return apperrors.Forbidden("Only the renter can delete a booking")
	}

	if booking.Status == model.BookingInProgress {
		return apperrors.Conflict("Cannot delete an in-progress booking")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted", "id", id, "renter_id", callerID)
	return nil
}

func (s *bookingService) UsageSummary(ctx context.Context) (*model.BookingUsageSummary, error) {
	summary, err := s.repo.UsageSummary(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to compute usage summary", "error", err)
		return nil, apperrors.Internal("Failed to compute usage summary", err)
	}
	return summary, nil
}

// --- Helpers ---

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) list(
	ctx context.Context,
	find func(context.Context) ([]*model.Booking, error),
	count func(context.Context) (int64, error),
) ([]*model.Booking, int64, error) {
	var total int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = find(ctx)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, total, nil
}

// verifyNoConflicts rejects the booking when any active booking on the same
// equipment touches the requested inclusive date range.
func (s *bookingService) verifyNoConflicts(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindActiveOverlapping(ctx, booking.EquipmentID, booking.StartDate, booking.EndDate)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	if len(existing) == 0 {
		return nil
	}

	conflicts := make([]model.DateRange, 0, len(existing))
	for _, b := range existing {
		conflicts = append(conflicts, model.DateRange{
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
		})
	}

	return apperrors.Conflict("Equipment is already booked for the selected dates").
		WithDetails(map[string]any{"conflicts": conflicts})
}

func (s *bookingService) acquireEquipmentLock(ctx context.Context, equipmentID string) (string, error) {
	lock := &model.BookingLock{
		ID:        equipmentID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This equipment is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lock.ID, nil
}

func (s *bookingService) releaseEquipmentLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publish(ctx context.Context, key, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, key, eventType, payload); err != nil {
		s.cfg.Log.Error("Failed to publish event", "type", eventType, "key", key, "error", err)
	}
}
