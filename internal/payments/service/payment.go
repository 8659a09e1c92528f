package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "agrirent/internal/bookings/errors"
	bookingssvc "agrirent/internal/bookings/service"
	paymentserrors "agrirent/internal/payments/errors"
	"agrirent/internal/payments/provider"
	"agrirent/internal/payments/repository"
	"agrirent/internal/payments/validator"
	"agrirent/pkg/config"
	mongotx "agrirent/pkg/db/mongo"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/events"
	"agrirent/pkg/model"
	"agrirent/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingStore is the slice of the booking repository payments need.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type PaymentService interface {
	CreateOrder(ctx context.Context, callerID string, req *model.OrderCreate) (*model.ProviderOrder, error)
	ConfirmPayment(ctx context.Context, callerID string, req *model.PaymentProof) (*model.Payment, error)
	Refund(ctx context.Context, callerID string, req *model.RefundRequest) (*model.Payment, error)
	ListForBooking(ctx context.Context, bookingID string, callerID string) ([]*model.Payment, error)
	GetByID(ctx context.Context, id string, callerID string) (*model.Payment, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	bookings  BookingStore
	providers provider.Registry
	publisher events.Publisher
	validator *validator.PaymentValidator
	cfg       *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookings BookingStore,
	providers provider.Registry,
	publisher events.Publisher,
	validator *validator.PaymentValidator,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:      repo,
		bookings:  bookings,
		providers: providers,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, callerID string, req *model.OrderCreate) (*model.ProviderOrder, error) {
	if err := s.validator.ValidateOrderCreate(req); err != nil {
		s.cfg.Log.Warn("Order create validation failed", "error", err)
		return nil, apperrors.Validation("Invalid order request", map[string]any{"error": err.Error()})
	}

	booking, err := s.findBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.RenterID != callerID {
		return nil, apperrors.Forbidden("Only the renter can pay for a booking")
	}
	if booking.Status != model.BookingPending && booking.Status != model.BookingApproved {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot pay for a booking that is %s", booking.Status))
	}
	if booking.PaymentStatus == model.PaymentStatusPaid {
		return nil, apperrors.Conflict("Booking is already paid")
	}
	if booking.TotalAmount <= 0 {
		return nil, apperrors.InvalidInput("Booking amount must be greater than zero")
	}

	method := req.Method
	if method == "" {
		method = model.MethodRazorpay
	}

	gateway, ok := s.providers.Lookup(method)
	if !ok {
		return nil, apperrors.Unavailable(fmt.Sprintf("Payment method %s", method))
	}

	receipt := uuid.New().String()
	order, err := gateway.CreateOrder(ctx, booking.TotalAmount, s.cfg.PaymentCurrency, receipt)
	if err != nil {
		s.cfg.Log.Error("Provider order creation failed",
			"booking_id", booking.ID,
			"method", method,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Payment order created",
		"booking_id", booking.ID,
		"method", method,
		"provider_order_id", order.ID,
		"amount", order.Amount,
	)

	return &model.ProviderOrder{
		ProviderOrderID: order.ID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Method:          method,
	}, nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, callerID string, req *model.PaymentProof) (*model.Payment, error) {
	if err := s.validator.ValidateProof(req); err != nil {
		s.cfg.Log.Warn("Payment proof validation failed", "error", err)
		return nil, apperrors.Validation("Invalid payment proof", map[string]any{"error": err.Error()})
	}

	booking, err := s.findBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.RenterID != callerID {
		return nil, apperrors.Forbidden("Only the renter can confirm a payment")
	}

	method := req.Method
	if method == "" {
		method = model.MethodRazorpay
	}

	gateway, ok := s.providers.Lookup(method)
	if !ok {
		return nil, apperrors.Unavailable(fmt.Sprintf("Payment method %s", method))
	}

	// Verification happens before any state change; a bad proof leaves the
	// booking untouched.
	transactionID, err := gateway.VerifyOrCapture(ctx, req)
	if err != nil {
		s.cfg.Log.Warn("Payment verification failed",
			"booking_id", booking.ID,
			"method", method,
			"error", err,
		)
		return nil, err
	}

	payment := &model.Payment{
		BookingID:       booking.ID,
		PayerID:         booking.RenterID,
		RecipientID:     booking.OwnerID,
		Amount:          booking.TotalAmount,
		Currency:        s.cfg.PaymentCurrency,
		Method:          method,
		Status:          model.TransactionCompleted,
		TransactionID:   transactionID,
		ProviderOrderID: req.ProviderOrderID,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-read inside the transaction so two confirmations cannot both
		// pass the paid check.
		current, err := s.bookings.FindByID(sessCtx, booking.ID)
		if err != nil {
			return apperrors.Internal("Failed to re-read booking", err)
		}
		if current.PaymentStatus == model.PaymentStatusPaid {
			return apperrors.Conflict("Booking is already paid")
		}

		if err := s.repo.Create(sessCtx, payment); err != nil {
			return apperrors.Internal("Failed to record payment", err)
		}

		current.PaymentStatus = model.PaymentStatusPaid
		current.PaymentID = payment.ID
		current.Status = bookingssvc.NextStatusOnPaymentConfirmed(current.Status)

		if _, err := s.bookings.Update(sessCtx, current.ID, current); err != nil {
			return apperrors.Internal("Failed to update booking payment status", err)
		}

		booking = current
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to confirm payment", "booking_id", req.BookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment confirmed",
		"payment_id", payment.ID,
		"booking_id", booking.ID,
		"method", method,
		"transaction_id", transactionID,
	)

	s.publish(ctx, booking.ID, events.TypePaymentConfirmed, events.PaymentConfirmed{
		PaymentID: payment.ID,
		BookingID: booking.ID,
		Amount:    payment.Amount,
		Method:    string(method),
	})

	return payment, nil
}

func (s *paymentService) Refund(ctx context.Context, callerID string, req *model.RefundRequest) (*model.Payment, error) {
	if err := s.validator.ValidateRefund(req); err != nil {
		s.cfg.Log.Warn("Refund validation failed", "error", err)
		return nil, apperrors.Validation("Invalid refund request", map[string]any{"error": err.Error()})
	}

	booking, err := s.findBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.OwnerID != callerID {
		return nil, apperrors.Forbidden("Only the equipment owner can issue a refund")
	}
	if booking.PaymentStatus != model.PaymentStatusPaid {
		return nil, apperrors.Conflict("Only paid bookings can be refunded")
	}

	payment, err := s.repo.FindCompletedByBooking(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Completed payment for booking")
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	gateway, ok := s.providers.Lookup(payment.Method)
	if !ok {
		return nil, apperrors.Unavailable(fmt.Sprintf("Payment method %s", payment.Method))
	}

	reason := sanitizer.TrimAndNormalize(req.Reason)

	// Provider refund first; if it fails nothing local changes.
	refundID, err := gateway.Refund(ctx, payment.TransactionID, payment.Amount, reason)
	if err != nil {
		s.cfg.Log.Error("Provider refund failed",
			"payment_id", payment.ID,
			"booking_id", booking.ID,
			"error", err,
		)
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	payment.Status = model.TransactionRefunded
	payment.RefundID = refundID
	payment.RefundAmount = payment.Amount
	payment.RefundDate = &now
	payment.RefundReason = reason

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.Update(sessCtx, payment.ID, payment); err != nil {
			return apperrors.Internal("Failed to mark payment refunded", err)
		}

		booking.PaymentStatus = model.PaymentStatusRefunded
		booking.Status = model.BookingCanceled
		if _, err := s.bookings.Update(sessCtx, booking.ID, booking); err != nil {
			return apperrors.Internal("Failed to update booking after refund", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to record refund", "payment_id", payment.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment refunded",
		"payment_id", payment.ID,
		"booking_id", booking.ID,
		"refund_id", refundID,
		"amount", payment.RefundAmount,
	)

	s.publish(ctx, booking.ID, events.TypePaymentRefunded, events.PaymentRefunded{
		PaymentID: payment.ID,
		BookingID: booking.ID,
		RefundID:  refundID,
		Amount:    payment.RefundAmount,
	})

	return payment, nil
}

func (s *paymentService) ListForBooking(ctx context.Context, bookingID string, callerID string) ([]*model.Payment, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, apperrors.Forbidden("Only the booking participants can view its payments")
	}

	payments, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		s.cfg.Log.Error("Failed to list payments", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payments", err)
	}

	return payments, nil
}

func (s *paymentService) GetByID(ctx context.Context, id string, callerID string) (*model.Payment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", id)
		}
		if errors.Is(err, paymentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid payment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	if payment.PayerID != callerID && payment.RecipientID != callerID {
		return nil, apperrors.Forbidden("Only the payment participants can view it")
	}

	return payment, nil
}

// --- Helpers ---

func (s *paymentService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
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

func (s *paymentService) publish(ctx context.Context, key, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, key, eventType, payload); err != nil {
		s.cfg.Log.Error("Failed to publish event", "type", eventType, "key", key, "error", err)
	}
}
