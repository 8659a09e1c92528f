package service

import (
	"context"
	"testing"

	"agrirent/internal/payments/provider"
	"agrirent/internal/payments/validator"
	"agrirent/pkg/config"
	mongotx "agrirent/pkg/db/mongo"
	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/events"
	"agrirent/pkg/logger"
	"agrirent/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testBookingID = "64b0c4f1a2b3c4d5e6f7a8c0"
	testRenterID  = "renter-1"
	testOwnerID   = "owner-1"
)

// Mock stores and provider for testing

type mockPaymentRepository struct {
	createFunc                 func(ctx context.Context, payment *model.Payment) error
	findByIDFunc               func(ctx context.Context, id string) (*model.Payment, error)
	findByBookingFunc          func(ctx context.Context, bookingID string) ([]*model.Payment, error)
	findCompletedByBookingFunc func(ctx context.Context, bookingID string) (*model.Payment, error)
	updateFunc                 func(ctx context.Context, id string, payment *model.Payment) (*mongo.UpdateResult, error)
	created                    []*model.Payment
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, payment)
	}
	m.created = append(m.created, payment)
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Payment{ID: id, PayerID: testRenterID, RecipientID: testOwnerID}, nil
}

func (m *mockPaymentRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error) {
	if m.findByBookingFunc != nil {
		return m.findByBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *mockPaymentRepository) FindCompletedByBooking(ctx context.Context, bookingID string) (*model.Payment, error) {
	if m.findCompletedByBookingFunc != nil {
		return m.findCompletedByBookingFunc(ctx, bookingID)
	}
	return &model.Payment{BookingID: bookingID, Status: model.TransactionCompleted}, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, id string, payment *model.Payment) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, payment)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockBookingStore struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	updateFunc   func(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	updates      []*model.Booking
}

func (m *mockBookingStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Booking{
		ID:            id,
		RenterID:      testRenterID,
		OwnerID:       testOwnerID,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentStatusPending,
		TotalAmount:   500,
	}, nil
}

func (m *mockBookingStore) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	m.updates = append(m.updates, booking)
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockBookingStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeProvider struct {
	method     model.PaymentMethod
	orderFunc  func(ctx context.Context, amount float64, currency, receipt string) (*provider.Order, error)
	verifyFunc func(ctx context.Context, proof *model.PaymentProof) (string, error)
	refundFunc func(ctx context.Context, transactionID string, amount float64, reason string) (string, error)
}

func (p *fakeProvider) Method() model.PaymentMethod { return p.method }

func (p *fakeProvider) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*provider.Order, error) {
	if p.orderFunc != nil {
		return p.orderFunc(ctx, amount, currency, receipt)
	}
	return &provider.Order{ID: "order_1", Amount: amount, Currency: currency}, nil
}

func (p *fakeProvider) VerifyOrCapture(ctx context.Context, proof *model.PaymentProof) (string, error) {
	if p.verifyFunc != nil {
		return p.verifyFunc(ctx, proof)
	}
	return "txn_1", nil
}

func (p *fakeProvider) Refund(ctx context.Context, transactionID string, amount float64, reason string) (string, error) {
	if p.refundFunc != nil {
		return p.refundFunc(ctx, transactionID, amount, reason)
	}
	return "rfnd_1", nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ErrorLevel,
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		PaymentCurrency: "INR",
	}
}

func newTestService(repo *mockPaymentRepository, bookings *mockBookingStore, gateway provider.Provider) PaymentService {
	cfg := testConfig()
	registry := provider.Registry{}
	if gateway != nil {
		registry[gateway.Method()] = gateway
	}
	return NewPaymentService(
		repo,
		bookings,
		registry,
		events.NoopPublisher{},
		validator.NewPaymentValidator(cfg.Log),
		cfg,
	)
}

func TestCreateOrder_OnlyRenter(t *testing.T) {
	service := newTestService(&mockPaymentRepository{}, &mockBookingStore{}, &fakeProvider{method: model.MethodRazorpay})

	_, err := service.CreateOrder(context.Background(), "someone-else", &model.OrderCreate{
		BookingID: testBookingID,
	})
	if err == nil {
		t.Fatal("expected a forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}

func TestCreateOrder_AlreadyPaid(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:            id,
				RenterID:      testRenterID,
				Status:        model.BookingApproved,
				PaymentStatus: model.PaymentStatusPaid,
				TotalAmount:   500,
			}, nil
		},
	}
	service := newTestService(&mockPaymentRepository{}, bookings, &fakeProvider{method: model.MethodRazorpay})

	_, err := service.CreateOrder(context.Background(), testRenterID, &model.OrderCreate{
		BookingID: testBookingID,
	})
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestCreateOrder_UnconfiguredMethod(t *testing.T) {
	service := newTestService(&mockPaymentRepository{}, &mockBookingStore{}, nil)

	_, err := service.CreateOrder(context.Background(), testRenterID, &model.OrderCreate{
		BookingID: testBookingID,
		Method:    model.MethodPayPal,
	})
	if err == nil {
		t.Fatal("expected an unavailable error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeUnavailable {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnavailable, appErr.Code)
	}
}

func TestConfirmPayment_ApprovesPendingBooking(t *testing.T) {
	repo := &mockPaymentRepository{}
	bookings := &mockBookingStore{}
	service := newTestService(repo, bookings, &fakeProvider{method: model.MethodRazorpay})

	payment, err := service.ConfirmPayment(context.Background(), testRenterID, &model.PaymentProof{
		BookingID:         testBookingID,
		ProviderOrderID:   "order_1",
		ProviderPaymentID: "pay_1",
		Signature:         "sig",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != model.TransactionCompleted {
		t.Errorf("expected completed payment, got %s", payment.Status)
	}
	if payment.TransactionID != "txn_1" {
		t.Errorf("expected provider transaction id, got %s", payment.TransactionID)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one payment record, got %d", len(repo.created))
	}
	if len(bookings.updates) != 1 {
		t.Fatalf("expected exactly one booking update, got %d", len(bookings.updates))
	}
	updated := bookings.updates[0]
	if updated.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("expected booking marked paid, got %s", updated.PaymentStatus)
	}
	if updated.Status != model.BookingApproved {
		t.Errorf("expected pending booking auto-approved on payment, got %s", updated.Status)
	}
}

func TestConfirmPayment_SecondConfirmationRejected(t *testing.T) {
	// The booking reads as paid on the transactional re-read, as it would
	// after a first confirmation committed.
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			booking := &model.Booking{
				ID:            id,
				RenterID:      testRenterID,
				Status:        model.BookingApproved,
				PaymentStatus: model.PaymentStatusPending,
				TotalAmount:   500,
			}
			if _, inTx := ctx.(mongo.SessionContext); inTx {
				booking.PaymentStatus = model.PaymentStatusPaid
			}
			return booking, nil
		},
	}
	repo := &mockPaymentRepository{}
	service := newTestService(repo, bookings, &fakeProvider{method: model.MethodRazorpay})

	_, err := service.ConfirmPayment(context.Background(), testRenterID, &model.PaymentProof{
		BookingID:         testBookingID,
		ProviderOrderID:   "order_1",
		ProviderPaymentID: "pay_1",
		Signature:         "sig",
	})
	if err == nil {
		t.Fatal("expected a conflict error on the second confirmation")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if len(repo.created) != 0 {
		t.Errorf("no payment record must be written, got %d", len(repo.created))
	}
	if len(bookings.updates) != 0 {
		t.Errorf("the booking must not be touched, got %d updates", len(bookings.updates))
	}
}

func TestConfirmPayment_BadProofLeavesBookingUntouched(t *testing.T) {
	gateway := &fakeProvider{
		method: model.MethodRazorpay,
		verifyFunc: func(ctx context.Context, proof *model.PaymentProof) (string, error) {
			return "", apperrors.PaymentVerification("Signature mismatch")
		},
	}
	repo := &mockPaymentRepository{}
	bookings := &mockBookingStore{}
	service := newTestService(repo, bookings, gateway)

	_, err := service.ConfirmPayment(context.Background(), testRenterID, &model.PaymentProof{
		BookingID:         testBookingID,
		ProviderOrderID:   "order_1",
		ProviderPaymentID: "pay_1",
		Signature:         "bad",
	})
	if err == nil {
		t.Fatal("expected a verification error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodePaymentVerification {
		t.Errorf("expected code %s, got %s", apperrors.CodePaymentVerification, appErr.Code)
	}
	if len(repo.created) != 0 || len(bookings.updates) != 0 {
		t.Error("a failed verification must not change any state")
	}
}

func TestRefund_ProviderFailureLeavesStateUntouched(t *testing.T) {
	gateway := &fakeProvider{
		method: model.MethodRazorpay,
		refundFunc: func(ctx context.Context, transactionID string, amount float64, reason string) (string, error) {
			return "", apperrors.Upstream("Refund request failed", nil)
		},
	}
	paymentUpdated := false
	repo := &mockPaymentRepository{
		findCompletedByBookingFunc: func(ctx context.Context, bookingID string) (*model.Payment, error) {
			return &model.Payment{
				ID:            "pmt_1",
				BookingID:     bookingID,
				Amount:        500,
				Method:        model.MethodRazorpay,
				Status:        model.TransactionCompleted,
				TransactionID: "txn_1",
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, payment *model.Payment) (*mongo.UpdateResult, error) {
			paymentUpdated = true
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:            id,
				RenterID:      testRenterID,
				OwnerID:       testOwnerID,
				Status:        model.BookingApproved,
				PaymentStatus: model.PaymentStatusPaid,
				TotalAmount:   500,
			}, nil
		},
	}
	service := newTestService(repo, bookings, gateway)

	_, err := service.Refund(context.Background(), testOwnerID, &model.RefundRequest{
		BookingID: testBookingID,
	})
	if err == nil {
		t.Fatal("expected an upstream error")
	}
	if paymentUpdated || len(bookings.updates) != 0 {
		t.Error("a failed provider refund must not change local state")
	}
}

func TestRefund_MarksPaymentAndCancelsBooking(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:            id,
				RenterID:      testRenterID,
				OwnerID:       testOwnerID,
				Status:        model.BookingApproved,
				PaymentStatus: model.PaymentStatusPaid,
				TotalAmount:   500,
			}, nil
		},
	}

	var updatedPayment *model.Payment
	repo := &mockPaymentRepository{
		findCompletedByBookingFunc: func(ctx context.Context, bookingID string) (*model.Payment, error) {
			return &model.Payment{
				ID:            "pmt_1",
				BookingID:     bookingID,
				Amount:        500,
				Method:        model.MethodRazorpay,
				Status:        model.TransactionCompleted,
				TransactionID: "txn_1",
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, payment *model.Payment) (*mongo.UpdateResult, error) {
			updatedPayment = payment
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	service := newTestService(repo, bookings, &fakeProvider{method: model.MethodRazorpay})

	payment, err := service.Refund(context.Background(), testOwnerID, &model.RefundRequest{
		BookingID: testBookingID,
		Reason:    "equipment broke down",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != model.TransactionRefunded {
		t.Errorf("expected refunded payment, got %s", payment.Status)
	}
	if payment.RefundID != "rfnd_1" || payment.RefundAmount != 500 {
		t.Errorf("expected full refund rfnd_1, got %s for %.2f", payment.RefundID, payment.RefundAmount)
	}
	if updatedPayment == nil {
		t.Fatal("expected the payment record to be updated")
	}
	if len(bookings.updates) != 1 {
		t.Fatalf("expected one booking update, got %d", len(bookings.updates))
	}
	updated := bookings.updates[0]
	if updated.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("expected booking payment status refunded, got %s", updated.PaymentStatus)
	}
	if updated.Status != model.BookingCanceled {
		t.Errorf("expected booking canceled after refund, got %s", updated.Status)
	}
}

func TestRefund_OnlyOwner(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:            id,
				RenterID:      testRenterID,
				OwnerID:       testOwnerID,
				PaymentStatus: model.PaymentStatusPaid,
			}, nil
		},
	}
	service := newTestService(&mockPaymentRepository{}, bookings, &fakeProvider{method: model.MethodRazorpay})

	_, err := service.Refund(context.Background(), testRenterID, &model.RefundRequest{
		BookingID: testBookingID,
	})
	if err == nil {
		t.Fatal("expected a forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}

func TestGetByID_OnlyParticipants(t *testing.T) {
	service := newTestService(&mockPaymentRepository{}, &mockBookingStore{}, nil)

	payment, err := service.GetByID(context.Background(), "64b0c4f1a2b3c4d5e6f7a8d1", testOwnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.RecipientID != testOwnerID {
		t.Errorf("expected recipient %s, got %s", testOwnerID, payment.RecipientID)
	}

	_, err = service.GetByID(context.Background(), "64b0c4f1a2b3c4d5e6f7a8d1", "someone-else")
	if err == nil {
		t.Fatal("expected a forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}
