package model

import (
	"time"
)

type PaymentMethod string

const (
	MethodRazorpay PaymentMethod = "razorpay"
	MethodPayPal   PaymentMethod = "paypal"
	MethodDirect   PaymentMethod = "direct"
	MethodOther    PaymentMethod = "other"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// Payment records one provider transaction tied to a booking. A refund
// transitions status and fills the refund fields; the record is never deleted.
type Payment struct {
	ID              string            `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID       string            `json:"booking_id" bson:"booking_id"`
	PayerID         string            `json:"payer_id" bson:"payer_id"`
	RecipientID     string            `json:"recipient_id" bson:"recipient_id"`
	Amount          float64           `json:"amount" bson:"amount"`
	Currency        string            `json:"currency" bson:"currency"`
	Method          PaymentMethod     `json:"method" bson:"method"`
	Status          TransactionStatus `json:"status" bson:"status"`
	TransactionID   string            `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	ProviderOrderID string            `json:"provider_order_id,omitempty" bson:"provider_order_id,omitempty"`
	RefundID        string            `json:"refund_id,omitempty" bson:"refund_id,omitempty"`
	RefundAmount    float64           `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
	RefundDate      *time.Time        `json:"refund_date,omitempty" bson:"refund_date,omitempty"`
	RefundReason    string            `json:"refund_reason,omitempty" bson:"refund_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updated_at"`
}

type OrderCreate struct {
	BookingID string        `json:"booking_id" validate:"required,mongodb"`
	Method    PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=razorpay paypal"`
}

// PaymentProof is the provider evidence submitted on confirmation. Razorpay
// sends a payment id plus an HMAC signature; PayPal only needs the order id,
// which is captured and inspected server-side.
type PaymentProof struct {
	BookingID         string        `json:"booking_id" validate:"required,mongodb"`
	Method            PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=razorpay paypal"`
	ProviderOrderID   string        `json:"provider_order_id" validate:"required"`
	ProviderPaymentID string        `json:"provider_payment_id,omitempty"`
	Signature         string        `json:"signature,omitempty"`
}

type RefundRequest struct {
	BookingID string `json:"booking_id" validate:"required,mongodb"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ProviderOrder is what the caller needs to complete payment out-of-band.
type ProviderOrder struct {
	ProviderOrderID string        `json:"provider_order_id"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	Method          PaymentMethod `json:"method"`
}
