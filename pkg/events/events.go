package events

import "time"

// Event types emitted on the marketplace topic. Key is always the booking id
// so consumers see one booking's events in order.
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypePaymentConfirmed     = "payment.confirmed"
	TypePaymentRefunded      = "payment.refunded"
)

type BookingCreated struct {
	BookingID   string    `json:"booking_id"`
	EquipmentID string    `json:"equipment_id"`
	RenterID    string    `json:"renter_id"`
	OwnerID     string    `json:"owner_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalAmount float64   `json:"total_amount"`
}

type BookingStatusChanged struct {
	BookingID   string `json:"booking_id"`
	EquipmentID string `json:"equipment_id"`
	From        string `json:"from"`
	To          string `json:"to"`
}

type PaymentConfirmed struct {
	PaymentID string  `json:"payment_id"`
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

type PaymentRefunded struct {
	PaymentID string  `json:"payment_id"`
	BookingID string  `json:"booking_id"`
	RefundID  string  `json:"refund_id"`
	Amount    float64 `json:"amount"`
}
