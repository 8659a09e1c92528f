package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingApproved   BookingStatus = "approved"
	BookingRejected   BookingStatus = "rejected"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCanceled   BookingStatus = "canceled"
)

// IsTerminal reports whether no further status transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingRejected || s == BookingCanceled
}

// IsActive reports whether the booking counts for date-conflict checking.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingApproved || s == BookingInProgress
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

type ReturnCondition string

const (
	ConditionExcellent ReturnCondition = "Excellent"
	ConditionGood      ReturnCondition = "Good"
	ConditionFair      ReturnCondition = "Fair"
	ConditionPoor      ReturnCondition = "Poor"
	ConditionDamaged   ReturnCondition = "Damaged"
)

type PickupDetails struct {
	Address       string `json:"address" bson:"address" validate:"required,min=2,max=300"`
	ContactPerson string `json:"contact_person" bson:"contact_person" validate:"required,min=2,max=100"`
	ContactNumber string `json:"contact_number" bson:"contact_number" validate:"required,min=7,max=20"`
	Instructions  string `json:"instructions,omitempty" bson:"instructions,omitempty" validate:"omitempty,max=500"`
}

type ReturnDetails struct {
	Date      time.Time       `json:"date" bson:"date"`
	Condition ReturnCondition `json:"condition" bson:"condition"`
	Notes     string          `json:"notes,omitempty" bson:"notes,omitempty"`
}

type Booking struct {
	ID                  string         `json:"id,omitempty" bson:"_id,omitempty"`
	EquipmentID         string         `json:"equipment_id" bson:"equipment_id"`
	RenterID            string         `json:"renter_id" bson:"renter_id"`
	OwnerID             string         `json:"owner_id" bson:"owner_id"`
	StartDate           time.Time      `json:"start_date" bson:"start_date"`
	EndDate             time.Time      `json:"end_date" bson:"end_date"`
	TotalAmount         float64        `json:"total_amount" bson:"total_amount"`
	Status              BookingStatus  `json:"status" bson:"status"`
	PaymentStatus       PaymentStatus  `json:"payment_status" bson:"payment_status"`
	PaymentID           string         `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	SpecialRequirements string         `json:"special_requirements,omitempty" bson:"special_requirements,omitempty"`
	PickupDetails       *PickupDetails `json:"pickup_details,omitempty" bson:"pickup_details,omitempty"`
	ReturnDetails       *ReturnDetails `json:"return_details,omitempty" bson:"return_details,omitempty"`
	CreatedAt           time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" bson:"updated_at"`

	// Populated by the read-side lookup; nil pointer is omitted on insert.
	Equipment *EquipmentSummary `json:"equipment,omitempty" bson:"equipment,omitempty"`
}

// BookingCreate is the typed request body for POST /bookings. The renter and
// owner references and the derived amount are filled in by the service.
type BookingCreate struct {
	EquipmentID         string    `json:"equipment_id" validate:"required,mongodb"`
	StartDate           time.Time `json:"start_date" validate:"required"`
	EndDate             time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	SpecialRequirements string    `json:"special_requirements,omitempty" validate:"omitempty,max=1000"`
}

type BookingStatusUpdate struct {
	Status    BookingStatus `json:"status" validate:"required,oneof=pending approved rejected in-progress completed canceled"`
	Condition string        `json:"condition,omitempty" validate:"omitempty,oneof=Excellent Good Fair Poor Damaged"`
	Notes     string        `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// DateRange identifies a conflicting reservation window. Returned in the
// Conflict error details so callers can suggest alternative dates.
type DateRange struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// BookingUsageSummary aggregates completed bookings across the fleet.
type BookingUsageSummary struct {
	TotalRentals   int64   `json:"total_rentals"`
	TotalRevenue   float64 `json:"total_revenue"`
	TopEquipment   string  `json:"top_equipment,omitempty"`
	TopRentCount   int64   `json:"top_rent_count,omitempty"`
	TopEquipmentID string  `json:"top_equipment_id,omitempty"`
}
