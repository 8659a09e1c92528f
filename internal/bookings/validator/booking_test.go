package validator

import (
	"testing"
	"time"

	"agrirent/pkg/logger"
	"agrirent/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:   logger.ErrorLevel,
		Format:  logger.FormatJSON,
		Service: "test",
	}))
}

func TestValidateCreate(t *testing.T) {
	v := newTestValidator()
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour)

	tests := []struct {
		name    string
		req     *model.BookingCreate
		wantErr bool
	}{
		{
			name: "valid request",
			req: &model.BookingCreate{
				EquipmentID: "64b0c4f1a2b3c4d5e6f7a8b9",
				StartDate:   tomorrow,
				EndDate:     tomorrow.AddDate(0, 0, 3),
			},
			wantErr: false,
		},
		{
			name: "start later today allowed",
			req: &model.BookingCreate{
				EquipmentID: "64b0c4f1a2b3c4d5e6f7a8b9",
				StartDate:   time.Now().UTC().Add(time.Hour),
				EndDate:     time.Now().UTC().AddDate(0, 0, 2),
			},
			wantErr: false,
		},
		{
			name: "start earlier today rejected",
			req: &model.BookingCreate{
				EquipmentID: "64b0c4f1a2b3c4d5e6f7a8b9",
				StartDate:   time.Now().UTC().Add(-2 * time.Hour),
				EndDate:     time.Now().UTC().AddDate(0, 0, 2),
			},
			wantErr: true,
		},
		{
			name: "start in the past",
			req: &model.BookingCreate{
				EquipmentID: "64b0c4f1a2b3c4d5e6f7a8b9",
				StartDate:   time.Now().UTC().AddDate(0, 0, -2),
				EndDate:     tomorrow,
			},
			wantErr: true,
		},
		{
			name: "end before start",
			req: &model.BookingCreate{
				EquipmentID: "64b0c4f1a2b3c4d5e6f7a8b9",
				StartDate:   tomorrow.AddDate(0, 0, 3),
				EndDate:     tomorrow,
			},
			wantErr: true,
		},
		{
			name: "end equals start",
			req: &model.BookingCreate{
				EquipmentID: "64b0c4f1a2b3c4d5e6f7a8b9",
				StartDate:   tomorrow,
				EndDate:     tomorrow,
			},
			wantErr: true,
		},
		{
			name: "malformed equipment id",
			req: &model.BookingCreate{
				EquipmentID: "not-an-object-id",
				StartDate:   tomorrow,
				EndDate:     tomorrow.AddDate(0, 0, 3),
			},
			wantErr: true,
		},
		{
			name: "missing equipment id",
			req: &model.BookingCreate{
				StartDate: tomorrow,
				EndDate:   tomorrow.AddDate(0, 0, 3),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.req)
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStatusUpdate(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateStatusUpdate(&model.BookingStatusUpdate{Status: model.BookingApproved}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateStatusUpdate(&model.BookingStatusUpdate{Status: "shipped"}); err == nil {
		t.Error("expected an error for an unknown status")
	}
	if err := v.ValidateStatusUpdate(&model.BookingStatusUpdate{
		Status:    model.BookingCompleted,
		Condition: "Good",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateStatusUpdate(&model.BookingStatusUpdate{
		Status:    model.BookingCompleted,
		Condition: "Pristine",
	}); err == nil {
		t.Error("expected an error for an unknown condition")
	}
}

func TestValidatePickupDetails(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidatePickupDetails(&model.PickupDetails{
		Address:       "Village Road 12, Nashik",
		ContactPerson: "Ramesh Patil",
		ContactNumber: "+919876543210",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := v.ValidatePickupDetails(&model.PickupDetails{
		Address:       "Village Road 12, Nashik",
		ContactPerson: "Ramesh Patil",
	}); err == nil {
		t.Error("expected an error for a missing contact number")
	}
}
