package service

import (
	"testing"

	"agrirent/pkg/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from model.BookingStatus
		to   model.BookingStatus
		want bool
	}{
		{model.BookingPending, model.BookingApproved, true},
		{model.BookingPending, model.BookingRejected, true},
		{model.BookingPending, model.BookingInProgress, false},
		{model.BookingPending, model.BookingCompleted, false},
		{model.BookingApproved, model.BookingInProgress, true},
		{model.BookingApproved, model.BookingCompleted, false},
		{model.BookingApproved, model.BookingRejected, false},
		{model.BookingInProgress, model.BookingCompleted, true},
		{model.BookingInProgress, model.BookingApproved, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanTransition_TerminalStatusesNeverExit(t *testing.T) {
	terminal := []model.BookingStatus{
		model.BookingCompleted,
		model.BookingRejected,
		model.BookingCanceled,
	}
	all := []model.BookingStatus{
		model.BookingPending,
		model.BookingApproved,
		model.BookingRejected,
		model.BookingInProgress,
		model.BookingCompleted,
		model.BookingCanceled,
	}

	for _, from := range terminal {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, terminal statuses must not transition", from, to)
			}
		}
	}
}

func TestCanCancel(t *testing.T) {
	if !CanCancel(model.BookingPending) {
		t.Error("expected pending bookings to be cancelable")
	}
	if !CanCancel(model.BookingApproved) {
		t.Error("expected approved bookings to be cancelable")
	}
	for _, status := range []model.BookingStatus{
		model.BookingInProgress,
		model.BookingCompleted,
		model.BookingRejected,
		model.BookingCanceled,
	} {
		if CanCancel(status) {
			t.Errorf("expected %s bookings to not be cancelable", status)
		}
	}
}

func TestNextStatusOnPaymentConfirmed(t *testing.T) {
	if got := NextStatusOnPaymentConfirmed(model.BookingPending); got != model.BookingApproved {
		t.Errorf("pending booking should become approved after payment, got %s", got)
	}

	for _, status := range []model.BookingStatus{
		model.BookingApproved,
		model.BookingInProgress,
		model.BookingCompleted,
	} {
		if got := NextStatusOnPaymentConfirmed(status); got != status {
			t.Errorf("payment confirmation should leave %s unchanged, got %s", status, got)
		}
	}
}
