package service

import "agrirent/pkg/model"

// ownerTransitions is the status rule table for owner-driven updates.
// Terminal statuses (completed, rejected, canceled) have no entry and can
// never be exited.
var ownerTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:    {model.BookingApproved, model.BookingRejected},
	model.BookingApproved:   {model.BookingInProgress},
	model.BookingInProgress: {model.BookingCompleted},
}

// CanTransition reports whether an owner may move a booking from one status
// to another.
func CanTransition(from, to model.BookingStatus) bool {
	for _, allowed := range ownerTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanCancel reports whether a renter may cancel from the given status.
func CanCancel(from model.BookingStatus) bool {
	return from == model.BookingPending || from == model.BookingApproved
}

// NextStatusOnPaymentConfirmed applies the payment-confirmed rule: a pending
// booking becomes approved, any other status is left unchanged.
func NextStatusOnPaymentConfirmed(from model.BookingStatus) model.BookingStatus {
	if from == model.BookingPending {
		return model.BookingApproved
	}
	return from
}
