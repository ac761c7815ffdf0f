package booking

import "errors"

// Business-rule rejections. These are terminal for the request; persistence
// failures surface as ordinary wrapped errors instead and are never retried
// here — callers decide whether to rerun the whole read-check-write sequence.
var (
	ErrBookingDisabled          = errors.New("booking is disabled")
	ErrServiceNotFound          = errors.New("service not found")
	ErrClosedDay                = errors.New("no attention on this day")
	ErrPastDate                 = errors.New("date is in the past")
	ErrSlotTaken                = errors.New("slot already reserved")
	ErrCapacityExceeded         = errors.New("slot is at full capacity")
	ErrPackNotFound             = errors.New("pack not found")
	ErrPackNotOwned             = errors.New("pack belongs to another user")
	ErrPackInactive             = errors.New("pack is not active")
	ErrPackExpired              = errors.New("pack has expired")
	ErrPackExhausted            = errors.New("pack has no classes left")
	ErrClassNotFound            = errors.New("class not found")
	ErrClassNotOwned            = errors.New("class belongs to another user")
	ErrClassNotCancellable      = errors.New("class cannot be cancelled")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrOrderSlotNotFound        = errors.New("order slot not found")
)
