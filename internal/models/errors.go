package models

import "errors"

// Not-found errors
var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrSlotNotFound     = errors.New("time slot not found")
	ErrBookingNotFound  = errors.New("booking not found")
)

// Validation errors: caller mistakes, never retried
var (
	ErrInvalidParticipants = errors.New("participants must be between 1 and the activity's per-slot capacity")
	ErrActivityInactive    = errors.New("activity is not currently active")
)

// Conflict errors: expected, business-meaningful outcomes that callers
// branch on. Returned as values, never panics.
var (
	ErrCapacityExceeded         = errors.New("time slot does not have enough capacity")
	ErrSlotExpired              = errors.New("time slot start time is in the past")
	ErrSlotClosed               = errors.New("time slot is closed for booking")
	ErrInvalidState             = errors.New("booking is not in a valid state for this operation")
	ErrBookingExpired           = errors.New("pending booking hold has expired")
	ErrCancellationWindowClosed = errors.New("cancellation deadline has passed")
	ErrForbidden                = errors.New("requester does not own this booking")
)

// Integrity errors: indicate a broken invariant, not contention.
// Logged at high severity in addition to being returned.
var (
	ErrReleaseUnderflow = errors.New("capacity release would drive booked_count negative")
)
