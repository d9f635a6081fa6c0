package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// BookingSource identifies which client channel created a booking.
// Used for audit and analytics only, never for authorization.
type BookingSource string

const (
	BookingSourceWhatsApp BookingSource = "whatsapp"
	BookingSourceWeb      BookingSource = "web"
)

// validTransitions is the closed set of allowed status transitions.
// cancelled, completed and no_show are terminal.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow},
}

// CanTransitionTo reports whether the state machine permits moving to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

// Booking represents one guest's reservation against a time slot.
// Price is snapshotted at creation time so later catalog changes never
// affect an in-flight reservation. Rows are never deleted; terminal
// states are retained for audit.
type Booking struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	UserPhone          string        `json:"user_phone" db:"user_phone"`
	ActivityID         uuid.UUID     `json:"activity_id" db:"activity_id"`
	TimeSlotID         uuid.UUID     `json:"time_slot_id" db:"time_slot_id"`
	Status             BookingStatus `json:"status" db:"status"`
	Participants       int           `json:"participants" db:"participants"`
	SpecialRequests    string        `json:"special_requests" db:"special_requests"`
	TotalPrice         float64       `json:"total_price" db:"total_price"`
	Currency           string        `json:"currency" db:"currency"`
	Source             BookingSource `json:"source" db:"source"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	ExpiresAt          *time.Time    `json:"expires_at,omitempty" db:"expires_at"`
	Reminder24hSentAt  *time.Time    `json:"-" db:"reminder_24h_sent_at"`
	Reminder1hSentAt   *time.Time    `json:"-" db:"reminder_1h_sent_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// HoldExpired reports whether a pending booking's hold has lapsed
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.Status == BookingStatusPending && b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// BelongsTo reports whether the booking was created by the given requester
func (b *Booking) BelongsTo(userPhone string) bool {
	return b.UserPhone == userPhone
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	UserPhone       string        `json:"user_phone" binding:"required"`
	TimeSlotID      string        `json:"time_slot_id" binding:"required"`
	Participants    int           `json:"participants" binding:"required,min=1"`
	SpecialRequests string        `json:"special_requests"`
	Source          BookingSource `json:"source"`
}

// ConfirmBookingRequest represents the request to confirm a pending booking
type ConfirmBookingRequest struct {
	UserPhone string `json:"user_phone" binding:"required"`
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	UserPhone string  `json:"user_phone" binding:"required"`
	Reason    *string `json:"reason,omitempty"`
}
