package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one bookable window of an activity. booked_count is the
// capacity ledger: it only ever changes through the ledger's conditional
// updates and always satisfies 0 <= booked_count <= capacity.
type TimeSlot struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ActivityID  uuid.UUID `json:"activity_id" db:"activity_id"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	Capacity    int       `json:"capacity" db:"capacity"`
	BookedCount int       `json:"booked_count" db:"booked_count"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AvailableCapacity returns the number of spots still open
func (s *TimeSlot) AvailableCapacity() int {
	return s.Capacity - s.BookedCount
}

// IsBookable reports whether the slot accepts new reservations at now
func (s *TimeSlot) IsBookable(now time.Time) bool {
	return s.IsAvailable && s.StartTime.After(now)
}

// HasElapsed reports whether the slot's window has fully passed
func (s *TimeSlot) HasElapsed(now time.Time) bool {
	return !s.EndTime.After(now)
}
