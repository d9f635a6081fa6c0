package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityCategory groups activities for catalog browsing
type ActivityCategory string

const (
	CategoryWatersports ActivityCategory = "watersports"
	CategorySpa         ActivityCategory = "spa"
	CategoryDining      ActivityCategory = "dining"
	CategoryAdventure   ActivityCategory = "adventure"
	CategoryWellness    ActivityCategory = "wellness"
)

// Valid reports whether c is a known activity category
func (c ActivityCategory) Valid() bool {
	switch c {
	case CategoryWatersports, CategorySpa, CategoryDining, CategoryAdventure, CategoryWellness:
		return true
	}
	return false
}

// Activity is a bookable resort offering. Catalog fields are managed
// outside the booking core; the core reads them and snapshots pricing
// and policy onto bookings at creation time.
type Activity struct {
	ID                        uuid.UUID        `json:"id" db:"id"`
	Name                      string           `json:"name" db:"name"`
	Slug                      string           `json:"slug" db:"slug"`
	Description               string           `json:"description" db:"description"`
	Category                  ActivityCategory `json:"category" db:"category"`
	Price                     float64          `json:"price" db:"price"`
	Currency                  string           `json:"currency" db:"currency"`
	DurationMinutes           int              `json:"duration_minutes" db:"duration_minutes"`
	CapacityPerSlot           int              `json:"capacity_per_slot" db:"capacity_per_slot"`
	Location                  string           `json:"location" db:"location"`
	PendingHoldMinutes        int              `json:"pending_hold_minutes" db:"pending_hold_minutes"`
	CancellationDeadlineHours int              `json:"cancellation_deadline_hours" db:"cancellation_deadline_hours"`
	IsActive                  bool             `json:"is_active" db:"is_active"`
	CreatedAt                 time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at" db:"updated_at"`
}

// ActivityPolicy is the immutable booking policy captured from an
// activity. Callers take a policy value once and use it for the whole
// operation, so a concurrent catalog edit cannot change the rules
// mid-flight.
type ActivityPolicy struct {
	Price                     float64
	Currency                  string
	CapacityPerSlot           int
	PendingHoldMinutes        int
	CancellationDeadlineHours int
}

// Policy captures the activity's current booking policy as a value
func (a *Activity) Policy() ActivityPolicy {
	return ActivityPolicy{
		Price:                     a.Price,
		Currency:                  a.Currency,
		CapacityPerSlot:           a.CapacityPerSlot,
		PendingHoldMinutes:        a.PendingHoldMinutes,
		CancellationDeadlineHours: a.CancellationDeadlineHours,
	}
}

// HoldDuration returns how long a pending booking holds capacity before
// it expires
func (p ActivityPolicy) HoldDuration() time.Duration {
	return time.Duration(p.PendingHoldMinutes) * time.Minute
}

// CancellationDeadline returns the last instant at which a confirmed
// booking for a slot starting at startTime may still be cancelled
func (p ActivityPolicy) CancellationDeadline(startTime time.Time) time.Time {
	return startTime.Add(-time.Duration(p.CancellationDeadlineHours) * time.Hour)
}
