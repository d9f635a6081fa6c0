package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coralbay-resort/booking-backend/internal/models"
)

const slotColumns = `id, activity_id, start_time, end_time, capacity, booked_count, is_available, created_at`

// TimeSlotRepository is the capacity ledger: the sole authority for
// mutating booked_count. Reserve and Release are single conditional
// updates, so two concurrent reservations that would jointly overflow a
// slot resolve to exactly one success. Mutating methods take an sqlx.Ext
// so lifecycle transactions can pass their own *sqlx.Tx; the booking-row
// mutation and the ledger call then commit or roll back together.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new TimeSlotRepository
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// Reserve atomically increments booked_count by participants if the slot
// is still open, in the future, and has room. On refusal no mutation is
// performed and the error distinguishes capacity from expiry so callers
// can offer alternative slots.
func (r *TimeSlotRepository) Reserve(ext sqlx.Ext, slotID uuid.UUID, participants int) (*models.TimeSlot, error) {
	if participants < 1 {
		return nil, models.ErrInvalidParticipants
	}

	query := `
		UPDATE time_slots
		SET booked_count = booked_count + $2
		WHERE id = $1
		  AND is_available
		  AND start_time > NOW()
		  AND booked_count + $2 <= capacity
		RETURNING ` + slotColumns

	var slot models.TimeSlot
	err := sqlx.Get(ext, &slot, query, slotID, participants)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.classifyReserveRefusal(ext, slotID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve capacity: %w", err)
	}

	return &slot, nil
}

// classifyReserveRefusal re-reads the slot to report why the conditional
// update matched no row
func (r *TimeSlotRepository) classifyReserveRefusal(ext sqlx.Ext, slotID uuid.UUID) error {
	var slot models.TimeSlot
	err := sqlx.Get(ext, &slot, `SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect time slot: %w", err)
	}

	switch {
	case !slot.IsAvailable:
		return models.ErrSlotClosed
	case !slot.StartTime.After(time.Now()):
		return models.ErrSlotExpired
	default:
		return models.ErrCapacityExceeded
	}
}

// Release atomically decrements booked_count by participants. A release
// that would drive booked_count negative signals a double-release bug
// upstream and fails with ErrReleaseUnderflow instead of clamping.
func (r *TimeSlotRepository) Release(ext sqlx.Ext, slotID uuid.UUID, participants int) (*models.TimeSlot, error) {
	if participants < 1 {
		return nil, models.ErrInvalidParticipants
	}

	query := `
		UPDATE time_slots
		SET booked_count = booked_count - $2
		WHERE id = $1
		  AND booked_count - $2 >= 0
		RETURNING ` + slotColumns

	var slot models.TimeSlot
	err := sqlx.Get(ext, &slot, query, slotID, participants)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := sqlx.Get(ext, &exists, `SELECT EXISTS (SELECT 1 FROM time_slots WHERE id = $1)`, slotID); err != nil {
			return nil, fmt.Errorf("failed to inspect time slot: %w", err)
		}
		if !exists {
			return nil, models.ErrSlotNotFound
		}
		return nil, models.ErrReleaseUnderflow
	}
	if err != nil {
		return nil, fmt.Errorf("failed to release capacity: %w", err)
	}

	return &slot, nil
}

// GetByID retrieves a time slot by ID
func (r *TimeSlotRepository) GetByID(slotID uuid.UUID) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := r.db.Get(&slot, `SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}
	return &slot, nil
}

// GetAvailability returns the committed state of an activity's open
// future slots in the given range, earliest first. No dirty reads:
// only committed booked_count is visible.
func (r *TimeSlotRepository) GetAvailability(activityID uuid.UUID, from, to time.Time) ([]models.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE activity_id = $1
		  AND is_available
		  AND start_time >= $2
		  AND start_time <= $3
		  AND start_time > NOW()
		ORDER BY start_time`

	slots := []models.TimeSlot{}
	if err := r.db.Select(&slots, query, activityID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return slots, nil
}

// Create inserts a new time slot (seeding and admin tooling)
func (r *TimeSlotRepository) Create(slot *models.TimeSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}

	query := `
		INSERT INTO time_slots (id, activity_id, start_time, end_time, capacity, booked_count, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(
		query,
		slot.ID, slot.ActivityID, slot.StartTime, slot.EndTime,
		slot.Capacity, slot.BookedCount, slot.IsAvailable,
	).Scan(&slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create time slot: %w", err)
	}
	return nil
}
