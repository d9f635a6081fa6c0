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

const bookingColumns = `id, user_phone, activity_id, time_slot_id, status, participants,
	special_requests, total_price, currency, source, cancellation_reason,
	created_at, confirmed_at, cancelled_at, expires_at,
	reminder_24h_sent_at, reminder_1h_sent_at, updated_at`

// ReminderKind selects which reminder column an operation targets
type ReminderKind string

const (
	Reminder24h ReminderKind = "reminder_24h_sent_at"
	Reminder1h  ReminderKind = "reminder_1h_sent_at"
)

// BookingRepository owns booking rows and the compound transactions that
// pair a booking-row mutation with its ledger call. Each compound method
// is one atomic unit: a reserve-without-booking-row (or the reverse) can
// never be observed. booked_count itself is only ever touched through
// the TimeSlotRepository ledger.
type BookingRepository struct {
	db    *sqlx.DB
	slots *TimeSlotRepository
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB, slots *TimeSlotRepository) *BookingRepository {
	return &BookingRepository{db: db, slots: slots}
}

// CreateWithReservation reserves capacity and persists the pending
// booking in a single transaction. On any ledger refusal the transaction
// is aborted and no booking row is created.
func (r *BookingRepository) CreateWithReservation(booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := r.slots.Reserve(tx, booking.TimeSlotID, booking.Participants); err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (
			id, user_phone, activity_id, time_slot_id, status, participants,
			special_requests, total_price, currency, source, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err = tx.QueryRow(
		query,
		booking.ID, booking.UserPhone, booking.ActivityID, booking.TimeSlotID,
		booking.Status, booking.Participants, booking.SpecialRequests,
		booking.TotalPrice, booking.Currency, booking.Source, booking.ExpiresAt,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ConfirmPending transitions pending -> confirmed, guarded by the hold
// deadline. Returns the number of rows updated: 0 means the booking was
// not pending anymore or its hold had lapsed, and the caller classifies.
func (r *BookingRepository) ConfirmPending(bookingID uuid.UUID, now time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'confirmed', confirmed_at = $2, expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND expires_at > $2`

	result, err := r.db.Exec(query, bookingID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm booking: %w", err)
	}
	return result.RowsAffected()
}

// CancelAndRelease transitions the booking out of the expected status
// and releases its held capacity in one transaction. Returns the number
// of booking rows updated: 0 means a concurrent transition won and no
// capacity was released (exactly-once release).
func (r *BookingRepository) CancelAndRelease(bookingID uuid.UUID, from models.BookingStatus, reason *string, now time.Time) (int64, error) {
	if !from.CanTransitionTo(models.BookingStatusCancelled) {
		return 0, models.ErrInvalidState
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $3, cancellation_reason = $4, expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING time_slot_id, participants`

	var slotID uuid.UUID
	var participants int
	err = tx.QueryRow(query, bookingID, from, now, reason).Scan(&slotID, &participants)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if _, err := r.slots.Release(tx, slotID, participants); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return 1, nil
}

// ExpireAndRelease is the sweep transition: pending -> cancelled once
// the hold deadline has passed, releasing capacity in the same
// transaction. Returns false when another caller already moved the row
// out of pending, in which case nothing is released.
func (r *BookingRepository) ExpireAndRelease(bookingID uuid.UUID, now time.Time) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2, cancellation_reason = 'pending hold expired',
		    expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $2
		RETURNING time_slot_id, participants`

	var slotID uuid.UUID
	var participants int
	err = tx.QueryRow(query, bookingID, now).Scan(&slotID, &participants)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to expire booking: %w", err)
	}

	if _, err := r.slots.Release(tx, slotID, participants); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit expiration: %w", err)
	}
	return true, nil
}

// MarkOutcome transitions confirmed -> completed or no_show after the
// activity has elapsed. No capacity is released: the participants
// attended (or forfeited) their spots.
func (r *BookingRepository) MarkOutcome(bookingID uuid.UUID, outcome models.BookingStatus, now time.Time) (int64, error) {
	if outcome != models.BookingStatusCompleted && outcome != models.BookingStatusNoShow {
		return 0, models.ErrInvalidState
	}

	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed'`

	result, err := r.db.Exec(query, bookingID, outcome)
	if err != nil {
		return 0, fmt.Errorf("failed to mark booking outcome: %w", err)
	}
	return result.RowsAffected()
}

// ListByRequester returns a requester's bookings, optionally filtered by
// status, newest first
func (r *BookingRepository) ListByRequester(userPhone string, status *models.BookingStatus) ([]models.Booking, error) {
	bookings := []models.Booking{}

	if status != nil {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_phone = $1 AND status = $2 ORDER BY created_at DESC`
		if err := r.db.Select(&bookings, query, userPhone, *status); err != nil {
			return nil, fmt.Errorf("failed to list bookings: %w", err)
		}
		return bookings, nil
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_phone = $1 ORDER BY created_at DESC`
	if err := r.db.Select(&bookings, query, userPhone); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListExpiredPending returns pending bookings whose hold deadline has
// passed, oldest first, up to limit rows
func (r *BookingRepository) ListExpiredPending(now time.Time, limit int) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	return bookings, nil
}

// ListConfirmedStartingBetween returns confirmed bookings whose slot
// starts inside the window and whose reminder of the given kind has not
// been sent yet
func (r *BookingRepository) ListConfirmedStartingBetween(from, to time.Time, kind ReminderKind) ([]models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT b.id, b.user_phone, b.activity_id, b.time_slot_id, b.status, b.participants,
		       b.special_requests, b.total_price, b.currency, b.source, b.cancellation_reason,
		       b.created_at, b.confirmed_at, b.cancelled_at, b.expires_at,
		       b.reminder_24h_sent_at, b.reminder_1h_sent_at, b.updated_at
		FROM bookings b
		JOIN time_slots s ON s.id = b.time_slot_id
		WHERE b.status = 'confirmed'
		  AND b.%s IS NULL
		  AND s.start_time >= $1
		  AND s.start_time <= $2
		ORDER BY s.start_time`, kind)

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list bookings for reminders: %w", err)
	}
	return bookings, nil
}

// MarkReminderSent records the reminder timestamp. The IS NULL guard
// keeps reminder delivery idempotent under concurrent job runs.
func (r *BookingRepository) MarkReminderSent(bookingID uuid.UUID, kind ReminderKind, now time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET %s = $2, updated_at = NOW()
		WHERE id = $1 AND %s IS NULL AND status = 'confirmed'`, kind, kind)

	result, err := r.db.Exec(query, bookingID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return result.RowsAffected()
}
