package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coralbay-resort/booking-backend/internal/models"
)

const activityColumns = `id, name, slug, description, category, price, currency, duration_minutes,
	capacity_per_slot, location, pending_hold_minutes, cancellation_deadline_hours,
	is_active, created_at, updated_at`

// ActivityRepository is the read-only activity catalog consumed by the
// booking core. The core never mutates catalog data; Create exists for
// seeding only.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// GetActivity retrieves an activity by ID
func (r *ActivityRepository) GetActivity(activityID uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.Get(&activity, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, activityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

// GetBySlug retrieves an activity by its slug
func (r *ActivityRepository) GetBySlug(slug string) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.Get(&activity, `SELECT `+activityColumns+` FROM activities WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

// List returns active activities, optionally filtered by category,
// newest first
func (r *ActivityRepository) List(category *models.ActivityCategory) ([]models.Activity, error) {
	activities := []models.Activity{}

	if category != nil {
		query := `SELECT ` + activityColumns + ` FROM activities WHERE is_active AND category = $1 ORDER BY created_at DESC`
		if err := r.db.Select(&activities, query, *category); err != nil {
			return nil, fmt.Errorf("failed to list activities: %w", err)
		}
		return activities, nil
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE is_active ORDER BY created_at DESC`
	if err := r.db.Select(&activities, query); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// Create inserts a new activity (seeding and admin tooling)
func (r *ActivityRepository) Create(activity *models.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	query := `
		INSERT INTO activities (
			id, name, slug, description, category, price, currency,
			duration_minutes, capacity_per_slot, location,
			pending_hold_minutes, cancellation_deadline_hours, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		query,
		activity.ID, activity.Name, activity.Slug, activity.Description,
		activity.Category, activity.Price, activity.Currency,
		activity.DurationMinutes, activity.CapacityPerSlot, activity.Location,
		activity.PendingHoldMinutes, activity.CancellationDeadlineHours, activity.IsActive,
	).Scan(&activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}
