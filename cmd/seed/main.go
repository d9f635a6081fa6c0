// Command seed populates the database with demo activities and a week
// of time slots. Intended for local development and staging only.
package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/config"
	"github.com/coralbay-resort/booking-backend/internal/database"
	"github.com/coralbay-resort/booking-backend/internal/models"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	activityRepo := database.NewActivityRepository(db)
	slotRepo := database.NewTimeSlotRepository(db)

	activities := []models.Activity{
		{
			Name:                      "Sunset Kayak Tour",
			Slug:                      "sunset-kayak-tour",
			Description:               "Guided kayak tour along the reef at golden hour.",
			Category:                  models.CategoryWatersports,
			Price:                     45.50,
			Currency:                  "USD",
			DurationMinutes:           120,
			CapacityPerSlot:           8,
			Location:                  "North Beach Watersports Hut",
			PendingHoldMinutes:        cfg.Booking.DefaultHoldMinutes,
			CancellationDeadlineHours: 24,
			IsActive:                  true,
		},
		{
			Name:                      "Deep Tissue Massage",
			Slug:                      "deep-tissue-massage",
			Description:               "60-minute deep tissue massage with ocean view.",
			Category:                  models.CategorySpa,
			Price:                     90.00,
			Currency:                  "USD",
			DurationMinutes:           60,
			CapacityPerSlot:           2,
			Location:                  "Lagoon Spa Pavilion",
			PendingHoldMinutes:        cfg.Booking.DefaultHoldMinutes,
			CancellationDeadlineHours: 12,
			IsActive:                  true,
		},
		{
			Name:                      "Chef's Table Dinner",
			Slug:                      "chefs-table-dinner",
			Description:               "Seven-course tasting menu at the beachfront kitchen.",
			Category:                  models.CategoryDining,
			Price:                     150.00,
			Currency:                  "USD",
			DurationMinutes:           180,
			CapacityPerSlot:           10,
			Location:                  "Driftwood Restaurant",
			PendingHoldMinutes:        cfg.Booking.DefaultHoldMinutes,
			CancellationDeadlineHours: 48,
			IsActive:                  true,
		},
		{
			Name:                      "Reef Snorkel Safari",
			Slug:                      "reef-snorkel-safari",
			Description:               "Boat trip to the outer reef with gear included.",
			Category:                  models.CategoryAdventure,
			Price:                     65.00,
			Currency:                  "USD",
			DurationMinutes:           180,
			CapacityPerSlot:           12,
			Location:                  "Main Jetty",
			PendingHoldMinutes:        cfg.Booking.DefaultHoldMinutes,
			CancellationDeadlineHours: 24,
			IsActive:                  true,
		},
		{
			Name:                      "Sunrise Yoga",
			Slug:                      "sunrise-yoga",
			Description:               "Beachfront vinyasa flow for all levels.",
			Category:                  models.CategoryWellness,
			Price:                     25.00,
			Currency:                  "USD",
			DurationMinutes:           60,
			CapacityPerSlot:           15,
			Location:                  "East Deck",
			PendingHoldMinutes:        cfg.Booking.DefaultHoldMinutes,
			CancellationDeadlineHours: 6,
			IsActive:                  true,
		},
	}

	// one slot per activity per day for the next 7 days, starting at 09:00
	// plus the activity's own offset so slots do not collide
	base := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)

	created := 0
	for i := range activities {
		activity := &activities[i]
		if err := activityRepo.Create(activity); err != nil {
			logger.WithError(err).WithField("slug", activity.Slug).
				Warn("Skipping activity (may already exist)")
			continue
		}

		for day := 0; day < 7; day++ {
			start := base.Add(time.Duration(day)*24*time.Hour +
				9*time.Hour + time.Duration(i)*2*time.Hour)
			slot := &models.TimeSlot{
				ActivityID:  activity.ID,
				StartTime:   start,
				EndTime:     start.Add(time.Duration(activity.DurationMinutes) * time.Minute),
				Capacity:    activity.CapacityPerSlot,
				IsAvailable: true,
			}
			if err := slotRepo.Create(slot); err != nil {
				logger.WithError(err).WithField("activity", activity.Slug).
					Warn("Skipping time slot")
				continue
			}
			created++
		}

		logger.WithField("slug", activity.Slug).Info("Seeded activity")
	}

	logger.WithField("time_slots", created).Info("Seeding complete")
}
