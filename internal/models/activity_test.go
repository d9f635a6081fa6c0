package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityPolicy(t *testing.T) {
	activity := &Activity{
		Price:                     45.50,
		Currency:                  "USD",
		CapacityPerSlot:           8,
		PendingHoldMinutes:        30,
		CancellationDeadlineHours: 24,
	}

	policy := activity.Policy()

	// A later catalog edit must not change an already-captured policy
	activity.Price = 99
	activity.PendingHoldMinutes = 5

	assert.Equal(t, 45.50, policy.Price)
	assert.Equal(t, 30*time.Minute, policy.HoldDuration())

	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(-24*time.Hour), policy.CancellationDeadline(start))
}

func TestActivityCategoryValid(t *testing.T) {
	assert.True(t, CategoryWatersports.Valid())
	assert.True(t, CategorySpa.Valid())
	assert.False(t, ActivityCategory("golf").Valid())
	assert.False(t, ActivityCategory("").Valid())
}

func TestTimeSlotHelpers(t *testing.T) {
	now := time.Now()
	slot := &TimeSlot{
		StartTime:   now.Add(2 * time.Hour),
		EndTime:     now.Add(3 * time.Hour),
		Capacity:    10,
		BookedCount: 7,
		IsAvailable: true,
	}

	assert.Equal(t, 3, slot.AvailableCapacity())
	assert.True(t, slot.IsBookable(now))
	assert.False(t, slot.HasElapsed(now))

	t.Run("Closed Slot", func(t *testing.T) {
		closed := *slot
		closed.IsAvailable = false
		assert.False(t, closed.IsBookable(now))
	})

	t.Run("Past Slot", func(t *testing.T) {
		past := *slot
		past.StartTime = now.Add(-2 * time.Hour)
		past.EndTime = now.Add(-time.Hour)
		assert.False(t, past.IsBookable(now))
		assert.True(t, past.HasElapsed(now))
	})
}
