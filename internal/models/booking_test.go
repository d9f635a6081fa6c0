package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusPending, BookingStatusNoShow, false},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusNoShow, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusNoShow, BookingStatusConfirmed, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusNoShow.IsTerminal())
}

func TestHoldExpired(t *testing.T) {
	now := time.Now()
	deadline := now.Add(-time.Minute)

	t.Run("Pending Past Deadline", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending, ExpiresAt: &deadline}
		assert.True(t, b.HoldExpired(now))
	})

	t.Run("Pending Before Deadline", func(t *testing.T) {
		future := now.Add(time.Minute)
		b := &Booking{Status: BookingStatusPending, ExpiresAt: &future}
		assert.False(t, b.HoldExpired(now))
	})

	t.Run("Exactly At Deadline", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending, ExpiresAt: &now}
		assert.True(t, b.HoldExpired(now))
	})

	t.Run("Confirmed Never Expires", func(t *testing.T) {
		b := &Booking{Status: BookingStatusConfirmed, ExpiresAt: &deadline}
		assert.False(t, b.HoldExpired(now))
	})

	t.Run("No Deadline", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		assert.False(t, b.HoldExpired(now))
	})
}

func TestBelongsTo(t *testing.T) {
	b := &Booking{UserPhone: "+94771234567"}
	assert.True(t, b.BelongsTo("+94771234567"))
	assert.False(t, b.BelongsTo("+94770000000"))
}
