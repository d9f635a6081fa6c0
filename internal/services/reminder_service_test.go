package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminder(fx *fixture) *ReminderService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewReminderService(asBookingStore(fx.store), fx.dispatcher, logger)
	svc.now = fx.service.now
	return svc
}

func TestReminders(t *testing.T) {
	t.Run("Run24h Sends Once", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)
		_, err := fx.service.ConfirmBooking(booking.ID, "+94771234567")
		require.NoError(t, err)

		// slot starts 48h out; advance so it falls in the 23-25h window
		reminderNow := fx.slot.StartTime.Add(-24 * time.Hour)
		fx.service.now = func() time.Time { return reminderNow }
		reminder := newReminder(fx)

		sent, err := reminder.Run24h()
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Contains(t, fx.dispatcher.recorded(), EventReminder24h)

		// a second run claims nothing
		sent, err = reminder.Run24h()
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("Run1h Sends Once", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)
		_, err := fx.service.ConfirmBooking(booking.ID, "+94771234567")
		require.NoError(t, err)

		reminderNow := fx.slot.StartTime.Add(-time.Hour)
		fx.service.now = func() time.Time { return reminderNow }
		reminder := newReminder(fx)

		sent, err := reminder.Run1h()
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Contains(t, fx.dispatcher.recorded(), EventReminder1h)

		sent, err = reminder.Run1h()
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("Pending Bookings Get No Reminder", func(t *testing.T) {
		fx := newFixture(t)
		fx.createPending(t, "+94771234567", 2)

		reminderNow := fx.slot.StartTime.Add(-24 * time.Hour)
		fx.service.now = func() time.Time { return reminderNow }
		reminder := newReminder(fx)

		sent, err := reminder.Run24h()
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("Outside Window Gets No Reminder", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)
		_, err := fx.service.ConfirmBooking(booking.ID, "+94771234567")
		require.NoError(t, err)

		// 48h before start is outside the 23-25h window
		reminder := newReminder(fx)

		sent, err := reminder.Run24h()
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})
}
