package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/database"
)

// ReminderService sends pre-activity reminders for confirmed bookings.
// Each reminder kind is recorded with a sent timestamp guarded by an
// IS NULL conditional update, so overlapping job runs deliver at most
// one message per booking per kind.
type ReminderService struct {
	store      BookingStore
	dispatcher Dispatcher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewReminderService creates a new ReminderService
func NewReminderService(store BookingStore, dispatcher Dispatcher, logger *logrus.Logger) *ReminderService {
	return &ReminderService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Run24h sends day-before reminders for confirmed bookings starting
// 23 to 25 hours from now. The wide window tolerates missed or delayed
// job runs.
func (s *ReminderService) Run24h() (int, error) {
	now := s.now()
	return s.run(now.Add(23*time.Hour), now.Add(25*time.Hour), database.Reminder24h, EventReminder24h)
}

// Run1h sends final reminders for confirmed bookings starting 45 to 75
// minutes from now
func (s *ReminderService) Run1h() (int, error) {
	now := s.now()
	return s.run(now.Add(45*time.Minute), now.Add(75*time.Minute), database.Reminder1h, EventReminder1h)
}

func (s *ReminderService) run(from, to time.Time, kind database.ReminderKind, event EventType) (int, error) {
	due, err := s.store.ListConfirmedStartingBetween(from, to, kind)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		booking := &due[i]

		// Claim the reminder before sending: a duplicate message is
		// worse than a dropped one for a courtesy reminder.
		rows, err := s.store.MarkReminderSent(booking.ID, kind, s.now())
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).
				Error("Failed to mark reminder sent")
			continue
		}
		if rows == 0 {
			// another run claimed it, or the booking left confirmed
			continue
		}

		if s.dispatcher != nil {
			if err := s.dispatcher.Notify(event, booking); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"booking_id": booking.ID,
					"event":      event,
				}).Error("Failed to dispatch reminder")
				continue
			}
		}
		sent++
	}

	if sent > 0 {
		s.logger.WithFields(logrus.Fields{
			"event": event,
			"sent":  sent,
		}).Info("Reminders dispatched")
	}
	return sent, nil
}
