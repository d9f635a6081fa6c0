package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/models"
	"github.com/coralbay-resort/booking-backend/pkg/notify"
)

// EventType identifies a booking lifecycle event
type EventType string

const (
	EventCreated          EventType = "created"
	EventConfirmed        EventType = "confirmed"
	EventCancelled        EventType = "cancelled"
	EventCancelledExpired EventType = "cancelled_expired"
	EventReminder24h      EventType = "reminder_24h"
	EventReminder1h       EventType = "reminder_1h"
)

// Dispatcher receives booking lifecycle events and delivers them
// out-of-band. Delivery is best-effort: a failed Notify must never roll
// back or fail the booking operation that triggered it, so callers only
// log returned errors.
type Dispatcher interface {
	Notify(event EventType, booking *models.Booking) error
}

// WhatsAppDispatcher delivers lifecycle events as WhatsApp messages to
// the booking's requester
type WhatsAppDispatcher struct {
	gateway    notify.Gateway
	activities ActivityCatalog
	slots      SlotCatalog
	webAppURL  string
	logger     *logrus.Logger
}

// NewWhatsAppDispatcher creates a new WhatsAppDispatcher
func NewWhatsAppDispatcher(
	gateway notify.Gateway,
	activities ActivityCatalog,
	slots SlotCatalog,
	webAppURL string,
	logger *logrus.Logger,
) *WhatsAppDispatcher {
	return &WhatsAppDispatcher{
		gateway:    gateway,
		activities: activities,
		slots:      slots,
		webAppURL:  webAppURL,
		logger:     logger,
	}
}

// Notify formats and sends the message for a lifecycle event
func (d *WhatsAppDispatcher) Notify(event EventType, booking *models.Booking) error {
	body, err := d.composeMessage(event, booking)
	if err != nil {
		return fmt.Errorf("failed to compose %s message: %w", event, err)
	}

	if !d.gateway.IsConfigured() {
		d.logger.WithFields(logrus.Fields{
			"event":      event,
			"booking_id": booking.ID,
			"to":         booking.UserPhone,
		}).Info("WhatsApp gateway not configured, skipping notification")
		return nil
	}

	if err := d.gateway.SendWhatsApp(booking.UserPhone, body); err != nil {
		return fmt.Errorf("failed to send %s notification: %w", event, err)
	}

	d.logger.WithFields(logrus.Fields{
		"event":      event,
		"booking_id": booking.ID,
	}).Info("Booking notification sent")
	return nil
}

func (d *WhatsAppDispatcher) composeMessage(event EventType, booking *models.Booking) (string, error) {
	activity, err := d.activities.GetActivity(booking.ActivityID)
	if err != nil {
		return "", err
	}
	slot, err := d.slots.GetByID(booking.TimeSlotID)
	if err != nil {
		return "", err
	}

	when := formatSlotTime(slot.StartTime)

	switch event {
	case EventCreated:
		holdMinutes := 0
		if booking.ExpiresAt != nil {
			holdMinutes = int(time.Until(*booking.ExpiresAt).Round(time.Minute).Minutes())
		}
		return fmt.Sprintf(
			"Your booking for %s on %s is reserved for %d guest(s), total %.2f %s.\n"+
				"Please confirm within %d minutes or the reservation will be released:\n%s/bookings/%s/confirm",
			activity.Name, when, booking.Participants, booking.TotalPrice, booking.Currency,
			holdMinutes, d.webAppURL, booking.ID,
		), nil
	case EventConfirmed:
		return fmt.Sprintf(
			"Your booking for %s on %s is confirmed. We look forward to seeing you at %s!",
			activity.Name, when, activity.Location,
		), nil
	case EventCancelled:
		msg := fmt.Sprintf("Your booking for %s on %s has been cancelled.", activity.Name, when)
		if booking.CancellationReason != nil && *booking.CancellationReason != "" {
			msg += fmt.Sprintf(" Reason: %s", *booking.CancellationReason)
		}
		return msg, nil
	case EventCancelledExpired:
		return fmt.Sprintf(
			"Your reservation for %s on %s was not confirmed in time and has been released. "+
				"You are welcome to book again if spots remain.",
			activity.Name, when,
		), nil
	case EventReminder24h:
		return fmt.Sprintf(
			"Reminder: your %s booking is tomorrow, %s, at %s. See you there!",
			activity.Name, when, activity.Location,
		), nil
	case EventReminder1h:
		return fmt.Sprintf(
			"Your %s booking starts in about an hour (%s) at %s.",
			activity.Name, when, activity.Location,
		), nil
	default:
		return "", fmt.Errorf("unknown event type %q", event)
	}
}

func formatSlotTime(t time.Time) string {
	return t.Format("Monday, January 2, 2006 at 3:04 PM")
}
