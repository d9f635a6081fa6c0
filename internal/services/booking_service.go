package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/database"
	"github.com/coralbay-resort/booking-backend/internal/models"
)

// ActivityCatalog is the read-only catalog the booking core consumes
type ActivityCatalog interface {
	GetActivity(activityID uuid.UUID) (*models.Activity, error)
}

// SlotCatalog is the read path of the capacity ledger
type SlotCatalog interface {
	GetByID(slotID uuid.UUID) (*models.TimeSlot, error)
	GetAvailability(activityID uuid.UUID, from, to time.Time) ([]models.TimeSlot, error)
}

// BookingStore provides the atomic storage operations the lifecycle
// manager and sweeper are built on. Every compound operation commits the
// booking-row mutation and its ledger call as one unit; the conditional
// methods report how many rows matched so callers can resolve races.
type BookingStore interface {
	CreateWithReservation(booking *models.Booking) error
	GetByID(bookingID uuid.UUID) (*models.Booking, error)
	ConfirmPending(bookingID uuid.UUID, now time.Time) (int64, error)
	CancelAndRelease(bookingID uuid.UUID, from models.BookingStatus, reason *string, now time.Time) (int64, error)
	ExpireAndRelease(bookingID uuid.UUID, now time.Time) (bool, error)
	MarkOutcome(bookingID uuid.UUID, outcome models.BookingStatus, now time.Time) (int64, error)
	ListByRequester(userPhone string, status *models.BookingStatus) ([]models.Booking, error)
	ListExpiredPending(now time.Time, limit int) ([]models.Booking, error)
	ListConfirmedStartingBetween(from, to time.Time, kind database.ReminderKind) ([]models.Booking, error)
	MarkReminderSent(bookingID uuid.UUID, kind database.ReminderKind, now time.Time) (int64, error)
}

// BookingService is the booking lifecycle manager. It enforces the
// state machine, snapshots catalog policy onto new bookings, and emits
// lifecycle events after storage commits.
type BookingService struct {
	activities      ActivityCatalog
	slots           SlotCatalog
	store           BookingStore
	dispatcher      Dispatcher
	logger          *logrus.Logger
	maxParticipants int
	now             func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	activities ActivityCatalog,
	slots SlotCatalog,
	store BookingStore,
	dispatcher Dispatcher,
	maxParticipants int,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		activities:      activities,
		slots:           slots,
		store:           store,
		dispatcher:      dispatcher,
		logger:          logger,
		maxParticipants: maxParticipants,
		now:             time.Now,
	}
}

// CreateBooking reserves capacity and persists a pending booking in one
// atomic unit. The hold deadline and total price come from the
// activity's policy at creation time; later catalog changes do not
// affect the booking. The "created" event is emitted only after the
// transaction has committed.
func (s *BookingService) CreateBooking(req *models.CreateBookingRequest) (*models.Booking, error) {
	if req.Participants < 1 {
		return nil, models.ErrInvalidParticipants
	}

	slotID, err := uuid.Parse(req.TimeSlotID)
	if err != nil {
		return nil, models.ErrSlotNotFound
	}

	slot, err := s.slots.GetByID(slotID)
	if err != nil {
		return nil, err
	}

	activity, err := s.activities.GetActivity(slot.ActivityID)
	if err != nil {
		return nil, err
	}
	if !activity.IsActive {
		return nil, models.ErrActivityInactive
	}

	policy := activity.Policy()
	if req.Participants > policy.CapacityPerSlot || req.Participants > s.maxParticipants {
		return nil, models.ErrInvalidParticipants
	}

	source := req.Source
	if source == "" {
		source = models.BookingSourceWhatsApp
	}

	now := s.now()
	expiresAt := now.Add(policy.HoldDuration())
	booking := &models.Booking{
		ID:              uuid.New(),
		UserPhone:       req.UserPhone,
		ActivityID:      activity.ID,
		TimeSlotID:      slot.ID,
		Status:          models.BookingStatusPending,
		Participants:    req.Participants,
		SpecialRequests: req.SpecialRequests,
		TotalPrice:      policy.Price * float64(req.Participants),
		Currency:        policy.Currency,
		Source:          source,
		ExpiresAt:       &expiresAt,
	}

	if err := s.store.CreateWithReservation(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"activity_id":  activity.ID,
		"time_slot_id": slot.ID,
		"participants": booking.Participants,
		"source":       booking.Source,
		"expires_at":   expiresAt,
	}).Info("Booking created")

	s.emit(EventCreated, booking)
	return booking, nil
}

// ConfirmBooking transitions a pending booking to confirmed before its
// hold lapses. Confirming an already-confirmed booking by the same
// requester is idempotent. A confirm that discovers the hold has lapsed
// performs the expire transition itself rather than waiting for the
// sweeper, then reports ErrBookingExpired.
func (s *BookingService) ConfirmBooking(bookingID uuid.UUID, userPhone string) (*models.Booking, error) {
	booking, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsTo(userPhone) {
		return nil, models.ErrForbidden
	}

	switch booking.Status {
	case models.BookingStatusConfirmed:
		return booking, nil
	case models.BookingStatusPending:
		// fall through to the conditional transition below
	default:
		return nil, models.ErrInvalidState
	}

	now := s.now()
	rows, err := s.store.ConfirmPending(bookingID, now)
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		return s.resolveFailedConfirm(bookingID, now)
	}

	confirmed, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_phone": userPhone,
	}).Info("Booking confirmed")

	s.emit(EventConfirmed, confirmed)
	return confirmed, nil
}

// resolveFailedConfirm classifies a confirm whose conditional update
// matched no row: a concurrent confirm, a lapsed hold, or a concurrent
// cancellation.
func (s *BookingService) resolveFailedConfirm(bookingID uuid.UUID, now time.Time) (*models.Booking, error) {
	booking, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case booking.Status == models.BookingStatusConfirmed:
		// Lost a race against another confirm by the same requester
		return booking, nil
	case booking.HoldExpired(now):
		// The hold lapsed but the sweeper has not run yet; perform the
		// expire transition here so capacity is released promptly.
		expired, err := s.store.ExpireAndRelease(bookingID, now)
		if err != nil {
			return nil, err
		}
		if expired {
			if released, err := s.store.GetByID(bookingID); err == nil {
				s.emit(EventCancelledExpired, released)
			}
		}
		return nil, models.ErrBookingExpired
	default:
		return nil, models.ErrInvalidState
	}
}

// CancelBooking cancels a booking and releases its capacity. Pending
// bookings cancel unconditionally; confirmed bookings only outside the
// activity's cancellation deadline.
func (s *BookingService) CancelBooking(bookingID uuid.UUID, userPhone string, reason *string) (*models.Booking, error) {
	booking, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsTo(userPhone) {
		return nil, models.ErrForbidden
	}

	now := s.now()

	switch booking.Status {
	case models.BookingStatusPending:
		// no deadline applies to an unconfirmed hold
	case models.BookingStatusConfirmed:
		activity, err := s.activities.GetActivity(booking.ActivityID)
		if err != nil {
			return nil, err
		}
		slot, err := s.slots.GetByID(booking.TimeSlotID)
		if err != nil {
			return nil, err
		}
		if now.After(activity.Policy().CancellationDeadline(slot.StartTime)) {
			return nil, models.ErrCancellationWindowClosed
		}
	default:
		return nil, models.ErrInvalidState
	}

	rows, err := s.store.CancelAndRelease(bookingID, booking.Status, reason, now)
	if err != nil {
		s.reportIntegrity(err, bookingID)
		return nil, err
	}
	if rows == 0 {
		// a concurrent confirm, cancel or sweep won the race
		return nil, models.ErrInvalidState
	}

	cancelled, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_phone": userPhone,
		"from":       booking.Status,
	}).Info("Booking cancelled")

	s.emit(EventCancelled, cancelled)
	return cancelled, nil
}

// MarkCompleted records that the guest attended after the activity has
// elapsed
func (s *BookingService) MarkCompleted(bookingID uuid.UUID) (*models.Booking, error) {
	return s.markOutcome(bookingID, models.BookingStatusCompleted)
}

// MarkNoShow records that the guest did not attend after the activity
// has elapsed
func (s *BookingService) MarkNoShow(bookingID uuid.UUID) (*models.Booking, error) {
	return s.markOutcome(bookingID, models.BookingStatusNoShow)
}

func (s *BookingService) markOutcome(bookingID uuid.UUID, outcome models.BookingStatus) (*models.Booking, error) {
	booking, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, models.ErrInvalidState
	}

	slot, err := s.slots.GetByID(booking.TimeSlotID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !slot.HasElapsed(now) {
		return nil, models.ErrInvalidState
	}

	rows, err := s.store.MarkOutcome(bookingID, outcome, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.ErrInvalidState
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"outcome":    outcome,
	}).Info("Booking outcome recorded")

	return s.store.GetByID(bookingID)
}

// GetBooking returns a booking after verifying ownership
func (s *BookingService) GetBooking(bookingID uuid.UUID, userPhone string) (*models.Booking, error) {
	booking, err := s.store.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsTo(userPhone) {
		return nil, models.ErrForbidden
	}
	return booking, nil
}

// ListBookings returns a requester's bookings, optionally filtered by
// status
func (s *BookingService) ListBookings(userPhone string, status *models.BookingStatus) ([]models.Booking, error) {
	return s.store.ListByRequester(userPhone, status)
}

// emit sends a lifecycle event to the dispatcher. Delivery failures are
// logged and swallowed: notifications never fail the booking operation.
func (s *BookingService) emit(event EventType, booking *models.Booking) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Notify(event, booking); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":      event,
			"booking_id": booking.ID,
		}).Error("Failed to dispatch booking notification")
	}
}

// reportIntegrity escalates integrity-class failures, which indicate a
// broken invariant rather than ordinary contention
func (s *BookingService) reportIntegrity(err error, bookingID uuid.UUID) {
	if err == nil {
		return
	}
	if errors.Is(err, models.ErrReleaseUnderflow) {
		s.logger.WithError(err).WithField("booking_id", bookingID).
			Error("Capacity invariant violation detected during release")
	}
}
