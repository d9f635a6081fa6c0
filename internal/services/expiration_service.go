package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ExpirationService is the background sweeper that cancels pending
// bookings whose hold deadline has passed and returns their capacity to
// the ledger. It is a safety net behind the lazy expiration performed
// during confirm: each row's transition is still guarded by the
// conditional update, so a sweep racing a confirm resolves to exactly
// one winner.
type ExpirationService struct {
	store      BookingStore
	dispatcher Dispatcher
	logger     *logrus.Logger
	interval   time.Duration
	batchSize  int
	now        func() time.Time

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewExpirationService creates a new ExpirationService
func NewExpirationService(
	store BookingStore,
	dispatcher Dispatcher,
	interval time.Duration,
	batchSize int,
	logger *logrus.Logger,
) *ExpirationService {
	return &ExpirationService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// Start launches the periodic sweep loop
func (s *ExpirationService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Expiration service already running")
		return
	}

	s.stopCh = make(chan struct{})
	s.running = true

	go s.run()

	s.logger.WithFields(logrus.Fields{
		"interval":   s.interval,
		"batch_size": s.batchSize,
	}).Info("Expiration service started")
}

// Stop terminates the sweep loop
func (s *ExpirationService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	s.running = false

	s.logger.Info("Expiration service stopped")
}

func (s *ExpirationService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// sweep once at startup to clear anything that lapsed while the
	// server was down
	s.sweepAndLog()

	for {
		select {
		case <-ticker.C:
			s.sweepAndLog()
		case <-s.stopCh:
			return
		}
	}
}

func (s *ExpirationService) sweepAndLog() {
	expired, err := s.Sweep(s.now())
	if err != nil {
		s.logger.WithError(err).Error("Expiration sweep failed")
		return
	}
	if expired > 0 {
		s.logger.WithField("expired_count", expired).Info("Expiration sweep released lapsed holds")
	}
}

// RunOnce performs a single sweep immediately, outside the periodic
// schedule. Used by the manual admin trigger.
func (s *ExpirationService) RunOnce() (int, error) {
	return s.Sweep(s.now())
}

// Sweep cancels every pending booking whose hold deadline is at or
// before now, up to the batch size, and returns the number of bookings
// expired. A row that a concurrent confirm or cancel has already moved
// out of pending is skipped without touching the ledger.
func (s *ExpirationService) Sweep(now time.Time) (int, error) {
	candidates, err := s.store.ListExpiredPending(now, s.batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		booking := &candidates[i]

		won, err := s.store.ExpireAndRelease(booking.ID, now)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).
				Error("Failed to expire booking")
			continue
		}
		if !won {
			// a confirm or cancel got there first
			continue
		}

		expired++
		s.notifyExpired(booking.ID)
	}

	return expired, nil
}

func (s *ExpirationService) notifyExpired(bookingID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}

	booking, err := s.store.GetByID(bookingID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).
			Error("Failed to load expired booking for notification")
		return
	}

	if err := s.dispatcher.Notify(EventCancelledExpired, booking); err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).
			Error("Failed to dispatch expiration notification")
	}
}
