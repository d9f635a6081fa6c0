package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	reminderSvc *ReminderService
	logger      *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(reminderSvc *ReminderService, logger *logrus.Logger) *CronService {
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:        c,
		reminderSvc: reminderSvc,
		logger:      logger,
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service")

	// Cron format: second minute hour day month weekday

	// Day-before reminders, hourly on the hour
	_, err := s.cron.AddFunc("0 0 * * * *", s.reminder24hJob)
	if err != nil {
		return fmt.Errorf("failed to schedule 24h reminder job: %w", err)
	}

	// Final reminders, every 15 minutes
	_, err = s.cron.AddFunc("0 */15 * * * *", s.reminder1hJob)
	if err != nil {
		return fmt.Errorf("failed to schedule 1h reminder job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops all scheduled jobs and waits for running ones to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) reminder24hJob() {
	startTime := time.Now()

	sent, err := s.reminderSvc.Run24h()
	if err != nil {
		s.logger.WithError(err).Error("24h reminder job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"sent":     sent,
		"duration": time.Since(startTime),
	}).Debug("24h reminder job finished")
}

func (s *CronService) reminder1hJob() {
	startTime := time.Now()

	sent, err := s.reminderSvc.Run1h()
	if err != nil {
		s.logger.WithError(err).Error("1h reminder job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"sent":     sent,
		"duration": time.Since(startTime),
	}).Debug("1h reminder job finished")
}

// RunReminder24hNow runs the day-before reminder job immediately
func (s *CronService) RunReminder24hNow() (int, error) {
	s.logger.Info("Running 24h reminder job manually")
	return s.reminderSvc.Run24h()
}

// RunReminder1hNow runs the final reminder job immediately
func (s *CronService) RunReminder1hNow() (int, error) {
	s.logger.Info("Running 1h reminder job manually")
	return s.reminderSvc.Run1h()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
