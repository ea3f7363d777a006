package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	sweepSchedule string
	expirationSvc *HoldExpirationService
	logger        *logrus.Logger
}

// NewCronService creates a new CronService. sweepSchedule uses the
// six-field cron format with seconds.
func NewCronService(sweepSchedule string, expirationSvc *HoldExpirationService, logger *logrus.Logger) *CronService {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &CronService{
		cron:          c,
		sweepSchedule: sweepSchedule,
		expirationSvc: expirationSvc,
		logger:        logger,
	}
}

// Start schedules every job and starts the scheduler
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// second minute hour day month weekday
	if _, err := s.cron.AddFunc(s.sweepSchedule, s.expireHoldsJob); err != nil {
		return fmt.Errorf("failed to schedule hold expiration job: %w", err)
	}
	s.logger.WithField("schedule", s.sweepSchedule).Info("Scheduled: Expire stale booking holds")

	s.cron.Start()
	s.logger.Info("Cron service started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) expireHoldsJob() {
	startTime := time.Now()

	expired, err := s.expirationSvc.RunOnce(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Hold expiration job failed")
		return
	}

	if expired > 0 {
		s.logger.WithFields(logrus.Fields{
			"expired":  expired,
			"duration": time.Since(startTime).String(),
		}).Info("[CRON] Hold expiration job finished")
	}
}

// RunExpireHoldsNow runs the hold expiration job immediately
func (s *CronService) RunExpireHoldsNow() {
	s.logger.Info("[MANUAL] Running hold expiration now...")
	s.expireHoldsJob()
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
		"running":    len(entries) > 0,
		"job_count":  len(entries),
		"jobs":       jobs,
		"expiration": s.expirationSvc.GetStats(),
	}
}
