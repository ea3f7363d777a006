package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// maxBatchesPerRun caps one sweep so a backlog cannot hold the job forever
const maxBatchesPerRun = 10

type staleHoldExpirer interface {
	ExpireStale(ctx context.Context, limit int) (int, error)
}

// HoldExpirationService expires Temporary bookings whose hold has run out
// and frees their seats. Availability already ignores stale holds, so the
// sweep only keeps booking status and seat rows tidy.
type HoldExpirationService struct {
	expirer   staleHoldExpirer
	batchSize int
	timeout   time.Duration
	logger    *logrus.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
	total   int
}

// NewHoldExpirationService creates a new hold expiration service
func NewHoldExpirationService(expirer staleHoldExpirer, batchSize int, logger *logrus.Logger) *HoldExpirationService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &HoldExpirationService{
		expirer:   expirer,
		batchSize: batchSize,
		timeout:   25 * time.Second,
		logger:    logger,
	}
}

// RunOnce runs a single expiration sweep and returns how many bookings it expired
func (s *HoldExpirationService) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	expired := 0
	var runErr error
	for batch := 0; batch < maxBatchesPerRun; batch++ {
		n, err := s.expirer.ExpireStale(ctx, s.batchSize)
		expired += n
		if err != nil {
			runErr = err
			break
		}
		if n < s.batchSize {
			break
		}
	}

	if expired > 0 {
		s.logger.WithField("count", expired).Info("Expired stale booking holds")
	}
	if runErr != nil {
		s.logger.WithError(runErr).Error("Hold expiration sweep failed")
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = runErr
	s.total += expired
	s.mu.Unlock()

	return expired, runErr
}

// GetStats returns sweep statistics for the health endpoint
func (s *HoldExpirationService) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"total_expired": s.total,
		"batch_size":    s.batchSize,
	}
	if !s.lastRun.IsZero() {
		stats["last_run"] = s.lastRun
	}
	if s.lastErr != nil {
		stats["last_error"] = s.lastErr.Error()
	}
	return stats
}
