package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/metrics"
)

// DecoyWriter rewrites the decoy artifacts. *decoy.Generator satisfies it.
type DecoyWriter interface {
	GenerateAll(ctx context.Context) ([]string, error)
}

// DecoyRefreshService periodically regenerates the decoy tables so
// last-modified dates and contents keep moving like live data.
type DecoyRefreshService struct {
	Cron    *cron.Cron
	gen     DecoyWriter
	timeout time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

// NewDecoyRefreshService schedules gen on spec, a standard cron expression
// or descriptor such as "@every 6h". The scheduler is not started.
func NewDecoyRefreshService(spec string, gen DecoyWriter) (*DecoyRefreshService, error) {
	s := &DecoyRefreshService{
		Cron:    cron.New(),
		gen:     gen,
		timeout: time.Minute,
	}
	if _, err := s.Cron.AddFunc(spec, func() { _ = s.Refresh(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule decoy refresh %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler in the background.
func (s *DecoyRefreshService) Start() {
	s.Cron.Start()
	logger.Log().WithField("jobs", len(s.Cron.Entries())).Info("decoy refresh scheduler started")
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *DecoyRefreshService) Stop() {
	<-s.Cron.Stop().Done()
}

// Refresh regenerates every artifact now.
func (s *DecoyRefreshService) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	files, err := s.gen.GenerateAll(ctx)
	metrics.IncDecoyRegeneration(err == nil)
	if err != nil {
		logger.Log().WithError(err).WithField("files", files).Error("scheduled decoy refresh incomplete")
		return err
	}
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()
	logger.Log().WithField("files", files).Info("decoys refreshed")
	return nil
}

// LastRun returns when the last successful refresh finished.
func (s *DecoyRefreshService) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
