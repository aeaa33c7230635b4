package deception

import (
	"context"
	"time"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/metrics"
)

// DefaultWindow is the trailing window behind requests-per-minute.
const DefaultWindow = 60 * time.Second

// LogCounter counts forensic records for a source.
type LogCounter interface {
	CountLogsSince(ctx context.Context, ip string, since time.Time) (int64, error)
}

// RateTracker counts a source's recent requests from the forensic log.
//
// The triggering request is appended only after it has been scored, so the
// tracker adds one for it: the count covers [now-window, now] including the
// current event.
type RateTracker struct {
	store LogCounter
	now   func() time.Time
}

// NewRateTracker returns a tracker backed by store.
func NewRateTracker(store LogCounter) *RateTracker {
	return &RateTracker{store: store, now: time.Now}
}

// CountRecentRequests returns the number of requests from sourceID in the
// trailing window, current one included. A failed lookup returns 0.
func (r *RateTracker) CountRecentRequests(ctx context.Context, sourceID string, window time.Duration) int {
	if window <= 0 {
		window = DefaultWindow
	}
	n, err := r.store.CountLogsSince(ctx, sourceID, r.now().Add(-window))
	if err != nil {
		metrics.IncStoreDegraded("rate")
		logger.ForSource("rate", sourceID).WithError(err).Warn("rate lookup failed, using 0")
		return 0
	}
	return int(n) + 1
}
