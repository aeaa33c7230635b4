package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/util"
)

const (
	// DefaultAlertCooldown is the minimum gap between alerts for one source.
	DefaultAlertCooldown = time.Minute
	// maxInFlightAlerts caps concurrent deliveries across all destinations.
	maxInFlightAlerts = 8
	// cooldownPruneSize triggers dropping expired cooldown entries.
	cooldownPruneSize = 4096
)

// AlertService fans anomaly notifications out to shoutrrr destinations
// (Slack, Discord, Telegram, generic webhooks, ...). Delivery is
// fire-and-forget: a slow or broken destination never delays a response.
// Each source alerts at most once per cooldown, and deliveries beyond the
// in-flight cap are dropped rather than queued.
type AlertService struct {
	urls     []string
	send     func(url, message string) error
	cooldown time.Duration
	now      func() time.Time
	sem      chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewAlertService returns an AlertService for the given shoutrrr URLs.
func NewAlertService(urls []string) *AlertService {
	return &AlertService{
		urls:     urls,
		send:     shoutrrrSend,
		cooldown: DefaultAlertCooldown,
		now:      time.Now,
		sem:      make(chan struct{}, maxInFlightAlerts),
		lastSent: make(map[string]time.Time),
	}
}

func shoutrrrSend(url, message string) error {
	return shoutrrr.Send(url, message)
}

// Enabled reports whether any destination is configured.
func (s *AlertService) Enabled() bool { return len(s.urls) > 0 }

// NotifyAnomaly dispatches an alert for an anomalous forensic record.
func (s *AlertService) NotifyAnomaly(rec models.LogRecord) {
	if !s.Enabled() || !rec.Anomaly {
		return
	}
	if !s.allow(rec.IP) {
		return
	}
	msg := FormatAlert(rec)
	for _, u := range s.urls {
		select {
		case s.sem <- struct{}{}:
		default:
			logger.Log().WithField("service", serviceName(u)).Warn("alert delivery saturated, dropping alert")
			continue
		}
		s.wg.Add(1)
		go func(url string) {
			defer func() {
				<-s.sem
				s.wg.Done()
			}()
			if err := s.send(url, msg); err != nil {
				logger.Log().WithError(err).WithField("service", serviceName(url)).Warn("failed to deliver anomaly alert")
			}
		}(u)
	}
}

// allow reports whether source is outside its cooldown and, if so, starts
// a new one.
func (s *AlertService) allow(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if last, ok := s.lastSent[source]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	if len(s.lastSent) >= cooldownPruneSize {
		for ip, t := range s.lastSent {
			if now.Sub(t) >= s.cooldown {
				delete(s.lastSent, ip)
			}
		}
	}
	s.lastSent[source] = now
	return true
}

// Wait blocks until in-flight alerts have been attempted.
func (s *AlertService) Wait() { s.wg.Wait() }

// FormatAlert renders the chat message for rec.
func FormatAlert(rec models.LogRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mirage: anomalous %s %s from %s\n\n", rec.Method, util.Truncate(util.SanitizeForLog(rec.Path), 120), rec.IP)
	fmt.Fprintf(&b, "User-Agent: %s\n", util.Truncate(util.SanitizeForLog(rec.UserAgent), 200))
	fmt.Fprintf(&b, "Payload (%d bytes): %s\n", rec.PayloadLen, util.Truncate(util.SanitizeForLog(rec.Payload), 200))
	if rec.DecoyFile != "" {
		fmt.Fprintf(&b, "Decoy served: %s\n", rec.DecoyFile)
	}
	return b.String()
}

// serviceName strips credentials from a shoutrrr URL before it is logged.
func serviceName(url string) string {
	if i := strings.Index(url, "://"); i > 0 {
		return url[:i]
	}
	return "unknown"
}
