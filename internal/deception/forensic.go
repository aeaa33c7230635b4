package deception

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/metrics"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
)

// DefaultAppendTimeout bounds one forensic append.
const DefaultAppendTimeout = 2 * time.Second

// LogAppender persists forensic records.
type LogAppender interface {
	AppendLog(ctx context.Context, rec *models.LogRecord) error
}

// AnomalyNotifier is told about anomalous records after they are appended.
type AnomalyNotifier interface {
	NotifyAnomaly(rec models.LogRecord)
}

// ForensicLogger appends one record per evaluated request. Appends are best
// effort: a failure is counted and logged but never surfaces to the caller,
// whose response must look the same either way.
type ForensicLogger struct {
	store    LogAppender
	notifier AnomalyNotifier
	timeout  time.Duration
}

// NewForensicLogger returns a logger writing to store. notifier may be nil.
func NewForensicLogger(store LogAppender, notifier AnomalyNotifier, timeout time.Duration) *ForensicLogger {
	if timeout <= 0 {
		timeout = DefaultAppendTimeout
	}
	return &ForensicLogger{store: store, notifier: notifier, timeout: timeout}
}

// Append stores rec. The append outlives the caller's cancellation (an
// attacker hanging up must not erase the record) but not the timeout.
func (f *ForensicLogger) Append(ctx context.Context, rec models.LogRecord) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	err := f.store.AppendLog(ctx, &rec)
	if err != nil {
		metrics.IncForensicFailure()
		logger.ForSource("forensic", rec.IP).WithError(err).Error("failed to write forensic record")
	}
	if f.notifier != nil && rec.Anomaly {
		f.notifier.NotifyAnomaly(rec)
	}
	return err
}

// NewLogRecord builds the forensic record for an evaluated request.
func NewLogRecord(req Request, sourceID string, v Verdict) models.LogRecord {
	rec := models.LogRecord{
		IP:         sourceID,
		UserAgent:  req.UserAgent,
		Path:       req.Path,
		Method:     req.Method,
		Payload:    v.Payload,
		NumParams:  v.Features.NumParams,
		PayloadLen: v.Features.PayloadLength,
		Timestamp:  time.Now().UTC(),
		Anomaly:    v.IsAnomaly,
		DecoyFile:  v.DecoyReference,
	}
	if v.Profile != nil {
		if raw, err := json.Marshal(v.Profile); err == nil {
			rec.Profile = string(raw)
		}
	}
	return rec
}
