package deception

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory Store and LogAppender.
type memStore struct {
	mu        sync.Mutex
	logs      []models.LogRecord
	blocked   map[string]bool
	failCount bool
	failBlock bool
	failWrite bool
}

func newMemStore() *memStore {
	return &memStore{blocked: map[string]bool{}}
}

func (s *memStore) CountLogsSince(_ context.Context, ip string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCount {
		return 0, errStoreDown
	}
	var n int64
	for _, l := range s.logs {
		if l.IP == ip && !l.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) IsBlocked(_ context.Context, ip string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBlock {
		return false, errStoreDown
	}
	return s.blocked[ip], nil
}

func (s *memStore) AppendLog(_ context.Context, rec *models.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errStoreDown
	}
	s.logs = append(s.logs, *rec)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

// stubDetector returns a fixed answer and counts calls.
type stubDetector struct {
	mu      sync.Mutex
	calls   int
	answer  bool
	err     error
	panics  bool
	lastRow []float64
}

func (d *stubDetector) Predict(x []float64) (bool, error) {
	d.mu.Lock()
	d.calls++
	d.lastRow = x
	d.mu.Unlock()
	if d.panics {
		panic("corrupt forest")
	}
	return d.answer, d.err
}

func (d *stubDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// stubDecoys records bundle regenerations.
type stubDecoys struct {
	mu          sync.Mutex
	regenerated int
	err         error
}

func (d *stubDecoys) RegenerateCredentialBundle(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regenerated++
	if d.err != nil {
		return "", d.err
	}
	return "/download/credentials_backup.zip", nil
}

func (d *stubDecoys) Name() string { return "Dana Whitfield" }

func (d *stubDecoys) FabricatedRow(id int) map[string]any {
	return map[string]any{"id": id, "name": "John Doe", "email": "john.doe@company.internal"}
}

type recordingNotifier struct {
	mu   sync.Mutex
	recs []models.LogRecord
}

func (n *recordingNotifier) NotifyAnomaly(rec models.LogRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recs = append(n.recs, rec)
}
