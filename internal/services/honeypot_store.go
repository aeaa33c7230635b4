package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
)

var (
	ErrBlocklistEntryNotFound = errors.New("blocklist entry not found")
	ErrSourceRequired         = errors.New("source ip required")
)

// HoneypotStore is the storage collaborator of the decision engine: the
// append-only forensic log and the manual blocklist, both in SQLite.
type HoneypotStore struct {
	db *gorm.DB
}

// NewHoneypotStore returns a HoneypotStore using the provided DB.
func NewHoneypotStore(db *gorm.DB) *HoneypotStore {
	return &HoneypotStore{db: db}
}

// Migrate creates or updates the tables owned by the store.
func (s *HoneypotStore) Migrate() error {
	return s.db.AutoMigrate(&models.LogRecord{}, &models.BlocklistEntry{}, &models.SecurityAudit{})
}

// AppendLog inserts a forensic record. The model hook fills the UUID and
// normalises the timestamp to UTC.
func (s *HoneypotStore) AppendLog(ctx context.Context, rec *models.LogRecord) error {
	if rec == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// CountLogsSince counts records from ip with a timestamp at or after since.
func (s *HoneypotStore) CountLogsSince(ctx context.Context, ip string, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.LogRecord{}).
		Where("ip = ? AND timestamp >= ?", ip, since.UTC()).
		Count(&n).Error
	return n, err
}

// IsBlocked reports whether ip has a blocklist entry.
func (s *HoneypotStore) IsBlocked(ctx context.Context, ip string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.BlocklistEntry{}).Where("ip = ?", ip).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddBlocklistEntry blocks ip. Adding an already-blocked ip is a no-op that
// returns the existing entry.
func (s *HoneypotStore) AddBlocklistEntry(ctx context.Context, ip, reason string) (*models.BlocklistEntry, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return nil, ErrSourceRequired
	}
	if reason == "" {
		reason = "manual"
	}
	entry := models.BlocklistEntry{IP: ip, Reason: reason, CreatedAt: time.Now().UTC()}
	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "ip"}}, DoNothing: true}).Create(&entry).Error; err != nil {
		return nil, err
	}
	var stored models.BlocklistEntry
	if err := db.Where("ip = ?", ip).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// RemoveBlocklistEntry unblocks ip.
func (s *HoneypotStore) RemoveBlocklistEntry(ctx context.Context, ip string) error {
	res := s.db.WithContext(ctx).Where("ip = ?", ip).Delete(&models.BlocklistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBlocklistEntryNotFound
	}
	return nil
}

// ListBlocklist returns all entries, newest first.
func (s *HoneypotStore) ListBlocklist(ctx context.Context) ([]models.BlocklistEntry, error) {
	var res []models.BlocklistEntry
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// RecentLogs returns up to limit records, newest first.
func (s *HoneypotStore) RecentLogs(ctx context.Context, limit int) ([]models.LogRecord, error) {
	var res []models.LogRecord
	q := s.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// LogsSince returns records at or after since (all records when nil), newest first.
func (s *HoneypotStore) LogsSince(ctx context.Context, since *time.Time) ([]models.LogRecord, error) {
	var res []models.LogRecord
	q := s.db.WithContext(ctx).Order("id desc")
	if since != nil {
		q = q.Where("timestamp >= ?", since.UTC())
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// Stats summarises the store for the status endpoint.
type Stats struct {
	TotalLogs  int64 `json:"total_logs"`
	Anomalies  int64 `json:"anomalies"`
	BlockedIPs int64 `json:"blocked_ips"`
}

// Stats counts records and blocklist entries.
func (s *HoneypotStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.LogRecord{}).Count(&st.TotalLogs).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&models.LogRecord{}).Where("anomaly = ?", true).Count(&st.Anomalies).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&models.BlocklistEntry{}).Count(&st.BlockedIPs).Error; err != nil {
		return Stats{}, err
	}
	return st, nil
}

// LogAudit stores an operator audit entry.
func (s *HoneypotStore) LogAudit(ctx context.Context, a *models.SecurityAudit) error {
	if a == nil {
		return nil
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(a).Error
}

// ListAudits returns recent audit entries, newest first.
func (s *HoneypotStore) ListAudits(ctx context.Context, limit int) ([]models.SecurityAudit, error) {
	var res []models.SecurityAudit
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}
