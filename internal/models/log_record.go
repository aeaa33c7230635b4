package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogRecord is the append-only forensic entry written for every scored
// interaction with the honeypot. Rows are never updated in place.
type LogRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UUID       string    `json:"uuid" gorm:"uniqueIndex"`
	IP         string    `json:"ip" gorm:"size:64;index:idx_logs_ip_ts,priority:1"`
	UserAgent  string    `json:"ua" gorm:"type:text"`
	Path       string    `json:"path" gorm:"size:256"`
	Method     string    `json:"method" gorm:"size:8"`
	Payload    string    `json:"payload" gorm:"type:text"`
	NumParams  int       `json:"num_params" gorm:"default:0"`
	PayloadLen int       `json:"payload_len" gorm:"default:0"`
	Timestamp  time.Time `json:"timestamp" gorm:"index:idx_logs_ip_ts,priority:2"`
	Anomaly    bool      `json:"anomaly" gorm:"default:false"`
	Profile    string    `json:"-" gorm:"type:text"` // JSON-encoded deception profile
	DecoyFile  string    `json:"decoy_file" gorm:"size:512"`
}

// TableName keeps the table name stable across model renames.
func (LogRecord) TableName() string { return "logs" }

// BeforeCreate assigns a UUID and stores the timestamp in UTC so window
// queries compare like with like.
func (l *LogRecord) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == "" {
		l.UUID = uuid.New().String()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	l.Timestamp = l.Timestamp.UTC()
	return nil
}

// DecodedProfile returns the stored deception profile, or nil when absent or unreadable.
func (l LogRecord) DecodedProfile() map[string]string {
	if l.Profile == "" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(l.Profile), &out); err != nil {
		return nil
	}
	return out
}
