package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SecurityAudit records operator actions against the honeypot (blocks,
// unblocks, decoy regeneration, report exports).
type SecurityAudit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID to new audit entries.
func (a *SecurityAudit) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}
