package models

import "time"

// BlocklistEntry denies a source identifier all further service. Entries
// never expire; they are removed only by an operator.
type BlocklistEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	IP        string    `json:"ip" gorm:"size:64;uniqueIndex"`
	Reason    string    `json:"reason" gorm:"size:256;default:'manual'"`
	CreatedAt time.Time `json:"timestamp"`
}

// TableName keeps the table name stable across model renames.
func (BlocklistEntry) TableName() string { return "blocklist" }
