package model

import (
	"time"

	"gorm.io/datatypes"
)

// SaveGame stores one character's inventory and equipment snapshots.
// The JSON payloads hold item ids and quantities only; full item data
// is re-resolved through the catalog on load.
type SaveGame struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64          `gorm:"uniqueIndex;not null" json:"char_id"`
	Version   string         `gorm:"size:16" json:"version"`
	Inventory datatypes.JSON `json:"inventory"`
	Equipment datatypes.JSON `json:"equipment"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
