package model

import "time"

// Character represents a player's character row. The runtime record the
// game systems mutate is built from this by the session layer and
// written back on save.
type Character struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64     `gorm:"index:idx_account;not null" json:"account_id"`
	Name      string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Job       string    `gorm:"size:32" json:"job"`
	Level     int       `gorm:"default:1" json:"level"`
	HP        int       `gorm:"not null" json:"hp"`
	MaxHP     int       `gorm:"not null" json:"max_hp"`
	MP        int       `gorm:"not null" json:"mp"`
	MaxMP     int       `gorm:"not null" json:"max_mp"`
	Attack    int       `gorm:"default:10" json:"attack"`
	Defense   int       `gorm:"default:5" json:"defense"`
	Speed     int       `gorm:"default:10" json:"speed"`
	Accuracy  int       `gorm:"default:95" json:"accuracy"`
	Evasion   int       `gorm:"default:5" json:"evasion"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
