package model

import (
	"time"

	"gorm.io/datatypes"
)

// Experiment stores the full definition as a jsonb payload. The two
// variants differ structurally (pair list vs ordered preset list), so a
// tagged document is a better fit than variant-specific columns.
type Experiment struct {
	Key       string         `gorm:"type:varchar(64);primaryKey"`
	Type      string         `gorm:"type:varchar(16);not null;index"`
	Name      string         `gorm:"type:varchar(255);not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (Experiment) TableName() string {
	return "experiments"
}
