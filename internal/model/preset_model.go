package model

import (
	"time"

	"gorm.io/datatypes"
)

type Preset struct {
	Key        string         `gorm:"type:varchar(64);primaryKey"`
	Name       string         `gorm:"type:varchar(255);not null"`
	Parameters datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (Preset) TableName() string {
	return "presets"
}
