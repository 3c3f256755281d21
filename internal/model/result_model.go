package model

import (
	"time"

	"gorm.io/datatypes"
)

// ExperimentResult rows are upserted after every answer, so a run that
// is abandoned midway still leaves its partial outcomes behind.
type ExperimentResult struct {
	Key           string         `gorm:"type:varchar(64);primaryKey"`
	ExperimentKey string         `gorm:"type:varchar(64);not null;index"`
	Type          string         `gorm:"type:varchar(16);not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (ExperimentResult) TableName() string {
	return "experiment_results"
}
