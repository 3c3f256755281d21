package contract

import (
	"context"

	"neuroviz-server/internal/entity"
)

type PresetRepository interface {
	Save(ctx context.Context, key string, preset *entity.Preset) error
	Find(ctx context.Context, key string) (*entity.Preset, error)
	FindAll(ctx context.Context) ([]entity.WithKey[entity.Preset], error)
	Delete(ctx context.Context, key string) error
}
