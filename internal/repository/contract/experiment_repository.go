package contract

import (
	"context"

	"neuroviz-server/internal/entity"
)

type ExperimentRepository interface {
	Save(ctx context.Context, key string, experiment *entity.Experiment) error
	Find(ctx context.Context, key string) (*entity.Experiment, error)
	FindAll(ctx context.Context) ([]entity.WithKey[entity.Experiment], error)
	Delete(ctx context.Context, key string) error
}
