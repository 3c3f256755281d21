package contract

import (
	"context"

	"neuroviz-server/internal/entity"
)

// ResultRepository stores experiment outcomes. Save is an upsert: the
// session writes the same result key after every answer so partial runs
// survive an abandoned experiment.
type ResultRepository interface {
	Save(ctx context.Context, experimentKey, resultKey string, result *entity.ExperimentResult) error
	Find(ctx context.Context, resultKey string) (*entity.ResultWithExperiment, error)
	FindAll(ctx context.Context) ([]entity.WithKey[entity.ResultWithExperiment], error)
	Delete(ctx context.Context, experimentKey, resultKey string) error
}
