package memory

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/repository/contract"
)

type storedExperiment struct {
	experiment entity.Experiment
	createdAt  time.Time
}

type ExperimentRepository struct {
	cache *cache.Cache
}

func NewExperimentRepository() contract.ExperimentRepository {
	return &ExperimentRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *ExperimentRepository) Save(_ context.Context, key string, experiment *entity.Experiment) error {
	createdAt := time.Now()
	if x, found := r.cache.Get(key); found {
		createdAt = x.(storedExperiment).createdAt
	}
	r.cache.Set(key, storedExperiment{experiment: experiment.Clone(), createdAt: createdAt}, cache.NoExpiration)
	return nil
}

func (r *ExperimentRepository) Find(_ context.Context, key string) (*entity.Experiment, error) {
	x, found := r.cache.Get(key)
	if !found {
		return nil, nil
	}
	exp := x.(storedExperiment).experiment.Clone()
	return &exp, nil
}

func (r *ExperimentRepository) FindAll(_ context.Context) ([]entity.WithKey[entity.Experiment], error) {
	items := r.cache.Items()
	type row struct {
		key    string
		stored storedExperiment
	}
	rows := make([]row, 0, len(items))
	for key, item := range items {
		rows = append(rows, row{key: key, stored: item.Object.(storedExperiment)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].stored.createdAt.Equal(rows[j].stored.createdAt) {
			return rows[i].stored.createdAt.Before(rows[j].stored.createdAt)
		}
		return rows[i].key < rows[j].key
	})

	keyed := make([]entity.WithKey[entity.Experiment], 0, len(rows))
	for _, rw := range rows {
		keyed = append(keyed, entity.WithKey[entity.Experiment]{Key: rw.key, Value: rw.stored.experiment.Clone()})
	}
	return keyed, nil
}

func (r *ExperimentRepository) Delete(_ context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}
