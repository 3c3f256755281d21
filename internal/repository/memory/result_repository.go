package memory

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/repository/contract"
)

type storedResult struct {
	experimentKey string
	result        entity.ExperimentResult
	createdAt     time.Time
}

type ResultRepository struct {
	cache *cache.Cache
}

func NewResultRepository() contract.ResultRepository {
	return &ResultRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *ResultRepository) Save(_ context.Context, experimentKey, resultKey string, result *entity.ExperimentResult) error {
	createdAt := time.Now()
	if x, found := r.cache.Get(resultKey); found {
		createdAt = x.(storedResult).createdAt
	}
	r.cache.Set(resultKey, storedResult{
		experimentKey: experimentKey,
		result:        result.Clone(),
		createdAt:     createdAt,
	}, cache.NoExpiration)
	return nil
}

func (r *ResultRepository) Find(_ context.Context, resultKey string) (*entity.ResultWithExperiment, error) {
	x, found := r.cache.Get(resultKey)
	if !found {
		return nil, nil
	}
	stored := x.(storedResult)
	return &entity.ResultWithExperiment{
		ExperimentKey: stored.experimentKey,
		Result:        stored.result.Clone(),
	}, nil
}

func (r *ResultRepository) FindAll(_ context.Context) ([]entity.WithKey[entity.ResultWithExperiment], error) {
	items := r.cache.Items()
	type row struct {
		key    string
		stored storedResult
	}
	rows := make([]row, 0, len(items))
	for key, item := range items {
		rows = append(rows, row{key: key, stored: item.Object.(storedResult)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].stored.createdAt.Equal(rows[j].stored.createdAt) {
			return rows[i].stored.createdAt.Before(rows[j].stored.createdAt)
		}
		return rows[i].key < rows[j].key
	})

	keyed := make([]entity.WithKey[entity.ResultWithExperiment], 0, len(rows))
	for _, rw := range rows {
		keyed = append(keyed, entity.WithKey[entity.ResultWithExperiment]{
			Key: rw.key,
			Value: entity.ResultWithExperiment{
				ExperimentKey: rw.stored.experimentKey,
				Result:        rw.stored.result.Clone(),
			},
		})
	}
	return keyed, nil
}

func (r *ResultRepository) Delete(_ context.Context, experimentKey, resultKey string) error {
	x, found := r.cache.Get(resultKey)
	if !found {
		return nil
	}
	if x.(storedResult).experimentKey != experimentKey {
		return nil
	}
	r.cache.Delete(resultKey)
	return nil
}
