package memory

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/repository/contract"
)

type storedPreset struct {
	preset    entity.Preset
	createdAt time.Time
}

// PresetRepository keeps presets in process memory. Used when no
// database is configured and as the fixture store in tests.
type PresetRepository struct {
	cache *cache.Cache
}

func NewPresetRepository() contract.PresetRepository {
	return &PresetRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *PresetRepository) Save(_ context.Context, key string, preset *entity.Preset) error {
	createdAt := time.Now()
	if x, found := r.cache.Get(key); found {
		createdAt = x.(storedPreset).createdAt
	}
	r.cache.Set(key, storedPreset{preset: preset.Clone(), createdAt: createdAt}, cache.NoExpiration)
	return nil
}

func (r *PresetRepository) Find(_ context.Context, key string) (*entity.Preset, error) {
	x, found := r.cache.Get(key)
	if !found {
		return nil, nil
	}
	p := x.(storedPreset).preset.Clone()
	return &p, nil
}

func (r *PresetRepository) FindAll(_ context.Context) ([]entity.WithKey[entity.Preset], error) {
	items := r.cache.Items()
	type row struct {
		key    string
		stored storedPreset
	}
	rows := make([]row, 0, len(items))
	for key, item := range items {
		rows = append(rows, row{key: key, stored: item.Object.(storedPreset)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].stored.createdAt.Equal(rows[j].stored.createdAt) {
			return rows[i].stored.createdAt.Before(rows[j].stored.createdAt)
		}
		return rows[i].key < rows[j].key
	})

	keyed := make([]entity.WithKey[entity.Preset], 0, len(rows))
	for _, rw := range rows {
		keyed = append(keyed, entity.WithKey[entity.Preset]{Key: rw.key, Value: rw.stored.preset.Clone()})
	}
	return keyed, nil
}

func (r *PresetRepository) Delete(_ context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}
