package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/mapper"
	"neuroviz-server/internal/model"
	"neuroviz-server/internal/repository/contract"
)

type PresetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PresetMapper
}

func NewPresetRepository(db *gorm.DB) contract.PresetRepository {
	return &PresetRepositoryImpl{
		db:     db,
		mapper: mapper.NewPresetMapper(),
	}
}

func (r *PresetRepositoryImpl) Save(ctx context.Context, key string, preset *entity.Preset) error {
	m, err := r.mapper.ToModel(key, preset)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *PresetRepositoryImpl) Find(ctx context.Context, key string) (*entity.Preset, error) {
	var m model.Preset
	err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *PresetRepositoryImpl) FindAll(ctx context.Context) ([]entity.WithKey[entity.Preset], error) {
	var models []*model.Preset
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToKeyed(models)
}

func (r *PresetRepositoryImpl) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.Preset{}, "key = ?", key).Error
}
