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

type ExperimentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExperimentMapper
}

func NewExperimentRepository(db *gorm.DB) contract.ExperimentRepository {
	return &ExperimentRepositoryImpl{
		db:     db,
		mapper: mapper.NewExperimentMapper(),
	}
}

func (r *ExperimentRepositoryImpl) Save(ctx context.Context, key string, experiment *entity.Experiment) error {
	m, err := r.mapper.ToModel(key, experiment)
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

func (r *ExperimentRepositoryImpl) Find(ctx context.Context, key string) (*entity.Experiment, error) {
	var m model.Experiment
	err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ExperimentRepositoryImpl) FindAll(ctx context.Context) ([]entity.WithKey[entity.Experiment], error) {
	var models []*model.Experiment
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToKeyed(models)
}

func (r *ExperimentRepositoryImpl) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.Experiment{}, "key = ?", key).Error
}
