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

type ResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResultMapper
}

func NewResultRepository(db *gorm.DB) contract.ResultRepository {
	return &ResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewResultMapper(),
	}
}

func (r *ResultRepositoryImpl) Save(ctx context.Context, experimentKey, resultKey string, result *entity.ExperimentResult) error {
	m, err := r.mapper.ToModel(experimentKey, resultKey, result)
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

func (r *ResultRepositoryImpl) Find(ctx context.Context, resultKey string) (*entity.ResultWithExperiment, error) {
	var m model.ExperimentResult
	err := r.db.WithContext(ctx).First(&m, "key = ?", resultKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ResultRepositoryImpl) FindAll(ctx context.Context) ([]entity.WithKey[entity.ResultWithExperiment], error) {
	var models []*model.ExperimentResult
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToKeyed(models)
}

func (r *ResultRepositoryImpl) Delete(ctx context.Context, experimentKey, resultKey string) error {
	return r.db.WithContext(ctx).
		Delete(&model.ExperimentResult{}, "key = ? AND experiment_key = ?", resultKey, experimentKey).Error
}
