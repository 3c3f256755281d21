package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/model"
)

type ResultMapper struct{}

func NewResultMapper() *ResultMapper {
	return &ResultMapper{}
}

func (m *ResultMapper) ToModel(experimentKey, resultKey string, r *entity.ExperimentResult) (*model.ExperimentResult, error) {
	if r == nil {
		return nil, nil
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &model.ExperimentResult{
		Key:           resultKey,
		ExperimentKey: experimentKey,
		Type:          string(r.Type),
		Payload:       datatypes.JSON(payload),
	}, nil
}

func (m *ResultMapper) ToEntity(r *model.ExperimentResult) (*entity.ResultWithExperiment, error) {
	if r == nil {
		return nil, nil
	}
	var result entity.ExperimentResult
	if err := json.Unmarshal(r.Payload, &result); err != nil {
		return nil, err
	}
	return &entity.ResultWithExperiment{
		ExperimentKey: r.ExperimentKey,
		Result:        result,
	}, nil
}

func (m *ResultMapper) ToKeyed(models []*model.ExperimentResult) ([]entity.WithKey[entity.ResultWithExperiment], error) {
	keyed := make([]entity.WithKey[entity.ResultWithExperiment], 0, len(models))
	for _, r := range models {
		res, err := m.ToEntity(r)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, entity.WithKey[entity.ResultWithExperiment]{Key: r.Key, Value: *res})
	}
	return keyed, nil
}
