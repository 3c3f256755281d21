package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/model"
)

type ExperimentMapper struct{}

func NewExperimentMapper() *ExperimentMapper {
	return &ExperimentMapper{}
}

func (m *ExperimentMapper) ToModel(key string, e *entity.Experiment) (*model.Experiment, error) {
	if e == nil {
		return nil, nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &model.Experiment{
		Key:     key,
		Type:    string(e.Type),
		Name:    e.Name,
		Payload: datatypes.JSON(payload),
	}, nil
}

func (m *ExperimentMapper) ToEntity(e *model.Experiment) (*entity.Experiment, error) {
	if e == nil {
		return nil, nil
	}
	var exp entity.Experiment
	if err := json.Unmarshal(e.Payload, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (m *ExperimentMapper) ToKeyed(models []*model.Experiment) ([]entity.WithKey[entity.Experiment], error) {
	keyed := make([]entity.WithKey[entity.Experiment], 0, len(models))
	for _, e := range models {
		exp, err := m.ToEntity(e)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, entity.WithKey[entity.Experiment]{Key: e.Key, Value: *exp})
	}
	return keyed, nil
}
