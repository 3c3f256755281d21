package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/model"
)

type PresetMapper struct{}

func NewPresetMapper() *PresetMapper {
	return &PresetMapper{}
}

func (m *PresetMapper) ToModel(key string, p *entity.Preset) (*model.Preset, error) {
	if p == nil {
		return nil, nil
	}
	params, err := json.Marshal(p.Parameters)
	if err != nil {
		return nil, err
	}
	return &model.Preset{
		Key:        key,
		Name:       p.Name,
		Parameters: datatypes.JSON(params),
	}, nil
}

func (m *PresetMapper) ToEntity(p *model.Preset) (*entity.Preset, error) {
	if p == nil {
		return nil, nil
	}
	var params entity.ParameterValues
	if err := json.Unmarshal(p.Parameters, &params); err != nil {
		return nil, err
	}
	return &entity.Preset{
		Name:       p.Name,
		Parameters: params,
	}, nil
}

func (m *PresetMapper) ToKeyed(models []*model.Preset) ([]entity.WithKey[entity.Preset], error) {
	keyed := make([]entity.WithKey[entity.Preset], 0, len(models))
	for _, p := range models {
		e, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, entity.WithKey[entity.Preset]{Key: p.Key, Value: *e})
	}
	return keyed, nil
}
