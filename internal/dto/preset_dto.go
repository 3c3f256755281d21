package dto

import "neuroviz-server/internal/entity"

type CreatePresetRequest struct {
	Name string `json:"name" validate:"required"`
}

type PresetResponse struct {
	Key        string                 `json:"key"`
	Name       string                 `json:"name"`
	Parameters entity.ParameterValues `json:"parameters"`
}

func NewPresetResponse(key string, preset entity.Preset) PresetResponse {
	return PresetResponse{
		Key:        key,
		Name:       preset.Name,
		Parameters: preset.Parameters,
	}
}
