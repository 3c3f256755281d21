package dto

import "neuroviz-server/internal/entity"

// CreateExperimentRequest selects presets by key; the service snapshots
// the referenced presets into the experiment so later preset edits do
// not change an already-created experiment.
type CreateExperimentRequest struct {
	Type       entity.ExperimentType `json:"experiment_type" validate:"required,oneof=choice rating"`
	Name       string                `json:"name" validate:"required"`
	PresetKeys []string              `json:"preset_keys" validate:"required,min=2"`
}

type ExperimentResponse struct {
	Key        string            `json:"key"`
	Experiment entity.Experiment `json:"experiment"`
}

type StartExperimentRequest struct {
	ExperimentKey string `json:"experiment_key" validate:"required"`
	ResultName    string `json:"result_name" validate:"required"`
	ObserverID    int    `json:"observer_id"`
	Note          string `json:"note"`
	Randomize     bool   `json:"randomize"`
}
