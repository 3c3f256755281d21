package dto

import "neuroviz-server/internal/entity"

type SetLiveModeRequest struct {
	Parameters entity.ParameterValues `json:"parameters"`
}

type SetLiveParametersRequest struct {
	Parameters entity.ParameterValues `json:"parameters" validate:"required"`
}

type AnswerResponse struct {
	Done bool `json:"done"`
}

type ResultResponse struct {
	Key           string                  `json:"key"`
	ExperimentKey string                  `json:"experiment_key"`
	Result        entity.ExperimentResult `json:"result"`
}

type ParameterCatalogResponse struct {
	Parameters []entity.Parameter     `json:"parameters"`
	Defaults   entity.ParameterValues `json:"defaults"`
}
