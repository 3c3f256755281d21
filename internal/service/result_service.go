package service

import (
	"context"

	"neuroviz-server/internal/apperror"
	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/repository/contract"
)

type IResultService interface {
	List(ctx context.Context) ([]dto.ResultResponse, error)
	Delete(ctx context.Context, experimentKey, key string) error
}

type resultService struct {
	results contract.ResultRepository
	logger  logger.ILogger
}

func NewResultService(results contract.ResultRepository, log logger.ILogger) IResultService {
	return &resultService{
		results: results,
		logger:  log,
	}
}

func (s *resultService) List(ctx context.Context) ([]dto.ResultResponse, error) {
	keyed, err := s.results.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list results", err)
	}
	out := make([]dto.ResultResponse, 0, len(keyed))
	for _, kr := range keyed {
		out = append(out, dto.ResultResponse{
			Key:           kr.Key,
			ExperimentKey: kr.Value.ExperimentKey,
			Result:        kr.Value.Result,
		})
	}
	return out, nil
}

func (s *resultService) Delete(ctx context.Context, experimentKey, key string) error {
	existing, err := s.results.Find(ctx, key)
	if err != nil {
		return apperror.Internal("failed to load result", err)
	}
	if existing == nil || existing.ExperimentKey != experimentKey {
		return apperror.NotFound("result", key)
	}
	if err := s.results.Delete(ctx, experimentKey, key); err != nil {
		return apperror.Internal("failed to delete result", err)
	}
	s.logger.Info("result", "result deleted", map[string]interface{}{
		"experiment_key": experimentKey,
		"key":            key,
	})
	return nil
}
