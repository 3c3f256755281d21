package service

import (
	"context"

	"github.com/google/uuid"

	"neuroviz-server/internal/apperror"
	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/repository/contract"
)

type IExperimentService interface {
	Create(ctx context.Context, req *dto.CreateExperimentRequest) (*dto.ExperimentResponse, error)
	List(ctx context.Context) ([]dto.ExperimentResponse, error)
	Find(ctx context.Context, key string) (*entity.Experiment, error)
	Delete(ctx context.Context, key string) error
}

type experimentService struct {
	experiments contract.ExperimentRepository
	presets     contract.PresetRepository
	logger      logger.ILogger
}

func NewExperimentService(
	experiments contract.ExperimentRepository,
	presets contract.PresetRepository,
	log logger.ILogger,
) IExperimentService {
	return &experimentService{
		experiments: experiments,
		presets:     presets,
		logger:      log,
	}
}

// Create builds an immutable experiment from the selected presets. For
// choice experiments the comparison list is the full directional cross
// product: slots "a" and "b" are distinguishable positions, so (p1,p2)
// and (p2,p1) are separate prompts.
func (s *experimentService) Create(ctx context.Context, req *dto.CreateExperimentRequest) (*dto.ExperimentResponse, error) {
	seen := make(map[string]bool, len(req.PresetKeys))
	for _, key := range req.PresetKeys {
		if seen[key] {
			return nil, apperror.Validation("preset %q selected twice", key)
		}
		seen[key] = true
	}
	if len(req.PresetKeys) < 2 {
		return nil, apperror.Validation("an experiment needs at least two presets")
	}

	snapshot := make(map[string]entity.Preset, len(req.PresetKeys))
	for _, key := range req.PresetKeys {
		preset, err := s.presets.Find(ctx, key)
		if err != nil {
			return nil, apperror.Internal("failed to load preset", err)
		}
		if preset == nil {
			return nil, apperror.NotFound("preset", key)
		}
		snapshot[key] = *preset
	}

	exp := entity.Experiment{
		Type:    req.Type,
		Name:    req.Name,
		Presets: snapshot,
	}
	switch req.Type {
	case entity.ExperimentChoice:
		exp.Choices = crossProduct(req.PresetKeys)
	case entity.ExperimentRating:
		exp.Order = append([]string(nil), req.PresetKeys...)
	default:
		return nil, apperror.Validation("unknown experiment type %q", req.Type)
	}

	if err := exp.Validate(); err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	key := uuid.NewString()
	if err := s.experiments.Save(ctx, key, &exp); err != nil {
		return nil, apperror.Internal("failed to save experiment", err)
	}

	s.logger.Info("experiment", "experiment created", map[string]interface{}{
		"key":     key,
		"name":    req.Name,
		"type":    string(req.Type),
		"presets": len(req.PresetKeys),
		"prompts": exp.Length(),
	})
	return &dto.ExperimentResponse{Key: key, Experiment: exp}, nil
}

// crossProduct yields every ordered pair of distinct keys, n*(n-1) in
// total, in selection order.
func crossProduct(keys []string) []entity.Choice {
	choices := make([]entity.Choice, 0, len(keys)*(len(keys)-1))
	for _, a := range keys {
		for _, b := range keys {
			if a == b {
				continue
			}
			choices = append(choices, entity.Choice{A: a, B: b})
		}
	}
	return choices
}

func (s *experimentService) List(ctx context.Context) ([]dto.ExperimentResponse, error) {
	keyed, err := s.experiments.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list experiments", err)
	}
	out := make([]dto.ExperimentResponse, 0, len(keyed))
	for _, ke := range keyed {
		out = append(out, dto.ExperimentResponse{Key: ke.Key, Experiment: ke.Value})
	}
	return out, nil
}

func (s *experimentService) Find(ctx context.Context, key string) (*entity.Experiment, error) {
	exp, err := s.experiments.Find(ctx, key)
	if err != nil {
		return nil, apperror.Internal("failed to load experiment", err)
	}
	if exp == nil {
		return nil, apperror.NotFound("experiment", key)
	}
	return exp, nil
}

func (s *experimentService) Delete(ctx context.Context, key string) error {
	exp, err := s.experiments.Find(ctx, key)
	if err != nil {
		return apperror.Internal("failed to load experiment", err)
	}
	if exp == nil {
		return apperror.NotFound("experiment", key)
	}
	if err := s.experiments.Delete(ctx, key); err != nil {
		return apperror.Internal("failed to delete experiment", err)
	}
	return nil
}
