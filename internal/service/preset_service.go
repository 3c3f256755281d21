package service

import (
	"context"

	"github.com/google/uuid"

	"neuroviz-server/internal/apperror"
	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/repository/contract"
	"neuroviz-server/internal/session"
)

type IPresetService interface {
	Create(ctx context.Context, req *dto.CreatePresetRequest) (*dto.PresetResponse, error)
	List(ctx context.Context) ([]dto.PresetResponse, error)
	Delete(ctx context.Context, key string) error
}

type presetService struct {
	presets     contract.PresetRepository
	experiments contract.ExperimentRepository
	session     *session.Manager
	logger      logger.ILogger
}

func NewPresetService(
	presets contract.PresetRepository,
	experiments contract.ExperimentRepository,
	sessionManager *session.Manager,
	log logger.ILogger,
) IPresetService {
	return &presetService{
		presets:     presets,
		experiments: experiments,
		session:     sessionManager,
		logger:      log,
	}
}

// Create snapshots the current Live parameter values under a new key.
func (s *presetService) Create(ctx context.Context, req *dto.CreatePresetRequest) (*dto.PresetResponse, error) {
	state := s.session.Current()
	if state.Kind != entity.StateLive {
		return nil, apperror.InvalidTransition("presets are captured from live mode")
	}

	preset := entity.Preset{
		Name:       req.Name,
		Parameters: state.Parameters.Clone(),
	}
	key := uuid.NewString()
	if err := s.presets.Save(ctx, key, &preset); err != nil {
		return nil, apperror.Internal("failed to save preset", err)
	}

	s.logger.Info("preset", "preset created", map[string]interface{}{"key": key, "name": req.Name})
	res := dto.NewPresetResponse(key, preset)
	return &res, nil
}

func (s *presetService) List(ctx context.Context) ([]dto.PresetResponse, error) {
	keyed, err := s.presets.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list presets", err)
	}
	out := make([]dto.PresetResponse, 0, len(keyed))
	for _, kp := range keyed {
		out = append(out, dto.NewPresetResponse(kp.Key, kp.Value))
	}
	return out, nil
}

// Delete removes a preset. Experiments referencing it keep their own
// snapshot, so the reference going dangling is reported, not fatal.
func (s *presetService) Delete(ctx context.Context, key string) error {
	preset, err := s.presets.Find(ctx, key)
	if err != nil {
		return apperror.Internal("failed to load preset", err)
	}
	if preset == nil {
		return apperror.NotFound("preset", key)
	}

	if refs, err := s.referencingExperiments(ctx, key); err == nil && len(refs) > 0 {
		s.logger.Warn("preset", "deleting preset still referenced by experiments", map[string]interface{}{
			"key":         key,
			"experiments": refs,
		})
	}

	if err := s.presets.Delete(ctx, key); err != nil {
		return apperror.Internal("failed to delete preset", err)
	}
	return nil
}

func (s *presetService) referencingExperiments(ctx context.Context, presetKey string) ([]string, error) {
	keyed, err := s.experiments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, ke := range keyed {
		if _, ok := ke.Value.Presets[presetKey]; ok {
			refs = append(refs, ke.Key)
		}
	}
	return refs, nil
}
