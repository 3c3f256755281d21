package service

import (
	"context"

	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/session"
)

type ISessionService interface {
	Current() entity.AppState
	SetIdleMode()
	SetLiveMode(req *dto.SetLiveModeRequest) error
	SetLiveParameters(req *dto.SetLiveParametersRequest) error
	StartExperiment(ctx context.Context, req *dto.StartExperimentRequest) (entity.AppState, error)
	AnswerExperiment(ctx context.Context, answer entity.ExperimentAnswer) (*dto.AnswerResponse, error)
	SwapPreset() error
	ExitExperiment() error
}

type sessionService struct {
	manager     *session.Manager
	experiments IExperimentService
	logger      logger.ILogger
}

func NewSessionService(manager *session.Manager, experiments IExperimentService, log logger.ILogger) ISessionService {
	return &sessionService{
		manager:     manager,
		experiments: experiments,
		logger:      log,
	}
}

func (s *sessionService) Current() entity.AppState {
	return s.manager.Current()
}

func (s *sessionService) SetIdleMode() {
	s.manager.SetIdleMode()
}

func (s *sessionService) SetLiveMode(req *dto.SetLiveModeRequest) error {
	return s.manager.SetLiveMode(req.Parameters)
}

func (s *sessionService) SetLiveParameters(req *dto.SetLiveParametersRequest) error {
	return s.manager.SetLiveParameters(req.Parameters)
}

func (s *sessionService) StartExperiment(ctx context.Context, req *dto.StartExperimentRequest) (entity.AppState, error) {
	exp, err := s.experiments.Find(ctx, req.ExperimentKey)
	if err != nil {
		return entity.AppState{}, err
	}
	return s.manager.StartExperiment(ctx, *exp, session.StartRequest{
		ExperimentKey: req.ExperimentKey,
		ResultName:    req.ResultName,
		ObserverID:    req.ObserverID,
		Note:          req.Note,
		Randomize:     req.Randomize,
	})
}

func (s *sessionService) AnswerExperiment(ctx context.Context, answer entity.ExperimentAnswer) (*dto.AnswerResponse, error) {
	done, err := s.manager.AnswerExperiment(ctx, answer)
	if err != nil {
		return nil, err
	}
	return &dto.AnswerResponse{Done: done}, nil
}

func (s *sessionService) SwapPreset() error {
	return s.manager.SwapPreset()
}

func (s *sessionService) ExitExperiment() error {
	return s.manager.ExitExperiment()
}
