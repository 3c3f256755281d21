package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroviz-server/internal/apperror"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/repository/contract"
)

// StateSink receives every committed AppState. The session calls it while
// holding its lock, so the snapshot order seen by the sink is exactly the
// transition order; implementations must not block.
type StateSink interface {
	PublishState(state entity.AppState)
}

// ResultListener is notified when a finished run's result has been
// persisted for the last time.
type ResultListener interface {
	ResultSaved(experimentKey, resultKey string)
}

// Manager owns the one AppState of the control session. Every transition
// goes through its mutex; all reads get clones.
type Manager struct {
	mu    sync.Mutex
	state entity.AppState

	results  contract.ResultRepository
	sink     StateSink
	listener ResultListener
	log      logger.ILogger

	// blankingDelay is the blank interval between experiment prompts.
	blankingDelay time.Duration

	// runSeq invalidates pending blanking timers when the run they were
	// scheduled for is no longer current.
	runSeq uint64

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

type Option func(*Manager)

func WithBlankingDelay(d time.Duration) Option {
	return func(m *Manager) { m.blankingDelay = d }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithShuffle replaces the preset-order shuffle, for tests.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(m *Manager) { m.shuffle = shuffle }
}

func WithResultListener(l ResultListener) Option {
	return func(m *Manager) { m.listener = l }
}

func NewManager(results contract.ResultRepository, sink StateSink, log logger.ILogger, opts ...Option) *Manager {
	m := &Manager{
		state:         entity.Idle(),
		results:       results,
		sink:          sink,
		log:           log,
		blankingDelay: time.Second,
		now:           time.Now,
		shuffle:       rand.Shuffle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a snapshot of the session state.
func (m *Manager) Current() entity.AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// commitLocked replaces the state and pushes the snapshot to subscribers
// before the command returns to its caller.
func (m *Manager) commitLocked(state entity.AppState) {
	m.state = state
	if m.sink != nil {
		m.sink.PublishState(state.Clone())
	}
}

// SetIdleMode transitions to Idle from any state. A running experiment is
// abandoned; its already-recorded rows stay persisted.
func (m *Manager) SetIdleMode() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind == entity.StateExperiment {
		m.runSeq++
		m.log.Info("session", "experiment abandoned", map[string]interface{}{
			"experiment_key": m.state.Experiment.ExperimentKey,
			"result_key":     m.state.Experiment.ResultKey,
		})
	}
	m.commitLocked(entity.Idle())
}

// SetLiveMode enters Live with the given values, clamped to parameter
// bounds. Nil values start from the defaults.
func (m *Manager) SetLiveMode(values entity.ParameterValues) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind == entity.StateExperiment {
		return apperror.InvalidTransition("cannot enter live mode while an experiment is running")
	}
	if values == nil {
		values = entity.DefaultParameterValues()
	}
	m.commitLocked(entity.Live(values.Clamp()))
	return nil
}

// SetLiveParameters replaces the live parameter values.
func (m *Manager) SetLiveParameters(values entity.ParameterValues) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state.Kind {
	case entity.StateLive:
	case entity.StateExperiment:
		return apperror.InvalidTransition("cannot set live parameters while an experiment is running")
	default:
		return apperror.InvalidTransition("cannot set live parameters while idle")
	}
	m.commitLocked(entity.Live(values.Clamp()))
	return nil
}

// StartRequest carries the operator's choices for one experiment run.
type StartRequest struct {
	ExperimentKey string
	ResultName    string
	ObserverID    int
	Note          string
	Randomize     bool
}

// StartExperiment begins a run of the given experiment. The prompt order
// is shuffled once here when requested; resuming never re-shuffles.
func (m *Manager) StartExperiment(ctx context.Context, exp entity.Experiment, req StartRequest) (entity.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind == entity.StateExperiment {
		return entity.AppState{}, apperror.InvalidTransition("an experiment is already running")
	}

	run := exp.Clone()
	if req.Randomize {
		switch run.Type {
		case entity.ExperimentChoice:
			m.shuffle(len(run.Choices), func(i, j int) {
				run.Choices[i], run.Choices[j] = run.Choices[j], run.Choices[i]
			})
		case entity.ExperimentRating:
			m.shuffle(len(run.Order), func(i, j int) {
				run.Order[i], run.Order[j] = run.Order[j], run.Order[i]
			})
		}
	}

	now := m.now()
	result := entity.NewExperimentResult(req.ResultName, now, req.ObserverID, req.Note, run)
	resultKey := uuid.NewString()
	state := entity.NewExperimentState(req.ExperimentKey, resultKey, run, result, now)

	// Persist the empty result up front so an abandoned run is visible.
	if err := m.results.Save(ctx, req.ExperimentKey, resultKey, &state.Result); err != nil {
		return entity.AppState{}, apperror.Internal("failed to persist experiment result", err)
	}

	m.runSeq++
	m.commitLocked(entity.InExperiment(state))
	m.log.Info("session", "experiment started", map[string]interface{}{
		"experiment_key": req.ExperimentKey,
		"result_key":     resultKey,
		"observer_id":    req.ObserverID,
		"randomize":      req.Randomize,
	})
	return m.state.Clone(), nil
}

// SwapPreset toggles the shown slot of the current choice comparison.
func (m *Manager) SwapPreset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind != entity.StateExperiment {
		return apperror.InvalidTransition("no experiment is running")
	}
	if m.state.Experiment.IsIdle {
		return apperror.InvalidTransition("cannot swap during the inter-prompt blank")
	}

	next := m.state.Clone()
	if err := next.Experiment.Swap(); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	m.commitLocked(next)
	return nil
}

// AnswerExperiment records one answer. The updated result is persisted
// before the new state is committed: a failed write leaves the session
// exactly where it was. Returns true when the run completed.
func (m *Manager) AnswerExperiment(ctx context.Context, answer entity.ExperimentAnswer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind != entity.StateExperiment {
		return false, apperror.InvalidTransition("no experiment is running")
	}
	if m.state.Experiment.IsIdle {
		return false, apperror.InvalidTransition("cannot answer during the inter-prompt blank")
	}

	next := m.state.Clone()
	done, err := next.Experiment.Answer(answer, m.now())
	if err != nil {
		return false, apperror.Validation("%s", err.Error())
	}

	run := next.Experiment
	if err := m.results.Save(ctx, run.ExperimentKey, run.ResultKey, &run.Result); err != nil {
		return false, apperror.Internal("failed to persist experiment result", err)
	}

	if done {
		m.runSeq++
		m.commitLocked(entity.Idle())
		m.log.Info("session", "experiment finished", map[string]interface{}{
			"experiment_key": run.ExperimentKey,
			"result_key":     run.ResultKey,
		})
		if m.listener != nil {
			m.listener.ResultSaved(run.ExperimentKey, run.ResultKey)
		}
		return true, nil
	}

	if m.blankingDelay > 0 {
		run.IsIdle = true
		seq := m.runSeq
		index := run.CurrentIndex
		time.AfterFunc(m.blankingDelay, func() { m.clearBlank(seq, index) })
	}
	m.commitLocked(next)
	return false, nil
}

// clearBlank ends the inter-prompt blank scheduled by AnswerExperiment.
// The prompt timer restarts here: the observer only starts seeing the
// next prompt when the blank lifts.
func (m *Manager) clearBlank(seq uint64, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runSeq != seq || m.state.Kind != entity.StateExperiment {
		return
	}
	run := m.state.Experiment
	if !run.IsIdle || run.CurrentIndex != index {
		return
	}

	next := m.state.Clone()
	next.Experiment.IsIdle = false
	next.Experiment.PromptShownAt = m.now()
	m.commitLocked(next)
}

// ExitExperiment abandons the run and returns to Idle. Rows recorded so
// far are already persisted.
func (m *Manager) ExitExperiment() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind != entity.StateExperiment {
		return apperror.InvalidTransition("no experiment is running")
	}
	m.runSeq++
	m.log.Info("session", "experiment exited", map[string]interface{}{
		"experiment_key": m.state.Experiment.ExperimentKey,
		"result_key":     m.state.Experiment.ResultKey,
	})
	m.commitLocked(entity.Idle())
	return nil
}
