package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroviz-server/internal/apperror"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/repository/contract"
	"neuroviz-server/internal/repository/memory"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type recordingSink struct {
	mu     sync.Mutex
	states []entity.AppState
}

func (s *recordingSink) PublishState(state entity.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *recordingSink) kinds() []entity.StateKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]entity.StateKind, len(s.states))
	for i, st := range s.states {
		kinds[i] = st.Kind
	}
	return kinds
}

func (s *recordingSink) last() entity.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[len(s.states)-1]
}

type recordedSave struct {
	experimentKey string
	resultKey     string
}

type savedListener struct {
	mu    sync.Mutex
	saved []recordedSave
}

func (l *savedListener) ResultSaved(experimentKey, resultKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saved = append(l.saved, recordedSave{experimentKey, resultKey})
}

type failingResultRepo struct {
	contract.ResultRepository
	failing bool
}

func (r *failingResultRepo) Save(ctx context.Context, experimentKey, resultKey string, result *entity.ExperimentResult) error {
	if r.failing {
		return errors.New("disk full")
	}
	return r.ResultRepository.Save(ctx, experimentKey, resultKey, result)
}

func managerPresets(keys ...string) map[string]entity.Preset {
	presets := make(map[string]entity.Preset, len(keys))
	for _, key := range keys {
		presets[key] = entity.Preset{Name: "preset " + key, Parameters: entity.DefaultParameterValues()}
	}
	return presets
}

func ratingExperiment(order ...string) entity.Experiment {
	return entity.Experiment{
		Type:    entity.ExperimentRating,
		Name:    "rating study",
		Presets: managerPresets(order...),
		Order:   order,
	}
}

func choiceExperiment() entity.Experiment {
	return entity.Experiment{
		Type:    entity.ExperimentChoice,
		Name:    "choice study",
		Presets: managerPresets("p1", "p2"),
		Choices: []entity.Choice{{A: "p1", B: "p2"}, {A: "p2", B: "p1"}},
	}
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *recordingSink, contract.ResultRepository) {
	t.Helper()
	sink := &recordingSink{}
	results := memory.NewResultRepository()
	opts = append([]Option{WithBlankingDelay(0)}, opts...)
	m := NewManager(results, sink, nopLogger{}, opts...)
	return m, sink, results
}

func errorCode(t *testing.T, err error) apperror.Code {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestEveryTransitionIsPublished(t *testing.T) {
	m, sink, _ := newTestManager(t)

	require.NoError(t, m.SetLiveMode(nil))
	require.NoError(t, m.SetLiveParameters(entity.ParameterValues{entity.ParameterGlow: 0.5}))
	m.SetIdleMode()

	assert.Equal(t, []entity.StateKind{entity.StateLive, entity.StateLive, entity.StateIdle}, sink.kinds())
}

func TestSetLiveModeClampsAndDefaults(t *testing.T) {
	m, sink, _ := newTestManager(t)

	require.NoError(t, m.SetLiveMode(entity.ParameterValues{entity.ParameterGlow: 7}))
	assert.Equal(t, 1.0, sink.last().Parameters[entity.ParameterGlow])

	require.NoError(t, m.SetLiveMode(nil))
	assert.Equal(t, entity.DefaultParameterValues(), sink.last().Parameters)
}

func TestSetLiveParametersRejectedOutsideLive(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.SetLiveParameters(entity.ParameterValues{entity.ParameterGlow: 0.5})
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, err))

	_, err = m.StartExperiment(context.Background(), ratingExperiment("p1"), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)
	err = m.SetLiveParameters(entity.ParameterValues{entity.ParameterGlow: 0.5})
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, err))
	err = m.SetLiveMode(nil)
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, err))
}

func TestRatingRunRecordsInOrder(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	listener := &savedListener{}
	m, sink, results := newTestManager(t,
		WithClock(func() time.Time { return now }),
		WithResultListener(listener),
	)

	state, err := m.StartExperiment(context.Background(), ratingExperiment("p1", "p2"), StartRequest{
		ExperimentKey: "exp",
		ResultName:    "session one",
		ObserverID:    7,
	})
	require.NoError(t, err)
	require.Equal(t, entity.StateExperiment, state.Kind)
	assert.Equal(t, []string{"p1", "p2"}, state.Experiment.Experiment.Order)

	now = now.Add(2 * time.Second)
	done, err := m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 3})
	require.NoError(t, err)
	assert.False(t, done)

	now = now.Add(time.Second)
	done, err = m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 5})
	require.NoError(t, err)
	assert.True(t, done)

	assert.Equal(t, entity.StateIdle, m.Current().Kind)
	assert.Equal(t, entity.StateIdle, sink.last().Kind)

	saved, err := results.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	result := saved[0].Value.Result
	require.Len(t, result.Ratings, 2)
	assert.Equal(t, "p1", result.Ratings[0].Preset)
	assert.Equal(t, 3, result.Ratings[0].Rank)
	assert.Equal(t, int64(2000), result.Ratings[0].DurationMs)
	assert.Equal(t, "p2", result.Ratings[1].Preset)
	assert.Equal(t, 5, result.Ratings[1].Rank)
	assert.Equal(t, "session one", result.Name)
	assert.Equal(t, 7, result.ObserverID)

	listener.mu.Lock()
	defer listener.mu.Unlock()
	require.Len(t, listener.saved, 1)
	assert.Equal(t, "exp", listener.saved[0].experimentKey)
}

func TestChoiceSwapThenAnswerRecordsShownSlot(t *testing.T) {
	m, _, results := newTestManager(t)

	_, err := m.StartExperiment(context.Background(), choiceExperiment(), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)

	require.NoError(t, m.SwapPreset())
	done, err := m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentChoice})
	require.NoError(t, err)
	assert.False(t, done)

	state := m.Current()
	require.Equal(t, entity.StateExperiment, state.Kind)
	assert.Equal(t, 1, state.Experiment.CurrentIndex)
	assert.Equal(t, entity.CurrentPresetA, state.Experiment.CurrentPreset)

	saved, err := results.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	choices := saved[0].Value.Result.Choices
	require.Len(t, choices, 1)
	assert.Equal(t, "p2", choices[0].Selected)
}

func TestAnswerRejectedOutsideExperiment(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 1})
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, err))
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, m.SwapPreset()))
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, m.ExitExperiment()))
}

func TestFailedPersistLeavesStateUnchanged(t *testing.T) {
	sink := &recordingSink{}
	repo := &failingResultRepo{ResultRepository: memory.NewResultRepository()}
	m := NewManager(repo, sink, nopLogger{}, WithBlankingDelay(0))

	_, err := m.StartExperiment(context.Background(), ratingExperiment("p1", "p2"), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)
	published := len(sink.kinds())

	repo.failing = true
	_, err = m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 2})
	assert.Equal(t, apperror.CodeInternal, errorCode(t, err))

	state := m.Current()
	assert.Equal(t, 0, state.Experiment.CurrentIndex)
	assert.Empty(t, state.Experiment.Result.Ratings)
	assert.Len(t, sink.kinds(), published, "failed command must not publish")

	// Recovered storage accepts the same answer.
	repo.failing = false
	_, err = m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Current().Experiment.CurrentIndex)
}

func TestStartWhileRunningRejected(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.StartExperiment(context.Background(), ratingExperiment("p1"), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)

	_, err = m.StartExperiment(context.Background(), ratingExperiment("p1"), StartRequest{ExperimentKey: "exp"})
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, err))
}

func TestRandomizeShufflesOnceAtStart(t *testing.T) {
	reverse := func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
	m, _, _ := newTestManager(t, WithShuffle(reverse))

	state, err := m.StartExperiment(context.Background(), ratingExperiment("p1", "p2", "p3"), StartRequest{
		ExperimentKey: "exp",
		Randomize:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2", "p1"}, state.Experiment.Experiment.Order)

	// The committed order is stable across reads.
	assert.Equal(t, []string{"p3", "p2", "p1"}, m.Current().Experiment.Experiment.Order)
}

func TestExitExperimentKeepsRecordedRows(t *testing.T) {
	m, _, results := newTestManager(t)

	_, err := m.StartExperiment(context.Background(), ratingExperiment("p1", "p2"), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)
	_, err = m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 4})
	require.NoError(t, err)

	require.NoError(t, m.ExitExperiment())
	assert.Equal(t, entity.StateIdle, m.Current().Kind)

	saved, err := results.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Len(t, saved[0].Value.Result.Ratings, 1)
}

func TestBlankingSeparatesPrompts(t *testing.T) {
	m, _, _ := newTestManager(t, WithBlankingDelay(20*time.Millisecond))

	_, err := m.StartExperiment(context.Background(), ratingExperiment("p1", "p2"), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)

	done, err := m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 3})
	require.NoError(t, err)
	require.False(t, done)

	state := m.Current()
	assert.True(t, state.Experiment.IsIdle, "prompt gap should blank the display")

	// Commands are rejected while blanked.
	_, err = m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 1})
	assert.Equal(t, apperror.CodeInvalidTransition, errorCode(t, err))

	assert.Eventually(t, func() bool {
		state := m.Current()
		return state.Kind == entity.StateExperiment && !state.Experiment.IsIdle
	}, time.Second, 5*time.Millisecond)
}

func TestBlankTimerIgnoredAfterExit(t *testing.T) {
	m, _, _ := newTestManager(t, WithBlankingDelay(20*time.Millisecond))

	_, err := m.StartExperiment(context.Background(), ratingExperiment("p1", "p2"), StartRequest{ExperimentKey: "exp"})
	require.NoError(t, err)
	_, err = m.AnswerExperiment(context.Background(), entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 3})
	require.NoError(t, err)

	require.NoError(t, m.ExitExperiment())
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, entity.StateIdle, m.Current().Kind)
}
