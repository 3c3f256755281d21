package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPresets(keys ...string) map[string]Preset {
	presets := make(map[string]Preset, len(keys))
	for _, key := range keys {
		presets[key] = Preset{
			Name: "Preset " + key,
			Parameters: ParameterValues{
				ParameterTransparency: 0.5,
				ParameterGlow:         0.7,
				ParameterSmoothness:   0.8,
			},
		}
	}
	return presets
}

func newRatingState(t *testing.T) *ExperimentState {
	t.Helper()
	exp := Experiment{
		Type:    ExperimentRating,
		Name:    "Test Experiment",
		Presets: testPresets("preset1", "preset2", "preset3"),
		Order:   []string{"preset1", "preset2", "preset3"},
	}
	now := time.Now()
	result := NewExperimentResult("Test Result", now, 1, "test note", exp)
	return NewExperimentState("experiment1", "result1", exp, result, now)
}

func newChoiceState(t *testing.T) *ExperimentState {
	t.Helper()
	exp := Experiment{
		Type:    ExperimentChoice,
		Name:    "Choice Experiment",
		Presets: testPresets("p1", "p2"),
		Choices: []Choice{{A: "p1", B: "p2"}, {A: "p2", B: "p1"}},
	}
	now := time.Now()
	result := NewExperimentResult("Choice Result", now, 2, "", exp)
	return NewExperimentState("experiment2", "result2", exp, result, now)
}

func TestCurrentPresetKey(t *testing.T) {
	state := newRatingState(t)

	key, err := state.CurrentPresetKey()
	require.NoError(t, err)
	assert.Equal(t, "preset1", key)

	state.CurrentIndex = 1
	key, err = state.CurrentPresetKey()
	require.NoError(t, err)
	assert.Equal(t, "preset2", key)

	state.CurrentIndex = 2
	key, err = state.CurrentPresetKey()
	require.NoError(t, err)
	assert.Equal(t, "preset3", key)

	state.CurrentIndex = 3
	_, err = state.CurrentPresetKey()
	assert.ErrorIs(t, err, ErrExperimentDone)
}

func TestCurrentPresetValue(t *testing.T) {
	state := newRatingState(t)

	preset, err := state.CurrentPresetValue()
	require.NoError(t, err)
	assert.Equal(t, "Preset preset1", preset.Name)

	state.CurrentIndex = 1
	preset, err = state.CurrentPresetValue()
	require.NoError(t, err)
	assert.Equal(t, "Preset preset2", preset.Name)
}

func TestIsDone(t *testing.T) {
	state := newRatingState(t)

	assert.False(t, state.IsDone())
	state.CurrentIndex = 2
	assert.False(t, state.IsDone())
	state.CurrentIndex = 3
	assert.True(t, state.IsDone())
}

func TestRatingAnswerSequence(t *testing.T) {
	state := newRatingState(t)
	now := time.Now()

	done, err := state.Answer(ExperimentAnswer{Type: ExperimentRating, Value: 4}, now)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, state.CurrentIndex)
	require.Len(t, state.Result.Ratings, 1)
	assert.Equal(t, "preset1", state.Result.Ratings[0].Preset)
	assert.Equal(t, 4, state.Result.Ratings[0].Rank)
	assert.GreaterOrEqual(t, state.Result.Ratings[0].DurationMs, int64(0))

	done, err = state.Answer(ExperimentAnswer{Type: ExperimentRating, Value: 3}, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, state.Result.Ratings, 2)
	assert.Equal(t, "preset2", state.Result.Ratings[1].Preset)
	assert.Equal(t, int64(1000), state.Result.Ratings[1].DurationMs)

	done, err = state.Answer(ExperimentAnswer{Type: ExperimentRating, Value: 5}, now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 3, state.CurrentIndex)
	require.Len(t, state.Result.Ratings, 3)
	assert.Equal(t, "preset3", state.Result.Ratings[2].Preset)

	// Answering past the end records nothing.
	done, err = state.Answer(ExperimentAnswer{Type: ExperimentRating, Value: 2}, now.Add(3*time.Second))
	assert.ErrorIs(t, err, ErrExperimentDone)
	assert.True(t, done)
	assert.Equal(t, 3, state.CurrentIndex)
	assert.Len(t, state.Result.Ratings, 3)
}

func TestChoiceSwapTogglesWithoutAdvancing(t *testing.T) {
	state := newChoiceState(t)

	assert.Equal(t, CurrentPresetA, state.CurrentPreset)
	require.NoError(t, state.Swap())
	assert.Equal(t, CurrentPresetB, state.CurrentPreset)
	require.NoError(t, state.Swap())
	assert.Equal(t, CurrentPresetA, state.CurrentPreset)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Result.Choices)
}

func TestChoiceAnswerRecordsShownSlot(t *testing.T) {
	state := newChoiceState(t)
	now := time.Now()

	// One swap from the initial "A": the B slot of the first pair is shown.
	require.NoError(t, state.Swap())
	done, err := state.Answer(ExperimentAnswer{Type: ExperimentChoice}, now)
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, state.Result.Choices, 1)
	assert.Equal(t, "p1", state.Result.Choices[0].A)
	assert.Equal(t, "p2", state.Result.Choices[0].B)
	assert.Equal(t, "p2", state.Result.Choices[0].Selected)

	// The slot resets to A for the next pair.
	assert.Equal(t, CurrentPresetA, state.CurrentPreset)
	done, err = state.Answer(ExperimentAnswer{Type: ExperimentChoice}, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "p2", state.Result.Choices[1].Selected)
}

func TestSwapRejectedForRating(t *testing.T) {
	state := newRatingState(t)
	assert.ErrorIs(t, state.Swap(), ErrNotChoiceExperiment)
}

func TestAnswerTypeMismatch(t *testing.T) {
	state := newRatingState(t)

	_, err := state.Answer(ExperimentAnswer{Type: ExperimentChoice}, time.Now())
	assert.ErrorIs(t, err, ErrAnswerMismatch)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Result.Ratings)
}

func TestAnswerDurationNeverNegative(t *testing.T) {
	state := newRatingState(t)
	// Answer timestamp earlier than the prompt timestamp: clock skew floors
	// the duration at zero rather than rejecting the answer.
	_, err := state.Answer(ExperimentAnswer{Type: ExperimentRating, Value: 1}, state.PromptShownAt.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.Result.Ratings[0].DurationMs)
}

func TestCloneIsDeep(t *testing.T) {
	state := newChoiceState(t)
	clone := state.Clone()

	require.NoError(t, clone.Swap())
	_, err := clone.Answer(ExperimentAnswer{Type: ExperimentChoice}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, CurrentPresetA, state.CurrentPreset)
	assert.Empty(t, state.Result.Choices)
}
