package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CurrentPreset is the slot of a choice prompt currently shown to the
// observer.
type CurrentPreset string

const (
	CurrentPresetA CurrentPreset = "A"
	CurrentPresetB CurrentPreset = "B"
)

var (
	// ErrExperimentDone is returned when answering past the last prompt.
	ErrExperimentDone = errors.New("experiment is already finished")
	// ErrNotChoiceExperiment is returned for choice-only operations.
	ErrNotChoiceExperiment = errors.New("not a choice experiment")
	// ErrAnswerMismatch is returned when the answer variant does not match
	// the running experiment's type.
	ErrAnswerMismatch = errors.New("answer type does not match experiment type")
)

// ExperimentState is the runtime state of one experiment run. It is owned by
// the session manager; everything else works on clones.
type ExperimentState struct {
	ExperimentKey string
	ResultKey     string
	CurrentIndex  int
	IsIdle        bool
	CurrentPreset CurrentPreset // choice only
	Experiment    Experiment
	Result        ExperimentResult

	// PromptShownAt is when the current prompt became visible. Answer
	// durations are measured from it. Local bookkeeping, not wire state.
	PromptShownAt time.Time
}

// NewExperimentState starts a run at the first prompt.
func NewExperimentState(experimentKey, resultKey string, exp Experiment, result ExperimentResult, now time.Time) *ExperimentState {
	s := &ExperimentState{
		ExperimentKey: experimentKey,
		ResultKey:     resultKey,
		Experiment:    exp,
		Result:        result,
		PromptShownAt: now,
	}
	if exp.Type == ExperimentChoice {
		s.CurrentPreset = CurrentPresetA
	}
	return s
}

// IsDone reports whether every prompt has been answered.
func (s *ExperimentState) IsDone() bool {
	return s.CurrentIndex >= s.Experiment.Length()
}

// CurrentPresetKey resolves the preset key of the prompt currently shown.
func (s *ExperimentState) CurrentPresetKey() (string, error) {
	if s.IsDone() {
		return "", ErrExperimentDone
	}
	switch s.Experiment.Type {
	case ExperimentChoice:
		choice := s.Experiment.Choices[s.CurrentIndex]
		if s.CurrentPreset == CurrentPresetB {
			return choice.B, nil
		}
		return choice.A, nil
	case ExperimentRating:
		return s.Experiment.Order[s.CurrentIndex], nil
	}
	return "", fmt.Errorf("experiment state: unknown type %q", s.Experiment.Type)
}

// CurrentPresetValue resolves the preset of the prompt currently shown.
func (s *ExperimentState) CurrentPresetValue() (Preset, error) {
	key, err := s.CurrentPresetKey()
	if err != nil {
		return Preset{}, err
	}
	preset, ok := s.Experiment.Presets[key]
	if !ok {
		return Preset{}, fmt.Errorf("experiment state: preset %q missing from experiment", key)
	}
	return preset, nil
}

// Swap toggles which slot of the current comparison is shown. It never
// advances the index and never records an outcome.
func (s *ExperimentState) Swap() error {
	if s.Experiment.Type != ExperimentChoice {
		return ErrNotChoiceExperiment
	}
	if s.CurrentPreset == CurrentPresetA {
		s.CurrentPreset = CurrentPresetB
	} else {
		s.CurrentPreset = CurrentPresetA
	}
	return nil
}

// Answer records one outcome row for the current prompt and advances the
// index. The row's duration is the time since the prompt became visible,
// floored at zero; an instantaneous answer is valid. Returns true when the
// run is complete.
func (s *ExperimentState) Answer(answer ExperimentAnswer, now time.Time) (bool, error) {
	if s.IsDone() {
		return true, ErrExperimentDone
	}
	if answer.Type != s.Experiment.Type {
		return false, ErrAnswerMismatch
	}

	duration := now.Sub(s.PromptShownAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	switch s.Experiment.Type {
	case ExperimentChoice:
		selected, err := s.CurrentPresetKey()
		if err != nil {
			return false, err
		}
		choice := s.Experiment.Choices[s.CurrentIndex]
		s.Result.Choices = append(s.Result.Choices, OutcomeChoice{
			A:          choice.A,
			B:          choice.B,
			Selected:   selected,
			Time:       now,
			DurationMs: duration,
		})
		s.CurrentPreset = CurrentPresetA

	case ExperimentRating:
		s.Result.Ratings = append(s.Result.Ratings, OutcomeRating{
			Preset:     s.Experiment.Order[s.CurrentIndex],
			Rank:       answer.Value,
			Time:       now,
			DurationMs: duration,
		})
	}

	s.CurrentIndex++
	s.PromptShownAt = now
	return s.IsDone(), nil
}

// Clone returns a deep copy.
func (s *ExperimentState) Clone() *ExperimentState {
	if s == nil {
		return nil
	}
	out := *s
	out.Experiment = s.Experiment.Clone()
	out.Result = s.Result.Clone()
	return &out
}

type choiceStateJSON struct {
	Type          ExperimentType   `json:"experiment_type"`
	ExperimentKey string           `json:"experiment_key"`
	ResultKey     string           `json:"result_key"`
	CurrentIndex  int              `json:"current_index"`
	IsIdle        bool             `json:"is_idle"`
	CurrentPreset CurrentPreset    `json:"current_preset"`
	Experiment    Experiment       `json:"experiment"`
	Result        ExperimentResult `json:"result"`
}

type ratingStateJSON struct {
	Type          ExperimentType   `json:"experiment_type"`
	ExperimentKey string           `json:"experiment_key"`
	ResultKey     string           `json:"result_key"`
	CurrentIndex  int              `json:"current_index"`
	IsIdle        bool             `json:"is_idle"`
	Experiment    Experiment       `json:"experiment"`
	Result        ExperimentResult `json:"result"`
}

func (s ExperimentState) MarshalJSON() ([]byte, error) {
	switch s.Experiment.Type {
	case ExperimentChoice:
		return json.Marshal(choiceStateJSON{
			Type: s.Experiment.Type, ExperimentKey: s.ExperimentKey, ResultKey: s.ResultKey,
			CurrentIndex: s.CurrentIndex, IsIdle: s.IsIdle, CurrentPreset: s.CurrentPreset,
			Experiment: s.Experiment, Result: s.Result,
		})
	case ExperimentRating:
		return json.Marshal(ratingStateJSON{
			Type: s.Experiment.Type, ExperimentKey: s.ExperimentKey, ResultKey: s.ResultKey,
			CurrentIndex: s.CurrentIndex, IsIdle: s.IsIdle,
			Experiment: s.Experiment, Result: s.Result,
		})
	}
	return nil, fmt.Errorf("experiment state: cannot marshal unknown type %q", s.Experiment.Type)
}

func (s *ExperimentState) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ExperimentType `json:"experiment_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case ExperimentChoice:
		var v choiceStateJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = ExperimentState{
			ExperimentKey: v.ExperimentKey, ResultKey: v.ResultKey,
			CurrentIndex: v.CurrentIndex, IsIdle: v.IsIdle, CurrentPreset: v.CurrentPreset,
			Experiment: v.Experiment, Result: v.Result,
		}
	case ExperimentRating:
		var v ratingStateJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = ExperimentState{
			ExperimentKey: v.ExperimentKey, ResultKey: v.ResultKey,
			CurrentIndex: v.CurrentIndex, IsIdle: v.IsIdle,
			Experiment: v.Experiment, Result: v.Result,
		}
	default:
		return fmt.Errorf("experiment state: cannot unmarshal unknown type %q", head.Type)
	}
	return nil
}
