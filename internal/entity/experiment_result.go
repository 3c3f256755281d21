package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutcomeChoice records one answered comparison.
type OutcomeChoice struct {
	A          string    `json:"a"`
	B          string    `json:"b"`
	Selected   string    `json:"selected"`
	Time       time.Time `json:"time"`
	DurationMs int64     `json:"duration_ms"`
}

// OutcomeRating records one submitted rank.
type OutcomeRating struct {
	Preset     string    `json:"preset"`
	Rank       int       `json:"rank"`
	Time       time.Time `json:"time"`
	DurationMs int64     `json:"duration_ms"`
}

// ExperimentResult accumulates one outcome row per answered prompt. Rows are
// append-only and persisted after every answer, so a partial run survives.
type ExperimentResult struct {
	Type       ExperimentType
	Name       string
	Time       time.Time
	ObserverID int
	Note       string
	Presets    map[string]Preset
	Choices    []OutcomeChoice // choice only
	Ratings    []OutcomeRating // rating only
}

// NewExperimentResult starts an empty result for one run of the experiment.
// The preset snapshot is copied so later preset edits cannot alter a result.
func NewExperimentResult(name string, start time.Time, observerID int, note string, exp Experiment) ExperimentResult {
	return ExperimentResult{
		Type:       exp.Type,
		Name:       name,
		Time:       start,
		ObserverID: observerID,
		Note:       note,
		Presets:    clonePresets(exp.Presets),
	}
}

// Rows is the number of recorded outcomes.
func (r ExperimentResult) Rows() int {
	switch r.Type {
	case ExperimentChoice:
		return len(r.Choices)
	case ExperimentRating:
		return len(r.Ratings)
	}
	return 0
}

// Clone returns a deep copy.
func (r ExperimentResult) Clone() ExperimentResult {
	out := r
	out.Presets = clonePresets(r.Presets)
	if r.Choices != nil {
		out.Choices = make([]OutcomeChoice, len(r.Choices))
		copy(out.Choices, r.Choices)
	}
	if r.Ratings != nil {
		out.Ratings = make([]OutcomeRating, len(r.Ratings))
		copy(out.Ratings, r.Ratings)
	}
	return out
}

type choiceResultJSON struct {
	Type       ExperimentType    `json:"experiment_type"`
	Name       string            `json:"name"`
	Time       time.Time         `json:"time"`
	ObserverID int               `json:"observer_id"`
	Note       string            `json:"note"`
	Presets    map[string]Preset `json:"presets"`
	Choices    []OutcomeChoice   `json:"choices"`
}

type ratingResultJSON struct {
	Type       ExperimentType    `json:"experiment_type"`
	Name       string            `json:"name"`
	Time       time.Time         `json:"time"`
	ObserverID int               `json:"observer_id"`
	Note       string            `json:"note"`
	Presets    map[string]Preset `json:"presets"`
	Ratings    []OutcomeRating   `json:"ratings"`
}

func (r ExperimentResult) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ExperimentChoice:
		return json.Marshal(choiceResultJSON{
			Type: r.Type, Name: r.Name, Time: r.Time, ObserverID: r.ObserverID,
			Note: r.Note, Presets: r.Presets, Choices: r.Choices,
		})
	case ExperimentRating:
		return json.Marshal(ratingResultJSON{
			Type: r.Type, Name: r.Name, Time: r.Time, ObserverID: r.ObserverID,
			Note: r.Note, Presets: r.Presets, Ratings: r.Ratings,
		})
	}
	return nil, fmt.Errorf("result: cannot marshal unknown type %q", r.Type)
}

func (r *ExperimentResult) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ExperimentType `json:"experiment_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case ExperimentChoice:
		var v choiceResultJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = ExperimentResult{
			Type: v.Type, Name: v.Name, Time: v.Time, ObserverID: v.ObserverID,
			Note: v.Note, Presets: v.Presets, Choices: v.Choices,
		}
	case ExperimentRating:
		var v ratingResultJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = ExperimentResult{
			Type: v.Type, Name: v.Name, Time: v.Time, ObserverID: v.ObserverID,
			Note: v.Note, Presets: v.Presets, Ratings: v.Ratings,
		}
	default:
		return fmt.Errorf("result: cannot unmarshal unknown type %q", head.Type)
	}
	return nil
}

// ResultWithExperiment ties a stored result back to the experiment it ran.
type ResultWithExperiment struct {
	ExperimentKey string           `json:"experiment_key"`
	Result        ExperimentResult `json:"result"`
}
