package entity

import (
	"encoding/json"
	"fmt"
)

// ExperimentType discriminates the experiment tagged union on the wire.
type ExperimentType string

const (
	ExperimentChoice ExperimentType = "choice"
	ExperimentRating ExperimentType = "rating"
)

// Choice is one directional comparison. The "a" and "b" slots are
// distinguishable, so (a,b) and (b,a) are separate prompts.
type Choice struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Experiment is a tagged union: a choice experiment walks an ordered list of
// preset pairs, a rating experiment walks an ordered list of presets. Presets
// are copied into the experiment at creation time, so deleting a preset later
// never breaks an existing experiment. Experiments are immutable once created;
// an edit is modeled as delete plus recreate.
type Experiment struct {
	Type    ExperimentType
	Name    string
	Presets map[string]Preset
	Choices []Choice // choice only
	Order   []string // rating only
}

// Length is the number of prompts in the run.
func (e Experiment) Length() int {
	switch e.Type {
	case ExperimentChoice:
		return len(e.Choices)
	case ExperimentRating:
		return len(e.Order)
	}
	return 0
}

// Validate checks that every preset key referenced by the prompt sequence
// exists in the preset map.
func (e Experiment) Validate() error {
	check := func(key string) error {
		if _, ok := e.Presets[key]; !ok {
			return fmt.Errorf("experiment %q references unknown preset %q", e.Name, key)
		}
		return nil
	}

	switch e.Type {
	case ExperimentChoice:
		for _, c := range e.Choices {
			if err := check(c.A); err != nil {
				return err
			}
			if err := check(c.B); err != nil {
				return err
			}
		}
	case ExperimentRating:
		for _, key := range e.Order {
			if err := check(key); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("experiment: unknown type %q", e.Type)
	}
	return nil
}

// Clone returns a deep copy.
func (e Experiment) Clone() Experiment {
	out := Experiment{
		Type:    e.Type,
		Name:    e.Name,
		Presets: clonePresets(e.Presets),
	}
	if e.Choices != nil {
		out.Choices = make([]Choice, len(e.Choices))
		copy(out.Choices, e.Choices)
	}
	if e.Order != nil {
		out.Order = make([]string, len(e.Order))
		copy(out.Order, e.Order)
	}
	return out
}

type choiceExperimentJSON struct {
	Type    ExperimentType    `json:"experiment_type"`
	Name    string            `json:"name"`
	Presets map[string]Preset `json:"presets"`
	Choices []Choice          `json:"choices"`
}

type ratingExperimentJSON struct {
	Type    ExperimentType    `json:"experiment_type"`
	Name    string            `json:"name"`
	Presets map[string]Preset `json:"presets"`
	Order   []string          `json:"order"`
}

// MarshalJSON writes the variant with a literal experiment_type discriminant.
func (e Experiment) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case ExperimentChoice:
		return json.Marshal(choiceExperimentJSON{Type: e.Type, Name: e.Name, Presets: e.Presets, Choices: e.Choices})
	case ExperimentRating:
		return json.Marshal(ratingExperimentJSON{Type: e.Type, Name: e.Name, Presets: e.Presets, Order: e.Order})
	}
	return nil, fmt.Errorf("experiment: cannot marshal unknown type %q", e.Type)
}

// UnmarshalJSON dispatches on the experiment_type discriminant before decoding
// the variant payload.
func (e *Experiment) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ExperimentType `json:"experiment_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case ExperimentChoice:
		var v choiceExperimentJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*e = Experiment{Type: v.Type, Name: v.Name, Presets: v.Presets, Choices: v.Choices}
	case ExperimentRating:
		var v ratingExperimentJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*e = Experiment{Type: v.Type, Name: v.Name, Presets: v.Presets, Order: v.Order}
	default:
		return fmt.Errorf("experiment: cannot unmarshal unknown type %q", head.Type)
	}
	return nil
}
