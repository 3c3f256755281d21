package entity

import (
	"encoding/json"
	"fmt"
)

// ExperimentAnswer is the reply to the current prompt. A choice answer carries
// no payload (the selected preset is whichever slot is currently shown); a
// rating answer carries the submitted rank.
type ExperimentAnswer struct {
	Type  ExperimentType
	Value int // rating only
}

type ratingAnswerJSON struct {
	Type  ExperimentType `json:"experiment_type"`
	Value int            `json:"value"`
}

type choiceAnswerJSON struct {
	Type ExperimentType `json:"experiment_type"`
}

func (a ExperimentAnswer) MarshalJSON() ([]byte, error) {
	switch a.Type {
	case ExperimentChoice:
		return json.Marshal(choiceAnswerJSON{Type: a.Type})
	case ExperimentRating:
		return json.Marshal(ratingAnswerJSON{Type: a.Type, Value: a.Value})
	}
	return nil, fmt.Errorf("answer: cannot marshal unknown type %q", a.Type)
}

func (a *ExperimentAnswer) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ExperimentType `json:"experiment_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case ExperimentChoice:
		*a = ExperimentAnswer{Type: ExperimentChoice}
	case ExperimentRating:
		var v ratingAnswerJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*a = ExperimentAnswer{Type: ExperimentRating, Value: v.Value}
	default:
		return fmt.Errorf("answer: cannot unmarshal unknown type %q", head.Type)
	}
	return nil
}
