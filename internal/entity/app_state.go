package entity

import (
	"encoding/json"
	"fmt"
)

// StateKind discriminates the AppState tagged union on the wire.
type StateKind string

const (
	StateIdle       StateKind = "idle"
	StateLive       StateKind = "live"
	StateExperiment StateKind = "experiment"
)

// AppState is the single synchronized session value: what the render client
// should currently display. Exactly one instance exists per control session,
// owned by the session manager; everyone else reads snapshots.
type AppState struct {
	Kind       StateKind
	Parameters ParameterValues  // live only
	Experiment *ExperimentState // experiment only
}

// Idle returns the idle state.
func Idle() AppState {
	return AppState{Kind: StateIdle}
}

// Live returns a live state streaming the given parameter values.
func Live(values ParameterValues) AppState {
	return AppState{Kind: StateLive, Parameters: values}
}

// InExperiment returns a state running the given experiment.
func InExperiment(state *ExperimentState) AppState {
	return AppState{Kind: StateExperiment, Experiment: state}
}

// Clone returns a deep copy, safe to hand to subscribers.
func (s AppState) Clone() AppState {
	return AppState{
		Kind:       s.Kind,
		Parameters: s.Parameters.Clone(),
		Experiment: s.Experiment.Clone(),
	}
}

type liveStateJSON struct {
	Kind       StateKind       `json:"kind"`
	Parameters ParameterValues `json:"parameters"`
}

// MarshalJSON writes the kind discriminant; the experiment variant is
// flattened into the same object, matching the push-stream wire format.
func (s AppState) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StateIdle:
		return json.Marshal(struct {
			Kind StateKind `json:"kind"`
		}{Kind: StateIdle})

	case StateLive:
		return json.Marshal(liveStateJSON{Kind: StateLive, Parameters: s.Parameters})

	case StateExperiment:
		if s.Experiment == nil {
			return nil, fmt.Errorf("app state: experiment kind without experiment state")
		}
		inner, err := json.Marshal(s.Experiment)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(inner, &fields); err != nil {
			return nil, err
		}
		kind, err := json.Marshal(StateExperiment)
		if err != nil {
			return nil, err
		}
		fields["kind"] = kind
		return json.Marshal(fields)
	}
	return nil, fmt.Errorf("app state: cannot marshal unknown kind %q", s.Kind)
}

// UnmarshalJSON dispatches on the kind discriminant.
func (s *AppState) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind StateKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Kind {
	case StateIdle:
		*s = AppState{Kind: StateIdle}
	case StateLive:
		var v liveStateJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = AppState{Kind: StateLive, Parameters: v.Parameters}
	case StateExperiment:
		var state ExperimentState
		if err := json.Unmarshal(data, &state); err != nil {
			return err
		}
		*s = AppState{Kind: StateExperiment, Experiment: &state}
	default:
		return fmt.Errorf("app state: cannot unmarshal unknown kind %q", head.Kind)
	}
	return nil
}
