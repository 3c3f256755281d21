package entity

// Preset is a named snapshot of parameter values, captured from the current
// Live values.
type Preset struct {
	Name       string          `json:"name"`
	Parameters ParameterValues `json:"parameters"`
}

// Clone returns a deep copy.
func (p Preset) Clone() Preset {
	return Preset{Name: p.Name, Parameters: p.Parameters.Clone()}
}

// WithKey pairs a stored value with its opaque key.
type WithKey[T any] struct {
	Key   string `json:"key"`
	Value T      `json:"value"`
}

func clonePresets(presets map[string]Preset) map[string]Preset {
	if presets == nil {
		return nil
	}
	out := make(map[string]Preset, len(presets))
	for key, preset := range presets {
		out[key] = preset.Clone()
	}
	return out
}
