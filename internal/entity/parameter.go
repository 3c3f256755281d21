package entity

// ParameterKey is the stable identifier of one entry in the render-parameter
// catalog.
type ParameterKey string

const (
	ParameterTransparency     ParameterKey = "transparency"
	ParameterGlow             ParameterKey = "glow"
	ParameterSmoothness       ParameterKey = "smoothness"
	ParameterEmission         ParameterKey = "emission"
	ParameterLightIntensity   ParameterKey = "light_intensity"
	ParameterLightTemperature ParameterKey = "light_temperature"
)

// Parameter describes a single bounded render parameter. The catalog is fixed
// at startup; parameters are never created or destroyed at runtime.
type Parameter struct {
	Key  ParameterKey `json:"key"`
	Name string       `json:"name"`
	Min  float64      `json:"min"`
	Max  float64      `json:"max"`
}

var catalog = []Parameter{
	{Key: ParameterTransparency, Name: "Transparency", Min: 0, Max: 1},
	{Key: ParameterGlow, Name: "Glow", Min: 0, Max: 1},
	{Key: ParameterSmoothness, Name: "Smoothness", Min: 0, Max: 1},
	{Key: ParameterEmission, Name: "Emission", Min: 0, Max: 1},
	{Key: ParameterLightIntensity, Name: "Light intensity", Min: 0, Max: 1},
	{Key: ParameterLightTemperature, Name: "Light temperature", Min: 1000, Max: 10000},
}

// Parameters returns a copy of the parameter catalog.
func Parameters() []Parameter {
	out := make([]Parameter, len(catalog))
	copy(out, catalog)
	return out
}

// ParameterByKey looks up a catalog entry.
func ParameterByKey(key ParameterKey) (Parameter, bool) {
	for _, p := range catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParameterValues maps parameter keys to concrete values. Bounds are enforced
// at the command boundary via Clamp, not in the wire format.
type ParameterValues map[ParameterKey]float64

// DefaultParameterValues returns every catalog parameter at its minimum.
func DefaultParameterValues() ParameterValues {
	values := make(ParameterValues, len(catalog))
	for _, p := range catalog {
		values[p.Key] = p.Min
	}
	return values
}

// Clamp returns a copy with every value forced into its parameter's
// [Min, Max] range. Keys not present in the catalog are dropped.
func (v ParameterValues) Clamp() ParameterValues {
	out := make(ParameterValues, len(v))
	for key, value := range v {
		p, ok := ParameterByKey(key)
		if !ok {
			continue
		}
		if value < p.Min {
			value = p.Min
		}
		if value > p.Max {
			value = p.Max
		}
		out[key] = value
	}
	return out
}

// Clone returns a deep copy.
func (v ParameterValues) Clone() ParameterValues {
	if v == nil {
		return nil
	}
	out := make(ParameterValues, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}
