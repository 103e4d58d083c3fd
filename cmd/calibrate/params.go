package main

import (
	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/systems"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of calibrated parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard parameter set. The ranges match the
// tuning panel sliders.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "force_cap", Path: "field.force_cap", Min: 500, Max: 8000},
			{Name: "drag", Path: "field.drag", Min: 0.0005, Max: 0.05},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// Apply returns base with the clamped values applied.
// Order must match Specs order.
func (pv *ParamVector) Apply(base systems.FieldParams, values []float64) systems.FieldParams {
	clamped := pv.Clamp(values)
	base.ForceCap = clamped[0]
	base.Drag = clamped[1]
	return base
}

// Extract reads the current values from a field config.
func (pv *ParamVector) Extract(f config.FieldConfig) []float64 {
	return []float64{f.ForceCap, f.Drag}
}

// ApplyToConfig stores values as the stage's layout profile.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, stage string, values []float64) {
	clamped := pv.Clamp(values)
	if cfg.Layouts.Profiles == nil {
		cfg.Layouts.Profiles = make(map[string]config.ProfileConfig)
	}
	p := cfg.Layouts.Profiles[stage]
	p.ForceCap = clamped[0]
	p.Drag = clamped[1]
	cfg.Layouts.Profiles[stage] = p
}
