// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Layouts   LayoutsConfig   `yaml:"layouts"`
	Input     InputConfig     `yaml:"input"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
	HighDPI   bool   `yaml:"high_dpi"`
}

// FieldConfig holds the particle engine tuning.
type FieldConfig struct {
	ForceConstant     float64 `yaml:"force_constant"`      // Inverse-square numerator
	ForceCap          float64 `yaml:"force_cap"`           // Per-node force magnitude ceiling
	Drag              float64 `yaml:"drag"`                // Quadratic drag coefficient
	SpawnPeriod       float64 `yaml:"spawn_period"`        // Seconds between emissions per source
	SpawnClampPeriods float64 `yaml:"spawn_clamp_periods"` // Accumulator ceiling in periods
	SpawnMinFraction  float64 `yaml:"spawn_min_fraction"`  // Spawn offset lower bound as fraction of radius
	AbsorbFraction    float64 `yaml:"absorb_fraction"`     // Absorption radius as fraction of sink radius
	EscapeDivisor     float64 `yaml:"escape_divisor"`      // Escape when |x| > width/divisor
}

// ProfileConfig overrides field tuning for a single layout.
// Zero fields inherit from FieldConfig.
type ProfileConfig struct {
	ForceConstant float64 `yaml:"force_constant,omitempty"`
	ForceCap      float64 `yaml:"force_cap,omitempty"`
	Drag          float64 `yaml:"drag,omitempty"`
	SpawnPeriod   float64 `yaml:"spawn_period,omitempty"`
}

// LayoutsConfig holds node layout generator parameters.
type LayoutsConfig struct {
	Stages              []string                 `yaml:"stages"`
	NodeRadius          float64                  `yaml:"node_radius"`
	UserNodeRadius      float64                  `yaml:"user_node_radius"`
	AngularSpeed        float64                  `yaml:"angular_speed"`        // rad/s for the rotating triangle
	OscillatorFrequency float64                  `yaml:"oscillator_frequency"` // rad/s for the oscillating pair
	OscillatorAmplitude float64                  `yaml:"oscillator_amplitude"` // Fraction of height
	OscillatorOffset    float64                  `yaml:"oscillator_offset"`    // Fraction of width
	Profiles            map[string]ProfileConfig `yaml:"profiles"`
}

// InputConfig holds pointer and touch gesture thresholds.
type InputConfig struct {
	LongPress       float64 `yaml:"long_press"`        // Seconds before a held touch acts
	MoveThreshold   float64 `yaml:"move_threshold"`    // Travel that cancels a long press
	DoubleTapWindow float64 `yaml:"double_tap_window"` // Seconds between touch ends for pause
	DoubleTapRadius float64 `yaml:"double_tap_radius"` // Distance between touch ends for pause
	SwipeDistance   float64 `yaml:"swipe_distance"`    // Horizontal travel that switches stage
	Touch           bool    `yaml:"touch"`             // Decode touch points instead of the mouse
}

// RenderConfig holds drawing settings.
type RenderConfig struct {
	Background     string  `yaml:"background"`
	Foreground     string  `yaml:"foreground"`
	TrailDecay     float64 `yaml:"trail_decay"` // Fraction of the trail left after one second
	ParticleRadius float64 `yaml:"particle_radius"`
	TrailWidth     float64 `yaml:"trail_width"`
	NodeCoreRadius float64 `yaml:"node_core_radius"`
	RingWidth      float64 `yaml:"ring_width"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Simulated seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Frames per perf rolling window
}

// RGBA is a parsed color.
type RGBA struct {
	R, G, B, A uint8
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Bounds     r2.Vec         // Screen size in world units
	StageIndex map[string]int // Stage name -> index
	Background RGBA
	Foreground RGBA
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Field.SpawnPeriod <= 0 {
		return fmt.Errorf("field.spawn_period must be positive, got %v", c.Field.SpawnPeriod)
	}
	if c.Field.EscapeDivisor <= 0 {
		return fmt.Errorf("field.escape_divisor must be positive, got %v", c.Field.EscapeDivisor)
	}
	if len(c.Layouts.Stages) == 0 {
		return fmt.Errorf("layouts.stages must name at least one layout")
	}

	c.Derived.Bounds = r2.Vec{X: float64(c.Screen.Width), Y: float64(c.Screen.Height)}

	c.Derived.StageIndex = make(map[string]int, len(c.Layouts.Stages))
	for i, name := range c.Layouts.Stages {
		c.Derived.StageIndex[name] = i
	}

	var err error
	if c.Derived.Background, err = ParseHexColor(c.Render.Background); err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	if c.Derived.Foreground, err = ParseHexColor(c.Render.Foreground); err != nil {
		return fmt.Errorf("render.foreground: %w", err)
	}
	return nil
}

// FieldFor returns the field tuning for a layout with its profile overrides applied.
func (c *Config) FieldFor(layout string) FieldConfig {
	f := c.Field
	p, ok := c.Layouts.Profiles[layout]
	if !ok {
		return f
	}
	if p.ForceConstant > 0 {
		f.ForceConstant = p.ForceConstant
	}
	if p.ForceCap > 0 {
		f.ForceCap = p.ForceCap
	}
	if p.Drag > 0 {
		f.Drag = p.Drag
	}
	if p.SpawnPeriod > 0 {
		f.SpawnPeriod = p.SpawnPeriod
	}
	return f
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
