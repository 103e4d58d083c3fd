// Package game drives one frame at a time: it owns the timestep, pause state
// and current stage, decodes window input, and hands the node and particle
// lists to the renderer.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/camera"
	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/input"
	"github.com/pthm-cable/flux/layout"
	"github.com/pthm-cable/flux/renderer"
	"github.com/pthm-cable/flux/systems"
	"github.com/pthm-cable/flux/telemetry"
	"github.com/pthm-cable/flux/ui"
)

// DefaultDT is the headless timestep in seconds.
const DefaultDT = 1.0 / 60.0

// Options configures a new game.
type Options struct {
	Seed           int64   // RNG seed (0 = time-based)
	Stage          string  // Initial stage name (empty = first configured stage)
	LogStats       bool    // Log telemetry windows via slog
	StatsWindowSec float64 // Telemetry window in simulated seconds (0 = use config)
	OutputDir      string  // Directory for CSV output (empty = disabled)
	Headless       bool    // No window, fixed timestep
	DT             float64 // Headless timestep (0 = DefaultDT)
}

// Game holds the complete frame driver state.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	// Stage
	stages     []string
	stageIndex int
	layout     layout.Layout
	editor     *recordingEditor
	params     layout.Params

	// Engine
	particles *systems.ParticleSystem
	nodeBuf   []components.Node

	// Input
	inputOpts input.Options
	sched     *input.Scheduler
	touches   *input.TouchTracker
	mouse     input.MouseSession
	pointer   pointerState
	touchMode bool

	// View
	camera                    *camera.Camera
	screenWidth, screenHeight float32

	// State
	tick     int32
	paused   bool
	headless bool
	dt       float64
	clock    frameClock

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	registry      *systems.SystemRegistry

	// Rendering (nil when headless)
	canvas     *renderer.TrailCanvas
	field      *renderer.FieldRenderer
	overlays   *ui.OverlayRegistry
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	tuning     *ui.TuningPanel
	help       *ui.HelpPanel
	popup      *ui.PausePopup
	trailDecay float64
}

// NewGameWithOptions creates a game from the global config.
// In graphics mode the raylib window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	dt := opts.DT
	if dt <= 0 {
		dt = DefaultDT
	}

	g := &Game{
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(seed)),
		stages:       cfg.Layouts.Stages,
		params:       layout.ParamsFromConfig(cfg.Layouts),
		inputOpts:    input.OptionsFromConfig(cfg.Input, cfg.Layouts),
		sched:        input.NewScheduler(),
		touchMode:    cfg.Input.Touch,
		screenWidth:  float32(cfg.Screen.Width),
		screenHeight: float32(cfg.Screen.Height),
		headless:     opts.Headless,
		dt:           dt,
		clock:        newFrameClock(time.Now),
		collector:    telemetry.NewCollector(statsWindow),
		logStats:     opts.LogStats,
		registry:     systems.NewSystemRegistry(),
		trailDecay:   cfg.Render.TrailDecay,
	}
	g.registry.Register(systems.SystemInfo{
		ID:          telemetry.PhaseTelemetry,
		Name:        "Telemetry",
		Description: "Flushes stats windows",
		Category:    "core",
	})
	g.camera = camera.New(g.screenWidth, g.screenHeight)

	perfWindow := cfg.Telemetry.PerfWindow
	if perfWindow <= 0 {
		perfWindow = 120
	}
	g.perfCollector = telemetry.NewPerfCollector(perfWindow)

	g.particles = systems.NewParticleSystem(systems.DefaultFieldParams(), g.camera.Bounds(), g.rng)
	g.particles.SetPhaseTimer(g.perfCollector)

	// Touch tracker starts with no editor; SetStage installs one
	g.touches = input.NewTouchTracker(g.inputOpts, g.sched, nil, g)

	if !g.headless {
		g.initRendering()
	}

	stage := 0
	if opts.Stage != "" {
		i, ok := cfg.Derived.StageIndex[opts.Stage]
		if !ok {
			return nil, fmt.Errorf("unknown stage %q (have %v)", opts.Stage, g.stages)
		}
		stage = i
	}
	if err := g.SetStage(stage); err != nil {
		return nil, err
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		g.outputManager = om
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
	}

	slog.Info("game created",
		"seed", seed,
		"stage", g.StageName(),
		"headless", g.headless,
		"bounds_x", g.camera.Bounds().X,
		"bounds_y", g.camera.Bounds().Y,
	)
	return g, nil
}

// Step advances the simulation by dt seconds. Pending input timers always
// advance; the layout and particles only move when not paused.
func (g *Game) Step(dt float64) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		dt = 0
	}
	g.sched.Advance(time.Duration(dt * float64(time.Second)))
	if g.paused {
		return
	}

	g.perfCollector.StartPhase(telemetry.PhaseLayout)
	g.layout.Update(dt)

	st := g.particles.Update(dt, g.layout.Nodes())
	g.collector.RecordStep(st, dt)
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
}

// Update runs one graphics frame: input, then simulation.
func (g *Game) Update() {
	g.perfCollector.StartTick()
	dt := g.clock.Next()
	g.handleInput()
	g.Step(dt)
}

// UpdateHeadless runs one fixed-timestep frame without a window.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.Step(g.dt)
	g.perfCollector.EndTick()
}

// TogglePause pauses or resumes the simulation.
func (g *Game) TogglePause() {
	g.paused = !g.paused
	if g.paused {
		// A release while paused is never decoded, so drop the selection now
		g.mouse = input.MouseSession{}
	}
	g.collector.Record(telemetry.Event{Type: telemetry.EventPauseToggled, Tick: g.tick})
	slog.Info("pause toggled", "paused", g.paused, "tick", g.tick)
}

// ChangeStage moves delta stages forward or back, clamped to the stage list.
func (g *Game) ChangeStage(delta int) {
	next := g.stageIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(g.stages)-1 {
		next = len(g.stages) - 1
	}
	if next == g.stageIndex {
		return
	}
	if err := g.SetStage(next); err != nil {
		slog.Error("failed to change stage", "error", err)
	}
}

// SetStage rebuilds the layout for stage i and clears all particles and trails.
// Calling it with the current index resets the stage.
func (g *Game) SetStage(i int) error {
	if i < 0 || i >= len(g.stages) {
		return fmt.Errorf("stage index %d out of range [0, %d)", i, len(g.stages))
	}
	name := g.stages[i]
	l, err := layout.New(name, g.camera.Bounds(), g.params)
	if err != nil {
		return err
	}

	g.stageIndex = i
	g.layout = l
	g.editor = newRecordingEditor(l, g.collector, g.Tick)
	g.touches.SetEditor(g.editor)
	g.mouse = input.MouseSession{}

	g.particles.SetParams(systems.FieldParamsFromConfig(g.cfg.FieldFor(name)))
	g.ClearParticles()

	g.collector.Record(telemetry.NewStageEvent(g.tick, name))
	slog.Info("stage changed", "stage", name, "index", i, "nodes", l.Len())
	return nil
}

// Reset rebuilds the current stage.
func (g *Game) Reset() {
	if err := g.SetStage(g.stageIndex); err != nil {
		slog.Error("failed to reset stage", "error", err)
	}
}

// ClearParticles removes every particle and wipes the trail canvas.
func (g *Game) ClearParticles() {
	g.particles.Clear()
	if g.canvas != nil {
		g.canvas.Clear()
	}
	g.collector.Record(telemetry.Event{Type: telemetry.EventCleared, Tick: g.tick})
}

// Resize propagates a new viewport size to the camera, the layout bounds,
// the engine's escape bounds and the trail canvas.
func (g *Game) Resize(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	if !g.camera.Resize(w, h) {
		return
	}
	g.applyBounds()
	if g.canvas != nil {
		g.canvas.Resize(int32(w), int32(h))
	}
	g.layoutPanels()
}

// applyBounds pushes the camera's field extent to the layout and engine.
func (g *Game) applyBounds() {
	b := g.camera.Bounds()
	g.layout.Resize(b)
	g.particles.SetBounds(b)
}

// SetStatsCallback sets a function called with each flushed telemetry window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Unload releases resources and closes output files.
func (g *Game) Unload() {
	if g.canvas != nil {
		g.canvas.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of simulated (unpaused) steps.
func (g *Game) Tick() int32 { return g.tick }

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// StageIndex returns the current stage index.
func (g *Game) StageIndex() int { return g.stageIndex }

// StageName returns the current stage name.
func (g *Game) StageName() string { return g.stages[g.stageIndex] }

// Layout returns the current layout.
func (g *Game) Layout() layout.Layout { return g.layout }

// Editor returns the editing surface pointer input acts on.
func (g *Game) Editor() input.Editor { return g.editor }

// Particles returns the live particles for this tick.
func (g *Game) Particles() []components.Particle { return g.particles.Particles }

// Bounds returns the current simulation bounds.
func (g *Game) Bounds() r2.Vec { return g.camera.Bounds() }

// FieldParams returns the engine tuning in effect.
func (g *Game) FieldParams() systems.FieldParams { return g.particles.Params() }

// SetFieldParams overrides the engine tuning until the next stage change.
func (g *Game) SetFieldParams(p systems.FieldParams) {
	g.particles.SetParams(p)
	slog.Debug("field params changed", "force_cap", p.ForceCap, "drag", p.Drag, "spawn_period", p.SpawnPeriod)
}

// Collector returns the telemetry collector.
func (g *Game) Collector() *telemetry.Collector { return g.collector }
