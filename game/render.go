package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/renderer"
	"github.com/pthm-cable/flux/systems"
	"github.com/pthm-cable/flux/telemetry"
	"github.com/pthm-cable/flux/ui"
)

const tuningPanelWidth = 300

// bindings lists the fixed actions shown in the help panel.
var bindings = []ui.Binding{
	{Key: "Space", Action: "Pause"},
	{Key: "C", Action: "Clear particles"},
	{Key: "Left/Right", Action: "Change stage"},
	{Key: "R", Action: "Reset stage"},
	{Key: "+/-", Action: "Zoom"},
	{Key: "LMB", Action: "Drag / flip node"},
	{Key: "RMB", Action: "Add / remove node"},
}

// initRendering creates the window-bound renderers and panels.
func (g *Game) initRendering() {
	style := renderer.StyleFromConfig(g.cfg.Render, g.cfg.Derived)
	g.canvas = renderer.NewTrailCanvas(int32(g.screenWidth), int32(g.screenHeight), style.Background, g.trailDecay)
	g.canvas.Init()
	g.field = renderer.NewFieldRenderer(g.camera, style)

	g.overlays = ui.NewOverlayRegistry()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(0, 10)
	g.tuning = ui.NewTuningPanel(0, 10, tuningPanelWidth)
	g.help = ui.NewHelpPanel(0, 10, tuningPanelWidth)
	g.popup = ui.NewPausePopup()
	g.layoutPanels()
}

// layoutPanels anchors the right-hand panels to the current screen width.
func (g *Game) layoutPanels() {
	if g.headless || g.tuning == nil {
		return
	}
	right := int32(g.screenWidth) - tuningPanelWidth - 10
	g.tuning.SetPosition(right, 10)
	g.help.SetPosition(right, 10)
	g.perfPanel.SetPosition(10, 125)
}

// Draw renders the current frame. Nothing drawn here feeds back into the
// simulation except the tuning panel and pause popup.
func (g *Game) Draw() {
	g.perfCollector.StartPhase(telemetry.PhaseRender)
	rl.BeginDrawing()

	// Trails accumulate offscreen; skipping the fade while paused freezes them
	fadeDT := g.clock.lastDT
	if g.paused {
		fadeDT = 0
	}
	g.canvas.Begin(fadeDT)
	g.field.DrawParticles(g.particles.Particles)
	g.nodeBuf = g.layout.Snapshot(g.nodeBuf[:0])
	g.field.DrawNodes(g.nodeBuf)
	g.canvas.End()

	rl.ClearBackground(g.field.Style().Background)
	g.canvas.Draw()

	g.drawUI()

	rl.EndDrawing()
	g.perfCollector.EndTick()
	g.perfCollector.RecordFrame()
}

// drawUI draws the panels enabled in the overlay registry.
func (g *Game) drawUI() {
	sw, sh := int32(g.screenWidth), int32(g.screenHeight)

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		var sources, sinks int
		for i := range g.nodeBuf {
			if g.nodeBuf[i].Polarity == components.Source {
				sources++
			} else {
				sinks++
			}
		}
		g.hud.Draw(ui.HUDData{
			Title:      g.cfg.Screen.Title,
			Stage:      g.StageName(),
			StageIndex: g.stageIndex,
			StageCount: len(g.stages),
			Sources:    sources,
			Sinks:      sinks,
			Particles:  g.particles.Count(),
			Tick:       g.tick,
			SimTime:    g.collector.SimTime(),
			FPS:        rl.GetFPS(),
			Paused:     g.paused,
		})
		g.hud.DrawControls(sh, "[H] controls  [T] tuning  [P] perf  [Space] pause")
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats(), g.registry)
	}

	if g.overlays.IsEnabled(ui.OverlayHelp) {
		g.help.Draw(g.overlays, bindings)
	}

	if g.overlays.IsEnabled(ui.OverlayTuning) {
		res := g.tuning.Draw(g.tuningValues())
		switch {
		case res.Reset:
			g.resetTuning()
		case res.Changed:
			g.applyTuning(res.Values)
		}
	}

	if g.paused {
		hint := "Click anywhere to resume"
		if g.touchMode {
			hint = "Double tap to resume"
		}
		if g.popup.Draw(sw, sh, hint) {
			g.TogglePause()
		}
	}
}

func (g *Game) tuningValues() ui.TuningValues {
	p := g.particles.Params()
	return ui.TuningValues{
		ForceCap:    p.ForceCap,
		Drag:        p.Drag,
		SpawnPeriod: p.SpawnPeriod,
		TrailDecay:  g.trailDecay,
	}
}

// applyTuning pushes slider values to the engine and trail canvas.
func (g *Game) applyTuning(v ui.TuningValues) {
	p := g.particles.Params()
	p.ForceCap = v.ForceCap
	p.Drag = v.Drag
	if v.SpawnPeriod > 0 {
		p.SpawnPeriod = v.SpawnPeriod
	}
	g.SetFieldParams(p)

	g.trailDecay = v.TrailDecay
	if g.canvas != nil {
		g.canvas.SetDecay(v.TrailDecay)
	}
}

// resetTuning restores the current stage's configured tuning.
func (g *Game) resetTuning() {
	g.SetFieldParams(systems.FieldParamsFromConfig(g.cfg.FieldFor(g.StageName())))
	g.trailDecay = g.cfg.Render.TrailDecay
	if g.canvas != nil {
		g.canvas.SetDecay(g.trailDecay)
	}
}
