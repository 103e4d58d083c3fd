package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/systems"
	"github.com/pthm-cable/flux/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Stage      string
	StageIndex int
	StageCount int
	Sources    int
	Sinks      int
	Particles  int
	Tick       int32
	SimTime    float64
	FPS        int32
	Paused     bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	th := h.renderer.Theme

	rl.DrawText(data.Title, 10, 10, th.TitleFontSize, th.ValueColor)

	rl.DrawText(
		fmt.Sprintf("Stage %d/%d: %s", data.StageIndex+1, data.StageCount, data.Stage),
		10, 35, 16, th.LabelColor,
	)
	rl.DrawText(
		fmt.Sprintf("Sources: %d | Sinks: %d | Particles: %d", data.Sources, data.Sinks, data.Particles),
		10, 55, 16, th.LabelColor,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %.1fs | FPS: %d", data.Tick, data.SimTime, data.FPS),
		10, 75, 16, th.LabelColor,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase performance breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with phases in registry order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, registry *systems.SystemRegistry) {
	th := p.renderer.Theme
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, th.ValueColor)
	y += 20

	rl.DrawText(fmt.Sprintf("Frame: %s  (%.0f fps)", stats.AvgTickDuration.Round(time.Microsecond), stats.FPS), x, y, 14, rl.Yellow)
	y += 16

	for _, info := range registry.All() {
		avg := stats.PhaseAvg[info.ID]
		pct := stats.PhasePct[info.ID]

		color := th.LabelColor
		if pct > 50 {
			color = th.HotColor
		} else if pct > 25 {
			color = th.WarnColor
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", info.Name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
