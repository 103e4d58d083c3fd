package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// TuningValues are the field parameters exposed as sliders.
type TuningValues struct {
	ForceCap    float64
	Drag        float64
	SpawnPeriod float64
	TrailDecay  float64
}

// slider describes one tuning control.
type slider struct {
	label    string
	format   string
	min, max float32
	get      func(*TuningValues) *float64
}

var tuningSliders = []slider{
	{"Force cap", "%.0f", 500, 8000, func(v *TuningValues) *float64 { return &v.ForceCap }},
	{"Drag", "%.4f", 0, 0.05, func(v *TuningValues) *float64 { return &v.Drag }},
	{"Spawn period", "%.4fs", 0.0005, 0.02, func(v *TuningValues) *float64 { return &v.SpawnPeriod }},
	{"Trail decay", "%.3f", 0.001, 0.5, func(v *TuningValues) *float64 { return &v.TrailDecay }},
}

// TuningResult reports what the user did with the tuning panel this frame.
type TuningResult struct {
	Values  TuningValues
	Changed bool
	Reset   bool // Restore the stage defaults
}

// TuningPanel renders live sliders for the field parameters.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewTuningPanel creates a new tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *TuningPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Bounds returns the screen area the panel occupies, for input hit testing.
func (c *TuningPanel) Bounds() Rect {
	th := c.renderer.Theme
	height := th.Padding*3 + th.LineHeight + int32(len(tuningSliders))*(th.LineHeight+24) + 28
	return Rect{X: c.x, Y: c.y, Width: c.width, Height: height}
}

// Draw renders the panel and returns the possibly edited values.
func (c *TuningPanel) Draw(values TuningValues) TuningResult {
	r := c.renderer
	th := r.Theme
	b := c.Bounds()
	r.DrawPanel(b.X, b.Y, b.Width, b.Height)

	x := c.x + th.Padding
	y := r.DrawSectionHeader(x, c.y+th.Padding, "Field Tuning")
	sliderW := float32(c.width - th.Padding*2 - 70)

	res := TuningResult{Values: values}
	for _, s := range tuningSliders {
		v := s.get(&res.Values)
		r.DrawLabel(x, y, s.label)
		y += th.LineHeight

		cur := float32(*v)
		next := gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderW, Height: 16},
			"", "",
			cur, s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf(s.format, *v), x+int32(sliderW)+8, y+2, th.FontSize, th.ValueColor)
		if next != cur {
			*v = float64(next)
			res.Changed = true
		}
		y += 24
	}

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 120, Height: 22}, "Stage defaults") {
		res.Reset = true
	}
	return res
}

// HelpPanel renders the key legend from the overlay registry plus the
// fixed bindings.
type HelpPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// Binding is a fixed key or pointer action shown in the legend.
type Binding struct {
	Key    string
	Action string
}

// NewHelpPanel creates a new help panel.
func NewHelpPanel(x, y, width int32) *HelpPanel {
	return &HelpPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *HelpPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the legend.
func (c *HelpPanel) Draw(overlays *OverlayRegistry, bindings []Binding) {
	r := c.renderer
	th := r.Theme
	padding := th.Padding
	lineHeight := th.LineHeight

	categories := overlays.Categories()
	rows := len(bindings) + 1
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(rows)*lineHeight + padding*3 + lineHeight
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Controls", c.x+padding, y, 16, th.ValueColor)
	y += lineHeight + 4

	y = r.DrawSectionHeader(c.x+padding, y, "Actions")
	for _, b := range bindings {
		c.drawKey(c.x+padding, y, b.Key, b.Action, false, false)
		y += lineHeight
	}

	for _, category := range categories {
		y = r.DrawSectionHeader(c.x+padding, y+4, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			c.drawKey(c.x+padding, y, desc.KeyLabel, desc.Name, true, overlays.IsEnabled(desc.ID))
			y += lineHeight
		}
	}
}

// drawKey draws one legend line with an optional on/off indicator.
func (c *HelpPanel) drawKey(x, y int32, key, action string, toggle, enabled bool) {
	th := c.renderer.Theme
	width := c.width - th.Padding*2

	nameColor := th.LabelColor
	if toggle {
		statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
		if enabled {
			statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
			nameColor = rl.White
		}
		rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	}
	rl.DrawText(action, x+14, y, th.FontSize, nameColor)

	if key != "" {
		keyText := fmt.Sprintf("[%s]", key)
		keyWidth := rl.MeasureText(keyText, th.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, th.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "info":
		return "Panels"
	case "edit":
		return "Editing"
	default:
		return cat
	}
}

// PausePopup covers the field while the simulation is paused.
type PausePopup struct {
	renderer *Renderer
}

// NewPausePopup creates a pause popup.
func NewPausePopup() *PausePopup {
	return &PausePopup{renderer: NewRenderer()}
}

// ButtonBounds returns the resume button area for a screen size.
func (p *PausePopup) ButtonBounds(screenW, screenH int32) Rect {
	return Rect{X: screenW/2 - 70, Y: screenH/2 + 10, Width: 140, Height: 32}
}

// Draw renders the backdrop and reports whether the resume button was pressed.
func (p *PausePopup) Draw(screenW, screenH int32, hint string) bool {
	th := p.renderer.Theme
	rl.DrawRectangle(0, 0, screenW, screenH, th.Backdrop)

	p.renderer.DrawCentered(screenW/2, screenH/2-40, "Paused", 32, th.ValueColor)
	if hint != "" {
		p.renderer.DrawCentered(screenW/2, screenH/2+56, hint, th.FontSize+2, th.LabelColor)
	}
	return gui.Button(p.ButtonBounds(screenW, screenH).raylib(), "Resume")
}
