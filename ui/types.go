// Package ui draws the on-screen panels: status HUD, performance breakdown,
// the live tuning panel, the key legend and the pause popup.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	Backdrop       rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	WarnColor      rl.Color
	HotColor       rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 14, G: 13, B: 34, A: 230},
		PanelBorder:    rl.Color{R: 70, G: 72, B: 110, A: 255},
		Backdrop:       rl.Color{R: 10, G: 9, B: 26, A: 170},
		SectionHeader:  rl.Color{R: 224, G: 231, B: 255, A: 255},
		LabelColor:     rl.Color{R: 150, G: 155, B: 190, A: 255},
		ValueColor:     rl.Color{R: 224, G: 231, B: 255, A: 255},
		WarnColor:      rl.Orange,
		HotColor:       rl.Red,
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		FontSize:       12,
		HeaderFontSize: 14,
		TitleFontSize:  20,
	}
}
