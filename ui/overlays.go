package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies a toggleable panel.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayHUD    OverlayID = "hud"
	OverlayPerf   OverlayID = "perf"
	OverlayTuning OverlayID = "tuning"
	OverlayHelp   OverlayID = "help"
)

// OverlayDescriptor defines a panel that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this panel shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "T")
	Category    string      // Grouping (e.g., "info", "edit")
	Exclusive   []OverlayID // Other panels to hide when this is shown
	Default     bool        // Shown at startup
}

// OverlayRegistry manages panel state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the default panels.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayHUD,
		Name:        "Status",
		Description: "Stage, counts and pause state",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "info",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Per-phase frame timing",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "info",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayTuning,
		Name:        "Tuning",
		Description: "Live field parameters",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "edit",
		Exclusive:   []OverlayID{OverlayHelp},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayHelp,
		Name:        "Controls",
		Description: "Key and pointer bindings",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "edit",
		Exclusive:   []OverlayID{OverlayTuning},
	})
}

// Register adds a panel to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches a panel on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets a panel's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether a panel is shown.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns a panel descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered panels in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns panels filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to a panel toggle.
// Returns the panel ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// HandleKeys toggles every panel whose key pressed reports as pressed this frame.
func (r *OverlayRegistry) HandleKeys(pressed func(key int32) bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && pressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
