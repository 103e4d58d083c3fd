package systems

// Phase identifiers reported to a PhaseTimer. The frame driver adds
// PhaseLayout and PhaseRender around the engine's own phases.
const (
	PhaseLayout  = "layout"
	PhaseSpawn   = "spawn"
	PhaseForce   = "force"
	PhaseRemoval = "removal"
	PhaseRender  = "render"
)

// SystemInfo describes a simulation phase for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "core", "visual")
}

// SystemRegistry holds metadata about all phases.
// This centralizes naming so the HUD and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known phases.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known phases in execution order.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: PhaseLayout, Name: "Layout", Description: "Animates generator-owned nodes", Category: "core"})
	r.Register(SystemInfo{ID: PhaseSpawn, Name: "Spawn", Description: "Emits particles at sources", Category: "core"})
	r.Register(SystemInfo{ID: PhaseForce, Name: "Force", Description: "Integrates node forces and drag", Category: "physics"})
	r.Register(SystemInfo{ID: PhaseRemoval, Name: "Removal", Description: "Drops absorbed and escaped particles", Category: "core"})
	r.Register(SystemInfo{ID: PhaseRender, Name: "Render", Description: "Draws trails, particles and nodes", Category: "visual"})
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all phase IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
