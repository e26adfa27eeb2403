package layout

import (
	"fmt"
	"strings"

	"firewall-network-graph/internal/model"
)

type Mode string

const (
	ModeGlobal Mode = "global"
	ModeZone   Mode = "zone"
)

// ParseMode accepts "global" or "zone", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeGlobal, "":
		return ModeGlobal, nil
	case ModeZone:
		return ModeZone, nil
	default:
		return "", fmt.Errorf("unknown layout mode: %q", s)
	}
}

// Config is the canvas geometry and base force tuning shared by both strategies.
type Config struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	NodeRadius   float64 `json:"nodeRadius"`
	LinkDistance float64 `json:"linkDistance"`
	Charge       float64 `json:"charge"`
}

func DefaultConfig() Config {
	return Config{
		Width:        800,
		Height:       600,
		NodeRadius:   12,
		LinkDistance: 300,
		Charge:       -1500,
	}
}

// Strategy assigns initial coordinates to nodes and describes the forces the
// simulation should run with. Apply writes positions onto the nodes it is given.
type Strategy interface {
	Mode() Mode
	Apply(nodes []*model.Node, links []*model.Edge) *Simulation
}

// New returns the strategy for mode. Unknown modes fall back to the global layout.
func New(mode Mode, cfg Config) Strategy {
	if mode == ModeZone {
		return &ZonePartitioned{cfg: cfg}
	}
	return &GlobalForce{cfg: cfg}
}

// Force kinds understood by the simulation engine.
const (
	ForceLink         = "link"
	ForceManyBody     = "manyBody"
	ForceCenter       = "center"
	ForceCollide      = "collide"
	ForceRadial       = "radial"
	ForceZoneBoundary = "zoneBoundary"
	ForceZoneCenter   = "zoneCenter"
)

// ForceSpec configures one named force.
type ForceSpec struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Distance float64 `json:"distance,omitempty"`
	Strength float64 `json:"strength,omitempty"`
	Radius   float64 `json:"radius,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
}

// TickForce is a custom force evaluated once per simulation tick.
type TickForce interface {
	Apply(alpha float64)
}

// velocityDecay matches the usual force-simulation friction of 0.4.
const velocityDecay = 0.6

// Simulation is the configured layout handed to the renderer's physics engine.
// Standard forces are described by Forces; custom zone forces run in Tick.
type Simulation struct {
	Mode      Mode             `json:"mode"`
	Seed      uint64           `json:"seed"`
	Forces    []ForceSpec      `json:"forces"`
	ZoneAreas []model.ZoneArea `json:"zoneAreas,omitempty"`

	nodes  []*model.Node
	custom []TickForce
	random *SeededRandom
}

func newSimulation(mode Mode, nodes []*model.Node) *Simulation {
	return &Simulation{
		Mode:   mode,
		Seed:   DefaultSeed,
		nodes:  nodes,
		random: NewSeededRandom(DefaultSeed),
	}
}

// Force returns the named force spec.
func (s *Simulation) Force(name string) (ForceSpec, bool) {
	for _, f := range s.Forces {
		if f.Name == name {
			return f, true
		}
	}
	return ForceSpec{}, false
}

// Random is the seeded random source the engine uses for jitter.
func (s *Simulation) Random() float64 {
	return s.random.Float64()
}

// Tick runs the custom forces and integrates velocities once. Pinned nodes
// stay at their fixed position.
func (s *Simulation) Tick(alpha float64) {
	for _, f := range s.custom {
		f.Apply(alpha)
	}
	for _, n := range s.nodes {
		if n.FX != nil && n.FY != nil {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= velocityDecay
		n.VY *= velocityDecay
		n.X += n.VX
		n.Y += n.VY
	}
}

// Resize moves the centering and radial forces to the new canvas center.
func (s *Simulation) Resize(width, height float64) {
	for i := range s.Forces {
		switch s.Forces[i].Kind {
		case ForceCenter, ForceRadial:
			s.Forces[i].X = width / 2
			s.Forces[i].Y = height / 2
		}
	}
}
