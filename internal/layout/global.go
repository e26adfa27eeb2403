package layout

import (
	"math"

	"firewall-network-graph/internal/model"
)

// GlobalForce places every node on one ring around the canvas center and runs
// a single shared simulation.
type GlobalForce struct {
	cfg Config
}

func NewGlobalForce(cfg Config) *GlobalForce {
	return &GlobalForce{cfg: cfg}
}

func (g *GlobalForce) Mode() Mode { return ModeGlobal }

func (g *GlobalForce) Apply(nodes []*model.Node, links []*model.Edge) *Simulation {
	c := g.cfg
	sim := newSimulation(ModeGlobal, nodes)
	sim.Forces = []ForceSpec{
		{Name: "link", Kind: ForceLink, Distance: c.LinkDistance, Strength: 0.2},
		{Name: "charge", Kind: ForceManyBody, Strength: c.Charge},
		{Name: "center", Kind: ForceCenter, X: c.Width / 2, Y: c.Height / 2},
		{Name: "collision", Kind: ForceCollide, Radius: c.NodeRadius * 3},
		{Name: "radial", Kind: ForceRadial, Radius: math.Min(c.Width, c.Height) * 0.4, X: c.Width / 2, Y: c.Height / 2, Strength: 0.2},
	}
	g.place(nodes)
	return sim
}

func (g *GlobalForce) place(nodes []*model.Node) {
	c := g.cfg
	centerX, centerY := c.Width/2, c.Height/2
	radius := math.Min(c.Width, c.Height) * 0.4
	margin := c.NodeRadius * 3

	for _, n := range nodes {
		h := HashString(nodeKey(n))

		angle := 2 * math.Pi * float64(h%1000) / 1000
		radiusOffset := float64(h%100) - 50
		angleOffset := float64(signedShift(h, 10)%40-20) * math.Pi / 180

		r := radius + radiusOffset
		a := angle + angleOffset
		n.X = clamp(centerX+r*math.Cos(a), margin, c.Width-margin)
		n.Y = clamp(centerY+r*math.Sin(a), margin, c.Height-margin)
		n.VX, n.VY = 0, 0
	}
}

func nodeKey(n *model.Node) string {
	if n.IP != "" {
		return n.IP
	}
	return n.ID
}

// clamp bounds v to [lo, hi]; lo wins when the range is inverted.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
