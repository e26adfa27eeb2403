package layout

import (
	"math"

	"github.com/samber/lo"

	"firewall-network-graph/internal/model"
)

const (
	zonePadding          = 40.0
	zoneRingFactor       = 0.3
	boundaryStrength     = 0.8
	boundaryTolerance    = 5.0
	zoneCenterStrength   = 0.1
	zoneLinkDistanceRate = 0.5
	zoneChargeRate       = 0.3
)

// ZonePartitioned gives every zone its own canvas cell and keeps nodes inside
// their cell with two custom forces.
type ZonePartitioned struct {
	cfg Config
}

func NewZonePartitioned(cfg Config) *ZonePartitioned {
	return &ZonePartitioned{cfg: cfg}
}

func (z *ZonePartitioned) Mode() Mode { return ModeZone }

func (z *ZonePartitioned) Apply(nodes []*model.Node, links []*model.Edge) *Simulation {
	zones, groups := GroupByZone(nodes)
	if len(zones) == 0 {
		return NewGlobalForce(z.cfg).Apply(nodes, links)
	}

	c := z.cfg
	areas := ZoneAreas(zones, c.Width, c.Height)
	byZone := lo.KeyBy(areas, func(a model.ZoneArea) string { return a.Zone })

	for _, zone := range zones {
		z.place(groups[zone], byZone[zone])
	}

	sim := newSimulation(ModeZone, nodes)
	sim.ZoneAreas = areas
	sim.Forces = []ForceSpec{
		{Name: "link", Kind: ForceLink, Distance: c.LinkDistance * zoneLinkDistanceRate, Strength: 0.4},
		{Name: "charge", Kind: ForceManyBody, Strength: c.Charge * zoneChargeRate},
		{Name: "collision", Kind: ForceCollide, Radius: c.NodeRadius * 2.5},
		{Name: "zone", Kind: ForceZoneBoundary, Strength: boundaryStrength, Radius: c.NodeRadius * 3},
		{Name: "zoneCenter", Kind: ForceZoneCenter, Strength: zoneCenterStrength},
	}
	sim.custom = []TickForce{
		&BoundaryForce{groups: groups, areas: byZone, margin: c.NodeRadius * 3},
		&ZoneCenterForce{groups: groups, areas: byZone},
	}
	return sim
}

func (z *ZonePartitioned) place(nodes []*model.Node, area model.ZoneArea) {
	if len(nodes) == 1 {
		nodes[0].X, nodes[0].Y = area.CenterX, area.CenterY
		return
	}

	margin := z.cfg.NodeRadius * 2
	radius := math.Min(area.Width, area.Height) * zoneRingFactor
	count := float64(len(nodes))
	for i, n := range nodes {
		h := HashString(nodeKey(n))
		angle := 2*math.Pi*float64(h%1000)/1000 + 2*math.Pi*float64(i)/count

		n.X = clamp(area.CenterX+radius*math.Cos(angle), area.X+margin, area.X+area.Width-margin)
		n.Y = clamp(area.CenterY+radius*math.Sin(angle), area.Y+margin, area.Y+area.Height-margin)
		n.VX, n.VY = 0, 0
	}
}

// GroupByZone groups nodes by zone in order of first appearance. A node with
// no zone belongs to the placeholder zone.
func GroupByZone(nodes []*model.Node) ([]string, map[string][]*model.Node) {
	zoneOf := func(n *model.Node) string {
		return lo.CoalesceOrEmpty(n.Zone, model.UnknownZone)
	}
	zones := lo.Uniq(lo.Map(nodes, func(n *model.Node, _ int) string { return zoneOf(n) }))
	return zones, lo.GroupBy(nodes, zoneOf)
}

// ZoneAreas splits a width x height canvas into one padded cell per zone:
// side by side halves for up to two zones, a 2x2 grid for up to four and a
// near-square grid beyond that.
func ZoneAreas(zones []string, width, height float64) []model.ZoneArea {
	n := len(zones)
	if n == 0 {
		return nil
	}

	var cols, rows int
	switch {
	case n <= 2:
		cols, rows = 2, 1
	case n <= 4:
		cols = 2
		rows = (n + cols - 1) / cols
	default:
		cols = int(math.Ceil(math.Sqrt(float64(n))))
		rows = (n + cols - 1) / cols
	}

	areaWidth := math.Max(0, (width-zonePadding*float64(cols+1))/float64(cols))
	areaHeight := math.Max(0, (height-zonePadding*float64(rows+1))/float64(rows))

	areas := make([]model.ZoneArea, 0, n)
	for i, zone := range zones {
		col, row := i%cols, i/cols
		x := zonePadding + float64(col)*(areaWidth+zonePadding)
		y := zonePadding + float64(row)*(areaHeight+zonePadding)
		areas = append(areas, model.ZoneArea{
			Zone:    zone,
			X:       x,
			Y:       y,
			Width:   areaWidth,
			Height:  areaHeight,
			CenterX: x + areaWidth/2,
			CenterY: y + areaHeight/2,
		})
	}
	return areas
}

// BoundaryForce pushes nodes that left their zone cell back toward the cell
// margin. A node never ends a tick more than boundaryTolerance outside it.
type BoundaryForce struct {
	groups map[string][]*model.Node
	areas  map[string]model.ZoneArea
	margin float64
}

func (f *BoundaryForce) Apply(alpha float64) {
	for zone, nodes := range f.groups {
		area := f.areas[zone]
		minX, maxX := area.X+f.margin, area.X+area.Width-f.margin
		minY, maxY := area.Y+f.margin, area.Y+area.Height-f.margin

		for _, n := range nodes {
			if n.X < minX {
				n.VX += (minX - n.X) * alpha * boundaryStrength
				n.X = math.Max(n.X, minX-boundaryTolerance)
			} else if n.X > maxX {
				n.VX += (maxX - n.X) * alpha * boundaryStrength
				n.X = math.Min(n.X, maxX+boundaryTolerance)
			}

			if n.Y < minY {
				n.VY += (minY - n.Y) * alpha * boundaryStrength
				n.Y = math.Max(n.Y, minY-boundaryTolerance)
			} else if n.Y > maxY {
				n.VY += (maxY - n.Y) * alpha * boundaryStrength
				n.Y = math.Min(n.Y, maxY+boundaryTolerance)
			}
		}
	}
}

// ZoneCenterForce pulls every node toward the centroid of its zone cell.
type ZoneCenterForce struct {
	groups map[string][]*model.Node
	areas  map[string]model.ZoneArea
}

func (f *ZoneCenterForce) Apply(alpha float64) {
	for zone, nodes := range f.groups {
		area := f.areas[zone]
		for _, n := range nodes {
			n.VX += (area.CenterX - n.X) * zoneCenterStrength * alpha
			n.VY += (area.CenterY - n.Y) * zoneCenterStrength * alpha
		}
	}
}
