package controller

import (
	"firewall-network-graph/internal/layout"
	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/selection"
)

// RenderedLink adds render hints to a classified edge.
type RenderedLink struct {
	*model.Edge
	Dash        string  `json:"dash,omitempty"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// RenderedNode adds the role color to a positioned node.
type RenderedNode struct {
	model.Node
	Role  layout.Role `json:"role"`
	Color string      `json:"color"`
}

// View is a point-in-time copy of the controller state, safe to use without
// holding the controller lock.
type View struct {
	Mode       layout.Mode                `json:"mode"`
	Nodes      []RenderedNode             `json:"nodes"`
	Links      []RenderedLink             `json:"links"`
	Zones      []string                   `json:"zones"`
	Services   []string                   `json:"services"`
	Stats      model.Stats                `json:"stats"`
	ZoneAreas  []model.ZoneArea           `json:"zoneAreas,omitempty"`
	ZoneColors map[string]model.ZoneColor `json:"zoneColors,omitempty"`
	Forces     []layout.ForceSpec         `json:"forces"`
	Seed       uint64                     `json:"seed"`
	Filters    model.Filters              `json:"filters"`
	EmptyState model.EmptyState           `json:"emptyState,omitempty"`
	Message    string                     `json:"message,omitempty"`
	Selection  selection.State            `json:"selection"`
	Highlight  *selection.Highlight       `json:"highlight,omitempty"`
}

// Snapshot copies the displayed graph, its layout and the selection.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.graph
	roles := layout.NodeRoles(g.Links)
	nodes := make([]RenderedNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		role := layout.RoleOf(roles, n.ID)
		rn := RenderedNode{Node: *n, Role: role, Color: layout.NodeColor(role)}
		rn.Connections = append([]string(nil), n.Connections...)
		nodes = append(nodes, rn)
	}
	links := make([]RenderedLink, 0, len(g.Links))
	for _, e := range g.Links {
		links = append(links, RenderedLink{Edge: e, Dash: layout.DashArray(e), StrokeWidth: layout.StrokeWidth(e)})
	}

	state := g.EmptyState()
	v := View{
		Mode:       c.mode,
		Nodes:      nodes,
		Links:      links,
		Zones:      g.Zones,
		Services:   g.Services,
		Stats:      g.Stats,
		Filters:    c.filters,
		EmptyState: state,
		Message:    state.Message(len(g.Nodes)),
		Selection:  c.selection.State(),
		Highlight:  c.selection.Highlight(),
	}
	if c.sim != nil {
		v.Mode = c.sim.Mode
		v.Forces = c.sim.Forces
		v.Seed = c.sim.Seed
		v.ZoneAreas = c.sim.ZoneAreas
		zones := make([]string, 0, len(c.sim.ZoneAreas))
		for _, a := range c.sim.ZoneAreas {
			zones = append(zones, a.Zone)
		}
		if len(zones) > 0 {
			v.ZoneColors = c.colors.Colors(zones)
		}
	}
	return v
}
