package selection

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"firewall-network-graph/internal/layout"
	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/utils"
	"firewall-network-graph/pkg/wellknown"
)

type ServiceCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

// NodeSummary is the detail panel content for a node.
type NodeSummary struct {
	Node     *model.Node    `json:"node"`
	Role     layout.Role    `json:"role"`
	Total    int            `json:"total"`
	Outbound int            `json:"outbound"`
	Inbound  int            `json:"inbound"`
	Services []ServiceCount `json:"services"`
}

func SummarizeNode(links []*model.Edge, n *model.Node) NodeSummary {
	related := lo.Filter(links, func(e *model.Edge, _ int) bool {
		return e.Source == n.ID || e.Target == n.ID
	})
	counts := lo.CountValuesBy(related, func(e *model.Edge) string { return e.Service })
	services := lo.Map(lo.Uniq(lo.Map(related, func(e *model.Edge, _ int) string { return e.Service })),
		func(s string, _ int) ServiceCount { return ServiceCount{Service: s, Count: counts[s]} })

	return NodeSummary{
		Node:     n,
		Role:     layout.RoleOf(layout.NodeRoles(links), n.ID),
		Total:    len(related),
		Outbound: lo.CountBy(related, func(e *model.Edge) bool { return e.Source == n.ID }),
		Inbound:  lo.CountBy(related, func(e *model.Edge) bool { return e.Target == n.ID }),
		Services: services,
	}
}

type Kind string

const (
	KindSingle    Kind = "single"
	KindMultiPort Kind = "multi-port"
	KindDuplicate Kind = "duplicate"
)

// PortInfo is one port token with its well-known service name, if any.
type PortInfo struct {
	Port string `json:"port"`
	Name string `json:"name,omitempty"`
}

// LinkDetail is the detail panel content for the displayed group member.
type LinkDetail struct {
	Link     *model.Edge   `json:"link"`
	Record   *model.Record `json:"record"`
	Kind     Kind          `json:"kind"`
	Position int           `json:"position"`
	Total    int           `json:"total"`
	Label    string        `json:"label"`
	Service  string        `json:"service"`
	Ports    []PortInfo    `json:"ports"`
	HasPrev  bool          `json:"hasPrev"`
	HasNext  bool          `json:"hasNext"`
	Dash     string        `json:"dash,omitempty"`
}

// NodeDetail summarizes the selected node, or returns false when no node is selected.
func (m *Machine) NodeDetail() (NodeSummary, bool) {
	if m.state != NodeSelected {
		return NodeSummary{}, false
	}
	return SummarizeNode(m.graph.Links, m.node), true
}

// LinkDetail describes the group member under the cursor.
func (m *Machine) LinkDetail() (LinkDetail, bool) {
	e := m.Current()
	if e == nil {
		return LinkDetail{}, false
	}

	d := LinkDetail{
		Link:     e,
		Record:   e.Record,
		Kind:     KindSingle,
		Position: m.cursor + 1,
		Total:    len(m.group),
		HasPrev:  m.cursor > 0,
		HasNext:  m.cursor < len(m.group)-1,
		Dash:     layout.DashArray(e),
	}
	if e.IsMultiple {
		d.Kind = KindDuplicate
		if e.HasMultiplePorts {
			d.Kind = KindMultiPort
		}
		d.Label = fmt.Sprintf("%s %d/%d", d.Kind, d.Position, d.Total)
	}

	var rawPorts []string
	switch {
	case e.HasMultiplePorts && e.MultiEdge != nil:
		rawPorts = e.AllPorts
	case e.Record != nil && e.Record.TargetPort != "":
		rawPorts = []string{e.Record.TargetPort}
	}
	d.Ports = describePorts(rawPorts)

	d.Service = model.UnknownValue
	switch {
	case e.HasMultiplePorts && e.MultiEdge != nil && len(e.AllServices) > 1:
		d.Service = strings.Join(e.AllServices, ",")
	case e.Record != nil && e.Record.Service != "":
		d.Service = e.Record.Service
	}
	return d, true
}

func describePorts(raw []string) []PortInfo {
	out := []PortInfo{}
	for _, r := range raw {
		for _, p := range utils.SplitPorts(r) {
			if p == "" {
				continue
			}
			name, _ := wellknown.NameForPort(p)
			out = append(out, PortInfo{Port: p, Name: name})
		}
	}
	return out
}
