package selection

import (
	"fmt"
	"slices"

	"firewall-network-graph/internal/engine"
	"firewall-network-graph/internal/model"
)

type State int

const (
	Idle State = iota
	NodeSelected
	LinkSelected
)

func (s State) String() string {
	switch s {
	case NodeSelected:
		return "node_selected"
	case LinkSelected:
		return "link_selected"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "node_selected":
		*s = NodeSelected
	case "link_selected":
		*s = LinkSelected
	default:
		return fmt.Errorf("unknown selection state: %q", text)
	}
	return nil
}

// Highlight is the set of nodes and links to emphasize. Everything else dims.
type Highlight struct {
	Focus string   `json:"focus"`
	Nodes []string `json:"nodes"`
	Links []string `json:"links"`
}

func (h *Highlight) HasNode(id string) bool {
	return h != nil && slices.Contains(h.Nodes, id)
}

func (h *Highlight) HasLink(id string) bool {
	return h != nil && slices.Contains(h.Links, id)
}

// Machine tracks the selected node or link of one graph. It is not safe for
// concurrent use; the controller serializes access.
type Machine struct {
	graph *model.Graph

	state  State
	node   *model.Node
	link   *model.Edge
	group  []*model.Edge
	cursor int

	highlight *Highlight
}

// New returns an idle machine over g. g's links should already be classified.
func New(g *model.Graph) *Machine {
	if g == nil {
		g = &model.Graph{}
	}
	return &Machine{graph: g}
}

// Reset swaps in a rebuilt graph. The selection is cleared first so it never
// points into the old graph.
func (m *Machine) Reset(g *model.Graph) {
	m.Clear()
	if g == nil {
		g = &model.Graph{}
	}
	m.graph = g
}

func (m *Machine) State() State { return m.state }

func (m *Machine) SelectedNode() *model.Node { return m.node }

func (m *Machine) SelectedLink() *model.Edge { return m.link }

func (m *Machine) Cursor() int { return m.cursor }

func (m *Machine) Group() []*model.Edge { return m.group }

// Current is the group member shown in the detail panel.
func (m *Machine) Current() *model.Edge {
	if m.state != LinkSelected || len(m.group) == 0 {
		return nil
	}
	return m.group[m.cursor]
}

// Highlight returns the highlight set of the active selection, or nil when idle.
func (m *Machine) Highlight() *Highlight { return m.highlight }

// ClickNode selects the node with id. Unknown ids leave the state unchanged.
func (m *Machine) ClickNode(id string) bool {
	n := m.graph.NodeByID(id)
	if n == nil {
		return false
	}
	m.Clear()
	m.state = NodeSelected
	m.node = n
	m.recompute()
	return true
}

// ClickLink selects the link with id and its multi-edge group, with the
// cursor on the clicked member so the panel and the highlight agree.
func (m *Machine) ClickLink(id string) bool {
	e := m.graph.EdgeByID(id)
	if e == nil {
		return false
	}

	m.Clear()
	m.state = LinkSelected
	m.link = e
	m.group = engine.GroupOf(m.graph.Links, e)
	m.cursor = max(0, slices.IndexFunc(m.group, func(g *model.Edge) bool { return g.ID == e.ID }))
	m.recompute()
	return true
}

// Next moves the group cursor forward. It does not wrap.
func (m *Machine) Next() bool {
	return m.moveTo(m.cursor + 1)
}

// Prev moves the group cursor back. It does not wrap.
func (m *Machine) Prev() bool {
	return m.moveTo(m.cursor - 1)
}

func (m *Machine) moveTo(index int) bool {
	if m.state != LinkSelected || index < 0 || index >= len(m.group) {
		return false
	}
	m.cursor = index
	m.link = m.group[index]
	m.recompute()
	return true
}

// ClickBackground and Close both drop the selection.
func (m *Machine) ClickBackground() { m.Clear() }

func (m *Machine) Close() { m.Clear() }

func (m *Machine) Clear() {
	m.state = Idle
	m.node = nil
	m.link = nil
	m.group = nil
	m.cursor = 0
	m.highlight = nil
}

// HoverNode returns the transient highlight for hovering a node. It is nil
// while a selection is active.
func (m *Machine) HoverNode(id string) *Highlight {
	if m.state != Idle {
		return nil
	}
	n := m.graph.NodeByID(id)
	if n == nil {
		return nil
	}
	return computeHighlight(m.graph.Links, n, nil)
}

// HoverLink is HoverNode for links.
func (m *Machine) HoverLink(id string) *Highlight {
	if m.state != Idle {
		return nil
	}
	e := m.graph.EdgeByID(id)
	if e == nil {
		return nil
	}
	return computeHighlight(m.graph.Links, nil, e)
}

func (m *Machine) recompute() {
	switch m.state {
	case NodeSelected:
		m.highlight = computeHighlight(m.graph.Links, m.node, nil)
	case LinkSelected:
		m.highlight = computeHighlight(m.graph.Links, nil, m.link)
	default:
		m.highlight = nil
	}
}

// computeHighlight is the one place highlight sets are derived, for both
// selection and hover. A node focus covers its closed neighborhood; a link
// focus covers its endpoints. Each highlighted link brings its reverse sibling.
func computeHighlight(links []*model.Edge, node *model.Node, link *model.Edge) *Highlight {
	h := &Highlight{Nodes: []string{}, Links: []string{}}
	addNode := func(id string) {
		if !slices.Contains(h.Nodes, id) {
			h.Nodes = append(h.Nodes, id)
		}
	}
	addLink := func(e *model.Edge) {
		if !slices.Contains(h.Links, e.ID) {
			h.Links = append(h.Links, e.ID)
		}
		if rev := engine.ReverseSibling(links, e); rev != nil && !slices.Contains(h.Links, rev.ID) {
			h.Links = append(h.Links, rev.ID)
		}
	}

	switch {
	case node != nil:
		h.Focus = node.ID
		addNode(node.ID)
		for _, e := range links {
			switch node.ID {
			case e.Source:
				addNode(e.Target)
				addLink(e)
			case e.Target:
				addNode(e.Source)
				addLink(e)
			}
		}
	case link != nil:
		h.Focus = link.ID
		addNode(link.Source)
		addNode(link.Target)
		addLink(link)
	}
	return h
}
