package controller

import (
	"fmt"

	"firewall-network-graph/internal/selection"
)

type Action string

const (
	ActionNode       Action = "node"
	ActionLink       Action = "link"
	ActionNext       Action = "next"
	ActionPrev       Action = "prev"
	ActionClear      Action = "clear"
	ActionHoverNode  Action = "hover_node"
	ActionHoverLink  Action = "hover_link"
	ActionBackground Action = "background"
)

// SelectionResult is the selection state after an interaction.
type SelectionResult struct {
	State     selection.State        `json:"state"`
	Changed   bool                   `json:"changed"`
	Highlight *selection.Highlight   `json:"highlight,omitempty"`
	Node      *selection.NodeSummary `json:"node,omitempty"`
	Link      *selection.LinkDetail  `json:"link,omitempty"`
}

// Interact applies one pointer interaction to the selection machine. Hover
// actions return a transient highlight and never change the state.
func (c *Controller) Interact(action Action, id string) (SelectionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.selection
	var res SelectionResult
	switch action {
	case ActionNode:
		res.Changed = m.ClickNode(id)
	case ActionLink:
		res.Changed = m.ClickLink(id)
	case ActionNext:
		res.Changed = m.Next()
	case ActionPrev:
		res.Changed = m.Prev()
	case ActionClear, ActionBackground:
		res.Changed = m.State() != selection.Idle
		m.Clear()
	case ActionHoverNode:
		res.State = m.State()
		res.Highlight = m.HoverNode(id)
		return res, nil
	case ActionHoverLink:
		res.State = m.State()
		res.Highlight = m.HoverLink(id)
		return res, nil
	default:
		return res, fmt.Errorf("unknown selection action: %q", action)
	}

	res.State = m.State()
	res.Highlight = m.Highlight()
	if d, ok := m.NodeDetail(); ok {
		res.Node = &d
	}
	if d, ok := m.LinkDetail(); ok {
		res.Link = &d
	}
	return res, nil
}
