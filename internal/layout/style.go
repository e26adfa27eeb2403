package layout

import "firewall-network-graph/internal/model"

// Role is how a node participates in the current link set.
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
	RoleBoth   Role = "both"
)

var roleColors = map[Role]string{
	RoleSource: "#3b82f6",
	RoleTarget: "#10b981",
	RoleBoth:   "#8b5cf6",
}

// NodeRoles derives each linked node's role from edge directions. Nodes
// without links are absent and render as targets.
func NodeRoles(links []*model.Edge) map[string]Role {
	roles := make(map[string]Role)
	mark := func(id string, r Role) {
		switch prev, ok := roles[id]; {
		case !ok:
			roles[id] = r
		case prev != r:
			roles[id] = RoleBoth
		}
	}
	for _, l := range links {
		mark(l.Source, RoleSource)
		mark(l.Target, RoleTarget)
	}
	return roles
}

func RoleOf(roles map[string]Role, id string) Role {
	if r, ok := roles[id]; ok {
		return r
	}
	return RoleTarget
}

func NodeColor(r Role) string {
	if c, ok := roleColors[r]; ok {
		return c
	}
	return roleColors[RoleTarget]
}

var dashPatterns = []string{"", "5,5", "10,5", "15,5,5,5", "3,3"}

const fallbackDash = "2,2"

// DashArray returns the stroke dash pattern for a classified edge. Single
// edges and the first member of a same-port group are solid (""). Every
// member of a multi-port group uses "5,5".
func DashArray(e *model.Edge) string {
	if !e.IsMultiple || e.MultiEdge == nil {
		return ""
	}
	if e.HasMultiplePorts {
		return "5,5"
	}
	if e.MultipleIndex < len(dashPatterns) {
		return dashPatterns[e.MultipleIndex]
	}
	return fallbackDash
}

// StrokeWidth is thicker for edges that share their host pair.
func StrokeWidth(e *model.Edge) float64 {
	if e.IsMultiple {
		return 2
	}
	return 1.5
}
