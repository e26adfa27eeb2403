package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"firewall-network-graph/internal/model"
)

func multi(index, total int, multiPort bool) *model.Edge {
	return &model.Edge{
		IsMultiple:       true,
		HasMultiplePorts: multiPort,
		MultiEdge:        &model.MultiEdge{MultipleIndex: index, MultipleTotal: total},
	}
}

func TestDashArray(t *testing.T) {
	assert.Equal(t, "", DashArray(&model.Edge{}))

	want := []string{"", "5,5", "10,5", "15,5,5,5", "3,3", "2,2", "2,2"}
	for i, w := range want {
		assert.Equal(t, w, DashArray(multi(i, len(want), false)), "index %d", i)
	}

	for i := range 3 {
		assert.Equal(t, "5,5", DashArray(multi(i, 3, true)))
	}
}

func TestStrokeWidth(t *testing.T) {
	assert.Equal(t, 1.5, StrokeWidth(&model.Edge{}))
	assert.Equal(t, 2.0, StrokeWidth(multi(0, 2, false)))
}

func TestNodeRoles(t *testing.T) {
	links := []*model.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "a", Target: "c"},
	}
	roles := NodeRoles(links)

	assert.Equal(t, RoleSource, RoleOf(roles, "a"))
	assert.Equal(t, RoleBoth, RoleOf(roles, "b"))
	assert.Equal(t, RoleTarget, RoleOf(roles, "c"))
	assert.Equal(t, RoleTarget, RoleOf(roles, "lonely"))

	assert.Equal(t, "#8b5cf6", NodeColor(RoleBoth))
	assert.Equal(t, "#3b82f6", NodeColor(RoleSource))
	assert.Equal(t, "#10b981", NodeColor("other"))
}
