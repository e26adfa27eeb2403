package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewall-network-graph/internal/model"
)

func TestBuildGraphEndToEnd(t *testing.T) {
	records := []model.Record{{
		RecordID:   1,
		SourceIP:   "10.0.0.1",
		TargetIP:   "10.0.0.2",
		SourceZone: "DMZ",
		TargetZone: "LAN",
		Service:    "HTTPS",
		TargetPort: "443",
	}}

	g := BuildGraph(records)
	g.Links = ClassifyEdges(g.Links)

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Links, 1)
	assert.ElementsMatch(t, []string{"DMZ", "LAN"}, g.Zones)
	assert.Equal(t, []string{"HTTPS"}, g.Services)
	assert.Equal(t, model.Stats{TotalNodes: 2, TotalLinks: 1, TotalZones: 2, TotalServices: 1}, g.Stats)

	link := g.Links[0]
	assert.Equal(t, "10.0.0.1-10.0.0.2-0", link.ID)
	assert.Equal(t, []string{"443"}, link.Ports)
	assert.False(t, link.IsMultiple)
	assert.Nil(t, link.MultiEdge)
	assert.Same(t, &records[0], link.Record)

	src := g.NodeByID("10.0.0.1")
	require.NotNil(t, src)
	assert.Equal(t, model.SourceNode, src.Type)
	assert.Equal(t, []string{"10.0.0.2"}, src.Connections)
	dst := g.NodeByID("10.0.0.2")
	require.NotNil(t, dst)
	assert.Equal(t, model.TargetNode, dst.Type)
}

func TestBuildGraphZoneMerge(t *testing.T) {
	tests := []struct {
		name     string
		records  []model.Record
		ip       string
		wantZone string
		wantType model.NodeType
	}{
		{
			name: "source side overwrites with any known zone",
			records: []model.Record{
				{SourceIP: "10.0.0.1", TargetIP: "10.0.0.9", SourceZone: "DMZ"},
				{SourceIP: "10.0.0.1", TargetIP: "10.0.0.9", SourceZone: "LAN"},
			},
			ip:       "10.0.0.1",
			wantZone: "LAN",
			wantType: model.SourceNode,
		},
		{
			name: "source side ignores the placeholder",
			records: []model.Record{
				{SourceIP: "10.0.0.1", TargetIP: "10.0.0.9", SourceZone: "DMZ"},
				{SourceIP: "10.0.0.1", TargetIP: "10.0.0.9"},
			},
			ip:       "10.0.0.1",
			wantZone: "DMZ",
			wantType: model.SourceNode,
		},
		{
			name: "target side keeps a resolved zone",
			records: []model.Record{
				{SourceIP: "10.0.0.9", TargetIP: "10.0.0.2", TargetZone: "DMZ"},
				{SourceIP: "10.0.0.9", TargetIP: "10.0.0.2", TargetZone: "LAN"},
			},
			ip:       "10.0.0.2",
			wantZone: "DMZ",
			wantType: model.TargetNode,
		},
		{
			name: "target side resolves the placeholder",
			records: []model.Record{
				{SourceIP: "10.0.0.9", TargetIP: "10.0.0.2"},
				{SourceIP: "10.0.0.9", TargetIP: "10.0.0.2", TargetZone: "LAN"},
			},
			ip:       "10.0.0.2",
			wantZone: "LAN",
			wantType: model.TargetNode,
		},
		{
			name: "type is fixed at first sighting",
			records: []model.Record{
				{SourceIP: "10.0.0.9", TargetIP: "10.0.0.2", TargetZone: "DMZ"},
				{SourceIP: "10.0.0.2", TargetIP: "10.0.0.9", SourceZone: "LAN"},
			},
			ip:       "10.0.0.2",
			wantZone: "LAN",
			wantType: model.TargetNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildGraph(tt.records)
			n := g.NodeByID(tt.ip)
			require.NotNil(t, n)
			assert.Equal(t, tt.wantZone, n.Zone)
			assert.Equal(t, tt.wantType, n.Type)
			assert.Len(t, g.Nodes, 2)
		})
	}
}

func TestBuildGraphLastNonEmptyWins(t *testing.T) {
	records := []model.Record{
		{SourceIP: "10.0.0.1", TargetIP: "10.0.0.2", SourceHostname: "web01", TargetDomain: "a.example"},
		{SourceIP: "10.0.0.1", TargetIP: "10.0.0.2", SourceRegion: "TPE", TargetObject: "db"},
		{SourceIP: "10.0.0.1", TargetIP: "10.0.0.2", SourceHostname: "web02"},
	}

	g := BuildGraph(records)
	src := g.NodeByID("10.0.0.1")
	dst := g.NodeByID("10.0.0.2")

	assert.Equal(t, "web02", src.Hostname)
	assert.Equal(t, "TPE", src.Region)
	assert.Equal(t, "a.example", dst.Domain)
	assert.Equal(t, "db", dst.Object)
	assert.Len(t, src.Connections, 3)
	assert.Len(t, g.Links, 3)
}

func TestBuildGraphInvalidIPs(t *testing.T) {
	records := []model.Record{
		{SourceIP: "10.0.0.1", TargetIP: "db.example.com", SourceZone: "DMZ", TargetZone: "Cloud", Service: "SQL"},
		{SourceIP: "10.0.0.0/24", TargetIP: "10.0.1.1-10.0.1.5", TargetPort: "80, 443"},
	}

	g := BuildGraph(records)

	assert.Len(t, g.Nodes, 3, "valid side of a half-valid record still becomes a node")
	require.Len(t, g.Links, 1)
	assert.Equal(t, "10.0.0.0/24-10.0.1.1-10.0.1.5-1", g.Links[0].ID)
	assert.Equal(t, []string{"80", "443"}, g.Links[0].Ports)
	assert.Equal(t, model.UnknownService, g.Links[0].Service)
	assert.Equal(t, []string{"DMZ", "Cloud", model.UnknownZone}, g.Zones)
	assert.Equal(t, []string{"SQL", model.UnknownService}, g.Services)
	assert.Empty(t, g.NodeByID("10.0.0.1").Connections)
}

func TestBuildGraphUniqueEdgeIDs(t *testing.T) {
	rec := model.Record{SourceIP: "10.0.0.1", TargetIP: "10.0.0.2"}
	g := BuildGraph([]model.Record{rec, rec, rec})

	ids := map[string]bool{}
	for _, l := range g.Links {
		ids[l.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(nil)

	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Links)
	assert.Equal(t, model.Stats{}, g.Stats)
	assert.Equal(t, model.EmptyAll, g.EmptyState())
}
