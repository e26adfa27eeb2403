package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewall-network-graph/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{RecordID: 1, SourceIP: "10.0.0.1", TargetIP: "10.0.1.1", SourceZone: "DMZ", TargetZone: "LAN", Service: "HTTPS", TargetPort: "443", RequestUnit: "IT"},
		{RecordID: 2, SourceIP: "10.0.0.2", TargetIP: "10.0.1.1", SourceZone: "DMZ", TargetZone: "LAN", Service: "SSH", TargetPort: "22", ApplicationScenario: "ops"},
		{RecordID: 3, SourceIP: "192.168.1.5", TargetIP: "10.0.2.1", SourceZone: "Office", TargetZone: "Server Farm", Service: "HTTPS", TargetPort: "443", RequestUnit: "HR"},
		{RecordID: 4, SourceIP: "192.168.1.6", TargetIP: "10.0.2.1", Service: "", TargetPort: "", RequestUnit: "IT"},
	}
}

func TestFilterRecords(t *testing.T) {
	records := sampleRecords()
	tests := []struct {
		name    string
		filters model.Filters
		wantIDs []int
	}{
		{"empty filter keeps everything", model.Filters{}, []int{1, 2, 3, 4}},
		{"source zone inclusion", model.Filters{SourceZone: []string{"DMZ"}}, []int{1, 2}},
		{"target zone inclusion", model.Filters{TargetZone: []string{"Server Farm", "Nowhere"}}, []int{3}},
		{"service inclusion", model.Filters{Service: []string{"HTTPS"}}, []int{1, 3}},
		{"source ip substring", model.Filters{SourceIP: "192.168"}, []int{3, 4}},
		{"target ip substring", model.Filters{TargetIP: "10.0.1."}, []int{1, 2}},
		{"combined", model.Filters{Service: []string{"HTTPS"}, SourceIP: "10.0"}, []int{1}},
		{"nothing matches", model.Filters{SourceIP: "172.16"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRecords(records, tt.filters)
			var ids []int
			for _, r := range got {
				ids = append(ids, r.RecordID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestBuildFilteredGraphEmptyFilterMatchesUnfiltered(t *testing.T) {
	records := sampleRecords()

	full := BuildGraph(records)
	full.Links = ClassifyEdges(full.Links)
	filtered := BuildFilteredGraph(records, model.Filters{})

	a, err := json.Marshal(full)
	require.NoError(t, err)
	b, err := json.Marshal(filtered)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestBuildFilteredGraphIsRepeatable(t *testing.T) {
	records := sampleRecords()
	filters := model.Filters{SourceZone: []string{"DMZ"}}

	first, err := json.Marshal(BuildFilteredGraph(records, filters))
	require.NoError(t, err)
	second, err := json.Marshal(BuildFilteredGraph(records, filters))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestBuildFilteredGraphNoMatch(t *testing.T) {
	g := BuildFilteredGraph(sampleRecords(), model.Filters{SourceIP: "172.16"})

	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)
	assert.Equal(t, model.Stats{}, g.Stats)
	assert.Equal(t, model.EmptyAll, g.EmptyState())

	out, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"nodes":[]`)
	assert.Contains(t, string(out), `"links":[]`)
}

func TestOptions(t *testing.T) {
	opts := Options(sampleRecords())

	assert.Equal(t, []string{"DMZ", "Office"}, opts.SourceZones)
	assert.Equal(t, []string{"LAN", "Server Farm"}, opts.TargetZones)
	assert.Equal(t, []string{"HTTPS", "SSH"}, opts.Services)
	assert.Equal(t, []string{"IT", "HR"}, opts.RequestUnits)
	assert.Equal(t, []string{"ops"}, opts.ApplicationScenarios)
}

func TestFindRecord(t *testing.T) {
	rec, ok := FindRecord(sampleRecords(), 3)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.5", rec.SourceIP)

	_, ok = FindRecord(sampleRecords(), 42)
	assert.False(t, ok)
}

func TestShapeEqual(t *testing.T) {
	a := ShapeOf(&model.Graph{Nodes: make([]*model.Node, 2), Zones: []string{"b", "a"}})
	b := ShapeOf(&model.Graph{Nodes: make([]*model.Node, 2), Zones: []string{"a", "b"}})
	c := ShapeOf(&model.Graph{Nodes: make([]*model.Node, 2), Zones: []string{"a", "c"}})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestShapeJSON(t *testing.T) {
	s := ShapeOf(&model.Graph{Nodes: make([]*model.Node, 3), Links: make([]*model.Edge, 2), Zones: []string{"LAN", "DMZ"}})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":3,"links":2,"zones":["DMZ","LAN"]}`, string(data))
}
