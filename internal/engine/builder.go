package engine

import (
	"log/slog"
	"strconv"

	"github.com/samber/lo"

	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/utils"
)

// nodeEntry carries the builder's working state for one node. allZones never
// leaves the builder.
type nodeEntry struct {
	node     *model.Node
	allZones map[string]struct{}
}

// GraphBuilder folds rule records into a deduplicated node set and an
// ordered edge list.
type GraphBuilder struct {
	nodes    map[string]*nodeEntry
	order    []string
	links    []*model.Edge
	zones    []string
	services []string
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{nodes: make(map[string]*nodeEntry)}
}

// BuildGraph is a single pass over records. Edges are emitted only when both
// IPs are valid tokens, but zones and services are collected from every record.
func BuildGraph(records []model.Record) *model.Graph {
	b := NewGraphBuilder()
	for i := range records {
		b.Add(i, &records[i])
	}
	return b.Graph()
}

// Add folds one record. index must be unique across the pass; it is folded
// into the edge ID.
func (b *GraphBuilder) Add(index int, rec *model.Record) {
	sourceZone := lo.CoalesceOrEmpty(rec.SourceZone, model.UnknownZone)
	targetZone := lo.CoalesceOrEmpty(rec.TargetZone, model.UnknownZone)
	service := lo.CoalesceOrEmpty(rec.Service, model.UnknownService)

	b.zones = append(b.zones, sourceZone, targetZone)
	b.services = append(b.services, service)

	sourceValid := utils.IsValidIPToken(rec.SourceIP)
	targetValid := utils.IsValidIPToken(rec.TargetIP)

	if sourceValid {
		b.upsertSource(rec, sourceZone)
	}
	if targetValid {
		b.upsertTarget(rec, targetZone)
	}
	if !sourceValid || !targetValid {
		return
	}

	ports := []string{}
	if rec.TargetPort != "" {
		ports = utils.SplitPorts(rec.TargetPort)
	}
	b.links = append(b.links, &model.Edge{
		ID:      rec.SourceIP + "-" + rec.TargetIP + "-" + strconv.Itoa(index),
		Source:  rec.SourceIP,
		Target:  rec.TargetIP,
		Service: service,
		Ports:   ports,
		Record:  rec,
	})
	b.nodes[rec.SourceIP].node.Connections = append(b.nodes[rec.SourceIP].node.Connections, rec.TargetIP)
	b.nodes[rec.TargetIP].node.Connections = append(b.nodes[rec.TargetIP].node.Connections, rec.SourceIP)
}

func (b *GraphBuilder) upsertSource(rec *model.Record, zone string) {
	entry, ok := b.nodes[rec.SourceIP]
	if !ok {
		b.create(&model.Node{
			ID:       rec.SourceIP,
			Type:     model.SourceNode,
			IP:       rec.SourceIP,
			Zone:     zone,
			Region:   rec.SourceRegion,
			Hostname: rec.SourceHostname,
			Object:   rec.SourceObject,
		}, zone)
		return
	}

	entry.allZones[zone] = struct{}{}
	n := entry.node
	if zone != model.UnknownZone {
		n.Zone = zone
	}
	n.Region = lo.CoalesceOrEmpty(rec.SourceRegion, n.Region)
	n.Hostname = lo.CoalesceOrEmpty(rec.SourceHostname, n.Hostname)
	n.Object = lo.CoalesceOrEmpty(rec.SourceObject, n.Object)
}

// upsertTarget only moves a node out of the placeholder zone; an already
// resolved zone is kept even if the target side disagrees.
func (b *GraphBuilder) upsertTarget(rec *model.Record, zone string) {
	entry, ok := b.nodes[rec.TargetIP]
	if !ok {
		b.create(&model.Node{
			ID:       rec.TargetIP,
			Type:     model.TargetNode,
			IP:       rec.TargetIP,
			Zone:     zone,
			Region:   rec.TargetRegion,
			Hostname: rec.TargetHostname,
			Domain:   rec.TargetDomain,
			Object:   rec.TargetObject,
		}, zone)
		return
	}

	entry.allZones[zone] = struct{}{}
	n := entry.node
	if zone != model.UnknownZone && n.Zone == model.UnknownZone {
		n.Zone = zone
	}
	n.Region = lo.CoalesceOrEmpty(rec.TargetRegion, n.Region)
	n.Hostname = lo.CoalesceOrEmpty(rec.TargetHostname, n.Hostname)
	n.Domain = lo.CoalesceOrEmpty(rec.TargetDomain, n.Domain)
	n.Object = lo.CoalesceOrEmpty(rec.TargetObject, n.Object)
}

func (b *GraphBuilder) create(n *model.Node, zone string) {
	n.Connections = []string{}
	b.nodes[n.ID] = &nodeEntry{node: n, allZones: map[string]struct{}{zone: {}}}
	b.order = append(b.order, n.ID)
}

// Graph returns the snapshot built so far.
func (b *GraphBuilder) Graph() *model.Graph {
	nodes := make([]*model.Node, 0, len(b.order))
	for _, id := range b.order {
		entry := b.nodes[id]
		if len(entry.allZones) > 1 {
			slog.Debug("Node seen in multiple zones", "ip", id, "zone", entry.node.Zone, "zone_count", len(entry.allZones))
		}
		nodes = append(nodes, entry.node)
	}

	links := b.links
	if links == nil {
		links = []*model.Edge{}
	}
	zones := lo.Uniq(b.zones)
	services := lo.Uniq(b.services)

	return &model.Graph{
		Nodes:    nodes,
		Links:    links,
		Zones:    zones,
		Services: services,
		Stats: model.Stats{
			TotalNodes:    len(nodes),
			TotalLinks:    len(links),
			TotalZones:    len(zones),
			TotalServices: len(services),
		},
	}
}
