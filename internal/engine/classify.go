package engine

import (
	"github.com/samber/lo"

	"firewall-network-graph/internal/model"
)

// ClassifyEdges groups links by unordered host pair and returns annotated
// copies. The input slice and its edges are left untouched. Group order is
// the encounter order in links.
func ClassifyEdges(links []*model.Edge) []*model.Edge {
	groups := lo.GroupBy(links, func(e *model.Edge) model.PairKey {
		return e.PairKey()
	})

	type groupInfo struct {
		ports    []string
		services []string
	}
	infos := make(map[model.PairKey]groupInfo, len(groups))
	for key, members := range groups {
		if len(members) < 2 {
			continue
		}
		infos[key] = groupInfo{
			ports:    lo.Uniq(lo.Map(members, func(e *model.Edge, _ int) string { return edgePort(e) })),
			services: lo.Uniq(lo.Map(members, func(e *model.Edge, _ int) string { return edgeService(e) })),
		}
	}

	seen := make(map[model.PairKey]int, len(groups))
	out := make([]*model.Edge, 0, len(links))
	for _, link := range links {
		c := *link
		c.MultiEdge = nil
		c.IsMultiple = false
		c.HasMultiplePorts = false

		key := link.PairKey()
		total := len(groups[key])
		if total > 1 {
			info := infos[key]
			c.IsMultiple = true
			c.HasMultiplePorts = len(info.ports) > 1
			c.MultiEdge = &model.MultiEdge{
				MultipleIndex:  seen[key],
				MultipleTotal:  total,
				AllPorts:       info.ports,
				AllServices:    info.services,
				CurrentPort:    edgePort(link),
				CurrentService: edgeService(link),
			}
			seen[key]++
		}
		out = append(out, &c)
	}
	return out
}

// GroupOf returns the members of the multi-edge group that edge belongs to,
// in encounter order.
func GroupOf(links []*model.Edge, edge *model.Edge) []*model.Edge {
	key := edge.PairKey()
	return lo.Filter(links, func(e *model.Edge, _ int) bool {
		return e.PairKey() == key
	})
}

// ReverseSibling returns the first other edge running target to source, if any.
func ReverseSibling(links []*model.Edge, edge *model.Edge) *model.Edge {
	sibling, ok := lo.Find(links, func(e *model.Edge) bool {
		return e.Source == edge.Target && e.Target == edge.Source && e.ID != edge.ID
	})
	if !ok {
		return nil
	}
	return sibling
}

func edgePort(e *model.Edge) string {
	if e.Record == nil || e.Record.TargetPort == "" {
		return model.UnknownValue
	}
	return e.Record.TargetPort
}

func edgeService(e *model.Edge) string {
	if e.Record == nil || e.Record.Service == "" {
		return model.UnknownValue
	}
	return e.Record.Service
}
