package engine

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"firewall-network-graph/internal/model"
)

// FilterRecords keeps the records that pass every active filter. List filters
// are inclusion tests on the raw field; IP filters are case-sensitive
// substring matches.
func FilterRecords(records []model.Record, filters model.Filters) []model.Record {
	if filters.IsEmpty() {
		return records
	}
	return lo.Filter(records, func(rec model.Record, _ int) bool {
		return matches(&rec, filters)
	})
}

func matches(rec *model.Record, f model.Filters) bool {
	return matchList(f.SourceZone, rec.SourceZone) &&
		matchList(f.TargetZone, rec.TargetZone) &&
		matchList(f.Service, rec.Service) &&
		matchSubstring(f.SourceIP, rec.SourceIP) &&
		matchSubstring(f.TargetIP, rec.TargetIP)
}

func matchList(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	return lo.Contains(allowed, value)
}

func matchSubstring(needle, value string) bool {
	if needle == "" {
		return true
	}
	return value != "" && strings.Contains(value, needle)
}

// BuildFilteredGraph filters, builds and classifies in one step.
func BuildFilteredGraph(records []model.Record, filters model.Filters) *model.Graph {
	g := BuildGraph(FilterRecords(records, filters))
	g.Links = ClassifyEdges(g.Links)
	return g
}

// Options lists the distinct non-empty values of the filterable columns in
// order of first occurrence.
func Options(records []model.Record) model.FilterOptions {
	column := func(get func(model.Record) string) []string {
		return lo.Uniq(lo.Compact(lo.Map(records, func(rec model.Record, _ int) string {
			return get(rec)
		})))
	}
	return model.FilterOptions{
		SourceZones:          column(func(r model.Record) string { return r.SourceZone }),
		TargetZones:          column(func(r model.Record) string { return r.TargetZone }),
		Services:             column(func(r model.Record) string { return r.Service }),
		RequestUnits:         column(func(r model.Record) string { return r.RequestUnit }),
		ApplicationScenarios: column(func(r model.Record) string { return r.ApplicationScenario }),
	}
}

// FindRecord looks a record up by its recordId.
func FindRecord(records []model.Record, recordID int) (model.Record, bool) {
	return lo.Find(records, func(rec model.Record) bool {
		return rec.RecordID == recordID
	})
}

// Shape is the coarse summary the update watcher compares between polls.
type Shape struct {
	Nodes int      `json:"nodes"`
	Links int      `json:"links"`
	Zones []string `json:"zones"`
}

// ShapeOf summarizes g. Zones are sorted so the comparison ignores order.
func ShapeOf(g *model.Graph) Shape {
	zones := append([]string(nil), g.Zones...)
	slices.Sort(zones)
	return Shape{Nodes: len(g.Nodes), Links: len(g.Links), Zones: zones}
}

func (s Shape) Equal(o Shape) bool {
	return s.Nodes == o.Nodes && s.Links == o.Links && slices.Equal(s.Zones, o.Zones)
}
