package parser

import (
	"strings"

	"firewall-network-graph/internal/model"
)

// fieldSetters maps canonical field keys to the record field they populate.
var fieldSetters = map[string]func(*model.Record, string){
	"id":                  func(r *model.Record, v string) { r.RuleID = v },
	"sourcezone":          func(r *model.Record, v string) { r.SourceZone = v },
	"sourceregion":        func(r *model.Record, v string) { r.SourceRegion = v },
	"sourcehostname":      func(r *model.Record, v string) { r.SourceHostname = v },
	"sourceip":            func(r *model.Record, v string) { r.SourceIP = v },
	"sourceobject":        func(r *model.Record, v string) { r.SourceObject = v },
	"targetzone":          func(r *model.Record, v string) { r.TargetZone = v },
	"targetregion":        func(r *model.Record, v string) { r.TargetRegion = v },
	"targethostname":      func(r *model.Record, v string) { r.TargetHostname = v },
	"targetdomain":        func(r *model.Record, v string) { r.TargetDomain = v },
	"targetip":            func(r *model.Record, v string) { r.TargetIP = v },
	"targetport":          func(r *model.Record, v string) { r.TargetPort = v },
	"targetobject":        func(r *model.Record, v string) { r.TargetObject = v },
	"service":             func(r *model.Record, v string) { r.Service = v },
	"applicationscenario": func(r *model.Record, v string) { r.ApplicationScenario = v },
	"requestunit":         func(r *model.Record, v string) { r.RequestUnit = v },
	"responsible":         func(r *model.Record, v string) { r.Responsible = v },
	"requestnumber":       func(r *model.Record, v string) { r.RequestNumber = v },
}

// headerAliases holds the spreadsheet headers that do not reduce to a canonical
// key by case folding alone.
var headerAliases = map[string]string{
	"來源區域":              "sourcezone",
	"來源地區":              "sourceregion",
	"來源主機名稱":            "sourcehostname",
	"來源ip":              "sourceip",
	"來源對象":              "sourceobject",
	"目標區域":              "targetzone",
	"目標地區":              "targetregion",
	"目標主機名稱":            "targethostname",
	"目標網域":              "targetdomain",
	"目標ip":              "targetip",
	"目標埠號":              "targetport",
	"目標應用程式":            "targetobject",
	"服務":                "service",
	"應用場景":              "applicationscenario",
	"申請單位":              "requestunit",
	"負責人":               "responsible",
	"申請單號":              "requestnumber",
	"targetapplication": "targetobject",
	"destinationzone":   "targetzone",
	"destinationip":     "targetip",
	"destinationport":   "targetport",
	"srcip":             "sourceip",
	"dstip":             "targetip",
	"port":              "targetport",
}

func canonicalHeader(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if alias, ok := headerAliases[key]; ok {
		return alias
	}
	return key
}

// NormalizeRows maps a header row plus data rows onto records. Unknown headers
// are ignored. Record IDs are 1-based row positions assigned before rows that
// lack a source or target IP are dropped.
func NormalizeRows(rows [][]string) []model.Record {
	if len(rows) == 0 {
		return []model.Record{}
	}

	setters := make([]func(*model.Record, string), len(rows[0]))
	for i, header := range rows[0] {
		setters[i] = fieldSetters[canonicalHeader(header)]
	}

	records := make([]model.Record, 0, len(rows)-1)
	for index, row := range rows[1:] {
		rec := model.Record{RecordID: index + 1}
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, value)
			}
		}
		if rec.SourceIP == "" || rec.TargetIP == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}
