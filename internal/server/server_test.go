package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewall-network-graph/internal/controller"
	"firewall-network-graph/internal/layout"
	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/parser"
)

const sampleCSV = `來源IP,目標IP,來源區域,目標區域,服務,目標埠號,申請單位
10.0.0.1,10.0.0.2,DMZ,LAN,HTTPS,443,IT
10.0.0.1,10.0.0.2,DMZ,LAN,SSH,22,IT
10.0.0.3,10.0.0.1,Server Farm,DMZ,DNS,53,NET
,10.0.0.9,DMZ,LAN,HTTPS,443,IT
`

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firewall.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ctrl := controller.New(parser.NewFileSource(path, parser.FormatAuto), layout.DefaultConfig(), layout.ModeGlobal)
	require.NoError(t, ctrl.Load(context.Background()))

	ts := httptest.NewServer(New(ctrl, controller.NewWatcher(ctrl, 0, 0)).Handler())
	t.Cleanup(ts.Close)
	return ts, path
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestFirewallData(t *testing.T) {
	ts, _ := newTestServer(t)

	var records []model.Record
	resp := getJSON(t, ts.URL+"/api/firewall-data", &records)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].RecordID)
	assert.Equal(t, "IT", records[0].RequestUnit)

	_, err := uuid.Parse(resp.Header.Get(requestIDHeader))
	assert.NoError(t, err)
}

func TestNetworkGraph(t *testing.T) {
	ts, _ := newTestServer(t)

	var g model.Graph
	resp := getJSON(t, ts.URL+"/api/network-graph", &g)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.Stats{TotalNodes: 3, TotalLinks: 3, TotalZones: 3, TotalServices: 3}, g.Stats)
	require.Len(t, g.Links, 3)
	require.NotNil(t, g.Links[0].MultiEdge)
	assert.Equal(t, []string{"443", "22"}, g.Links[0].AllPorts)
}

func TestFilteredGraph(t *testing.T) {
	ts, _ := newTestServer(t)

	var g model.Graph
	resp := postJSON(t, ts.URL+"/api/network-graph/filtered", `{"filters":{"sourceZone":["Server Farm"]}}`, &g)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, g.Stats.TotalNodes)
	assert.Equal(t, 1, g.Stats.TotalLinks)

	resp = postJSON(t, ts.URL+"/api/network-graph/filtered", `{"filters":{"sourceIP":"172.16"}}`, &g)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, g.Nodes)
	assert.Equal(t, model.Stats{}, g.Stats)

	resp = postJSON(t, ts.URL+"/api/network-graph/filtered", ``, &g)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, g.Stats.TotalNodes)

	resp = postJSON(t, ts.URL+"/api/network-graph/filtered", `{"filters":`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	long := strings.Repeat("1", 300)
	resp = postJSON(t, ts.URL+"/api/network-graph/filtered", `{"filters":{"sourceIP":"`+long+`"}}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFilterOptions(t *testing.T) {
	ts, _ := newTestServer(t)

	var opts model.FilterOptions
	getJSON(t, ts.URL+"/api/filter-options", &opts)
	assert.Equal(t, []string{"DMZ", "Server Farm"}, opts.SourceZones)
	assert.Equal(t, []string{"LAN", "DMZ"}, opts.TargetZones)
	assert.Equal(t, []string{"IT", "NET"}, opts.RequestUnits)
	assert.Empty(t, opts.ApplicationScenarios)
}

func TestRecordLookup(t *testing.T) {
	ts, _ := newTestServer(t)

	var rec model.Record
	resp := getJSON(t, ts.URL+"/api/record/3", &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10.0.0.3", rec.SourceIP)

	resp = getJSON(t, ts.URL+"/api/record/4", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "record 4 was dropped for a missing source IP")

	resp = getJSON(t, ts.URL+"/api/record/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMissingSourceIsNotFound(t *testing.T) {
	ts, path := newTestServer(t)
	require.NoError(t, os.Remove(path))

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/network-graph", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "firewall data source not found", body["error"])

	resp = postJSON(t, ts.URL+"/api/view/refresh", ``, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var view controller.View
	getJSON(t, ts.URL+"/api/view", &view)
	assert.Equal(t, 3, view.Stats.TotalNodes, "the last good graph stays displayed")
}

func TestLayoutEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var view controller.View
	resp := getJSON(t, ts.URL+"/api/layout?mode=zone", &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, layout.ModeGlobal, view.Mode, "GET never switches the layout")
	assert.Empty(t, view.ZoneAreas)

	resp = postJSON(t, ts.URL+"/api/view/layout", `{"mode":"zone"}`, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, layout.ModeZone, view.Mode)
	assert.Len(t, view.ZoneAreas, 3)
	assert.Contains(t, view.ZoneColors, "Server Farm")

	getJSON(t, ts.URL+"/api/layout", &view)
	assert.Equal(t, layout.ModeZone, view.Mode)

	for _, body := range []string{`{"mode":"spiral"}`, `{}`, `{"mode":`} {
		resp = postJSON(t, ts.URL+"/api/view/layout", body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestViewInteractions(t *testing.T) {
	ts, _ := newTestServer(t)

	var res controller.SelectionResult
	resp := postJSON(t, ts.URL+"/api/view/selection", `{"action":"link","id":"10.0.0.1-10.0.0.2-1"}`, &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, res.Link)
	assert.Equal(t, "multi-port 2/2", res.Link.Label)

	resp = postJSON(t, ts.URL+"/api/view/selection", `{"action":"node"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = postJSON(t, ts.URL+"/api/view/selection", `{"action":"drag","id":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var view controller.View
	resp = postJSON(t, ts.URL+"/api/view/filters", `{"filters":{"service":["DNS"]}}`, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, view.Stats.TotalNodes)
	assert.Nil(t, view.Highlight)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/view/filters", nil)
	require.NoError(t, err)
	dresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(dresp.Body).Decode(&view))
	dresp.Body.Close()
	assert.Equal(t, 3, view.Stats.TotalNodes)

	resp = postJSON(t, ts.URL+"/api/view/resize", `{"width":1000,"height":500}`, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = postJSON(t, ts.URL+"/api/view/resize", `{"width":0,"height":500}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	postJSON(t, ts.URL+"/api/view/pin", ``, &view)
	for _, n := range view.Nodes {
		assert.NotNil(t, n.FX)
	}

	var refreshed map[string]bool
	resp = postJSON(t, ts.URL+"/api/view/refresh", ``, &refreshed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, refreshed["refreshed"])
}

func TestUpdates(t *testing.T) {
	ts, _ := newTestServer(t)

	var status updateStatus
	getJSON(t, ts.URL+"/api/updates", &status)
	assert.False(t, status.Pending)

	resp := postJSON(t, ts.URL+"/api/updates/accept", ``, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts, _ := newTestServer(t)
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/filter-options", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, id, resp.Header.Get(requestIDHeader))
}
