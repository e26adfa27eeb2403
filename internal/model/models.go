package model

import "strconv"

const (
	UnknownZone    = "Unknown Zone"
	UnknownService = "Unknown Service"
	UnknownValue   = "unknown"
)

type NodeType string // "source", "target"

const (
	SourceNode NodeType = "source"
	TargetNode NodeType = "target"
)

// Record is one normalized firewall rule row.
type Record struct {
	RecordID            int    `json:"recordId"`
	RuleID              string `json:"id,omitempty"`
	SourceZone          string `json:"sourceZone"`
	SourceRegion        string `json:"sourceRegion"`
	SourceHostname      string `json:"sourceHostname"`
	SourceIP            string `json:"sourceIP"`
	SourceObject        string `json:"sourceObject"`
	TargetZone          string `json:"targetZone"`
	TargetRegion        string `json:"targetRegion"`
	TargetHostname      string `json:"targetHostname"`
	TargetDomain        string `json:"targetDomain"`
	TargetIP            string `json:"targetIP"`
	TargetPort          string `json:"targetPort"`
	TargetObject        string `json:"targetObject"`
	Service             string `json:"service"`
	ApplicationScenario string `json:"applicationScenario"`
	RequestUnit         string `json:"requestUnit"`
	Responsible         string `json:"responsible"`
	RequestNumber       string `json:"requestNumber"`
}

type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	IP          string   `json:"ip"`
	Zone        string   `json:"zone"`
	Region      string   `json:"region"`
	Hostname    string   `json:"hostname"`
	Domain      string   `json:"domain,omitempty"`
	Object      string   `json:"object"`
	Connections []string `json:"connections"`

	// Simulation state. Written by the layout strategies and the simulation engine.
	X  float64  `json:"x,omitempty"`
	Y  float64  `json:"y,omitempty"`
	VX float64  `json:"vx,omitempty"`
	VY float64  `json:"vy,omitempty"`
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// ResetPosition drops pinning, velocity and position.
func (n *Node) ResetPosition() {
	n.X, n.Y, n.VX, n.VY = 0, 0, 0, 0
	n.FX, n.FY = nil, nil
}

// Pin fixes the node at its current position.
func (n *Node) Pin() {
	x, y := n.X, n.Y
	n.FX, n.FY = &x, &y
}

type Edge struct {
	ID      string   `json:"id"`
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Service string   `json:"service"`
	Ports   []string `json:"ports"`
	Record  *Record  `json:"record"`

	IsMultiple       bool `json:"isMultiple"`
	HasMultiplePorts bool `json:"hasMultiplePorts"`
	*MultiEdge
}

// MultiEdge is set only on edges whose host pair carries more than one edge.
type MultiEdge struct {
	MultipleIndex  int      `json:"multipleIndex"`
	MultipleTotal  int      `json:"multipleTotal"`
	AllPorts       []string `json:"allPorts"`
	AllServices    []string `json:"allServices"`
	CurrentPort    string   `json:"currentPort"`
	CurrentService string   `json:"currentService"`
}

// PairKey identifies the unordered host pair of the edge.
func (e *Edge) PairKey() PairKey {
	return NewPairKey(e.Source, e.Target)
}

type PairKey struct {
	Low  string
	High string
}

func NewPairKey(a, b string) PairKey {
	if a < b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

func (k PairKey) String() string {
	return k.Low + "-" + k.High
}

type Stats struct {
	TotalNodes    int `json:"totalNodes"`
	TotalLinks    int `json:"totalLinks"`
	TotalZones    int `json:"totalZones"`
	TotalServices int `json:"totalServices"`
}

type Graph struct {
	Nodes    []*Node  `json:"nodes"`
	Links    []*Edge  `json:"links"`
	Zones    []string `json:"zones"`
	Services []string `json:"services"`
	Stats    Stats    `json:"stats"`
}

// NodeByID returns the node with the given ID, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// EdgeByID returns the edge with the given ID, or nil.
func (g *Graph) EdgeByID(id string) *Edge {
	for _, e := range g.Links {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EmptyState reports which part of the graph, if any, is empty.
func (g *Graph) EmptyState() EmptyState {
	switch {
	case g == nil || (len(g.Nodes) == 0 && len(g.Links) == 0):
		return EmptyAll
	case len(g.Nodes) == 0:
		return EmptyNodes
	case len(g.Links) == 0:
		return EmptyLinks
	default:
		return NotEmpty
	}
}

type EmptyState string

const (
	NotEmpty   EmptyState = ""
	EmptyAll   EmptyState = "empty"
	EmptyNodes EmptyState = "no_nodes"
	EmptyLinks EmptyState = "no_links"
)

func (s EmptyState) Message(nodeCount int) string {
	switch s {
	case EmptyAll:
		return "No nodes or connections match the current filters"
	case EmptyNodes:
		return "No nodes match the current filters"
	case EmptyLinks:
		return "Found " + strconv.Itoa(nodeCount) + " nodes, but no connections match the current filters"
	default:
		return ""
	}
}

// Filters narrows the record set before a graph is built.
type Filters struct {
	SourceZone []string `json:"sourceZone,omitempty" validate:"max=500,dive,max=256"`
	TargetZone []string `json:"targetZone,omitempty" validate:"max=500,dive,max=256"`
	Service    []string `json:"service,omitempty" validate:"max=500,dive,max=256"`
	SourceIP   string   `json:"sourceIP,omitempty" validate:"max=256"`
	TargetIP   string   `json:"targetIP,omitempty" validate:"max=256"`
}

func (f Filters) IsEmpty() bool {
	return len(f.SourceZone) == 0 && len(f.TargetZone) == 0 && len(f.Service) == 0 &&
		f.SourceIP == "" && f.TargetIP == ""
}

type FilterOptions struct {
	SourceZones          []string `json:"sourceZones"`
	TargetZones          []string `json:"targetZones"`
	Services             []string `json:"services"`
	RequestUnits         []string `json:"requestUnits"`
	ApplicationScenarios []string `json:"applicationScenarios"`
}

// ZoneArea is the canvas cell assigned to one zone under the zone-partitioned layout.
type ZoneArea struct {
	Zone    string  `json:"zone"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
}

func (a ZoneArea) Area() float64 {
	return a.Width * a.Height
}

// Overlaps reports whether the two cells share interior points.
func (a ZoneArea) Overlaps(b ZoneArea) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

type ZoneColor struct {
	Background string `json:"backgroundColor"`
	Border     string `json:"borderColor"`
}
