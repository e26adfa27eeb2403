package controller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"firewall-network-graph/internal/engine"
	"firewall-network-graph/internal/layout"
	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/parser"
	"firewall-network-graph/internal/selection"
)

// Controller owns the displayed graph: the current records, filters, layout
// and selection. Every rebuild runs under mu, so two rebuilds never interleave.
type Controller struct {
	source parser.Source

	mu        sync.Mutex
	cfg       layout.Config
	mode      layout.Mode
	filters   model.Filters
	records   []model.Record
	graph     *model.Graph
	baseShape engine.Shape
	sim       *layout.Simulation
	colors    *layout.ColorAssigner
	selection *selection.Machine
	loaded    bool

	refreshing atomic.Bool
}

func New(source parser.Source, cfg layout.Config, mode layout.Mode) *Controller {
	empty := &model.Graph{Nodes: []*model.Node{}, Links: []*model.Edge{}, Zones: []string{}, Services: []string{}}
	return &Controller{
		source:    source,
		cfg:       cfg,
		mode:      mode,
		graph:     empty,
		colors:    layout.NewColorAssigner(),
		selection: selection.New(empty),
	}
}

// Load fetches the records and rebuilds the graph under the current filters.
// On a fetch error the last good graph stays in place.
func (c *Controller) Load(ctx context.Context) error {
	records, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setRecordsLocked(records)
	return nil
}

// Refresh reloads the source and resets colors, positions and selection. A
// call made while another refresh is running returns false immediately. The
// reset happens only once the fetch succeeds, so a failed refresh leaves the
// displayed graph and its layout untouched.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	if !c.refreshing.CompareAndSwap(false, true) {
		slog.Debug("Refresh already in progress, skipping")
		return false, nil
	}
	defer c.refreshing.Store(false)

	records, err := c.fetch(ctx)
	if err != nil {
		return true, err
	}

	c.mu.Lock()
	c.colors.Clear()
	c.selection.Clear()
	for _, n := range c.graph.Nodes {
		n.ResetPosition()
	}
	c.setRecordsLocked(records)
	c.mu.Unlock()

	slog.Info("Graph refreshed")
	return true, nil
}

func (c *Controller) fetch(ctx context.Context) ([]model.Record, error) {
	records, err := c.source.Records(ctx)
	if err != nil {
		slog.Warn("Failed to load firewall records, keeping last graph", "error", err)
		return nil, err
	}
	return records, nil
}

func (c *Controller) setRecordsLocked(records []model.Record) {
	c.records = records
	c.baseShape = engine.ShapeOf(engine.BuildGraph(records))
	c.rebuildLocked()
	c.loaded = true
}

// ApplyFilters rebuilds the graph from freshly fetched records narrowed by f.
func (c *Controller) ApplyFilters(ctx context.Context, f model.Filters) error {
	c.mu.Lock()
	prev := c.filters
	c.filters = f
	c.selection.Clear()
	c.mu.Unlock()

	if err := c.Load(ctx); err != nil {
		c.mu.Lock()
		c.filters = prev
		c.mu.Unlock()
		return err
	}
	return nil
}

// ClearFilters drops every filter and reassigns zone colors.
func (c *Controller) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	c.colors.Clear()
	c.mu.Unlock()
	return c.ApplyFilters(ctx, model.Filters{})
}

// SwitchLayout re-runs placement under mode. Pins, velocities and the color
// cache are reset; switching to the active mode is a no-op.
func (c *Controller) SwitchLayout(mode layout.Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode == c.mode {
		return false
	}
	c.mode = mode
	c.colors.Clear()
	for _, n := range c.graph.Nodes {
		n.ResetPosition()
	}
	c.sim = layout.New(c.mode, c.cfg).Apply(c.graph.Nodes, c.graph.Links)
	slog.Info("Layout switched", "mode", mode)
	return true
}

// PinAll fixes every node at its current position once the layout has settled.
func (c *Controller) PinAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.graph.Nodes {
		n.Pin()
	}
}

// Settle runs ticks of the custom forces with a decaying alpha and then pins
// every node.
func (c *Controller) Settle(ticks int, alpha, decay float64) {
	c.mu.Lock()
	if c.sim != nil {
		for range ticks {
			c.sim.Tick(alpha)
			alpha *= decay
		}
	}
	c.mu.Unlock()
	c.PinAll()
}

// Resize moves the centering forces to the new canvas center.
func (c *Controller) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Width, c.cfg.Height = width, height
	if c.sim != nil {
		c.sim.Resize(width, height)
	}
}

// Mode reports the active layout mode.
func (c *Controller) Mode() layout.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Shape summarizes the unfiltered graph of the last successful load.
func (c *Controller) Shape() engine.Shape {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseShape
}

// Source is the record source the controller loads from.
func (c *Controller) Source() parser.Source {
	return c.source
}

func (c *Controller) rebuildLocked() {
	g := engine.BuildFilteredGraph(c.records, c.filters)
	c.graph = g
	c.selection.Reset(g)
	c.sim = layout.New(c.mode, c.cfg).Apply(g.Nodes, g.Links)

	state := g.EmptyState()
	slog.Info("Graph rebuilt",
		"record_count", len(c.records),
		"total_nodes", g.Stats.TotalNodes,
		"total_links", g.Stats.TotalLinks,
		"total_zones", g.Stats.TotalZones,
		"mode", c.sim.Mode,
	)
	if state != model.NotEmpty {
		slog.Info("Graph is empty under current filters", "state", state)
	}
}
