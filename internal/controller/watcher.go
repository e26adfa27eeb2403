package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"firewall-network-graph/internal/engine"
)

// UpdateNotice reports that the record source no longer matches the
// displayed graph.
type UpdateNotice struct {
	Current    engine.Shape `json:"current"`
	Fetched    engine.Shape `json:"fetched"`
	DetectedAt time.Time    `json:"detectedAt"`
}

type decision int

const (
	decisionAccept decision = iota
	decisionDismiss
)

// Watcher polls the record source and raises an UpdateNotice when its shape
// changes. While a notice is pending polling is suspended until Accept,
// Dismiss or the notice timeout.
type Watcher struct {
	ctrl     *Controller
	interval time.Duration
	timeout  time.Duration

	notices   chan UpdateNotice
	decisions chan decision

	mu      sync.Mutex
	pending *UpdateNotice
}

func NewWatcher(ctrl *Controller, interval, timeout time.Duration) *Watcher {
	return &Watcher{
		ctrl:      ctrl,
		interval:  interval,
		timeout:   timeout,
		notices:   make(chan UpdateNotice, 1),
		decisions: make(chan decision, 1),
	}
}

// Notices delivers each raised notice. Undelivered notices are dropped rather
// than blocking the poll loop.
func (w *Watcher) Notices() <-chan UpdateNotice {
	return w.notices
}

// Pending returns the notice awaiting a decision, if any.
func (w *Watcher) Pending() (UpdateNotice, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return UpdateNotice{}, false
	}
	return *w.pending, true
}

// Accept refreshes the graph and resumes polling.
func (w *Watcher) Accept() bool { return w.decide(decisionAccept) }

// Dismiss resumes polling without refreshing.
func (w *Watcher) Dismiss() bool { return w.decide(decisionDismiss) }

func (w *Watcher) decide(d decision) bool {
	if _, ok := w.Pending(); !ok {
		return false
	}
	select {
	case w.decisions <- d:
		return true
	default:
		return false
	}
}

// Run polls until ctx is done. Fetch errors are logged and retried on the
// next tick.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("Starting update watcher", "interval", w.interval, "notice_timeout", w.timeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Update watcher stopped")
			return nil
		case <-ticker.C:
			notice, changed := w.check(ctx)
			if !changed {
				continue
			}
			ticker.Stop()
			w.await(ctx, notice)
			ticker.Reset(w.interval)
		}
	}
}

func (w *Watcher) check(ctx context.Context) (UpdateNotice, bool) {
	records, err := w.ctrl.Source().Records(ctx)
	if err != nil {
		slog.Debug("Update check failed", "error", err)
		return UpdateNotice{}, false
	}
	current := w.ctrl.Shape()
	fetched := engine.ShapeOf(engine.BuildGraph(records))
	if current.Equal(fetched) {
		return UpdateNotice{}, false
	}
	return UpdateNotice{Current: current, Fetched: fetched, DetectedAt: time.Now()}, true
}

func (w *Watcher) await(ctx context.Context, notice UpdateNotice) {
	// Drop a decision that arrived after the previous notice closed.
	select {
	case <-w.decisions:
	default:
	}

	w.mu.Lock()
	w.pending = &notice
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.pending = nil
		w.mu.Unlock()
	}()

	slog.Info("Firewall data changed",
		"current_nodes", notice.Current.Nodes, "fetched_nodes", notice.Fetched.Nodes,
		"current_links", notice.Current.Links, "fetched_links", notice.Fetched.Links,
	)
	select {
	case w.notices <- notice:
	default:
	}

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		slog.Debug("Update notice timed out")
	case d := <-w.decisions:
		if d == decisionAccept {
			if _, err := w.ctrl.Refresh(ctx); err != nil {
				slog.Warn("Refresh after update notice failed", "error", err)
			}
		}
	}
}
