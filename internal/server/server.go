package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"firewall-network-graph/internal/controller"
	"firewall-network-graph/internal/engine"
	"firewall-network-graph/internal/layout"
	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/parser"
)

// Server exposes the graph queries and the controller over HTTP. The query
// endpoints read the source on every request; the /api/view family works on
// the controller's displayed graph.
type Server struct {
	source   parser.Source
	ctrl     *controller.Controller
	watcher  *controller.Watcher
	validate *validator.Validate
	mux      *http.ServeMux
}

// New wires the routes. watcher may be nil when background polling is off.
func New(ctrl *controller.Controller, watcher *controller.Watcher) *Server {
	s := &Server{
		source:   ctrl.Source(),
		ctrl:     ctrl,
		watcher:  watcher,
		validate: validator.New(),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/firewall-data", s.handleRecords)
	s.mux.HandleFunc("GET /api/network-graph", s.handleGraph)
	s.mux.HandleFunc("POST /api/network-graph/filtered", s.handleFilteredGraph)
	s.mux.HandleFunc("GET /api/filter-options", s.handleFilterOptions)
	s.mux.HandleFunc("GET /api/record/{id}", s.handleRecord)

	s.mux.HandleFunc("GET /api/layout", s.handleView)
	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("POST /api/view/layout", s.handleLayout)
	s.mux.HandleFunc("POST /api/view/filters", s.handleApplyFilters)
	s.mux.HandleFunc("DELETE /api/view/filters", s.handleClearFilters)
	s.mux.HandleFunc("POST /api/view/refresh", s.handleRefresh)
	s.mux.HandleFunc("POST /api/view/selection", s.handleSelection)
	s.mux.HandleFunc("POST /api/view/resize", s.handleResize)
	s.mux.HandleFunc("POST /api/view/pin", s.handlePin)

	s.mux.HandleFunc("GET /api/updates", s.handleUpdates)
	s.mux.HandleFunc("POST /api/updates/accept", s.handleUpdateDecision(true))
	s.mux.HandleFunc("POST /api/updates/dismiss", s.handleUpdateDecision(false))
	return s
}

// Handler returns the routes wrapped with request ID and access logging.
func (s *Server) Handler() http.Handler {
	return withRequestLogging(s.mux)
}

func (s *Server) records(w http.ResponseWriter, r *http.Request) ([]model.Record, bool) {
	records, err := s.source.Records(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return nil, false
	}
	return records, true
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.BuildFilteredGraph(records, model.Filters{}))
}

type filterRequest struct {
	Filters model.Filters `json:"filters"`
}

func (s *Server) decodeFilters(w http.ResponseWriter, r *http.Request) (model.Filters, bool) {
	var req filterRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return model.Filters{}, false
		}
	}
	if err := s.validate.Struct(req.Filters); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filters: "+err.Error())
		return model.Filters{}, false
	}
	return req.Filters, true
}

func (s *Server) handleFilteredGraph(w http.ResponseWriter, r *http.Request) {
	filters, ok := s.decodeFilters(w, r)
	if !ok {
		return
	}
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.BuildFilteredGraph(records, filters))
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.Options(records))
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "record id must be an integer")
		return
	}
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	rec, found := engine.FindRecord(records, id)
	if !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type layoutRequest struct {
	Mode string `json:"mode" validate:"required,oneof=global zone"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid layout: "+err.Error())
		return
	}
	mode, err := layout.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctrl.SwitchLayout(mode)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	filters, ok := s.decodeFilters(w, r)
	if !ok {
		return
	}
	if err := s.ctrl.ApplyFilters(r.Context(), filters); err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ClearFilters(r.Context()); err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ran, err := s.ctrl.Refresh(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"refreshed": ran})
}

type selectionRequest struct {
	Action controller.Action `json:"action" validate:"required,oneof=node link next prev clear background hover_node hover_link"`
	ID     string            `json:"id" validate:"required_if=Action node,required_if=Action link,required_if=Action hover_node,required_if=Action hover_link,max=256"`
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid selection: "+err.Error())
		return
	}
	res, err := s.ctrl.Interact(req.Action, req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type resizeRequest struct {
	Width  float64 `json:"width" validate:"gt=0,lte=100000"`
	Height float64 `json:"height" validate:"gt=0,lte=100000"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid canvas size: "+err.Error())
		return
	}
	s.ctrl.Resize(req.Width, req.Height)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	s.ctrl.PinAll()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type updateStatus struct {
	Pending bool                     `json:"pending"`
	Notice  *controller.UpdateNotice `json:"notice,omitempty"`
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	status := updateStatus{}
	if s.watcher != nil {
		if notice, ok := s.watcher.Pending(); ok {
			status.Pending = true
			status.Notice = &notice
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleUpdateDecision(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.watcher == nil {
			writeError(w, http.StatusNotFound, "update watcher is disabled")
			return
		}
		decided := s.watcher.Dismiss
		if accept {
			decided = s.watcher.Accept
		}
		if !decided() {
			writeError(w, http.StatusConflict, "no pending update notice")
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func writeSourceError(w http.ResponseWriter, err error) {
	if errors.Is(err, parser.ErrSourceNotFound) {
		writeError(w, http.StatusNotFound, "firewall data source not found")
		return
	}
	slog.Error("Failed to read firewall records", "error", err)
	writeError(w, http.StatusInternalServerError, "failed to read firewall records")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
