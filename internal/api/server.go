// Package api exposes the planner's observability surface over HTTP:
// current state, recorded cycles, and live tuning parameter updates.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/db"
	"github.com/banshee-data/highway.planner/internal/httputil"
	"github.com/banshee-data/highway.planner/internal/planner"
	"github.com/banshee-data/highway.planner/internal/units"
	"github.com/banshee-data/highway.planner/internal/version"
)

// Server serves the planner API. The database is optional; cycle
// endpoints return 404 when recording is disabled.
type Server struct {
	pl *planner.Planner
	db *db.DB

	mu  sync.Mutex
	cfg *config.TuningConfig
}

// NewServer builds an API server around a planner, its tuning config,
// and an optional cycle database.
func NewServer(pl *planner.Planner, cfg *config.TuningConfig, database *db.DB) *Server {
	return &Server{pl: pl, cfg: cfg, db: database}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/params", s.paramsHandler)
	mux.HandleFunc("/cycles", s.cyclesHandler)
	return mux
}

type statusResponse struct {
	Version string         `json:"version"`
	Planner planner.Status `json:"planner"`

	// The reference speed restated in m/s (exact conversion, unlike
	// the cost model's rounded tuning factor) for callers comparing
	// against sensor fusion speeds.
	RefSpeedMPS float64 `json:"ref_speed_mps"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	st := s.pl.Status()
	httputil.WriteJSONOK(w, statusResponse{
		Version:     version.Version,
		Planner:     st,
		RefSpeedMPS: units.ConvertToMPS(st.RefSpeedMPH, units.MPH),
	})
}

// paramsHandler returns the active tuning on GET and accepts a partial
// TuningConfig on POST, merging it over the active values. Updated
// parameters take effect on the next planning cycle.
func (s *Server) paramsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		cfg := *s.cfg
		s.mu.Unlock()
		httputil.WriteJSONOK(w, cfg)
	case http.MethodPost:
		update := config.EmptyTuningConfig()
		if err := json.NewDecoder(r.Body).Decode(update); err != nil {
			httputil.BadRequest(w, "invalid params JSON: "+err.Error())
			return
		}
		if err := update.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		s.mu.Lock()
		s.cfg.Merge(update)
		cfg := *s.cfg
		s.mu.Unlock()
		s.pl.UpdateTuning(&cfg)
		httputil.WriteJSONOK(w, cfg)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) cyclesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.NotFound(w, "cycle recording is disabled")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	cycles, err := s.db.RecentCycles(r.URL.Query().Get("run_id"), limit)
	if err != nil {
		httputil.InternalServerError(w, "failed to query cycles: "+err.Error())
		return
	}
	httputil.WriteJSONOK(w, cycles)
}
