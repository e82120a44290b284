// Package api provides the HTTP API for observing and working the farm.
// GET endpoints are public (read-only observation).
// Tool endpoints are rate limited per client.
// Admin endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/engine"
	"github.com/talgya/homestead/internal/grid"
	"github.com/talgya/homestead/internal/persistence"
	"github.com/talgya/homestead/internal/render"
	"github.com/talgya/homestead/internal/scene"
)

// Server serves scene state over HTTP.
type Server struct {
	Scenes    *scene.Coordinator
	Eng       *engine.Engine
	Layers    *render.Layers
	Persister scene.Persister // Snapshot target. Nil = snapshots disabled.
	DB        *persistence.DB // Event log and save metadata. Optional.
	Port      int
	AdminKey  string // Bearer token for admin endpoints. Empty = admin disabled.
	SaveID    string

	// Tool requests allowed per client per minute. Zero uses the default.
	ToolRate int
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	rate := s.ToolRate
	if rate <= 0 {
		rate = 120
	}
	tools := NewToolQuota(rate, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/tile/{x}/{y}", s.handleTile)
	mux.HandleFunc("GET /api/v1/render", s.handleRender)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)

	// Tool endpoints.
	mux.HandleFunc("POST /api/v1/tile/{x}/{y}/dig", limitTools(tools, s.handleTool(scene.ToolHoe)))
	mux.HandleFunc("POST /api/v1/tile/{x}/{y}/water", limitTools(tools, s.handleTool(scene.ToolWateringCan)))

	// Admin endpoints (require bearer token).
	mux.HandleFunc("POST /api/v1/scene/{name}", s.adminOnly(s.handleSwitchScene))
	mux.HandleFunc("POST /api/v1/advance", s.adminOnly(s.handleAdvance))
	mux.HandleFunc("POST /api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("PUT /api/v1/tile/{x}/{y}", s.adminOnly(s.handleSetTile))

	return corsMiddleware(mux)
}

// Run serves the API until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set HOMESTEAD_CORS_ORIGINS to a comma-separated list of extra origins.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("HOMESTEAD_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HOMESTEAD_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":         "Homestead",
		"active_scene": s.Scenes.ActiveScene(),
		"scenes":       s.Scenes.AllStats(),
	}
	if s.SaveID != "" {
		status["save_id"] = s.SaveID
	}
	if s.Eng != nil {
		tick := s.Eng.CurrentTick()
		status["tick"] = tick
		status["sim_time"] = engine.SimTime(tick)
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	if s.DB != nil {
		if saved := s.DB.LastSaved(); !saved.IsZero() {
			status["last_saved"] = humanize.Time(saved)
		}
	}
	writeJSON(w, status)
}

// tileResponse pairs a property with whether the store holds an entry for it.
type tileResponse struct {
	Scene   string    `json:"scene"`
	Present bool      `json:"present"`
	Tile    grid.Tile `json:"tile"`
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	at, ok := parseCoord(w, r)
	if !ok {
		return
	}
	t, present := s.Scenes.Property(at)
	writeJSON(w, tileResponse{Scene: s.Scenes.ActiveScene(), Present: present, Tile: t})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if s.Layers == nil {
		http.Error(w, "render surface not available", http.StatusServiceUnavailable)
		return
	}
	layers := make(map[string][]render.Cell, len(autotile.Layers))
	for _, l := range autotile.Layers {
		layers[l.String()] = s.Layers.Cells(l)
	}
	writeJSON(w, map[string]any{
		"scene":  s.Scenes.ActiveScene(),
		"layers": layers,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeJSON(w, []persistence.Event{})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("events query failed", "error", err)
		http.Error(w, "events unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleTool(tool scene.Tool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, ok := parseCoord(w, r)
		if !ok {
			return
		}
		t, ok := s.Scenes.Use(tool, at)
		if !ok {
			http.Error(w, fmt.Sprintf("cannot use %s at %s", tool, at), http.StatusConflict)
			return
		}
		slog.Debug("tool used", "tool", tool, "at", at, "scene", s.Scenes.ActiveScene())
		writeJSON(w, tileResponse{Scene: s.Scenes.ActiveScene(), Present: true, Tile: t})
	}
}

func (s *Server) handleSwitchScene(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	prev := s.Scenes.ActiveScene()
	if err := s.Scenes.SwitchTo(name); err != nil {
		// The switch itself completed; only persisting the old scene failed.
		slog.Error("scene save on switch failed", "scene", prev, "error", err)
	}
	s.logEvent(fmt.Sprintf("moved from %s to %s", sceneLabel(prev), name), "scene")

	writeJSON(w, map[string]any{
		"previous": prev,
		"active":   s.Scenes.ActiveScene(),
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		dried := s.Scenes.AdvanceDay()
		writeJSON(w, map[string]any{"dried": dried})
		return
	}
	day := s.Eng.SkipToNextDay()
	writeJSON(w, map[string]any{
		"tick":     day.Tick,
		"sim_time": engine.SimTime(day.Tick),
		"scenes":   s.Scenes.AllStats(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.Persister == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.Scenes.SaveAll(s.Persister); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	var tick uint64
	if s.Eng != nil {
		tick = s.Eng.CurrentTick()
	}
	if s.DB != nil {
		if err := s.DB.SaveTick(tick); err != nil {
			slog.Warn("failed to save tick", "error", err)
		}
	}

	writeJSON(w, map[string]any{
		"tick":    tick,
		"scenes":  len(s.Scenes.Scenes()),
		"message": "snapshot saved",
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "clock not available", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSetTile(w http.ResponseWriter, r *http.Request) {
	at, ok := parseCoord(w, r)
	if !ok {
		return
	}
	// Fields missing from the payload keep their defaults.
	t := grid.NewTile(at)
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.Scenes.SetProperty(at, t)

	stored, _ := s.Scenes.Property(at)
	writeJSON(w, tileResponse{Scene: s.Scenes.ActiveScene(), Present: true, Tile: stored})
}

func (s *Server) logEvent(description, category string) {
	if s.DB == nil {
		return
	}
	var tick uint64
	if s.Eng != nil {
		tick = s.Eng.CurrentTick()
	}
	err := s.DB.SaveEvents([]persistence.Event{{Tick: tick, Description: description, Category: category}})
	if err != nil {
		slog.Warn("failed to log event", "error", err)
	}
}

func sceneLabel(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

func parseCoord(w http.ResponseWriter, r *http.Request) (grid.Coord, bool) {
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errX != nil || errY != nil {
		http.Error(w, "invalid coordinate", http.StatusBadRequest)
		return grid.Coord{}, false
	}
	return grid.Coord{X: x, Y: y}, true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
