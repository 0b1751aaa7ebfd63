// Package api provides the HTTP API for playing and observing the farm.
// GET endpoints and player actions are public. The speed and snapshot
// endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/talgya/hollowfarm/internal/catalog"
	"github.com/talgya/hollowfarm/internal/engine"
	"github.com/talgya/hollowfarm/internal/entropy"
	"github.com/talgya/hollowfarm/internal/farm"
	"github.com/talgya/hollowfarm/internal/llm"
	"github.com/talgya/hollowfarm/internal/persistence"
	"github.com/talgya/hollowfarm/internal/weather"
)

// Server serves the farm over HTTP.
type Server struct {
	Farm        *farm.Farm
	Eng         *engine.Engine
	Oracle      farm.Prophet
	Sky         *weather.Sky
	DB          *persistence.DB
	Entropy     *entropy.Client // Wolf roller; reported in status when enabled
	Port        int
	AdminKey    string // Bearer token for admin endpoints. Empty = admin disabled.
	SnapshotDir string

	// OracleLimiter throttles consultations per client. Nil = unlimited.
	OracleLimiter *RateLimiter

	started     time.Time
	streamConns int32
	upgrader    websocket.Upgrader
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	consult := s.handleOracle
	if s.OracleLimiter != nil {
		consult = RateLimitMiddleware(s.OracleLimiter, consult)
	}

	mux := http.NewServeMux()

	// Observation.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Play.
	mux.HandleFunc("/api/v1/intent", s.handleIntent)
	mux.HandleFunc("/api/v1/oracle", consult)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine. The returned server
// can be shut down by the caller.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
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
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
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

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HOLLOWFARM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Farm.Snapshot()

	status := map[string]any{
		"name":       "Hollowfarm",
		"tick":       snap.Tick,
		"gold":       snap.Gold,
		"level":      snap.Level,
		"xp":         snap.XP,
		"xp_to_next": snap.XPToNext,
		"wolf":       snap.Wolf,
		"jobs":       len(snap.Jobs),
		"consulting": s.Farm.Consulting(),
		"weather":    s.Sky.Describe(snap.Tick),
		"started":    humanize.Time(s.started),
	}
	if s.Entropy.Enabled() {
		status["entropy_pool"] = s.Entropy.Pooled()
	}
	if s.DB != nil {
		if prev, ok := s.DB.PreviousProgress(); ok {
			status["previous_session_tick"] = prev
		}
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Farm.Snapshot())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	type itemView struct {
		catalog.Item
		Locked bool `json:"locked"`
	}

	level := s.Farm.Snapshot().Level
	cat := s.Farm.Catalog()

	items := make([]itemView, 0)
	for _, it := range cat.Items() {
		items = append(items, itemView{Item: it, Locked: it.Locked(level)})
	}

	writeJSON(w, map[string]any{
		"level":   level,
		"items":   items,
		"recipes": cat.Recipes(),
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	snap := s.Farm.Snapshot()
	cat := s.Farm.Catalog()

	writeJSON(w, map[string]any{
		"gold":        snap.Gold,
		"buy":         snap.Market(cat),
		"sell":        snap.Sellable(cat),
		"plantable":   snap.Plantable(cat),
		"processable": snap.Processable(cat),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	if r.URL.Query().Get("kind") == "oracle" {
		cons, err := s.DB.RecentConsultations(limit)
		if err != nil {
			slog.Error("consultation query failed", "error", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if cons == nil {
			cons = []persistence.Consultation{}
		}
		writeJSON(w, cons)
		return
	}

	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []farm.Event{}
	}
	writeJSON(w, events)
}

// intentResponse is the reply to a player action.
type intentResponse struct {
	Snapshot farm.Snapshot `json:"snapshot"`
	Outcome  farm.Outcome  `json:"outcome"`
	Prophecy *llm.Prophecy `json:"prophecy,omitempty"`
}

// errorResponse is the body of a 4xx reply to a malformed intent.
type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in farm.Intent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	resp, status, errResp := s.apply(r, in)
	if errResp != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errResp)
		return
	}
	writeJSON(w, resp)
}

// apply runs one intent, routing consultations to the oracle.
func (s *Server) apply(r *http.Request, in farm.Intent) (intentResponse, int, *errorResponse) {
	if in.Type == farm.IntentConsult {
		pr, ok := s.consult(r)
		if !ok {
			return intentResponse{}, http.StatusConflict, &errorResponse{Error: "the spirits are already speaking"}
		}
		return intentResponse{
			Snapshot: s.Farm.Snapshot(),
			Outcome:  farm.Outcome{Applied: true},
			Prophecy: &pr,
		}, http.StatusOK, nil
	}

	snap, out, err := s.Farm.Dispatch(in)
	if err != nil {
		return intentResponse{}, http.StatusBadRequest, intentError(err)
	}
	return intentResponse{Snapshot: snap, Outcome: out}, http.StatusOK, nil
}

func intentError(err error) *errorResponse {
	resp := &errorResponse{Error: err.Error()}
	var unknown *catalog.UnknownItemError
	if errors.As(err, &unknown) {
		resp.Suggestion = unknown.Suggestion
	}
	return resp
}

func (s *Server) handleOracle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pr, ok := s.consult(r)
	if !ok {
		http.Error(w, "the spirits are already speaking", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{
		"prophecy": pr,
		"snapshot": s.Farm.Snapshot(),
	})
}

// consult runs a consultation and journals it.
func (s *Server) consult(r *http.Request) (llm.Prophecy, bool) {
	tick := s.Farm.CurrentTick()
	sky := s.Sky.Describe(tick)

	pr, ok := s.Farm.Consult(r.Context(), s.Oracle, sky)
	if !ok {
		return pr, false
	}

	if s.DB != nil {
		err := s.DB.SaveConsultation(persistence.Consultation{
			Tick:    tick,
			Level:   s.Farm.Snapshot().Level,
			Weather: sky,
			Text:    pr.Text,
			Effect:  string(pr.Effect),
		})
		if err != nil {
			slog.Error("consultation journal failed", "error", err)
		}
	}
	slog.Info("oracle consulted", "effect", pr.Effect, "weather", sky)
	return pr, true
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not available", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
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
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.readSnapshot(w, r)
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.Farm.Snapshot()
	session := ""
	if s.DB != nil {
		session = s.DB.Session()
	}
	path := persistence.ExportPath(s.SnapshotDir, snap.Tick)
	if err := persistence.WriteExport(path, session, snap); err != nil {
		slog.Error("snapshot export failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}
	writeJSON(w, map[string]any{
		"tick":    snap.Tick,
		"path":    filepath.ToSlash(path),
		"size":    humanize.Bytes(uint64(size)),
		"message": "snapshot exported",
	})
}

// readSnapshot serves a stored export: ?tick=N, or the newest one.
func (s *Server) readSnapshot(w http.ResponseWriter, r *http.Request) {
	var path string
	if t := r.URL.Query().Get("tick"); t != "" {
		tick, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			http.Error(w, "invalid tick", http.StatusBadRequest)
			return
		}
		path = persistence.ExportPath(s.SnapshotDir, tick)
	} else {
		latest, err := persistence.LatestExport(s.SnapshotDir)
		if err != nil {
			http.Error(w, "no snapshot exported", http.StatusNotFound)
			return
		}
		path = latest
	}

	exp, err := persistence.ReadExport(path)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("snapshot read failed", "path", path, "error", err)
		http.Error(w, "snapshot unreadable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, exp)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
