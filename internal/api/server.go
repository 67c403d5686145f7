// Package api serves the policy state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Shkiper2006/RustRP/internal/contracts"
	"github.com/Shkiper2006/RustRP/internal/court"
	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/faction"
	"github.com/Shkiper2006/RustRP/internal/policy"
	"github.com/Shkiper2006/RustRP/internal/raid"
	"github.com/Shkiper2006/RustRP/internal/roles"
	"github.com/Shkiper2006/RustRP/internal/store"
	"github.com/Shkiper2006/RustRP/internal/zones"
)

// Server serves the policy state. Every handler takes Mu, the same lock the
// scheduler serializes through, so reads never observe a half-applied
// sweep and admin mutations never race one.
type Server struct {
	Listen   string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	Mu        *sync.Mutex
	Players   *store.Store
	Resolver  *zones.Resolver
	Ledger    *economy.Ledger
	Escrow    *contracts.Escrow
	Court     *court.Manager
	Wars      *faction.WarRegistry
	Gate      *policy.Gate
	Roles     *roles.Registry
	StartedAt time.Time
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	evalLimiter := NewRateLimiter(120, time.Minute)
	profileLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/treasury", s.handleTreasury)
	mux.HandleFunc("/api/v1/contracts", s.handleContracts)
	mux.HandleFunc("/api/v1/cases", s.handleCases)
	mux.HandleFunc("/api/v1/wars", s.handleWars)
	mux.HandleFunc("/api/v1/zones", s.handleZones)
	mux.HandleFunc("/api/v1/roles", s.handleRoles)
	mux.HandleFunc("/api/v1/profile/", RateLimitMiddleware(profileLimiter, s.handleProfile))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/evaluate", s.adminOnly(RateLimitMiddleware(evalLimiter, s.handleEvaluate)))
	mux.HandleFunc("/api/v1/zone", s.adminOnly(s.handleDeclareZone))

	slog.Info("HTTP API starting", "addr", s.Listen, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(s.Listen, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires the POST method and bearer auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no RPCORE_ADMIN_KEY set)", http.StatusForbidden)
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
	s.Mu.Lock()
	defer s.Mu.Unlock()

	openContracts := 0
	for _, c := range s.Escrow.Contracts {
		if c.Status == contracts.StatusOpen || c.Status == contracts.StatusTaken {
			openContracts++
		}
	}
	openCases := 0
	for _, c := range s.Court.Cases {
		if c.Status != court.StatusClosed {
			openCases++
		}
	}
	activeWars := 0
	for _, war := range s.Wars.Wars {
		if war.Status == faction.WarActive {
			activeWars++
		}
	}

	writeJSON(w, map[string]any{
		"name":           "rpcore",
		"uptime_seconds": int(time.Since(s.StartedAt).Seconds()),
		"profiles":       len(s.Players.Players),
		"zones":          len(s.Resolver.Zones),
		"open_contracts": openContracts,
		"open_cases":     openCases,
		"active_wars":    activeWars,
		"treasury":       s.Ledger.Treasury.Balance,
	})
}

func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	writeJSON(w, s.Ledger.Treasury)
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	status := r.URL.Query().Get("status")
	result := make([]*contracts.Contract, 0, len(s.Escrow.Contracts))
	for _, c := range s.Escrow.Contracts {
		if status != "" && c.Status.String() != status {
			continue
		}
		result = append(result, c)
	}
	writeJSON(w, result)
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	result := make([]*court.CaseFile, 0, len(s.Court.Cases))
	for _, c := range s.Court.Cases {
		result = append(result, c)
	}
	writeJSON(w, result)
}

func (s *Server) handleWars(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	writeJSON(w, s.Wars.Snapshot())
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	result := make([]*zones.Zone, 0, len(s.Resolver.Zones))
	for _, z := range s.Resolver.Zones {
		result = append(result, z)
	}
	writeJSON(w, result)
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Roles.Table())
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid player id", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	prof, ok := s.Players.Lookup(store.PlayerID(id))
	if !ok {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, prof)
}

// evaluateRequest is the wire shape of an admin policy evaluation.
type evaluateRequest struct {
	Event     string         `json:"event"`
	Actor     uint64         `json:"actor"`
	ActorPos  zones.Position `json:"actor_pos"`
	TargetPos zones.Position `json:"target_pos"`
	Owner     *uint64        `json:"owner"` // null = owner unknown
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	event, ok := policy.ParseEvent(req.Event)
	if !ok {
		http.Error(w, "unknown event", http.StatusBadRequest)
		return
	}

	owner := raid.UnknownOwner
	if req.Owner != nil {
		owner = raid.KnownOwner(store.PlayerID(*req.Owner))
	}

	s.Mu.Lock()
	d := s.Gate.Evaluate(policy.Request{
		Event:     event,
		Actor:     store.PlayerID(req.Actor),
		ActorPos:  req.ActorPos,
		TargetPos: req.TargetPos,
		Owner:     owner,
	})
	s.Mu.Unlock()

	writeJSON(w, d)
}

// zoneRequest is the wire shape of an admin zone declaration.
type zoneRequest struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Center   zones.Position `json:"center"`
	Radius   float64        `json:"radius"`
	Priority int            `json:"priority"`
}

func (s *Server) handleDeclareZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Radius <= 0 {
		http.Error(w, "zone needs an id and a positive radius", http.StatusBadRequest)
		return
	}
	t, ok := zones.ParseType(req.Type)
	if !ok {
		http.Error(w, "unknown zone type", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	s.Resolver.Add(&zones.Zone{
		ID:       req.ID,
		Type:     t,
		Center:   req.Center,
		Radius:   req.Radius,
		Priority: req.Priority,
	})
	s.Mu.Unlock()

	slog.Info("zone declared", "id", req.ID, "type", req.Type, "radius", req.Radius)
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
