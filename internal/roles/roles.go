// Package roles maps civic roles to their handlers. The table is resolved
// once at configuration load; lookups never re-parse role strings.
package roles

import (
	"github.com/Shkiper2006/RustRP/internal/store"
)

// Role is a civic office.
type Role string

const (
	RoleMayor  Role = "mayor"
	RolePolice Role = "police"
	RoleJudge  Role = "judge"
	RoleMedic  Role = "medic"
	RoleBoard  Role = "board"
)

// Handler is the resolved entry for one role.
type Handler struct {
	Role       Role   `json:"role"`
	Permission string `json:"permission"` // profile role flag that marks a holder
	Fallback   string `json:"fallback"`   // NPC stand-in name when no holder is online
}

// HandlerConfig is the YAML shape of one role entry.
type HandlerConfig struct {
	Permission string `yaml:"permission"`
	Fallback   string `yaml:"fallback"`
}

// DefaultHandlers mirrors the stock civic setup.
func DefaultHandlers() map[Role]HandlerConfig {
	return map[Role]HandlerConfig{
		RoleMayor:  {Permission: "mayor", Fallback: "Mayor Holden"},
		RolePolice: {Permission: "police", Fallback: "Officer Reed"},
		RoleJudge:  {Permission: "judge", Fallback: "Judge Marlowe"},
		RoleMedic:  {Permission: "medic", Fallback: "Doc Avery"},
		RoleBoard:  {Permission: "board", Fallback: "Board Clerk"},
	}
}

// Presence reports who is currently online.
type Presence interface {
	Online() []store.PlayerID
}

// Registry is the resolved role table.
type Registry struct {
	Players  *store.Store
	handlers map[Role]Handler
}

// NewRegistry resolves the configured roles into the lookup table.
func NewRegistry(cfg map[Role]HandlerConfig, players *store.Store) *Registry {
	handlers := make(map[Role]Handler, len(cfg))
	for role, hc := range cfg {
		handlers[role] = Handler{Role: role, Permission: hc.Permission, Fallback: hc.Fallback}
	}
	return &Registry{Players: players, handlers: handlers}
}

// Lookup returns the handler for a role.
func (r *Registry) Lookup(role Role) (Handler, bool) {
	h, ok := r.handlers[role]
	return h, ok
}

// Table returns every resolved handler.
func (r *Registry) Table() []Handler {
	out := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	return out
}

// FilledBy returns the online player currently holding the role, or the
// configured NPC fallback stand-in (id 0) when no holder is online.
func (r *Registry) FilledBy(role Role, presence Presence) (store.PlayerID, string) {
	h, ok := r.handlers[role]
	if !ok {
		return 0, ""
	}
	for _, id := range presence.Online() {
		if prof, ok := r.Players.Lookup(id); ok && prof.HasRole(h.Permission) {
			return id, prof.Name
		}
	}
	return 0, h.Fallback
}
