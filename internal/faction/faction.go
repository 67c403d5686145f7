// Package faction provides faction records and the war registry consulted
// by raid authorization.
package faction

import (
	"errors"

	"github.com/Shkiper2006/RustRP/internal/store"
)

var (
	ErrFactionExists   = errors.New("faction id already taken")
	ErrFactionNotFound = errors.New("no such faction")
)

// Faction is an organized player group.
type Faction struct {
	ID       store.FactionID           `json:"id"`
	Name     string                    `json:"name"`
	Tag      string                    `json:"tag"`
	LeaderID store.PlayerID            `json:"leader_id"`
	Members  map[store.PlayerID]string `json:"members"` // player → rank label
}

// IsLeader reports whether the player leads the faction.
func (f *Faction) IsLeader(p store.PlayerID) bool {
	return f != nil && f.LeaderID == p
}

// Registry holds the faction records. Membership is mirrored onto the
// player profile, which is what raid authorization reads.
type Registry struct {
	Factions map[store.FactionID]*Faction `json:"factions"`

	players *store.Store
}

// NewRegistry creates an empty faction registry.
func NewRegistry(players *store.Store) *Registry {
	return &Registry{Factions: make(map[store.FactionID]*Faction), players: players}
}

// Create registers a faction with the leader as its first member.
func (r *Registry) Create(id store.FactionID, name, tag string, leader store.PlayerID) (*Faction, error) {
	if _, ok := r.Factions[id]; ok {
		return nil, ErrFactionExists
	}
	f := &Faction{
		ID:       id,
		Name:     name,
		Tag:      tag,
		LeaderID: leader,
		Members:  map[store.PlayerID]string{leader: "leader"},
	}
	r.Factions[id] = f
	r.players.Profile(leader).FactionID = id
	return f, nil
}

// Get returns a faction by id.
func (r *Registry) Get(id store.FactionID) (*Faction, bool) {
	f, ok := r.Factions[id]
	return f, ok
}

// Join adds the player to the faction and records it on their profile.
func (r *Registry) Join(id store.FactionID, player store.PlayerID, rank string) error {
	f, ok := r.Factions[id]
	if !ok {
		return ErrFactionNotFound
	}
	f.Members[player] = rank
	r.players.Profile(player).FactionID = id
	return nil
}

// Leave removes the player from whatever faction they belong to.
func (r *Registry) Leave(player store.PlayerID) {
	prof, ok := r.players.Lookup(player)
	if !ok || prof.FactionID == "" {
		return
	}
	if f, ok := r.Factions[prof.FactionID]; ok {
		delete(f.Members, player)
	}
	prof.FactionID = ""
}

// Disband deletes the faction and clears every member's profile link.
func (r *Registry) Disband(id store.FactionID) error {
	f, ok := r.Factions[id]
	if !ok {
		return ErrFactionNotFound
	}
	for member := range f.Members {
		if prof, ok := r.players.Lookup(member); ok && prof.FactionID == id {
			prof.FactionID = ""
		}
	}
	delete(r.Factions, id)
	return nil
}
