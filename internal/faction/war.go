// Faction wars: declaration, acceptance, and the "at war" query used by
// raid authorization.
package faction

import (
	"errors"
	"time"

	"github.com/Shkiper2006/RustRP/internal/store"
)

// WarStatus tracks a war through its lifecycle.
type WarStatus uint8

const (
	WarDeclared WarStatus = iota // Declared by the attacker, awaiting acceptance
	WarActive                    // Accepted by the defender, enforceable for raids
	WarEnded                     // Concluded; kept for history
)

var warStatusNames = map[WarStatus]string{
	WarDeclared: "DECLARED",
	WarActive:   "ACTIVE",
	WarEnded:    "ENDED",
}

func (s WarStatus) String() string { return warStatusNames[s] }

// WarKey is the ordered (attacker, defender) pair identifying a war. The
// ordering carries meaning: only the defender of the original declaration
// can accept it.
type WarKey struct {
	Attacker store.FactionID `json:"attacker"`
	Defender store.FactionID `json:"defender"`
}

// Reversed returns the key with the roles swapped.
func (k WarKey) Reversed() WarKey {
	return WarKey{Attacker: k.Defender, Defender: k.Attacker}
}

// War is a declared conflict between two factions. Exactly one record
// exists per ordered pair.
type War struct {
	Key     WarKey    `json:"key"`
	Status  WarStatus `json:"status"`
	StartAt int64     `json:"start_at"`
	EndAt   int64     `json:"end_at,omitempty"`
}

var (
	ErrWarExists   = errors.New("a war between these factions already exists")
	ErrWarNotFound = errors.New("no such war declaration")
	ErrWarState    = errors.New("war is not in a state that allows this")
)

// WarRegistry holds all war records. The "at war" relation is symmetric, so
// lookups check both key orderings; declare/accept are not.
type WarRegistry struct {
	Wars map[WarKey]*War `json:"wars"`

	now func() time.Time
}

// NewWarRegistry creates an empty registry.
func NewWarRegistry() *WarRegistry {
	return &WarRegistry{Wars: make(map[WarKey]*War), now: time.Now}
}

// SetClock overrides the registry clock. Tests only.
func (r *WarRegistry) SetClock(now func() time.Time) { r.now = now }

// Between returns the war between the two factions in either ordering.
func (r *WarRegistry) Between(a, b store.FactionID) (*War, bool) {
	if a == "" || b == "" {
		return nil, false
	}
	if w, ok := r.Wars[WarKey{Attacker: a, Defender: b}]; ok {
		return w, true
	}
	if w, ok := r.Wars[WarKey{Attacker: b, Defender: a}]; ok {
		return w, true
	}
	return nil, false
}

// AtWar reports whether the two factions have an ACTIVE war. A DECLARED war
// is not yet enforceable for raid purposes.
func (r *WarRegistry) AtWar(a, b store.FactionID) bool {
	w, ok := r.Between(a, b)
	return ok && w.Status == WarActive
}

// Declare creates a DECLARED war keyed by (attacker, defender). It fails if
// a non-ENDED war already exists between the pair in either ordering.
func (r *WarRegistry) Declare(attacker, defender store.FactionID) (*War, error) {
	if w, ok := r.Between(attacker, defender); ok && w.Status != WarEnded {
		return nil, ErrWarExists
	}
	key := WarKey{Attacker: attacker, Defender: defender}
	w := &War{
		Key:     key,
		Status:  WarDeclared,
		StartAt: r.nowUnix(),
	}
	r.Wars[key] = w
	return w, nil
}

// Accept transitions the war declared by attacker on defender to ACTIVE and
// resets its start time. Acceptance must use the original key ordering: a
// defender cannot accept a war it did not receive.
func (r *WarRegistry) Accept(defender, attacker store.FactionID) (*War, error) {
	w, ok := r.Wars[WarKey{Attacker: attacker, Defender: defender}]
	if !ok {
		return nil, ErrWarNotFound
	}
	if w.Status == WarEnded {
		return nil, ErrWarState
	}
	w.Status = WarActive
	w.StartAt = r.nowUnix()
	return w, nil
}

// End concludes the war between the pair in either ordering. The record is
// kept with status ENDED so a fresh declaration is permitted later.
func (r *WarRegistry) End(a, b store.FactionID) (*War, error) {
	w, ok := r.Between(a, b)
	if !ok {
		return nil, ErrWarNotFound
	}
	if w.Status == WarEnded {
		return nil, ErrWarState
	}
	w.Status = WarEnded
	w.EndAt = r.nowUnix()
	return w, nil
}

// Snapshot returns all war records for persistence.
func (r *WarRegistry) Snapshot() []*War {
	out := make([]*War, 0, len(r.Wars))
	for _, w := range r.Wars {
		out = append(out, w)
	}
	return out
}

// Restore rebuilds the registry from a persisted snapshot.
func (r *WarRegistry) Restore(wars []*War) {
	r.Wars = make(map[WarKey]*War, len(wars))
	for _, w := range wars {
		r.Wars[w.Key] = w
	}
}

// For lists all wars involving the faction, any status.
func (r *WarRegistry) For(f store.FactionID) []*War {
	var out []*War
	for _, w := range r.Wars {
		if w.Key.Attacker == f || w.Key.Defender == f {
			out = append(out, w)
		}
	}
	return out
}

func (r *WarRegistry) nowUnix() int64 {
	if r.now == nil {
		return time.Now().Unix()
	}
	return r.now().Unix()
}
