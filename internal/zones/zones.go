// Package zones classifies world positions into configured zones and derives
// the block-flag set active at a position. Resolution is a pure function of
// the current zone configuration and is called on every damage, attack and
// loot event.
package zones

import (
	"math"
	"sort"
)

// Position is a point in world space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between two positions.
func (p Position) Distance(o Position) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Type classifies a zone.
type Type uint8

const (
	TypeCitySafe     Type = iota // Protected city core
	TypeSuburb                   // Residential ring, reserved for future blocks
	TypeWild                     // Unzoned wilderness (default outside all zones)
	TypeSpecialEvent             // Event area, dominates overlapping zones
)

var typeNames = map[Type]string{
	TypeCitySafe:     "CITY_SAFE",
	TypeSuburb:       "SUBURB",
	TypeWild:         "WILD",
	TypeSpecialEvent: "SPECIAL_EVENT",
}

func (t Type) String() string { return typeNames[t] }

// ParseType maps a configuration string to a zone type.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return TypeWild, false
}

// eventPriorityBonus lifts SPECIAL_EVENT zones above any configured
// city/suburb priority. The constant matches the original rule set.
const eventPriorityBonus = 10000

// Zone is a circular protected area. Polygon shapes are a future extension.
type Zone struct {
	ID       string   `json:"id"`
	Type     Type     `json:"type"`
	Center   Position `json:"center"`
	Radius   float64  `json:"radius"`
	Priority int      `json:"priority"`
}

// Contains reports whether the position lies inside the zone circle.
func (z *Zone) Contains(pos Position) bool {
	return pos.Distance(z.Center) <= z.Radius
}

// effectivePriority applies the special-event bonus.
func (z *Zone) effectivePriority() int {
	if z.Type == TypeSpecialEvent {
		return z.Priority + eventPriorityBonus
	}
	return z.Priority
}

// BlockSet is the set of action categories blocked inside a zone. An action
// is blocked when its flag is set in either the actor's or the target's
// resolved set.
type BlockSet struct {
	Combat     bool `json:"combat" yaml:"combat"`
	Raid       bool `json:"raid" yaml:"raid"`
	Theft      bool `json:"theft" yaml:"theft"`
	Turrets    bool `json:"turrets" yaml:"turrets"`
	Traps      bool `json:"traps" yaml:"traps"`
	Loot       bool `json:"loot" yaml:"loot"`
	Explosives bool `json:"explosives" yaml:"explosives"`
}

// Union returns the logical OR of two block sets.
func (b BlockSet) Union(o BlockSet) BlockSet {
	return BlockSet{
		Combat:     b.Combat || o.Combat,
		Raid:       b.Raid || o.Raid,
		Theft:      b.Theft || o.Theft,
		Turrets:    b.Turrets || o.Turrets,
		Traps:      b.Traps || o.Traps,
		Loot:       b.Loot || o.Loot,
		Explosives: b.Explosives || o.Explosives,
	}
}

// AllBlocked is the fully restrictive set, the default for city cores and
// event areas.
var AllBlocked = BlockSet{
	Combat: true, Raid: true, Theft: true,
	Turrets: true, Traps: true, Loot: true, Explosives: true,
}

// Resolver resolves positions against the configured zone list.
type Resolver struct {
	Zones map[string]*Zone `json:"zones"`

	// Block sets per zone type. WILD and SUBURB resolve to the zero set
	// unless configured otherwise (reserved for future rules).
	CitySafeBlocks     BlockSet `json:"-"`
	SpecialEventBlocks BlockSet `json:"-"`

	ordered []*Zone
}

// NewResolver creates a resolver with the default block configuration.
func NewResolver() *Resolver {
	return &Resolver{
		Zones:              make(map[string]*Zone),
		CitySafeBlocks:     AllBlocked,
		SpecialEventBlocks: AllBlocked,
	}
}

// Add registers or replaces a zone.
func (r *Resolver) Add(z *Zone) {
	r.Zones[z.ID] = z
	r.ordered = nil
}

// Remove deletes a zone by id.
func (r *Resolver) Remove(id string) {
	delete(r.Zones, id)
	r.ordered = nil
}

// Resolve returns the zone containing pos with the highest effective
// priority, or false if no zone contains it (wilderness). Ties resolve to
// the zone first seen at that priority; scan order is sorted by zone ID so
// the tie-break is stable across calls.
func (r *Resolver) Resolve(pos Position) (*Zone, bool) {
	var best *Zone
	bestPr := math.MinInt
	for _, z := range r.scanOrder() {
		if !z.Contains(pos) {
			continue
		}
		if pr := z.effectivePriority(); pr > bestPr {
			bestPr = pr
			best = z
		}
	}
	return best, best != nil
}

// TypeAt returns the zone type at pos, WILD outside all zones.
func (r *Resolver) TypeAt(pos Position) Type {
	if z, ok := r.Resolve(pos); ok {
		return z.Type
	}
	return TypeWild
}

// IsCitySafe reports whether pos falls in a protected area (city core or
// special event).
func (r *Resolver) IsCitySafe(pos Position) bool {
	t := r.TypeAt(pos)
	return t == TypeCitySafe || t == TypeSpecialEvent
}

// BlockFlags returns the block set active at pos.
func (r *Resolver) BlockFlags(pos Position) BlockSet {
	switch r.TypeAt(pos) {
	case TypeCitySafe:
		return r.CitySafeBlocks
	case TypeSpecialEvent:
		return r.SpecialEventBlocks
	default:
		return BlockSet{}
	}
}

// CombinedFlags resolves both endpoints of an interaction and ORs the sets.
func (r *Resolver) CombinedFlags(a, b Position) BlockSet {
	return r.BlockFlags(a).Union(r.BlockFlags(b))
}

// scanOrder returns the zones sorted by ID, cached until the set changes.
func (r *Resolver) scanOrder() []*Zone {
	if r.ordered != nil {
		return r.ordered
	}
	ids := make([]string, 0, len(r.Zones))
	for id := range r.Zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	r.ordered = make([]*Zone, len(ids))
	for i, id := range ids {
		r.ordered[i] = r.Zones[id]
	}
	return r.ordered
}
