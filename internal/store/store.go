// Package store holds the shared player-profile collection and the core
// identifier types referenced by every service. The store is created once
// at startup and passed explicitly into each service — there is no
// process-wide singleton.
package store

// PlayerID is a platform account identifier (Steam64 in production).
type PlayerID uint64

// FactionID identifies a faction.
type FactionID string

// LicenseType enumerates the purchasable licenses.
type LicenseType string

const (
	LicenseTrade        LicenseType = "Trade"
	LicenseGuard        LicenseType = "Guard"
	LicenseWeaponL1     LicenseType = "WeaponL1"
	LicenseWeaponL2     LicenseType = "WeaponL2"
	LicenseWeaponL3     LicenseType = "WeaponL3"
	LicenseTurretPermit LicenseType = "TurretPermit"
)

// WeaponLicenses are the license types that satisfy the carry gate in safe
// city zones, lowest tier first.
var WeaponLicenses = []LicenseType{LicenseWeaponL1, LicenseWeaponL2, LicenseWeaponL3}

// LicenseEntry is one granted license on a profile. NotifiedHours records
// which expiry-notice thresholds have already fired, so the expiry sweep
// never notifies the same threshold twice.
type LicenseEntry struct {
	Type          LicenseType `json:"type"`
	ExpiresAt     int64       `json:"expires_at"`
	NotifiedHours []int       `json:"notified_hours,omitempty"`
}

// Notified reports whether the given notice threshold already fired.
func (l *LicenseEntry) Notified(hours int) bool {
	for _, h := range l.NotifiedHours {
		if h == hours {
			return true
		}
	}
	return false
}

// PlayerProfile is the persistent per-player record. Created on first
// observed presence, mutated by every service, never deleted.
type PlayerProfile struct {
	ID          PlayerID              `json:"id"`
	Name        string                `json:"name"`
	FactionID   FactionID             `json:"faction_id,omitempty"`
	Roles       map[string]bool       `json:"roles,omitempty"` // mayor/police/judge/medic
	Licenses    []*LicenseEntry       `json:"licenses,omitempty"`
	LicenseBans map[LicenseType]int64 `json:"license_bans,omitempty"` // type → ban expiry (unix)

	InsuranceUntil int64 `json:"insurance_until,omitempty"`
	BusinessUntil  int64 `json:"business_until,omitempty"`
	CityBanUntil   int64 `json:"city_ban_until,omitempty"`
	JailUntil      int64 `json:"jail_until,omitempty"`
	Strikes        int   `json:"strikes,omitempty"`
	LastDeath      int64 `json:"last_death,omitempty"`
}

// HasRole reports whether the profile carries the named civic role.
func (p *PlayerProfile) HasRole(role string) bool {
	return p.Roles[role]
}

// License returns the entry for the given type, or nil.
func (p *PlayerProfile) License(t LicenseType) *LicenseEntry {
	for _, l := range p.Licenses {
		if l.Type == t {
			return l
		}
	}
	return nil
}

// AuditEntry is one privileged police/court action in the append-only
// audit log.
type AuditEntry struct {
	Actor     PlayerID `json:"actor" db:"actor"`
	Action    string   `json:"action" db:"action"`
	Detail    string   `json:"detail" db:"detail"`
	CreatedAt int64    `json:"created_at" db:"created_at"`
}

// AuditSink appends audit entries. A sink failure must never block the
// action being audited.
type AuditSink interface {
	AppendAudit(e AuditEntry) error
}

// Store is the in-memory player-profile collection.
type Store struct {
	Players map[PlayerID]*PlayerProfile `json:"players"`
}

// New creates an empty store.
func New() *Store {
	return &Store{Players: make(map[PlayerID]*PlayerProfile)}
}

// Profile returns the profile for id, creating it on first sight.
func (s *Store) Profile(id PlayerID) *PlayerProfile {
	p, ok := s.Players[id]
	if !ok {
		p = &PlayerProfile{ID: id, Name: "", Roles: map[string]bool{}}
		s.Players[id] = p
	}
	if p.Roles == nil {
		p.Roles = map[string]bool{}
	}
	return p
}

// Lookup returns the profile for id without creating one.
func (s *Store) Lookup(id PlayerID) (*PlayerProfile, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// Faction returns the faction the player belongs to, if any.
func (s *Store) Faction(id PlayerID) (FactionID, bool) {
	p, ok := s.Players[id]
	if !ok || p.FactionID == "" {
		return "", false
	}
	return p.FactionID, true
}
