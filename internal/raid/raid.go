// Package raid decides whether structure damage against another player's
// property is authorized, and on what basis.
package raid

import (
	"time"

	"github.com/Shkiper2006/RustRP/internal/store"
)

// Basis is the justification category that permits a raid.
type Basis uint8

const (
	BasisNone Basis = iota
	BasisWar
	BasisWarrant
	BasisContract
	BasisRetaliation
)

var basisNames = map[Basis]string{
	BasisNone:        "NONE",
	BasisWar:         "WAR",
	BasisWarrant:     "WARRANT",
	BasisContract:    "CONTRACT",
	BasisRetaliation: "RETALIATION",
}

func (b Basis) String() string { return basisNames[b] }

// Owner is the resolved owner of the damaged object. Known is false when
// the underlying object reports no owner.
type Owner struct {
	ID    store.PlayerID
	Known bool
}

// KnownOwner wraps a resolved owner id.
func KnownOwner(id store.PlayerID) Owner { return Owner{ID: id, Known: true} }

// UnknownOwner is the unresolved-owner value.
var UnknownOwner = Owner{}

// Decision is the outcome of an authorization query. Reason is a stable
// key the command surface maps to player-facing text.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Basis   Basis  `json:"basis"`
	Reason  string `json:"reason"`
}

// Reason keys returned by Authorize.
const (
	ReasonAllowed      = "allowed"
	ReasonWindowClosed = "raid_window_closed"
	ReasonNoOwner      = "raid_no_owner"
	ReasonNoBasis      = "raid_no_basis"
)

// WarLookup answers whether two factions are actively at war.
type WarLookup interface {
	AtWar(a, b store.FactionID) bool
}

// GrantLookup answers warrant and retaliation queries.
type GrantLookup interface {
	HasActiveWarrant(attacker, owner store.PlayerID) bool
	HasRetaliationPermit(attacker, owner store.PlayerID) bool
}

// ContractLookup answers raid-contract queries.
type ContractLookup interface {
	HasActiveRaidContract(attacker, owner store.PlayerID) bool
}

// Config holds the raid policy knobs.
type Config struct {
	Windows           WindowConfig `yaml:"windows"`
	BlockUnknownOwner bool         `yaml:"block_unknown_owner"`
}

// DefaultConfig is the stock raid policy.
func DefaultConfig() Config {
	return Config{Windows: DefaultWindowConfig(), BlockUnknownOwner: true}
}

// Engine combines wars, warrants, contracts, and retaliation grants into a
// single admit/deny decision.
type Engine struct {
	Config    Config
	Players   *store.Store
	Wars      WarLookup
	Grants    GrantLookup
	Contracts ContractLookup

	now func() time.Time
}

// NewEngine wires the engine.
func NewEngine(cfg Config, players *store.Store, wars WarLookup, grants GrantLookup, contracts ContractLookup) *Engine {
	return &Engine{
		Config:    cfg,
		Players:   players,
		Wars:      wars,
		Grants:    grants,
		Contracts: contracts,
		now:       time.Now,
	}
}

// SetClock overrides the engine clock. Tests only.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Authorize decides whether the attacker may damage the owner's structures.
// The window gate applies before any basis: outside the window every raid
// is denied. Bases are checked in fixed precedence and the first match
// wins: WAR, then WARRANT, then CONTRACT, then RETALIATION.
func (e *Engine) Authorize(attacker store.PlayerID, owner Owner) Decision {
	if !e.Config.Windows.OpenAt(e.now()) {
		return Decision{Reason: ReasonWindowClosed}
	}
	if !owner.Known {
		if e.Config.BlockUnknownOwner {
			return Decision{Reason: ReasonNoOwner}
		}
		// Unowned objects carry no raid protection.
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}
	if attacker == owner.ID {
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}

	if af, ok := e.Players.Faction(attacker); ok {
		if of, ok := e.Players.Faction(owner.ID); ok && e.Wars.AtWar(af, of) {
			return Decision{Allowed: true, Basis: BasisWar, Reason: ReasonAllowed}
		}
	}
	if e.Grants.HasActiveWarrant(attacker, owner.ID) {
		return Decision{Allowed: true, Basis: BasisWarrant, Reason: ReasonAllowed}
	}
	if e.Contracts.HasActiveRaidContract(attacker, owner.ID) {
		return Decision{Allowed: true, Basis: BasisContract, Reason: ReasonAllowed}
	}
	if e.Grants.HasRetaliationPermit(attacker, owner.ID) {
		return Decision{Allowed: true, Basis: BasisRetaliation, Reason: ReasonAllowed}
	}
	return Decision{Reason: ReasonNoBasis}
}
