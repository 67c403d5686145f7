// Package policy is the synchronous entry point for game events. It
// combines zone block-flags, raid authorization, and license gates into a
// single admit/deny verdict with a stable reason key.
package policy

import (
	"github.com/Shkiper2006/RustRP/internal/raid"
	"github.com/Shkiper2006/RustRP/internal/store"
	"github.com/Shkiper2006/RustRP/internal/zones"
)

// Event enumerates the gated game events.
type Event uint8

const (
	EventAttack Event = iota
	EventRaidDamage
	EventLoot
	EventTheft
	EventTurretDeploy
	EventTrapDeploy
	EventExplosiveThrow
	EventWeaponCarry
)

var eventNames = map[Event]string{
	EventAttack:         "attack",
	EventRaidDamage:     "raid_damage",
	EventLoot:           "loot",
	EventTheft:          "theft",
	EventTurretDeploy:   "turret_deploy",
	EventTrapDeploy:     "trap_deploy",
	EventExplosiveThrow: "explosive_throw",
	EventWeaponCarry:    "weapon_carry",
}

func (e Event) String() string { return eventNames[e] }

// ParseEvent maps a wire string to an event.
func ParseEvent(s string) (Event, bool) {
	for e, name := range eventNames {
		if name == s {
			return e, true
		}
	}
	return 0, false
}

// Reason keys for zone and license denials. Raid denials reuse the keys
// from the raid package.
const (
	ReasonAllowed           = "allowed"
	ReasonCombatBlocked     = "zone_combat_blocked"
	ReasonRaidBlocked       = "zone_raid_blocked"
	ReasonLootBlocked       = "zone_loot_blocked"
	ReasonTheftBlocked      = "zone_theft_blocked"
	ReasonTurretsBlocked    = "zone_turrets_blocked"
	ReasonTrapsBlocked      = "zone_traps_blocked"
	ReasonExplosivesBlocked = "zone_explosives_blocked"
	ReasonLicenseRequired   = "license_required"
)

// Request is one game event to gate. TargetPos is the damaged or looted
// object's position; events without a distinct target pass the actor
// position twice. Owner is consulted for raid damage only.
type Request struct {
	Event     Event          `json:"event"`
	Actor     store.PlayerID `json:"actor"`
	ActorPos  zones.Position `json:"actor_pos"`
	TargetPos zones.Position `json:"target_pos"`
	Owner     raid.Owner     `json:"-"`
}

// Decision is the verdict handed back to the command surface.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  string     `json:"reason"`
	Basis   raid.Basis `json:"basis,omitempty"`
}

func allow() Decision             { return Decision{Allowed: true, Reason: ReasonAllowed} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// LicenseGate answers the license checks the gate needs.
type LicenseGate interface {
	HasLicense(player store.PlayerID, t store.LicenseType) bool
	HasAnyWeaponLicense(player store.PlayerID) bool
}

// Gate evaluates events. Zone flags from the actor and target positions
// are OR-combined and dominate: a zone denial is returned before raid
// bases are even consulted.
type Gate struct {
	Zones    *zones.Resolver
	Raids    *raid.Engine
	Licenses LicenseGate
}

// NewGate wires the gate.
func NewGate(z *zones.Resolver, r *raid.Engine, lic LicenseGate) *Gate {
	return &Gate{Zones: z, Raids: r, Licenses: lic}
}

// Evaluate gates one game event.
func (g *Gate) Evaluate(req Request) Decision {
	flags := g.Zones.CombinedFlags(req.ActorPos, req.TargetPos)

	switch req.Event {
	case EventAttack:
		if flags.Combat {
			return deny(ReasonCombatBlocked)
		}
	case EventRaidDamage:
		if flags.Raid {
			return deny(ReasonRaidBlocked)
		}
		d := g.Raids.Authorize(req.Actor, req.Owner)
		return Decision{Allowed: d.Allowed, Reason: d.Reason, Basis: d.Basis}
	case EventLoot:
		if flags.Loot {
			return deny(ReasonLootBlocked)
		}
	case EventTheft:
		if flags.Theft {
			return deny(ReasonTheftBlocked)
		}
	case EventTurretDeploy:
		if flags.Turrets {
			return deny(ReasonTurretsBlocked)
		}
		if !g.Licenses.HasLicense(req.Actor, store.LicenseTurretPermit) {
			return deny(ReasonLicenseRequired)
		}
	case EventTrapDeploy:
		if flags.Traps {
			return deny(ReasonTrapsBlocked)
		}
	case EventExplosiveThrow:
		if flags.Explosives {
			return deny(ReasonExplosivesBlocked)
		}
	case EventWeaponCarry:
		if g.Zones.IsCitySafe(req.ActorPos) && !g.Licenses.HasAnyWeaponLicense(req.Actor) {
			return deny(ReasonLicenseRequired)
		}
	}
	return allow()
}
