// Package enforce applies jail confinement and city-ban exclusion on a
// periodic sweep over every known player.
package enforce

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
	"github.com/Shkiper2006/RustRP/internal/zones"
)

// World is the host surface the loop moves players through. Position
// reports false for players not currently reachable (offline).
type World interface {
	Position(player store.PlayerID) (zones.Position, bool)
	Teleport(player store.PlayerID, pos zones.Position)
}

// Minimum interval between confinement teleports for one player, so a
// jailed player walking the boundary is not bounced every sweep.
const teleportCooldown = 5 * time.Second

// Config holds the jail geometry.
type Config struct {
	JailPoint     zones.Position `yaml:"jail_point"`
	JailRadius    float64        `yaml:"jail_radius"`
	BlockJailExit bool           `yaml:"block_jail_exit"`
}

// DefaultConfig is the stock jail setup.
func DefaultConfig() Config {
	return Config{JailRadius: 30, BlockJailExit: true}
}

// Loop sweeps profiles for expired or violated sentences. Teleport
// cooldowns and last-free-position tracking are in-memory only and reset
// on restart.
type Loop struct {
	Config  Config
	Players *store.Store
	Zones   *zones.Resolver
	World   World

	audit    store.AuditSink
	notifier notify.Notifier
	now      func() time.Time

	lastTeleport map[store.PlayerID]time.Time
	lastFreePos  map[store.PlayerID]zones.Position
}

// NewLoop wires the loop. audit may be nil.
func NewLoop(cfg Config, players *store.Store, z *zones.Resolver, world World, n notify.Notifier, audit store.AuditSink) *Loop {
	return &Loop{
		Config:       cfg,
		Players:      players,
		Zones:        z,
		World:        world,
		audit:        audit,
		notifier:     n,
		now:          time.Now,
		lastTeleport: make(map[store.PlayerID]time.Time),
		lastFreePos:  make(map[store.PlayerID]zones.Position),
	}
}

// SetClock overrides the loop clock. Tests only.
func (l *Loop) SetClock(now func() time.Time) { l.now = now }

// SendToJail relocates the player to the jail point if reachable.
func (l *Loop) SendToJail(player store.PlayerID) bool {
	if _, ok := l.World.Position(player); !ok {
		return false
	}
	l.World.Teleport(player, l.Config.JailPoint)
	l.lastTeleport[player] = l.now()
	return true
}

// Sweep runs one pass over every profile: release expired jail sentences,
// confine active ones, and keep city-banned players out of protected
// zones.
func (l *Loop) Sweep() {
	now := l.now()
	nowSec := now.Unix()

	for id, prof := range l.Players.Players {
		if prof.JailUntil != 0 && prof.JailUntil <= nowSec {
			prof.JailUntil = 0
			l.notifier.Notify(id, notify.CategoryPolice, "jail_released")
		}

		pos, reachable := l.World.Position(id)
		if !reachable {
			continue
		}

		if prof.JailUntil > nowSec && l.Config.BlockJailExit {
			l.confine(id, pos, now)
			continue
		}

		if prof.CityBanUntil > nowSec && l.Zones.IsCitySafe(pos) {
			l.expel(id)
			continue
		}
		if !l.Zones.IsCitySafe(pos) {
			l.lastFreePos[id] = pos
		}
	}
}

// confine bounces a jailed player back inside the jail radius.
func (l *Loop) confine(id store.PlayerID, pos zones.Position, now time.Time) {
	if pos.Distance(l.Config.JailPoint) <= l.Config.JailRadius {
		return
	}
	if last, ok := l.lastTeleport[id]; ok && now.Sub(last) < teleportCooldown {
		return
	}
	l.World.Teleport(id, l.Config.JailPoint)
	l.lastTeleport[id] = now
	l.notifier.Notify(id, notify.CategoryPolice, "jail_confined")
	l.record(id, "jail_teleport", fmt.Sprintf("returned to jail point from %.0f,%.0f,%.0f", pos.X, pos.Y, pos.Z))
}

// expel returns a city-banned player to their last known position outside
// the protected zones.
func (l *Loop) expel(id store.PlayerID) {
	last, ok := l.lastFreePos[id]
	if !ok {
		// No recorded free position yet; nothing safe to send them to.
		l.notifier.Notify(id, notify.CategoryPolice, "city_ban_active")
		return
	}
	l.World.Teleport(id, last)
	l.notifier.Notify(id, notify.CategoryPolice, "city_ban_expelled")
	l.record(id, "city_ban_teleport", "expelled from protected zone")
}

func (l *Loop) record(actor store.PlayerID, action, detail string) {
	if l.audit == nil {
		return
	}
	err := l.audit.AppendAudit(store.AuditEntry{
		Actor:     actor,
		Action:    action,
		Detail:    detail,
		CreatedAt: l.now().Unix(),
	})
	if err != nil {
		slog.Warn("audit append failed", "action", action, "err", err)
	}
}
