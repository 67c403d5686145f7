// Package license manages per-player license grants, purchase, expiry
// notification, and verdict-imposed bans.
package license

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
)

var ErrUnknownType = errors.New("unknown license type")

// Def is the price and duration of one license type.
type Def struct {
	Cost         int64 `yaml:"cost"`
	DurationDays int   `yaml:"duration_days"`
}

// Config is the license schedule plus the expiry-notice thresholds.
type Config struct {
	Defs              map[store.LicenseType]Def `yaml:"defs"`
	ExpireNoticeHours []int                     `yaml:"expire_notice_hours"`
}

// DefaultConfig mirrors the stock schedule.
func DefaultConfig() Config {
	return Config{
		Defs: map[store.LicenseType]Def{
			store.LicenseTrade:        {Cost: 150, DurationDays: 7},
			store.LicenseGuard:        {Cost: 200, DurationDays: 7},
			store.LicenseWeaponL1:     {Cost: 100, DurationDays: 7},
			store.LicenseWeaponL2:     {Cost: 200, DurationDays: 7},
			store.LicenseWeaponL3:     {Cost: 400, DurationDays: 7},
			store.LicenseTurretPermit: {Cost: 300, DurationDays: 7},
		},
		ExpireNoticeHours: []int{24, 6},
	}
}

// Registry issues and expires licenses on player profiles.
type Registry struct {
	Config  Config
	Players *store.Store
	Ledger  *economy.Ledger

	notifier notify.Notifier
	now      func() time.Time
}

// NewRegistry wires the registry.
func NewRegistry(cfg Config, players *store.Store, ledger *economy.Ledger, n notify.Notifier) *Registry {
	return &Registry{Config: cfg, Players: players, Ledger: ledger, notifier: n, now: time.Now}
}

// SetClock overrides the registry clock. Tests only.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// HasLicense reports whether the player holds an unexpired, unbanned
// license of the given type.
func (r *Registry) HasLicense(player store.PlayerID, t store.LicenseType) bool {
	prof, ok := r.Players.Lookup(player)
	if !ok {
		return false
	}
	now := r.now().Unix()
	if until, ok := prof.LicenseBans[t]; ok && until > now {
		return false
	}
	l := prof.License(t)
	return l != nil && l.ExpiresAt > now
}

// HasAnyWeaponLicense reports whether any weapon-tier license is active.
func (r *Registry) HasAnyWeaponLicense(player store.PlayerID) bool {
	for _, t := range store.WeaponLicenses {
		if r.HasLicense(player, t) {
			return true
		}
	}
	return false
}

// GrantOrRenew issues a license or extends an existing one. Renewal counts
// from max(existing expiry, now), so renewing early never shortens the
// remaining time and renewing an expired license restarts from now.
// Renewal clears the consumed notice thresholds for a fresh cycle.
func (r *Registry) GrantOrRenew(player store.PlayerID, t store.LicenseType, durationDays int) *store.LicenseEntry {
	prof := r.Players.Profile(player)
	now := r.now().Unix()

	l := prof.License(t)
	if l == nil {
		l = &store.LicenseEntry{Type: t, ExpiresAt: now + int64(durationDays)*86400}
		prof.Licenses = append(prof.Licenses, l)
		return l
	}
	base := l.ExpiresAt
	if now > base {
		base = now
	}
	l.ExpiresAt = base + int64(durationDays)*86400
	l.NotifiedHours = nil
	return l
}

// Buy charges the configured cost and grants or renews the license.
func (r *Registry) Buy(player store.PlayerID, t store.LicenseType) (*store.LicenseEntry, error) {
	def, ok := r.Config.Defs[t]
	if !ok {
		return nil, ErrUnknownType
	}
	if err := r.Ledger.Withdraw(player, def.Cost); err != nil {
		return nil, err
	}
	l := r.GrantOrRenew(player, t, def.DurationDays)
	r.Ledger.CreditTreasury(def.Cost, "license_"+string(t), accountFor(player))
	r.notifier.Notify(player, notify.CategoryEconomy, "license_bought", "type", string(t), "until", l.ExpiresAt)
	return l, nil
}

// Ban makes the license type unusable for the player until the ban expires.
// The license entry itself is untouched.
func (r *Registry) Ban(player store.PlayerID, t store.LicenseType, minutes int) {
	prof := r.Players.Profile(player)
	if prof.LicenseBans == nil {
		prof.LicenseBans = make(map[store.LicenseType]int64)
	}
	prof.LicenseBans[t] = r.now().Unix() + int64(minutes)*60
}

// ExpireTick sweeps every profile: fires each configured notice threshold at
// most once per license, then notifies and removes expired entries. Running
// the sweep twice at the same instant is a no-op the second time.
func (r *Registry) ExpireTick() {
	now := r.now().Unix()
	thresholds := r.noticeThresholds()

	for id, prof := range r.Players.Players {
		if len(prof.Licenses) == 0 {
			continue
		}
		kept := prof.Licenses[:0]
		for _, l := range prof.Licenses {
			if l.ExpiresAt <= now {
				r.notifier.Notify(id, notify.CategoryEconomy, "license_expired", "type", string(l.Type))
				continue
			}
			secondsLeft := l.ExpiresAt - now
			for _, hours := range thresholds {
				if secondsLeft <= int64(hours)*3600 && !l.Notified(hours) {
					r.notifier.Notify(id, notify.CategoryEconomy, "license_expiring",
						"type", string(l.Type), "hours", hours)
					l.NotifiedHours = append(l.NotifiedHours, hours)
				}
			}
			kept = append(kept, l)
		}
		prof.Licenses = kept
	}
}

// noticeThresholds returns the configured thresholds, deduplicated,
// positive, descending.
func (r *Registry) noticeThresholds() []int {
	seen := map[int]bool{}
	var out []int
	for _, h := range r.Config.ExpireNoticeHours {
		if h > 0 && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func accountFor(p store.PlayerID) string {
	return "player:" + strconv.FormatUint(uint64(p), 10)
}
