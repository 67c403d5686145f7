// Civic economy: player-to-player payments, medic insurance, business
// registration, license purchases, and the recurring business tax.
package economy

import (
	"errors"
	"math"
	"time"

	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
)

var ErrSelfPayment = errors.New("cannot pay yourself")

// CivicConfig holds the fee schedule for civic services.
type CivicConfig struct {
	BusinessRegistrationCost int64   `yaml:"business_registration_cost"`
	BusinessDurationDays     int     `yaml:"business_duration_days"`
	InsuranceCost            int64   `yaml:"insurance_cost"`
	InsuranceDurationDays    int     `yaml:"insurance_duration_days"`
	BusinessTaxRate          float64 `yaml:"business_tax_rate"`
}

// DefaultCivicConfig mirrors the stock server fee schedule.
func DefaultCivicConfig() CivicConfig {
	return CivicConfig{
		BusinessRegistrationCost: 200,
		BusinessDurationDays:     7,
		InsuranceCost:            250,
		InsuranceDurationDays:    7,
		BusinessTaxRate:          0.10,
	}
}

// Civic executes the fee-based civic services against the ledger.
type Civic struct {
	Config  CivicConfig
	Ledger  *Ledger
	Players *store.Store

	notifier notify.Notifier
	now      func() time.Time
}

// NewCivic wires the civic service.
func NewCivic(cfg CivicConfig, ledger *Ledger, players *store.Store, n notify.Notifier) *Civic {
	return &Civic{Config: cfg, Ledger: ledger, Players: players, notifier: n, now: time.Now}
}

// SetClock overrides the service clock. Tests only.
func (c *Civic) SetClock(now func() time.Time) { c.now = now }

// Pay transfers amount from one player to another.
func (c *Civic) Pay(from, to store.PlayerID, amount int64) error {
	if from == to {
		return ErrSelfPayment
	}
	return c.Ledger.Transfer(from, to, amount, "pay")
}

// BuyInsurance charges the insurance fee and extends the player's coverage
// from max(current expiry, now), so buying early never loses time.
func (c *Civic) BuyInsurance(player store.PlayerID) (int64, error) {
	if err := c.Ledger.Withdraw(player, c.Config.InsuranceCost); err != nil {
		return 0, err
	}
	prof := c.Players.Profile(player)
	prof.InsuranceUntil = extendExpiry(prof.InsuranceUntil, c.now().Unix(), c.Config.InsuranceDurationDays)
	c.Ledger.CreditTreasury(c.Config.InsuranceCost, "medic_insurance", playerAccount(player))
	c.notifier.Notify(player, notify.CategoryEconomy, "insurance_purchased", "until", prof.InsuranceUntil)
	return prof.InsuranceUntil, nil
}

// RegisterBusiness charges the registration fee and extends the player's
// registration from max(current expiry, now).
func (c *Civic) RegisterBusiness(player store.PlayerID) (int64, error) {
	if err := c.Ledger.Withdraw(player, c.Config.BusinessRegistrationCost); err != nil {
		return 0, err
	}
	prof := c.Players.Profile(player)
	prof.BusinessUntil = extendExpiry(prof.BusinessUntil, c.now().Unix(), c.Config.BusinessDurationDays)
	c.Ledger.CreditTreasury(c.Config.BusinessRegistrationCost, "business_registration", playerAccount(player))
	c.notifier.Notify(player, notify.CategoryEconomy, "business_registered", "until", prof.BusinessUntil)
	return prof.BusinessUntil, nil
}

// ChargeWeeklyTax collects the business tax from every profile with an
// active registration. A failed charge notifies the player and moves on;
// the sweep never halts.
func (c *Civic) ChargeWeeklyTax() {
	tax := int64(math.Ceil(float64(c.Config.BusinessRegistrationCost) * c.Config.BusinessTaxRate))
	if tax <= 0 {
		return
	}
	now := c.now().Unix()
	for id, prof := range c.Players.Players {
		if prof.BusinessUntil <= now {
			continue
		}
		if err := c.Ledger.Withdraw(id, tax); err != nil {
			c.notifier.Notify(id, notify.CategoryEconomy, "business_tax_failed", "amount", tax)
			continue
		}
		c.Ledger.CreditTreasury(tax, "business_tax", playerAccount(id))
		c.notifier.Notify(id, notify.CategoryEconomy, "business_tax_charged", "amount", tax)
	}
}

// extendExpiry pushes an expiry forward by days, counting from whichever is
// later: the current expiry or now. An already-lapsed expiry restarts from
// now rather than stacking onto the past.
func extendExpiry(current, now int64, days int) int64 {
	base := current
	if now > base {
		base = now
	}
	return base + int64(days)*86400
}
