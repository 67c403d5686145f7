// Package config loads the YAML configuration, applies defaults, and
// resolves environment overrides for sensitive values.
package config

import (
	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/enforce"
	"github.com/Shkiper2006/RustRP/internal/license"
	"github.com/Shkiper2006/RustRP/internal/raid"
	"github.com/Shkiper2006/RustRP/internal/roles"
	"github.com/Shkiper2006/RustRP/internal/zones"
)

// ZoneConfig is the YAML shape of one configured zone.
type ZoneConfig struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"` // CITY_SAFE, SUBURB, WILD, SPECIAL_EVENT
	Center   zones.Position `yaml:"center"`
	Radius   float64        `yaml:"radius"`
	Priority int            `yaml:"priority"`
}

// Config is the full configuration tree.
type Config struct {
	Listen      string `yaml:"listen"`
	AdminKey    string `yaml:"admin_key"`
	DataDir     string `yaml:"data_dir"`
	JournalPath string `yaml:"journal_path"`

	FastSweepSeconds int `yaml:"fast_sweep_seconds"`
	TaxSweepSeconds  int `yaml:"tax_sweep_seconds"`

	Raid     raid.Config                       `yaml:"raid"`
	Licenses license.Config                    `yaml:"licenses"`
	Civic    economy.CivicConfig               `yaml:"civic"`
	Enforce  enforce.Config                    `yaml:"enforce"`
	Zones    []ZoneConfig                      `yaml:"zones"`
	Roles    map[roles.Role]roles.HandlerConfig `yaml:"roles"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Listen:           ":8090",
		DataDir:          "data",
		JournalPath:      "data/journal.db",
		FastSweepSeconds: 60,
		TaxSweepSeconds:  7 * 24 * 3600,
		Raid:             raid.DefaultConfig(),
		Licenses:         license.DefaultConfig(),
		Civic:            economy.DefaultCivicConfig(),
		Enforce:          enforce.DefaultConfig(),
		Roles:            roles.DefaultHandlers(),
	}
}

// BuildResolver converts the configured zones into a resolver. Zones with
// an unknown type are skipped with a warning by the caller's loader; here
// they default to WILD and carry no blocks.
func (c Config) BuildResolver() *zones.Resolver {
	r := zones.NewResolver()
	for _, zc := range c.Zones {
		t, _ := zones.ParseType(zc.Type)
		r.Add(&zones.Zone{
			ID:       zc.ID,
			Type:     t,
			Center:   zc.Center,
			Radius:   zc.Radius,
			Priority: zc.Priority,
		})
	}
	return r
}
