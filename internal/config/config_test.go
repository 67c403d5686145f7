package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Shkiper2006/RustRP/internal/zones"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Listen != ":8090" || cfg.FastSweepSeconds != 60 {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.Raid.Windows.Enabled || len(cfg.Raid.Windows.Windows) != 2 {
		t.Errorf("raid window defaults = %+v", cfg.Raid.Windows)
	}
}

func TestLoad_MalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	os.WriteFile(path, []byte("listen: [unclosed"), 0o644)

	cfg := Load(path)
	if cfg.Listen != ":8090" {
		t.Errorf("listen = %q, want the default after a malformed file", cfg.Listen)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	os.WriteFile(path, []byte(`
listen: ":9999"
civic:
  insurance_cost: 500
zones:
  - id: downtown
    type: CITY_SAFE
    center: {x: 0, y: 0, z: 0}
    radius: 200
    priority: 10
`), 0o644)

	cfg := Load(path)
	if cfg.Listen != ":9999" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Civic.InsuranceCost != 500 {
		t.Errorf("insurance cost = %d", cfg.Civic.InsuranceCost)
	}
	// Untouched sections keep their defaults.
	if cfg.FastSweepSeconds != 60 {
		t.Errorf("fast sweep = %d", cfg.FastSweepSeconds)
	}

	r := cfg.BuildResolver()
	if got := r.TypeAt(zones.Position{X: 50}); got != zones.TypeCitySafe {
		t.Errorf("zone type at 50 = %v", got)
	}
}

func TestLoad_EnvOverridesAdminKey(t *testing.T) {
	t.Setenv(envAdminKey, "secret-from-env")
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.AdminKey != "secret-from-env" {
		t.Errorf("admin key = %q", cfg.AdminKey)
	}
}
