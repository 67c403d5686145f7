package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	envAdminKey = "RPCORE_ADMIN_KEY"
	envListen   = "RPCORE_LISTEN"
)

// Load reads the configuration file over the defaults. A missing file is
// normal (defaults apply); a malformed file is logged loudly and the
// defaults apply — startup never aborts on configuration.
func Load(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no config file, using defaults", "path", path)
	case err != nil:
		slog.Error("config unreadable, using defaults", "path", path, "err", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			slog.Error("config malformed, using defaults", "path", path, "err", err)
			cfg = Default()
		}
	}

	if v := os.Getenv(envAdminKey); v != "" {
		cfg.AdminKey = v
	}
	if v := os.Getenv(envListen); v != "" {
		cfg.Listen = v
	}
	return cfg
}
