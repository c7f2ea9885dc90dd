package config

import (
	"fmt"

	"github.com/yndnr/shmap-go/internal/infra/confloader"
)

// Load reads the configuration. Sources, lowest priority first: defaults,
// the YAML file at path (skipped when empty), SHMAP_* environment
// variables, then overrides, a flat map of dotted keys such as
// "store.dir". The result is verified.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	l := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
