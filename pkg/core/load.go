// pkg/core/load.go
package core

import (
	"fmt"
	"os"

	manifest "github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads and validates the manifest at path. Every handler token
// must parse; modules are not imported until a request needs them.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	var cfg manifest.Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	for _, loc := range cfg.Locations {
		for _, phase := range loc.Chains() {
			if _, err := ParseChain(loc.Handlers[string(phase)]); err != nil {
				return manifest.Config{}, fmt.Errorf("location %s: handlers.%s: %w", loc.Path, phase, err)
			}
		}
	}
	return cfg, nil
}
