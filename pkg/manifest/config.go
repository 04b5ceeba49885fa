package manifest

import (
	"errors"
	"fmt"
)

// Config is the top-level manifest.
type Config struct {
	Options   Options    `toml:"options"`
	Loader    LoaderSpec `toml:"loader"`
	Locations []Location `toml:"location"`
}

// LoaderSpec configures the module loader.
type LoaderSpec struct {
	Watch           bool     `toml:"watch"`
	WatchIntervalMS int      `toml:"watch_interval_ms"`
	SearchPath      []string `toml:"searchpath"`
}

// Validate normalises locations in place and rejects anything the router
// could not mount.
func (c *Config) Validate() error {
	if len(c.Locations) == 0 {
		return errors.New("no locations defined")
	}
	if c.Loader.WatchIntervalMS < 0 {
		return errors.New("loader.watch_interval_ms must be >= 0")
	}
	if err := c.Options.validate(); err != nil {
		return fmt.Errorf("options: %w", err)
	}

	seen := make(map[string]int, len(c.Locations))
	for i := range c.Locations {
		if err := c.Locations[i].normalize(); err != nil {
			return fmt.Errorf("location %d: %w", i, err)
		}
		if err := c.Locations[i].validate(); err != nil {
			return fmt.Errorf("location %d (%s): %w", i, c.Locations[i].Path, err)
		}
		if j, dup := seen[c.Locations[i].Path]; dup {
			return fmt.Errorf("location %d: path %s already used by location %d", i, c.Locations[i].Path, j)
		}
		seen[c.Locations[i].Path] = i
	}
	return nil
}
