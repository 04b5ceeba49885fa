package manifest

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Location binds handler chains to a URL prefix.
type Location struct {
	Path     string            `toml:"path"`
	Methods  []string          `toml:"methods"`
	Handlers map[string]string `toml:"handlers"`
	Options  Options           `toml:"options"`
	Policy   Policy            `toml:"policy"`
	LogBody  bool              `toml:"log_body"`
	Tags     []string          `toml:"tags"`
}

type Policy struct {
	TimeoutMS int `toml:"timeout_ms"`
}

// normalize path/methods/handler keys
func (l *Location) normalize() error {
	if l.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(l.Path, "/") {
		l.Path = "/" + l.Path
	}
	if l.Path != "/" {
		l.Path = path.Clean(l.Path)
	}
	for i, m := range l.Methods {
		l.Methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	if len(l.Methods) == 0 {
		l.Methods = []string{"GET"}
	}
	if len(l.Handlers) > 0 {
		hs := make(map[string]string, len(l.Handlers))
		for k, v := range l.Handlers {
			hs[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		l.Handlers = hs
	}
	return nil
}

// validate fields that are independent of global state.
func (l *Location) validate() error {
	if len(l.Handlers) == 0 {
		return errors.New("at least one handler chain is required")
	}
	types := make([]string, 0, len(l.Handlers))
	for k := range l.Handlers {
		types = append(types, k)
	}
	sort.Strings(types)
	for _, k := range types {
		if !knownPhase(k) {
			return fmt.Errorf("unknown handler type %q", k)
		}
		if l.Handlers[k] == "" {
			return fmt.Errorf("handlers.%s is empty", k)
		}
	}
	for _, m := range l.Methods {
		if m == "" {
			return errors.New("empty method")
		}
	}
	if l.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	if err := l.Options.validate(); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return nil
}

// Chains returns the configured phases in run order.
func (l *Location) Chains() []Phase {
	out := make([]Phase, 0, len(l.Handlers))
	for _, p := range Phases {
		if _, ok := l.Handlers[string(p)]; ok {
			out = append(out, p)
		}
	}
	return out
}
