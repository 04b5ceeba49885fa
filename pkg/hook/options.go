package hook

import (
	"path/filepath"
	"strings"
)

const (
	OptAutoReload = "autoreload"
	OptRootPkg    = "rootpkg"
	OptDebug      = "debug"
	OptSearchPath = "searchpath"
	// OptLegacySearchPath is the older spelling of OptSearchPath; the newer
	// key wins when both are present.
	OptLegacySearchPath = "pythonpath"
)

// Options is the per-request snapshot of dispatch settings.
type Options struct {
	AutoReload bool
	RootPkg    string
	Debug      bool
	// SearchPath replaces the loader search path when non-nil.
	SearchPath []string
}

// DefaultOptions returns the options used when a key is absent.
func DefaultOptions() Options {
	return Options{AutoReload: true}
}

// ParseOptions builds an Options snapshot from a raw option mapping.
// Unparseable booleans keep their default.
func ParseOptions(raw map[string]string) Options {
	o := DefaultOptions()
	if v, ok := raw[OptAutoReload]; ok {
		o.AutoReload = ParseBool(v, o.AutoReload)
	}
	if v, ok := raw[OptRootPkg]; ok {
		o.RootPkg = strings.TrimSpace(v)
	}
	if v, ok := raw[OptDebug]; ok {
		o.Debug = ParseBool(v, o.Debug)
	}
	if v, ok := raw[OptSearchPath]; ok {
		o.SearchPath = splitPath(v)
	} else if v, ok := raw[OptLegacySearchPath]; ok {
		o.SearchPath = splitPath(v)
	}
	return o
}

// ParseBool understands 1/0, true/false, on/off and yes/no.
func ParseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no", "":
		return false
	}
	return def
}

func splitPath(s string) []string {
	var out []string
	for _, part := range filepath.SplitList(s) {
		for _, f := range strings.Fields(part) {
			out = append(out, f)
		}
	}
	return out
}
