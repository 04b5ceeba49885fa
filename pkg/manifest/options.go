package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Options is a dispatch options table. Values may be strings, booleans,
// numbers or string arrays; they reach handlers as strings.
type Options map[string]any

// Strings flattens o. Arrays are joined with the OS path list separator.
func (o Options) Strings() map[string]string {
	out := make(map[string]string, len(o))
	for k, v := range o {
		s, _ := optionString(v)
		out[strings.ToLower(k)] = s
	}
	return out
}

// Merge returns base overlaid with o.
func (o Options) Merge(base Options) map[string]string {
	out := base.Strings()
	for k, v := range o.Strings() {
		out[k] = v
	}
	return out
}

func (o Options) validate() error {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := optionString(o[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

func optionString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("array values must be strings, got %T", e)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, string(filepath.ListSeparator)), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
