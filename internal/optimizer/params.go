package optimizer

import "strings"

// Parameters are the free-form arguments an action node passes to its strategy
type Parameters map[string]any

// Float returns a numeric parameter or def when it is absent or not numeric
func (p Parameters) Float(key string, def float64) float64 {
	if p == nil {
		return def
	}
	v, ok := p[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// String returns a string parameter or def when it is absent
func (p Parameters) String(key, def string) string {
	if p == nil {
		return def
	}
	s, ok := p[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Strings returns a list-of-strings parameter. YAML decodes lists as []any.
func (p Parameters) Strings(key string) []string {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}
