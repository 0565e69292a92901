package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Properties is an immutable string-keyed property set. An empty value is
// treated the same as an absent one.
type Properties struct {
	values map[string]string
}

// NewProperties copies values into a new property set.
func NewProperties(values map[string]string) Properties {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Properties{values: m}
}

// Merge returns a new property set with overrides layered on top of p.
// Empty override values do not clear existing ones.
func (p Properties) Merge(overrides map[string]string) Properties {
	m := make(map[string]string, len(p.values)+len(overrides))
	for k, v := range p.values {
		m[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			m[k] = v
		}
	}
	return Properties{values: m}
}

// Lookup returns the value for key and whether it is set.
func (p Properties) Lookup(key string) (string, bool) {
	v, ok := p.values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// String returns the value for key, or def when unset.
func (p Properties) String(key, def string) string {
	if v, ok := p.Lookup(key); ok {
		return v
	}
	return def
}

// Bool returns the boolean value for key, or def when unset.
func (p Properties) Bool(key string, def bool) (bool, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def, &InvalidPropertyError{Key: key, Value: v, Want: "boolean"}
	}
	return b, nil
}

// Int returns the integer value for key, or def when unset.
func (p Properties) Int(key string, def int) (int, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, &InvalidPropertyError{Key: key, Value: v, Want: "integer"}
	}
	return n, nil
}

// Duration returns the duration value for key, or def when unset. A bare
// number is read as seconds.
func (p Properties) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, &InvalidPropertyError{Key: key, Value: v, Want: "duration"}
	}
	return d, nil
}

// Mandatory returns the value for key or a *MissingPropertyError.
func (p Properties) Mandatory(key string) (string, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return "", &MissingPropertyError{Key: key}
	}
	return v, nil
}

// Keys returns the set keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k, v := range p.values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ParseAssignments parses key=value pairs as given to -P on the command line.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// MissingPropertyError is returned when a mandatory property is unset.
type MissingPropertyError struct {
	Key string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("missing mandatory property %q", e.Key)
}

// InvalidPropertyError is returned when a property can not be parsed.
type InvalidPropertyError struct {
	Key   string
	Value string
	Want  string
}

func (e *InvalidPropertyError) Error() string {
	return fmt.Sprintf("property %q: %q is not a valid %s", e.Key, e.Value, e.Want)
}
