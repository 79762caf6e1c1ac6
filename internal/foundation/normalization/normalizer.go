// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps strings to values of T. Keys are compared after
// trimming, lower-casing and turning "-" into "_".
type Normalizer[T comparable] struct {
	name         string
	values       map[string]T
	defaultValue T
	keys         []string
}

// New creates a Normalizer named name (used in error messages).
func New[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:         name,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
		keys:         make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the value for raw, or the default when raw is unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Parse returns the value for raw. An empty raw yields the default; any
// other unknown value is an error listing the accepted keys.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	key := clean(raw)
	if key == "" {
		return n.defaultValue, nil
	}
	if v, ok := n.values[key]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

// Keys returns the accepted keys in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}

func clean(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
