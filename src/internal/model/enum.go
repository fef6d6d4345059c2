package model

import (
	"fmt"
	"strconv"
	"strings"
)

// enumName returns the registered name of v, or kind(v) for unregistered values.
func enumName[T ~uint32](kind string, names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("%s(%d)", kind, uint32(v))
}

// parseEnum accepts a registered name (case-insensitive), an alias, or the numeric value.
func parseEnum[T ~uint32](kind string, names map[T]string, aliases map[string]T, value string) (T, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for v, name := range names {
		if name == value {
			return v, nil
		}
	}
	if v, ok := aliases[value]; ok {
		return v, nil
	}
	if n, err := strconv.ParseUint(value, 10, 32); err == nil {
		if _, ok := names[T(n)]; ok {
			return T(n), nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, value)
}
