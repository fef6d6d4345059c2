package settings

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/errors"
)

// Bag is a loosely typed settings payload as received over the RPC surface.
type Bag map[string]any

// reader pulls typed values out of a Bag and remembers which keys were consumed.
type reader struct {
	bag  Bag
	seen map[string]bool
	errs ValidationErrors
}

func newReader(bag Bag) *reader {
	return &reader{bag: bag, seen: make(map[string]bool)}
}

func (r *reader) fail(key, message string) {
	r.errs = append(r.errs, ValidationError{Key: key, Message: message})
}

func (r *reader) lookup(key string) (any, bool) {
	r.seen[key] = true
	v, ok := r.bag[key]
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

func (r *reader) string(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, fmt.Sprintf("must be a string, got %T", v))
		return ""
	}
	return strings.TrimSpace(s)
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			r.fail(key, "must be a boolean")
			return def
		}
		return parsed
	default:
		r.fail(key, fmt.Sprintf("must be a boolean, got %T", v))
		return def
	}
}

// int accepts the numeric types produced by JSON, YAML and TOML decoders.
func (r *reader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			r.fail(key, "must be an integer")
			return def
		}
		return int(n)
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			r.fail(key, "must be an integer")
			return def
		}
		return parsed
	default:
		r.fail(key, fmt.Sprintf("must be an integer, got %T", v))
		return def
	}
}

// enum reads a name or a number as a string for the model Parse* functions.
func (r *reader) enum(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int, int64, uint32, uint64:
		return fmt.Sprint(t), true
	default:
		r.fail(key, fmt.Sprintf("must be a name or a number, got %T", v))
		return "", false
	}
}

func (r *reader) strings(key string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				r.fail(key, "must be a list of strings")
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		r.fail(key, fmt.Sprintf("must be a list of strings, got %T", v))
		return nil
	}
}

func (r *reader) sub(key string) Bag {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case Bag:
		return m
	case map[string]any:
		return m
	default:
		r.fail(key, fmt.Sprintf("must be a table, got %T", v))
		return nil
	}
}

// finish reports unknown keys and returns collected errors as INVALID_PARAMETER.
func (r *reader) finish(kind string) error {
	var unknown []string
	for key := range r.bag {
		if !r.seen[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		r.fail(key, "unknown setting")
	}
	if len(r.errs) == 0 {
		return nil
	}
	return errors.NewInvalidParameterError("invalid "+kind+" settings", r.errs)
}
