package envload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
)

// ErrInvalidFilter is wrapped by Where when the filter expression does not
// compile or does not evaluate to a boolean.
var ErrInvalidFilter = errors.New("invalid entry filter")

// DefaultSecretPatterns are the key patterns treated as secrets by Redact and
// by the Loader's debug output.
var DefaultSecretPatterns = []string{
	"*SECRET*",
	"*PASSWORD*",
	"*TOKEN*",
	"*API_KEY*",
	"*PRIVATE_KEY*",
}

// Mask returns a masked version of a secret value.
// It keeps the first 3 characters visible and replaces the rest with asterisks.
// Values of 3 or fewer characters are replaced entirely.
//
// Examples:
//   - Mask("") returns ""
//   - Mask("a") returns "*"
//   - Mask("abc") returns "***"
//   - Mask("secret123") returns "sec******"
func Mask(value string) string {
	const keep = 3
	n := len(value)
	if n <= keep {
		return strings.Repeat("*", n)
	}
	return value[:keep] + strings.Repeat("*", n-keep)
}

// Filter returns the entries for which predicate reports true, keeping order.
func Filter(entries []Entry, predicate func(Entry) bool) []Entry {
	var filtered []Entry
	for _, e := range entries {
		if predicate(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// filterEnv is the environment a Where expression is evaluated against.
type filterEnv struct {
	Key   string `expr:"key"`
	Value string `expr:"value"`
}

// Where keeps the entries matching an expr-lang boolean expression. The
// expression sees the entry as key and value:
//
//	envload.Where(entries, `key startsWith "APP_" && value != ""`)
func Where(entries []Entry, code string) ([]Entry, error) {
	program, err := expr.Compile(code, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, code, err)
	}

	var filtered []Entry
	for _, e := range entries {
		out, err := expr.Run(program, filterEnv{Key: e.Key, Value: e.Value})
		if err != nil {
			return nil, fmt.Errorf("evaluate filter on %s: %w", e.Key, err)
		}
		if out.(bool) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Redact returns a copy of entries with the values of secret keys masked.
// A key is secret when it matches any of patterns, compared case-insensitively
// with doublestar syntax.
func Redact(entries []Entry, patterns []string) ([]Entry, error) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		secret, err := matchesAny(e.Key, patterns)
		if err != nil {
			return nil, err
		}
		if secret {
			e.Value = Mask(e.Value)
		}
		out[i] = e
	}
	return out, nil
}

func matchesAny(key string, patterns []string) (bool, error) {
	upper := strings.ToUpper(key)
	for _, pattern := range patterns {
		ok, err := doublestar.Match(strings.ToUpper(pattern), upper)
		if err != nil {
			return false, fmt.Errorf("secret pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
