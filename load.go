package envload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrSourceUnreadable is wrapped by Load errors in strict mode when a source
// cannot be read.
var ErrSourceUnreadable = errors.New("env source unreadable")

// Loader reads .env sources in order and concatenates their entries.
// The zero value is not usable; create one with NewLoader.
type Loader struct {
	strict       bool
	glob         bool
	logger       *slog.Logger
	maskPatterns []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithStrict makes Load fail on the first source that cannot be read.
// By default such sources are skipped.
func WithStrict(strict bool) Option {
	return func(l *Loader) { l.strict = strict }
}

// WithGlob expands paths containing glob meta characters (including **)
// before reading them. Matches of one pattern are read in lexical order.
func WithGlob(glob bool) Option {
	return func(l *Loader) { l.glob = glob }
}

// WithLogger sets the logger used for per-source and per-entry debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaskPatterns sets the key patterns whose values are masked in log
// output. It defaults to DefaultSecretPatterns.
func WithMaskPatterns(patterns ...string) Option {
	return func(l *Loader) { l.maskPatterns = patterns }
}

// NewLoader returns a Loader with the given options applied.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maskPatterns: DefaultSecretPatterns,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source in order, from most general to most specific, and
// returns all of their entries concatenated. Applying the result to a Sink in
// order lets later sources override earlier ones.
//
// Example:
//
//	entries, err := envload.NewLoader().Load(".env", "~/.config/.env")
func (l *Loader) Load(paths ...string) ([]Entry, error) {
	sources, err := l.resolve(paths)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			if l.strict {
				return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
			}
			l.logger.Debug("skipping env source", "path", path, "error", err)
			continue
		}

		n := 0
		for e := range Parse(string(data)) {
			l.logger.Debug("env entry", "path", path, "key", e.Key, "value", l.logValue(e))
			entries = append(entries, e)
			n++
		}
		l.logger.Debug("loaded env source", "path", path, "entries", n)
	}
	return entries, nil
}

// LoadAndApply loads paths and applies the entries to sink in order.
func (l *Loader) LoadAndApply(sink Sink, paths ...string) error {
	entries, err := l.Load(paths...)
	if err != nil {
		return err
	}
	return Apply(entries, sink)
}

// LoadEnvFrom collects the entries of every readable source in paths.
// Unreadable sources are skipped silently. Nothing is written to the process
// environment; pass the result to Apply with an EnvSink for that.
func LoadEnvFrom(paths ...string) []Entry {
	entries, _ := NewLoader().Load(paths...)
	return entries
}

// UserConfigPath returns the per-user .env file, $XDG_CONFIG_HOME/.env.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, ".env")
}

// resolve expands home and XDG prefixes and, when enabled, glob patterns.
func (l *Loader) resolve(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = expandPath(p)
		if !l.glob || !hasMeta(p) {
			out = append(out, p)
			continue
		}

		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expand env source pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			l.logger.Debug("env source pattern matched nothing", "pattern", p)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// logValue masks the value of a secret key. A malformed pattern masks every
// value.
func (l *Loader) logValue(e Entry) string {
	if secret, err := matchesAny(e.Key, l.maskPatterns); err != nil || secret {
		return Mask(e.Value)
	}
	return e.Value
}

const xdgConfigPrefix = "$XDG_CONFIG_HOME/"

// expandPath resolves a leading ~/ to the home directory and a leading
// $XDG_CONFIG_HOME/ to the XDG config directory.
func expandPath(p string) string {
	switch {
	case strings.HasPrefix(p, xdgConfigPrefix):
		return filepath.Join(xdg.ConfigHome, strings.TrimPrefix(p, xdgConfigPrefix))
	case p == "~" || strings.HasPrefix(p, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	default:
		return p
	}
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[{`)
}
