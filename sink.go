package envload

import (
	"fmt"
	"os"
)

// Sink receives parsed entries. Sinks decide what a repeated key means; the
// parser and loader never deduplicate.
type Sink interface {
	Set(key, value string) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(key, value string) error

// Set calls f(key, value).
func (f SinkFunc) Set(key, value string) error {
	return f(key, value)
}

// MapSink collects entries into a map. A later Set for the same key
// replaces the earlier value.
type MapSink map[string]string

// Set stores value under key.
func (m MapSink) Set(key, value string) error {
	m[key] = value
	return nil
}

// EnvSink writes entries into the process environment.
//
// With Override unset, variables that already exist in the environment
// before the first Set keep their value, so the shell wins over .env files
// while later files still override earlier ones.
type EnvSink struct {
	Override bool

	owned map[string]bool
}

// Set exports key=value via os.Setenv.
func (s *EnvSink) Set(key, value string) error {
	if !s.Override && !s.owned[key] {
		if _, exists := os.LookupEnv(key); exists {
			return nil
		}
	}
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("set env %q: %w", key, err)
	}
	if s.owned == nil {
		s.owned = make(map[string]bool)
	}
	s.owned[key] = true
	return nil
}

// Apply hands entries to sink in order. It stops at the first failing Set.
func Apply(entries []Entry, sink Sink) error {
	for _, e := range entries {
		if err := sink.Set(e.Key, e.Value); err != nil {
			return fmt.Errorf("apply %s: %w", e.Key, err)
		}
	}
	return nil
}
