package envload

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"
)

// Entry is a single KEY=VALUE pair read from a .env source.
type Entry struct {
	Key   string
	Value string
}

// String returns the entry in KEY=VALUE form.
func (e Entry) String() string {
	return e.Key + "=" + e.Value
}

// Parse returns a lazy sequence of the entries found in data, in the order
// they appear. Comment lines, blank lines and lines that cannot be read as
// KEY=VALUE contribute nothing. Duplicate keys are kept.
//
// Example:
//
//	for e := range envload.Parse("PORT=8080\n# comment\nHOST = 'localhost'") {
//	    fmt.Println(e.Key, e.Value)
//	}
func Parse(data string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for line := range filterLines(data) {
			e, ok := extract(line)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// ParseAll is the eager form of Parse.
func ParseAll(data string) []Entry {
	var entries []Entry
	for e := range Parse(data) {
		entries = append(entries, e)
	}
	return entries
}

// ParseAndSet parses data and calls set once per entry, in source order.
// It is handy for wiring the parser to an arbitrary destination in tests:
//
//	envload.ParseAndSet(data, func(k, v string) { os.Setenv(k, v) })
func ParseAndSet(data string, set func(key, value string)) {
	for e := range Parse(data) {
		set(e.Key, e.Value)
	}
}

// ParseReader reads r to the end and parses its contents.
func ParseReader(r io.Reader) ([]Entry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read env data: %w", err)
	}
	return ParseAll(string(b)), nil
}

// filterLines yields every trimmed line of text that is neither blank nor
// a full-line comment.
func filterLines(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(text) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// extract splits a candidate line on its first '=' and normalizes both
// sides. Both key and value go through normalize, so 'asdf'='fdsa' yields
// asdf=fdsa.
func extract(line string) (Entry, bool) {
	rawKey, rawValue, found := strings.Cut(line, "=")
	if !found {
		return Entry{}, false
	}

	value, ok := normalize(strings.TrimSpace(rawValue))
	if !ok {
		return Entry{}, false
	}
	key, ok := normalize(strings.TrimSpace(rawKey))
	if !ok || key == "" {
		return Entry{}, false
	}
	return Entry{Key: key, Value: value}, true
}

// normalize strips a trailing comment from an unquoted string, or unwraps
// one layer of quotes from a quoted one. Comment stripping only happens
// when s holds no quote character at all.
func normalize(s string) (string, bool) {
	if !strings.ContainsAny(s, `'"`) {
		before, _, _ := strings.Cut(s, "#")
		return strings.TrimSpace(before), true
	}
	return unquote(s)
}

// scanState is the position of the quote scanner relative to the outer
// quote pair.
type scanState int

const (
	noQuote scanState = iota // no quote character seen yet
	inQuote                  // opening delimiter seen
	closed                   // closing delimiter seen
)

// unquote finds the first quote character in s, which fixes the delimiter,
// and the next occurrence of that same delimiter. The result is
// s[start:start+end] where start is the byte after the opening delimiter and
// end is the byte offset just before the closing one. end counts from the
// start of s rather than from start, so the window only lines up with the
// quoted text when the opening delimiter is the first byte of s.
func unquote(s string) (string, bool) {
	var (
		state      = noQuote
		delim      byte
		start, end int
	)

scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case noQuote:
			if c != '\'' && c != '"' {
				continue
			}
			delim = c
			start = i + 1
			state = inQuote
		case inQuote:
			if c != delim {
				continue
			}
			end = i - 1
			state = closed
			break scan
		}
	}

	if state != closed {
		return "", false
	}
	stop := start + end
	if stop > len(s) || (stop < len(s) && !utf8.RuneStart(s[stop])) {
		return "", false
	}
	return s[start:stop], true
}
