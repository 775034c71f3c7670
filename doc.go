// Package envload reads simple KEY=VALUE configuration files (the ".env"
// convention) and returns their entries in order, ready to be applied to the
// process environment or any other destination.
//
// # Features
//
//   - Line-oriented parser with comment, whitespace and quote handling
//   - Layered loading: sources are read from most general to most specific
//   - Pluggable sinks: process environment, maps, or any func(key, value)
//   - Optional strict mode that reports unreadable sources
//   - Glob expansion of source paths (doublestar syntax, including **)
//   - Entry filtering with expr-lang expressions and secret redaction
//   - File watching with automatic reload
//
// # Syntax
//
//	TEST_DATA=bar       # spaces are optional
//	# this is a comment
//	TEST_BAZ = "baz"    # double quotes are removed
//	TEST_QUX = 'qux'    # single quotes are removed
//	TEST_FOO = "'nested'"
//	TEST_BAR = '"nested"'
//
// produces, in order:
//
//	TEST_DATA  bar
//	TEST_BAZ   baz
//	TEST_QUX   qux
//	TEST_FOO   'nested'
//	TEST_BAR   "nested"
//
// A '#' starts a comment only in unquoted text. Inside quotes it is kept:
// FOO="#bar" yields #bar. Keys go through the same unquoting, so
// 'asdf'='fdsa' yields asdf=fdsa. Lines without '=' or with an empty key are
// skipped without error. Multi-line values, escapes and variable expansion
// are not supported.
//
// # Quick Start
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/vivaneiona/envload"
//	)
//
//	func main() {
//		// Later files override earlier ones.
//		err := envload.NewLoader().LoadAndApply(&envload.EnvSink{Override: true},
//			".env", ".env.local", envload.UserConfigPath())
//		if err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # API Reference
//
//	func Parse(data string) iter.Seq[Entry]             // lazy parse of one source
//	func ParseAll(data string) []Entry                  // eager parse
//	func ParseAndSet(data string, set func(k, v string)) // callback form
//	func LoadEnvFrom(paths ...string) []Entry           // permissive multi-source load
//	func Apply(entries []Entry, sink Sink) error        // apply in order
//
// # Error Handling
//
// Parsing never fails; malformed lines contribute nothing. Only reading
// sources can fail. By default unreadable sources are skipped;
// WithStrict(true) turns them into errors wrapping ErrSourceUnreadable.
package envload
