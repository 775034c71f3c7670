package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vivaneiona/envload"
)

// writeEntries prints entries in the requested format. The env and json
// formats keep every entry in order, duplicates included; yaml keeps order
// in a mapping node; toml collapses duplicates to the last value.
func writeEntries(w io.Writer, format string, entries []envload.Entry) error {
	switch strings.ToLower(format) {
	case "", "env":
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "%s=%s\n", e.Key, shellQuote(e.Value)); err != nil {
				return err
			}
		}
		return nil
	case "json":
		type jsonEntry struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		out := make([]jsonEntry, len(entries))
		for i, e := range entries {
			out[i] = jsonEntry{Key: e.Key, Value: e.Value}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case "yaml", "yml":
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range entries {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
			)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "toml":
		m := make(map[string]string, len(entries))
		for _, e := range entries {
			m[e.Key] = e.Value
		}
		if err := toml.NewEncoder(w).Encode(m); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// shellQuote single-quotes v when it contains anything a POSIX shell would
// interpret.
func shellQuote(v string) string {
	if v != "" && strings.IndexFunc(v, func(r rune) bool {
		return !(r == '_' || r == '-' || r == '.' || r == '/' || r == ':' || r == ',' ||
			'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	}) < 0 {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}
