package envload

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := writeEnvFile(t, dir, ".env", "# base\nAPP_NAME=myapp\nPORT=3000\n")
	local := writeEnvFile(t, dir, ".env.local", "PORT = '4000'\nDEBUG=true\n")

	entries, err := NewLoader().Load(base, local)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{"APP_NAME", "myapp"},
		{"PORT", "3000"},
		{"PORT", "4000"},
		{"DEBUG", "true"},
	}, entries)
}

func TestLoadLaterSourceWins(t *testing.T) {
	dir := t.TempDir()
	a := writeEnvFile(t, dir, "a.env", "K=1\nONLY_A=a\n")
	b := writeEnvFile(t, dir, "b.env", "K=2\n")

	sink := MapSink{}
	require.NoError(t, NewLoader().LoadAndApply(sink, a, b))
	assert.Equal(t, MapSink{"K": "2", "ONLY_A": "a"}, sink)

	sink = MapSink{}
	require.NoError(t, NewLoader().LoadAndApply(sink, b, a))
	assert.Equal(t, "1", sink["K"])
}

func TestLoadSkipsUnreadableSources(t *testing.T) {
	dir := t.TempDir()
	good := writeEnvFile(t, dir, "good.env", "A=1\n")
	missing := filepath.Join(dir, "missing.env")

	entries, err := NewLoader().Load(missing, good, dir)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"A", "1"}}, entries)

	assert.Equal(t, []Entry{{"A", "1"}}, LoadEnvFrom(missing, good))
	assert.Empty(t, LoadEnvFrom())
}

func TestLoadStrict(t *testing.T) {
	dir := t.TempDir()
	good := writeEnvFile(t, dir, "good.env", "A=1\n")
	missing := filepath.Join(dir, "missing.env")

	_, err := NewLoader(WithStrict(true)).Load(good, missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), missing)

	err = NewLoader(WithStrict(true)).LoadAndApply(MapSink{}, missing)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, "20-local.env", "K=local\n")
	writeEnvFile(t, dir, "10-base.env", "K=base\nBASE=1\n")
	writeEnvFile(t, dir, "nested/30-extra.env", "EXTRA=1\n")
	writeEnvFile(t, dir, "ignored.txt", "IGNORED=1\n")

	entries, err := NewLoader(WithGlob(true)).Load(filepath.Join(dir, "*.env"))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"K", "base"}, {"BASE", "1"}, {"K", "local"}}, entries)

	entries, err = NewLoader(WithGlob(true)).Load(filepath.Join(dir, "**", "*.env"))
	require.NoError(t, err)
	assert.Contains(t, entries, Entry{"EXTRA", "1"})
	assert.NotContains(t, entries, Entry{"IGNORED", "1"})

	// Without WithGlob the pattern is a literal, unreadable path.
	entries, err = NewLoader().Load(filepath.Join(dir, "*.env"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadGlobNoMatch(t *testing.T) {
	dir := t.TempDir()
	entries, err := NewLoader(WithGlob(true), WithStrict(true)).Load(filepath.Join(dir, "*.env"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadGlobBadPattern(t *testing.T) {
	_, err := NewLoader(WithGlob(true)).Load("[.env")
	require.Error(t, err)
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	writeEnvFile(t, home, ".config/.env", "FROM_HOME=yes\n")

	entries, err := NewLoader(WithStrict(true)).Load("~/.config/.env")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"FROM_HOME", "yes"}}, entries)
}

func TestLoadExpandsXDGConfigHome(t *testing.T) {
	t.Cleanup(xdg.Reload)
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	xdg.Reload()

	writeEnvFile(t, cfgHome, ".env", "FROM_XDG=yes\n")
	assert.Equal(t, filepath.Join(cfgHome, ".env"), UserConfigPath())

	entries, err := NewLoader(WithStrict(true)).Load("$XDG_CONFIG_HOME/.env")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"FROM_XDG", "yes"}}, entries)

	assert.Equal(t, []Entry{{"FROM_XDG", "yes"}}, LoadEnvFrom(UserConfigPath()))
}

func TestLoadLogsMaskedValues(t *testing.T) {
	dir := t.TempDir()
	path := writeEnvFile(t, dir, ".env", "API_TOKEN=supersecretvalue\nPORT=8080\n")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewLoader(WithLogger(logger)).Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "key=API_TOKEN")
	assert.Contains(t, out, "value="+Mask("supersecretvalue"))
	assert.NotContains(t, out, "supersecretvalue")
	assert.Contains(t, out, "value=8080")
	assert.Contains(t, out, "skipping env source")
}

func TestLoadCustomMaskPatterns(t *testing.T) {
	dir := t.TempDir()
	path := writeEnvFile(t, dir, ".env", "PORT=8080\nAPI_TOKEN=supersecretvalue\n")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewLoader(WithLogger(logger), WithMaskPatterns("PORT")).Load(path)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "value=808*")
	assert.Contains(t, out, "value=supersecretvalue")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, filepath.Join(home, "a", ".env"), expandPath("~/a/.env"))
	assert.Equal(t, "relative/.env", expandPath("relative/.env"))
	assert.Equal(t, "~user/.env", expandPath("~user/.env"))
}

func TestLoadMasksAllValuesOnBadPattern(t *testing.T) {
	dir := t.TempDir()
	path := writeEnvFile(t, dir, ".env", "API_TOKEN=supersecretvalue\nPORT=8080\n")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	entries, err := NewLoader(WithLogger(logger), WithMaskPatterns("[", "*TOKEN*")).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"API_TOKEN", "supersecretvalue"}, {"PORT", "8080"}}, entries)

	out := buf.String()
	assert.NotContains(t, out, "supersecretvalue")
	assert.Contains(t, out, "value="+Mask("supersecretvalue"))
	assert.Contains(t, out, "value=808*")
}
