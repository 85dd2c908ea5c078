package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, game.DefaultRules().DamageAmount, cfg.GameRules().DamageAmount)
	assert.True(t, cfg.GameRules().SuppressErrors)

	empty, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, empty)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "match.yaml", `
map:
  width: 40
  height: 30
  generator: noise
  seed: 9
players:
  - name: a
    hivemind: demo
    start: [4, 4]
  - name: b
    hivemind: empty
    start: [-4, -4]
  - name: c
    hivemind: minersonly
    start: [4, -4]
rules:
  hit_chance: 0.5
max_turns: 300
log:
  level: debug
  format: json
replay: out.hbr
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Map.Width)
	assert.Equal(t, "noise", cfg.Map.Generator)
	require.Len(t, cfg.Players, 3)
	assert.Equal(t, "demo", cfg.Players[0].HiveMind)
	assert.Equal(t, 0.5, cfg.Rules.HitChance)
	assert.Equal(t, game.DamageAmount, cfg.Rules.DamageAmount)
	assert.Equal(t, 300, cfg.MaxTurns)
	assert.Equal(t, "out.hbr", cfg.ReplayPath)

	assert.Equal(t, grid.P(35, 25), cfg.Players[1].StartOn(40, 30))
	assert.Equal(t, grid.P(4, 25), cfg.Players[2].StartOn(40, 30))

	s, err := cfg.Setup(nil)
	require.NoError(t, err)
	assert.Equal(t, 40, s.Layout.Width)
	assert.Len(t, s.Layout.StartPositions, 3)
	require.Len(t, s.Players, 3)
	assert.Equal(t, grid.P(35, 25), s.Players[1].Start)
	assert.Equal(t, grid.Empty, s.Layout.At(35, 25))
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Map.Width = 4
	cfg.Map.Generator = "mystery"
	cfg.Players = cfg.Players[:1]
	cfg.Players[0].HiveMind = "ghost"
	cfg.Rules.HitChance = 2
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"below 8x8", "mystery", "need at least 2", "ghost", "hit_chance", "xml"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLoadErrorsNameTheFile(t *testing.T) {
	path := writeFile(t, "bad.yaml", "map: [")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), path))

	path = writeFile(t, "invalid.yaml", "max_turns: -1\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "max_turns")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DBPath = "matches.db"
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLayoutFromFile(t *testing.T) {
	l := maplib.Generate("file", 16, 16, maplib.OnlyDeposit, []grid.Pos{grid.P(3, 3), grid.P(12, 12)})
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, l.SaveJSON(path))

	cfg := Default()
	cfg.Map = MapConfig{File: path}
	cfg.Players[0].Start = [2]int{}
	cfg.Players[1].Start = [2]int{}
	require.NoError(t, cfg.Validate())

	s, err := cfg.Setup(nil)
	require.NoError(t, err)
	assert.Equal(t, "file", s.Layout.Name)
	assert.Equal(t, grid.P(3, 3), s.Players[0].Start)
	assert.Equal(t, grid.P(12, 12), s.Players[1].Start)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf).Debug("shown", "turn", 3)
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"turn":3`)
}
