// Package config loads match settings from YAML
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"gopkg.in/yaml.v3"
)

// Config describes one match and where its output goes
type Config struct {
	Map            MapConfig      `yaml:"map"`
	Players        []PlayerConfig `yaml:"players"`
	Rules          RulesConfig    `yaml:"rules"`
	Seed           int64          `yaml:"seed"`
	MaxTurns       int            `yaml:"max_turns"`
	TurnIntervalMS int            `yaml:"turn_interval_ms"`
	Log            LogConfig      `yaml:"log"`
	ReplayPath     string         `yaml:"replay,omitempty"`
	DBPath         string         `yaml:"db,omitempty"`
}

type MapConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Generator string `yaml:"generator"`
	Seed      int64  `yaml:"seed"`
	// File loads a JSON layout instead of generating one
	File string `yaml:"file,omitempty"`
}

// PlayerConfig places a hive mind. Negative start coordinates count from
// the far edge, so -5 on a 32 wide map is x = 26.
type PlayerConfig struct {
	Name     string `yaml:"name"`
	HiveMind string `yaml:"hivemind"`
	Start    [2]int `yaml:"start"`
}

type RulesConfig struct {
	DamageAmount        int     `yaml:"damage"`
	ShootingRange       float64 `yaml:"shooting_range"`
	HitChance           float64 `yaml:"hit_chance"`
	HealAmount          int     `yaml:"heal"`
	BotMaxHealth        int     `yaml:"bot_max_health"`
	MotherShipMaxHealth int     `yaml:"mothership_max_health"`
	MaxPickedUpMinerals int     `yaml:"max_carry"`
	StartMinerals       int     `yaml:"start_minerals"`
	SuppressErrors      bool    `yaml:"suppress_errors"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default is a two player mastermind match on a generated 64x64 map
func Default() Config {
	r := game.DefaultRules()
	return Config{
		Map: MapConfig{Width: 64, Height: 64, Generator: "diagonal"},
		Players: []PlayerConfig{
			{Name: "red", HiveMind: "mastermind", Start: [2]int{5, 5}},
			{Name: "blue", HiveMind: "minersonly", Start: [2]int{-5, -5}},
		},
		Rules: RulesConfig{
			DamageAmount:        r.DamageAmount,
			ShootingRange:       r.ShootingRange,
			HitChance:           r.HitChance,
			HealAmount:          r.HealAmount,
			BotMaxHealth:        r.BotMaxHealth,
			MotherShipMaxHealth: r.MotherShipMaxHealth,
			MaxPickedUpMinerals: r.MaxPickedUpMinerals,
			StartMinerals:       r.StartMinerals,
			SuppressErrors:      true,
		},
		Seed:           1,
		MaxTurns:       2000,
		TurnIntervalMS: 100,
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML
func (c Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c Config) Validate() error {
	var errs []error
	if c.Map.File == "" {
		if c.Map.Width < 8 || c.Map.Height < 8 {
			errs = append(errs, fmt.Errorf("map: size %dx%d below 8x8", c.Map.Width, c.Map.Height))
		}
		if c.Map.Width >= grid.PackFactor || c.Map.Height >= grid.PackFactor {
			errs = append(errs, fmt.Errorf("map: size %dx%d too large", c.Map.Width, c.Map.Height))
		}
		if _, err := maplib.GeneratorByName(c.Map.Generator, c.Map.Seed); err != nil {
			errs = append(errs, fmt.Errorf("map: %w", err))
		}
	}
	if len(c.Players) < 2 {
		errs = append(errs, fmt.Errorf("players: need at least 2, got %d", len(c.Players)))
	}
	names := make(map[string]bool)
	for i, p := range c.Players {
		if _, err := game.NewHiveMind(p.HiveMind); err != nil {
			errs = append(errs, fmt.Errorf("players[%d]: %w", i, err))
		}
		if p.Name != "" && names[p.Name] {
			errs = append(errs, fmt.Errorf("players[%d]: duplicate name %q", i, p.Name))
		}
		names[p.Name] = true
	}
	r := c.Rules
	if r.HitChance < 0 || r.HitChance > 1 {
		errs = append(errs, fmt.Errorf("rules: hit_chance %v outside [0,1]", r.HitChance))
	}
	if r.ShootingRange <= 0 || r.BotMaxHealth <= 0 || r.MotherShipMaxHealth <= 0 || r.MaxPickedUpMinerals <= 0 {
		errs = append(errs, errors.New("rules: range, health and carry limits must be positive"))
	}
	if c.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("max_turns: %d is negative", c.MaxTurns))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// GameRules converts the rules section
func (c Config) GameRules() game.Rules {
	r := c.Rules
	return game.Rules{
		DamageAmount:        r.DamageAmount,
		ShootingRange:       r.ShootingRange,
		HitChance:           r.HitChance,
		HealAmount:          r.HealAmount,
		BotMaxHealth:        r.BotMaxHealth,
		MotherShipMaxHealth: r.MotherShipMaxHealth,
		MaxPickedUpMinerals: r.MaxPickedUpMinerals,
		StartMinerals:       r.StartMinerals,
		SuppressErrors:      r.SuppressErrors,
	}
}

// StartOn resolves a player's start position on a width x height map
func (p PlayerConfig) StartOn(width, height int) grid.Pos {
	x, y := p.Start[0], p.Start[1]
	if x < 0 {
		x += width - 1
	}
	if y < 0 {
		y += height - 1
	}
	return grid.P(x, y)
}

// Layout loads the configured layout file or generates one
func (c Config) Layout() (*maplib.Layout, error) {
	if c.Map.File != "" {
		return maplib.LoadJSON(c.Map.File)
	}
	gen, err := maplib.GeneratorByName(c.Map.Generator, c.Map.Seed)
	if err != nil {
		return nil, err
	}
	starts := make([]grid.Pos, len(c.Players))
	for i, p := range c.Players {
		starts[i] = p.StartOn(c.Map.Width, c.Map.Height)
	}
	return maplib.Generate(c.Map.Generator, c.Map.Width, c.Map.Height, gen, starts), nil
}

// Setup assembles everything game.New needs
func (c Config) Setup(logger *slog.Logger) (game.Setup, error) {
	l, err := c.Layout()
	if err != nil {
		return game.Setup{}, err
	}
	s := game.Setup{Layout: l, Rules: c.GameRules(), Seed: c.Seed, Logger: logger}
	for i, p := range c.Players {
		start := p.StartOn(l.Width, l.Height)
		if c.Map.File != "" && p.Start == [2]int{} && i < len(l.StartPositions) {
			start = l.StartPositions[i].Pos()
		}
		s.Players = append(s.Players, game.PlayerSpec{Name: p.Name, HiveMind: p.HiveMind, Start: start})
	}
	return s, nil
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("log: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the slog logger described by l, writing to w
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
