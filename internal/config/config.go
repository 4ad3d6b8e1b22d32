// Package config loads run configuration: a named preset, YAML overrides,
// and ARENA_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/talgya/tribute-arena/internal/engine"
)

// DefaultPreset is used when neither file nor flag names one.
const DefaultPreset = "Standard"

// Config is everything needed to start a run.
type Config struct {
	Preset     string          `yaml:"preset"`
	Seed       int64           `yaml:"seed"`
	Settings   engine.Settings `yaml:"settings"`
	DBPath     string          `yaml:"db_path"`
	StepLogDir string          `yaml:"steplog_dir"`
	Port       int             `yaml:"port"`

	// AdminKey guards the control endpoints. Environment only.
	AdminKey string `yaml:"-"`
}

var presetOrder = []string{"Standard", "Battle Royale", "Long Survival", "Chaos Mode"}

var presets = map[string]engine.Settings{
	"Standard": {
		Lethality:           engine.LethalityMedium,
		ResourceScarcity:    engine.ScarcityNormal,
		MapSize:             5,
		TributeCount:        24,
		GameSpeed:           1500,
		FinaleDay:           7,
		BloodbathDeaths:     5,
		UseCareerAlliance:   true,
		UseAges:             true,
		AutoContinueOnDeath: false,
	},
	"Battle Royale": {
		Lethality:           engine.LethalityHigh,
		ResourceScarcity:    engine.ScarcityNormal,
		MapSize:             4,
		TributeCount:        24,
		GameSpeed:           800,
		FinaleDay:           4,
		BloodbathDeaths:     8,
		UseCareerAlliance:   false,
		UseAges:             false,
		AutoContinueOnDeath: true,
	},
	"Long Survival": {
		Lethality:           engine.LethalityLow,
		ResourceScarcity:    engine.ScarcityStarvation,
		MapSize:             7,
		TributeCount:        12,
		GameSpeed:           2000,
		FinaleDay:           14,
		BloodbathDeaths:     0,
		UseCareerAlliance:   true,
		UseAges:             true,
		AutoContinueOnDeath: false,
	},
	"Chaos Mode": {
		Lethality:           engine.LethalityHigh,
		ResourceScarcity:    engine.ScarcityAbundant,
		MapSize:             6,
		TributeCount:        36,
		GameSpeed:           1000,
		FinaleDay:           6,
		BloodbathDeaths:     12,
		UseCareerAlliance:   false,
		UseAges:             true,
		AutoContinueOnDeath: true,
	},
}

// Presets lists the built-in preset names in menu order.
func Presets() []string {
	return slices.Clone(presetOrder)
}

// Preset returns the named built-in settings.
func Preset(name string) (engine.Settings, error) {
	s, ok := presets[name]
	if !ok {
		return engine.Settings{}, fmt.Errorf("unknown preset %q", name)
	}
	return s, nil
}

// Default returns the Standard preset with local storage paths.
func Default() Config {
	return Config{
		Preset:     DefaultPreset,
		Settings:   presets[DefaultPreset],
		DBPath:     "data/arena.db",
		StepLogDir: "data/steplog",
		Port:       8080,
	}
}

// Load reads a YAML file. The file's preset is applied first, then any
// keys under settings override individual values.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default.
func Parse(raw []byte) (Config, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if head.Preset != "" {
		s, err := Preset(head.Preset)
		if err != nil {
			return Config{}, err
		}
		cfg.Preset, cfg.Settings = head.Preset, s
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays ARENA_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("ARENA_PRESET"); v != "" {
		s, err := Preset(v)
		if err != nil {
			return fmt.Errorf("ARENA_PRESET: %w", err)
		}
		c.Preset, c.Settings = v, s
	}
	if v := getenv("ARENA_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ARENA_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := getenv("ARENA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ARENA_PORT: %w", err)
		}
		c.Port = port
	}
	if v := getenv("ARENA_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("ARENA_STEPLOG_DIR"); v != "" {
		c.StepLogDir = v
	}
	c.AdminKey = getenv("ARENA_ADMIN_KEY")
	return nil
}

// Validate checks the settings and the server fields.
func (c Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}
