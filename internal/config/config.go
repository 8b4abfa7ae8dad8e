package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config keeps runtime settings for the app.
type Config struct {
	DatabasePath       string `koanf:"database_path"`
	WeekStart          string `koanf:"week_start"`           // monday or sunday
	ReminderInterval   int    `koanf:"reminder_interval"`    // scan interval in seconds
	DefaultLeadMinutes int    `koanf:"default_lead_minutes"` // preselected reminder offset
	Notifications      bool   `koanf:"notifications"`
}

func defaults() map[string]any {
	return map[string]any{
		"database_path":        "",
		"week_start":           "monday",
		"reminder_interval":    60,
		"default_lead_minutes": 30,
		"notifications":        true,
	}
}

// DefaultPath returns <user config dir>/taskdeck/config.yaml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "taskdeck", "config.yaml"), nil
}

// Load layers defaults, the YAML file at path (if present), and TASKDECK_*
// environment variables, in that order.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("TASKDECK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TASKDECK_"))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.WeekStart != "monday" && cfg.WeekStart != "sunday" {
		return Config{}, fmt.Errorf("invalid week_start %q, expected monday or sunday", cfg.WeekStart)
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 60
	}
	return cfg, nil
}
