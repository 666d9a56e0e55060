// Package config loads runtime settings for the extraction engine from the
// environment and an optional YAML rules file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"

	"boqengine/boq"
)

// Environment variables read by Load.
const (
	EnvCrewCount    = "BOQ_CREW_COUNT"
	EnvHeaderWindow = "BOQ_HEADER_WINDOW"
	EnvWorkers      = "BOQ_WORKERS"
	EnvRulesFile    = "BOQ_RULES_FILE"
	EnvDataDir      = "BOQ_DATA_DIR"
)

// Config holds engine settings.
type Config struct {
	CrewCount    int
	HeaderWindow int
	Workers      int
	RulesFile    string
	DataDir      string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	d := boq.DefaultOptions()
	return Config{
		CrewCount:    d.CrewCount,
		HeaderWindow: d.HeaderWindow,
		Workers:      d.Workers,
		DataDir:      "pb_data",
	}
}

// Load reads the environment over Default and validates the result.
func Load() (Config, error) {
	cfg := Default()

	ints := []struct {
		key string
		dst *int
	}{
		{EnvCrewCount, &cfg.CrewCount},
		{EnvHeaderWindow, &cfg.HeaderWindow},
		{EnvWorkers, &cfg.Workers},
	}
	for _, v := range ints {
		raw := strings.TrimSpace(os.Getenv(v.key))
		if raw == "" {
			continue
		}
		n, err := cast.ToIntE(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s=%q is not an integer: %w", v.key, raw, err)
		}
		*v.dst = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvRulesFile)); v != "" {
		cfg.RulesFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.DataDir = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.CrewCount, validation.Required, validation.Min(1)),
		validation.Field(&c.HeaderWindow, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.DataDir, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options builds engine options from the settings, applying the rules file
// when one is configured.
func (c Config) Options(logger *slog.Logger) (boq.Options, error) {
	opts := boq.DefaultOptions()
	opts.CrewCount = c.CrewCount
	opts.HeaderWindow = c.HeaderWindow
	opts.Workers = c.Workers
	opts.Logger = logger

	if c.RulesFile != "" {
		rf, err := LoadRuleFile(c.RulesFile)
		if err != nil {
			return boq.Options{}, err
		}
		rf.Apply(&opts)
	}
	return opts, nil
}
