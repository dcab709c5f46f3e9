package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if QUIETWEEK_CONFIG is set
//  3. env (prefix QUIETWEEK_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("QUIETWEEK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: QUIETWEEK_ADDR, QUIETWEEK_DAILY_BUDGET, ...
	// Map env keys like QUIETWEEK_DAILY_BUDGET -> daily_budget (flat keys).
	envProvider := env.Provider("QUIETWEEK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "quietweek_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DailyBudget <= 0:
		return fmt.Errorf("%w: daily_budget must be positive", ErrInvalidConfig)
	case cfg.WorkStartHour < 0 || cfg.WorkStartHour >= 24:
		return fmt.Errorf("%w: work_start_hour out of range", ErrInvalidConfig)
	case cfg.WorkEndHour <= cfg.WorkStartHour || cfg.WorkEndHour > 24:
		return fmt.Errorf("%w: work_end_hour must follow work_start_hour", ErrInvalidConfig)
	case cfg.ExtendedEndHour < cfg.WorkEndHour || cfg.ExtendedEndHour > 24:
		return fmt.Errorf("%w: extended_end_hour must not precede work_end_hour", ErrInvalidConfig)
	case cfg.ReadingQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}

	switch cfg.VitalsAggregation {
	case "", "mean", "median", "p90":
	default:
		return fmt.Errorf("%w: vitals_aggregation must be mean, median or p90", ErrInvalidConfig)
	}
	return nil
}
