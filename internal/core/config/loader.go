package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file, expanding ${ENV} references,
// then applies defaults and validates the result.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = 5 * time.Minute
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 30 * time.Minute
	}
	if cfg.Retry.BackoffMultiple == 0 {
		cfg.Retry.BackoffMultiple = 2.0
	}
	if cfg.Schedule.Fetch == "" {
		cfg.Schedule.Fetch = "0 * * * *" // hourly
	}
	if cfg.Schedule.Sync == "" {
		cfg.Schedule.Sync = "0 */6 * * *" // every 6 hours
	}
}

// Validate rejects configurations the service cannot start with. Bad cron
// expressions are a startup error, never silently ignored.
func (cfg *AppConfig) Validate() error {
	if cfg.Source.Token == "" {
		return fmt.Errorf("source.token is required")
	}
	if err := cfg.Retry.Validate(); err != nil {
		return fmt.Errorf("invalid retry config: %w", err)
	}
	if _, err := cron.ParseStandard(cfg.Schedule.Fetch); err != nil {
		return fmt.Errorf("invalid fetch schedule %q: %w", cfg.Schedule.Fetch, err)
	}
	if _, err := cron.ParseStandard(cfg.Schedule.Sync); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", cfg.Schedule.Sync, err)
	}
	for i, target := range cfg.Sheets {
		if target.SpreadsheetID == "" {
			return fmt.Errorf("sheets[%d]: spreadsheet_id is required", i)
		}
	}
	return nil
}
