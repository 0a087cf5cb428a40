package config

import (
	"time"

	"github.com/dvvinfo/btlz-wb-test/internal/core/retry"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/sheets"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/storage/postgres"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/wb"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig          `yaml:"server"`
	Logging  LoggingConfig         `yaml:"logging"`
	Source   wb.Config             `yaml:"source"`
	Retry    retry.Config          `yaml:"retry"`
	Database postgres.Config       `yaml:"database"`
	Schedule ScheduleConfig        `yaml:"schedule"`
	Sync     SyncConfig            `yaml:"sync"`
	Sheets   []sheets.TargetConfig `yaml:"sheets"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ScheduleConfig holds the two cron expressions driving periodic work.
type ScheduleConfig struct {
	Fetch string `yaml:"fetch"` // fetch-and-store cadence
	Sync  string `yaml:"sync"`  // sink mirror cadence
}

// SyncConfig holds sink synchronization settings.
type SyncConfig struct {
	WriteTimeout time.Duration `yaml:"write_timeout"`
}
