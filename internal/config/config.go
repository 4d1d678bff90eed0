// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"building-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Database contains persistence configuration
	Database DatabaseConfig `json:"database"`

	// Billing contains billing computation configuration
	Billing BillingConfig `json:"billing"`

	// Export contains snapshot export configuration
	Export ExportConfig `json:"export"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// DatabaseConfig contains persistence-related settings
type DatabaseConfig struct {
	// Driver selects the database driver (postgres, sqlite)
	Driver string `json:"driver" validate:"oneof=postgres sqlite"`

	// DSN is the connection string
	DSN string `json:"dsn" validate:"required"`

	// AutoMigrate runs schema migration on startup
	AutoMigrate bool `json:"auto_migrate"`
}

// BillingConfig contains billing computation settings
type BillingConfig struct {
	// Currency is the display currency code
	Currency string `json:"currency" validate:"len=3"`

	// ConservationTolerance is the allowed absolute difference between
	// the sum of distributed unit shares and the building total cost
	ConservationTolerance float64 `json:"conservation_tolerance" validate:"gte=0"`

	// MaxSummaryMessages caps warnings/errors reported on a summary
	MaxSummaryMessages int `json:"max_summary_messages" validate:"gte=0"`
}

// ExportConfig contains snapshot export settings
type ExportConfig struct {
	// DefaultFormat is the default export format (xlsx, csv)
	DefaultFormat string `json:"default_format" validate:"oneof=xlsx csv"`

	// SheetName is the worksheet name used for xlsx exports
	SheetName string `json:"sheet_name" validate:"required"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".building-cost", "billing.db")

	return &Config{
		Version: "1.0",
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         dbPath,
			AutoMigrate: true,
		},
		Billing: BillingConfig{
			Currency:              "EUR",
			ConservationTolerance: 0.01,
			MaxSummaryMessages:    50,
		},
		Export: ExportConfig{
			DefaultFormat: "xlsx",
			SheetName:     "Billing",
		},
		Logging: logging.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
