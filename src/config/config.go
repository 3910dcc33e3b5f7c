package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// Resolved from Timezone during load.
	Location *time.Location
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	// 4. Resolve the local time zone (day boundaries depend on it)
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, helpers.NewConfigurationError(
			fmt.Sprintf("failed to load timezone '%s'", config.Timezone), err)
	}
	config.Location = loc

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Asia/Kathmandu"
	}
	if c.Sources.MarketMarkup <= 0 {
		c.Sources.MarketMarkup = 1.0
	}
	if c.Sources.LocalPremium <= 0 {
		c.Sources.LocalPremium = 1.0
	}
	if c.Sources.HistoryYears <= 0 {
		c.Sources.HistoryYears = 5
	}
	if c.Notify.SendDelayMs <= 0 {
		c.Notify.SendDelayMs = 700
	}
	if c.Notify.MinCorrectionDelta <= 0 {
		c.Notify.MinCorrectionDelta = 0.01
	}
	if c.Notify.RefreshIntervalMinutes <= 0 {
		c.Notify.RefreshIntervalMinutes = 30
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Sources configuration
	if c.Sources.SpotURL == "" {
		return fmt.Errorf("spot price source URL cannot be empty")
	}
	if c.Sources.ForexURL == "" {
		return fmt.Errorf("forex source URL cannot be empty")
	}

	// Validate Notify configuration
	if c.Notify.Enabled && c.Notify.MailEndpoint == "" {
		return fmt.Errorf("mail endpoint cannot be empty when notifications are enabled")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SendDelay returns the inter-send pause as a Duration.
func (c *Config) SendDelay() time.Duration {
	return time.Duration(c.Notify.SendDelayMs) * time.Millisecond
}

// -----------------------------------------------------------------------------

// RefreshInterval returns the periodic fetch interval as a Duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Notify.RefreshIntervalMinutes) * time.Minute
}
