package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Identity IdentityConfig `yaml:"identity"`
	Mapbox   MapboxConfig   `yaml:"mapbox"`
	Agents   AgentsConfig   `yaml:"agents"`
}

type DatabaseConfig struct {
	DBType           string `yaml:"type"`
	ConnectionString string `yaml:"connection_string,omitempty"`
	File             string `yaml:"file,omitempty"`
}

// IdentityConfig controls how the per-call user/session identity is derived
// when the calling runtime does not supply one.
type IdentityConfig struct {
	UserEnv      string `yaml:"user_env"`
	SessionEnv   string `yaml:"session_env"`
	FallbackUser string `yaml:"fallback_user"`
}

type MapboxConfig struct {
	AccessToken    string `yaml:"access_token,omitempty"`
	Country        string `yaml:"country"`
	Categories     string `yaml:"categories"`
	Limit          int    `yaml:"limit,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Token returns the configured access token, falling back to the
// MAPBOX_ACCESS_TOKEN environment variable.
func (m MapboxConfig) Token() string {
	if m.AccessToken != "" {
		return m.AccessToken
	}
	return os.Getenv("MAPBOX_ACCESS_TOKEN")
}

// AgentsConfig carries every generation tunable as a named field. Each agent
// instance derives its own immutable GenConfig from this; there is no
// process-wide mutable state.
type AgentsConfig struct {
	Model                       string  `yaml:"model"`
	TemperatureCore             float64 `yaml:"temperature_core"`
	TemperatureOrchestrator     float64 `yaml:"temperature_orchestrator"`
	TopP                        float64 `yaml:"top_p"`
	TopK                        int     `yaml:"top_k"`
	MaxOutputTokensCore         int     `yaml:"max_output_tokens_core"`
	MaxOutputTokensOrchestrator int     `yaml:"max_output_tokens_orchestrator"`
	MaxRetries                  int     `yaml:"max_retries"`
	RetryBackoffSeconds         float64 `yaml:"retry_backoff_seconds"`
}

const (
	defaultStoreCategories = "supermarket,grocery,hypermarket,market,food_and_drink,food_and_beverage"
	defaultDBFile          = "assistant_data.db"
)

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Database.DBType == "" {
		c.Database.DBType = "sqlite"
	}
	if c.Database.DBType == "sqlite" && c.Database.File == "" {
		if path := os.Getenv("MEALPLAN_DB_PATH"); path != "" {
			c.Database.File = path
		} else {
			c.Database.File = defaultDBFile
		}
	}

	if c.Identity.UserEnv == "" {
		c.Identity.UserEnv = "MEALPLAN_USER_ID"
	}
	if c.Identity.SessionEnv == "" {
		c.Identity.SessionEnv = "MEALPLAN_SESSION_ID"
	}
	if c.Identity.FallbackUser == "" {
		c.Identity.FallbackUser = "user"
	}

	if c.Mapbox.Country == "" {
		c.Mapbox.Country = "kw"
	}
	if c.Mapbox.Categories == "" {
		c.Mapbox.Categories = defaultStoreCategories
	}
	if c.Mapbox.TimeoutSeconds == 0 {
		c.Mapbox.TimeoutSeconds = 10
	}

	if c.Agents.Model == "" {
		c.Agents.Model = "gemini-2.0-flash"
	}
	if c.Agents.TemperatureCore == 0 {
		c.Agents.TemperatureCore = 0.35
	}
	if c.Agents.TemperatureOrchestrator == 0 {
		c.Agents.TemperatureOrchestrator = 0.6
	}
	if c.Agents.TopP == 0 {
		c.Agents.TopP = 0.9
	}
	if c.Agents.TopK == 0 {
		c.Agents.TopK = 40
	}
	if c.Agents.MaxOutputTokensCore == 0 {
		c.Agents.MaxOutputTokensCore = 1200
	}
	if c.Agents.MaxOutputTokensOrchestrator == 0 {
		c.Agents.MaxOutputTokensOrchestrator = 1600
	}
	if c.Agents.MaxRetries == 0 {
		c.Agents.MaxRetries = 3
	}
	if c.Agents.RetryBackoffSeconds == 0 {
		c.Agents.RetryBackoffSeconds = 2.0
	}
}

func (d *DatabaseConfig) GetConnectionString() (string, error) {
	switch d.DBType {
	case "postgres", "mysql":
		if d.ConnectionString == "" {
			return "", fmt.Errorf("connection string is required for %s connection", d.DBType)
		}
		return d.ConnectionString, nil

	case "sqlite":
		if d.File == "" {
			return defaultDBFile, nil
		}
		return d.File, nil

	default:
		return "", fmt.Errorf("unsupported database type: %s", d.DBType)
	}
}
