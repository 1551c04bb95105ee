package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Setenv("MEALPLAN_DB_PATH", "")

	cfg := Default()

	if cfg.Database.DBType != "sqlite" {
		t.Errorf("database type = %q, want sqlite", cfg.Database.DBType)
	}
	if cfg.Database.File != "assistant_data.db" {
		t.Errorf("database file = %q", cfg.Database.File)
	}
	if cfg.Identity.UserEnv != "MEALPLAN_USER_ID" || cfg.Identity.FallbackUser != "user" {
		t.Errorf("identity config = %+v", cfg.Identity)
	}
	if cfg.Mapbox.Country != "kw" || cfg.Mapbox.TimeoutSeconds != 10 {
		t.Errorf("mapbox config = %+v", cfg.Mapbox)
	}
	if cfg.Agents.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.Agents.Model)
	}
	if cfg.Agents.TemperatureCore != 0.35 || cfg.Agents.TemperatureOrchestrator != 0.6 {
		t.Errorf("temperatures = %v, %v", cfg.Agents.TemperatureCore, cfg.Agents.TemperatureOrchestrator)
	}
	if cfg.Agents.TopP != 0.9 || cfg.Agents.TopK != 40 {
		t.Errorf("top_p/top_k = %v, %v", cfg.Agents.TopP, cfg.Agents.TopK)
	}
	if cfg.Agents.MaxOutputTokensCore != 1200 || cfg.Agents.MaxOutputTokensOrchestrator != 1600 {
		t.Errorf("token caps = %d, %d", cfg.Agents.MaxOutputTokensCore, cfg.Agents.MaxOutputTokensOrchestrator)
	}
	if cfg.Agents.MaxRetries != 3 || cfg.Agents.RetryBackoffSeconds != 2.0 {
		t.Errorf("retry config = %d, %v", cfg.Agents.MaxRetries, cfg.Agents.RetryBackoffSeconds)
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	t.Setenv("MEALPLAN_DB_PATH", "/tmp/custom.db")

	cfg := Default()
	if cfg.Database.File != "/tmp/custom.db" {
		t.Errorf("database file = %q, want env override", cfg.Database.File)
	}
}

func TestLoadConfig(t *testing.T) {
	configYAML := `
database:
  type: sqlite
  file: my.db
agents:
  model: gemini-1.5-pro
  temperature_core: 0.2
mapbox:
  country: ae
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.File != "my.db" {
		t.Errorf("database file = %q", cfg.Database.File)
	}
	if cfg.Agents.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q", cfg.Agents.Model)
	}
	if cfg.Agents.TemperatureCore != 0.2 {
		t.Errorf("temperature_core = %v", cfg.Agents.TemperatureCore)
	}
	if cfg.Mapbox.Country != "ae" {
		t.Errorf("country = %q", cfg.Mapbox.Country)
	}

	// Unset fields still get defaults.
	if cfg.Agents.TopK != 40 {
		t.Errorf("top_k = %d, want default 40", cfg.Agents.TopK)
	}
	if cfg.Identity.FallbackUser != "user" {
		t.Errorf("fallback user = %q", cfg.Identity.FallbackUser)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestGetConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DatabaseConfig
		want    string
		wantErr bool
	}{
		{"sqlite file", DatabaseConfig{DBType: "sqlite", File: "x.db"}, "x.db", false},
		{"sqlite default", DatabaseConfig{DBType: "sqlite"}, "assistant_data.db", false},
		{"postgres", DatabaseConfig{DBType: "postgres", ConnectionString: "postgres://u@h/db"}, "postgres://u@h/db", false},
		{"postgres missing", DatabaseConfig{DBType: "postgres"}, "", true},
		{"mysql missing", DatabaseConfig{DBType: "mysql"}, "", true},
		{"unsupported", DatabaseConfig{DBType: "mongodb"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.GetConnectionString()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
