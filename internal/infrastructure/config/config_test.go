package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validJWTSecret meets the 32-character minimum.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
database:
  driver: "pgx"
  dsn: "postgres://es:es@localhost:5432/emotionalsongs"
catalog:
  fetch_strategy: "batched"
  id_scheme: "uuid"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
  qos: 1
  topic_prefix: "es"
api:
  port: 9090
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "pgx" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "pgx")
	}
	if cfg.Catalog.FetchStrategy != "batched" {
		t.Errorf("Catalog.FetchStrategy = %q, want %q", cfg.Catalog.FetchStrategy, "batched")
	}
	if cfg.Catalog.IDScheme != "uuid" {
		t.Errorf("Catalog.IDScheme = %q, want %q", cfg.Catalog.IDScheme, "uuid")
	}
	if cfg.MQTT.TopicPrefix != "es" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "es")
	}
	// Defaults survive for keys the file leaves out.
	if cfg.Catalog.PageLimit != 20 {
		t.Errorf("Catalog.PageLimit = %d, want 20", cfg.Catalog.PageLimit)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "invalid: [yaml: content")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
catalog:
  id_scheme: "sequence"
`)
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for unknown id_scheme, got nil")
	}
	if !strings.Contains(err.Error(), "catalog.id_scheme") {
		t.Errorf("error %q does not name catalog.id_scheme", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "missing sqlite path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "pgx without dsn",
			mutate:  func(c *Config) { c.Database.Driver = "pgx" },
			wantErr: "database.dsn",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "database.driver",
		},
		{
			name:    "unknown fetch strategy",
			mutate:  func(c *Config) { c.Catalog.FetchStrategy = "joined" },
			wantErr: "catalog.fetch_strategy",
		},
		{
			name:    "zero parallelism",
			mutate:  func(c *Config) { c.Catalog.FetchParallelism = 0 },
			wantErr: "catalog.fetch_parallelism",
		},
		{
			name:    "page limit above max",
			mutate:  func(c *Config) { c.Catalog.PageLimit = 500 },
			wantErr: "catalog.page_limit",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without prefix",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.TopicPrefix = ""
			},
			wantErr: "mqtt.topic_prefix",
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name:    "JWT secret too short",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: "security.jwt.secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.Port = 0
	cfg.MQTT.QoS = 9

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"api.port", "mqtt.qos"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_ValidateServe(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.ValidateServe(); err == nil {
		t.Error("ValidateServe() without secret should fail")
	}

	cfg.Security.JWT.Secret = validJWTSecret
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("ValidateServe() error = %v", err)
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{Read: 30, Write: 45, Idle: 60},
		},
		Security: SecurityConfig{JWT: JWTConfig{AccessTokenTTL: 15}},
	}

	timeouts := cfg.API.Timeouts
	if got := timeouts.ReadDuration().Seconds(); got != 30 {
		t.Errorf("ReadDuration() = %v, want 30", got)
	}
	if got := timeouts.WriteDuration().Seconds(); got != 45 {
		t.Errorf("WriteDuration() = %v, want 45", got)
	}
	if got := timeouts.IdleDuration().Seconds(); got != 60 {
		t.Errorf("IdleDuration() = %v, want 60", got)
	}
	if got := cfg.GetAccessTokenTTL().Minutes(); got != 15 {
		t.Errorf("GetAccessTokenTTL() = %v, want 15", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("EMOTIONALSONGS_DATABASE_DRIVER", "pgx")
	t.Setenv("EMOTIONALSONGS_DATABASE_DSN", "postgres://localhost/es")
	t.Setenv("EMOTIONALSONGS_CATALOG_FETCH_PARALLELISM", "4")
	t.Setenv("EMOTIONALSONGS_CATALOG_ID_SCHEME", "uuid")
	t.Setenv("EMOTIONALSONGS_MQTT_HOST", "mqtt.example.com")
	t.Setenv("EMOTIONALSONGS_API_PORT", "9191")
	t.Setenv("EMOTIONALSONGS_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("EMOTIONALSONGS_JWT_SECRET", "jwt-secret")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Database.Driver != "pgx" {
		t.Errorf("Database.Driver = %q, want pgx", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://localhost/es" {
		t.Errorf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Catalog.FetchParallelism != 4 {
		t.Errorf("Catalog.FetchParallelism = %d, want 4", cfg.Catalog.FetchParallelism)
	}
	if cfg.Catalog.IDScheme != "uuid" {
		t.Errorf("Catalog.IDScheme = %q, want uuid", cfg.Catalog.IDScheme)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port = %d, want 9191", cfg.API.Port)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Security.JWT.Secret != "jwt-secret" {
		t.Errorf("Security.JWT.Secret = %q, want %q", cfg.Security.JWT.Secret, "jwt-secret")
	}
}

func TestApplyEnvOverrides_BadInteger(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("EMOTIONALSONGS_API_PORT", "eighty")

	if err := applyEnvOverrides(cfg); err == nil {
		t.Error("applyEnvOverrides() expected error for non-numeric port")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want unchanged 8080", cfg.API.Port)
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load(sample) error = %v", err)
	}
	if cfg.Catalog.FetchParallelism != 4 {
		t.Errorf("FetchParallelism = %d, want 4", cfg.Catalog.FetchParallelism)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Error("sample config ships a JWT secret")
	}
}
