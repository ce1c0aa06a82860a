package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// envPrefix prefixes every environment override.
const envPrefix = "EMOTIONALSONGS_"

// minJWTSecretLength is the shortest accepted signing secret.
const minJWTSecretLength = 32

// Config mirrors config.yaml. See Load for precedence.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	// Driver is "sqlite3" or "pgx".
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	WALMode      bool   `yaml:"wal_mode"`
	BusyTimeout  int    `yaml:"busy_timeout"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// CatalogConfig tunes how entities are fetched and identified.
type CatalogConfig struct {
	// FetchStrategy is "per_entity" (one dependent query per entity) or
	// "batched" (one IN query per page).
	FetchStrategy string `yaml:"fetch_strategy"`

	// FetchParallelism bounds concurrent dependent queries for per_entity.
	FetchParallelism int `yaml:"fetch_parallelism"`

	// IDScheme is "timehex" (hex millisecond timestamp) or "uuid".
	IDScheme string `yaml:"id_scheme"`

	// PageLimit is the default page size; MaxPageLimit caps client requests.
	PageLimit    int `yaml:"page_limit"`
	MaxPageLimit int `yaml:"max_page_limit"`

	// RecentAlbumsYear is the default release-year threshold for recent albums.
	RecentAlbumsYear int `yaml:"recent_albums_year"`
}

// MQTTConfig configures the optional catalog event publisher.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig delays are in seconds. paho retries until Close.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig configures the REST listener.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig values are seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig lists allowed cross-origin callers. An empty AllowedOrigins
// admits any origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDBConfig configures the query-timing sink. FlushInterval is seconds.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig signs access tokens with HS256.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	// AccessTokenTTL is in minutes.
	AccessTokenTTL int `yaml:"access_token_ttl"`
}

// Load layers defaults, the YAML file at path (skipped when path is empty)
// and EMOTIONALSONGS_SECTION_KEY environment variables, in that order, then
// validates the result.
//
// Parameters:
//   - path: YAML file, or "" for defaults plus environment only
//
// Returns:
//   - *Config: validated configuration
//   - error: read, parse, environment or validation failure; validation
//     errors list every bad setting at once
//
// Example:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	db, err := database.Open(database.Config{Driver: cfg.Database.Driver, Path: cfg.Database.Path})
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	// Overlay the file
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// Overlay the environment
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       "sqlite3",
			Path:         "./data/emotionalsongs.db",
			WALMode:      true,
			BusyTimeout:  5,
			MaxOpenConns: 10,
		},
		Catalog: CatalogConfig{
			FetchStrategy:    "per_entity",
			FetchParallelism: 1,
			IDScheme:         "timehex",
			PageLimit:        20,
			MaxPageLimit:     100,
			RecentAlbumsYear: 2020,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "emotionalsongs-core",
			},
			QoS:         1,
			TopicPrefix: "emotionalsongs",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "emotionalsongs",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides copies set EMOTIONALSONGS_* variables over cfg.
// Non-numeric values for integer keys are collected and reported together.
func applyEnvOverrides(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s%s must be an integer", envPrefix, key))
			return
		}
		*dst = n
	}

	// Database
	str("DATABASE_DRIVER", &cfg.Database.Driver)
	str("DATABASE_PATH", &cfg.Database.Path)
	str("DATABASE_DSN", &cfg.Database.DSN)

	// Catalog
	str("CATALOG_FETCH_STRATEGY", &cfg.Catalog.FetchStrategy)
	num("CATALOG_FETCH_PARALLELISM", &cfg.Catalog.FetchParallelism)
	str("CATALOG_ID_SCHEME", &cfg.Catalog.IDScheme)

	// MQTT
	str("MQTT_HOST", &cfg.MQTT.Broker.Host)
	str("MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	str("MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	// API
	str("API_HOST", &cfg.API.Host)
	num("API_PORT", &cfg.API.Port)

	// InfluxDB
	str("INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

		str("JWT_SECRET", &cfg.Security.JWT.Secret)

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite3 driver")
		}
	case "pgx":
		if c.Database.DSN == "" {
			errs = append(errs, "database.dsn is required for the pgx driver (set EMOTIONALSONGS_DATABASE_DSN)")
		}
	default:
		errs = append(errs, "database.driver must be sqlite3 or pgx")
	}

	switch c.Catalog.FetchStrategy {
	case "per_entity", "batched":
	default:
		errs = append(errs, "catalog.fetch_strategy must be per_entity or batched")
	}
	if c.Catalog.FetchParallelism < 1 {
		errs = append(errs, "catalog.fetch_parallelism must be at least 1")
	}
	switch c.Catalog.IDScheme {
	case "timehex", "uuid":
	default:
		errs = append(errs, "catalog.id_scheme must be timehex or uuid")
	}
	if c.Catalog.PageLimit < 1 || c.Catalog.MaxPageLimit < c.Catalog.PageLimit {
		errs = append(errs, "catalog.page_limit must be at least 1 and not above catalog.max_page_limit")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1 or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port out of range 1-65535")
	}

	// A short secret is rejected even when the API is not served.
	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("security.jwt.secret shorter than %d characters", minJWTSecretLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ValidateServe adds the checks that only matter when the HTTP API is served.
func (c *Config) ValidateServe() error {
	if c.Security.JWT.Secret == "" {
		return fmt.Errorf("invalid configuration: security.jwt.secret is required to serve the API (set %sJWT_SECRET)", envPrefix)
	}
	return nil
}

// ReadDuration, WriteDuration and IdleDuration convert the second counts
// to durations for http.Server.
func (t APITimeoutConfig) ReadDuration() time.Duration  { return secs(t.Read) }
func (t APITimeoutConfig) WriteDuration() time.Duration { return secs(t.Write) }
func (t APITimeoutConfig) IdleDuration() time.Duration  { return secs(t.Idle) }

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

// GetAccessTokenTTL is security.jwt.access_token_ttl in minutes as a duration.
func (c *Config) GetAccessTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.AccessTokenTTL) * time.Minute
}
