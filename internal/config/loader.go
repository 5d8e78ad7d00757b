package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "comandero.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "COMANDERO_PORT")
	setString(&cfg.Server.CORSOrigin, "COMANDERO_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "COMANDERO_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "COMANDERO_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "COMANDERO_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "COMANDERO_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "COMANDERO_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.Auth.Enabled, "COMANDERO_AUTH_ENABLED")
	setString(&cfg.Auth.JWTSecret, "COMANDERO_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "COMANDERO_ACCESS_TOKEN_EXPIRY")
	setDuration(&cfg.Auth.RefreshTokenExpiry, "COMANDERO_REFRESH_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "COMANDERO_BCRYPT_COST")
	setString(&cfg.Logging.Level, "COMANDERO_LOG_LEVEL")
	setString(&cfg.Logging.Service, "COMANDERO_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "COMANDERO_LOG_ASYNC")
	setFloat64(&cfg.Rate.RequestsPerSecond, "COMANDERO_RATE_RPS")
	setInt(&cfg.Rate.Burst, "COMANDERO_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "COMANDERO_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "COMANDERO_RATE_MAX_IDLE_TIME")
	setInt(&cfg.Realtime.SendBuffer, "COMANDERO_RT_SEND_BUFFER")
	setBool(&cfg.Realtime.RelayEnabled, "COMANDERO_RT_RELAY_ENABLED")
	setInt64(&cfg.Cache.L1MaxBytes, "COMANDERO_CACHE_L1_MAX_BYTES")
	setDuration(&cfg.Cache.L1Expire, "COMANDERO_CACHE_L1_EXPIRE")
	setDuration(&cfg.Cache.MenuTTL, "COMANDERO_CACHE_MENU_TTL")
	setBool(&cfg.Otel.Enabled, "COMANDERO_OTEL_ENABLED")
	setString(&cfg.Otel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate rejects configurations that cannot work at runtime.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", cfg.Server.Port)
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn must not be empty")
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth is enabled (set COMANDERO_JWT_SECRET)")
	}
	if cfg.Auth.BcryptCost < 10 || cfg.Auth.BcryptCost > 16 {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and 16, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Realtime.SendBuffer < 1 {
		return fmt.Errorf("realtime.send_buffer must be positive, got %d", cfg.Realtime.SendBuffer)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
