package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Presence storage backends.
const (
	PresenceBackendPostgres = "postgres"
	PresenceBackendRedis    = "redis"
)

type Config struct {
	DatabaseURL       string
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
	// AdminToken guards the key management routes. Empty leaves them open.
	AdminToken string

	PresenceBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	RedisTLSEnabled    bool
	RedisTLSCert       string
	RedisTLSKey        string
	RedisTLSCACert     string
	RedisTLSServerName string

	// PresenceSweepInterval is how often expired presence rows are purged.
	// Zero disables the sweeper.
	PresenceSweepInterval time.Duration
	PresenceRetention     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8095"),
		MetricsListenAddr:  getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", "agentauth-api"),
		AdminToken:         getEnv("ADMIN_TOKEN", ""),
		PresenceBackend:    getEnv("PRESENCE_BACKEND", PresenceBackendPostgres),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLSCert:       getEnv("REDIS_TLS_CERT", ""),
		RedisTLSKey:        getEnv("REDIS_TLS_KEY", ""),
		RedisTLSCACert:     getEnv("REDIS_TLS_CA_CERT", ""),
		RedisTLSServerName: getEnv("REDIS_TLS_SERVER_NAME", ""),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RedisTLSEnabled, err = strconv.ParseBool(getEnv("REDIS_TLS", "false")); err != nil {
		return nil, fmt.Errorf("parse REDIS_TLS: %w", err)
	}
	if cfg.PresenceSweepInterval, err = time.ParseDuration(getEnv("PRESENCE_SWEEP_INTERVAL", "0")); err != nil {
		return nil, fmt.Errorf("parse PRESENCE_SWEEP_INTERVAL: %w", err)
	}
	if cfg.PresenceRetention, err = time.ParseDuration(getEnv("PRESENCE_RETENTION", "24h")); err != nil {
		return nil, fmt.Errorf("parse PRESENCE_RETENTION: %w", err)
	}

	return cfg, nil
}

// Validate checks that the settings required to serve traffic are present.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.PresenceBackend {
	case PresenceBackendPostgres, PresenceBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("PRESENCE_BACKEND must be %q or %q, got %q",
			PresenceBackendPostgres, PresenceBackendRedis, c.PresenceBackend))
	}
	if c.PresenceSweepInterval < 0 {
		errs = append(errs, errors.New("PRESENCE_SWEEP_INTERVAL must not be negative"))
	}
	if c.PresenceRetention < 0 {
		errs = append(errs, errors.New("PRESENCE_RETENTION must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
