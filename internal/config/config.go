package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"aquaculture-platform/internal/features"
	"aquaculture-platform/internal/models"
)

// Config holds the full process configuration, loaded from environment
// variables with an optional .env file.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Features FeaturesConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds result-cache settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FeaturesConfig holds the feature-engineering pipeline settings
type FeaturesConfig struct {
	LookbackHours      int
	AggregationWindows []string
	SensorTypes        []string
	IncludeSeasonal    bool
	IncludeLagFeatures bool
	MaxLagHours        int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; explicit env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "aquacontrol"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "aquacontrol_timeseries"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Features: FeaturesConfig{
			LookbackHours:      getEnvInt("FEATURE_LOOKBACK_HOURS", 24),
			AggregationWindows: getEnvList("FEATURE_AGGREGATION_WINDOWS", []string{"1H", "3H", "6H", "12H", "24H"}),
			SensorTypes:        getEnvList("FEATURE_SENSOR_TYPES", []string{"Temperature", "pH", "DissolvedOxygen", "Salinity"}),
			IncludeSeasonal:    getEnvBool("FEATURE_INCLUDE_SEASONAL", true),
			IncludeLagFeatures: getEnvBool("FEATURE_INCLUDE_LAG_FEATURES", true),
			MaxLagHours:        getEnvInt("FEATURE_MAX_LAG_HOURS", 6),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// FeatureConfig converts the raw settings into a validated pipeline
// configuration. Unknown sensor types fail here, before any I/O.
func (c *Config) FeatureConfig() (features.Config, error) {
	sensorTypes := make([]models.SensorType, 0, len(c.Features.SensorTypes))
	for _, raw := range c.Features.SensorTypes {
		st, err := models.ParseSensorType(raw)
		if err != nil {
			return features.Config{}, err
		}
		sensorTypes = append(sensorTypes, st)
	}

	fc := features.Config{
		LookbackHours:      c.Features.LookbackHours,
		AggregationWindows: c.Features.AggregationWindows,
		SensorTypes:        sensorTypes,
		IncludeSeasonal:    c.Features.IncludeSeasonal,
		IncludeLagFeatures: c.Features.IncludeLagFeatures,
		MaxLagHours:        c.Features.MaxLagHours,
	}

	if err := fc.Validate(); err != nil {
		return features.Config{}, err
	}
	return fc, nil
}

// Validate checks process-level configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	if _, err := c.FeatureConfig(); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
