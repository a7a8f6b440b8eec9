// Package config loads application settings from environment variables
// populated by the .env file in main.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Source and target stores
	PostgresDSN string
	MongoURI    string
	MongoDB     string

	// HTTP server
	Port         string
	MetricsPort  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Analytics cache; empty RedisAddr disables it
	RedisAddr string
	CacheTTL  time.Duration
}

// LoadConfig loads application settings from environment variables.
// The two store endpoints are required, everything else has defaults.
func LoadConfig() (*Config, error) {
	postgresDSN := os.Getenv("POSTGRES_DSN")
	if postgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN environment variable not set")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, errors.New("MONGO_URI environment variable not set")
	}

	return &Config{
		PostgresDSN: postgresDSN,
		MongoURI:    mongoURI,
		MongoDB:     getEnv("MONGO_DB", "travel_nosql"),

		Port:         getEnv("PORT", "8080"),
		MetricsPort:  getEnv("METRICS_PORT", "9090"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  time.Duration(getEnvAsInt("CACHE_TTL", 60)) * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
