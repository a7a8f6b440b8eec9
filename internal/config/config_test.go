package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresStores(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("MONGO_URI", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")

	t.Setenv("POSTGRES_DSN", "host=localhost user=postgres dbname=demo")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "host=localhost user=postgres dbname=demo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "")
	t.Setenv("PORT", "")
	t.Setenv("METRICS_PORT", "")
	t.Setenv("READ_TIMEOUT", "")
	t.Setenv("WRITE_TIMEOUT", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CACHE_TTL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "travel_nosql", cfg.MongoDB)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "host=db user=postgres dbname=demo")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DB", "travel_staging")
	t.Setenv("PORT", "3000")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("READ_TIMEOUT", "5")
	t.Setenv("WRITE_TIMEOUT", "")
	t.Setenv("CACHE_TTL", "300")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "travel_staging", cfg.MongoDB)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "9100", cfg.MetricsPort)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}
