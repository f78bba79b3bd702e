package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=localhost user=test dbname=test")
	t.Setenv("DB_REPLICA_DSNS", "replica-a, ,replica-b")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("MUX_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "host=localhost user=test dbname=test", cfg.DBDSN)
	assert.Equal(t, []string{"replica-a", "replica-b"}, cfg.DBReplicaDSNs)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.StorageUseSSL)
	assert.Equal(t, 2.5, cfg.MuxRPS)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "https://api.mux.com", cfg.MuxBaseURL)
}
