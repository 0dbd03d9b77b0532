package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, GormLogLevel(logger.Warn), cfg.DB.LogLevel)
	assert.False(t, cfg.JWT.Enabled)
	assert.Equal(t, "order_service", cfg.Metrics.Prefix)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, GormLogLevel(logger.Silent), cfg.DB.LogLevel)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.True(t, cfg.JWT.Enabled)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Run("store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("gorm log level", func(t *testing.T) {
		t.Setenv("DB_LOG_LEVEL", "verbose")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", db.GetDSN())
}
