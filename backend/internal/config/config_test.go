package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
}

func TestLoadServerPostgresAndOrigins(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://joes.example,https://admin.joes.example")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, []string{"https://joes.example", "https://admin.joes.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadServerRejectsUnknownDriver(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadServer()
	assert.Error(t, err)
}

func TestLoadRuntimeFlags(t *testing.T) {
	t.Setenv("APP_MODE", "LOCAL")
	t.Setenv("LOCAL_SQLITE_PATH", "tmp/joes.db")
	t.Setenv("LOCAL_USER_UUID", "not-a-uuid")
	t.Setenv("LOCAL_USER_ADMIN", "false")

	flags := LoadRuntimeFlags()
	assert.True(t, flags.IsLocal())
	assert.True(t, filepath.IsAbs(flags.Local.DBPath))
	assert.Equal(t, defaultLocalUserUUID, flags.Local.UserUUID.String())
	assert.False(t, flags.Local.IsAdmin)

	t.Setenv("APP_MODE", "whatever")
	assert.Equal(t, ModeOnline, LoadRuntimeFlags().Mode)
}
