package client

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"weekend-at-joes/backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := BuildMySQLDSN(config.DBConfig{Host: "db", User: "joes", Password: "p@ss/word", Name: "joes"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "joes:p@ss/word@tcp(db:3306)/joes?"))
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	_, err = BuildMySQLDSN(config.DBConfig{Host: "db"})
	assert.Error(t, err)

	dsn, err = BuildMySQLDSN(config.DBConfig{DSN: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", dsn)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := BuildPostgresDSN(config.DBConfig{Host: "pg", User: "joes", Password: "secret", Name: "joes"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=pg port=5432")
	assert.Contains(t, dsn, "password=secret")
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "joes.db")
	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.FileExists(t, path)
}

func TestNewRedisClient(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	rdb, err = NewRedisClient(context.Background(), config.RedisConfig{Endpoint: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()

	_, err = NewRedisClient(context.Background(), config.RedisConfig{Endpoint: "bad:port"})
	assert.Error(t, err)
}
