package db

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 3306, User: "oracle", Password: "secret", Name: "identities"}

	parsed, err := mysql.ParseDSN(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "oracle", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "localhost:3306", parsed.Addr)
	assert.Equal(t, "identities", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
	assert.Equal(t, "utf8mb4", parsed.Params["charset"])
}

func TestNew_DoesNotConnect(t *testing.T) {
	db, err := New(Config{Host: "127.0.0.1", Port: 1, User: "u", Name: "n", MaxOpenConns: 2})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 2, db.Stats().MaxOpenConnections)
}

func TestNewPostgres_RequiresURL(t *testing.T) {
	_, err := NewPostgres(context.Background(), PostgresConfig{})
	assert.Error(t, err)

	_, err = NewPostgres(context.Background(), PostgresConfig{URL: "::not a url::"})
	assert.Error(t, err)
}
