package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir into an empty directory so no developer .env leaks into the test
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, BackendMySQL, cfg.Store.Backend)
	assert.Equal(t, "0xF4030086522a5bEEa4988F8cA5B36dbC97BeE88c", cfg.Chain.FeedAddress)
	assert.Equal(t, uint8(8), cfg.Chain.Decimals)
	assert.Equal(t, uint64(10), cfg.Auth.MaxRoundAge)
	assert.Equal(t, 5*time.Second, cfg.Auth.OracleTimeout)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.Auth.AllowedDomains)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("AUTH_MAX_ROUND_AGE", "3")
	t.Setenv("AUTH_ALLOWED_DOMAINS", "oracle.example, app.oracle.example")
	t.Setenv("JWT_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, uint64(3), cfg.Auth.MaxRoundAge)
	assert.Equal(t, []string{"oracle.example", "app.oracle.example"}, cfg.Auth.AllowedDomains)
	assert.Equal(t, 15*time.Minute, cfg.Auth.JWTTTL)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("AUTH_APP_NAME=FromDotEnv\nSERVER_PORT=9000\n"), 0o600))
	t.Setenv("SERVER_PORT", "9100")
	t.Cleanup(func() { _ = os.Unsetenv("AUTH_APP_NAME") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "FromDotEnv", cfg.Auth.AppName)
	// process environment wins over .env
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("jwt secret required in production", func(t *testing.T) {
		isolate(t)
		t.Setenv("ENVIRONMENT", EnvProduction)
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("unknown backend", func(t *testing.T) {
		isolate(t)
		t.Setenv("STORE_BACKEND", "sqlite")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_BACKEND")
	})

	t.Run("postgres needs url", func(t *testing.T) {
		isolate(t)
		t.Setenv("STORE_BACKEND", BackendPostgres)
		_, err := Load()
		assert.ErrorContains(t, err, "POSTGRES_URL")
	})

	t.Run("malformed value", func(t *testing.T) {
		isolate(t)
		t.Setenv("AUTH_MAX_ROUND_AGE", "ten")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadTool_IgnoresServiceSettings(t *testing.T) {
	isolate(t)
	t.Setenv("ENVIRONMENT", EnvProduction)
	t.Setenv("CHAIN_FEED_NAME", "ETH/USD")
	t.Setenv("AUTH_DOMAIN", "oracle.example")

	// production without JWT_SECRET fails Load but not LoadTool
	_, err := Load()
	require.Error(t, err)

	cfg, err := LoadTool()
	require.NoError(t, err)
	assert.Equal(t, "ETH/USD", cfg.Chain.FeedName)
	assert.Equal(t, int64(1), cfg.Chain.ChainID)
	assert.Equal(t, "oracle.example", cfg.Auth.Domain)
	assert.Equal(t, "http://localhost:8080", cfg.Auth.URI)
	assert.Equal(t, "OracleNet", cfg.Auth.AppName)

	t.Setenv("CHAIN_RPC_URL", "")
	_, err = LoadTool()
	require.Error(t, err)
}
