package redis

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFor(t *testing.T, mr *miniredis.Miniredis) Config {
	t.Helper()
	host, port, ok := strings.Cut(mr.Addr(), ":")
	require.True(t, ok)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return Config{Host: host, Port: p}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := configFor(t, mr)

	client, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, Ping(context.Background(), client))
	assert.Equal(t, mr.Addr(), cfg.Addr())
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := configFor(t, mr)
	mr.Close()

	_, err := Connect(context.Background(), cfg)
	assert.ErrorContains(t, err, "redis ping failed")
}
