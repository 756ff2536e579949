package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/config"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/siwe"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func newTestApp(round roundFunc) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &app{
		stdout: &stdout,
		stderr: &stderr,
		logger: zap.NewNop(),
		cfg: &config.ToolConfig{
			Chain: config.ChainConfig{ChainID: 1, FeedName: "BTC/USD"},
			Auth:  config.AuthConfig{AppName: "OracleNet", Domain: "oracle.example", URI: "https://oracle.example/login"},
		},
		round:  round,
	}, &stdout, &stderr
}

func fixedRound(id string) roundFunc {
	return func(context.Context) (*chainlink.Sample, error) {
		return &chainlink.Sample{RoundID: id, Price: 98000, Feed: "BTC/USD"}, nil
	}
}

func offline(context.Context) (*chainlink.Sample, error) {
	return nil, errors.New("offline")
}

func sign(t *testing.T, a *app, stdout *bytes.Buffer, args ...string) signOutput {
	t.Helper()
	require.Equal(t, 0, a.run(append([]string{"sign", "-key", testKey}, args...)))

	var out signOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	stdout.Reset()
	return out
}

func TestSign_ExplicitNonceWorksOffline(t *testing.T) {
	a, stdout, _ := newTestApp(offline)

	out := sign(t, a, stdout, "-domain", "app.example", "-nonce", "500", "-statement", "hello")

	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", out.Address)
	msg, err := siwe.Parse(out.Message)
	require.NoError(t, err)
	assert.Equal(t, "500", msg.Nonce)
	assert.Equal(t, "hello", msg.Statement)
	assert.Equal(t, "https://app.example", msg.URI)

	recovered, err := siwe.NewEthVerifier(zap.NewNop()).RecoverAddress(out.Message, out.Signature)
	require.NoError(t, err)
	assert.Equal(t, out.Address, recovered.Hex())
}

func TestSign_DefaultsToLatestRound(t *testing.T) {
	a, stdout, _ := newTestApp(fixedRound("777"))

	out := sign(t, a, stdout, "-app", "Shrimp")

	msg, err := siwe.Parse(out.Message)
	require.NoError(t, err)
	assert.Equal(t, "777", msg.Nonce)
	assert.Equal(t, "Sign in to Shrimp. BTC: $98000.00", msg.Statement)
}

func TestSign_DomainAndURIFromConfig(t *testing.T) {
	a, stdout, _ := newTestApp(offline)

	out := sign(t, a, stdout, "-nonce", "500")
	msg, err := siwe.Parse(out.Message)
	require.NoError(t, err)
	assert.Equal(t, "oracle.example", msg.Domain)
	assert.Equal(t, "https://oracle.example/login", msg.URI)

	out = sign(t, a, stdout, "-nonce", "500", "-domain", "other.example")
	msg, err = siwe.Parse(out.Message)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example", msg.URI)
}

func TestVerify_IgnoresEditorTrailingNewline(t *testing.T) {
	a, stdout, _ := newTestApp(fixedRound("505"))
	out := sign(t, a, stdout, "-nonce", "500")

	dir := t.TempDir()
	for name, content := range map[string]string{
		"lf.txt":   out.Message + "\n",
		"crlf.txt": out.Message + "\r\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		require.Equal(t, 0, a.run([]string{"verify", "-message", path, "-signature", out.Signature}))
		var v verifyOutput
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &v))
		stdout.Reset()
		assert.True(t, v.Valid, "%s: %s", name, v.Reason)
		assert.Equal(t, out.Address, v.Recovered)
	}
}

func TestVerify(t *testing.T) {
	a, stdout, _ := newTestApp(fixedRound("505"))
	out := sign(t, a, stdout, "-nonce", "500")

	path := filepath.Join(t.TempDir(), "message.txt")
	require.NoError(t, os.WriteFile(path, []byte(out.Message), 0o600))

	verify := func(args ...string) verifyOutput {
		t.Helper()
		require.Equal(t, 0, a.run(append([]string{"verify", "-message", path}, args...)))
		var v verifyOutput
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &v))
		stdout.Reset()
		return v
	}

	v := verify("-signature", out.Signature)
	assert.True(t, v.Valid, v.Reason)
	assert.Equal(t, "505", v.Current)

	v = verify("-signature", out.Signature, "-current", "520")
	assert.False(t, v.Valid)
	assert.Contains(t, v.Reason, "too old")

	v = verify("-signature", out.Signature, "-current", "520", "-max-round-age", "20")
	assert.True(t, v.Valid)

	// a signature over a different message recovers someone else
	other := sign(t, a, stdout, "-nonce", "501")
	v = verify("-signature", other.Signature)
	assert.False(t, v.Valid)
	assert.Empty(t, v.Recovered)
}

func TestRun_UsageErrors(t *testing.T) {
	a, _, stderr := newTestApp(offline)

	assert.Equal(t, 2, a.run(nil))
	assert.Equal(t, 2, a.run([]string{"bogus"}))
	assert.Equal(t, 2, a.run([]string{"verify"}))
	assert.Contains(t, stderr.String(), "usage")

	t.Setenv("SIWE_PRIVATE_KEY", "")
	assert.Equal(t, 2, a.run([]string{"sign", "-nonce", "1"}))

	assert.Equal(t, 1, a.run([]string{"round"}))
	assert.Equal(t, 1, a.run([]string{"sign", "-key", "zz", "-nonce", "1"}))
}
