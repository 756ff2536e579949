package siwe

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

func testParams() BuildParams {
	return BuildParams{
		Address:   strings.ToLower(testAddress),
		Domain:    "oracle.example",
		URI:       "https://oracle.example/login",
		Statement: "Sign in to OracleNet. BTC: $98000.00",
		Nonce:     "110680464442257320247",
		ChainID:   1,
		IssuedAt:  time.Date(2026, 2, 3, 12, 0, 0, 500, time.UTC),
	}
}

func TestBuild_Layout(t *testing.T) {
	raw, err := Build(testParams())
	require.NoError(t, err)

	want := "oracle.example wants you to sign in with your Ethereum account:\n" +
		testAddress + "\n" +
		"\n" +
		"Sign in to OracleNet. BTC: $98000.00\n" +
		"\n" +
		"URI: https://oracle.example/login\n" +
		"Version: 1\n" +
		"Chain ID: 1\n" +
		"Nonce: 110680464442257320247\n" +
		"Issued At: 2026-02-03T12:00:00Z"
	assert.Equal(t, want, raw)
}

func TestBuild_RoundTrip(t *testing.T) {
	p := testParams()
	raw, err := Build(p)
	require.NoError(t, err)

	msg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, p.Domain, msg.Domain)
	assert.True(t, strings.EqualFold(p.Address, msg.Address.Hex()))
	assert.Equal(t, p.Statement, msg.Statement)
	assert.Equal(t, p.URI, msg.URI)
	assert.Equal(t, Version, msg.Version)
	assert.Equal(t, p.ChainID, msg.ChainID)
	assert.Equal(t, p.Nonce, msg.Nonce)
	assert.True(t, p.IssuedAt.Truncate(time.Second).Equal(msg.IssuedAt))

	// rendering the parsed message reproduces the signed text
	assert.Equal(t, raw, msg.String())
}

func TestBuild_WithoutStatement(t *testing.T) {
	p := testParams()
	p.Statement = ""
	raw, err := Build(p)
	require.NoError(t, err)
	assert.NotContains(t, raw, "\n\n\n")

	msg, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, msg.Statement)
	assert.Equal(t, p.Nonce, msg.Nonce)
}

func TestBuild_DefaultsIssuedAt(t *testing.T) {
	p := testParams()
	p.IssuedAt = time.Time{}
	before := time.Now().UTC().Truncate(time.Second)

	raw, err := Build(p)
	require.NoError(t, err)
	msg, err := Parse(raw)
	require.NoError(t, err)
	assert.False(t, msg.IssuedAt.Before(before))
}

func TestBuild_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuildParams)
	}{
		{"bad address", func(p *BuildParams) { p.Address = "0x1234" }},
		{"empty domain", func(p *BuildParams) { p.Domain = "" }},
		{"empty nonce", func(p *BuildParams) { p.Nonce = "" }},
		{"multiline statement", func(p *BuildParams) { p.Statement = "a\nb" }},
		{"statement reads as nonce field", func(p *BuildParams) { p.Statement = "Nonce: 1" }},
		{"statement reads as uri field", func(p *BuildParams) { p.Statement = "URI: x" }},
		{"negative chain id", func(p *BuildParams) { p.ChainID = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			_, err := Build(p)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestBuild_OutputAlwaysParses(t *testing.T) {
	statements := []string{"", "Sign in", "Note: a colon", "nonce: lowercase is not a field", "- a dash"}
	chainIDs := []int64{0, 1, 137}

	for _, statement := range statements {
		for _, chainID := range chainIDs {
			p := testParams()
			p.Statement = statement
			p.ChainID = chainID

			raw, err := Build(p)
			require.NoError(t, err)

			msg, err := Parse(raw)
			require.NoError(t, err, "statement=%q chain=%d", statement, chainID)
			assert.Equal(t, statement, msg.Statement)
			assert.Equal(t, chainID, msg.ChainID)
			assert.Equal(t, p.Nonce, msg.Nonce)
			assert.Equal(t, testAddress, msg.Address.Hex())
		}
	}
}

func TestParse_Tolerance(t *testing.T) {
	raw, err := Build(testParams())
	require.NoError(t, err)

	t.Run("crlf and trailing newline", func(t *testing.T) {
		msg, err := Parse(strings.ReplaceAll(raw, "\n", "\r\n") + "\r\n")
		require.NoError(t, err)
		assert.Equal(t, "110680464442257320247", msg.Nonce)
	})

	t.Run("blank line after header", func(t *testing.T) {
		alt := strings.Replace(raw, "account:\n", "account:\n\n", 1)
		msg, err := Parse(alt)
		require.NoError(t, err)
		assert.True(t, strings.EqualFold(testAddress, msg.Address.Hex()))
	})

	t.Run("optional trailer fields", func(t *testing.T) {
		alt := raw + "\nExpiration Time: 2026-02-04T12:00:00Z" +
			"\nNot Before: 2026-02-03T11:00:00Z" +
			"\nRequest ID: abc-1" +
			"\nResources:\n- https://oracle.example/a\n- ipfs://b"
		msg, err := Parse(alt)
		require.NoError(t, err)
		require.NotNil(t, msg.ExpirationTime)
		require.NotNil(t, msg.NotBefore)
		assert.Equal(t, "abc-1", msg.RequestID)
		assert.Equal(t, []string{"https://oracle.example/a", "ipfs://b"}, msg.Resources)
		assert.Equal(t, alt, msg.String())
	})
}

func TestParse_Malformed(t *testing.T) {
	raw, err := Build(testParams())
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"missing header", strings.Replace(raw, " wants you to sign in with your Ethereum account:", "", 1)},
		{"short address", strings.Replace(raw, testAddress, "0x2c7536E3605D9C16a7a3", 1)},
		{"address without prefix", strings.Replace(raw, testAddress, testAddress[2:]+"00", 1)},
		{"bad checksum", strings.Replace(raw, testAddress, "0x2C7536E3605D9C16a7a3D7b1898e529396a65c23", 1)},
		{"wrong version", strings.Replace(raw, "Version: 1", "Version: 2", 1)},
		{"missing version", strings.Replace(raw, "Version: 1\n", "", 1)},
		{"missing nonce", strings.Replace(raw, "Nonce: 110680464442257320247\n", "", 1)},
		{"empty nonce", strings.Replace(raw, "Nonce: 110680464442257320247", "Nonce: ", 1)},
		{"non-integer chain id", strings.Replace(raw, "Chain ID: 1", "Chain ID: mainnet", 1)},
		{"bad issued at", strings.Replace(raw, "2026-02-03T12:00:00Z", "yesterday", 1)},
		{"unknown field", raw + "\nFoo: bar"},
		{"duplicate field", raw + "\nNonce: 1"},
		{"garbage line", raw + "\nnot a field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestParse_LowercaseAddress(t *testing.T) {
	raw, err := Build(testParams())
	require.NoError(t, err)

	msg, err := Parse(strings.Replace(raw, testAddress, strings.ToLower(testAddress), 1))
	require.NoError(t, err)
	assert.Equal(t, testAddress, msg.Address.Hex())
}

func TestBuildStatement(t *testing.T) {
	assert.Equal(t, "Sign in to OracleNet. BTC: $98000.00", BuildStatement("OracleNet", "BTC/USD", 98000))
	assert.Equal(t, "Sign in to App. ETH: $3120.46", BuildStatement("App", "ETH/USD", 3120.456))
	assert.Equal(t, "Sign in to App. BTC: $1.00", BuildStatement("App", "", 1))
}
