package siwe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	headerSuffix = " wants you to sign in with your Ethereum account:"

	// Version is the only EIP-4361 message version
	Version = "1"

	fieldURI            = "URI"
	fieldVersion        = "Version"
	fieldChainID        = "Chain ID"
	fieldNonce          = "Nonce"
	fieldIssuedAt       = "Issued At"
	fieldExpirationTime = "Expiration Time"
	fieldNotBefore      = "Not Before"
	fieldRequestID      = "Request ID"
	fieldResources      = "Resources"
)

var knownFields = map[string]struct{}{
	fieldURI:            {},
	fieldVersion:        {},
	fieldChainID:        {},
	fieldNonce:          {},
	fieldIssuedAt:       {},
	fieldExpirationTime: {},
	fieldNotBefore:      {},
	fieldRequestID:      {},
	fieldResources:      {},
}

// Message is a parsed EIP-4361 sign-in message
type Message struct {
	Domain         string
	Address        common.Address
	Statement      string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
	NotBefore      *time.Time
	RequestID      string
	Resources      []string
}

// BuildParams are the inputs of Build
type BuildParams struct {
	Address   string
	Domain    string
	URI       string
	Statement string
	Nonce     string
	ChainID   int64
	// IssuedAt defaults to the current time
	IssuedAt time.Time
}

// Build renders a sign-in message. The nonce is expected to be an oracle round id.
func Build(params BuildParams) (string, error) {
	if !common.IsHexAddress(params.Address) {
		return "", fmt.Errorf("%w: invalid address %q", ErrInvalidParams, params.Address)
	}
	if params.Domain == "" || strings.ContainsAny(params.Domain, "\r\n") {
		return "", fmt.Errorf("%w: domain is required", ErrInvalidParams)
	}
	if params.Nonce == "" || strings.ContainsAny(params.Nonce, " \r\n") {
		return "", fmt.Errorf("%w: nonce is required", ErrInvalidParams)
	}
	if strings.ContainsAny(params.Statement, "\r\n") {
		return "", fmt.Errorf("%w: statement must be a single line", ErrInvalidParams)
	}
	if isFieldLine(params.Statement) {
		return "", fmt.Errorf("%w: statement must not start with a field name", ErrInvalidParams)
	}
	if params.ChainID < 0 {
		return "", fmt.Errorf("%w: chain id must not be negative", ErrInvalidParams)
	}
	if strings.ContainsAny(params.URI, "\r\n") {
		return "", fmt.Errorf("%w: uri must be a single line", ErrInvalidParams)
	}

	issuedAt := params.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	msg := &Message{
		Domain:    params.Domain,
		Address:   common.HexToAddress(params.Address),
		Statement: params.Statement,
		URI:       params.URI,
		Version:   Version,
		ChainID:   params.ChainID,
		Nonce:     params.Nonce,
		IssuedAt:  issuedAt.UTC().Truncate(time.Second),
	}
	return msg.String(), nil
}

// String renders the message in EIP-4361 layout
func (m *Message) String() string {
	var b strings.Builder

	b.WriteString(m.Domain)
	b.WriteString(headerSuffix)
	b.WriteString("\n")
	b.WriteString(m.Address.Hex())
	b.WriteString("\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement)
		b.WriteString("\n\n")
	}

	writeField(&b, fieldURI, m.URI)
	writeField(&b, fieldVersion, m.Version)
	writeField(&b, fieldChainID, strconv.FormatInt(m.ChainID, 10))
	writeField(&b, fieldNonce, m.Nonce)
	writeField(&b, fieldIssuedAt, m.IssuedAt.UTC().Format(time.RFC3339))
	if m.ExpirationTime != nil {
		writeField(&b, fieldExpirationTime, m.ExpirationTime.UTC().Format(time.RFC3339))
	}
	if m.NotBefore != nil {
		writeField(&b, fieldNotBefore, m.NotBefore.UTC().Format(time.RFC3339))
	}
	if m.RequestID != "" {
		writeField(&b, fieldRequestID, m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteString("\n" + fieldResources + ":")
		for _, r := range m.Resources {
			b.WriteString("\n- " + r)
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if name != fieldURI {
		b.WriteString("\n")
	}
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
}

// Parse reads a message produced by Build (or any EIP-4361 client using the same field order)
func Parse(raw string) (*Message, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	// trailing newline from some wallets
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 2 {
		return nil, malformed("message is too short")
	}

	domain, ok := strings.CutSuffix(lines[0], headerSuffix)
	if !ok || strings.TrimSpace(domain) == "" {
		return nil, malformed("missing sign-in header")
	}

	msg := &Message{Domain: domain}
	i := 1

	// tolerate a blank line between the header and the address
	if i < len(lines) && lines[i] == "" {
		i++
	}
	if i >= len(lines) {
		return nil, malformed("missing address")
	}
	addr, err := parseAddress(strings.TrimSpace(lines[i]))
	if err != nil {
		return nil, err
	}
	msg.Address = addr
	i++

	i = skipBlank(lines, i)
	if i < len(lines) && !isFieldLine(lines[i]) {
		msg.Statement = lines[i]
		i = skipBlank(lines, i+1)
	}

	fields := make(map[string]string)
	for ; i < len(lines); i++ {
		line := lines[i]
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, malformed(fmt.Sprintf("unexpected line %q", line))
		}
		if _, known := knownFields[name]; !known {
			return nil, malformed(fmt.Sprintf("unknown field %q", name))
		}
		if _, dup := fields[name]; dup {
			return nil, malformed(fmt.Sprintf("duplicate field %q", name))
		}

		if name == fieldResources {
			fields[name] = ""
			for i+1 < len(lines) && strings.HasPrefix(lines[i+1], "- ") {
				i++
				msg.Resources = append(msg.Resources, strings.TrimPrefix(lines[i], "- "))
			}
			continue
		}
		fields[name] = strings.TrimPrefix(value, " ")
	}

	if err := msg.applyFields(fields); err != nil {
		return nil, err
	}
	return msg, nil
}

func (m *Message) applyFields(fields map[string]string) error {
	m.URI = fields[fieldURI]

	version, ok := fields[fieldVersion]
	if !ok {
		return malformed("missing version")
	}
	if version != Version {
		return malformed(fmt.Sprintf("unsupported version %q", version))
	}
	m.Version = version

	chainID, ok := fields[fieldChainID]
	if !ok {
		return malformed("missing chain id")
	}
	id, err := strconv.ParseInt(chainID, 10, 64)
	if err != nil || id < 0 {
		return malformed(fmt.Sprintf("invalid chain id %q", chainID))
	}
	m.ChainID = id

	m.Nonce = strings.TrimSpace(fields[fieldNonce])
	if m.Nonce == "" {
		return malformed("missing nonce")
	}

	if v, ok := fields[fieldIssuedAt]; ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return malformed(fmt.Sprintf("invalid issued at %q", v))
		}
		m.IssuedAt = t
	}
	if v, ok := fields[fieldExpirationTime]; ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return malformed(fmt.Sprintf("invalid expiration time %q", v))
		}
		m.ExpirationTime = &t
	}
	if v, ok := fields[fieldNotBefore]; ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return malformed(fmt.Sprintf("invalid not before %q", v))
		}
		m.NotBefore = &t
	}
	m.RequestID = fields[fieldRequestID]

	return nil
}

// parseAddress accepts a 0x-prefixed 20-byte hex address.
// Mixed-case input must carry a valid EIP-55 checksum.
func parseAddress(s string) (common.Address, error) {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return common.Address{}, malformed(fmt.Sprintf("invalid address %q", s))
	}
	addr := common.HexToAddress(s)
	if s != strings.ToLower(s) && s != addr.Hex() {
		return common.Address{}, malformed(fmt.Sprintf("invalid address checksum %q", s))
	}
	return addr, nil
}

func isFieldLine(line string) bool {
	name, _, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}
	_, known := knownFields[name]
	return known
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedMessage, reason)
}

// BuildStatement renders the human-readable statement shown in the wallet prompt
func BuildStatement(appName, feed string, price float64) string {
	asset, _, _ := strings.Cut(feed, "/")
	if asset == "" {
		asset = "BTC"
	}
	return fmt.Sprintf("Sign in to %s. %s: $%.2f", appName, asset, price)
}
