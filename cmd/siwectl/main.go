// Command siwectl signs and checks proof-of-time sign-in messages from the terminal.
//
//	siwectl round
//	siwectl sign -key <hex> [-domain <host>] [-uri <uri>] [-nonce <round>] [-statement <text>]
//	siwectl verify -message <path> -signature <hex> [-current <round>] [-max-round-age <n>]
package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/config"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/proofoftime"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/siwe"
)

const usage = "usage: siwectl round | siwectl sign -key <hex> [-domain <host>] [-uri <uri>] [-nonce <round>] [-statement <text>] | siwectl verify -message <path> -signature <hex> [-current <round>]"

const readTimeout = 15 * time.Second

// errUsage exits with status 2
var errUsage = errors.New("usage error")

// roundFunc fetches the oracle's latest round
type roundFunc func(ctx context.Context) (*chainlink.Sample, error)

type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
	cfg    *config.ToolConfig
	round  roundFunc
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadTool()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logger,
		cfg:    cfg,
		round:  dialRound(&cfg.Chain),
	}
	os.Exit(a.run(os.Args[1:]))
}

// dialRound connects lazily so sign with an explicit nonce works offline
func dialRound(chain *config.ChainConfig) roundFunc {
	return func(ctx context.Context) (*chainlink.Sample, error) {
		client, err := chainlink.Dial(ctx, chain.RPCURL)
		if err != nil {
			return nil, err
		}
		defer client.Close()

		reader, err := chainlink.NewReader(client, chainlink.Config{
			FeedAddress: chain.FeedAddress,
			Decimals:    chain.Decimals,
			FeedName:    chain.FeedName,
		})
		if err != nil {
			return nil, err
		}
		return reader.ReadLatestRound(ctx)
	}
}

func (a *app) run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(a.stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "round":
		err = a.runRound()
	case "sign":
		err = a.runSign(args[1:])
	case "verify":
		err = a.runVerify(args[1:])
	default:
		fmt.Fprintln(a.stderr, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(a.stderr, err)
		return 2
	default:
		a.logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		return 1
	}
}

func (a *app) runRound() error {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	sample, err := a.round(ctx)
	if err != nil {
		return err
	}
	return a.print(sample)
}

type signOutput struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func (a *app) runSign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	keyHex := fs.String("key", os.Getenv("SIWE_PRIVATE_KEY"), "hex private key (defaults to $SIWE_PRIVATE_KEY)")
	domain := fs.String("domain", a.cfg.Auth.Domain, "domain requesting the sign-in (defaults to $AUTH_DOMAIN)")
	uri := fs.String("uri", "", "URI field (defaults to $AUTH_URI, or https://<domain> when -domain is overridden)")
	nonce := fs.String("nonce", "", "round id to sign (defaults to the latest round)")
	statement := fs.String("statement", "", "statement line (defaults to the price statement)")
	appName := fs.String("app", a.cfg.Auth.AppName, "application name used in the default statement")
	chainID := fs.Int64("chain-id", a.cfg.Chain.ChainID, "chain id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	key, err := parseKey(*keyHex)
	if err != nil {
		return err
	}

	if *nonce == "" {
		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()

		sample, err := a.round(ctx)
		if err != nil {
			return err
		}
		*nonce = sample.RoundID
		if *statement == "" {
			*statement = siwe.BuildStatement(*appName, sample.Feed, sample.Price)
		}
	}
	if *uri == "" {
		*uri = a.defaultURI(*domain)
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	message, err := siwe.Build(siwe.BuildParams{
		Address:   address.Hex(),
		Domain:    *domain,
		URI:       *uri,
		Statement: *statement,
		Nonce:     *nonce,
		ChainID:   *chainID,
	})
	if err != nil {
		return err
	}

	signature, err := siwe.SignMessage(message, key)
	if err != nil {
		return err
	}

	return a.print(signOutput{Address: address.Hex(), Message: message, Signature: signature})
}

type verifyOutput struct {
	Valid     bool   `json:"valid"`
	Address   string `json:"address,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
	Current   string `json:"currentRoundId,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Recovered string `json:"recovered,omitempty"`
}

func (a *app) runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	messagePath := fs.String("message", "", "path to the message file (- for stdin); a trailing newline added by an editor is ignored")
	signature := fs.String("signature", "", "hex signature")
	current := fs.String("current", "", "current round id (defaults to the latest round)")
	maxAge := fs.Uint64("max-round-age", proofoftime.DefaultMaxRoundAge, "accepted round age")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if strings.TrimSpace(*messagePath) == "" || strings.TrimSpace(*signature) == "" {
		return fmt.Errorf("%w: both -message and -signature are required", errUsage)
	}

	raw, err := readMessage(*messagePath)
	if err != nil {
		return err
	}

	msg, err := siwe.Parse(raw)
	if err != nil {
		return a.print(verifyOutput{Reason: err.Error()})
	}

	out := verifyOutput{Address: msg.Address.Hex(), Nonce: msg.Nonce}
	recovered, err := a.recoverSigner(raw, *signature, msg)
	if err != nil {
		out.Reason = err.Error()
		return a.print(out)
	}
	out.Recovered = recovered.Hex()

	if *current == "" {
		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()

		sample, err := a.round(ctx)
		if err != nil {
			return err
		}
		*current = sample.RoundID
	}
	out.Current = *current

	if err := proofoftime.NewValidator(*maxAge).Check(msg.Nonce, *current); err != nil {
		out.Reason = err.Error()
		return a.print(out)
	}

	out.Valid = true
	return a.print(out)
}

func (a *app) defaultURI(domain string) string {
	if domain == a.cfg.Auth.Domain && a.cfg.Auth.URI != "" {
		return a.cfg.Auth.URI
	}
	return "https://" + domain
}

// recoverSigner checks the bytes as read first, then without one trailing newline
func (a *app) recoverSigner(raw, signature string, msg *siwe.Message) (common.Address, error) {
	verifier := siwe.NewEthVerifier(a.logger)

	recovered, err := verifier.Verify(raw, signature, msg.Address)
	if err == nil || !errors.Is(err, siwe.ErrAddressMismatch) {
		return recovered, err
	}

	trimmed := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	if trimmed == raw {
		return recovered, err
	}
	return verifier.Verify(trimmed, signature, msg.Address)
}

func readMessage(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read message failed: %w", err)
	}
	return string(b), nil
}

func parseKey(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, fmt.Errorf("%w: -key or SIWE_PRIVATE_KEY is required", errUsage)
	}
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
