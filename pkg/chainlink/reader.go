package chainlink

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultFeedAddress is the Chainlink BTC/USD aggregator on Ethereum mainnet
	DefaultFeedAddress = "0xF4030086522a5bEEa4988F8cA5B36dbC97BeE88c"
	// DefaultDecimals is the answer precision of the BTC/USD feed
	DefaultDecimals = 8
	// DefaultFeedName is a human-readable label for the default feed
	DefaultFeedName = "BTC/USD"

	latestRoundDataMethod = "latestRoundData"
	// roundDataSize is five 32-byte ABI words
	roundDataSize = 5 * 32
)

const aggregatorABI = `[{
	"name": "latestRoundData",
	"type": "function",
	"stateMutability": "view",
	"inputs": [],
	"outputs": [
		{"name": "roundId", "type": "uint80"},
		{"name": "answer", "type": "int256"},
		{"name": "startedAt", "type": "uint256"},
		{"name": "updatedAt", "type": "uint256"},
		{"name": "answeredInRound", "type": "uint80"}
	]
}]`

// ErrOracleUnavailable is returned when the feed cannot be read or decoded
var ErrOracleUnavailable = errors.New("price oracle unavailable")

// Sample is a single reading of the feed's latest round
type Sample struct {
	RoundID   string   `json:"roundId"`
	Answer    *big.Int `json:"-"`
	Price     float64  `json:"price"`
	Timestamp int64    `json:"timestamp"`
	Feed      string   `json:"feed"`
}

// RoundReader reads the latest round of a price feed
type RoundReader interface {
	ReadLatestRound(ctx context.Context) (*Sample, error)
}

// Config holds the aggregator the reader targets
type Config struct {
	FeedAddress string
	Decimals    uint8
	FeedName    string
}

// Reader implements RoundReader with a single eth_call against an aggregator contract
type Reader struct {
	caller   ethereum.ContractCaller
	feed     common.Address
	decimals uint8
	name     string
	abi      abi.ABI
	calldata []byte
}

// Compile-time interface compliance check
var _ RoundReader = (*Reader)(nil)

// NewReader creates a reader for the configured aggregator
func NewReader(caller ethereum.ContractCaller, cfg Config) (*Reader, error) {
	if cfg.FeedAddress == "" {
		cfg.FeedAddress = DefaultFeedAddress
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = DefaultDecimals
	}
	if cfg.FeedName == "" {
		cfg.FeedName = DefaultFeedName
	}
	if !common.IsHexAddress(cfg.FeedAddress) {
		return nil, fmt.Errorf("invalid feed address %q", cfg.FeedAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator abi: %w", err)
	}
	calldata, err := parsed.Pack(latestRoundDataMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", latestRoundDataMethod, err)
	}

	return &Reader{
		caller:   caller,
		feed:     common.HexToAddress(cfg.FeedAddress),
		decimals: cfg.Decimals,
		name:     cfg.FeedName,
		abi:      parsed,
		calldata: calldata,
	}, nil
}

// ReadLatestRound performs one read-only call of latestRoundData() at the latest block.
// There is no retry; callers bound the call through ctx.
func (r *Reader) ReadLatestRound(ctx context.Context) (*Sample, error) {
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &r.feed,
		Data: r.calldata,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_call failed: %v", ErrOracleUnavailable, err)
	}

	return r.decode(out)
}

func (r *Reader) decode(out []byte) (*Sample, error) {
	if len(out) != roundDataSize {
		return nil, fmt.Errorf("%w: unexpected return data length %d", ErrOracleUnavailable, len(out))
	}

	values, err := r.abi.Unpack(latestRoundDataMethod, out)
	if err != nil {
		return nil, fmt.Errorf("%w: decode round data: %v", ErrOracleUnavailable, err)
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("%w: expected 5 values, got %d", ErrOracleUnavailable, len(values))
	}

	roundID, ok1 := values[0].(*big.Int)
	answer, ok2 := values[1].(*big.Int)
	updatedAt, ok3 := values[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: unexpected round data types", ErrOracleUnavailable)
	}
	if !updatedAt.IsInt64() {
		return nil, fmt.Errorf("%w: updatedAt out of range", ErrOracleUnavailable)
	}

	return &Sample{
		RoundID:   roundID.String(),
		Answer:    answer,
		Price:     ScalePrice(answer, r.decimals),
		Timestamp: updatedAt.Int64(),
		Feed:      r.name,
	}, nil
}

// ScalePrice converts a raw feed answer into a decimal price (answer / 10^decimals)
func ScalePrice(answer *big.Int, decimals uint8) float64 {
	if answer == nil {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	price, _ := new(big.Float).Quo(new(big.Float).SetInt(answer), new(big.Float).SetInt(scale)).Float64()
	return price
}
