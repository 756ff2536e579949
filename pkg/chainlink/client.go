package chainlink

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
)

// Dial connects to an Ethereum JSON-RPC endpoint.
// The returned client satisfies ethereum.ContractCaller and is passed to NewReader.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}
	return client, nil
}

// Ping checks that the RPC endpoint answers by fetching the chain id
func Ping(ctx context.Context, client *ethclient.Client) error {
	if _, err := client.ChainID(ctx); err != nil {
		return fmt.Errorf("rpc ping failed: %w", err)
	}
	return nil
}
