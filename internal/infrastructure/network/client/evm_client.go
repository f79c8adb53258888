package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

// NewEVMClient dials the network's primary RPC endpoint, falling back to the
// secondary endpoints in order.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout time.Duration, rpcCallTimeout time.Duration) (port.BlockchainClient, error) {
	if !netDef.IsEVM {
		return nil, fmt.Errorf("network %s is not EVM-compatible", netDef.Name)
	}
	rpcURLs := make([]string, 0, 1+len(netDef.FallbackRPCURLs))
	if netDef.PrimaryRPCURL != "" {
		rpcURLs = append(rpcURLs, netDef.PrimaryRPCURL)
	}
	rpcURLs = append(rpcURLs, netDef.FallbackRPCURLs...)
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("network %s has no RPC endpoints", netDef.Name)
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{ethClient: client, netDef: netDef, rpcCallTimeout: rpcCallTimeout}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// GetNativeBalance returns the latest native balance of wallet in the chain's smallest unit.
func (c *EVMClient) GetNativeBalance(ctx context.Context, wallet string) (*big.Int, error) {
	if !common.IsHexAddress(wallet) {
		return nil, entity.ErrInvalidWalletAddress
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(rpcCallCtx, common.HexToAddress(wallet), nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("eth_getBalance on %s timed out after %s: %w", c.netDef.Name, c.rpcCallTimeout, err)
		}
		return nil, fmt.Errorf("eth_getBalance on %s failed: %w", c.netDef.Name, err)
	}
	if balance == nil {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
