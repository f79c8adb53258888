package client

import (
	"fmt"
	"sync"
	"time"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/infrastructure/configloader"
)

// DialFunc opens a client for one network. Swapped out in tests.
type DialFunc func(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration) (port.BlockchainClient, error)

// evmClientProvider implements the port.BlockchainClientProvider interface.
type evmClientProvider struct {
	clients           map[string]port.BlockchainClient
	mu                sync.Mutex
	logger            port.Logger
	dial              DialFunc
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider. A nil dial uses NewEVMClient.
func NewEVMClientProvider(cfg configloader.OnchainConfig, log port.Logger, dial DialFunc) port.BlockchainClientProvider {
	if dial == nil {
		dial = NewEVMClient
	}
	return &evmClientProvider{
		clients:           make(map[string]port.BlockchainClient),
		logger:            log,
		dial:              dial,
		connectionTimeout: time.Duration(cfg.ConnectionTimeoutSeconds) * time.Second,
		rpcCallTimeout:    time.Duration(cfg.RPCCallTimeoutSeconds) * time.Second,
	}
}

// GetClient retrieves a blockchain client for the given network definition.
// Clients are cached per network identifier.
func (p *evmClientProvider) GetClient(netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	if !netDef.IsEVM {
		return nil, fmt.Errorf("no on-chain client for non-EVM network %s", netDef.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.Identifier]; exists {
		p.logger.Debug("Returning cached EVM client", "network", netDef.Name)
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := p.dial(netDef, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.Identifier] = newClient
	return newClient, nil
}
