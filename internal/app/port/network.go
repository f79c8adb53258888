package port

import (
	"context"
	"math/big"

	"wallet_report/internal/domain/entity"
)

// BlockchainClient reads on-chain state for one network.
type BlockchainClient interface {
	// GetNativeBalance fetches the native currency balance in the smallest unit.
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider resolves blockchain identifiers to network definitions.
type NetworkDefinitionProvider interface {
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns the definition and true when the identifier is enabled.
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)
}

// BlockchainClientProvider hands out cached clients per network.
type BlockchainClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
