package networkdefinition

import (
	"fmt"
	"strings"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
)

// NetworkDefinitionProvider provides the chains reports can be generated for.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	allNetworkDefs    map[string]entity.NetworkDefinition
	activeNetworkDefs []entity.NetworkDefinition
}

// Predefined network definitions. Identifiers are the blockchain names the
// analytics API accepts.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	Binance = entity.NetworkDefinition{
		ChainID:          56,
		Name:             "BNB Smart Chain",
		Identifier:       "binance",
		NativeSymbol:     "BNB",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://1rpc.io/bnb",
		FallbackRPCURLs:  []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		NativeSymbol:     "POL",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:          43114,
		Name:             "Avalanche C-Chain",
		Identifier:       "avalanche",
		NativeSymbol:     "AVAX",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
		BlockExplorerURL: "https://snowtrace.io",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		NativeSymbol:     "ETH",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://mainnet.base.org",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://1rpc.io/base"},
		BlockExplorerURL: "https://basescan.org",
	}
	Linea = entity.NetworkDefinition{
		ChainID:          59144,
		Name:             "Linea Mainnet",
		Identifier:       "linea",
		NativeSymbol:     "ETH",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://rpc.linea.build",
		FallbackRPCURLs:  []string{"https://linea.drpc.org", "https://1rpc.io/linea"},
		BlockExplorerURL: "https://lineascan.build",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		NativeSymbol:     "ETH",
		Decimals:         18,
		IsEVM:            true,
		PrimaryRPCURL:    "https://mainnet.optimism.io",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	// Non-EVM chains carry no RPC endpoints; balances come from the analytics API only.
	Solana = entity.NetworkDefinition{
		Name:             "Solana",
		Identifier:       "solana",
		NativeSymbol:     "SOL",
		Decimals:         9,
		BlockExplorerURL: "https://solscan.io",
	}
	Bitcoin = entity.NetworkDefinition{
		Name:             "Bitcoin",
		Identifier:       "bitcoin",
		NativeSymbol:     "BTC",
		Decimals:         8,
		BlockExplorerURL: "https://mempool.space",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Ethereum.Identifier:  Ethereum,
	Binance.Identifier:   Binance,
	Polygon.Identifier:   Polygon,
	Avalanche.Identifier: Avalanche,
	Base.Identifier:      Base,
	Linea.Identifier:     Linea,
	Arbitrum.Identifier:  Arbitrum,
	Optimism.Identifier:  Optimism,
	Solana.Identifier:    Solana,
	Bitcoin.Identifier:   Bitcoin,
}

// aliases maps alternative names users send to the canonical identifier.
var aliases = map[string]string{
	"eth":  Ethereum.Identifier,
	"bsc":  Binance.Identifier,
	"bnb":  Binance.Identifier,
	"avax": Avalanche.Identifier,
	"sol":  Solana.Identifier,
	"btc":  Bitcoin.Identifier,
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
// enabled lists the identifiers to activate; an empty list activates every known chain.
func NewNetworkDefinitionProvider(log port.Logger, enabled []string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:            log,
		allNetworkDefs:    allKnownDefinitions,
		activeNetworkDefs: make([]entity.NetworkDefinition, 0),
	}

	if len(enabled) == 0 {
		for _, id := range sortedIdentifiers() {
			p.activeNetworkDefs = append(p.activeNetworkDefs, p.allNetworkDefs[id])
		}
		p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active networks: %d (all known)", len(p.activeNetworkDefs)))
		return p
	}

	activeIdentifiers := make(map[string]struct{})
	for _, name := range enabled {
		identifier := canonical(name)

		if _, alreadyActive := activeIdentifiers[identifier]; alreadyActive {
			p.logger.Warn(fmt.Sprintf("Duplicate network identifier in configuration: %s. Skipping.", name))
			continue
		}

		def, ok := p.allNetworkDefs[identifier]
		if !ok {
			p.logger.Warn(fmt.Sprintf("Network '%s' is configured but no corresponding network definition exists. Skipping.", name))
			continue
		}

		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
		activeIdentifiers[identifier] = struct{}{}
	}

	if len(p.activeNetworkDefs) == 0 {
		p.logger.Warn("No configured network matches a known definition. Every report request will be rejected.")
	} else {
		p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active networks: %d", len(p.activeNetworkDefs)))
		for _, netDef := range p.activeNetworkDefs {
			p.logger.Debug(fmt.Sprintf("  - Active network: %s (ID: %s, ChainID: %d, EVM: %t)", netDef.Name, netDef.Identifier, netDef.ChainID, netDef.IsEVM))
		}
	}

	return p
}

// GetAllNetworkDefinitions returns the list of active network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinitionByName returns an active network definition by identifier or alias.
// Matching is case-insensitive.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	identifier = canonical(identifier)
	for _, def := range p.activeNetworkDefs {
		if def.Identifier == identifier {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID if it's active.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil || chainID == 0 {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.activeNetworkDefs {
		if def.ChainID == chainID {
			return def, true
		}
	}

	for _, knownDef := range p.allNetworkDefs {
		if knownDef.ChainID == chainID {
			p.logger.Warn(fmt.Sprintf("Network with ChainID %d found in all definitions but not in active list.", chainID))
			return knownDef, true
		}
	}

	return entity.NetworkDefinition{}, false
}

func canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// sortedIdentifiers keeps the activation order stable, Ethereum first.
func sortedIdentifiers() []string {
	return []string{
		Ethereum.Identifier, Polygon.Identifier, Avalanche.Identifier, Binance.Identifier,
		Linea.Identifier, Base.Identifier, Arbitrum.Identifier, Optimism.Identifier,
		Solana.Identifier, Bitcoin.Identifier,
	}
}
