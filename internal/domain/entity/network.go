package entity

// NetworkDefinition describes a chain the analytics API can be queried for.
// Decimals is the exponent of the native asset's smallest indivisible unit.
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"` // blockchain name used by the analytics API, e.g. "ethereum"
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32    `json:"decimals" yaml:"decimals"`
	IsEVM            bool     `json:"isEvm" yaml:"isEvm"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl,omitempty" yaml:"primaryRpcUrl,omitempty"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls,omitempty" yaml:"fallbackRpcUrls,omitempty"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}
