package entity

// NFTInsight aggregates the per-token lookups of the analytics API.
type NFTInsight struct {
	ContractAddress string            `json:"contractAddress"`
	TokenID         string            `json:"tokenId"`
	Blockchain      string            `json:"blockchain"`
	WashTrade       map[string]any    `json:"washtrade"`
	Scores          map[string]any    `json:"scores"`
	PriceEstimate   map[string]any    `json:"priceEstimate"`
	Metadata        map[string]any    `json:"metadata"`
	IsWashTraded    bool              `json:"isWashTraded"`
	WashTradeVolume string            `json:"washTradeVolume"`
	EstimatedPrice  string            `json:"estimatedPrice"`
	SourceErrors    map[Source]string `json:"sourceErrors,omitempty"`
}
