package entity

// ReportRequest asks for a report on one wallet. Blockchain defaults to the configured chain.
type ReportRequest struct {
	WalletAddress string `json:"address"`
	Blockchain    string `json:"blockchain,omitempty"`
}

// NFTInsightRequest identifies one token of an NFT collection.
type NFTInsightRequest struct {
	ContractAddress string
	TokenID         string
	Blockchain      string
}

// NFTTransactionQuery selects NFT transactions either by wallet or by contract and token id.
type NFTTransactionQuery struct {
	WalletAddress   string
	ContractAddress string
	TokenID         string
	Blockchain      string
	TimeRange       string
	SortBy          string
	SortOrder       string
	Limit           int
}

// ChatMessage is one message sent to the narrative generator.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
