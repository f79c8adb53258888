package port

import (
	"context"

	"wallet_report/internal/domain/entity"
)

// AnalyticsClient issues read-only lookups against the blockchain-analytics API.
// Every method returns the parsed JSON body on success and an *entity.UpstreamError otherwise.
type AnalyticsClient interface {
	GetWalletMetrics(ctx context.Context, walletAddress, blockchain string) (map[string]any, error)
	GetWalletProfile(ctx context.Context, walletAddress, blockchain string) (map[string]any, error)
	GetNFTTransactions(ctx context.Context, query entity.NFTTransactionQuery) (map[string]any, error)
	GetNFTWashTrade(ctx context.Context, contractAddress, tokenID, blockchain string) (map[string]any, error)
	GetNFTScores(ctx context.Context, contractAddress, tokenID, blockchain, sortBy string) (map[string]any, error)
	GetNFTPriceEstimate(ctx context.Context, contractAddress, tokenID, blockchain string) (map[string]any, error)
	GetNFTMetadata(ctx context.Context, contractAddress, tokenID, blockchain string) (map[string]any, error)
	GetWalletActivity(ctx context.Context, walletAddress, timeInterval, blockchain string) (map[string]any, error)
	GetTokenPortfolio(ctx context.Context, walletAddress, blockchain string) (map[string]any, error)
}
