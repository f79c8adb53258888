package service

import (
	"context"
	"fmt"
	"strings"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var nftSources = []entity.Source{
	entity.SourceNFTWashTrade,
	entity.SourceNFTScores,
	entity.SourceNFTPriceEstimate,
	entity.SourceNFTMetadata,
}

// nftInsightServiceImpl implements port.NFTInsightService.
type nftInsightServiceImpl struct {
	analytics         port.AnalyticsClient
	networks          port.NetworkDefinitionProvider
	logger            port.Logger
	defaultBlockchain string
	maxConcurrent     int
}

// NewNFTInsightService creates a new NFT insight service.
func NewNFTInsightService(analytics port.AnalyticsClient, networks port.NetworkDefinitionProvider, log port.Logger, defaultBlockchain string, maxConcurrent int) port.NFTInsightService {
	if defaultBlockchain == "" {
		defaultBlockchain = "ethereum"
	}
	return &nftInsightServiceImpl{
		analytics:         analytics,
		networks:          networks,
		logger:            log,
		defaultBlockchain: defaultBlockchain,
		maxConcurrent:     maxConcurrent,
	}
}

// GetInsight looks up wash trading, scores, price estimate and metadata for one token.
// It fails only when every lookup failed.
func (s *nftInsightServiceImpl) GetInsight(ctx context.Context, req entity.NFTInsightRequest) (*entity.NFTInsight, error) {
	contract := strings.TrimSpace(req.ContractAddress)
	tokenID := strings.TrimSpace(req.TokenID)
	if contract == "" || tokenID == "" {
		return nil, fmt.Errorf("%w: contract address and token id are required", entity.ErrInvalidNFTReference)
	}
	blockchain := strings.TrimSpace(req.Blockchain)
	if blockchain == "" {
		blockchain = s.defaultBlockchain
	}
	netDef, ok := s.networks.GetNetworkDefinitionByName(blockchain)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedBlockchain, blockchain)
	}
	if netDef.IsEVM && !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("%w: %s is not a hex address", entity.ErrInvalidNFTReference, contract)
	}
	chain := netDef.Identifier

	c := newSourceCollector(s.maxConcurrent, s.logger)
	lookups := map[entity.Source]func(context.Context) (map[string]any, error){
		entity.SourceNFTWashTrade: func(ctx context.Context) (map[string]any, error) {
			return s.analytics.GetNFTWashTrade(ctx, contract, tokenID, chain)
		},
		entity.SourceNFTScores: func(ctx context.Context) (map[string]any, error) {
			return s.analytics.GetNFTScores(ctx, contract, tokenID, chain, "")
		},
		entity.SourceNFTPriceEstimate: func(ctx context.Context) (map[string]any, error) {
			return s.analytics.GetNFTPriceEstimate(ctx, contract, tokenID, chain)
		},
		entity.SourceNFTMetadata: func(ctx context.Context) (map[string]any, error) {
			return s.analytics.GetNFTMetadata(ctx, contract, tokenID, chain)
		},
	}
	for _, src := range nftSources {
		lookup := lookups[src]
		c.fetch(ctx, src, func(ctx context.Context) (any, error) {
			body, err := lookup(ctx)
			if err != nil {
				return nil, err
			}
			return objectData(body), nil
		})
	}

	bundle, err := c.wait()
	if err != nil {
		return nil, err
	}
	if len(bundle.SourceErrors) == len(nftSources) {
		s.logger.Error("Every NFT lookup failed", "contract", contract, "token_id", tokenID)
		return nil, fmt.Errorf("%w: %w", entity.ErrNFTInsightUnavailable, c.firstError(nftSources...))
	}

	washTrade := bundle.Record(entity.SourceNFTWashTrade)
	scores := bundle.Record(entity.SourceNFTScores)
	priceEstimate := bundle.Record(entity.SourceNFTPriceEstimate)
	washVolume := utils.SafeFloat(washTrade["washtrade_volume"], 0)

	insight := &entity.NFTInsight{
		ContractAddress: contract,
		TokenID:         tokenID,
		Blockchain:      chain,
		WashTrade:       washTrade,
		Scores:          scores,
		PriceEstimate:   priceEstimate,
		Metadata:        bundle.Record(entity.SourceNFTMetadata),
		IsWashTraded:    washVolume > 0,
		WashTradeVolume: utils.FormatUSD(washVolume),
		EstimatedPrice:  estimatedPrice(priceEstimate, scores, netDef.NativeSymbol),
	}
	if len(bundle.SourceErrors) > 0 {
		insight.SourceErrors = bundle.SourceErrors
	}
	return insight, nil
}

// estimatedPrice prefers the liquidity model's estimate over the score estimate.
// Empty when neither is available.
func estimatedPrice(priceEstimate, scores map[string]any, nativeSymbol string) string {
	unit, ok := utils.SafeString(priceEstimate["price_estimate_unit"])
	if !ok {
		unit = nativeSymbol
	}
	for _, raw := range []any{priceEstimate["price_estimate"], scores["estimated_price"]} {
		if raw == nil {
			continue
		}
		price := utils.SafeDecimal(raw, decimal.NewFromInt(-1))
		if price.IsNegative() {
			continue
		}
		return utils.FormatNativeAmount(price, unit)
	}
	return ""
}
