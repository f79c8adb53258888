package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"wallet_report/internal/app/normalizer"
	"wallet_report/internal/app/port"
	"wallet_report/internal/app/prompt"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ReportOptions tune report generation.
type ReportOptions struct {
	DefaultBlockchain     string
	TransactionLimit      int
	TransactionTimeRange  string
	MaxConcurrentRequests int
	// OnchainBalance enables reading the native balance from an RPC node as a fallback.
	OnchainBalance bool
	Risk           normalizer.Options
}

// reportServiceImpl implements port.ReportService.
type reportServiceImpl struct {
	analytics    port.AnalyticsClient
	narrator     port.NarrativeClient
	networks     port.NetworkDefinitionProvider
	chainClients port.BlockchainClientProvider
	logger       port.Logger
	opts         ReportOptions
	now          func() time.Time
}

// NewReportService creates a new report service. chainClients may be nil.
func NewReportService(
	analytics port.AnalyticsClient,
	narrator port.NarrativeClient,
	networks port.NetworkDefinitionProvider,
	chainClients port.BlockchainClientProvider,
	log port.Logger,
	opts ReportOptions,
) port.ReportService {
	if opts.DefaultBlockchain == "" {
		opts.DefaultBlockchain = "ethereum"
	}
	if opts.TransactionLimit <= 0 {
		opts.TransactionLimit = 10
	}
	if opts.TransactionTimeRange == "" {
		opts.TransactionTimeRange = "30d"
	}
	return &reportServiceImpl{
		analytics:    analytics,
		narrator:     narrator,
		networks:     networks,
		chainClients: chainClients,
		logger:       log,
		opts:         opts,
		now:          time.Now,
	}
}

// GenerateReport fetches the wallet's analytics, normalizes them and asks the
// narrative generator for the Markdown report.
func (s *reportServiceImpl) GenerateReport(ctx context.Context, req entity.ReportRequest) (report *entity.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Report generation panicked", "wallet", req.WalletAddress, "panic", r, "stack", string(debug.Stack()))
			report = nil
			err = fmt.Errorf("%w: %v", entity.ErrReportFailed, r)
		}
	}()

	wallet := strings.TrimSpace(req.WalletAddress)
	netDef, err := s.resolve(wallet, req.Blockchain)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generating wallet report", "wallet", wallet, "blockchain", netDef.Identifier)

	bundle, err := s.collect(ctx, wallet, netDef)
	if err != nil {
		return nil, err
	}

	riskOpts := s.opts.Risk
	riskOpts.Network = netDef
	normalized, err := normalizer.Normalize(bundle, wallet, riskOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrReportFailed, err)
	}

	messages, err := prompt.Build(normalized.Narrative, normalized.Risk.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrReportFailed, err)
	}

	markdown, err := s.narrator.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("Narrative generation failed", "wallet", wallet, "provider", s.narrator.Provider(), "error", err)
		return nil, fmt.Errorf("%w: %w", entity.ErrNarrativeFailed, err)
	}

	metrics.Reports.WithLabelValues(normalized.Risk.Level.String()).Inc()
	s.logger.Info("Wallet report generated",
		"wallet", wallet,
		"risk_level", normalized.Risk.Level.String(),
		"degraded_sources", len(bundle.SourceErrors))

	report = &entity.Report{
		ReportID:         uuid.NewString(),
		WalletAddress:    wallet,
		Blockchain:       netDef.Identifier,
		GeneratedAt:      s.now().UTC(),
		Markdown:         markdown,
		OverallRiskLevel: normalized.Risk.Level,
		RiskFlags:        normalized.Risk.Flags,
		FormattedMetrics: normalized.Metrics,
		GraphData:        normalized.Charts,
		Transactions:     normalized.Transactions,
	}
	if len(bundle.SourceErrors) > 0 {
		report.SourceErrors = bundle.SourceErrors
	}
	return report, nil
}

func (s *reportServiceImpl) resolve(wallet, blockchain string) (entity.NetworkDefinition, error) {
	if wallet == "" {
		return entity.NetworkDefinition{}, fmt.Errorf("%w: address is empty", entity.ErrInvalidWalletAddress)
	}
	if blockchain = strings.TrimSpace(blockchain); blockchain == "" {
		blockchain = s.opts.DefaultBlockchain
	}
	netDef, ok := s.networks.GetNetworkDefinitionByName(blockchain)
	if !ok {
		return entity.NetworkDefinition{}, fmt.Errorf("%w: %s", entity.ErrUnsupportedBlockchain, blockchain)
	}
	if netDef.IsEVM && !common.IsHexAddress(wallet) {
		return entity.NetworkDefinition{}, fmt.Errorf("%w: %s is not a hex address", entity.ErrInvalidWalletAddress, wallet)
	}
	return netDef, nil
}

func (s *reportServiceImpl) collect(ctx context.Context, wallet string, netDef entity.NetworkDefinition) (*entity.RawWalletBundle, error) {
	c := newSourceCollector(s.opts.MaxConcurrentRequests, s.logger)
	chain := netDef.Identifier

	c.fetch(ctx, entity.SourceMetrics, func(ctx context.Context) (any, error) {
		body, err := s.analytics.GetWalletMetrics(ctx, wallet, chain)
		if err != nil {
			return nil, err
		}
		return objectData(body), nil
	})
	c.fetch(ctx, entity.SourceProfile, func(ctx context.Context) (any, error) {
		body, err := s.analytics.GetWalletProfile(ctx, wallet, chain)
		if err != nil {
			return nil, err
		}
		return objectData(body), nil
	})
	c.fetch(ctx, entity.SourceNFTTransactions, func(ctx context.Context) (any, error) {
		body, err := s.analytics.GetNFTTransactions(ctx, entity.NFTTransactionQuery{
			WalletAddress: wallet,
			Blockchain:    chain,
			TimeRange:     s.opts.TransactionTimeRange,
			SortBy:        "timestamp",
			SortOrder:     "desc",
			Limit:         s.opts.TransactionLimit,
		})
		if err != nil {
			return nil, err
		}
		return listData(body), nil
	})
	if s.opts.OnchainBalance && s.chainClients != nil && netDef.IsEVM {
		c.fetch(ctx, entity.SourceOnchainBalance, func(ctx context.Context) (any, error) {
			client, err := s.chainClients.GetClient(netDef)
			if err != nil {
				return nil, err
			}
			balance, err := client.GetNativeBalance(ctx, wallet)
			if err != nil {
				return nil, err
			}
			return balance.String(), nil
		})
	}

	return c.wait()
}
