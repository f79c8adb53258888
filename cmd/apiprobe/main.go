// Command apiprobe calls a single bitsCrunch endpoint and prints the raw response.
// It is a debugging aid for checking upstream payload shapes against the normalizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"wallet_report/internal/app/port"
	"wallet_report/internal/client"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/infrastructure/configloader"
	networkdefinition "wallet_report/internal/infrastructure/network/definition"
	"wallet_report/internal/infrastructure/walletloader"
	"wallet_report/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type probeFlags struct {
	configPath  string
	endpoint    string
	wallet      string
	walletsFile string
	chain       string
	contract    string
	tokenID     string
	interval    string
	limit       int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred log flushing happens before exit.
func run(args []string) int {
	var f probeFlags
	fs := flag.NewFlagSet("apiprobe", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "config/config.yml", "path to the YAML configuration file")
	fs.StringVar(&f.endpoint, "endpoint", "metrics", "metrics|profile|transactions|activity|portfolio|washtrade|scores|price|metadata")
	fs.StringVar(&f.wallet, "wallet", "", "wallet address")
	fs.StringVar(&f.walletsFile, "wallets", "", "file with one wallet address per line (wallet endpoints only)")
	fs.StringVar(&f.chain, "chain", "", "blockchain identifier (defaults to the configured chain)")
	fs.StringVar(&f.contract, "contract", "", "NFT contract address")
	fs.StringVar(&f.tokenID, "token", "", "NFT token id")
	fs.StringVar(&f.interval, "interval", "30d", "time range for transactions and activity")
	fs.IntVar(&f.limit, "limit", 10, "transaction page size")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := configloader.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger, cfg.Logging.Level)

	if f.chain == "" {
		f.chain = cfg.BitsCrunch.DefaultBlockchain
	}
	networks := networkdefinition.NewNetworkDefinitionProvider(logger.NewSlogAdapter(), cfg.Networks)
	netDef, ok := networks.GetNetworkDefinitionByName(f.chain)
	if !ok {
		logger.Error("Unsupported blockchain", "chain", f.chain)
		return 1
	}

	analytics := client.NewBitsCrunchClient(client.BitsCrunchOptions{
		BaseURL:           cfg.BitsCrunch.BaseURL,
		APIKey:            cfg.BitsCrunch.APIKey,
		Timeout:           time.Duration(cfg.BitsCrunch.RequestTimeoutMillis) * time.Millisecond,
		MinInterval:       time.Duration(cfg.BitsCrunch.MinRequestIntervalMillis) * time.Millisecond,
		DefaultBlockchain: cfg.BitsCrunch.DefaultBlockchain,
	}, zapLogger)

	wallets := []string{f.wallet}
	if f.walletsFile != "" {
		wallets, err = walletloader.NewWalletFileLoader(f.walletsFile, logger.NewSlogAdapter()).GetWallets(netDef)
		if err != nil {
			logger.Error("Failed to load wallets", "error", err)
			return 1
		}
	}

	ctx := context.Background()
	exit := 0
	for _, wallet := range wallets {
		f.wallet = wallet
		body, err := probe(ctx, analytics, f, netDef.Identifier)
		if err != nil {
			logger.Error("Probe failed", "endpoint", f.endpoint, "wallet", wallet, "error", err)
			exit = 1
			continue
		}
		out, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			logger.Error("Failed to encode response", "error", err)
			exit = 1
			continue
		}
		fmt.Println(string(out))
	}
	return exit
}

func probe(ctx context.Context, c port.AnalyticsClient, f probeFlags, chain string) (map[string]any, error) {
	needWallet := func() error {
		if strings.TrimSpace(f.wallet) == "" {
			return fmt.Errorf("endpoint %q requires -wallet or -wallets", f.endpoint)
		}
		return nil
	}
	needNFT := func() error {
		if f.contract == "" || f.tokenID == "" {
			return fmt.Errorf("endpoint %q requires -contract and -token", f.endpoint)
		}
		return nil
	}

	switch f.endpoint {
	case "metrics", "profile", "transactions", "activity", "portfolio":
		if err := needWallet(); err != nil {
			return nil, err
		}
	case "washtrade", "scores", "price", "metadata":
		if err := needNFT(); err != nil {
			return nil, err
		}
	}

	switch f.endpoint {
	case "metrics":
		return c.GetWalletMetrics(ctx, f.wallet, chain)
	case "profile":
		return c.GetWalletProfile(ctx, f.wallet, chain)
	case "transactions":
		return c.GetNFTTransactions(ctx, entity.NFTTransactionQuery{
			WalletAddress: f.wallet,
			Blockchain:    chain,
			TimeRange:     f.interval,
			Limit:         f.limit,
		})
	case "activity":
		return c.GetWalletActivity(ctx, f.wallet, f.interval, chain)
	case "portfolio":
		return c.GetTokenPortfolio(ctx, f.wallet, chain)
	case "washtrade":
		return c.GetNFTWashTrade(ctx, f.contract, f.tokenID, chain)
	case "scores":
		return c.GetNFTScores(ctx, f.contract, f.tokenID, chain, "")
	case "price":
		return c.GetNFTPriceEstimate(ctx, f.contract, f.tokenID, chain)
	case "metadata":
		return c.GetNFTMetadata(ctx, f.contract, f.tokenID, chain)
	default:
		return nil, fmt.Errorf("unknown endpoint %q", f.endpoint)
	}
}
