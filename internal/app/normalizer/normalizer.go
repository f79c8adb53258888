// Package normalizer turns raw analytics payloads into display metrics, a risk
// classification, chart series, a transaction list and the narrative context.
// Everything here is pure: the same bundle always yields the same report.
package normalizer

import (
	"fmt"
	"strings"

	"wallet_report/internal/domain/entity"
	"wallet_report/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// DefaultLargeHolderThresholdUSD is the fiat balance above which a wallet is high risk.
const DefaultLargeHolderThresholdUSD = 1_000_000

// Options parameterize a normalization run.
type Options struct {
	// Network supplies the native symbol and decimals. Zero value means Ethereum.
	Network entity.NetworkDefinition
	// LargeHolderThresholdUSD is compared against balance_usd. Zero means the default.
	LargeHolderThresholdUSD float64
	// MixerVolumeThreshold and SanctionVolumeThreshold flag volumes strictly above them.
	MixerVolumeThreshold    float64
	SanctionVolumeThreshold float64
}

func (o Options) withDefaults() Options {
	if o.Network.Identifier == "" && o.Network.NativeSymbol == "" {
		o.Network = entity.NetworkDefinition{Identifier: "ethereum", NativeSymbol: "ETH", Decimals: 18, IsEVM: true}
	}
	if o.LargeHolderThresholdUSD <= 0 {
		o.LargeHolderThresholdUSD = DefaultLargeHolderThresholdUSD
	}
	return o
}

// walletFigures are the raw numbers read from the bundle.
type walletFigures struct {
	inTxn, outTxn, totalTxn       int64
	tokenCount                    int64
	inflowAddrs, outflowAddrs     int64
	ageDays                       int64
	washTradedNFTs                int64
	balanceUSD                    float64
	sanctionVol, mixerVol, illVol float64
	nativeBalance                 decimal.Decimal

	sanctioned, shark, whale, contract bool
}

// Normalize builds the normalized report for walletAddress from bundle.
// Missing or failed sources contribute zero values.
func Normalize(bundle *entity.RawWalletBundle, walletAddress string, opts Options) (*entity.NormalizedReport, error) {
	opts = opts.withDefaults()
	if opts.Network.Decimals < 0 {
		return nil, fmt.Errorf("network %s has negative decimals %d", opts.Network.Identifier, opts.Network.Decimals)
	}
	if opts.MixerVolumeThreshold < 0 || opts.SanctionVolumeThreshold < 0 {
		return nil, fmt.Errorf("risk thresholds must not be negative")
	}

	f := extract(bundle, opts.Network)
	nativeAmount := utils.ToNaturalUnit(f.nativeBalance, opts.Network.Decimals)

	metrics := entity.DisplayMetrics{
		WalletAge:             utils.FormatWalletAge(f.ageDays),
		CurrentBalanceUSD:     utils.FormatUSD(f.balanceUSD),
		CurrentBalanceNative:  utils.FormatNativeAmount(nativeAmount, opts.Network.NativeSymbol),
		TotalTransactions:     utils.FormatCount(f.totalTxn),
		UniqueTokensHeld:      utils.FormatCount(f.tokenCount),
		InflowAddresses:       utils.FormatCount(f.inflowAddrs),
		OutflowAddresses:      utils.FormatCount(f.outflowAddrs),
		SanctionVolumeMetrics: utils.FormatUSD(f.sanctionVol),
		MixerVolumeMetrics:    utils.FormatUSD(f.mixerVol),
		TotalWashTradedNFTs:   utils.FormatCount(f.washTradedNFTs),
		IsShark:               utils.YesNo(f.shark),
		IsWhale:               utils.YesNo(f.whale),
		IsContract:            utils.YesNo(f.contract),
	}

	risk := classify(f, opts)

	return &entity.NormalizedReport{
		Metrics:      metrics,
		Risk:         risk,
		Charts:       charts(f),
		Transactions: projectTransactions(bundle),
		Narrative: entity.NarrativeContext{
			WalletAddress: walletAddress,
			Summary:       summary(f, metrics, risk),
		},
	}, nil
}

func extract(bundle *entity.RawWalletBundle, network entity.NetworkDefinition) walletFigures {
	m := bundle.Record(entity.SourceMetrics)
	p := bundle.Record(entity.SourceProfile)

	f := walletFigures{
		inTxn:          utils.SafeInt(m["in_txn"], 0),
		outTxn:         utils.SafeInt(m["out_txn"], 0),
		totalTxn:       utils.SafeInt(m["total_txn"], 0),
		tokenCount:     utils.SafeInt(m["token_cnt"], 0),
		inflowAddrs:    utils.SafeInt(m["inflow_addresses"], 0),
		outflowAddrs:   utils.SafeInt(m["outflow_addresses"], 0),
		ageDays:        utils.SafeInt(m["wallet_age"], 0),
		balanceUSD:     utils.SafeFloat(m["balance_usd"], 0),
		sanctionVol:    utils.SafeFloat(m["sanction_volume"], 0),
		mixerVol:       utils.SafeFloat(m["mixer_volume"], 0),
		illVol:         utils.SafeFloat(m["illicit_volume"], 0),
		washTradedNFTs: utils.SafeInt(p["washtrade_nft_count"], 0),
		sanctioned:     utils.SafeBool(p["aml_is_sanctioned"]),
		shark:          utils.SafeBool(p["is_shark"]),
		whale:          utils.SafeBool(p["is_whale"]),
		contract:       utils.SafeBool(p["is_contract"]),
	}

	if raw, ok := m["balance"]; ok && raw != nil {
		f.nativeBalance = utils.SafeDecimal(raw, decimal.Zero)
	} else if bundle != nil {
		// Only consulted when the analytics API reported no balance at all.
		f.nativeBalance = utils.SafeDecimal(bundle.Data[entity.SourceOnchainBalance], decimal.Zero)
	}
	return f
}

// classify derives the overall risk level and its flags, in priority order.
func classify(f walletFigures, opts Options) entity.RiskAssessment {
	flags := make([]entity.RiskFlag, 0, 6)
	add := func(cond string, sev entity.RiskSeverity, msg string) {
		flags = append(flags, entity.RiskFlag{Condition: cond, Severity: sev, Message: msg})
	}

	if f.shark {
		add(entity.ConditionShark, entity.SeverityModerate, "MODERATE RISK: Wallet is flagged as a shark (high-volume trader).")
	}
	if f.mixerVol > opts.MixerVolumeThreshold {
		add(entity.ConditionMixerVolume, entity.SeverityModerate,
			fmt.Sprintf("MODERATE RISK: Interacted with mixer services (%s).", utils.FormatUSD(f.mixerVol)))
	}
	if f.sanctioned {
		add(entity.ConditionSanctioned, entity.SeverityCritical, "CRITICAL RISK: Wallet is directly sanctioned.")
	}
	if f.sanctionVol > opts.SanctionVolumeThreshold {
		add(entity.ConditionSanctionVolume, entity.SeverityHigh,
			fmt.Sprintf("HIGH RISK: Interacted with sanctioned addresses (%s).", utils.FormatUSD(f.sanctionVol)))
	}
	if f.whale {
		add(entity.ConditionWhale, entity.SeverityHigh, "HIGH RISK: Wallet is flagged as a whale (large holder).")
	}
	if f.balanceUSD > opts.LargeHolderThresholdUSD {
		add(entity.ConditionLargeBalance, entity.SeverityHigh,
			fmt.Sprintf("HIGH RISK: Balance of %s exceeds the large-holder threshold of %s.",
				utils.FormatUSD(f.balanceUSD), utils.FormatUSD(opts.LargeHolderThresholdUSD)))
	}

	level := entity.RiskLow
	for _, flag := range flags {
		if l := flag.Severity.Level(); l > level {
			level = l
		}
	}
	return entity.RiskAssessment{Level: level, Flags: flags}
}

func charts(f walletFigures) map[string]entity.ChartSeries {
	out := make(map[string]entity.ChartSeries, 2)
	if f.inTxn+f.outTxn > 0 {
		out[entity.ChartTransactionBreakdown] = entity.ChartSeries{
			Labels: []string{"Inflow Txns", "Outflow Txns"},
			Values: []float64{float64(f.inTxn), float64(f.outTxn)},
		}
	}
	if f.sanctionVol+f.mixerVol+f.illVol > 0 {
		out[entity.ChartRiskComposition] = entity.ChartSeries{
			Labels: []string{"Sanctioned", "Mixer", "Illicit"},
			Values: []float64{f.sanctionVol, f.mixerVol, f.illVol},
		}
	}
	return out
}

// projectTransactions condenses the NFT transaction list. Entries with neither a
// collection name nor a contract address are dropped.
func projectTransactions(bundle *entity.RawWalletBundle) []entity.TransactionSummary {
	out := make([]entity.TransactionSummary, 0)
	list, ok := bundle.List(entity.SourceNFTTransactions)
	if !ok {
		return out
	}

	for _, item := range list {
		tx, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, ok := utils.SafeString(tx["collection_name"])
		if !ok || name == "N/A" {
			name, ok = utils.SafeString(tx["contract_address"])
			if !ok {
				continue
			}
		}
		txType, ok := utils.SafeString(tx["transaction_type"])
		if !ok {
			txType = "Unknown"
		}
		out = append(out, entity.TransactionSummary{
			Type:           utils.Capitalize(txType),
			CollectionName: name,
			PriceETH:       tx["price_eth"],
			Timestamp:      tx["timestamp"],
		})
	}
	return out
}

func summary(f walletFigures, m entity.DisplayMetrics, risk entity.RiskAssessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Wallet Age: %s\n", m.WalletAge)
	fmt.Fprintf(&sb, "- Balance: %s (%s)\n", m.CurrentBalanceUSD, m.CurrentBalanceNative)
	fmt.Fprintf(&sb, "- Transaction Profile: %d total txns (%d in, %d out).\n", f.totalTxn, f.inTxn, f.outTxn)
	fmt.Fprintf(&sb, "- AML Status: Sanctioned = %t\n", f.sanctioned)
	fmt.Fprintf(&sb, "- Risky Volume Exposure: Sanctioned=%s, Mixer=%s\n", m.SanctionVolumeMetrics, m.MixerVolumeMetrics)
	fmt.Fprintf(&sb, "- Overall Risk: %s", risk.Level)
	for _, flag := range risk.Flags {
		fmt.Fprintf(&sb, "\n  - %s", flag.Message)
	}
	return sb.String()
}
