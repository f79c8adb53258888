package normalizer_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"wallet_report/internal/app/normalizer"
	"wallet_report/internal/domain/entity"
	networkdefinition "wallet_report/internal/infrastructure/network/definition"
)

const wallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

func bundleOf(metrics, profile map[string]any, txs []any) *entity.RawWalletBundle {
	b := entity.NewRawWalletBundle()
	if metrics != nil {
		b.Data[entity.SourceMetrics] = metrics
	}
	if profile != nil {
		b.Data[entity.SourceProfile] = profile
	}
	if txs != nil {
		b.Data[entity.SourceNFTTransactions] = txs
	}
	return b
}

func mustNormalize(t *testing.T, b *entity.RawWalletBundle, opts normalizer.Options) *entity.NormalizedReport {
	t.Helper()
	r, err := normalizer.Normalize(b, wallet, opts)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return r
}

func conditions(flags []entity.RiskFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Condition)
	}
	return out
}

func TestNormalize_EmptyBundle(t *testing.T) {
	r := mustNormalize(t, entity.NewRawWalletBundle(), normalizer.Options{})

	want := entity.DisplayMetrics{
		WalletAge:             "0 days",
		CurrentBalanceUSD:     "$0.00",
		CurrentBalanceNative:  "0.0000 ETH",
		TotalTransactions:     "0",
		UniqueTokensHeld:      "0",
		InflowAddresses:       "0",
		OutflowAddresses:      "0",
		SanctionVolumeMetrics: "$0.00",
		MixerVolumeMetrics:    "$0.00",
		TotalWashTradedNFTs:   "0",
		IsShark:               "No",
		IsWhale:               "No",
		IsContract:            "No",
	}
	if r.Metrics != want {
		t.Errorf("metrics = %+v\nwant %+v", r.Metrics, want)
	}
	if r.Risk.Level != entity.RiskLow || len(r.Risk.Flags) != 0 {
		t.Errorf("risk = %+v, want Low Risk with no flags", r.Risk)
	}
	if len(r.Charts) != 0 {
		t.Errorf("charts = %v, want none", r.Charts)
	}
	if r.Transactions == nil || len(r.Transactions) != 0 {
		t.Errorf("transactions = %#v, want empty non-nil slice", r.Transactions)
	}
}

func TestNormalize_NilBundle(t *testing.T) {
	r := mustNormalize(t, nil, normalizer.Options{})
	if r.Risk.Level != entity.RiskLow {
		t.Errorf("level = %s", r.Risk.Level)
	}
}

func TestNormalize_FormattedMetrics(t *testing.T) {
	metrics := map[string]any{
		"balance":           json.Number("2500000000000000000"),
		"balance_usd":       "1234.5",
		"wallet_age":        json.Number("400"),
		"total_txn":         json.Number("12345"),
		"in_txn":            7.9,
		"out_txn":           "3",
		"token_cnt":         nil,
		"inflow_addresses":  "not a number",
		"outflow_addresses": 1500,
	}
	profile := map[string]any{"is_contract": true, "washtrade_nft_count": "2"}

	r := mustNormalize(t, bundleOf(metrics, profile, nil), normalizer.Options{})

	checks := map[string][2]string{
		"walletAge":         {r.Metrics.WalletAge, "1 years, 1 months"},
		"currentBalanceEth": {r.Metrics.CurrentBalanceNative, "2.5000 ETH"},
		"currentBalanceUsd": {r.Metrics.CurrentBalanceUSD, "$1,234.50"},
		"totalTransactions": {r.Metrics.TotalTransactions, "12,345"},
		"uniqueTokensHeld":  {r.Metrics.UniqueTokensHeld, "0"},
		"inflowAddresses":   {r.Metrics.InflowAddresses, "0"},
		"outflowAddresses":  {r.Metrics.OutflowAddresses, "1,500"},
		"totalWashTraded":   {r.Metrics.TotalWashTradedNFTs, "2"},
		"isContract":        {r.Metrics.IsContract, "Yes"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}

	chart, ok := r.Charts[entity.ChartTransactionBreakdown]
	if !ok {
		t.Fatal("transaction breakdown chart missing")
	}
	if !reflect.DeepEqual(chart.Values, []float64{7, 3}) {
		t.Errorf("breakdown values = %v, want truncated [7 3]", chart.Values)
	}
	if !reflect.DeepEqual(chart.Labels, []string{"Inflow Txns", "Outflow Txns"}) {
		t.Errorf("breakdown labels = %v", chart.Labels)
	}
}

func TestNormalize_NativeBalanceUsesNetworkDecimals(t *testing.T) {
	b := bundleOf(map[string]any{"balance": "1500000000"}, nil, nil)

	r := mustNormalize(t, b, normalizer.Options{Network: networkdefinition.Solana})

	if r.Metrics.CurrentBalanceNative != "1.5000 SOL" {
		t.Errorf("native = %q, want 1.5000 SOL", r.Metrics.CurrentBalanceNative)
	}
}

func TestNormalize_OnchainBalanceFallback(t *testing.T) {
	b := bundleOf(map[string]any{"balance_usd": 10}, nil, nil)
	b.Data[entity.SourceOnchainBalance] = "1000000000000000000"

	r := mustNormalize(t, b, normalizer.Options{})
	if r.Metrics.CurrentBalanceNative != "1.0000 ETH" {
		t.Errorf("native = %q, want on-chain 1.0000 ETH", r.Metrics.CurrentBalanceNative)
	}

	b.Data[entity.SourceMetrics] = map[string]any{"balance": "0"}
	r = mustNormalize(t, b, normalizer.Options{})
	if r.Metrics.CurrentBalanceNative != "0.0000 ETH" {
		t.Errorf("native = %q, reported metrics balance must win", r.Metrics.CurrentBalanceNative)
	}
}

func TestNormalize_SanctionedScenario(t *testing.T) {
	b := bundleOf(
		map[string]any{"sanction_volume": 500.0},
		map[string]any{"aml_is_sanctioned": true, "is_whale": false},
		nil,
	)

	r := mustNormalize(t, b, normalizer.Options{})

	if r.Risk.Level != entity.RiskHigh {
		t.Fatalf("level = %s, want High Risk", r.Risk.Level)
	}
	if got := conditions(r.Risk.Flags); !reflect.DeepEqual(got, []string{entity.ConditionSanctioned, entity.ConditionSanctionVolume}) {
		t.Fatalf("flags = %v", got)
	}
	if r.Risk.Flags[0].Severity != entity.SeverityCritical || !strings.Contains(r.Risk.Flags[0].Message, "sanctioned") {
		t.Errorf("first flag = %+v", r.Risk.Flags[0])
	}
	if !strings.Contains(r.Risk.Flags[1].Message, "$500.00") {
		t.Errorf("second flag = %q, want the $500.00 volume", r.Risk.Flags[1].Message)
	}

	chart := r.Charts[entity.ChartRiskComposition]
	if !reflect.DeepEqual(chart.Values, []float64{500, 0, 0}) {
		t.Errorf("risk composition = %+v", chart)
	}
	if _, ok := r.Charts[entity.ChartTransactionBreakdown]; ok {
		t.Error("transaction breakdown must be absent when in+out is zero")
	}
}

func TestNormalize_RiskLevels(t *testing.T) {
	tests := []struct {
		name      string
		metrics   map[string]any
		profile   map[string]any
		opts      normalizer.Options
		wantLevel entity.RiskLevel
		wantConds []string
	}{
		{
			name:      "shark only",
			profile:   map[string]any{"is_shark": true},
			wantLevel: entity.RiskModerate,
			wantConds: []string{entity.ConditionShark},
		},
		{
			name:      "mixer exposure",
			metrics:   map[string]any{"mixer_volume": "12.5"},
			wantLevel: entity.RiskModerate,
			wantConds: []string{entity.ConditionMixerVolume},
		},
		{
			name:      "mixer below configured threshold",
			metrics:   map[string]any{"mixer_volume": 12.5},
			opts:      normalizer.Options{MixerVolumeThreshold: 100},
			wantLevel: entity.RiskLow,
			wantConds: []string{},
		},
		{
			name:      "whale",
			profile:   map[string]any{"is_whale": "true"},
			wantLevel: entity.RiskHigh,
			wantConds: []string{entity.ConditionWhale},
		},
		{
			name:      "balance exactly at threshold",
			metrics:   map[string]any{"balance_usd": 1_000_000},
			wantLevel: entity.RiskLow,
			wantConds: []string{},
		},
		{
			name:      "balance above configured threshold",
			metrics:   map[string]any{"balance_usd": 600_000},
			opts:      normalizer.Options{LargeHolderThresholdUSD: 500_000},
			wantLevel: entity.RiskHigh,
			wantConds: []string{entity.ConditionLargeBalance},
		},
		{
			name:      "every condition in priority order",
			metrics:   map[string]any{"mixer_volume": 1, "sanction_volume": 2, "balance_usd": 2_000_000},
			profile:   map[string]any{"is_shark": true, "is_whale": true, "aml_is_sanctioned": true},
			wantLevel: entity.RiskHigh,
			wantConds: []string{
				entity.ConditionShark, entity.ConditionMixerVolume, entity.ConditionSanctioned,
				entity.ConditionSanctionVolume, entity.ConditionWhale, entity.ConditionLargeBalance,
			},
		},
		{
			name:      "non-bool flag values are false",
			profile:   map[string]any{"is_shark": 1, "aml_is_sanctioned": "yes"},
			wantLevel: entity.RiskLow,
			wantConds: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNormalize(t, bundleOf(tt.metrics, tt.profile, nil), tt.opts)
			if r.Risk.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", r.Risk.Level, tt.wantLevel)
			}
			if got := conditions(r.Risk.Flags); !reflect.DeepEqual(got, tt.wantConds) {
				t.Errorf("flags = %v, want %v", got, tt.wantConds)
			}
		})
	}
}

func TestNormalize_RiskIsMonotonic(t *testing.T) {
	moderate := map[string]any{"is_shark": true}
	r := mustNormalize(t, bundleOf(nil, moderate, nil), normalizer.Options{})
	if r.Risk.Level != entity.RiskModerate {
		t.Fatalf("baseline level = %s", r.Risk.Level)
	}

	escalated := map[string]any{"is_shark": true, "aml_is_sanctioned": true}
	r = mustNormalize(t, bundleOf(nil, escalated, nil), normalizer.Options{})
	if r.Risk.Level != entity.RiskHigh {
		t.Errorf("level after adding sanctioned = %s, want High Risk", r.Risk.Level)
	}
	if len(r.Risk.Flags) == 0 {
		t.Error("flags must not be empty above Low Risk")
	}
}

func TestNormalize_Transactions(t *testing.T) {
	txs := []any{
		map[string]any{"transaction_type": "SALE", "collection_name": "Bored Apes", "price_eth": json.Number("12.5"), "timestamp": "2024-05-01T10:00:00Z"},
		map[string]any{"transaction_type": "mint", "collection_name": "N/A", "contract_address": "0xabc", "timestamp": json.Number("1714557600")},
		map[string]any{"collection_name": "", "contract_address": "0xdef"},
		map[string]any{"transaction_type": "transfer"},
		"not an object",
	}

	r := mustNormalize(t, bundleOf(nil, nil, txs), normalizer.Options{})

	want := []entity.TransactionSummary{
		{Type: "Sale", CollectionName: "Bored Apes", PriceETH: json.Number("12.5"), Timestamp: "2024-05-01T10:00:00Z"},
		{Type: "Mint", CollectionName: "0xabc", Timestamp: json.Number("1714557600")},
		{Type: "Unknown", CollectionName: "0xdef"},
	}
	if !reflect.DeepEqual(r.Transactions, want) {
		t.Errorf("transactions = %+v\nwant %+v", r.Transactions, want)
	}
}

func TestNormalize_TransactionsNotAList(t *testing.T) {
	b := entity.NewRawWalletBundle()
	b.Data[entity.SourceNFTTransactions] = map[string]any{"collection_name": "x"}

	r := mustNormalize(t, b, normalizer.Options{})
	if len(r.Transactions) != 0 {
		t.Errorf("transactions = %+v, want none for object-shaped source", r.Transactions)
	}
}

func TestNormalize_NarrativeContext(t *testing.T) {
	b := bundleOf(
		map[string]any{"wallet_age": 45, "balance_usd": 2500.5, "balance": "2500000000000000000",
			"total_txn": 10, "in_txn": 6, "out_txn": 4, "sanction_volume": 500, "mixer_volume": 25},
		map[string]any{"aml_is_sanctioned": true},
		nil,
	)

	r := mustNormalize(t, b, normalizer.Options{})

	if r.Narrative.WalletAddress != wallet {
		t.Errorf("wallet = %q", r.Narrative.WalletAddress)
	}
	for _, want := range []string{
		"1 months, 15 days", "$2,500.50", "2.5000 ETH", "10 total txns (6 in, 4 out)",
		"Sanctioned = true", "Sanctioned=$500.00", "Mixer=$25.00", "High Risk",
	} {
		if !strings.Contains(r.Narrative.Summary, want) {
			t.Errorf("summary missing %q:\n%s", want, r.Narrative.Summary)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	b := bundleOf(
		map[string]any{"in_txn": 3, "out_txn": 1, "mixer_volume": 5, "balance": "1"},
		map[string]any{"is_shark": true},
		[]any{map[string]any{"transaction_type": "sale", "collection_name": "X"}},
	)

	first, err := json.Marshal(mustNormalize(t, b, normalizer.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(mustNormalize(t, b, normalizer.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("normalization is not deterministic:\n%s\n%s", first, second)
	}
}

func TestNormalize_InvalidOptions(t *testing.T) {
	if _, err := normalizer.Normalize(nil, wallet, normalizer.Options{MixerVolumeThreshold: -1}); err == nil {
		t.Error("expected error for negative threshold")
	}
}
