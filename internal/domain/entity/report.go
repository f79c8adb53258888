package entity

import "time"

// RiskLevel is the overall classification of a wallet. Levels are ordered.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
)

// String returns the display label used in reports.
func (l RiskLevel) String() string {
	switch l {
	case RiskModerate:
		return "Moderate Risk"
	case RiskHigh:
		return "High Risk"
	default:
		return "Low Risk"
	}
}

// MarshalText renders the level as its display label.
func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// RiskSeverity tags an individual risk flag.
type RiskSeverity string

const (
	SeverityModerate RiskSeverity = "MODERATE"
	SeverityHigh     RiskSeverity = "HIGH"
	SeverityCritical RiskSeverity = "CRITICAL"
)

// Level maps a flag severity onto the overall risk scale.
func (s RiskSeverity) Level() RiskLevel {
	switch s {
	case SeverityCritical, SeverityHigh:
		return RiskHigh
	case SeverityModerate:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Risk flag conditions.
const (
	ConditionShark          = "is_shark"
	ConditionMixerVolume    = "mixer_volume"
	ConditionSanctioned     = "aml_is_sanctioned"
	ConditionSanctionVolume = "sanction_volume"
	ConditionWhale          = "is_whale"
	ConditionLargeBalance   = "balance_usd"
)

// RiskFlag is one triggered risk condition with its explanation.
type RiskFlag struct {
	Condition string       `json:"condition"`
	Severity  RiskSeverity `json:"severity"`
	Message   string       `json:"message"`
}

// RiskAssessment is the overall level plus the flags that produced it, in priority order.
type RiskAssessment struct {
	Level RiskLevel  `json:"level"`
	Flags []RiskFlag `json:"flags"`
}

// DisplayMetrics are the human-formatted figures shown in a report.
type DisplayMetrics struct {
	WalletAge             string `json:"walletAge"`
	CurrentBalanceUSD     string `json:"currentBalanceUsd"`
	CurrentBalanceNative  string `json:"currentBalanceEth"`
	TotalTransactions     string `json:"totalTransactions"`
	UniqueTokensHeld      string `json:"uniqueTokensHeld"`
	InflowAddresses       string `json:"inflowAddresses"`
	OutflowAddresses      string `json:"outflowAddresses"`
	SanctionVolumeMetrics string `json:"sanctionVolumeMetrics"`
	MixerVolumeMetrics    string `json:"mixerVolumeMetrics"`
	TotalWashTradedNFTs   string `json:"totalWashTradedNfts"`
	IsShark               string `json:"isShark"`
	IsWhale               string `json:"isWhale"`
	IsContract            string `json:"isContract"`
}

// Chart keys in NormalizedReport.Charts.
const (
	ChartTransactionBreakdown = "transaction_breakdown_chart"
	ChartRiskComposition      = "risk_composition_chart"
)

// ChartSeries is a labelled series for a simple chart.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// TransactionSummary is the condensed view of one NFT transaction.
type TransactionSummary struct {
	Type           string `json:"type"`
	CollectionName string `json:"collection_name"`
	PriceETH       any    `json:"price_eth"`
	Timestamp      any    `json:"timestamp"`
}

// NarrativeContext is the text handed to the narrative generator.
type NarrativeContext struct {
	WalletAddress string `json:"wallet_address"`
	Summary       string `json:"context_summary"`
}

// NormalizedReport is the deterministic output of the data normalizer.
type NormalizedReport struct {
	Metrics      DisplayMetrics         `json:"formattedMetrics"`
	Risk         RiskAssessment         `json:"risk"`
	Charts       map[string]ChartSeries `json:"graph_data"`
	Transactions []TransactionSummary   `json:"transactions"`
	Narrative    NarrativeContext       `json:"narrative"`
}

// Report is the payload returned to callers of the report endpoint.
type Report struct {
	ReportID         string                 `json:"reportId"`
	WalletAddress    string                 `json:"walletAddress"`
	Blockchain       string                 `json:"blockchain"`
	GeneratedAt      time.Time              `json:"generatedAt"`
	Markdown         string                 `json:"report"`
	OverallRiskLevel RiskLevel              `json:"overallRiskLevel"`
	RiskFlags        []RiskFlag             `json:"riskFlags"`
	FormattedMetrics DisplayMetrics         `json:"formattedMetrics"`
	GraphData        map[string]ChartSeries `json:"graph_data"`
	Transactions     []TransactionSummary   `json:"transactions"`
	SourceErrors     map[Source]string      `json:"sourceErrors,omitempty"`
}
