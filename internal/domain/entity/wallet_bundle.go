package entity

// Source names one upstream lookup contributing to a wallet report.
type Source string

const (
	SourceMetrics          Source = "metrics"
	SourceProfile          Source = "profile"
	SourceNFTTransactions  Source = "wallet_nft_transactions"
	SourceOnchainBalance   Source = "onchain_balance"
	SourceNFTWashTrade     Source = "washtrade"
	SourceNFTScores        Source = "scores"
	SourceNFTPriceEstimate Source = "price_estimate"
	SourceNFTMetadata      Source = "metadata"
)

// RawWalletBundle holds the unwrapped upstream payloads for one report request.
// Object sources hold map[string]any, list sources hold []any. A source that
// failed to load is absent from Data and has an entry in SourceErrors.
type RawWalletBundle struct {
	Data         map[Source]any
	SourceErrors map[Source]string
}

// NewRawWalletBundle returns an empty bundle ready to be filled.
func NewRawWalletBundle() *RawWalletBundle {
	return &RawWalletBundle{
		Data:         make(map[Source]any),
		SourceErrors: make(map[Source]string),
	}
}

// Record returns the object payload for src, or an empty record when the
// source is missing or not object-shaped.
func (b *RawWalletBundle) Record(src Source) map[string]any {
	if b == nil || b.Data == nil {
		return map[string]any{}
	}
	if rec, ok := b.Data[src].(map[string]any); ok && rec != nil {
		return rec
	}
	return map[string]any{}
}

// List returns the list payload for src and whether it was list-shaped.
func (b *RawWalletBundle) List(src Source) ([]any, bool) {
	if b == nil || b.Data == nil {
		return nil, false
	}
	list, ok := b.Data[src].([]any)
	return list, ok
}
