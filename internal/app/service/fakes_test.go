package service_test

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
)

// fakeAnalytics answers each endpoint from a canned body or error.
type fakeAnalytics struct {
	mu        sync.Mutex
	bodies    map[string]map[string]any
	errs      map[string]error
	panicOn   string
	calls     []string
	txQueries []entity.NFTTransactionQuery
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{bodies: map[string]map[string]any{}, errs: map[string]error{}}
}

func (f *fakeAnalytics) answer(endpoint string) (map[string]any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	body, err := f.bodies[endpoint], f.errs[endpoint]
	f.mu.Unlock()

	if endpoint == f.panicOn {
		panic("boom")
	}
	if err != nil {
		return nil, err
	}
	if body == nil {
		return map[string]any{"data": []any{}}, nil
	}
	return body, nil
}

func (f *fakeAnalytics) GetWalletMetrics(context.Context, string, string) (map[string]any, error) {
	return f.answer("/wallet/metrics")
}

func (f *fakeAnalytics) GetWalletProfile(context.Context, string, string) (map[string]any, error) {
	return f.answer("/nft/wallet/profile")
}

func (f *fakeAnalytics) GetNFTTransactions(_ context.Context, q entity.NFTTransactionQuery) (map[string]any, error) {
	f.mu.Lock()
	f.txQueries = append(f.txQueries, q)
	f.mu.Unlock()
	return f.answer("/nft/transactions")
}

func (f *fakeAnalytics) GetNFTWashTrade(context.Context, string, string, string) (map[string]any, error) {
	return f.answer("/nft/washtrade")
}

func (f *fakeAnalytics) GetNFTScores(context.Context, string, string, string, string) (map[string]any, error) {
	return f.answer("/nft/scores")
}

func (f *fakeAnalytics) GetNFTPriceEstimate(context.Context, string, string, string) (map[string]any, error) {
	return f.answer("/nft/liquify/price_estimate")
}

func (f *fakeAnalytics) GetNFTMetadata(context.Context, string, string, string) (map[string]any, error) {
	return f.answer("/nft/metadata")
}

func (f *fakeAnalytics) GetWalletActivity(context.Context, string, string, string) (map[string]any, error) {
	return f.answer("/wallet/activity")
}

func (f *fakeAnalytics) GetTokenPortfolio(context.Context, string, string) (map[string]any, error) {
	return f.answer("/token/portfolio")
}

// fakeNarrator records the prompt and returns a fixed completion.
type fakeNarrator struct {
	mu       sync.Mutex
	text     string
	err      error
	received [][]entity.ChatMessage
}

func (f *fakeNarrator) Complete(_ context.Context, msgs []entity.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, msgs)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeNarrator) Provider() string { return "fake" }

type fakeChainClients struct {
	balance *big.Int
	err     error
}

func (f *fakeChainClients) GetClient(def entity.NetworkDefinition) (port.BlockchainClient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return fakeChainClient{def: def, balance: f.balance}, nil
}

type fakeChainClient struct {
	def     entity.NetworkDefinition
	balance *big.Int
}

func (c fakeChainClient) GetNativeBalance(context.Context, string) (*big.Int, error) {
	if c.balance == nil {
		return nil, errors.New("rpc unavailable")
	}
	return c.balance, nil
}

func (c fakeChainClient) Definition() entity.NetworkDefinition { return c.def }

func upstreamErr(kind entity.UpstreamErrorKind, endpoint string, status int) error {
	return &entity.UpstreamError{Kind: kind, Endpoint: endpoint, StatusCode: status}
}
