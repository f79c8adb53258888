package client

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// numberJSON keeps upstream numbers as json.Number so wei-sized integers survive decoding.
var numberJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

const (
	DefaultBitsCrunchBaseURL = "https://api.unleashnfts.com/api/v2"
	defaultBlockchain        = "ethereum"
	defaultRequestTimeout    = 60 * time.Second
)

// BitsCrunchOptions configures the analytics API client.
type BitsCrunchOptions struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MinInterval       time.Duration // minimum spacing between requests; 0 disables pacing
	DefaultBlockchain string
	HTTPClient        *fasthttp.Client // optional; tests inject an in-memory dialer
}

// bitsCrunchClientImpl implements port.AnalyticsClient against the UnleashNFTs v2 API.
type bitsCrunchClientImpl struct {
	client            *fasthttp.Client
	baseURL           string
	apiKey            string
	timeout           time.Duration
	defaultBlockchain string
	limiter           *rate.Limiter
	logger            *zap.Logger
}

// NewBitsCrunchClient creates a new analytics API client.
func NewBitsCrunchClient(opts BitsCrunchOptions, logger *zap.Logger) port.AnalyticsClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBitsCrunchBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRequestTimeout
	}
	if opts.DefaultBlockchain == "" {
		opts.DefaultBlockchain = defaultBlockchain
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{Name: "wallet_report"}
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &bitsCrunchClientImpl{
		client:            httpClient,
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		apiKey:            opts.APIKey,
		timeout:           opts.Timeout,
		defaultBlockchain: opts.DefaultBlockchain,
		limiter:           rate.NewLimiter(limit, 1),
		logger:            logger.Named("BitsCrunchClient"),
	}
}

func (c *bitsCrunchClientImpl) GetWalletMetrics(ctx context.Context, walletAddress, blockchain string) (map[string]any, error) {
	return c.get(ctx, "/wallet/metrics", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(blockchain))
		q.Add("wallet", walletAddress)
	})
}

func (c *bitsCrunchClientImpl) GetWalletProfile(ctx context.Context, walletAddress, blockchain string) (map[string]any, error) {
	return c.get(ctx, "/nft/wallet/profile", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(blockchain))
		q.Add("wallet", walletAddress)
	})
}

// GetNFTTransactions lists NFT transactions for a wallet, or for one token when both
// contract address and token id are set. Zero-valued query fields take the API defaults
// used by reports: newest first, last 30 days, 10 rows.
func (c *bitsCrunchClientImpl) GetNFTTransactions(ctx context.Context, query entity.NFTTransactionQuery) (map[string]any, error) {
	if query.SortBy == "" {
		query.SortBy = "timestamp"
	}
	if query.SortOrder == "" {
		query.SortOrder = "desc"
	}
	if query.TimeRange == "" {
		query.TimeRange = "30d"
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	return c.get(ctx, "/nft/transactions", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(query.Blockchain))
		q.Add("sort_by", query.SortBy)
		q.Add("sort_order", query.SortOrder)
		q.Add("time_range", query.TimeRange)
		q.Add("limit", strconv.Itoa(query.Limit))
		if query.WalletAddress != "" {
			q.Add("wallet_address", query.WalletAddress)
		}
		if query.ContractAddress != "" && query.TokenID != "" {
			q.Add("contract_address", query.ContractAddress)
			q.Add("token_id", query.TokenID)
		}
	})
}

func (c *bitsCrunchClientImpl) GetNFTWashTrade(ctx context.Context, contractAddress, tokenID, blockchain string) (map[string]any, error) {
	return c.get(ctx, "/nft/washtrade", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(blockchain))
		q.Add("contract_address", contractAddress)
		q.Add("token_id", tokenID)
		q.Add("sort_by", "washtrade_volume")
	})
}

func (c *bitsCrunchClientImpl) GetNFTScores(ctx context.Context, contractAddress, tokenID, blockchain, sortBy string) (map[string]any, error) {
	if sortBy == "" {
		sortBy = "estimated_price"
	}
	return c.get(ctx, "/nft/scores", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(blockchain))
		q.Add("contract_address", contractAddress)
		q.Add("token_id", tokenID)
		q.Add("sort_by", sortBy)
	})
}

func (c *bitsCrunchClientImpl) GetNFTPriceEstimate(ctx context.Context, contractAddress, tokenID, blockchain string) (map[string]any, error) {
	return c.get(ctx, "/nft/liquify/price_estimate", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(blockchain))
		q.Add("contract_address", contractAddress)
		q.Add("token_id", tokenID)
	})
}

func (c *bitsCrunchClientImpl) GetNFTMetadata(ctx context.Context, contractAddress, tokenID, blockchain string) (map[string]any, error) {
	return c.get(ctx, "/nft/metadata", func(q *fasthttp.Args) {
		q.Add("blockchain", c.chain(blockchain))
		q.Add("contract_address", contractAddress)
		q.Add("token_id", tokenID)
	})
}

func (c *bitsCrunchClientImpl) GetWalletActivity(ctx context.Context, walletAddress, timeInterval, blockchain string) (map[string]any, error) {
	if timeInterval == "" {
		timeInterval = "1d"
	}
	return c.get(ctx, "/wallet/activity", func(q *fasthttp.Args) {
		q.Add("wallet", walletAddress)
		q.Add("time_interval", timeInterval)
		q.Add("blockchain", c.chain(blockchain))
	})
}

func (c *bitsCrunchClientImpl) GetTokenPortfolio(ctx context.Context, walletAddress, blockchain string) (map[string]any, error) {
	return c.get(ctx, "/token/portfolio", func(q *fasthttp.Args) {
		q.Add("wallet", walletAddress)
		q.Add("blockchain", c.chain(blockchain))
	})
}

func (c *bitsCrunchClientImpl) chain(blockchain string) string {
	if blockchain == "" {
		return c.defaultBlockchain
	}
	return blockchain
}

// get performs one GET request and decodes the JSON object body.
// Every failure is returned as *entity.UpstreamError.
func (c *bitsCrunchClientImpl) get(ctx context.Context, endpoint string, fillQuery func(*fasthttp.Args)) (result map[string]any, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		var upErr *entity.UpstreamError
		if errors.As(err, &upErr) {
			outcome = string(upErr.Kind)
		}
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.contextError(ctx, endpoint, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + endpoint)
	fillQuery(req.URI().QueryArgs())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	c.logger.Debug("Calling analytics API", zap.String("endpoint", endpoint), zap.ByteString("query", req.URI().QueryString()))

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
			c.logger.Warn("Analytics API request timed out", zap.String("endpoint", endpoint), zap.Error(err))
			return nil, &entity.UpstreamError{Kind: entity.UpstreamTimeout, Endpoint: endpoint, Err: err}
		}
		c.logger.Error("Failed to execute request to analytics API", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &entity.UpstreamError{Kind: entity.UpstreamTransport, Endpoint: endpoint, Err: err}
	}

	rawBody := resp.Body()
	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		c.logger.Error("Analytics API request failed",
			zap.String("endpoint", endpoint),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, &entity.UpstreamError{
			Kind:       entity.UpstreamStatus,
			Endpoint:   endpoint,
			StatusCode: status,
			Body:       string(rawBody),
		}
	}

	var decoded map[string]any
	if err := numberJSON.Unmarshal(rawBody, &decoded); err != nil || decoded == nil {
		if err == nil {
			err = errors.New("response body is not a JSON object")
		}
		c.logger.Error("Failed to unmarshal analytics API response",
			zap.String("endpoint", endpoint),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, &entity.UpstreamError{Kind: entity.UpstreamMalformed, Endpoint: endpoint, Body: string(rawBody), Err: err}
	}

	return decoded, nil
}

func (c *bitsCrunchClientImpl) contextError(ctx context.Context, endpoint string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &entity.UpstreamError{Kind: entity.UpstreamTransport, Endpoint: endpoint, Err: err}
	}
	// Either the deadline passed or the pacing wait would outlast it.
	return &entity.UpstreamError{Kind: entity.UpstreamTimeout, Endpoint: endpoint, Err: err}
}
