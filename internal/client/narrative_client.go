package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	anthropicVersion = "2023-06-01"
)

// NarrativeOptions configures the LLM chat-completion client.
// ProviderOpenAI covers every OpenAI-compatible API, Groq included.
type NarrativeOptions struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *fasthttp.Client
}

type narrativeClientImpl struct {
	client *fasthttp.Client
	opts   NarrativeOptions
	logger *zap.Logger
}

// NewNarrativeClient creates a chat-completion client for the configured provider.
func NewNarrativeClient(opts NarrativeOptions, logger *zap.Logger) (port.NarrativeClient, error) {
	opts.Provider = strings.ToLower(opts.Provider)
	switch opts.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", opts.Provider)
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("LLM base URL is empty")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{Name: "wallet_report"}
	}
	return &narrativeClientImpl{
		client: httpClient,
		opts:   opts,
		logger: logger.Named("NarrativeClient"),
	}, nil
}

func (c *narrativeClientImpl) Provider() string {
	return c.opts.Provider
}

// Complete sends the messages in order and returns the first completion's text.
func (c *narrativeClientImpl) Complete(ctx context.Context, messages []entity.ChatMessage) (text string, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.NarrativeRequests.WithLabelValues(c.opts.Provider, outcome).Inc()
	}()

	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}
	if c.opts.APIKey == "" {
		return "", fmt.Errorf("%s API key is not configured", c.opts.Provider)
	}

	switch c.opts.Provider {
	case ProviderAnthropic:
		return c.callAnthropic(ctx, messages)
	default:
		return c.callOpenAI(ctx, messages)
	}
}

func (c *narrativeClientImpl) callOpenAI(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	reqBody := map[string]any{
		"model":       c.opts.Model,
		"messages":    messages,
		"temperature": c.opts.Temperature,
		"max_tokens":  c.opts.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.opts.APIKey}

	respBody, err := c.post(ctx, c.opts.BaseURL+"/chat/completions", reqBody, headers)
	if err != nil {
		return "", err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty response from openai")
	}
	return result.Choices[0].Message.Content, nil
}

// callAnthropic moves system messages into the top-level system field, which the
// Messages API requires.
func (c *narrativeClientImpl) callAnthropic(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	var system []string
	conversation := make([]entity.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == entity.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		conversation = append(conversation, m)
	}
	if len(conversation) == 0 {
		return "", fmt.Errorf("anthropic request needs at least one non-system message")
	}

	reqBody := map[string]any{
		"model":       c.opts.Model,
		"max_tokens":  c.opts.MaxTokens,
		"temperature": c.opts.Temperature,
		"messages":    conversation,
	}
	if len(system) > 0 {
		reqBody["system"] = strings.Join(system, "\n\n")
	}
	headers := map[string]string{
		"x-api-key":         c.opts.APIKey,
		"anthropic-version": anthropicVersion,
	}

	respBody, err := c.post(ctx, c.opts.BaseURL+"/messages", reqBody, headers)
	if err != nil {
		return "", err
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("empty response from anthropic")
	}
	return sb.String(), nil
}

func (c *narrativeClientImpl) post(ctx context.Context, url string, payload any, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", c.opts.Provider, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBody(body)

	deadline := time.Now().Add(c.opts.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	c.logger.Debug("Requesting completion", zap.String("provider", c.opts.Provider), zap.String("model", c.opts.Model))
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Error("Failed to execute completion request", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%s request failed: %w", c.opts.Provider, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Completion request failed",
			zap.String("provider", c.opts.Provider),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()),
		)
		return nil, fmt.Errorf("%s API error %d: %s", c.opts.Provider, resp.StatusCode(), string(resp.Body()))
	}

	// resp is released on return, copy the body out.
	return append([]byte(nil), resp.Body()...), nil
}
