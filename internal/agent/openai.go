package agent

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/logfields"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "openai/gpt-5-mini"

// providerBaseURLs are the OpenAI-compatible endpoints of known providers.
// "openai" uses the client library default.
var providerBaseURLs = map[string]string{
	"openai":      "",
	"openrouter":  "https://openrouter.ai/api/v1",
	"deepseek":    "https://api.deepseek.com",
	"siliconflow": "https://api.siliconflow.cn/v1",
	"ollama":      "http://localhost:11434/v1",
}

// Config configures an OpenAI-compatible agent.
type Config struct {
	// Model is either "model" or "provider/model" (e.g. "openai/gpt-5-mini").
	Model       string
	Provider    string // overrides the provider prefix of Model
	APIKey      string
	BaseURL     string // overrides the provider preset
	Instruction string // fixed system instruction
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

// OpenAI is an Agent backed by the chat completions API.
type OpenAI struct {
	client      *openai.Client
	provider    string
	model       string
	instruction string
	maxTokens   int
	temperature float32
}

// SplitModel separates "provider/model". Model names that contain a slash
// themselves (openrouter style "vendor/model") keep everything after the
// first known provider prefix.
func SplitModel(id string) (provider, model string) {
	id = strings.TrimSpace(id)
	if p, m, ok := strings.Cut(id, "/"); ok {
		if _, known := providerBaseURLs[strings.ToLower(p)]; known {
			return strings.ToLower(p), m
		}
	}
	return "", id
}

// NewOpenAI validates cfg and builds the agent.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	id := cfg.Model
	if strings.TrimSpace(id) == "" {
		id = DefaultModel
	}
	provider, model := SplitModel(id)
	if cfg.Provider != "" {
		provider = strings.ToLower(cfg.Provider)
	}
	if provider == "" {
		provider = "openai"
	}
	if model == "" {
		return nil, ferrors.ConfigError("agent model is empty").WithContext("model", cfg.Model).Build()
	}
	if cfg.APIKey == "" && provider != "ollama" {
		return nil, ferrors.ConfigError("agent API key is not set").
			WithContext("provider", provider).
			Build()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if base := providerBaseURLs[provider]; base != "" {
		clientConfig.BaseURL = base
	}
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if _, known := providerBaseURLs[provider]; !known && cfg.BaseURL == "" {
		slog.Info("Using generic OpenAI-compatible provider with default base URL", logfields.Provider(provider))
	}
	clientConfig.HTTPClient = cfg.HTTPClient
	if clientConfig.HTTPClient == nil {
		clientConfig.HTTPClient = newHTTPClient()
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientConfig),
		provider:    provider,
		model:       model,
		instruction: cfg.Instruction,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the model name sent to the API.
func (a *OpenAI) Model() string { return a.model }

// Provider returns the resolved provider name.
func (a *OpenAI) Provider() string { return a.provider }

// Generate performs one chat completion. Errors are classified; the caller
// owns timeouts through ctx.
func (a *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if a.instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: a.instruction})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:               a.model,
		Messages:            messages,
		MaxCompletionTokens: a.maxTokens,
	}
	// Zero keeps the provider default; some reasoning models reject any other value.
	if a.temperature > 0 {
		req.Temperature = a.temperature
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", ferrors.AgentError("empty response from model").WithContext("model", a.model).Build()
	}

	slog.Debug("Tag agent responded",
		logfields.Model(a.model),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())),
		slog.Int("tokens_total", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 120 * time.Second,
		},
	}
}

// Classify wraps an agent error in a ClassifiedError describing what failed.
// Already classified errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}

	status := statusCode(err)
	var b *ferrors.ErrorBuilder
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		b = ferrors.WrapError(err, ferrors.CategoryAuth, "agent rejected credentials").
			WithRetry(ferrors.RetryUserAction).Warning()
	case status == http.StatusTooManyRequests:
		b = ferrors.WrapError(err, ferrors.CategoryAgent, "agent rate limited").
			WithRetry(ferrors.RetryRateLimit).Warning()
	case isTimeout(err):
		b = ferrors.WrapError(err, ferrors.CategoryAgent, "agent call timed out").
			WithRetry(ferrors.RetryBackoff).Warning()
	case status >= 400 && status < 500:
		b = ferrors.WrapError(err, ferrors.CategoryAgent, "agent rejected request").
			WithRetry(ferrors.RetryNever).Warning()
	default:
		b = ferrors.WrapError(err, ferrors.CategoryAgent, "agent call failed").
			WithRetry(ferrors.RetryBackoff).Warning()
	}
	if status != 0 {
		b = b.WithContext("status", status)
	}
	return b.Build()
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
