// Package openai implements llm.LLM for OpenAI chat completions on top of
// the official Go SDK. Any OpenAI-compatible endpoint works via BaseURL.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/HerbHall/crias/pkg/llm"
	"github.com/google/uuid"
	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const completionsPath = "chat/completions"

// requestIDHeader is echoed back by OpenAI and shows up in its request logs.
const requestIDHeader = "X-Client-Request-Id"

// Compile-time interface guard.
var _ llm.LLM = (*Chat)(nil)

// Chat is an OpenAI chat-completion client bound to one Config.
// It is safe for concurrent use.
type Chat struct {
	cfg        Config
	client     sdk.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	metrics    *Metrics
	httpClient *http.Client
}

// Option configures a Chat.
type Option func(*Chat)

// WithBaseURL sets a custom base URL, enabling Ollama, vLLM, Azure, or other
// OpenAI-compatible endpoints.
func WithBaseURL(url string) Option {
	return func(c *Chat) { c.cfg.BaseURL = url }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Chat) { c.cfg.Timeout = d }
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chat) { c.logger = logger }
}

// WithRateLimiter makes every request wait for a token from l first.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Chat) { c.limiter = l }
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Chat) { c.metrics = m }
}

// WithHTTPClient replaces the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Chat) { c.httpClient = hc }
}

// New creates a Chat client. If cfg.APIKey is empty the SDK falls back to
// the OPENAI_API_KEY environment variable.
func New(cfg Config, opts ...Option) (*Chat, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}
	if err := validateFunctions(cfg.Functions); err != nil {
		return nil, err
	}

	c := &Chat{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	// Failures surface to the caller as-is; the SDK must not retry.
	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if c.cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(c.cfg.APIKey))
	}
	if c.cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(c.cfg.BaseURL))
	}
	if c.cfg.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(c.cfg.Timeout))
	}
	if c.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(c.httpClient))
	}
	c.client = sdk.NewClient(clientOpts...)

	return c, nil
}

// Model returns the configured model name.
func (c *Chat) Model() string {
	return c.cfg.Model
}

// Config returns a copy of the client's configuration.
func (c *Chat) Config() Config {
	return c.cfg
}

// Create sends one chat completion request built from the config merged with
// overrides. An "api_key" override replaces the credential for this request
// only and is not sent in the body.
func (c *Chat) Create(ctx context.Context, overrides llm.Params) (*llm.Completion, error) {
	params := c.cfg.Serialize(overrides)

	var reqOpts []option.RequestOption
	if key, ok := params["api_key"]; ok {
		delete(params, "api_key")
		if s, ok := key.(string); ok && s != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(s))
		}
	}
	if stream, ok := params["stream"].(bool); ok && stream {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "streaming responses are not supported", nil)
	}
	if fns, ok := params["functions"].([]llm.Function); ok {
		if err := validateFunctions(fns); err != nil {
			return nil, err
		}
	}

	model, _ := params["model"].(string)
	requestID := uuid.NewString()
	log := c.logger.With(zap.String("model", model), zap.String("request_id", requestID))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, llm.NewProviderError(llm.ErrCodeTimeout, "waiting for rate limiter", err)
		}
	}

	reqOpts = append(reqOpts, option.WithHeader(requestIDHeader, requestID))
	log.Debug("sending chat completion")

	start := time.Now()
	var raw sdk.ChatCompletion
	err := c.client.Post(ctx, completionsPath, params, &raw, reqOpts...)
	if err != nil {
		if ctx.Err() != nil {
			err = llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
		} else {
			err = mapError(err)
		}
		c.metrics.observe(model, time.Since(start), err)
		log.Debug("chat completion failed", zap.Error(err))
		return nil, err
	}
	c.metrics.observe(model, time.Since(start), nil)

	completion := toCompletion(&raw)
	c.metrics.addUsage(model, completion.Usage)

	log.Debug("chat completion received",
		zap.String("id", completion.ID),
		zap.Int("choices", len(completion.Choices)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return completion, nil
}

// CreateAsync runs Create in a new goroutine. The returned channel yields
// one Result and is then closed.
func (c *Chat) CreateAsync(ctx context.Context, overrides llm.Params) <-chan llm.Result {
	overrides = llm.Params{}.Merge(overrides)
	ch := make(chan llm.Result, 1)
	go func() {
		defer close(ch)
		completion, err := c.Create(ctx, overrides)
		ch <- llm.Result{Completion: completion, Err: err}
	}()
	return ch
}

// validateFunctions rejects functions the API would refuse, before any call.
func validateFunctions(fns []llm.Function) error {
	for _, fn := range fns {
		if err := fn.Validate(); err != nil {
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, "invalid function definition", err)
		}
	}
	return nil
}

// toCompletion maps the SDK response onto the provider-neutral Completion.
func toCompletion(raw *sdk.ChatCompletion) *llm.Completion {
	out := &llm.Completion{
		ID:      raw.ID,
		Object:  string(raw.Object),
		Created: raw.Created,
		Model:   raw.Model,
		Choices: make([]llm.Choice, len(raw.Choices)),
	}

	for i := range raw.Choices {
		ch := &raw.Choices[i]
		role := llm.Role(ch.Message.Role)
		if role == "" {
			role = llm.RoleAssistant
		}
		msg := llm.Message{Role: role, Content: ch.Message.Content}
		if fc := ch.Message.FunctionCall; fc.Name != "" {
			msg.FunctionCall = &llm.FunctionCall{Name: fc.Name, Arguments: fc.Arguments}
		}
		out.Choices[i] = llm.Choice{
			Index:        int(ch.Index),
			Message:      msg,
			FinishReason: string(ch.FinishReason),
		}
	}

	if raw.JSON.Usage.Valid() {
		out.Usage = &llm.Usage{
			PromptTokens:     nonNegative(raw.Usage.PromptTokens),
			CompletionTokens: nonNegative(raw.Usage.CompletionTokens),
			TotalTokens:      nonNegative(raw.Usage.TotalTokens),
		}
	}
	return out
}

func nonNegative(n int64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}
