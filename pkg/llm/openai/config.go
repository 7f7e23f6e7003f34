package openai

import (
	"time"

	"github.com/HerbHall/crias/pkg/llm"
)

// Config holds the OpenAI chat configuration. Connection settings
// (APIKey, BaseURL, Timeout) never appear in the request body; every other
// field is sent only when set.
type Config struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	Messages  []llm.Message  `mapstructure:"-"`
	Functions []llm.Function `mapstructure:"-"`
	// FunctionCall is "auto", "none", or the name of a function to force.
	FunctionCall string `mapstructure:"function_call"`

	Temperature      *float64       `mapstructure:"temperature"`
	TopP             *float64       `mapstructure:"top_p"`
	N                *int           `mapstructure:"n"`
	Stop             []string       `mapstructure:"stop"`
	MaxTokens        *int           `mapstructure:"max_tokens"`
	PresencePenalty  *float64       `mapstructure:"presence_penalty"`
	FrequencyPenalty *float64       `mapstructure:"frequency_penalty"`
	LogitBias        map[string]int `mapstructure:"logit_bias"`
	User             string         `mapstructure:"user"`
}

// DefaultConfig returns sensible defaults for OpenAI.
func DefaultConfig() Config {
	return Config{
		Model:   "gpt-4o-mini",
		Timeout: 2 * time.Minute,
	}
}

// Ptr returns a pointer to v, for filling optional Config fields.
func Ptr[T any](v T) *T {
	return &v
}

// Serialize converts the config into request parameters. The model and
// message list are always present; optional fields appear only when set.
// Overrides are applied last and win on key collisions.
func (c Config) Serialize(overrides llm.Params) llm.Params {
	messages := c.Messages
	if messages == nil {
		messages = []llm.Message{}
	}
	p := llm.Params{
		"model":    c.Model,
		"messages": messages,
	}

	if len(c.Functions) > 0 {
		p["functions"] = c.Functions
	}
	switch c.FunctionCall {
	case "":
	case "auto", "none":
		p["function_call"] = c.FunctionCall
	default:
		p["function_call"] = map[string]string{"name": c.FunctionCall}
	}
	if c.Temperature != nil {
		p["temperature"] = *c.Temperature
	}
	if c.TopP != nil {
		p["top_p"] = *c.TopP
	}
	if c.N != nil {
		p["n"] = *c.N
	}
	if len(c.Stop) > 0 {
		p["stop"] = c.Stop
	}
	if c.MaxTokens != nil {
		p["max_tokens"] = *c.MaxTokens
	}
	if c.PresencePenalty != nil {
		p["presence_penalty"] = *c.PresencePenalty
	}
	if c.FrequencyPenalty != nil {
		p["frequency_penalty"] = *c.FrequencyPenalty
	}
	if len(c.LogitBias) > 0 {
		p["logit_bias"] = c.LogitBias
	}
	if c.User != "" {
		p["user"] = c.User
	}

	return p.Merge(overrides)
}
