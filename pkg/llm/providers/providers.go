// Package providers maps model names to the provider that serves them.
// The registry is static: a name is either supported or Resolve fails with
// llm.ErrModelNotFound.
package providers

import (
	"fmt"
	"slices"

	"github.com/HerbHall/crias/pkg/llm"
	"github.com/HerbHall/crias/pkg/llm/openai"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
)

// OpenAIModels lists the chat models served by the openai provider.
var OpenAIModels = []string{
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-0301",
	"gpt-3.5-turbo-0613",
	"gpt-4",
	"gpt-4-0314",
	"gpt-4-0613",
	"gpt-4-32k",
	"gpt-4-32k-0314",
	"gpt-4-32k-0613",
	"gpt-4-turbo",
	"gpt-4o",
	"gpt-4o-mini",
}

var registry = buildRegistry()

func buildRegistry() map[string]string {
	r := make(map[string]string, len(OpenAIModels))
	for _, m := range OpenAIModels {
		r[m] = ProviderOpenAI
	}
	return r
}

// Models returns every supported model name, sorted.
func Models() []string {
	out := make([]string, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Supported reports whether model is in the registry.
func Supported(model string) bool {
	_, ok := registry[model]
	return ok
}

// ProviderFor returns the provider name serving model.
func ProviderFor(model string) (string, error) {
	p, ok := registry[model]
	if !ok {
		return "", notFound(model)
	}
	return p, nil
}

// Resolve returns a client for model using apiKey as the credential.
// Options are passed to the provider constructor.
func Resolve(model, apiKey string, opts ...openai.Option) (llm.LLM, error) {
	provider, err := ProviderFor(model)
	if err != nil {
		return nil, err
	}

	switch provider {
	case ProviderOpenAI:
		cfg := openai.DefaultConfig()
		cfg.Model = model
		cfg.APIKey = apiKey
		return openai.New(cfg, opts...)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func notFound(model string) error {
	return llm.NewProviderError(llm.ErrCodeModelNotFound, fmt.Sprintf("model %q not found", model), nil)
}
