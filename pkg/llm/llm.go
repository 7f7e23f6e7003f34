// Package llm provides the public SDK types for chat-completion clients.
// Concrete providers live in subpackages (currently only openai) and are
// looked up by model name through the providers package.
package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// LLM is implemented by every provider-specific client. An LLM carries its
// own generation parameters; overrides passed to Create take precedence
// over them key by key.
type LLM interface {
	// Model returns the model name requests are sent to by default.
	Model() string

	// Create sends one completion request and blocks until the reply arrives.
	Create(ctx context.Context, overrides Params) (*Completion, error)

	// CreateAsync starts a completion request and returns a channel that
	// receives exactly one Result.
	CreateAsync(ctx context.Context, overrides Params) <-chan Result
}

// Result is the outcome of an asynchronous completion request.
type Result struct {
	Completion *Completion
	Err        error
}

// MessageOption configures BuildMessages.
type MessageOption func(*messageConfig)

type messageConfig struct {
	system *string
	user   *string
}

// WithSystem adds a system message.
func WithSystem(content string) MessageOption {
	return func(c *messageConfig) { c.system = &content }
}

// WithUser adds a user message.
func WithUser(content string) MessageOption {
	return func(c *messageConfig) { c.user = &content }
}

// BuildMessages returns the system message (if any) followed by the user
// message (if any). Option order does not affect message order.
func BuildMessages(opts ...MessageOption) []Message {
	var cfg messageConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	messages := make([]Message, 0, 2)
	if cfg.system != nil {
		messages = append(messages, SystemMessage(*cfg.system))
	}
	if cfg.user != nil {
		messages = append(messages, UserMessage(*cfg.user))
	}
	return messages
}

// SystemMessage returns a message with the system role.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a message with the user role.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a message with the assistant role.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CreateAll issues one Create call per entry in requests, running at most
// limit of them at a time (limit <= 0 means no bound). Completions are
// returned in request order. The first failure cancels the remaining calls.
func CreateAll(ctx context.Context, m LLM, requests []Params, limit int) ([]*Completion, error) {
	out := make([]*Completion, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, overrides := range requests {
		g.Go(func() error {
			c, err := m.Create(ctx, overrides)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
