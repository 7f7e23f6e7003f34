// Package testutil holds fixtures shared by crias tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/crias/pkg/llm"
)

// NewCompletion returns a one-choice Completion with sensible defaults,
// suitable for test fixtures. Override individual fields with options.
func NewCompletion(opts ...func(*llm.Completion)) llm.Completion {
	c := llm.Completion{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   "gpt-4o-mini",
		Choices: []llm.Choice{{
			Index:        0,
			Message:      llm.AssistantMessage("Hello, World!"),
			FinishReason: "stop",
		}},
		Usage: &llm.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithID sets the completion id.
func WithID(id string) func(*llm.Completion) {
	return func(c *llm.Completion) { c.ID = id }
}

// WithModel sets the model that produced the completion.
func WithModel(model string) func(*llm.Completion) {
	return func(c *llm.Completion) { c.Model = model }
}

// WithContent sets the first choice's message content.
func WithContent(content string) func(*llm.Completion) {
	return func(c *llm.Completion) {
		if len(c.Choices) == 0 {
			c.Choices = []llm.Choice{{Message: llm.AssistantMessage(content), FinishReason: "stop"}}
			return
		}
		c.Choices[0].Message.Content = content
	}
}

// WithUsage sets token counts. Total is the sum of prompt and completion.
func WithUsage(prompt, completion int) func(*llm.Completion) {
	return func(c *llm.Completion) {
		c.Usage = &llm.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
	}
}

// WithoutUsage drops the usage block, as some compatible servers do.
func WithoutUsage() func(*llm.Completion) {
	return func(c *llm.Completion) { c.Usage = nil }
}
