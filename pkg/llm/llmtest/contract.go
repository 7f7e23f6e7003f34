// Package llmtest provides shared contract tests that verify any llm.LLM
// implementation behaves correctly. Every provider's test file should call
// TestLLMContract to ensure conformance.
//
// The factory usually points the client at an httptest server; pass a live
// client only behind a build tag or environment check.
package llmtest

import (
	"context"
	"sync"
	"testing"

	"github.com/HerbHall/crias/pkg/llm"
)

// TestLLMContract runs a suite of behavioral contract tests against any
// llm.LLM implementation. Call this from each provider's _test.go:
//
//	func TestContract(t *testing.T) {
//	    llmtest.TestLLMContract(t, func() llm.LLM { return newTestChat(t, srv.URL) })
//	}
func TestLLMContract(t *testing.T, factory func() llm.LLM) {
	t.Helper()

	userOnly := llm.Params{"messages": llm.BuildMessages(llm.WithUser("Say hello"))}

	t.Run("Model_is_not_empty", func(t *testing.T) {
		if factory().Model() == "" {
			t.Error("Model() must not be empty")
		}
	})

	t.Run("Create_returns_completion", func(t *testing.T) {
		m := factory()
		c, err := m.Create(context.Background(), userOnly)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		checkCompletion(t, c)
	})

	t.Run("CreateAsync_delivers_one_result", func(t *testing.T) {
		m := factory()
		ch := m.CreateAsync(context.Background(), userOnly)
		res, ok := <-ch
		if !ok {
			t.Fatal("CreateAsync() channel closed without a result")
		}
		if res.Err != nil {
			t.Fatalf("CreateAsync() error = %v", res.Err)
		}
		checkCompletion(t, res.Completion)
		if _, more := <-ch; more {
			t.Error("CreateAsync() delivered more than one result")
		}
	})

	t.Run("Create_cancelled_context", func(t *testing.T) {
		m := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := m.Create(ctx, userOnly); err == nil {
			t.Error("Create() with cancelled context should return error")
		}
	})

	t.Run("Concurrent_creates_are_independent", func(t *testing.T) {
		m := factory()
		const n = 4
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = m.Create(context.Background(), userOnly)
			}()
		}
		wg.Wait()
		for i, err := range errs {
			if err != nil {
				t.Errorf("Create() #%d error = %v", i, err)
			}
		}
	})
}

func checkCompletion(t *testing.T, c *llm.Completion) {
	t.Helper()
	if c == nil {
		t.Fatal("nil completion")
	}
	if c.Model == "" {
		t.Error("Completion.Model must not be empty")
	}
	if len(c.Choices) == 0 {
		t.Error("Completion.Choices must not be empty")
	}
	if u := c.Usage; u != nil {
		if u.PromptTokens < 0 || u.CompletionTokens < 0 || u.TotalTokens < 0 {
			t.Errorf("Usage has negative counts: %+v", *u)
		}
	}
}
