package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/HerbHall/crias/pkg/llm"
)

func TestNewCompletion_Options(t *testing.T) {
	c := NewCompletion(WithID("x"), WithModel("gpt-4"), WithContent("hi"), WithUsage(4, 6))
	if c.ID != "x" || c.Model != "gpt-4" || c.Content() != "hi" {
		t.Errorf("completion = %+v", c)
	}
	if c.Usage.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, want 10", c.Usage.TotalTokens)
	}
	if NewCompletion(WithoutUsage()).Usage != nil {
		t.Error("WithoutUsage left usage set")
	}
}

func TestFakeOpenAI_Echo(t *testing.T) {
	f := NewFakeOpenAI(t, nil)

	body, _ := json.Marshal(map[string]any{
		"model":    "gpt-4",
		"messages": []llm.Message{llm.SystemMessage("s"), llm.UserMessage("ping")},
	})
	resp, err := http.Post(f.URL()+"/chat/completions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var c llm.Completion
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Content() != "echo: ping" || c.Model != "gpt-4" {
		t.Errorf("completion = %+v", c)
	}
	if n := len(f.Requests()); n != 1 {
		t.Errorf("Requests() = %d, want 1", n)
	}
}

func TestFakeOpenAI_WrongPath(t *testing.T) {
	f := NewFakeOpenAI(t, nil)
	resp, err := http.Post(f.URL()+"/embeddings", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
