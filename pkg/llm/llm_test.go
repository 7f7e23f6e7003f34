package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestBuildMessages(t *testing.T) {
	tests := []struct {
		name      string
		opts      []MessageOption
		wantRoles []Role
		wantTexts []string
	}{
		{name: "none", opts: nil},
		{
			name:      "system only",
			opts:      []MessageOption{WithSystem("S")},
			wantRoles: []Role{RoleSystem},
			wantTexts: []string{"S"},
		},
		{
			name:      "user only",
			opts:      []MessageOption{WithUser("U")},
			wantRoles: []Role{RoleUser},
			wantTexts: []string{"U"},
		},
		{
			name:      "system then user",
			opts:      []MessageOption{WithSystem("S"), WithUser("U")},
			wantRoles: []Role{RoleSystem, RoleUser},
			wantTexts: []string{"S", "U"},
		},
		{
			name:      "option order ignored",
			opts:      []MessageOption{WithUser("U"), WithSystem("S")},
			wantRoles: []Role{RoleSystem, RoleUser},
			wantTexts: []string{"S", "U"},
		},
		{
			name:      "empty content still counts",
			opts:      []MessageOption{WithUser("")},
			wantRoles: []Role{RoleUser},
			wantTexts: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildMessages(tt.opts...)
			if len(got) != len(tt.wantRoles) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantRoles))
			}
			for i := range got {
				if got[i].Role != tt.wantRoles[i] {
					t.Errorf("messages[%d].Role = %q, want %q", i, got[i].Role, tt.wantRoles[i])
				}
				if got[i].Content != tt.wantTexts[i] {
					t.Errorf("messages[%d].Content = %q, want %q", i, got[i].Content, tt.wantTexts[i])
				}
			}
		})
	}
}

func TestMessage_JSONOmitsUnsetFields(t *testing.T) {
	b, err := json.Marshal(SystemMessage("system message"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"role":"system","content":"system message"}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	m := Message{
		Role:         RoleAssistant,
		Content:      "",
		FunctionCall: &FunctionCall{Name: "lookup", Arguments: `{"q":"go"}`},
	}
	b, err = json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want = `{"role":"assistant","content":"","function_call":{"name":"lookup","arguments":"{\"q\":\"go\"}"}}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}

func TestParams_Merge(t *testing.T) {
	base := Params{"model": "gpt-4", "temperature": 0.2}
	got := base.Merge(Params{"temperature": 0.9, "max_tokens": 100})

	if got["model"] != "gpt-4" {
		t.Errorf("model = %v, want gpt-4", got["model"])
	}
	if got["temperature"] != 0.9 {
		t.Errorf("temperature = %v, want override 0.9", got["temperature"])
	}
	if got["max_tokens"] != 100 {
		t.Errorf("max_tokens = %v, want 100", got["max_tokens"])
	}
	if base["temperature"] != 0.2 {
		t.Error("Merge mutated the receiver")
	}
	if _, ok := base["max_tokens"]; ok {
		t.Error("Merge leaked override keys into the receiver")
	}
}

func TestParams_MarshalNil(t *testing.T) {
	var p Params
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("json = %s, want {}", b)
	}
}

func TestFunction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fn      Function
		wantErr bool
	}{
		{name: "name only", fn: Function{Name: "now"}},
		{
			name: "object schema",
			fn: Function{
				Name:        "get_weather",
				Description: "Current weather for a city",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"city": map[string]any{"type": "string"},
					},
					"required": []any{"city"},
				},
			},
		},
		{name: "missing name", fn: Function{}, wantErr: true},
		{
			name:    "bad schema type",
			fn:      Function{Name: "broken", Parameters: map[string]any{"type": "banana"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompletion_Content(t *testing.T) {
	var nilCompletion *Completion
	if got := nilCompletion.Content(); got != "" {
		t.Errorf("nil Content() = %q", got)
	}
	c := &Completion{Choices: []Choice{{Message: AssistantMessage("hi")}}}
	if got := c.Content(); got != "hi" {
		t.Errorf("Content() = %q, want hi", got)
	}
}

// stubLLM answers every request with the "tag" override echoed as content.
type stubLLM struct {
	calls   atomic.Int32
	failTag string
}

func (s *stubLLM) Model() string { return "stub" }

func (s *stubLLM) Create(ctx context.Context, overrides Params) (*Completion, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tag := fmt.Sprint(overrides["tag"])
	if tag == s.failTag {
		return nil, NewProviderError(ErrCodeServerError, "boom", nil)
	}
	return &Completion{Model: "stub", Choices: []Choice{{Message: AssistantMessage(tag)}}}, nil
}

func (s *stubLLM) CreateAsync(ctx context.Context, overrides Params) <-chan Result {
	ch := make(chan Result, 1)
	c, err := s.Create(ctx, overrides)
	ch <- Result{Completion: c, Err: err}
	return ch
}

func TestCreateAll_PreservesOrder(t *testing.T) {
	s := &stubLLM{}
	requests := []Params{{"tag": "a"}, {"tag": "b"}, {"tag": "c"}, {"tag": "d"}}

	got, err := CreateAll(context.Background(), s, requests, 2)
	if err != nil {
		t.Fatalf("CreateAll: %v", err)
	}
	if len(got) != len(requests) {
		t.Fatalf("len = %d, want %d", len(got), len(requests))
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if got[i].Content() != want {
			t.Errorf("result[%d] = %q, want %q", i, got[i].Content(), want)
		}
	}
	if n := s.calls.Load(); n != 4 {
		t.Errorf("calls = %d, want 4", n)
	}
}

func TestCreateAll_PropagatesError(t *testing.T) {
	s := &stubLLM{failTag: "b"}
	_, err := CreateAll(context.Background(), s, []Params{{"tag": "a"}, {"tag": "b"}}, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsServerError(err) {
		t.Errorf("error = %v, want server error", err)
	}
}

func TestCreateAll_Empty(t *testing.T) {
	got, err := CreateAll(context.Background(), &stubLLM{}, nil, 1)
	if err != nil {
		t.Fatalf("CreateAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestProviderError_Classification(t *testing.T) {
	base := errors.New("underlying")
	tests := []struct {
		code  string
		check func(error) bool
	}{
		{ErrCodeAuthentication, IsAuthenticationError},
		{ErrCodeRateLimit, IsRateLimitError},
		{ErrCodeModelNotFound, IsModelNotFoundError},
		{ErrCodeInvalidRequest, IsInvalidRequestError},
		{ErrCodeContextLength, IsContextLengthError},
		{ErrCodeServerError, IsServerError},
		{ErrCodeTimeout, IsTimeoutError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewProviderError(tt.code, "msg", base))
			if !tt.check(err) {
				t.Errorf("classifier did not match code %s", tt.code)
			}
			if !errors.Is(err, base) {
				t.Error("underlying error not reachable via errors.Is")
			}
		})
	}
}

func TestProviderError_IsModelNotFound(t *testing.T) {
	err := NewProviderError(ErrCodeModelNotFound, "model gpt-9 not found", nil)
	if !errors.Is(err, ErrModelNotFound) {
		t.Error("errors.Is(err, ErrModelNotFound) = false")
	}
	other := NewProviderError(ErrCodeServerError, "boom", nil)
	if errors.Is(other, ErrModelNotFound) {
		t.Error("server error must not match ErrModelNotFound")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewProviderError(ErrCodeRateLimit, "slow down", nil)) {
		t.Error("rate limit should be retryable")
	}
	if IsRetryable(NewProviderError(ErrCodeAuthentication, "bad key", nil)) {
		t.Error("auth error should not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("untyped error should not be retryable")
	}
}

func TestProviderError_ErrorString(t *testing.T) {
	err := NewProviderError(ErrCodeTimeout, "request timed out", errors.New("deadline"))
	if got := err.Error(); got != "request timed out: deadline" {
		t.Errorf("Error() = %q", got)
	}
	err = NewProviderError(ErrCodeTimeout, "request timed out", nil)
	if got := err.Error(); got != "request timed out" {
		t.Errorf("Error() = %q", got)
	}
}
