package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/HerbHall/crias/pkg/llm"
)

// Responder builds the reply for one decoded chat completion request.
type Responder func(req map[string]any) llm.Completion

// FakeOpenAI is an httptest server that speaks POST /chat/completions.
type FakeOpenAI struct {
	Server *httptest.Server

	mu        sync.Mutex
	requests  []map[string]any
	responder Responder
}

// NewFakeOpenAI starts a server that answers with respond, or with an echo
// of the last user message when respond is nil. It is closed on cleanup.
func NewFakeOpenAI(t testing.TB, respond Responder) *FakeOpenAI {
	t.Helper()
	if respond == nil {
		respond = EchoResponder
	}
	f := &FakeOpenAI{responder: respond}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL to pass as the client's BaseURL.
func (f *FakeOpenAI) URL() string {
	return f.Server.URL
}

// Requests returns a copy of every request body received so far.
func (f *FakeOpenAI) Requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.requests...)
}

func (f *FakeOpenAI) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":{"message":"bad json","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, body)
	respond := f.responder
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(respond(body))
}

// EchoResponder answers "echo: <last user message>" using the requested model.
func EchoResponder(req map[string]any) llm.Completion {
	model, _ := req["model"].(string)
	return NewCompletion(WithModel(model), WithContent("echo: "+LastUserMessage(req)))
}

// LastUserMessage returns the content of the last user message in a request.
func LastUserMessage(req map[string]any) string {
	msgs, _ := req["messages"].([]any)
	for i := len(msgs) - 1; i >= 0; i-- {
		m, ok := msgs[i].(map[string]any)
		if ok && m["role"] == string(llm.RoleUser) {
			s, _ := m["content"].(string)
			return s
		}
	}
	return ""
}
