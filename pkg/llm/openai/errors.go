package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HerbHall/crias/pkg/llm"
	sdk "github.com/openai/openai-go/v3"
)

// mapError translates SDK and network errors into typed llm.ProviderError
// values. The original error stays in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		// The formatted error carries the raw response body, which still has
		// the code when the envelope was not decoded into the fields.
		detail := strings.ToLower(apiErr.Code + " " + msg + " " + err.Error())
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return llm.NewProviderError(llm.ErrCodeAuthentication, msg, err)
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return llm.NewProviderError(llm.ErrCodeRateLimit, msg, err)
		case strings.Contains(detail, "model_not_found") ||
			(apiErr.StatusCode == http.StatusNotFound && strings.Contains(detail, "model")):
			return llm.NewProviderError(llm.ErrCodeModelNotFound, msg, err)
		case strings.Contains(detail, "context_length_exceeded") || strings.Contains(detail, "context length"):
			return llm.NewProviderError(llm.ErrCodeContextLength, msg, err)
		case apiErr.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, msg, err)
		case apiErr.StatusCode >= 400:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, msg, err)
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "openai server unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "openai error", err)
}
