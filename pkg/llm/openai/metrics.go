package openai

import (
	"errors"
	"time"

	"github.com/HerbHall/crias/pkg/llm"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts, latency and token usage per model.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil). It panics on duplicate
// registration, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crias_llm_requests_total",
				Help: "Total number of chat completion requests.",
			},
			[]string{"model", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crias_llm_request_duration_seconds",
				Help:    "Chat completion request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crias_llm_tokens_total",
				Help: "Tokens consumed by chat completions.",
			},
			[]string{"model", "kind"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.tokens)
	return m
}

func (m *Metrics) observe(model string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		var pe *llm.ProviderError
		if errors.As(err, &pe) {
			outcome = pe.Code
		}
	}
	m.requests.WithLabelValues(model, outcome).Inc()
	m.duration.WithLabelValues(model).Observe(elapsed.Seconds())
}

func (m *Metrics) addUsage(model string, u *llm.Usage) {
	if m == nil || u == nil {
		return
	}
	m.tokens.WithLabelValues(model, "prompt").Add(float64(u.PromptTokens))
	m.tokens.WithLabelValues(model, "completion").Add(float64(u.CompletionTokens))
}
