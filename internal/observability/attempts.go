package observability

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-ai/pkg/ai"
)

// AttemptMetrics records every provider attempt in Prometheus.
type AttemptMetrics struct{}

// NewAttemptMetrics registers the collectors and returns the sink.
func NewAttemptMetrics() AttemptMetrics {
	RegisterMetrics()
	return AttemptMetrics{}
}

func (AttemptMetrics) Observe(_ context.Context, op ai.OpType, outcome ai.AttemptOutcome) {
	ProviderAttempts().WithLabelValues(string(op), outcome.ProviderID, string(outcome.Kind)).Inc()
	ProviderAttemptLatency().WithLabelValues(string(op), outcome.ProviderID).Observe(outcome.Elapsed.Seconds())
}

// Publisher is the subset of *nats.Conn used to stream attempt events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// AttemptEvent is the message published for each provider attempt.
type AttemptEvent struct {
	CorrelationID string    `json:"correlation_id,omitempty"`
	Operation     string    `json:"operation"`
	ProviderID    string    `json:"provider_id"`
	Outcome       string    `json:"outcome"`
	Pass          int       `json:"pass"`
	ElapsedMs     float64   `json:"elapsed_ms"`
	Detail        string    `json:"detail,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

// AttemptPublisher streams attempt outcomes to "<base>.ai.attempts".
type AttemptPublisher struct {
	publisher Publisher
	subject   string
	correlate func(context.Context) string
	logger    zerolog.Logger
}

// NewAttemptPublisher builds a publisher. channelBase may use ":" separators
// like the Redis channel names; they are converted to NATS subject tokens.
func NewAttemptPublisher(publisher Publisher, channelBase string, correlate func(context.Context) string, logger zerolog.Logger) *AttemptPublisher {
	base := strings.Trim(strings.ReplaceAll(channelBase, ":", "."), ".")
	subject := "ai.attempts"
	if base != "" {
		subject = base + ".ai.attempts"
	}
	return &AttemptPublisher{
		publisher: publisher,
		subject:   subject,
		correlate: correlate,
		logger:    logger.With().Str("component", "ai_attempt_publisher").Logger(),
	}
}

// Subject returns the NATS subject events are published on.
func (p *AttemptPublisher) Subject() string {
	return p.subject
}

func (p *AttemptPublisher) Observe(ctx context.Context, op ai.OpType, outcome ai.AttemptOutcome) {
	if p == nil || p.publisher == nil {
		return
	}

	event := AttemptEvent{
		Operation:  string(op),
		ProviderID: outcome.ProviderID,
		Outcome:    string(outcome.Kind),
		Pass:       outcome.Pass,
		ElapsedMs:  float64(outcome.Elapsed) / float64(time.Millisecond),
		Detail:     outcome.Detail,
		SentAt:     time.Now().UTC(),
	}
	if p.correlate != nil {
		event.CorrelationID = p.correlate(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode attempt event")
		return
	}
	if err := p.publisher.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish attempt event")
	}
}

// RecordResult counts one orchestrated result by provenance.
func RecordResult(op ai.OpType, source ai.Source) {
	Results().WithLabelValues(string(op), string(source.Kind)).Inc()
}
