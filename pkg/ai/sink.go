package ai

import (
	"context"

	"github.com/rs/zerolog"
)

// NopSink discards attempt outcomes.
type NopSink struct{}

func (NopSink) Observe(context.Context, OpType, AttemptOutcome) {}

// LogSink writes every attempt outcome to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging under the ai_dispatch component.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "ai_dispatch").Logger()}
}

func (s *LogSink) Observe(_ context.Context, op OpType, outcome AttemptOutcome) {
	event := s.logger.Warn()
	if outcome.Kind == AttemptSuccess {
		event = s.logger.Debug()
	}
	event.
		Str("operation", string(op)).
		Str("provider", outcome.ProviderID).
		Str("outcome", string(outcome.Kind)).
		Int("pass", outcome.Pass).
		Dur("elapsed", outcome.Elapsed).
		Str("detail", outcome.Detail).
		Msg("ai provider attempt")
}

// MultiSink fans an outcome out to several sinks in order.
type MultiSink []AttemptSink

func (m MultiSink) Observe(ctx context.Context, op OpType, outcome AttemptOutcome) {
	for _, sink := range m {
		if sink != nil {
			sink.Observe(ctx, op, outcome)
		}
	}
}
