package ai

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultProviderTimeout bounds a provider call when neither the provider nor
// the dispatcher configures a timeout.
const DefaultProviderTimeout = 30 * time.Second

// RequestDispatcher runs the provider policy for one operation. It never fails:
// when no provider produces a valid payload the result comes from the fallback.
type RequestDispatcher interface {
	Dispatch(ctx context.Context, req OperationRequest, prompt Prompt) OperationResult
}

// DispatcherConfig holds the retry policy.
type DispatcherConfig struct {
	// RetryPasses is the number of full passes over the provider list. Values below 1 mean 1.
	RetryPasses int
	// DefaultTimeout applies to providers without their own timeout.
	DefaultTimeout time.Duration
	// RetryBackoff is the pause between passes.
	RetryBackoff time.Duration
}

type dispatchState int

const (
	stateStart dispatchState = iota
	stateTryProvider
	stateSucceeded
	stateAllFailed
)

// Dispatcher walks the registry in priority order, validating every response,
// and falls back when all passes are exhausted or the caller gives up.
type Dispatcher struct {
	registry  atomic.Pointer[Registry]
	validator *Validator
	fallbacks FallbackTable
	sink      AttemptSink
	cfg       DispatcherConfig
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewDispatcher wires a dispatcher. A nil registry behaves as an empty one.
func NewDispatcher(registry *Registry, validator *Validator, fallbacks FallbackTable, sink AttemptSink, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.RetryPasses < 1 {
		cfg.RetryPasses = 1
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultProviderTimeout
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	if sink == nil {
		sink = NopSink{}
	}
	if validator == nil {
		validator = NewValidator()
	}

	d := &Dispatcher{
		validator: validator,
		fallbacks: fallbacks,
		sink:      sink,
		cfg:       cfg,
		logger:    logger.With().Str("component", "ai_dispatcher").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-ai/pkg/ai/dispatcher"),
	}
	d.ReplaceRegistry(registry)
	return d
}

// ReplaceRegistry swaps the provider list used by subsequent dispatches.
// In-flight dispatches keep the registry they started with.
func (d *Dispatcher) ReplaceRegistry(registry *Registry) {
	if registry == nil {
		registry = &Registry{}
	}
	d.registry.Store(registry)
}

// Registry returns the registry currently in use.
func (d *Dispatcher) Registry() *Registry {
	return d.registry.Load()
}

// Budget is the overall deadline of one dispatch over providers: every
// provider timeout for every pass plus the pauses between passes.
func (d *Dispatcher) Budget(providers []Provider) time.Duration {
	var perPass time.Duration
	for _, provider := range providers {
		perPass += d.timeoutFor(provider)
	}
	passes := time.Duration(d.cfg.RetryPasses)
	return perPass*passes + d.cfg.RetryBackoff*(passes-1)
}

func (d *Dispatcher) Dispatch(ctx context.Context, req OperationRequest, prompt Prompt) OperationResult {
	providers := d.registry.Load().ListByPriority()

	ctx, span := d.tracer.Start(ctx, "ai.dispatch", trace.WithAttributes(
		attribute.String("operation", string(req.Op)),
		attribute.Int("providers", len(providers)),
	))
	defer span.End()

	if len(providers) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Budget(providers))
		defer cancel()
	}

	call := CompletionRequest{System: prompt.System, User: prompt.User}
	if shape, ok := ShapeFor(req.Op); ok && shape.Kind == KindObject {
		call.JSONObject = true
	}

	attempts := make([]AttemptOutcome, 0, len(providers)*d.cfg.RetryPasses)
	state := stateStart
	pass, index := 1, 0
	var (
		payload any
		winner  string
	)

	for {
		switch state {
		case stateStart:
			if len(providers) == 0 {
				state = stateAllFailed
				continue
			}
			state = stateTryProvider

		case stateTryProvider:
			if ctx.Err() != nil {
				state = stateAllFailed
				continue
			}

			provider := providers[index]
			outcome, value := d.attempt(ctx, req, provider, call, pass)
			attempts = append(attempts, outcome)
			d.sink.Observe(context.WithoutCancel(ctx), req.Op, outcome)

			if outcome.Kind == AttemptSuccess {
				payload, winner = value, provider.Config.ID
				state = stateSucceeded
				continue
			}

			index++
			if index < len(providers) {
				continue
			}
			if pass >= d.cfg.RetryPasses {
				state = stateAllFailed
				continue
			}
			pass, index = pass+1, 0
			if !d.pause(ctx) {
				state = stateAllFailed
			}

		case stateSucceeded:
			span.SetAttributes(attribute.String("source", winner), attribute.Int("attempts", len(attempts)))
			return OperationResult{
				Op:       req.Op,
				Success:  true,
				Source:   ProviderSource(winner),
				Payload:  payload,
				Attempts: attempts,
			}

		case stateAllFailed:
			if len(providers) > 0 {
				d.logger.Warn().
					Str("operation", string(req.Op)).
					Int("attempts", len(attempts)).
					Bool("cancelled", ctx.Err() != nil).
					Msg("all providers failed, serving fallback")
			}
			span.SetAttributes(attribute.String("source", string(SourceFallback)), attribute.Int("attempts", len(attempts)))
			return OperationResult{
				Op:       req.Op,
				Success:  true,
				Source:   FallbackSource(),
				Payload:  d.fallbacks.Generate(req.Op, req.Params),
				Attempts: attempts,
			}

		default:
			panic(fmt.Sprintf("ai: unknown dispatch state %d", state))
		}
	}
}

type completionReply struct {
	text string
	err  error
}

// attempt performs one bounded call. The client runs in its own goroutine so a
// client that ignores its context still cannot hold the dispatch past the timeout.
func (d *Dispatcher) attempt(ctx context.Context, operation OperationRequest, provider Provider, req CompletionRequest, pass int) (AttemptOutcome, any) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeoutFor(provider))
	defer cancel()

	outcome := AttemptOutcome{ProviderID: provider.Config.ID, Pass: pass}
	start := time.Now()

	done := make(chan completionReply, 1)
	go func() {
		text, err := provider.Client.Complete(callCtx, req)
		done <- completionReply{text: text, err: err}
	}()

	var reply completionReply
	select {
	case reply = <-done:
	case <-callCtx.Done():
		reply = completionReply{err: callCtx.Err()}
	}
	outcome.Elapsed = time.Since(start)

	if reply.err != nil {
		timedOut := errors.Is(reply.err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
		transportErr := &TransportError{ProviderID: provider.Config.ID, Timeout: timedOut, Err: reply.err}
		outcome.Kind = AttemptNetworkError
		if timedOut {
			outcome.Kind = AttemptTimeout
		}
		outcome.Detail = transportErr.Error()
		return outcome, nil
	}

	payload, err := d.validator.Parse(operation.Op, reply.text)
	if err == nil {
		err = d.validator.CheckRequest(operation.Op, operation.Params, payload)
	}
	if err != nil {
		var schemaErr *SchemaError
		outcome.Kind = AttemptParseError
		if errors.As(err, &schemaErr) {
			outcome.Kind = AttemptSchemaError
		}
		outcome.Detail = err.Error()
		return outcome, nil
	}

	outcome.Kind = AttemptSuccess
	return outcome, payload
}

func (d *Dispatcher) pause(ctx context.Context) bool {
	if d.cfg.RetryBackoff <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d.cfg.RetryBackoff)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Dispatcher) timeoutFor(provider Provider) time.Duration {
	if provider.Config.Timeout > 0 {
		return provider.Config.Timeout
	}
	return d.cfg.DefaultTimeout
}
