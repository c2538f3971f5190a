package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCacheTTL is used when Options.CacheTTL is zero.
const DefaultCacheTTL = time.Hour

// Cacheable reports whether results of op are cached by default. Motivation
// plans and daily reports describe the learner's current state and are always
// generated fresh.
func Cacheable(op OpType) bool {
	switch op {
	case OpMotivationPlan, OpLearningReport:
		return false
	}
	return op.Valid()
}

// Options configures an Orchestrator. Zero values select the defaults.
type Options struct {
	Registry   *Registry
	Cache      Cache
	CacheTTL   time.Duration
	Fallbacks  FallbackTable
	Renderer   PromptRenderer
	Sink       AttemptSink
	Dispatch   DispatcherConfig
	Logger     zerolog.Logger
	Dispatcher RequestDispatcher
}

// Orchestrator is the entry point of the AI layer. It is safe for concurrent use.
type Orchestrator struct {
	cache      Cache
	ttl        time.Duration
	dispatcher RequestDispatcher
	renderer   PromptRenderer
	validator  *Validator
	fallbacks  FallbackTable
	logger     zerolog.Logger
}

type coverageChecker interface {
	Missing(ops []OpType) []OpType
}

// New validates opts and builds an Orchestrator. Every operation must have a
// fallback, a declared shape and, when the renderer can tell, a prompt;
// otherwise New returns a *ConfigurationError.
func New(opts Options) (*Orchestrator, error) {
	if opts.Dispatch.RetryPasses < 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("retry passes must be at least 1, got %d", opts.Dispatch.RetryPasses)}
	}

	fallbacks := opts.Fallbacks
	if fallbacks == nil {
		fallbacks = DefaultFallbacks()
	}
	if missing := fallbacks.Missing(Operations()); len(missing) > 0 {
		return nil, &ConfigurationError{Reason: "missing fallback", Missing: missing}
	}

	validator := NewValidator()
	if missing := validator.Covers(Operations()); len(missing) > 0 {
		return nil, &ConfigurationError{Reason: "missing output shape", Missing: missing}
	}

	renderer := opts.Renderer
	if renderer == nil {
		templates, err := NewTemplateRenderer()
		if err != nil {
			return nil, &ConfigurationError{Reason: err.Error()}
		}
		renderer = templates
	}
	if checker, ok := renderer.(coverageChecker); ok {
		if missing := checker.Missing(Operations()); len(missing) > 0 {
			return nil, &ConfigurationError{Reason: "missing prompt template", Missing: missing}
		}
	}

	cache := opts.Cache
	if cache == nil {
		cache = NoopCache{}
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher(opts.Registry, validator, fallbacks, opts.Sink, opts.Dispatch, opts.Logger)
	}

	return &Orchestrator{
		cache:      cache,
		ttl:        ttl,
		dispatcher: dispatcher,
		renderer:   renderer,
		validator:  validator,
		fallbacks:  fallbacks,
		logger:     opts.Logger.With().Str("component", "ai_orchestrator").Logger(),
	}, nil
}

// ReplaceRegistry swaps the provider list when the orchestrator owns its dispatcher.
func (o *Orchestrator) ReplaceRegistry(registry *Registry) bool {
	dispatcher, ok := o.dispatcher.(*Dispatcher)
	if !ok {
		return false
	}
	dispatcher.ReplaceRegistry(registry)
	return true
}

// ProviderCount returns the number of providers currently in use, or 0 when
// the dispatcher was supplied by the caller.
func (o *Orchestrator) ProviderCount() int {
	if dispatcher, ok := o.dispatcher.(*Dispatcher); ok {
		return dispatcher.Registry().Len()
	}
	return 0
}

// Execute runs one operation request: cache, then providers, then fallback.
// The only error is ErrInvalidInput for an unknown operation.
func (o *Orchestrator) Execute(ctx context.Context, req OperationRequest) (OperationResult, error) {
	if !req.Op.Valid() {
		return OperationResult{}, invalidInput("unknown operation %q", req.Op)
	}

	var fingerprint string
	if req.Cacheable {
		fingerprint = Fingerprint(req.Op, req.Params)
		if payload, ok := o.cache.Get(ctx, fingerprint); ok {
			err := o.validator.Check(req.Op, payload)
			if err == nil {
				return OperationResult{
					Op:          req.Op,
					Success:     true,
					Source:      CacheSource(),
					Payload:     payload,
					Attempts:    []AttemptOutcome{},
					Fingerprint: fingerprint,
				}, nil
			}
			o.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("ignoring cached payload that no longer matches its shape")
		}
	}

	var result OperationResult
	prompt, err := o.renderer.Render(req.Op, req.Params)
	if err != nil {
		o.logger.Error().Err(err).Str("operation", string(req.Op)).Msg("failed to render prompt, serving fallback")
		result = OperationResult{
			Op:       req.Op,
			Success:  true,
			Source:   FallbackSource(),
			Payload:  o.fallbacks.Generate(req.Op, req.Params),
			Attempts: []AttemptOutcome{},
		}
	} else {
		result = o.dispatcher.Dispatch(ctx, req, prompt)
	}
	result.Fingerprint = fingerprint

	if req.Cacheable && result.Source.Kind == SourceProvider {
		o.cache.Put(context.WithoutCancel(ctx), fingerprint, result.Payload, o.ttl)
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, op OpType, params Params) (OperationResult, error) {
	return o.Execute(ctx, OperationRequest{Op: op, Params: params, Cacheable: Cacheable(op)})
}

// GenerateQuestions returns practice questions; the payload is a list of Question.
func (o *Orchestrator) GenerateQuestions(ctx context.Context, in GenerateQuestionsInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpGenerateQuestions, in.params())
}

// SmartGrading scores a student answer against the reference answer.
func (o *Orchestrator) SmartGrading(ctx context.Context, in SmartGradingInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpSmartGrading, in.params())
}

// Recommend suggests what to study next.
func (o *Orchestrator) Recommend(ctx context.Context, in RecommendationInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpRecommendation, in.params())
}

// PlanLearningPath builds a staged path toward a target skill.
func (o *Orchestrator) PlanLearningPath(ctx context.Context, in PathPlanningInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpPathPlanning, in.params())
}

// AnalyzeError explains a wrong answer.
func (o *Orchestrator) AnalyzeError(ctx context.Context, in ErrorAnalysisInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpErrorAnalysis, in.params())
}

// PlanMotivation builds a motivation plan. Results are never cached.
func (o *Orchestrator) PlanMotivation(ctx context.Context, in MotivationPlanInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpMotivationPlan, in.params())
}

// AnalyzeLearningStyle classifies how a learner studies.
func (o *Orchestrator) AnalyzeLearningStyle(ctx context.Context, in StyleAnalysisInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpStyleAnalysis, in.params())
}

// AssessAbility rates learner abilities from study statistics.
func (o *Orchestrator) AssessAbility(ctx context.Context, in AbilityAssessmentInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpAbilityAssessment, in.params())
}

// GenerateExam assembles a scored exam.
func (o *Orchestrator) GenerateExam(ctx context.Context, in ExamGenerationInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpExamGeneration, in.params())
}

// LearningReport summarizes a study day. Results are never cached.
func (o *Orchestrator) LearningReport(ctx context.Context, in LearningReportInput) (OperationResult, error) {
	if err := in.normalize(); err != nil {
		return OperationResult{}, err
	}
	return o.run(ctx, OpLearningReport, in.params())
}
