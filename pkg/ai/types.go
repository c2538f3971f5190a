package ai

import (
	"context"
	"sort"
	"time"
)

// OpType identifies an AI-backed operation.
type OpType string

const (
	OpGenerateQuestions OpType = "generate_questions"
	OpSmartGrading      OpType = "smart_grading"
	OpRecommendation    OpType = "recommendation"
	OpPathPlanning      OpType = "path_planning"
	OpErrorAnalysis     OpType = "error_analysis"
	OpMotivationPlan    OpType = "motivation_plan"
	OpStyleAnalysis     OpType = "style_analysis"
	OpAbilityAssessment OpType = "ability_assessment"
	OpExamGeneration    OpType = "exam_generation"
	OpLearningReport    OpType = "learning_report"
)

// Operations lists every operation exposed by the Orchestrator, in a stable order.
func Operations() []OpType {
	return []OpType{
		OpGenerateQuestions,
		OpSmartGrading,
		OpRecommendation,
		OpPathPlanning,
		OpErrorAnalysis,
		OpMotivationPlan,
		OpStyleAnalysis,
		OpAbilityAssessment,
		OpExamGeneration,
		OpLearningReport,
	}
}

// Valid reports whether o is one of the declared operations.
func (o OpType) Valid() bool {
	for _, op := range Operations() {
		if op == o {
			return true
		}
	}
	return false
}

// Param is one named argument of an operation request.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered list of named arguments.
type Params []Param

// Get returns the first value bound to name.
func (p Params) Get(name string) (any, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// String returns the string bound to name, or "" when absent or not a string.
func (p Params) String(name string) string {
	value, _ := p.Get(name)
	s, _ := value.(string)
	return s
}

// Int returns the integer bound to name, or 0.
func (p Params) Int(name string) int {
	value, _ := p.Get(name)
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the number bound to name, or 0.
func (p Params) Float(name string) float64 {
	value, _ := p.Get(name)
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Strings returns the string list bound to name.
func (p Params) Strings(name string) []string {
	value, _ := p.Get(name)
	list, _ := value.([]string)
	return list
}

// Counts returns the string-to-int mapping bound to name.
func (p Params) Counts(name string) map[string]int {
	value, _ := p.Get(name)
	counts, _ := value.(map[string]int)
	return counts
}

// Names returns the parameter names in declaration order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for _, param := range p {
		names = append(names, param.Name)
	}
	return names
}

// OperationRequest is the immutable description of a single orchestration call.
type OperationRequest struct {
	Op        OpType
	Params    Params
	Cacheable bool
}

// SourceKind is the provenance class of a result.
type SourceKind string

const (
	SourceCache    SourceKind = "cache"
	SourceProvider SourceKind = "provider"
	SourceFallback SourceKind = "fallback"
)

// Source records where a payload came from.
type Source struct {
	Kind       SourceKind `json:"kind"`
	ProviderID string     `json:"provider_id,omitempty"`
}

// CacheSource marks a payload served from the response cache.
func CacheSource() Source { return Source{Kind: SourceCache} }

// ProviderSource marks a payload produced by the provider with the given id.
func ProviderSource(id string) Source { return Source{Kind: SourceProvider, ProviderID: id} }

// FallbackSource marks a payload synthesized without any provider.
func FallbackSource() Source { return Source{Kind: SourceFallback} }

func (s Source) String() string {
	if s.Kind == SourceProvider {
		return "provider(" + s.ProviderID + ")"
	}
	return string(s.Kind)
}

// AttemptKind classifies the outcome of one provider attempt.
type AttemptKind string

const (
	AttemptNetworkError AttemptKind = "network_error"
	AttemptTimeout      AttemptKind = "timeout"
	AttemptParseError   AttemptKind = "parse_error"
	AttemptSchemaError  AttemptKind = "schema_error"
	AttemptSuccess      AttemptKind = "success"
)

// AttemptOutcome is the diagnostic record of one provider call.
type AttemptOutcome struct {
	ProviderID string        `json:"provider_id,omitempty"`
	Kind       AttemptKind   `json:"kind"`
	Elapsed    time.Duration `json:"elapsed"`
	Pass       int           `json:"pass"`
	Detail     string        `json:"detail,omitempty"`
}

// OperationResult is returned to callers of the Orchestrator. Payload is a
// generic JSON tree and must be treated as read-only.
type OperationResult struct {
	Op          OpType           `json:"op"`
	Success     bool             `json:"success"`
	Source      Source           `json:"source"`
	Payload     any              `json:"payload"`
	Attempts    []AttemptOutcome `json:"attempts"`
	Fingerprint string           `json:"fingerprint,omitempty"`
}

// Prompt is the rendered text sent to providers.
type Prompt struct {
	System string
	User   string
}

// CompletionRequest is handed to a provider client for one call.
type CompletionRequest struct {
	System string
	User   string
	// JSONObject asks the provider to constrain output to a single JSON object.
	JSONObject bool
}

// Completer issues one text-generation call against a provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// AttemptSink receives every AttemptOutcome for observability.
type AttemptSink interface {
	Observe(ctx context.Context, op OpType, outcome AttemptOutcome)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
