package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type stubCompleter struct {
	mu       sync.Mutex
	calls    int32
	requests []CompletionRequest
	respond  func(ctx context.Context) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(ctx)
}

func (s *stubCompleter) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func replying(text string) *stubCompleter {
	return &stubCompleter{respond: func(context.Context) (string, error) { return text, nil }}
}

func failing(err error) *stubCompleter {
	return &stubCompleter{respond: func(context.Context) (string, error) { return "", err }}
}

// hanging waits for the call context, the way a well-behaved client times out.
func hanging() *stubCompleter {
	return &stubCompleter{respond: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}

// stuck ignores its context entirely until release is closed.
func stuck(release <-chan struct{}) *stubCompleter {
	return &stubCompleter{respond: func(context.Context) (string, error) {
		<-release
		return "", nil
	}}
}

func provider(id string, priority int, client Completer) Provider {
	return Provider{
		Config: ProviderConfig{ID: id, Priority: priority, Model: "test-model", Timeout: time.Second},
		Client: client,
	}
}

type recordingSink struct {
	mu       sync.Mutex
	outcomes []AttemptOutcome
}

func (s *recordingSink) Observe(_ context.Context, _ OpType, outcome AttemptOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

func (s *recordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes)
}

const validGradingJSON = `{
  "score": 8,
  "accuracyScore": 80,
  "logicScore": 75,
  "expressionScore": 70,
  "creativityScore": 60,
  "feedback": {"strengths": ["clear"], "weaknesses": [], "suggestions": ["add an example"]},
  "encouragement": "Nice work"
}`

const validQuestionsJSON = `[
  {"content": "2 + 2 = ?", "questionType": "single_choice", "options": ["3", "4"], "answer": "4", "explanation": "basic addition", "difficulty": 1}
]`
