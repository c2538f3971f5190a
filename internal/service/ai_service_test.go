package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-ai/internal/dto"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

type fakeOrchestrator struct {
	result ai.OperationResult
	err    error
	calls  int
	last   any
}

func (f *fakeOrchestrator) reply(in any) (ai.OperationResult, error) {
	f.calls++
	f.last = in
	return f.result, f.err
}

func (f *fakeOrchestrator) GenerateQuestions(_ context.Context, in ai.GenerateQuestionsInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) SmartGrading(_ context.Context, in ai.SmartGradingInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) Recommend(_ context.Context, in ai.RecommendationInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) PlanLearningPath(_ context.Context, in ai.PathPlanningInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) AnalyzeError(_ context.Context, in ai.ErrorAnalysisInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) PlanMotivation(_ context.Context, in ai.MotivationPlanInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) AnalyzeLearningStyle(_ context.Context, in ai.StyleAnalysisInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) AssessAbility(_ context.Context, in ai.AbilityAssessmentInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) GenerateExam(_ context.Context, in ai.ExamGenerationInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func (f *fakeOrchestrator) LearningReport(_ context.Context, in ai.LearningReportInput) (ai.OperationResult, error) {
	return f.reply(in)
}

func TestAIServiceRejectsInvalidPayloadBeforeOrchestrating(t *testing.T) {
	orchestrator := &fakeOrchestrator{}
	svc := NewAIService(orchestrator, validator.New(), zerolog.Nop())

	_, err := svc.GenerateQuestions(context.Background(), dto.GenerateQuestionsRequest{Subject: "math", Difficulty: 9, Count: 3})
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
	require.Zero(t, orchestrator.calls)
}

func TestAIServiceMapsRequestAndMeta(t *testing.T) {
	orchestrator := &fakeOrchestrator{result: ai.OperationResult{
		Op:      ai.OpSmartGrading,
		Success: true,
		Source:  ai.ProviderSource("deepseek"),
		Payload: map[string]any{"score": 8.0},
		Attempts: []ai.AttemptOutcome{
			{ProviderID: "primary", Kind: ai.AttemptTimeout, Pass: 1, Elapsed: 1500 * time.Millisecond},
			{ProviderID: "deepseek", Kind: ai.AttemptSuccess, Pass: 1, Elapsed: 250 * time.Millisecond},
		},
		Fingerprint: "abc123",
	}}
	svc := NewAIService(orchestrator, validator.New(), zerolog.Nop())

	resp, err := svc.SmartGrading(context.Background(), dto.SmartGradingRequest{
		QuestionContent: "What is 2+2?",
		StandardAnswer:  "4",
		StudentAnswer:   "4",
		MaxScore:        10,
	})
	require.NoError(t, err)
	require.Equal(t, 1, orchestrator.calls)
	require.Equal(t, ai.SmartGradingInput{
		QuestionContent: "What is 2+2?",
		StandardAnswer:  "4",
		StudentAnswer:   "4",
		MaxScore:        10,
	}, orchestrator.last)

	require.Equal(t, map[string]any{"score": 8.0}, resp.Data)
	require.Equal(t, "smart_grading", resp.Meta.Operation)
	require.Equal(t, "provider", resp.Meta.Source)
	require.Equal(t, "deepseek", resp.Meta.Provider)
	require.Equal(t, "abc123", resp.Meta.Fingerprint)
	require.Len(t, resp.Meta.Attempts, 2)
	require.Equal(t, "timeout", resp.Meta.Attempts[0].Outcome)
	require.InDelta(t, 1500, resp.Meta.Attempts[0].ElapsedMs, 0.001)
}

func TestAIServicePropagatesOrchestratorError(t *testing.T) {
	orchestrator := &fakeOrchestrator{err: errors.New("boom")}
	svc := NewAIService(orchestrator, validator.New(), zerolog.Nop())

	_, err := svc.AnalyzeError(context.Background(), dto.ErrorAnalysisRequest{
		QuestionContent: "2+2",
		UserAnswer:      "5",
		CorrectAnswer:   "4",
	})
	require.EqualError(t, err, "boom")
}

func TestAIServiceServesFallbackWithoutProviders(t *testing.T) {
	orchestrator, err := ai.New(ai.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	svc := NewAIService(orchestrator, validator.New(), zerolog.Nop())

	resp, err := svc.GenerateExam(context.Background(), dto.ExamGenerationRequest{
		Subject:      "physics",
		Difficulty:   2,
		Distribution: map[string]int{"single_choice": 2, "true_false": 1},
	})
	require.NoError(t, err)
	require.Equal(t, "fallback", resp.Meta.Source)
	require.Empty(t, resp.Meta.Attempts)
	require.NotEmpty(t, resp.Meta.Fingerprint)

	exam, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Len(t, exam["questions"], 3)
}

func TestAIServiceSurfacesInvalidInputFromOrchestrator(t *testing.T) {
	orchestrator, err := ai.New(ai.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	svc := NewAIService(orchestrator, validator.New(), zerolog.Nop())

	_, err = svc.GenerateQuestions(context.Background(), dto.GenerateQuestionsRequest{
		Subject:    "   ",
		Difficulty: 1,
		Count:      1,
	})
	require.ErrorIs(t, err, ai.ErrInvalidInput)
}
