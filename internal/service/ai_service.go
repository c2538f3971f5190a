package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-ai/internal/dto"
	"github.com/noah-isme/gema-ai/internal/observability"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

// Orchestrator is the subset of *ai.Orchestrator the service depends on.
type Orchestrator interface {
	GenerateQuestions(ctx context.Context, in ai.GenerateQuestionsInput) (ai.OperationResult, error)
	SmartGrading(ctx context.Context, in ai.SmartGradingInput) (ai.OperationResult, error)
	Recommend(ctx context.Context, in ai.RecommendationInput) (ai.OperationResult, error)
	PlanLearningPath(ctx context.Context, in ai.PathPlanningInput) (ai.OperationResult, error)
	AnalyzeError(ctx context.Context, in ai.ErrorAnalysisInput) (ai.OperationResult, error)
	PlanMotivation(ctx context.Context, in ai.MotivationPlanInput) (ai.OperationResult, error)
	AnalyzeLearningStyle(ctx context.Context, in ai.StyleAnalysisInput) (ai.OperationResult, error)
	AssessAbility(ctx context.Context, in ai.AbilityAssessmentInput) (ai.OperationResult, error)
	GenerateExam(ctx context.Context, in ai.ExamGenerationInput) (ai.OperationResult, error)
	LearningReport(ctx context.Context, in ai.LearningReportInput) (ai.OperationResult, error)
}

// AIService validates HTTP payloads and runs them through the orchestrator.
type AIService interface {
	GenerateQuestions(ctx context.Context, req dto.GenerateQuestionsRequest) (dto.AIResponse, error)
	SmartGrading(ctx context.Context, req dto.SmartGradingRequest) (dto.AIResponse, error)
	Recommend(ctx context.Context, req dto.RecommendationRequest) (dto.AIResponse, error)
	PlanLearningPath(ctx context.Context, req dto.LearningPathRequest) (dto.AIResponse, error)
	AnalyzeError(ctx context.Context, req dto.ErrorAnalysisRequest) (dto.AIResponse, error)
	PlanMotivation(ctx context.Context, req dto.MotivationRequest) (dto.AIResponse, error)
	AnalyzeLearningStyle(ctx context.Context, req dto.LearningStyleRequest) (dto.AIResponse, error)
	AssessAbility(ctx context.Context, req dto.AbilityAssessmentRequest) (dto.AIResponse, error)
	GenerateExam(ctx context.Context, req dto.ExamGenerationRequest) (dto.AIResponse, error)
	LearningReport(ctx context.Context, req dto.LearningReportRequest) (dto.AIResponse, error)
}

type aiService struct {
	orchestrator Orchestrator
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewAIService constructs the AI service.
func NewAIService(orchestrator Orchestrator, validate *validator.Validate, logger zerolog.Logger) AIService {
	return &aiService{
		orchestrator: orchestrator,
		validator:    validate,
		logger:       logger.With().Str("component", "ai_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/gema-ai/internal/service/ai"),
	}
}

func (s *aiService) GenerateQuestions(ctx context.Context, req dto.GenerateQuestionsRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpGenerateQuestions, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.GenerateQuestions(ctx, ai.GenerateQuestionsInput{
			Subject:      req.Subject,
			Difficulty:   req.Difficulty,
			Count:        req.Count,
			QuestionType: req.QuestionType,
		})
	})
}

func (s *aiService) SmartGrading(ctx context.Context, req dto.SmartGradingRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpSmartGrading, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.SmartGrading(ctx, ai.SmartGradingInput{
			QuestionContent: req.QuestionContent,
			StandardAnswer:  req.StandardAnswer,
			StudentAnswer:   req.StudentAnswer,
			QuestionType:    req.QuestionType,
			MaxScore:        req.MaxScore,
		})
	})
}

func (s *aiService) Recommend(ctx context.Context, req dto.RecommendationRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpRecommendation, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.Recommend(ctx, ai.RecommendationInput{
			Subject:    req.Subject,
			StudyLevel: req.StudyLevel,
			Accuracy:   req.Accuracy,
			WeakPoints: req.WeakPoints,
			Count:      req.Count,
		})
	})
}

func (s *aiService) PlanLearningPath(ctx context.Context, req dto.LearningPathRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpPathPlanning, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.PlanLearningPath(ctx, ai.PathPlanningInput{
			TargetSkill:  req.TargetSkill,
			CurrentLevel: req.CurrentLevel,
			WeeklyHours:  req.WeeklyHours,
		})
	})
}

func (s *aiService) AnalyzeError(ctx context.Context, req dto.ErrorAnalysisRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpErrorAnalysis, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.AnalyzeError(ctx, ai.ErrorAnalysisInput{
			QuestionContent: req.QuestionContent,
			UserAnswer:      req.UserAnswer,
			CorrectAnswer:   req.CorrectAnswer,
			Subject:         req.Subject,
		})
	})
}

func (s *aiService) PlanMotivation(ctx context.Context, req dto.MotivationRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpMotivationPlan, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.PlanMotivation(ctx, ai.MotivationPlanInput{
			LearningStatus: req.LearningStatus,
			Difficulties:   req.Difficulties,
			Goals:          req.Goals,
			Achievements:   req.Achievements,
		})
	})
}

func (s *aiService) AnalyzeLearningStyle(ctx context.Context, req dto.LearningStyleRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpStyleAnalysis, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.AnalyzeLearningStyle(ctx, ai.StyleAnalysisInput{
			StudyMinutes:           req.StudyMinutes,
			Accuracy:               req.Accuracy,
			LearningDays:           req.LearningDays,
			LearningMode:           req.LearningMode,
			ReviewFrequency:        req.ReviewFrequency,
			QuestionTypePreference: req.QuestionTypePreference,
		})
	})
}

func (s *aiService) AssessAbility(ctx context.Context, req dto.AbilityAssessmentRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpAbilityAssessment, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.AssessAbility(ctx, ai.AbilityAssessmentInput{
			StudyMinutes:       req.StudyMinutes,
			QuestionsCompleted: req.QuestionsCompleted,
			Accuracy:           req.Accuracy,
			Subjects:           req.Subjects,
			WrongDistribution:  req.WrongDistribution,
		})
	})
}

func (s *aiService) GenerateExam(ctx context.Context, req dto.ExamGenerationRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpExamGeneration, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.GenerateExam(ctx, ai.ExamGenerationInput{
			Subject:      req.Subject,
			Difficulty:   req.Difficulty,
			ExamType:     req.ExamType,
			Distribution: req.Distribution,
		})
	})
}

func (s *aiService) LearningReport(ctx context.Context, req dto.LearningReportRequest) (dto.AIResponse, error) {
	return s.run(ctx, ai.OpLearningReport, req, func(ctx context.Context) (ai.OperationResult, error) {
		return s.orchestrator.LearningReport(ctx, ai.LearningReportInput{
			StudyMinutes:      req.StudyMinutes,
			QuestionsAnswered: req.QuestionsAnswered,
			Accuracy:          req.Accuracy,
			WeakSubjects:      req.WeakSubjects,
		})
	})
}

func (s *aiService) run(ctx context.Context, op ai.OpType, payload interface{}, call func(context.Context) (ai.OperationResult, error)) (dto.AIResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AIResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "ai."+string(op), trace.WithAttributes(attribute.String("ai.operation", string(op))))
	defer span.End()

	result, err := call(spanCtx)
	if err != nil {
		span.RecordError(err)
		return dto.AIResponse{}, err
	}

	observability.RecordResult(op, result.Source)
	span.SetAttributes(
		attribute.String("ai.source", string(result.Source.Kind)),
		attribute.String("ai.provider", result.Source.ProviderID),
		attribute.Int("ai.attempts", len(result.Attempts)),
	)
	if result.Source.Kind == ai.SourceFallback {
		s.logger.Warn().Str("operation", string(op)).Int("attempts", len(result.Attempts)).Msg("served fallback payload")
	}

	return dto.AIResponse{Data: result.Payload, Meta: resultMeta(result)}, nil
}

func resultMeta(result ai.OperationResult) dto.AIResultMeta {
	attempts := make([]dto.AIAttempt, 0, len(result.Attempts))
	for _, attempt := range result.Attempts {
		attempts = append(attempts, dto.AIAttempt{
			Provider:  attempt.ProviderID,
			Outcome:   string(attempt.Kind),
			Pass:      attempt.Pass,
			ElapsedMs: float64(attempt.Elapsed) / float64(time.Millisecond),
		})
	}
	return dto.AIResultMeta{
		Operation:   string(result.Op),
		Source:      string(result.Source.Kind),
		Provider:    result.Source.ProviderID,
		Fingerprint: result.Fingerprint,
		Attempts:    attempts,
	}
}
