package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleParams() map[OpType]Params {
	return map[OpType]Params{
		OpGenerateQuestions: GenerateQuestionsInput{Subject: "math", Difficulty: 3, Count: 5, QuestionType: QuestionSingleChoice}.params(),
		OpSmartGrading: SmartGradingInput{
			QuestionContent: "What is photosynthesis?",
			StandardAnswer:  "Plants convert light energy into chemical energy",
			StudentAnswer:   "Plants convert light into energy",
			QuestionType:    QuestionShortAnswer,
			MaxScore:        10,
		}.params(),
		OpRecommendation: RecommendationInput{Subject: "physics", StudyLevel: "intermediate", Accuracy: 55, WeakPoints: []string{"optics"}, Count: 3}.params(),
		OpPathPlanning:   PathPlanningInput{TargetSkill: "calculus", CurrentLevel: "intermediate", WeeklyHours: 6}.params(),
		OpErrorAnalysis:  ErrorAnalysisInput{QuestionContent: "12 * 12", UserAnswer: "124", CorrectAnswer: "144", Subject: "math"}.params(),
		OpMotivationPlan: MotivationPlanInput{LearningStatus: "tired", Difficulties: []string{"time"}, Goals: []string{"pass exam"}, Achievements: []string{"7-day streak"}}.params(),
		OpStyleAnalysis: StyleAnalysisInput{
			StudyMinutes: 600, Accuracy: 72, LearningDays: 10, LearningMode: "visual", ReviewFrequency: 3,
			QuestionTypePreference: map[string]int{"single_choice": 10, "fill_blank": 4},
		}.params(),
		OpAbilityAssessment: AbilityAssessmentInput{StudyMinutes: 300, QuestionsCompleted: 120, Accuracy: 81, Subjects: []string{"math", "physics"}, WrongDistribution: map[string]int{"math": 3, "physics": 9}}.params(),
		OpExamGeneration:    ExamGenerationInput{Subject: "chemistry", Difficulty: 2, ExamType: "midterm", Distribution: map[string]int{"single_choice": 4, "true_false": 2, "short_answer": 1}}.params(),
		OpLearningReport:    LearningReportInput{StudyMinutes: 45, QuestionsAnswered: 30, Accuracy: 64, WeakSubjects: []string{"history"}}.params(),
	}
}

func TestFallbacksCoverEveryOperation(t *testing.T) {
	require.Empty(t, DefaultFallbacks().Missing(Operations()))
}

func TestFallbacksAreSchemaValidAndDeterministic(t *testing.T) {
	validator := NewValidator()
	fallbacks := DefaultFallbacks()
	samples := sampleParams()

	for _, op := range Operations() {
		for _, params := range []Params{samples[op], nil} {
			payload := fallbacks.Generate(op, params)
			require.NoError(t, validator.Check(op, payload), "op %s params %v", op, params)
			require.Equal(t, payload, fallbacks.Generate(op, params), "op %s must be deterministic", op)
		}
	}
}

func TestFallbackQuestionsHonourCount(t *testing.T) {
	payload := DefaultFallbacks().Generate(OpGenerateQuestions, GenerateQuestionsInput{Subject: "math", Difficulty: 3, Count: 5}.params())

	questions := payload.([]any)
	require.Len(t, questions, 5)
	for _, item := range questions {
		question := item.(map[string]any)
		require.Equal(t, 3.0, question["difficulty"])
		require.Contains(t, question["content"], "math")
	}
}

func TestFallbackGradingScalesTokenOverlap(t *testing.T) {
	grade := func(standard, student string, maxScore float64) map[string]any {
		params := SmartGradingInput{QuestionContent: "q", StandardAnswer: standard, StudentAnswer: student, MaxScore: maxScore}.params()
		return DefaultFallbacks().Generate(OpSmartGrading, params).(map[string]any)
	}

	identical := grade("light energy becomes chemical energy", "Light energy becomes chemical energy.", 20)
	require.Equal(t, 20.0, identical["score"])
	require.Equal(t, 100.0, identical["accuracyScore"])

	partial := grade("a b c d", "a b", 10)
	require.Equal(t, 5.0, partial["score"])

	empty := grade("a b c d", "", 10)
	require.Equal(t, 0.0, empty["score"])
	require.NotEmpty(t, empty["feedback"].(map[string]any)["weaknesses"])

	cjk := grade("光合作用", "光合", 10)
	require.Equal(t, 5.0, cjk["score"])
}

func TestFallbackRecommendationAdjustsDifficulty(t *testing.T) {
	adjustment := func(accuracy float64) any {
		params := RecommendationInput{Subject: "math", Accuracy: accuracy, Count: 2}
		require.NoError(t, params.normalize())
		return DefaultFallbacks().Generate(OpRecommendation, params.params()).(map[string]any)["difficultyAdjustment"]
	}

	require.Equal(t, "increase", adjustment(95))
	require.Equal(t, "maintain", adjustment(75))
	require.Equal(t, "decrease", adjustment(40))
}

func TestFallbackRecommendationPutsWeakPointsFirst(t *testing.T) {
	params := RecommendationInput{Subject: "math", Accuracy: 70, WeakPoints: []string{"fractions", "ratios", "angles"}, Count: 2}.params()
	items := DefaultFallbacks().Generate(OpRecommendation, params).(map[string]any)["items"].([]any)

	require.Len(t, items, 2)
	require.Equal(t, "fractions", items[0].(map[string]any)["topic"])
	require.Equal(t, "high", items[1].(map[string]any)["priority"])
}

func TestFallbackExamFollowsDistribution(t *testing.T) {
	params := ExamGenerationInput{Subject: "biology", Difficulty: 2, Distribution: map[string]int{"multiple_choice": 2, "short_answer": 1}}.params()
	exam := DefaultFallbacks().Generate(OpExamGeneration, params).(map[string]any)

	questions := exam["questions"].([]any)
	require.Len(t, questions, 3)
	require.Equal(t, 11.0, exam["totalScore"])
	require.Equal(t, 10.0, exam["durationMinutes"])
	require.Equal(t, "multiple_choice", questions[0].(map[string]any)["questionType"])
	require.Equal(t, "short_answer", questions[2].(map[string]any)["questionType"])
}

func TestFallbackErrorAnalysisClassifiesMistakes(t *testing.T) {
	classify := func(user, correct string) any {
		params := ErrorAnalysisInput{QuestionContent: "q", UserAnswer: user, CorrectAnswer: correct}.params()
		return DefaultFallbacks().Generate(OpErrorAnalysis, params).(map[string]any)["errorType"]
	}

	require.Equal(t, "comprehension", classify("", "144"))
	require.Equal(t, "calculation", classify("124", "144"))
	require.Equal(t, "conceptual", classify("the moon", "photosynthesis in plants"))
}

func TestGenerateWithoutFallbackPanics(t *testing.T) {
	require.Panics(t, func() {
		FallbackTable{}.Generate(OpSmartGrading, nil)
	})
}
