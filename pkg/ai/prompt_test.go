package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplatesCoverEveryOperation(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	require.Empty(t, renderer.Missing(Operations()))

	for op, params := range sampleParams() {
		prompt, err := renderer.Render(op, params)
		require.NoError(t, err, "op %s", op)
		require.NotEmpty(t, prompt.User, "op %s", op)
		require.Contains(t, prompt.System, "single JSON document")
	}
}

func TestRenderIncludesShapeAndParams(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	prompt, err := renderer.Render(OpGenerateQuestions, GenerateQuestionsInput{Subject: "algebra", Difficulty: 4, Count: 3, QuestionType: QuestionTrueFalse}.params())
	require.NoError(t, err)
	require.Contains(t, prompt.User, `subject "algebra"`)
	require.Contains(t, prompt.User, "exactly 3 questions")
	require.Contains(t, prompt.System, `"questionType": "single_choice"|"multiple_choice"`)

	exam, err := renderer.Render(OpExamGeneration, ExamGenerationInput{Subject: "math", Difficulty: 2, ExamType: "final", Distribution: map[string]int{"true_false": 2, "fill_blank": 1}}.params())
	require.NoError(t, err)
	require.Contains(t, exam.User, "fill_blank=1, true_false=2")
}

func TestRenderStripsMarkupFromParams(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	prompt, err := renderer.Render(OpErrorAnalysis, ErrorAnalysisInput{
		QuestionContent: "<script>alert(1)</script>What is 2+2?",
		UserAnswer:      "<b>5</b>",
		CorrectAnswer:   "4",
		Subject:         "math",
	}.params())
	require.NoError(t, err)
	require.NotContains(t, prompt.User, "<script>")
	require.NotContains(t, prompt.User, "<b>")
	require.Contains(t, prompt.User, "Student answer: 5")
}

func TestRenderKeepsComparisonsAndQuotesVerbatim(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	prompt, err := renderer.Render(OpSmartGrading, SmartGradingInput{
		QuestionContent: "Is x<y and y>z?",
		StandardAnswer:  "x < z because x<y and y>z",
		StudentAnswer:   "Tom's answer: 2 < 3",
		QuestionType:    QuestionShortAnswer,
		MaxScore:        10,
	}.params())
	require.NoError(t, err)
	require.Contains(t, prompt.User, "Is x<y and y>z?")
	require.Contains(t, prompt.User, "x < z because x<y and y>z")
	require.Contains(t, prompt.User, "Tom's answer: 2 < 3")
	require.NotContains(t, prompt.User, "&lt;")
	require.NotContains(t, prompt.User, "&#39;")
}

func TestRenderUnescapesTextAroundStrippedMarkup(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	prompt, err := renderer.Render(OpErrorAnalysis, ErrorAnalysisInput{
		QuestionContent: "<p>Why is 1 < 2 & 2 > 1?</p>",
		UserAnswer:      "<i>it's obvious</i>",
		CorrectAnswer:   "ordering",
		Subject:         "math",
	}.params())
	require.NoError(t, err)
	require.NotContains(t, prompt.User, "<p>")
	require.Contains(t, prompt.User, "Why is 1 < 2 & 2 > 1?")
	require.Contains(t, prompt.User, "Student answer: it's obvious")
}

func TestRenderFailsOnMissingParams(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, err = renderer.Render(OpSmartGrading, Params{{Name: "question_content", Value: "q"}})
	require.Error(t, err)
}
