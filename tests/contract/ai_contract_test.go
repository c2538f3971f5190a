package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-ai/internal/handler"
	"github.com/noah-isme/gema-ai/internal/service"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

type operationCase struct {
	op   ai.OpType
	path string
	body string
}

var operationCases = []operationCase{
	{ai.OpGenerateQuestions, "generate-questions", `{"subject":"algebra","difficulty":3,"count":4,"question_type":"multiple_choice"}`},
	{ai.OpSmartGrading, "smart-grading", `{"question_content":"Explain photosynthesis","standard_answer":"plants convert light into chemical energy","student_answer":"plants use light to make energy","max_score":20}`},
	{ai.OpRecommendation, "recommendations", `{"subject":"physics","study_level":"intermediate","accuracy":58,"weak_points":["vectors","friction"],"count":4}`},
	{ai.OpPathPlanning, "learning-path", `{"target_skill":"data structures","current_level":"intermediate","weekly_hours":8}`},
	{ai.OpErrorAnalysis, "error-analysis", `{"question_content":"12 x 12","user_answer":"124","correct_answer":"144","subject":"math"}`},
	{ai.OpMotivationPlan, "motivation", `{"learning_status":"losing focus","difficulties":["time"],"goals":["finish unit 3"],"achievements":["7 day streak"]}`},
	{ai.OpStyleAnalysis, "learning-style", `{"study_minutes":900,"accuracy":74,"learning_days":12,"learning_mode":"video","review_frequency":3,"question_type_preference":{"single_choice":12,"short_answer":2}}`},
	{ai.OpAbilityAssessment, "ability-assessment", `{"study_minutes":1200,"questions_completed":340,"accuracy":88,"subjects":["math","physics"],"wrong_distribution":{"math":9,"physics":14}}`},
	{ai.OpExamGeneration, "generate-exam", `{"subject":"chemistry","difficulty":4,"exam_type":"midterm","distribution":{"single_choice":3,"true_false":2,"short_answer":1}}`},
	{ai.OpLearningReport, "learning-report", `{"study_minutes":75,"questions_answered":40,"accuracy":67,"weak_subjects":["geometry"]}`},
}

func compileSchema(t *testing.T, op ai.OpType) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "ai_"+string(op)+".schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func newApp(t *testing.T, opts ai.Options) *fiber.App {
	t.Helper()
	opts.Logger = zerolog.Nop()
	orchestrator, err := ai.New(opts)
	require.NoError(t, err)

	app := fiber.New()
	svc := service.NewAIService(orchestrator, service.NewValidator(), zerolog.Nop())
	handler.NewAIHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/ai"))
	return app
}

func call(t *testing.T, app *fiber.App, tc operationCase) (*http.Response, interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/"+tc.path, strings.NewReader(tc.body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return resp, payload
}

func TestAIFallbackContracts(t *testing.T) {
	app := newApp(t, ai.Options{})

	for _, tc := range operationCases {
		t.Run(string(tc.op), func(t *testing.T) {
			schema := compileSchema(t, tc.op)
			resp, payload := call(t, app, tc)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "fallback", resp.Header.Get(handler.SourceHeader))
			require.NoError(t, schema.Validate(payload))
		})
	}
}

type cannedCompleter struct {
	text string
}

func (c cannedCompleter) Complete(context.Context, ai.CompletionRequest) (string, error) {
	return c.text, nil
}

type brokenCompleter struct{}

func (brokenCompleter) Complete(context.Context, ai.CompletionRequest) (string, error) {
	return "I am sorry, I cannot answer in JSON today.", nil
}

const providerGrading = "```json\n" + `{
  "score": 17.5,
  "accuracyScore": 85,
  "logicScore": 90,
  "expressionScore": 80,
  "creativityScore": 70,
  "feedback": {"strengths": ["accurate"], "weaknesses": ["brief"], "suggestions": ["mention chlorophyll"]},
  "encouragement": "Nice work"
}` + "\n```"

func TestAIProviderAndCacheContracts(t *testing.T) {
	registry, err := ai.NewRegistry(
		ai.Provider{Config: ai.ProviderConfig{ID: "flaky", Priority: 0, Model: "m", Timeout: time.Second}, Client: brokenCompleter{}},
		ai.Provider{Config: ai.ProviderConfig{ID: "steady", Priority: 1, Model: "m", Timeout: time.Second}, Client: cannedCompleter{text: providerGrading}},
	)
	require.NoError(t, err)

	app := newApp(t, ai.Options{Registry: registry, Cache: ai.NewMemoryCache(8)})
	tc := operationCases[1]
	schema := compileSchema(t, tc.op)

	resp, payload := call(t, app, tc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "provider", resp.Header.Get(handler.SourceHeader))
	require.NoError(t, schema.Validate(payload))

	meta := payload.(map[string]interface{})["meta"].(map[string]interface{})
	require.Equal(t, "steady", meta["provider"])
	attempts := meta["attempts"].([]interface{})
	require.Len(t, attempts, 2)
	require.Equal(t, "parse_error", attempts[0].(map[string]interface{})["outcome"])

	resp, payload = call(t, app, tc)
	require.Equal(t, "cache", resp.Header.Get(handler.SourceHeader))
	require.NoError(t, schema.Validate(payload))
}
