package ai

import (
	"embed"
	"fmt"
	"html"
	"regexp"
	"strings"
	"text/template"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// PromptRenderer turns an operation and its params into provider prompt text.
type PromptRenderer interface {
	Render(op OpType, params Params) (Prompt, error)
}

var promptRoles = map[OpType]string{
	OpGenerateQuestions: "You write exam-quality practice questions.",
	OpSmartGrading:      "You grade student answers fairly and explain the score.",
	OpRecommendation:    "You recommend what a learner should study next.",
	OpPathPlanning:      "You plan structured learning paths.",
	OpErrorAnalysis:     "You diagnose why a student got a question wrong.",
	OpMotivationPlan:    "You coach learners and keep them motivated.",
	OpStyleAnalysis:     "You analyse how a learner prefers to study.",
	OpAbilityAssessment: "You assess learner abilities from study statistics.",
	OpExamGeneration:    "You assemble balanced exams.",
	OpLearningReport:    "You write concise daily learning reports.",
}

// TemplateRenderer renders the embedded prompt templates. String params that
// carry HTML tags are stripped of them before they reach a template; anything
// else, including a bare "x < y", is passed through verbatim.
type TemplateRenderer struct {
	templates *template.Template
	policy    *bluemonday.Policy
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	templates, err := template.New("").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"join":   strings.Join,
			"counts": formatCounts,
		}).
		ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}
	return &TemplateRenderer{templates: templates, policy: bluemonday.StrictPolicy()}, nil
}

// Missing returns the operations in ops with no prompt template.
func (r *TemplateRenderer) Missing(ops []OpType) []OpType {
	var missing []OpType
	for _, op := range ops {
		if r.templates.Lookup(string(op)) == nil {
			missing = append(missing, op)
		}
	}
	return missing
}

func (r *TemplateRenderer) Render(op OpType, params Params) (Prompt, error) {
	shape, ok := ShapeFor(op)
	if !ok {
		return Prompt{}, fmt.Errorf("render prompt: unknown operation %s", op)
	}

	var system strings.Builder
	if err := r.templates.ExecuteTemplate(&system, "system", map[string]string{
		"Role":  promptRoles[op],
		"Shape": shape.describe(),
	}); err != nil {
		return Prompt{}, fmt.Errorf("render %s system prompt: %w", op, err)
	}

	data := make(map[string]any, len(params))
	for _, param := range params {
		data[param.Name] = r.sanitize(param.Value)
	}
	var user strings.Builder
	if err := r.templates.ExecuteTemplate(&user, string(op), data); err != nil {
		return Prompt{}, fmt.Errorf("render %s prompt: %w", op, err)
	}

	return Prompt{System: system.String(), User: strings.TrimSpace(user.String())}, nil
}

func (r *TemplateRenderer) sanitize(value any) any {
	switch v := value.(type) {
	case string:
		return r.clean(v)
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = r.clean(item)
		}
		return out
	case map[string]int:
		out := make(map[string]int, len(v))
		for key, count := range v {
			out[r.clean(key)] = count
		}
		return out
	}
	return value
}

var tagPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^<>]*>`)

// clean strips markup from text. The policy output is HTML-escaped, so it is
// unescaped again: prompts are plain text.
func (r *TemplateRenderer) clean(text string) string {
	text = strings.TrimSpace(text)
	if !containsMarkup(text) {
		return text
	}
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(text)))
}

// containsMarkup reports whether text holds a tag naming a known HTML element.
// Comparisons such as "x<y and y>z" do not.
func containsMarkup(text string) bool {
	for _, match := range tagPattern.FindAllStringSubmatch(text, -1) {
		if atom.Lookup([]byte(strings.ToLower(match[1]))) != 0 {
			return true
		}
	}
	return false
}

func formatCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, key := range sortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[key]))
	}
	return strings.Join(parts, ", ")
}
