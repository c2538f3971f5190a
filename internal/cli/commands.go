// Package cli implements the aictl commands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-ai/internal/bootstrap"
	"github.com/noah-isme/gema-ai/internal/config"
	"github.com/noah-isme/gema-ai/internal/dto"
	"github.com/noah-isme/gema-ai/internal/service"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

// Env carries what the commands need from the process. Tests replace the
// loader and client factory.
type Env struct {
	LoadConfig func() (config.Config, error)
	Factory    ai.ClientFactory
	Logger     zerolog.Logger
}

// DefaultEnv reads configuration from the environment and talks to real providers.
func DefaultEnv() Env {
	return Env{
		LoadConfig: config.Load,
		Factory:    ai.NewClient,
		Logger:     zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel),
	}
}

// NewCheckCmd creates the 'check' command.
func NewCheckCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration, providers, prompts and fallbacks",
		Long: `Loads the configuration exactly as the API does and builds the orchestrator.
Fails when a provider is misconfigured or an operation lacks a prompt,
output shape or fallback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}
			resources, err := bootstrap.Build(cmd.Context(), cfg, env.Factory, env.Logger)
			if err != nil {
				return err
			}
			defer resources.Close()

			out := cmd.OutOrStdout()
			cache := "disabled"
			if cfg.AI.CacheEnabled {
				cache = fmt.Sprintf("%s (ttl %s)", cfg.AI.CacheBackend, cfg.AI.CacheTTL)
			}
			fmt.Fprintf(out, "operations: %d\n", len(ai.Operations()))
			fmt.Fprintf(out, "cache:      %s\n", cache)
			fmt.Fprintf(out, "passes:     %d\n", cfg.AI.RetryPasses)
			fmt.Fprintf(out, "providers:  %d\n", resources.Orchestrator.ProviderCount())

			writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, provider := range bootstrap.ProviderConfigs(cfg.AI) {
				fmt.Fprintf(writer, "  %s\tpriority %d\t%s\ttimeout %s\n", provider.ID, provider.Priority, provider.Model, provider.Timeout)
			}
			if err := writer.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

// NewOpsCmd creates the 'ops' command.
func NewOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List supported operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "OPERATION\tCACHED")
			for _, op := range ai.Operations() {
				fmt.Fprintf(writer, "%s\t%t\n", op, ai.Cacheable(op))
			}
			return writer.Flush()
		},
	}
}

// NewRunCmd creates the 'run' command.
func NewRunCmd(env Env) *cobra.Command {
	var (
		params       string
		fallbackOnly bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <operation>",
		Short: "Run one operation and print the result",
		Example: `  aictl run smart_grading -p '{"question_content":"2+2?","standard_answer":"4","student_answer":"4"}'
  aictl run generate_questions --fallback-only -p '{"subject":"algebra","difficulty":2,"count":3}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, ok := runners[ai.OpType(args[0])]
			if !ok {
				return fmt.Errorf("unknown operation %q, see 'aictl ops'", args[0])
			}

			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}
			if fallbackOnly {
				cfg.AI.Providers = nil
			}
			resources, err := bootstrap.Build(cmd.Context(), cfg, env.Factory, env.Logger)
			if err != nil {
				return err
			}
			defer resources.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			svc := service.NewAIService(resources.Orchestrator, service.NewValidator(), env.Logger)
			resp, err := run(ctx, svc, []byte(params))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&params, "params", "p", "{}", "Operation parameters as a JSON object")
	cmd.Flags().BoolVar(&fallbackOnly, "fallback-only", false, "Skip providers and serve the deterministic fallback")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall deadline for the call")

	return cmd
}

type runner func(ctx context.Context, svc service.AIService, raw []byte) (dto.AIResponse, error)

var runners = map[ai.OpType]runner{
	ai.OpGenerateQuestions: decodeAndRun(func(svc service.AIService) func(context.Context, dto.GenerateQuestionsRequest) (dto.AIResponse, error) {
		return svc.GenerateQuestions
	}),
	ai.OpSmartGrading: decodeAndRun(func(svc service.AIService) func(context.Context, dto.SmartGradingRequest) (dto.AIResponse, error) {
		return svc.SmartGrading
	}),
	ai.OpRecommendation: decodeAndRun(func(svc service.AIService) func(context.Context, dto.RecommendationRequest) (dto.AIResponse, error) {
		return svc.Recommend
	}),
	ai.OpPathPlanning: decodeAndRun(func(svc service.AIService) func(context.Context, dto.LearningPathRequest) (dto.AIResponse, error) {
		return svc.PlanLearningPath
	}),
	ai.OpErrorAnalysis: decodeAndRun(func(svc service.AIService) func(context.Context, dto.ErrorAnalysisRequest) (dto.AIResponse, error) {
		return svc.AnalyzeError
	}),
	ai.OpMotivationPlan: decodeAndRun(func(svc service.AIService) func(context.Context, dto.MotivationRequest) (dto.AIResponse, error) {
		return svc.PlanMotivation
	}),
	ai.OpStyleAnalysis: decodeAndRun(func(svc service.AIService) func(context.Context, dto.LearningStyleRequest) (dto.AIResponse, error) {
		return svc.AnalyzeLearningStyle
	}),
	ai.OpAbilityAssessment: decodeAndRun(func(svc service.AIService) func(context.Context, dto.AbilityAssessmentRequest) (dto.AIResponse, error) {
		return svc.AssessAbility
	}),
	ai.OpExamGeneration: decodeAndRun(func(svc service.AIService) func(context.Context, dto.ExamGenerationRequest) (dto.AIResponse, error) {
		return svc.GenerateExam
	}),
	ai.OpLearningReport: decodeAndRun(func(svc service.AIService) func(context.Context, dto.LearningReportRequest) (dto.AIResponse, error) {
		return svc.LearningReport
	}),
}

func decodeAndRun[T any](method func(service.AIService) func(context.Context, T) (dto.AIResponse, error)) runner {
	return func(ctx context.Context, svc service.AIService, raw []byte) (dto.AIResponse, error) {
		var req T
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return dto.AIResponse{}, fmt.Errorf("invalid --params: %w", err)
		}
		return method(svc)(ctx, req)
	}
}

func writeJSON(out io.Writer, resp dto.AIResponse) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"data": resp.Data,
		"meta": resp.Meta,
	})
}
