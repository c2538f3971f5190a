package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-ai/internal/config"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

type failingClient struct{}

func (failingClient) Complete(context.Context, ai.CompletionRequest) (string, error) {
	return "", errors.New("connection refused")
}

func testEnv(providers ...config.ProviderConfig) Env {
	return Env{
		LoadConfig: func() (config.Config, error) {
			return config.Config{
				AppName: "GEMA AI",
				AI: config.AIConfig{
					CacheEnabled:  true,
					CacheBackend:  config.CacheBackendMemory,
					CacheTTL:      time.Hour,
					CacheCapacity: 8,
					RetryPasses:   1,
					Timeout:       time.Second,
					Providers:     providers,
				},
			}, nil
		},
		Factory: func(ai.ProviderConfig) (ai.Completer, error) { return failingClient{}, nil },
		Logger:  zerolog.Nop(),
	}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOpsListsEveryOperation(t *testing.T) {
	out, err := execute(t, NewOpsCmd())
	require.NoError(t, err)
	for _, op := range ai.Operations() {
		require.Contains(t, out, string(op))
	}
	require.Contains(t, out, "motivation_plan")
}

func TestCheckReportsProviders(t *testing.T) {
	env := testEnv(config.ProviderConfig{ID: "deepseek", Model: "deepseek-chat", Credential: "k", Timeout: 5 * time.Second})

	out, err := execute(t, NewCheckCmd(env))
	require.NoError(t, err)
	require.Contains(t, out, "providers:  1")
	require.Contains(t, out, "deepseek")
	require.Contains(t, out, "ok")
}

func TestCheckFailsOnInvalidProvider(t *testing.T) {
	env := testEnv(config.ProviderConfig{ID: "broken"})

	_, err := execute(t, NewCheckCmd(env))
	var configErr *ai.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestRunFallsBackWhenProvidersFail(t *testing.T) {
	env := testEnv(config.ProviderConfig{ID: "primary", Model: "m", Credential: "k"})

	out, err := execute(t, NewRunCmd(env), "generate_questions", "-p", `{"subject":"algebra","difficulty":2,"count":2}`)
	require.NoError(t, err)

	var result struct {
		Data []ai.Question `json:"data"`
		Meta struct {
			Source   string `json:"source"`
			Attempts []struct {
				Outcome string `json:"outcome"`
			} `json:"attempts"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Data, 2)
	require.Equal(t, "fallback", result.Meta.Source)
	require.Len(t, result.Meta.Attempts, 1)
	require.Equal(t, "network_error", result.Meta.Attempts[0].Outcome)
}

func TestRunFallbackOnlySkipsProviders(t *testing.T) {
	env := testEnv(config.ProviderConfig{ID: "primary", Model: "m", Credential: "k"})

	out, err := execute(t, NewRunCmd(env), "learning_report", "--fallback-only", "-p", `{"study_minutes":30,"accuracy":80}`)
	require.NoError(t, err)
	require.Contains(t, out, `"source": "fallback"`)
	require.Contains(t, out, "Mixed practice set")
	require.NotContains(t, out, "network_error")
}

func TestRunRejectsUnknownOperation(t *testing.T) {
	_, err := execute(t, NewRunCmd(testEnv()), "summarize")
	require.ErrorContains(t, err, "unknown operation")
}

func TestRunRejectsUnknownParams(t *testing.T) {
	_, err := execute(t, NewRunCmd(testEnv()), "smart_grading", "-p", `{"question":"2+2"}`)
	require.ErrorContains(t, err, "invalid --params")
}
