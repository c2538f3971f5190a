package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "provider_call_duration_seconds",
		Help:      "Duration of provider completion calls",
	}, []string{"provider", "model"})

	providerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "provider_call_failures_total",
		Help:      "Number of provider completion calls that returned an error",
	}, []string{"provider", "model"})
)

const (
	// ProviderKindOpenAI covers OpenAI and any endpoint speaking its chat completion API (DeepSeek included).
	ProviderKindOpenAI = "openai"

	defaultMaxOutputTokens = 2000
)

// OpenAIClient implements Completer against an OpenAI-compatible chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    ProviderConfig
	tracer trace.Tracer
}

// NewOpenAIClient builds a client for cfg. An empty endpoint targets api.openai.com.
func NewOpenAIClient(cfg ProviderConfig) (*OpenAIClient, error) {
	if cfg.Credential == "" {
		return nil, fmt.Errorf("provider %s: credential is required", cfg.ID)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", cfg.ID)
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}

	config := openai.DefaultConfig(cfg.Credential)
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		config.BaseURL = endpoint
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-ai/pkg/ai/openai"),
	}, nil
}

// NewClient is the default ClientFactory.
func NewClient(cfg ProviderConfig) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", ProviderKindOpenAI, "deepseek":
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("provider %s: unsupported kind %q", cfg.ID, cfg.Kind)
	}
}

// Complete sends one chat completion request and returns the first choice's text.
func (c *OpenAIClient) Complete(parent context.Context, req CompletionRequest) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("provider", c.cfg.ID),
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxOutputTokens,
		Temperature: c.cfg.Temperature,
		Messages:    messages,
	}
	if req.JSONObject {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	providerDuration.WithLabelValues(c.cfg.ID, c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		providerFailures.WithLabelValues(c.cfg.ID, c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai complete: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from provider %s", c.cfg.ID)
		providerFailures.WithLabelValues(c.cfg.ID, c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int("usage.total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}
