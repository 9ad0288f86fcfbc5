package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/tripwise/app/observability/metrics"
	"github.com/FACorreiaa/tripwise/config"
)

const defaultModel = "gemini-2.5-flash"

// Oracle turns a prompt into generated text. It is the only contract the
// rest of the application has with the language model.
type Oracle interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var _ Oracle = (*AIClient)(nil)

var ErrEmptyResponse = errors.New("model returned no text")

type AIClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

func NewAIClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if cfg.APIKey == "" {
		err := errors.New("llm api key is not configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	genCfg := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(cfg.Temperature)
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client: client,
		model:  model,
		config: genCfg,
		logger: logger,
	}, nil
}

// GenerateContent performs one blocking completion call. There is no retry;
// the caller's context is the only bound on how long it may take.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	m := metrics.Get()
	modelAttr := metric.WithAttributes(attribute.String("model", ai.model))
	start := time.Now()
	m.OracleRequestsTotal.Add(ctx, 1, modelAttr)

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), ai.config)
	m.OracleDurationSeconds.Record(ctx, time.Since(start).Seconds(), modelAttr)
	if err != nil {
		m.OracleErrorsTotal.Add(ctx, 1, modelAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		ai.logger.ErrorContext(ctx, "Gemini request failed", slog.String("model", ai.model), slog.Any("error", err))
		return "", err
	}

	text := result.Text()
	if text == "" {
		m.OracleErrorsTotal.Add(ctx, 1, modelAttr)
		span.SetStatus(codes.Error, "Empty response")
		return "", ErrEmptyResponse
	}

	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return text, nil
}

// UnavailableOracle stands in for the model when no client could be built.
// Every call fails with the construction error.
type UnavailableOracle struct {
	Err error
}

var _ Oracle = UnavailableOracle{}

func (o UnavailableOracle) GenerateContent(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("language model unavailable: %w", o.Err)
}
