package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/google/generative-ai-go/genai"

	"legalcase-platform/internal/logger"
)

// GeminiClient wraps the generative model behind a circuit breaker and a
// client-side rate limiter. Failures are always surfaced to the caller; a
// tripped breaker is an error, never a canned fallback answer, because a
// default reply would be presented to the user as if it were grounded.
type GeminiClient struct {
	client  *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewGeminiClient(client *genai.Client, model string, requestsPerMinute int) *GeminiClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)*0.9/60.0), max(requestsPerMinute/10, 1))

	return &GeminiClient{
		client:  client,
		model:   model,
		breaker: breaker,
		limiter: limiter,
	}
}

// GenerateAnswer runs one blocking generation call with the given system
// instructions and user message and returns the complete answer text.
func (gc *GeminiClient) GenerateAnswer(ctx context.Context, systemInstructions, userMessage string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_answer")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.system_chars", len(systemInstructions)),
		attribute.Int("gemini.user_chars", len(userMessage)),
	)

	if err := gc.limiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstructions)},
		}

		resp, err := model.GenerateContent(ctx, genai.Text(userMessage))
		if err != nil {
			return nil, err
		}

		text := extractText(resp)
		if text == "" {
			return nil, fmt.Errorf("empty response from model")
		}
		return text, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
		return "", err
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return result.(string), nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}
