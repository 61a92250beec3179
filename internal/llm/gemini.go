package llm

import (
	"context"
	"crypto/rand"
	goerrors "errors"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

// GeminiProvider implements ChatProvider for Google Gemini. It is the
// alternative backend for deployments without Groq access.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	maxTokens  int
	maxRetries int
	breaker    *CircuitBreaker
	logger     *errors.Logger
	usage      usageCounter
}

var (
	_ ChatProvider  = (*GeminiProvider)(nil)
	_ UsageReporter = (*GeminiProvider)(nil)
)

// NewGeminiProvider creates a Gemini chat provider for a specific operation.
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewTransportError(errors.ErrCodeNetworkFailure,
			"failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:     client,
		model:      cfg.Model,
		maxTokens:  *cfg.MaxTokens,
		maxRetries: *cfg.MaxRetries,
		breaker:    NewCircuitBreaker("gemini-"+operationType, &cfg.CircuitBreaker, logger),
		logger:     logger,
	}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

// Usage returns the token counts accumulated across all completed
// requests on this provider instance.
func (g *GeminiProvider) Usage() TokenUsage { return g.usage.snapshot() }

func (g *GeminiProvider) Close() error { return nil }

// Complete maps the chat message list onto Gemini's system-instruction +
// user-content model and returns the response text.
func (g *GeminiProvider) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	tracer := otel.Tracer("resumelens.llm.gemini")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", "gemini"),
		attribute.String("llm.model", g.model),
		attribute.Float64("llm.temperature", temperature),
	)

	var systemParts, userParts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			systemParts = append(systemParts, m.Content)
		} else {
			userParts = append(userParts, m.Content)
		}
	}

	temp := float32(temperature)
	maxTokens := int32(g.maxTokens)
	genaiConfig := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: maxTokens,
	}
	if len(systemParts) > 0 {
		genaiConfig.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}

	content, err := g.breaker.Execute(func() (string, error) {
		result, err := g.executeWithRetry(ctx, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.model,
				genai.Text(strings.Join(userParts, "\n\n")), genaiConfig)
		})
		if err != nil {
			return "", err
		}
		if um := result.UsageMetadata; um != nil {
			g.usage.add(int64(um.PromptTokenCount), int64(um.CandidatesTokenCount), int64(um.TotalTokenCount))
		}
		return result.Text(), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", classifyGeminiError(err)
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("llm.response_chars", len(content)))
	return content, nil
}

// executeWithRetry retries transient failures with exponential backoff and
// jitter, capped at 30 seconds per wait.
func (g *GeminiProvider) executeWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying Gemini request",
				"attempt", attempt,
				"max_retries", g.maxRetries,
				"error", lastErr.Error())

			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			backoff := min(baseDelay+time.Duration(jitterBig.Int64()), 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableGeminiError(err) {
			break
		}
	}

	return nil, lastErr
}

func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if goerrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if goerrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.NewTransportError(errors.ErrCodeInvalidAPIKey,
				"invalid API key; check the configured Gemini API key", err)
		case http.StatusTooManyRequests:
			return errors.NewTransportError(errors.ErrCodeRateLimitExceeded,
				"rate limit exceeded and maximum retries reached; wait a few minutes and try again", err)
		case http.StatusInternalServerError:
			return errors.NewTransportError(errors.ErrCodeProviderServer,
				"chat provider server error; try again later", err)
		}
	}
	return errors.NewTransportError(errors.ErrCodeNetworkFailure,
		"chat completion request failed", err)
}
