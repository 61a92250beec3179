package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

// retryHintRe extracts the server-suggested wait from a 429 payload,
// e.g. "Please try again in 1.5s".
var retryHintRe = regexp.MustCompile(`try again in ([\d.]+)s`)

// retryHintBuffer is added on top of a parsed retry hint.
const retryHintBuffer = 500 * time.Millisecond

// GroqProvider implements ChatProvider against the Groq OpenAI-compatible
// chat-completions endpoint.
type GroqProvider struct {
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	maxRetries int
	httpClient *http.Client
	breaker    *CircuitBreaker
	logger     *errors.Logger
	usage      usageCounter

	// sleep is swapped out in tests to observe backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

var (
	_ ChatProvider  = (*GroqProvider)(nil)
	_ UsageReporter = (*GroqProvider)(nil)
)

// NewGroqProvider creates a Groq chat provider for a specific operation.
func NewGroqProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) *GroqProvider {
	return &GroqProvider{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxTokens:  *cfg.MaxTokens,
		maxRetries: *cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout:   *cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewCircuitBreaker("groq-"+operationType, &cfg.CircuitBreaker, logger),
		logger:  logger,
		sleep:   sleepCtx,
	}
}

func (p *GroqProvider) Name() string { return "groq" }

// Usage returns the token counts accumulated across all completed
// requests on this provider instance.
func (p *GroqProvider) Usage() TokenUsage { return p.usage.snapshot() }

// Close implements ChatProvider. The underlying http.Client holds no
// resources that need explicit release.
func (p *GroqProvider) Close() error { return nil }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

// Complete issues one chat-completion request. HTTP 429 and transient
// network failures share a single retry counter capped at maxRetries;
// the delay comes from the server's retry hint when present, otherwise
// exponential backoff (2s, 4s, 8s). 401 and 500 fail immediately.
func (p *GroqProvider) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	tracer := otel.Tracer("resumelens.llm.groq")
	ctx, span := tracer.Start(ctx, "groq.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", "groq"),
		attribute.String("llm.model", p.model),
		attribute.Float64("llm.temperature", temperature),
	)

	content, err := p.breaker.Execute(func() (string, error) {
		return p.completeWithRetry(ctx, messages, temperature)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", err
	}
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("llm.response_chars", len(content)))
	return content, nil
}

func (p *GroqProvider) completeWithRetry(ctx context.Context, messages []Message, temperature float64) (string, error) {
	retryCount := 0

	for {
		content, status, errBody, err := p.doRequest(ctx, messages, temperature)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if retryCount < p.maxRetries {
				retryCount++
				delay := backoffDelay(retryCount)
				p.logger.Warn("Network error calling chat endpoint, retrying",
					"attempt", retryCount,
					"max_retries", p.maxRetries,
					"delay", delay.String(),
					"error", err.Error())
				if serr := p.sleep(ctx, delay); serr != nil {
					return "", serr
				}
				continue
			}
			return "", errors.NewTransportError(errors.ErrCodeNetworkFailure,
				"chat completion request failed after retries", err)
		}

		switch {
		case status == http.StatusOK:
			return content, nil

		case status == http.StatusTooManyRequests:
			if retryCount < p.maxRetries {
				retryCount++
				delay := backoffDelay(retryCount)
				if hint, ok := parseRetryHint(errBody); ok {
					delay = hint + retryHintBuffer
				}
				p.logger.Warn("Rate limited by chat endpoint, retrying",
					"attempt", retryCount,
					"max_retries", p.maxRetries,
					"delay", delay.String())
				if serr := p.sleep(ctx, delay); serr != nil {
					return "", serr
				}
				continue
			}
			return "", errors.NewTransportError(errors.ErrCodeRateLimitExceeded,
				"rate limit exceeded and maximum retries reached; wait a few minutes and try again", nil)

		case status == http.StatusUnauthorized:
			return "", errors.NewTransportError(errors.ErrCodeInvalidAPIKey,
				"invalid API key; check the configured Groq API key", nil)

		case status == http.StatusInternalServerError:
			return "", errors.NewTransportError(errors.ErrCodeProviderServer,
				"chat provider server error; try again later", nil)

		default:
			return "", errors.NewTransportError(errors.ErrCodeNetworkFailure,
				fmt.Sprintf("chat endpoint returned unexpected status %d", status), nil).
				WithContext("body", truncate(errBody, 200))
		}
	}
}

// doRequest performs a single HTTP round trip. A non-nil error means the
// request never produced an HTTP response.
func (p *GroqProvider) doRequest(ctx context.Context, messages []Message, temperature float64) (content string, status int, errBody string, err error) {
	payload := chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   p.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, string(raw), nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, "", err
	}
	p.usage.add(parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens, parsed.Usage.TotalTokens)
	if len(parsed.Choices) == 0 {
		// Callers tolerate empty output and fall back downstream.
		return "", http.StatusOK, "", nil
	}
	return parsed.Choices[0].Message.Content, http.StatusOK, "", nil
}

// parseRetryHint reads the "try again in Ns" hint out of a 429 error
// payload, rounding the delay up to whole milliseconds.
func parseRetryHint(errBody string) (time.Duration, bool) {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(errBody), &payload); err != nil {
		return 0, false
	}
	m := retryHintRe.FindStringSubmatch(payload.Error.Message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(math.Ceil(seconds*1000)) * time.Millisecond, true
}

// backoffDelay is 2s, 4s, 8s for attempts 1, 2, 3.
func backoffDelay(retryCount int) time.Duration {
	return time.Duration(1<<retryCount) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
