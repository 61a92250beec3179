// Package llm is the transport layer for chat-completion requests, with
// bounded retry on rate limiting and transient network failure.
package llm

import (
	"context"
	"fmt"
	"sync/atomic"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

// Message is one turn of a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatProvider issues chat-completion requests against an LLM backend.
// Complete returns the first choice's text content; an empty completion
// yields an empty string, not an error.
type ChatProvider interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
	Name() string
	Close() error
}

// TokenUsage holds the token counts a backend reported for completed
// requests.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// UsageReporter is implemented by providers that report token usage.
type UsageReporter interface {
	Usage() TokenUsage
}

// usageCounter accumulates token counts across requests. Concurrent adds
// happen when the orchestrator fans out parallel completions over one
// provider.
type usageCounter struct {
	input  atomic.Int64
	output atomic.Int64
	total  atomic.Int64
}

func (c *usageCounter) add(input, output, total int64) {
	c.input.Add(input)
	c.output.Add(output)
	c.total.Add(total)
}

func (c *usageCounter) snapshot() TokenUsage {
	return TokenUsage{
		InputTokens:  c.input.Load(),
		OutputTokens: c.output.Load(),
		TotalTokens:  c.total.Load(),
	}
}

// NewProvider builds the ChatProvider selected by the operation config.
func NewProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (ChatProvider, error) {
	switch cfg.Provider {
	case "groq":
		return NewGroqProvider(cfg, operationType, logger), nil
	case "gemini":
		return NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported LLM provider: %s", cfg.Provider), nil)
	}
}
