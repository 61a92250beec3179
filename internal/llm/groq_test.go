package llm

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

func testConfig(endpoint string) *config.OperationAIConfig {
	retries := 3
	tokens := 2000
	timeout := 5 * time.Second
	return &config.OperationAIConfig{
		Provider:   "groq",
		Model:      "llama-3.1-8b-instant",
		Endpoint:   endpoint,
		APIKey:     "test-key",
		MaxRetries: &retries,
		MaxTokens:  &tokens,
		Timeout:    &timeout,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}
}

// testProvider returns a GroqProvider whose sleeps are recorded instead
// of executed.
func testProvider(t *testing.T, endpoint string) (*GroqProvider, *[]time.Duration) {
	t.Helper()
	p := NewGroqProvider(testConfig(endpoint), "analyze", errors.NewLogger(slog.LevelError))
	var delays []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return p, &delays
}

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"analysis result"}}]}`))
	}))
	defer srv.Close()

	p, _ := testProvider(t, srv.URL)
	got, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "analysis result" {
		t.Errorf("got %q", got)
	}
}

func TestCompleteEmptyChoicesYieldsEmptyString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p, _ := testProvider(t, srv.URL)
	got, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("empty choices must not error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

// A transport that always answers 429 with no retry hint must be tried
// exactly 4 times (1 initial + 3 retries) with delays 2s, 4s, 8s.
func TestCompleteRetryBoundOn429(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer srv.Close()

	p, delays := testProvider(t, srv.URL)
	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err == nil {
		t.Fatal("expected RateLimitExceeded error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeRateLimitExceeded {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeRateLimitExceeded)
	}

	if got := attempts.Load(); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay[%d] = %v, want %v", i, (*delays)[i], d)
		}
	}
}

// A connection-level failure must consume the same retry budget as 429:
// 1 initial try + 3 retries with delays 2s, 4s, 8s, then NetworkFailure.
func TestCompleteRetryBoundOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	p, delays := testProvider(t, endpoint)
	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err == nil {
		t.Fatal("expected network error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeNetworkFailure {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeNetworkFailure)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay[%d] = %v, want %v", i, (*delays)[i], d)
		}
	}
}

func TestCompleteAccumulatesTokenUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}],` +
			`"usage":{"prompt_tokens":120,"completion_tokens":30,"total_tokens":150}}`))
	}))
	defer srv.Close()

	p, _ := testProvider(t, srv.URL)
	for range 2 {
		if _, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}

	got := p.Usage()
	want := TokenUsage{InputTokens: 240, OutputTokens: 60, TotalTokens: 300}
	if got != want {
		t.Errorf("Usage() = %+v, want %+v", got, want)
	}
}

func TestCompleteHonorsServerRetryHint(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"Rate limit reached. Please try again in 1.5s."}}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	p, delays := testProvider(t, srv.URL)
	got, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q", got)
	}

	want := 1500*time.Millisecond + retryHintBuffer
	if len(*delays) != 1 || (*delays)[0] != want {
		t.Errorf("delays = %v, want [%v]", *delays, want)
	}
}

func TestCompleteAuthErrorIsImmediate(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	p, delays := testProvider(t, srv.URL)
	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err == nil {
		t.Fatal("expected auth error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidAPIKey {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeInvalidAPIKey)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1 (401 is not retryable)", attempts.Load())
	}
	if len(*delays) != 0 {
		t.Errorf("unexpected sleeps: %v", *delays)
	}
}

func TestCompleteServerErrorIsImmediate(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := testProvider(t, srv.URL)
	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err == nil {
		t.Fatal("expected server error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeProviderServer {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeProviderServer)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1 (500 is not retried)", attempts.Load())
	}
}

func TestParseRetryHint(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   time.Duration
		wantOK bool
	}{
		{"fractional seconds", `{"error":{"message":"try again in 2.5s"}}`, 2500 * time.Millisecond, true},
		{"whole seconds", `{"error":{"message":"Please try again in 7s."}}`, 7 * time.Second, true},
		{"no hint", `{"error":{"message":"rate limit reached"}}`, 0, false},
		{"not json", `plain text error`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRetryHint(tt.body)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("hint = %v, want %v", got, tt.want)
			}
		})
	}
}
