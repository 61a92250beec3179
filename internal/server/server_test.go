package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumelens/internal/config"
	resumelensErrors "resumelens/internal/errors"
)

func newTestLogger(t *testing.T) *resumelensErrors.Logger {
	t.Helper()
	logger, err := resumelensErrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func newTestServer(t *testing.T, apiKeys []string) *Server {
	t.Helper()
	cfg := ServerConfig{
		Host:           "localhost",
		Port:           "8080",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1024,
		MaxUploadSize:  2048,
	}
	return NewServer(&config.Config{}, cfg, nil, newTestLogger(t))
}

func TestAuthMiddlewareNoKeysConfigured(t *testing.T) {
	s := newTestServer(t, nil)

	called := false
	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !called {
		t.Error("expected handler to be called when no API keys are configured")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestAuthMiddlewareMissingKey(t *testing.T) {
	s := newTestServer(t, []string{"secret-key-12345"})

	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called without API key")
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "Missing API key" {
		t.Errorf("unexpected error: %q", resp.Error)
	}
}

func TestAuthMiddlewareXAPIKeyHeader(t *testing.T) {
	s := newTestServer(t, []string{"secret-key-12345"})

	called := false
	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.Header.Set("X-API-Key", "secret-key-12345")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !called {
		t.Error("expected handler to be called with valid API key")
	}
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	s := newTestServer(t, []string{"secret-key-12345"})

	called := false
	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.Header.Set("Authorization", "Bearer secret-key-12345")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !called {
		t.Error("expected handler to be called with valid bearer token")
	}
}

func TestAuthMiddlewareInvalidKey(t *testing.T) {
	s := newTestServer(t, []string{"secret-key-12345"})

	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called with invalid API key")
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"secret-key-12345", "secret-k****"},
		{"short", "****"},
		{"", "****"},
		{"12345678", "****"},
		{"123456789", "12345678****"},
	}

	for _, tt := range tests {
		if got := maskAPIKey(tt.input); got != tt.expected {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	handler := s.requestSizeLimitMiddleware()(func(w http.ResponseWriter, r *http.Request) {
		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	body := strings.NewReader(`{"resumeText":"` + strings.Repeat("x", 2000) + `","jobDescription":"y"}`)
	req := httptest.NewRequest(http.MethodPost, "/match", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for oversize body, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "request body too large") {
		t.Errorf("expected size limit error, got %q", rec.Body.String())
	}
}

func TestRateLimiterAllow(t *testing.T) {
	logger := newTestLogger(t)
	limiter := NewRateLimiter(60, time.Minute, 2, logger)
	defer limiter.Close()

	if !limiter.Allow("client-1") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("client-1") {
		t.Error("second request within burst should be allowed")
	}
	if limiter.Allow("client-1") {
		t.Error("third request should exceed burst capacity")
	}

	// Independent key has its own bucket
	if !limiter.Allow("client-2") {
		t.Error("request from a different client should be allowed")
	}
}

func TestRateLimitMiddlewareRejects(t *testing.T) {
	s := newTestServer(t, nil)
	s.RateLimit = &config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 60,
		BurstCapacity:  1,
		ByIP:           true,
	}
	s.RateLimiter = NewRateLimiter(60, time.Minute, 1, s.Logger)
	defer s.RateLimiter.Close()

	handler := s.rateLimitMiddleware()(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected first request to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected second request to be rate limited, got %d", rec.Code)
	}
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	if key := rateLimitKey(req, true, true); key != "ip:10.0.0.1" {
		t.Errorf("expected IP key without API key header, got %q", key)
	}

	req.Header.Set("X-API-Key", "abc123")
	if key := rateLimitKey(req, true, true); key != "api:abc123" {
		t.Errorf("expected API key to take precedence, got %q", key)
	}

	if key := rateLimitKey(req, false, false); key != "" {
		t.Errorf("expected empty key when both modes disabled, got %q", key)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:54321"

	if ip := clientIP(req); ip != "192.168.1.5" {
		t.Errorf("expected RemoteAddr host, got %q", ip)
	}

	req.Header.Set("X-Real-IP", "203.0.113.9")
	if ip := clientIP(req); ip != "203.0.113.9" {
		t.Errorf("expected X-Real-IP, got %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 203.0.113.9")
	if ip := clientIP(req); ip != "198.51.100.7" {
		t.Errorf("expected first X-Forwarded-For entry, got %q", ip)
	}
}

func TestStatsHandler(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.statsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode stats response: %v", err)
	}
	if resp["service"] != "resumelens" {
		t.Errorf("unexpected service name: %v", resp["service"])
	}
	rateLimiting, ok := resp["rate_limiting"].(map[string]any)
	if !ok {
		t.Fatalf("expected rate_limiting object, got %T", resp["rate_limiting"])
	}
	if enabled, ok := rateLimiting["enabled"].(bool); !ok || enabled {
		t.Errorf("expected rate limiting disabled, got %v", rateLimiting["enabled"])
	}
}

func TestStatsHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/stats", nil)
	rec := httptest.NewRecorder()
	s.statsHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

func TestParseJSONRequestContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")

	var v MatchRequest
	if err := parseJSONRequest(req, &v); err == nil {
		t.Error("expected error for wrong content type")
	}
}

func TestParseJSONRequestValidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/match",
		strings.NewReader(`{"resumeText":"resume","jobDescription":"job"}`))
	req.Header.Set("Content-Type", "application/json")

	var v MatchRequest
	if err := parseJSONRequest(req, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ResumeText != "resume" || v.JobDescription != "job" {
		t.Errorf("unexpected decoded request: %+v", v)
	}
}

func TestErrorStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "validation error",
			err:      resumelensErrors.NewValidationError(resumelensErrors.ErrCodeInvalidRequest, "bad input", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "extraction error",
			err:      resumelensErrors.NewExtractionError(resumelensErrors.ErrCodeCorruptFile, "unreadable pdf", nil),
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "transport error",
			err:      resumelensErrors.NewTransportError(resumelensErrors.ErrCodeProviderServer, "upstream failed", nil),
			expected: http.StatusBadGateway,
		},
		{
			name:     "internal error",
			err:      resumelensErrors.NewInternalError(resumelensErrors.ErrCodeAnalysisFailed, "boom", nil),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "plain error",
			err:      http.ErrBodyNotAllowed,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatusCode(tt.err); got != tt.expected {
				t.Errorf("errorStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
