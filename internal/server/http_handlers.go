package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"resumelens/internal/config"
	"resumelens/internal/llm"
)

// healthHandler reports service health including AI provider availability.
// Any unavailable provider degrades the overall status to 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumelens",
		"version": s.Version,
	}

	// Provider checks dial out, so bound them by the configured timeout
	ctx, cancel := context.WithTimeout(r.Context(), s.AppConfig.Observability.HealthCheck.Timeout)
	defer cancel()

	var aiStatus map[string]any
	statusCh := make(chan map[string]any, 1)
	go func() {
		statusCh <- s.checkAIProvidersHealth()
	}()
	select {
	case aiStatus = <-statusCh:
	case <-ctx.Done():
		aiStatus = map[string]any{"error": "health check timed out"}
	}
	response["ai_providers"] = aiStatus
	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	if !allProvidersAvailable(aiStatus) {
		response["status"] = "degraded"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to encode health response: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func allProvidersAvailable(aiStatus map[string]any) bool {
	for _, providerStatus := range aiStatus {
		info, ok := providerStatus.(map[string]any)
		if !ok {
			continue
		}
		if available, ok := info["available"].(bool); ok && !available {
			return false
		}
	}
	return true
}

// checkAIProvidersHealth reports provider availability per operation.
func (s *Server) checkAIProvidersHealth() map[string]any {
	analyzeConfig := s.AppConfig.GetAnalyzeConfig()
	matchConfig := s.AppConfig.GetMatchConfig()
	return map[string]any{
		"analyze": s.providerInfo(&analyzeConfig, "analyze"),
		"match":   s.providerInfo(&matchConfig, "match"),
	}
}

func (s *Server) providerInfo(cfg *config.OperationAIConfig, operationType string) map[string]any {
	provider, err := llm.NewProvider(cfg, operationType, s.Logger)
	if err != nil {
		return map[string]any{
			"available": false,
			"error":     fmt.Sprintf("Failed to create %s provider: %v", operationType, err),
		}
	}
	defer func() { _ = provider.Close() }()

	return map[string]any{
		"available": true,
		"provider":  provider.Name(),
		"model":     cfg.Model,
	}
}

// checkCircuitBreakerHealth reports breaker integration status per operation.
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	analyzeConfig := s.AppConfig.GetAnalyzeConfig()
	matchConfig := s.AppConfig.GetMatchConfig()

	status := make(map[string]any)
	for operation, cfg := range map[string]*config.OperationAIConfig{
		"analyze": &analyzeConfig,
		"match":   &matchConfig,
	} {
		provider, err := llm.NewProvider(cfg, operation, s.Logger)
		if err != nil {
			status[operation] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s provider: %v", operation, err),
			}
			continue
		}
		_ = provider.Close()
		status[operation] = map[string]any{
			"available": true,
			"message":   fmt.Sprintf("Circuit breaker integrated with %s provider", operation),
		}
	}
	return status
}

// statsHandler reports request limits and rate limiter state.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumelens",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_upload_size_bytes":  s.MaxUploadSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest decodes a JSON body into v, surfacing the body size
// limit in the error when MaxBytesReader cut the read short.
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeErrorResponse emits the standard JSON error shape.
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: error, Message: message}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
