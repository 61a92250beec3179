package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resumelens/internal/analysis"
	resumelensErrors "resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/llm"
	"resumelens/internal/mood"
	"resumelens/internal/observability"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createAnalyzeHandler wraps the analyze handler with observability.
// Expects a multipart form with a "resume" file part and an optional
// "mood" field.
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
		if err := r.ParseMultipartForm(s.MaxUploadSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid multipart request", err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume file", "resume file part is required", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read resume file", err.Error(), http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			err := fmt.Errorf("empty resume file")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Empty resume file", "resume file must not be empty", http.StatusBadRequest)
			return
		}

		analysisMood, err := mood.Parse(r.FormValue("mood"))
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid mood", err.Error(), http.StatusBadRequest)
			return
		}

		doc := extract.Document{
			Filename:  header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			Data:      data,
		}

		span.SetAttributes(
			attribute.String("request.filename", header.Filename),
			attribute.Int("request.file_size", len(data)),
			attribute.String("request.mood", string(analysisMood)),
			attribute.String("operation", "analyze"),
		)

		analyzeConfig := s.AppConfig.GetAnalyzeConfig()
		provider, err := llm.NewProvider(&analyzeConfig, "analyze", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI provider", err.Error(), http.StatusInternalServerError)
			return
		}
		defer func() { _ = provider.Close() }()

		orchestrator := analysis.New(s.Extractor, provider, s.Prompts, s.Logger)

		metrics := om.GetMetrics()
		var result *types.AnalysisReport
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			report, analyzeErr := orchestrator.AnalyzeDocument(ctx, doc, analysisMood)
			result = report
			return &observability.AIOperationResult{
				Error:      analyzeErr,
				TokenUsage: providerTokenUsage(provider),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_analyzed", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to analyze resume", err.Error(), errorStatusCode(err))
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.Int("overall_score", result.OverallScore),
			attribute.String("mood", string(analysisMood)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("overall_score", result.OverallScore),
			attribute.Bool("pii_detected", result.PIIDetected.Any()),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createMatchHandler wraps the job match handler with observability
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		if len(req.ResumeText) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume text too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume text too large", fmt.Sprintf("resumeText exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}
		if len(req.JobDescription) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("jobDescription exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "match"),
		)

		matchConfig := s.AppConfig.GetMatchConfig()
		provider, err := llm.NewProvider(&matchConfig, "match", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI provider", err.Error(), http.StatusInternalServerError)
			return
		}
		defer func() { _ = provider.Close() }()

		orchestrator := analysis.New(s.Extractor, provider, s.Prompts, s.Logger)

		metrics := om.GetMetrics()
		var result *types.JobMatch
		err = metrics.TrackAIOperationWithTokens(ctx, "match", func(ctx context.Context) *observability.AIOperationResult {
			match, matchErr := orchestrator.MatchJobDescription(ctx, req.ResumeText, req.JobDescription)
			result = match
			return &observability.AIOperationResult{
				Error:      matchErr,
				TokenUsage: providerTokenUsage(provider),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "job_matched", false, om)
			writeErrorResponse(w, "Failed to match resume", err.Error(), errorStatusCode(err))
			return
		}

		metrics.RecordBusinessMetric(ctx, "job_matched", true, om,
			attribute.Float64("overall_match", result.OverallMatch))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("overall_match", result.OverallMatch),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// providerTokenUsage pulls accumulated token counts off providers that
// report them. Returns nil when the backend reported nothing, so the
// token histograms stay untouched.
func providerTokenUsage(provider llm.ChatProvider) *observability.TokenUsage {
	reporter, ok := provider.(llm.UsageReporter)
	if !ok {
		return nil
	}
	usage := reporter.Usage()
	if usage.TotalTokens == 0 && usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.TotalTokens,
	}
}

// errorStatusCode maps application error types to HTTP status codes
func errorStatusCode(err error) int {
	var appErr *resumelensErrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case resumelensErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case resumelensErrors.ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	case resumelensErrors.ErrorTypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
