// Package analysis orchestrates the fixed battery of LLM-backed resume
// analyses, local PII scanning, and derived score aggregation.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"resumelens/internal/coerce"
	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/llm"
	"resumelens/internal/mood"
	"resumelens/internal/parse"
	"resumelens/internal/pii"
	"resumelens/internal/types"
)

// Fixed category scores for the dimensions that have no dedicated
// analysis task yet.
const (
	workExperienceScore = 80
	educationScore      = 75
	formattingScore     = 85
)

// PromptSource supplies system-prompt overrides per task name. A nil
// source means built-in prompts only.
type PromptSource interface {
	System(task string) (string, bool)
}

// Orchestrator runs the analysis pipeline: extract, fan out the analysis
// tasks, aggregate one report.
type Orchestrator struct {
	extractor *extract.Extractor
	provider  llm.ChatProvider
	prompts   PromptSource
	logger    *errors.Logger
}

// New creates an Orchestrator on top of the given extractor and chat
// provider. prompts may be nil.
func New(extractor *extract.Extractor, provider llm.ChatProvider, prompts PromptSource, logger *errors.Logger) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		provider:  provider,
		prompts:   prompts,
		logger:    logger,
	}
}

// AnalyzeDocument extracts text from an uploaded document and analyzes it.
func (o *Orchestrator) AnalyzeDocument(ctx context.Context, doc extract.Document, m mood.Mood) (*types.AnalysisReport, error) {
	text, err := o.extractor.Extract(doc)
	if err != nil {
		return nil, err
	}
	return o.AnalyzeText(ctx, text, m)
}

// AnalyzeText fans out the seven analysis tasks plus the local PII scan,
// waits for all of them, then aggregates one report with a mood-aware
// summary. A transport error from any task aborts the whole run; partial
// reports are never returned.
func (o *Orchestrator) AnalyzeText(ctx context.Context, resumeText string, m mood.Mood) (*types.AnalysisReport, error) {
	tracer := otel.Tracer("resumelens.analysis")
	ctx, span := tracer.Start(ctx, "analysis.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.Int("resume.chars", len(resumeText)),
		attribute.String("mood", string(m)),
	)

	if n := len(strings.TrimSpace(resumeText)); n < extract.MinContentLength {
		return nil, errors.NewValidationError(errors.ErrCodeContentTooShort,
			fmt.Sprintf("resume text is too short to analyze (%d characters)", n), nil).
			WithContext("chars", n)
	}

	o.logger.Info("Starting resume analysis", "chars", len(resumeText), "mood", string(m))

	// Tasks see the sectionized view of the resume; PII scanning works on
	// the raw text so contact lines are never missed.
	promptText := resumeText
	if parsed, err := parse.Parse(resumeText); err == nil {
		promptText = parsed.CleanText
		span.SetAttributes(
			attribute.Bool("resume.has_structure", parsed.Metadata.HasStructure),
			attribute.StringSlice("resume.sections", parsed.Metadata.SectionsFound),
		)
		o.logger.Debug("Sectionized resume",
			"sections", parsed.Metadata.SectionsFound,
			"has_structure", parsed.Metadata.HasStructure)
	}

	var (
		role           types.RoleAlignment
		skills         []string
		seniority      types.SeniorityEstimation
		quantification types.QuantificationAnalysis
		actionVerbs    types.ActionVerbAnalysis
		softSkills     types.SoftSkillsInference
		consistency    types.ConsistencyCheck
		findings       types.PIIFindings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		role, err = runTask(gctx, o.provider, o.rolePrompt(promptText), roleFallback(), roleSchema(), o.logger)
		return err
	})
	g.Go(func() (err error) {
		skills, err = runTask(gctx, o.provider, o.skillsPrompt(promptText), []string{}, coerce.StringArray(), o.logger)
		return err
	})
	g.Go(func() (err error) {
		seniority, err = runTask(gctx, o.provider, o.seniorityPrompt(promptText), seniorityFallback(), senioritySchema(), o.logger)
		return err
	})
	g.Go(func() (err error) {
		quantification, err = runTask(gctx, o.provider, o.quantificationPrompt(promptText), quantificationFallback(), quantificationSchema(), o.logger)
		return err
	})
	g.Go(func() (err error) {
		actionVerbs, err = runTask(gctx, o.provider, o.actionVerbsPrompt(promptText), actionVerbsFallback(), actionVerbsSchema(), o.logger)
		return err
	})
	g.Go(func() (err error) {
		softSkills, err = runTask(gctx, o.provider, o.softSkillsPrompt(promptText), softSkillsFallback(), softSkillsSchema(), o.logger)
		if err == nil {
			softSkills = clampSoftSkills(softSkills)
		}
		return err
	})
	g.Go(func() (err error) {
		consistency, err = runTask(gctx, o.provider, o.consistencyPrompt(promptText), consistencyFallback(), consistencySchema(), o.logger)
		return err
	})
	g.Go(func() error {
		findings = pii.Detect(resumeText)
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, errors.NewInternalError(errors.ErrCodeAnalysisFailed,
			"resume analysis failed", err)
	}

	// The summary call happens after the join so it can reference the
	// other results. It degrades to a composed sentence, never fails.
	summary := o.generateSummary(ctx, promptText, role, seniority, skills)

	scores := types.DetailedScores{
		ContactInformation: contactScore(findings),
		WorkExperience:     workExperienceScore,
		Education:          educationScore,
		Skills:             skillsScore(skills),
		Formatting:         formattingScore,
		Quantification:     int(math.Round(quantification.Score)),
		ActionVerbs:        int(math.Round(actionVerbs.Score)),
		Consistency:        int(math.Round(consistency.Score)),
	}

	improvements := []string{
		"Consider adding more quantified achievements",
		"Strengthen action verbs in job descriptions",
		"Ensure consistent formatting throughout",
	}

	report := &types.AnalysisReport{
		ID:                     uuid.NewString(),
		OverallScore:           overallScore(scores),
		DetailedScores:         scores,
		Strengths:              buildStrengths(role, skills, seniority),
		Improvements:           improvements,
		ExtractedSkills:        skills,
		Summary:                summary,
		QuantificationAnalysis: quantification,
		ActionVerbAnalysis:     actionVerbs,
		SoftSkillsInference:    softSkills,
		ConsistencyCheck:       consistency,
		RoleAlignment:          role,
		SeniorityEstimation:    seniority,
		PIIDetected:            findings,
	}

	mood.Apply(report, m)

	o.logger.Info("Resume analysis complete",
		"report_id", report.ID,
		"overall_score", report.OverallScore,
		"detected_role", role.DetectedRole,
		"skills_count", len(skills))
	span.SetAttributes(attribute.Int("report.overall_score", report.OverallScore))

	return report, nil
}

// MatchJobDescription compares resume text against a job description.
func (o *Orchestrator) MatchJobDescription(ctx context.Context, resumeText, jobDescription string) (*types.JobMatch, error) {
	tracer := otel.Tracer("resumelens.analysis")
	ctx, span := tracer.Start(ctx, "analysis.match_job")
	defer span.End()

	match, err := runTask(ctx, o.provider, o.jobMatchPrompt(resumeText, jobDescription),
		jobMatchFallback(), jobMatchSchema(), o.logger)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &match, nil
}

// generateSummary asks the model for a narrative summary referencing the
// already-computed results. Transport failures fall back to a sentence
// composed from those results; the summary never aborts an analysis.
func (o *Orchestrator) generateSummary(ctx context.Context, resumeText string, role types.RoleAlignment, seniority types.SeniorityEstimation, skills []string) string {
	response, err := o.provider.Complete(ctx, o.summaryPrompt(resumeText, role, seniority, skills), defaultTemperature)
	if err == nil {
		if cleaned := coerce.Sanitize(response); cleaned != "" {
			return cleaned
		}
	} else {
		o.logger.Warn("Summary generation failed, composing fallback", "error", err.Error())
	}
	return composedSummary(role, seniority, skills)
}

func composedSummary(role types.RoleAlignment, seniority types.SeniorityEstimation, skills []string) string {
	level := seniority.Level
	if level == "" || level == "Unknown" {
		level = "Professional"
	}
	detectedRole := role.DetectedRole
	if detectedRole == "" || detectedRole == "Unknown" {
		detectedRole = "candidate"
	}
	years := "several"
	if seniority.YearsExperience > 0 {
		years = fmt.Sprintf("%.0f", seniority.YearsExperience)
	}
	top := skills
	if len(top) > 3 {
		top = top[:3]
	}
	area := strings.Join(top, ", ")
	if area == "" {
		area = "their field"
	}
	return fmt.Sprintf("%s %s with %s years of experience in %s and related technologies.",
		level, detectedRole, years, area)
}

func buildStrengths(role types.RoleAlignment, skills []string, seniority types.SeniorityEstimation) []string {
	detectedRole := role.DetectedRole
	if detectedRole == "" || detectedRole == "Unknown" {
		detectedRole = "professional"
	}
	level := seniority.Level
	if level == "" || level == "Unknown" {
		level = "Professional"
	}
	return []string{
		fmt.Sprintf("Strong %s background", detectedRole),
		fmt.Sprintf("%d technical skills identified", len(skills)),
		fmt.Sprintf("%s level experience", level),
	}
}

// contactScore rewards each PII category found: email 40, phone 30,
// social profile 20, address 10.
func contactScore(f types.PIIFindings) int {
	score := 0
	if len(f.Emails) > 0 {
		score += 40
	}
	if len(f.Phones) > 0 {
		score += 30
	}
	if len(f.SocialMedia) > 0 {
		score += 20
	}
	if len(f.Addresses) > 0 {
		score += 10
	}
	return score
}

func skillsScore(skills []string) int {
	if len(skills) > 0 {
		return 90
	}
	return 20
}

// overallScore is the unweighted mean of the eight category scores,
// rounded to the nearest integer.
func overallScore(s types.DetailedScores) int {
	sum := s.ContactInformation + s.WorkExperience + s.Education + s.Skills +
		s.Formatting + s.Quantification + s.ActionVerbs + s.Consistency
	return int(math.Round(float64(sum) / 8))
}
