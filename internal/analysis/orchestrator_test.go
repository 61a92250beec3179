package analysis

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/llm"
	"resumelens/internal/mood"
	"resumelens/internal/types"
)

const testResume = `Jane Doe
jane@example.com 555-123-4567 linkedin.com/in/janedoe
Senior backend engineer with ten years of experience building Go services.
Led a team of five and reduced infrastructure costs by 35% over two years.`

func taskFor(systemPrompt string) string {
	switch {
	case strings.Contains(systemPrompt, "primary role"):
		return "role"
	case strings.Contains(systemPrompt, "technical skills"):
		return "skills"
	case strings.Contains(systemPrompt, "seniority level"):
		return "seniority"
	case strings.Contains(systemPrompt, "quantified achievements"):
		return "quantification"
	case strings.Contains(systemPrompt, "action verbs"):
		return "actionVerbs"
	case strings.Contains(systemPrompt, "soft skills"):
		return "softSkills"
	case strings.Contains(systemPrompt, "consistency issues"):
		return "consistency"
	case strings.Contains(systemPrompt, "5-6 line summary"):
		return "summary"
	case strings.Contains(systemPrompt, "resume-job matching"):
		return "jobMatch"
	default:
		return "unknown"
	}
}

func cannedResponses() map[string]string {
	return map[string]string{
		"role":           `{"detectedRole":"Backend Engineer","confidence":90,"alternativeRoles":["Platform Engineer"],"reasoning":"explicit title"}`,
		"skills":         `["Go","PostgreSQL","Kubernetes"]`,
		"seniority":      `{"level":"Senior","confidence":85,"indicators":["ten years","led a team"],"yearsExperience":10}`,
		"quantification": `{"metricsFound":["reduced costs by 35%"],"score":70}`,
		"actionVerbs":    `{"strongVerbs":["led","reduced"],"weakVerbs":[],"suggestions":[],"score":80}`,
		"softSkills":     `{"leadership":85,"communication":70,"problemSolving":75,"teamwork":80,"adaptability":65,"inferredQualities":["mentorship"]}`,
		"consistency":    `{"dateFormatIssues":[],"tenseIssues":[],"formattingIssues":[],"score":90}`,
		"summary":        "A seasoned senior backend engineer with a decade of Go experience.",
		"jobMatch":       `{"overallMatch":75,"skillsMatch":80,"experienceMatch":70,"missingSkills":["Terraform"],"matchingSkills":["Go"],"recommendations":["Highlight infrastructure work"]}`,
	}
}

// stubProvider answers each analysis task with a canned response keyed by
// a distinctive fragment of its system prompt. One task can be made to
// fail with a transport error.
type stubProvider struct {
	responses map[string]string
	failTask  string
	failErr   error
}

var _ llm.ChatProvider = (*stubProvider)(nil)

func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) Close() error { return nil }

func (p *stubProvider) Complete(_ context.Context, messages []llm.Message, _ float64) (string, error) {
	task := taskFor(messages[0].Content)
	if task == p.failTask {
		return "", p.failErr
	}
	return p.responses[task], nil
}

func newOrchestrator(p llm.ChatProvider) *Orchestrator {
	return New(nil, p, nil, errors.NewLogger(slog.LevelError))
}

func TestAnalyzeTextFullReport(t *testing.T) {
	o := newOrchestrator(&stubProvider{responses: cannedResponses()})

	report, err := o.AnalyzeText(context.Background(), testResume, mood.Professional)
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}

	if report.ID == "" {
		t.Error("report has no ID")
	}
	if report.RoleAlignment.DetectedRole != "Backend Engineer" {
		t.Errorf("detectedRole = %q", report.RoleAlignment.DetectedRole)
	}
	if len(report.ExtractedSkills) != 3 {
		t.Errorf("extractedSkills = %v", report.ExtractedSkills)
	}
	if report.SeniorityEstimation.Level != "Senior" {
		t.Errorf("seniority level = %q", report.SeniorityEstimation.Level)
	}
	if report.Summary != "A seasoned senior backend engineer with a decade of Go experience." {
		t.Errorf("summary = %q", report.Summary)
	}

	// email + phone + social present, no address
	if report.DetailedScores.ContactInformation != 90 {
		t.Errorf("contact score = %d, want 90", report.DetailedScores.ContactInformation)
	}
	if report.DetailedScores.Skills != 90 {
		t.Errorf("skills score = %d, want 90", report.DetailedScores.Skills)
	}
	if report.DetailedScores.Quantification != 70 {
		t.Errorf("quantification score = %d, want 70", report.DetailedScores.Quantification)
	}

	// (90+80+75+90+85+70+80+90)/8 = 660/8 = 82.5 → 83
	if report.OverallScore != 83 {
		t.Errorf("overall score = %d, want 83", report.OverallScore)
	}

	if len(report.PIIDetected.Emails) != 1 || report.PIIDetected.Emails[0] != "jane@example.com" {
		t.Errorf("pii emails = %v", report.PIIDetected.Emails)
	}
	if report.Mood != "professional" || report.MoodSummary == "" {
		t.Errorf("mood not applied: %q / %q", report.Mood, report.MoodSummary)
	}
}

func TestAnalyzeTextRejectsShortInput(t *testing.T) {
	o := newOrchestrator(&stubProvider{responses: cannedResponses()})

	_, err := o.AnalyzeText(context.Background(), "tiny", mood.Professional)
	if err == nil {
		t.Fatal("expected error for short input")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeContentTooShort {
		t.Errorf("code = %s", appErr.Code)
	}
}

func TestAnalyzeTextDegradesMalformedResponses(t *testing.T) {
	responses := cannedResponses()
	responses["role"] = "I'm sorry, I cannot analyze this resume."
	responses["softSkills"] = `{"leadership":"high"}`
	o := newOrchestrator(&stubProvider{responses: responses})

	report, err := o.AnalyzeText(context.Background(), testResume, mood.Professional)
	if err != nil {
		t.Fatalf("degraded responses must not fail the run: %v", err)
	}

	if report.RoleAlignment.DetectedRole != "Unknown" {
		t.Errorf("role fallback not applied: %+v", report.RoleAlignment)
	}
	if report.SoftSkillsInference.Leadership != 0 || report.SoftSkillsInference.InferredQualities == nil {
		t.Errorf("soft-skills fallback not applied: %+v", report.SoftSkillsInference)
	}
	// The rest of the report stays fully shaped.
	if report.SeniorityEstimation.Level != "Senior" {
		t.Errorf("unrelated task affected: %+v", report.SeniorityEstimation)
	}
}

func TestAnalyzeTextTransportErrorAbortsRun(t *testing.T) {
	transportErr := errors.NewTransportError(errors.ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	o := newOrchestrator(&stubProvider{
		responses: cannedResponses(),
		failTask:  "seniority",
		failErr:   transportErr,
	})

	report, err := o.AnalyzeText(context.Background(), testResume, mood.Professional)
	if err == nil {
		t.Fatal("expected transport error to abort the analysis")
	}
	if report != nil {
		t.Error("partial report returned alongside error")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeAnalysisFailed {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeAnalysisFailed)
	}
}

func TestAnalyzeTextSummaryFallsBackOnTransportError(t *testing.T) {
	o := newOrchestrator(&stubProvider{
		responses: cannedResponses(),
		failTask:  "summary",
		failErr:   errors.NewTransportError(errors.ErrCodeProviderServer, "server error", nil),
	})

	report, err := o.AnalyzeText(context.Background(), testResume, mood.Professional)
	if err != nil {
		t.Fatalf("summary failure must not abort the run: %v", err)
	}
	want := "Senior Backend Engineer with 10 years of experience in Go, PostgreSQL, Kubernetes and related technologies."
	if report.Summary != want {
		t.Errorf("composed summary = %q, want %q", report.Summary, want)
	}
}

func TestSoftSkillsClamp(t *testing.T) {
	got := clampSoftSkills(types.SoftSkillsInference{Leadership: 150, Communication: -20, Teamwork: 80})
	if got.Leadership != 100 {
		t.Errorf("leadership = %v, want 100", got.Leadership)
	}
	if got.Communication != 0 {
		t.Errorf("communication = %v, want 0", got.Communication)
	}
	if got.Teamwork != 80 {
		t.Errorf("teamwork = %v, want 80", got.Teamwork)
	}
	if got.InferredQualities == nil {
		t.Error("inferredQualities must be non-nil")
	}
}

type mapPrompts map[string]string

func (m mapPrompts) System(task string) (string, bool) {
	s, ok := m[task]
	return s, ok
}

func TestPromptOverrideReachesProvider(t *testing.T) {
	// The override still names the task so the stub keeps routing it.
	custom := "Custom instructions: detect the primary role.\nAnswer as JSON."
	o := New(nil, &stubProvider{responses: cannedResponses()},
		mapPrompts{"role": custom}, errors.NewLogger(slog.LevelError))

	messages := o.rolePrompt("resume text")
	if messages[0].Content != custom {
		t.Errorf("system prompt = %q, want override", messages[0].Content)
	}
	if got := o.skillsPrompt("resume text")[0].Content; got != skillsSystemPrompt {
		t.Errorf("unoverridden task changed: %q", got)
	}
}

func TestMatchJobDescription(t *testing.T) {
	o := newOrchestrator(&stubProvider{responses: cannedResponses()})

	match, err := o.MatchJobDescription(context.Background(), testResume, "Looking for a Go engineer with Terraform experience.")
	if err != nil {
		t.Fatalf("MatchJobDescription failed: %v", err)
	}
	if match.OverallMatch != 75 {
		t.Errorf("overallMatch = %v, want 75", match.OverallMatch)
	}
	if len(match.MissingSkills) != 1 || match.MissingSkills[0] != "Terraform" {
		t.Errorf("missingSkills = %v", match.MissingSkills)
	}
}

func TestOverallScoreRounding(t *testing.T) {
	scores := types.DetailedScores{
		ContactInformation: 100,
		WorkExperience:     100,
		Education:          100,
		Skills:             100,
		Formatting:         100,
		Quantification:     100,
		ActionVerbs:        100,
		Consistency:        99,
	}
	if got := overallScore(scores); got != 100 {
		t.Errorf("score = %d, want 100 (799/8 = 99.875 rounds up)", got)
	}
}
