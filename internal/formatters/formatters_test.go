package formatters

import (
	"strings"
	"testing"

	"resumelens/internal/types"
)

func sampleReport() types.AnalysisReport {
	return types.AnalysisReport{
		ID:           "report-1",
		OverallScore: 83,
		DetailedScores: types.DetailedScores{
			ContactInformation: 90,
			WorkExperience:     80,
			Education:          75,
			Skills:             90,
			Formatting:         85,
			Quantification:     70,
			ActionVerbs:        80,
			Consistency:        90,
		},
		Strengths:       []string{"Strong quantified achievements"},
		Improvements:    []string{"Add a skills summary"},
		ExtractedSkills: []string{"Go", "PostgreSQL"},
		Summary:         "Senior backend engineer with strong delivery record.",
		RoleAlignment: types.RoleAlignment{
			DetectedRole: "Backend Engineer",
			Confidence:   90,
		},
		SeniorityEstimation: types.SeniorityEstimation{
			Level:           "Senior",
			YearsExperience: 10,
		},
		PIIDetected: types.PIIFindings{
			Emails: []string{"jane@example.com"},
		},
	}
}

func TestFormatAnalysisReportText(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(sampleReport(), "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"=== RESUME ANALYSIS ===",
		"Overall Score: 83/100",
		"Detected Role: Backend Engineer (90% confidence)",
		"Seniority: Senior (10.0 years)",
		"Contact Information: 90/100",
		"- Strong quantified achievements",
		"Go, PostgreSQL",
		"Emails: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q", want)
		}
	}
}

func TestFormatAnalysisReportMarkdown(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(sampleReport(), "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"# Resume Analysis",
		"**Overall Score:** 83/100",
		"| Contact Information | 90/100 |",
		"## Strengths",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestFormatPrefersMoodPhrasing(t *testing.T) {
	report := sampleReport()
	report.Mood = "encouraging"
	report.MoodSummary = "You're doing great, keep going!"
	report.MoodStrengths = []string{"Wonderful use of numbers"}

	registry := NewFormatterRegistry()
	output, err := registry.Format(report, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(output, "You're doing great, keep going!") {
		t.Error("mood summary not used in output")
	}
	if strings.Contains(output, "Senior backend engineer with strong delivery record.") {
		t.Error("base summary should be replaced by mood summary")
	}
	if !strings.Contains(output, "Wonderful use of numbers") {
		t.Error("mood strengths not used in output")
	}
}

func TestFormatJobMatch(t *testing.T) {
	match := types.JobMatch{
		OverallMatch:    75,
		SkillsMatch:     80,
		ExperienceMatch: 70,
		MatchingSkills:  []string{"Go", "Kubernetes"},
		MissingSkills:   []string{"Terraform"},
		Recommendations: []string{"Add infrastructure-as-code experience"},
	}

	registry := NewFormatterRegistry()

	text, err := registry.Format(match, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	for _, want := range []string{"Overall Match:    75%", "- Terraform", "1. Add infrastructure-as-code experience"} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q", want)
		}
	}

	markdown, err := registry.Format(&match, "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(markdown, "# Job Match") {
		t.Error("markdown output missing heading")
	}
}

func TestFormatJSONFallback(t *testing.T) {
	registry := NewFormatterRegistry()

	output, err := registry.Format(map[string]string{"status": "ok"}, "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(output, `"status": "ok"`) {
		t.Errorf("unexpected json output: %s", output)
	}
}

func TestFormatUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	if _, err := registry.Format(sampleReport(), "yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
