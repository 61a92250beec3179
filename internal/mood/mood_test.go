package mood

import (
	"reflect"
	"strings"
	"testing"

	"resumelens/internal/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mood
		wantErr bool
	}{
		{"", Professional, false},
		{"professional", Professional, false},
		{"BRUTAL", Brutal, false},
		{"witty", Witty, false},
		{"sarcastic", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func baseReport() *types.AnalysisReport {
	return &types.AnalysisReport{
		OverallScore: 82,
		Summary:      "Seasoned backend engineer with strong Go experience.",
		Strengths:    []string{"Strong professional background", "12 technical skills identified"},
		Improvements: []string{"Consider adding more quantified achievements"},
	}
}

func TestApplyLeavesScoresAndBaseTextAlone(t *testing.T) {
	report := baseReport()
	Apply(report, Brutal)

	if report.OverallScore != 82 {
		t.Errorf("overall score changed to %d", report.OverallScore)
	}
	if report.Summary != "Seasoned backend engineer with strong Go experience." {
		t.Errorf("base summary mutated: %q", report.Summary)
	}
	if report.MoodSummary == "" || report.MoodSummary == report.Summary {
		t.Errorf("mood summary not attached: %q", report.MoodSummary)
	}
	if len(report.MoodStrengths) != len(report.Strengths) {
		t.Errorf("mood strengths length = %d, want %d", len(report.MoodStrengths), len(report.Strengths))
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	a, b := baseReport(), baseReport()
	Apply(a, Witty)
	Apply(b, Witty)

	if a.MoodSummary != b.MoodSummary {
		t.Error("mood summary differs between identical runs")
	}
	if !reflect.DeepEqual(a.MoodStrengths, b.MoodStrengths) {
		t.Errorf("mood strengths differ: %v vs %v", a.MoodStrengths, b.MoodStrengths)
	}
	if !reflect.DeepEqual(a.MoodImprovements, b.MoodImprovements) {
		t.Errorf("mood improvements differ: %v vs %v", a.MoodImprovements, b.MoodImprovements)
	}
}

func TestApplyUnknownMoodFallsBackToProfessional(t *testing.T) {
	report := baseReport()
	Apply(report, Mood("nonsense"))

	if report.Mood != string(Professional) {
		t.Errorf("mood = %q, want professional", report.Mood)
	}
	if !strings.HasPrefix(report.MoodSummary, "Executive Summary:") {
		t.Errorf("professional summary not applied: %q", report.MoodSummary)
	}
}

func TestApplyProfessionalMarksEveryItem(t *testing.T) {
	report := baseReport()
	Apply(report, Professional)

	for _, s := range report.MoodStrengths {
		if !strings.HasPrefix(s, "✓ Demonstrated competency:") {
			t.Errorf("strength not transformed: %q", s)
		}
	}
	for _, s := range report.MoodImprovements {
		if !strings.HasPrefix(s, "→ Strategic recommendation:") {
			t.Errorf("improvement not transformed: %q", s)
		}
	}
}
