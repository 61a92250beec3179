package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobMatch", &JobMatchTextFormatter{})
	registry.RegisterFormatter("markdown", "JobMatch", &JobMatchMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter. The format name is
// case-insensitive.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	format = strings.ToLower(format)
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	case types.JobMatch, *types.JobMatch:
		return "JobMatch"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func toAnalysisReport(data any) (*types.AnalysisReport, error) {
	switch v := data.(type) {
	case types.AnalysisReport:
		return &v, nil
	case *types.AnalysisReport:
		return v, nil
	default:
		return nil, fmt.Errorf("expected AnalysisReport, got %T", data)
	}
}

func toJobMatch(data any) (*types.JobMatch, error) {
	switch v := data.(type) {
	case types.JobMatch:
		return &v, nil
	case *types.JobMatch:
		return v, nil
	default:
		return nil, fmt.Errorf("expected JobMatch, got %T", data)
	}
}

// reportSummary prefers the mood-phrased summary when one was applied.
func reportSummary(r *types.AnalysisReport) string {
	if r.MoodSummary != "" {
		return r.MoodSummary
	}
	return r.Summary
}

func reportStrengths(r *types.AnalysisReport) []string {
	if len(r.MoodStrengths) > 0 {
		return r.MoodStrengths
	}
	return r.Strengths
}

func reportImprovements(r *types.AnalysisReport) []string {
	if len(r.MoodImprovements) > 0 {
		return r.MoodImprovements
	}
	return r.Improvements
}

// AnalysisTextFormatter handles text formatting for analysis reports
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := toAnalysisReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n", result.OverallScore))
	output.WriteString(fmt.Sprintf("Detected Role: %s (%.0f%% confidence)\n",
		result.RoleAlignment.DetectedRole, result.RoleAlignment.Confidence))
	output.WriteString(fmt.Sprintf("Seniority: %s (%.1f years)\n\n",
		result.SeniorityEstimation.Level, result.SeniorityEstimation.YearsExperience))

	output.WriteString("Summary:\n")
	output.WriteString(reportSummary(result))
	output.WriteString("\n\n")

	output.WriteString("=== DETAILED SCORES ===\n")
	scores := result.DetailedScores
	output.WriteString(fmt.Sprintf("Contact Information: %d/100\n", scores.ContactInformation))
	output.WriteString(fmt.Sprintf("Work Experience:     %d/100\n", scores.WorkExperience))
	output.WriteString(fmt.Sprintf("Education:           %d/100\n", scores.Education))
	output.WriteString(fmt.Sprintf("Skills:              %d/100\n", scores.Skills))
	output.WriteString(fmt.Sprintf("Formatting:          %d/100\n", scores.Formatting))
	output.WriteString(fmt.Sprintf("Quantification:      %d/100\n", scores.Quantification))
	output.WriteString(fmt.Sprintf("Action Verbs:        %d/100\n", scores.ActionVerbs))
	output.WriteString(fmt.Sprintf("Consistency:         %d/100\n\n", scores.Consistency))

	if strengths := reportStrengths(result); len(strengths) > 0 {
		output.WriteString("=== STRENGTHS ===\n")
		for _, strength := range strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if improvements := reportImprovements(result); len(improvements) > 0 {
		output.WriteString("=== IMPROVEMENTS ===\n")
		for _, improvement := range improvements {
			output.WriteString(fmt.Sprintf("- %s\n", improvement))
		}
		output.WriteString("\n")
	}

	if len(result.ExtractedSkills) > 0 {
		output.WriteString("=== EXTRACTED SKILLS ===\n")
		output.WriteString(strings.Join(result.ExtractedSkills, ", "))
		output.WriteString("\n\n")
	}

	output.WriteString("=== QUANTIFICATION ===\n")
	output.WriteString(fmt.Sprintf("Score: %.0f/100\n", result.QuantificationAnalysis.Score))
	if len(result.QuantificationAnalysis.MetricsFound) > 0 {
		output.WriteString("Metrics Found:\n")
		for _, metric := range result.QuantificationAnalysis.MetricsFound {
			output.WriteString(fmt.Sprintf("- %s\n", metric))
		}
	}
	if len(result.QuantificationAnalysis.MissingMetrics) > 0 {
		output.WriteString("Missing Metrics:\n")
		for _, metric := range result.QuantificationAnalysis.MissingMetrics {
			output.WriteString(fmt.Sprintf("- %s\n", metric))
		}
	}
	output.WriteString("\n")

	output.WriteString("=== ACTION VERBS ===\n")
	output.WriteString(fmt.Sprintf("Score: %.0f/100\n", result.ActionVerbAnalysis.Score))
	if len(result.ActionVerbAnalysis.StrongVerbs) > 0 {
		output.WriteString("Strong: ")
		output.WriteString(strings.Join(result.ActionVerbAnalysis.StrongVerbs, ", "))
		output.WriteString("\n")
	}
	if len(result.ActionVerbAnalysis.WeakVerbs) > 0 {
		output.WriteString("Weak: ")
		output.WriteString(strings.Join(result.ActionVerbAnalysis.WeakVerbs, ", "))
		output.WriteString("\n")
	}
	output.WriteString("\n")

	output.WriteString("=== SOFT SKILLS ===\n")
	soft := result.SoftSkillsInference
	output.WriteString(fmt.Sprintf("Leadership: %.0f  Communication: %.0f  Problem Solving: %.0f  Teamwork: %.0f  Adaptability: %.0f\n",
		soft.Leadership, soft.Communication, soft.ProblemSolving, soft.Teamwork, soft.Adaptability))
	if len(soft.InferredQualities) > 0 {
		output.WriteString("Inferred Qualities: ")
		output.WriteString(strings.Join(soft.InferredQualities, ", "))
		output.WriteString("\n")
	}
	output.WriteString("\n")

	consistency := result.ConsistencyCheck
	issues := len(consistency.DateFormatIssues) + len(consistency.TenseIssues) + len(consistency.FormattingIssues)
	output.WriteString("=== CONSISTENCY ===\n")
	output.WriteString(fmt.Sprintf("Score: %.0f/100\n", consistency.Score))
	if issues == 0 {
		output.WriteString("No consistency issues found.\n")
	} else {
		for _, issue := range consistency.DateFormatIssues {
			output.WriteString(fmt.Sprintf("- [dates] %s\n", issue))
		}
		for _, issue := range consistency.TenseIssues {
			output.WriteString(fmt.Sprintf("- [tense] %s\n", issue))
		}
		for _, issue := range consistency.FormattingIssues {
			output.WriteString(fmt.Sprintf("- [formatting] %s\n", issue))
		}
	}
	output.WriteString("\n")

	output.WriteString("=== CONTACT INFORMATION DETECTED ===\n")
	pii := result.PIIDetected
	output.WriteString(fmt.Sprintf("Emails: %d  Phones: %d  Addresses: %d  Social: %d\n",
		len(pii.Emails), len(pii.Phones), len(pii.Addresses), len(pii.SocialMedia)))

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis reports
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := toAnalysisReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", result.OverallScore))
	output.WriteString(fmt.Sprintf("**Detected Role:** %s (%.0f%% confidence)\n\n",
		result.RoleAlignment.DetectedRole, result.RoleAlignment.Confidence))
	output.WriteString(fmt.Sprintf("**Seniority:** %s (%.1f years)\n\n",
		result.SeniorityEstimation.Level, result.SeniorityEstimation.YearsExperience))

	output.WriteString("## Summary\n\n")
	output.WriteString(reportSummary(result))
	output.WriteString("\n\n")

	output.WriteString("## Detailed Scores\n\n")
	scores := result.DetailedScores
	output.WriteString("| Category | Score |\n")
	output.WriteString("| --- | --- |\n")
	output.WriteString(fmt.Sprintf("| Contact Information | %d/100 |\n", scores.ContactInformation))
	output.WriteString(fmt.Sprintf("| Work Experience | %d/100 |\n", scores.WorkExperience))
	output.WriteString(fmt.Sprintf("| Education | %d/100 |\n", scores.Education))
	output.WriteString(fmt.Sprintf("| Skills | %d/100 |\n", scores.Skills))
	output.WriteString(fmt.Sprintf("| Formatting | %d/100 |\n", scores.Formatting))
	output.WriteString(fmt.Sprintf("| Quantification | %d/100 |\n", scores.Quantification))
	output.WriteString(fmt.Sprintf("| Action Verbs | %d/100 |\n", scores.ActionVerbs))
	output.WriteString(fmt.Sprintf("| Consistency | %d/100 |\n\n", scores.Consistency))

	if strengths := reportStrengths(result); len(strengths) > 0 {
		output.WriteString("## Strengths\n\n")
		for _, strength := range strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if improvements := reportImprovements(result); len(improvements) > 0 {
		output.WriteString("## Improvements\n\n")
		for _, improvement := range improvements {
			output.WriteString(fmt.Sprintf("- %s\n", improvement))
		}
		output.WriteString("\n")
	}

	if len(result.ExtractedSkills) > 0 {
		output.WriteString("## Extracted Skills\n\n")
		output.WriteString(strings.Join(result.ExtractedSkills, ", "))
		output.WriteString("\n\n")
	}

	output.WriteString("## Quantification\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %.0f/100\n\n", result.QuantificationAnalysis.Score))
	if len(result.QuantificationAnalysis.MetricsFound) > 0 {
		output.WriteString("### Metrics Found\n")
		for _, metric := range result.QuantificationAnalysis.MetricsFound {
			output.WriteString(fmt.Sprintf("- %s\n", metric))
		}
		output.WriteString("\n")
	}
	if len(result.QuantificationAnalysis.MissingMetrics) > 0 {
		output.WriteString("### Missing Metrics\n")
		for _, metric := range result.QuantificationAnalysis.MissingMetrics {
			output.WriteString(fmt.Sprintf("- %s\n", metric))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Action Verbs\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %.0f/100\n\n", result.ActionVerbAnalysis.Score))
	if len(result.ActionVerbAnalysis.StrongVerbs) > 0 {
		output.WriteString(fmt.Sprintf("**Strong:** %s\n\n", strings.Join(result.ActionVerbAnalysis.StrongVerbs, ", ")))
	}
	if len(result.ActionVerbAnalysis.WeakVerbs) > 0 {
		output.WriteString(fmt.Sprintf("**Weak:** %s\n\n", strings.Join(result.ActionVerbAnalysis.WeakVerbs, ", ")))
	}
	if len(result.ActionVerbAnalysis.Suggestions) > 0 {
		output.WriteString("### Suggestions\n")
		for _, suggestion := range result.ActionVerbAnalysis.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", suggestion))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Soft Skills\n\n")
	soft := result.SoftSkillsInference
	output.WriteString("| Skill | Score |\n")
	output.WriteString("| --- | --- |\n")
	output.WriteString(fmt.Sprintf("| Leadership | %.0f |\n", soft.Leadership))
	output.WriteString(fmt.Sprintf("| Communication | %.0f |\n", soft.Communication))
	output.WriteString(fmt.Sprintf("| Problem Solving | %.0f |\n", soft.ProblemSolving))
	output.WriteString(fmt.Sprintf("| Teamwork | %.0f |\n", soft.Teamwork))
	output.WriteString(fmt.Sprintf("| Adaptability | %.0f |\n\n", soft.Adaptability))
	if len(soft.InferredQualities) > 0 {
		output.WriteString(fmt.Sprintf("**Inferred Qualities:** %s\n\n", strings.Join(soft.InferredQualities, ", ")))
	}

	consistency := result.ConsistencyCheck
	output.WriteString("## Consistency\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %.0f/100\n\n", consistency.Score))
	issues := len(consistency.DateFormatIssues) + len(consistency.TenseIssues) + len(consistency.FormattingIssues)
	if issues == 0 {
		output.WriteString("No consistency issues found.\n\n")
	} else {
		for _, issue := range consistency.DateFormatIssues {
			output.WriteString(fmt.Sprintf("- **Dates:** %s\n", issue))
		}
		for _, issue := range consistency.TenseIssues {
			output.WriteString(fmt.Sprintf("- **Tense:** %s\n", issue))
		}
		for _, issue := range consistency.FormattingIssues {
			output.WriteString(fmt.Sprintf("- **Formatting:** %s\n", issue))
		}
		output.WriteString("\n")
	}

	pii := result.PIIDetected
	output.WriteString("## Contact Information Detected\n\n")
	output.WriteString(fmt.Sprintf("Emails: %d, Phones: %d, Addresses: %d, Social: %d\n",
		len(pii.Emails), len(pii.Phones), len(pii.Addresses), len(pii.SocialMedia)))

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

// JobMatchTextFormatter handles text formatting for job match results
type JobMatchTextFormatter struct{}

func (jtf *JobMatchTextFormatter) Format(data any) (string, error) {
	result, err := toJobMatch(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== JOB MATCH ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Match:    %.0f%%\n", result.OverallMatch))
	output.WriteString(fmt.Sprintf("Skills Match:     %.0f%%\n", result.SkillsMatch))
	output.WriteString(fmt.Sprintf("Experience Match: %.0f%%\n\n", result.ExperienceMatch))

	if len(result.MatchingSkills) > 0 {
		output.WriteString("Matching Skills:\n")
		for _, skill := range result.MatchingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.MissingSkills) > 0 {
		output.WriteString("Missing Skills:\n")
		for _, skill := range result.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("Recommendations:\n")
		for i, recommendation := range result.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
	}

	return output.String(), nil
}

func (jtf *JobMatchTextFormatter) SupportedType() string {
	return "JobMatch"
}

// JobMatchMarkdownFormatter handles markdown formatting for job match results
type JobMatchMarkdownFormatter struct{}

func (jmf *JobMatchMarkdownFormatter) Format(data any) (string, error) {
	result, err := toJobMatch(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Job Match\n\n")
	output.WriteString(fmt.Sprintf("**Overall Match:** %.0f%%\n\n", result.OverallMatch))
	output.WriteString(fmt.Sprintf("**Skills Match:** %.0f%%\n\n", result.SkillsMatch))
	output.WriteString(fmt.Sprintf("**Experience Match:** %.0f%%\n\n", result.ExperienceMatch))

	if len(result.MatchingSkills) > 0 {
		output.WriteString("## Matching Skills\n\n")
		for _, skill := range result.MatchingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.MissingSkills) > 0 {
		output.WriteString("## Missing Skills\n\n")
		for _, skill := range result.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for i, recommendation := range result.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
	}

	return output.String(), nil
}

func (jmf *JobMatchMarkdownFormatter) SupportedType() string {
	return "JobMatch"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
