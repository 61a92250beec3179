package types

// RoleAlignment represents the detected primary role of a candidate.
// Field names are part of the model wire schema and must not change.
type RoleAlignment struct {
	DetectedRole     string   `json:"detectedRole"`
	Confidence       float64  `json:"confidence"`
	AlternativeRoles []string `json:"alternativeRoles"`
	Reasoning        string   `json:"reasoning,omitempty"`
}

// SeniorityEstimation represents the estimated seniority level.
// Level is one of: Intern, Junior, Mid, Senior, Lead, Executive.
type SeniorityEstimation struct {
	Level           string   `json:"level"`
	Confidence      float64  `json:"confidence"`
	Indicators      []string `json:"indicators"`
	YearsExperience float64  `json:"yearsExperience"`
}

// QuantificationAnalysis captures quantified achievements found in a resume
type QuantificationAnalysis struct {
	MetricsFound   []string `json:"metricsFound"`
	MissingMetrics []string `json:"missingMetrics"`
	Score          float64  `json:"score"`
}

// ActionVerbAnalysis captures strong/weak verb usage
type ActionVerbAnalysis struct {
	StrongVerbs []string `json:"strongVerbs"`
	WeakVerbs   []string `json:"weakVerbs"`
	Suggestions []string `json:"suggestions"`
	Score       float64  `json:"score"`
}

// SoftSkillsInference scores soft skills on evidence in the text.
// All numeric fields are clamped into [0,100] after parsing.
type SoftSkillsInference struct {
	Leadership        float64  `json:"leadership"`
	Communication     float64  `json:"communication"`
	ProblemSolving    float64  `json:"problemSolving"`
	Teamwork          float64  `json:"teamwork"`
	Adaptability      float64  `json:"adaptability"`
	InferredQualities []string `json:"inferredQualities"`
}

// ConsistencyCheck reports formatting, date and tense consistency issues
type ConsistencyCheck struct {
	DateFormatIssues []string `json:"dateFormatIssues"`
	TenseIssues      []string `json:"tenseIssues"`
	FormattingIssues []string `json:"formattingIssues"`
	Score            float64  `json:"score"`
}

// PIIFindings holds categorized personally identifiable information
// detected locally in the resume text. Each list is order-preserving
// and de-duplicated.
type PIIFindings struct {
	Emails      []string `json:"emails"`
	Phones      []string `json:"phones"`
	Addresses   []string `json:"addresses"`
	SocialMedia []string `json:"socialMedia"`
}

// Any reports whether at least one category has a finding.
func (f PIIFindings) Any() bool {
	return len(f.Emails) > 0 || len(f.Phones) > 0 || len(f.Addresses) > 0 || len(f.SocialMedia) > 0
}

// DetailedScores holds the eight category scores, each in [0,100]
type DetailedScores struct {
	ContactInformation int `json:"contactInformation"`
	WorkExperience     int `json:"workExperience"`
	Education          int `json:"education"`
	Skills             int `json:"skills"`
	Formatting         int `json:"formatting"`
	Quantification     int `json:"quantification"`
	ActionVerbs        int `json:"actionVerbs"`
	Consistency        int `json:"consistency"`
}

// AnalysisReport is the aggregate result of one resume analysis run.
// It is immutable once returned; mood variants are presentation-only
// and never alter the underlying scores.
type AnalysisReport struct {
	ID              string         `json:"id"`
	OverallScore    int            `json:"overallScore"`
	DetailedScores  DetailedScores `json:"detailedScores"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
	ExtractedSkills []string       `json:"extractedSkills"`
	Summary         string         `json:"summary"`

	QuantificationAnalysis QuantificationAnalysis `json:"quantificationAnalysis"`
	ActionVerbAnalysis     ActionVerbAnalysis     `json:"actionVerbAnalysis"`
	SoftSkillsInference    SoftSkillsInference    `json:"softSkillsInference"`
	ConsistencyCheck       ConsistencyCheck       `json:"consistencyCheck"`
	RoleAlignment          RoleAlignment          `json:"roleAlignment"`
	SeniorityEstimation    SeniorityEstimation    `json:"seniorityEstimation"`

	PIIDetected PIIFindings `json:"piiDetected"`

	Mood             string   `json:"mood,omitempty"`
	MoodSummary      string   `json:"moodSummary,omitempty"`
	MoodStrengths    []string `json:"moodStrengths,omitempty"`
	MoodImprovements []string `json:"moodImprovements,omitempty"`
}

// JobMatch represents the comparison of a resume against a job description
type JobMatch struct {
	OverallMatch    float64  `json:"overallMatch"`
	SkillsMatch     float64  `json:"skillsMatch"`
	ExperienceMatch float64  `json:"experienceMatch"`
	MissingSkills   []string `json:"missingSkills"`
	MatchingSkills  []string `json:"matchingSkills"`
	Recommendations []string `json:"recommendations"`
}
