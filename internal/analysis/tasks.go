package analysis

import (
	"context"

	"resumelens/internal/coerce"
	"resumelens/internal/errors"
	"resumelens/internal/llm"
	"resumelens/internal/types"
)

// defaultTemperature keeps analysis output stable across runs.
const defaultTemperature = 0.1

// Fallbacks are what callers observe when the model answer cannot be
// parsed or fails validation. They are fully shaped, never partial.

func roleFallback() types.RoleAlignment {
	return types.RoleAlignment{
		DetectedRole:     "Unknown",
		Confidence:       0,
		AlternativeRoles: []string{},
		Reasoning:        "Analysis failed",
	}
}

func seniorityFallback() types.SeniorityEstimation {
	return types.SeniorityEstimation{
		Level:           "Unknown",
		Confidence:      0,
		Indicators:      []string{},
		YearsExperience: 0,
	}
}

func quantificationFallback() types.QuantificationAnalysis {
	return types.QuantificationAnalysis{
		MetricsFound:   []string{},
		MissingMetrics: []string{},
		Score:          0,
	}
}

func actionVerbsFallback() types.ActionVerbAnalysis {
	return types.ActionVerbAnalysis{
		StrongVerbs: []string{},
		WeakVerbs:   []string{},
		Suggestions: []string{},
		Score:       0,
	}
}

func softSkillsFallback() types.SoftSkillsInference {
	return types.SoftSkillsInference{
		InferredQualities: []string{},
	}
}

func consistencyFallback() types.ConsistencyCheck {
	return types.ConsistencyCheck{
		DateFormatIssues: []string{},
		TenseIssues:      []string{},
		FormattingIssues: []string{},
		Score:            100,
	}
}

func jobMatchFallback() types.JobMatch {
	return types.JobMatch{
		MissingSkills:   []string{},
		MatchingSkills:  []string{},
		Recommendations: []string{"Analysis failed - please try again"},
	}
}

// Schemas enumerate every required field and its expected type; a
// response missing any of them degrades to the fallback.

func roleSchema() coerce.Schema {
	return coerce.Object(
		coerce.Str("detectedRole"),
		coerce.Num("confidence"),
		coerce.Strs("alternativeRoles"),
	)
}

func senioritySchema() coerce.Schema {
	return coerce.Object(
		coerce.Str("level"),
		coerce.Num("confidence"),
		coerce.Strs("indicators"),
		coerce.Num("yearsExperience"),
	)
}

func quantificationSchema() coerce.Schema {
	return coerce.Object(
		coerce.Strs("metricsFound"),
		coerce.Num("score"),
	)
}

func actionVerbsSchema() coerce.Schema {
	return coerce.Object(
		coerce.Strs("strongVerbs"),
		coerce.Strs("weakVerbs"),
		coerce.Strs("suggestions"),
		coerce.Num("score"),
	)
}

func softSkillsSchema() coerce.Schema {
	return coerce.Object(
		coerce.NumIn("leadership", 0, 100),
		coerce.NumIn("communication", 0, 100),
		coerce.NumIn("problemSolving", 0, 100),
		coerce.NumIn("teamwork", 0, 100),
		coerce.NumIn("adaptability", 0, 100),
		coerce.Strs("inferredQualities"),
	)
}

func consistencySchema() coerce.Schema {
	return coerce.Object(
		coerce.Strs("dateFormatIssues"),
		coerce.Strs("tenseIssues"),
		coerce.Strs("formattingIssues"),
		coerce.Num("score"),
	)
}

func jobMatchSchema() coerce.Schema {
	return coerce.Object(
		coerce.Num("overallMatch"),
		coerce.Num("skillsMatch"),
		coerce.Num("experienceMatch"),
		coerce.Strs("missingSkills"),
		coerce.Strs("matchingSkills"),
		coerce.Strs("recommendations"),
	)
}

// runTask issues one chat completion and coerces the answer into T. A
// transport error propagates; a malformed answer degrades to fallback.
func runTask[T any](ctx context.Context, provider llm.ChatProvider, messages []llm.Message, fallback T, schema coerce.Schema, logger *errors.Logger) (T, error) {
	response, err := provider.Complete(ctx, messages, defaultTemperature)
	if err != nil {
		var zero T
		return zero, err
	}
	return coerce.ParseWithFallback(response, fallback, schema, logger), nil
}

// clampSoftSkills bounds every numeric soft-skill field into [0,100]
// and keeps InferredQualities non-nil.
func clampSoftSkills(s types.SoftSkillsInference) types.SoftSkillsInference {
	s.Leadership = clamp(s.Leadership)
	s.Communication = clamp(s.Communication)
	s.ProblemSolving = clamp(s.ProblemSolving)
	s.Teamwork = clamp(s.Teamwork)
	s.Adaptability = clamp(s.Adaptability)
	if s.InferredQualities == nil {
		s.InferredQualities = []string{}
	}
	return s
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
