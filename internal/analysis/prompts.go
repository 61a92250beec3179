package analysis

import (
	"fmt"
	"strings"

	"resumelens/internal/llm"
	"resumelens/internal/types"
)

// The system prompts are the wire schema between orchestrator and model:
// each one pins the exact field set the response must carry. Changing the
// wording changes model behavior, so they stay fixed.

const roleSystemPrompt = `You are a resume analysis expert. Analyze the resume text and determine the candidate's primary role based ONLY on their actual experience, skills, and job titles mentioned in the resume.

CRITICAL: Base your analysis ONLY on what is explicitly stated in the resume. Do not make assumptions.

Return ONLY a JSON object in this exact format (no markdown, no explanations):
{
  "detectedRole": "exact role based on resume content",
  "confidence": 85,
  "alternativeRoles": ["role1", "role2"],
  "reasoning": "brief explanation of why this role was detected"
}`

const skillsSystemPrompt = `You are a resume analysis expert. Extract ONLY the technical skills, tools, technologies, and programming languages that are explicitly mentioned in the resume text.

CRITICAL RULES:
- Extract ONLY skills that are literally written in the resume
- Do NOT add skills that are not mentioned
- Do NOT make assumptions about skills based on job titles
- Do NOT add related or commonly used skills

Return ONLY a JSON array of strings (no markdown, no explanations):
["skill1", "skill2", "skill3"]`

const senioritySystemPrompt = `You are a resume analysis expert. Analyze the resume and determine the candidate's seniority level based on:
- Years of experience mentioned
- Job titles and responsibilities
- Leadership or mentoring roles
- Project complexity and scope

Return ONLY a JSON object (no markdown, no explanations):
{
  "level": "Junior",
  "confidence": 75,
  "indicators": ["reason1", "reason2"],
  "yearsExperience": 3
}

Valid levels: Intern, Junior, Mid, Senior, Lead, Executive`

const quantificationSystemPrompt = `Extract quantified achievements and metrics from the resume. Look for numbers, percentages, timeframes, and measurable results.

Return ONLY a JSON object (no markdown, no explanations):
{
  "metricsFound": ["metric1", "metric2"],
  "score": 75
}`

const actionVerbsSystemPrompt = `Analyze the action verbs used in the resume. Identify strong action verbs and weak/passive language.

Return ONLY a JSON object (no markdown, no explanations):
{
  "strongVerbs": ["verb1", "verb2"],
  "weakVerbs": ["weak1", "weak2"],
  "suggestions": ["suggestion1", "suggestion2"],
  "score": 80
}`

const softSkillsSystemPrompt = `You are a resume analysis assistant. Analyze the resume text and score soft skills based on evidence found in the text.

CRITICAL: Return ONLY valid JSON with no markdown formatting, no explanations, no additional text.

Return this exact JSON structure:
{
  "leadership": 75,
  "communication": 80,
  "problemSolving": 70,
  "teamwork": 85,
  "adaptability": 60,
  "inferredQualities": ["quality1", "quality2"]
}

Scores should be 0-100 based on evidence in the resume.`

const consistencySystemPrompt = `Analyze the resume for consistency issues in formatting, dates, and language.

Return ONLY a JSON object (no markdown, no explanations):
{
  "dateFormatIssues": ["issue1", "issue2"],
  "tenseIssues": ["issue1", "issue2"],
  "formattingIssues": ["issue1", "issue2"],
  "score": 85
}`

const summarySystemPrompt = `You are a resume analysis expert. Create a comprehensive 5-6 line summary of the candidate based on their resume.

CRITICAL: Return ONLY the summary text, no JSON, no markdown, no explanations.

The summary should include:
- Professional background and role
- Years of experience and seniority level
- Key skills and expertise areas
- Notable achievements or strengths
- Overall career trajectory
- Industry focus

Keep it factual, comprehensive, and professional regardless of the requested tone.`

const jobMatchSystemPrompt = `You are a resume-job matching expert. Compare the resume with the job description and provide a detailed match analysis.

Return ONLY a JSON object (no markdown, no explanations):
{
  "overallMatch": 75,
  "skillsMatch": 80,
  "experienceMatch": 70,
  "missingSkills": ["skill1", "skill2"],
  "matchingSkills": ["skill1", "skill2"],
  "recommendations": ["rec1", "rec2"]
}`

func prompt(system, user string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

// system returns the override for a task when the prompt source has one,
// otherwise the built-in prompt.
func (o *Orchestrator) system(task, builtin string) string {
	if o.prompts != nil {
		if s, ok := o.prompts.System(task); ok {
			return s
		}
	}
	return builtin
}

func (o *Orchestrator) rolePrompt(resumeText string) []llm.Message {
	return prompt(o.system("role", roleSystemPrompt),
		"Analyze this resume and detect the primary role:\n\n"+resumeText)
}

func (o *Orchestrator) skillsPrompt(resumeText string) []llm.Message {
	return prompt(o.system("skills", skillsSystemPrompt),
		"Extract the explicitly mentioned skills from this resume:\n\n"+resumeText)
}

func (o *Orchestrator) seniorityPrompt(resumeText string) []llm.Message {
	return prompt(o.system("seniority", senioritySystemPrompt),
		"Analyze the seniority level from this resume:\n\n"+resumeText)
}

func (o *Orchestrator) quantificationPrompt(resumeText string) []llm.Message {
	return prompt(o.system("quantification", quantificationSystemPrompt),
		"Find quantified achievements in this resume:\n\n"+resumeText)
}

func (o *Orchestrator) actionVerbsPrompt(resumeText string) []llm.Message {
	return prompt(o.system("actionVerbs", actionVerbsSystemPrompt),
		"Analyze action verbs in this resume:\n\n"+resumeText)
}

func (o *Orchestrator) softSkillsPrompt(resumeText string) []llm.Message {
	return prompt(o.system("softSkills", softSkillsSystemPrompt),
		"Analyze soft skills from this resume:\n\n"+resumeText)
}

func (o *Orchestrator) consistencyPrompt(resumeText string) []llm.Message {
	return prompt(o.system("consistency", consistencySystemPrompt),
		"Check consistency in this resume:\n\n"+resumeText)
}

func (o *Orchestrator) summaryPrompt(resumeText string, role types.RoleAlignment, seniority types.SeniorityEstimation, skills []string) []llm.Message {
	detectedRole := role.DetectedRole
	if detectedRole == "" {
		detectedRole = "Professional"
	}
	level := seniority.Level
	if level == "" {
		level = "Mid-level"
	}
	topSkills := skills
	if len(topSkills) > 8 {
		topSkills = topSkills[:8]
	}

	user := fmt.Sprintf(`Create a detailed summary for this candidate:

RESUME TEXT:
%s

DETECTED ROLE: %s
SENIORITY: %s (%.0f years)
KEY SKILLS: %s

Write a comprehensive 5-6 line summary covering their background, experience, skills, and career focus.`,
		resumeText, detectedRole, level, seniority.YearsExperience, strings.Join(topSkills, ", "))

	return prompt(o.system("summary", summarySystemPrompt), user)
}

func (o *Orchestrator) jobMatchPrompt(resumeText, jobDescription string) []llm.Message {
	user := fmt.Sprintf(`Compare this resume with the job description:

RESUME:
%s

JOB DESCRIPTION:
%s`, resumeText, jobDescription)

	return prompt(o.system("jobMatch", jobMatchSystemPrompt), user)
}
