// Package mood rewrites report narrative text in a selectable tone.
// Scores are never altered, only the presentation strings.
package mood

import (
	"fmt"
	"hash/fnv"
	"strings"

	"resumelens/internal/types"
)

// Mood is the presentation tone for report text.
type Mood string

const (
	Professional Mood = "professional"
	Brutal       Mood = "brutal"
	Soft         Mood = "soft"
	Witty        Mood = "witty"
	Motivational Mood = "motivational"
)

// All lists the supported moods for flag validation.
func All() []Mood {
	return []Mood{Professional, Brutal, Soft, Witty, Motivational}
}

// Parse validates a mood name, defaulting empty input to Professional.
func Parse(s string) (Mood, error) {
	if s == "" {
		return Professional, nil
	}
	m := Mood(strings.ToLower(s))
	for _, known := range All() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q (valid: professional, brutal, soft, witty, motivational)", s)
}

type transforms struct {
	summary      func(string) string
	strengths    []string
	improvements []string
}

var moodTransforms = map[Mood]transforms{
	Brutal: {
		summary: func(s string) string {
			return fmt.Sprintf("Look, here's the deal: %s. Time to face reality and fix what's broken.", strings.ToLower(s))
		},
		strengths: []string{
			"Fine, you got this right: %s",
			"At least you didn't mess up: %s",
			"This actually works: %s",
			"Credit where it's due: %s",
		},
		improvements: []string{
			"Stop ignoring this: %s",
			"This is holding you back: %s",
			"Fix this immediately: %s",
			"You're losing opportunities because: %s",
		},
	},
	Soft: {
		summary: func(s string) string {
			return fmt.Sprintf("You have such wonderful potential! %s Keep believing in yourself! 💕", s)
		},
		strengths: []string{
			"You're doing amazing with: %s ✨",
			"I love how you've shown: %s 🌟",
			"You should be proud of: %s 💖",
			"This is absolutely lovely: %s 🌸",
		},
		improvements: []string{
			"With a little love and attention, consider: %s 🌱",
			"When you're ready, maybe try: %s 💫",
			"A gentle suggestion: %s 🤗",
			"You might find it helpful to: %s 🌈",
		},
	},
	Professional: {
		summary: func(s string) string {
			return fmt.Sprintf("Executive Summary: %s This assessment provides strategic recommendations for career advancement.", s)
		},
		strengths:    []string{"✓ Demonstrated competency: %s"},
		improvements: []string{"→ Strategic recommendation: %s"},
	},
	Witty: {
		summary: func(s string) string {
			return fmt.Sprintf("Well, well, well... %s. Let's see what we're working with here! 😏", strings.ToLower(s))
		},
		strengths: []string{
			"Not gonna lie, this is actually solid: %s 👌",
			"Plot twist: you nailed this one: %s 🎯",
			"Okay, I'll give you this: %s 😎",
			"Surprisingly decent: %s 🤷",
		},
		improvements: []string{
			"Hate to break it to you, but: %s 🙃",
			"Here's the tea: %s ☕",
			"Reality check incoming: %s 📢",
			"Plot armor won't save you from: %s 🛡️",
		},
	},
	Motivational: {
		summary: func(s string) string {
			return fmt.Sprintf("CHAMPION! %s You're on the path to greatness! 🚀", s)
		},
		strengths: []string{
			"CRUSHING IT with: %s! Keep that energy! 💪",
			"You're DOMINATING: %s! This is your superpower! ⚡",
			"BEAST MODE activated on: %s! Unstoppable! 🔥",
			"LEGENDARY performance in: %s! You're built different! 🏆",
		},
		improvements: []string{
			"LEVEL UP opportunity: %s! You got this! 🎯",
			"NEXT CHALLENGE unlocked: %s! Time to shine! ✨",
			"POWER UP available: %s! Claim your upgrade! ⬆️",
			"BOSS BATTLE ahead: %s! Show them what you're made of! 💥",
		},
	},
}

// Apply attaches mood-specific summary, strength and improvement variants
// to the report. The underlying scores and base text stay untouched.
func Apply(report *types.AnalysisReport, m Mood) {
	t, ok := moodTransforms[m]
	if !ok {
		t = moodTransforms[Professional]
		m = Professional
	}

	report.Mood = string(m)
	report.MoodSummary = t.summary(report.Summary)
	report.MoodStrengths = transformAll(t.strengths, report.Strengths)
	report.MoodImprovements = transformAll(t.improvements, report.Improvements)
}

func transformAll(variants, items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprintf(pick(variants, item), strings.ToLower(item))
	}
	return out
}

// pick selects a variant deterministically by hashing the input, so the
// same report always renders the same way.
func pick(variants []string, input string) string {
	h := fnv.New32a()
	h.Write([]byte(input))
	return variants[h.Sum32()%uint32(len(variants))]
}
