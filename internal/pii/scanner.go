// Package pii detects personally identifiable information in resume text
// with local regular expressions only. Nothing here touches the network.
package pii

import (
	"regexp"
	"strings"

	"resumelens/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Ordered most specific to most generic so the digit-key de-dup keeps
	// the best-formatted rendering of each number.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{2,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
		regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
		regexp.MustCompile(`\b\d{10,15}\b`),
	}

	socialRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9_-]+`),
		regexp.MustCompile(`(?i)github\.com/[A-Za-z0-9_-]+`),
		regexp.MustCompile(`(?i)twitter\.com/[A-Za-z0-9_]+`),
		regexp.MustCompile(`(?i)x\.com/[A-Za-z0-9_]+`),
		regexp.MustCompile(`(?i)gitlab\.com/[A-Za-z0-9_-]+`),
		regexp.MustCompile(`(?i)stackoverflow\.com/users/[A-Za-z0-9/_-]+`),
		regexp.MustCompile(`(?i)(?:portfolio|website)\s*:\s*(\S+)`),
	}

	addressRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z0-9.' ]{2,40}\s(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Court|Ct|Place|Pl|Way)\.?\b`),
		regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)*,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`),
		regexp.MustCompile(`(?i)\bP\.?\s?O\.?\s?Box\s+\d+\b`),
	}

	digitsRe = regexp.MustCompile(`\D`)
)

// Detect scans text for emails, phone numbers, addresses and social media
// references. It is a pure function: absence of matches yields empty lists,
// never an error. Each category is first-seen de-duplicated; phones are
// compared by their digit-only form so "555-123-4567" and "(555) 123-4567"
// collapse to one entry.
func Detect(text string) types.PIIFindings {
	return types.PIIFindings{
		Emails:      dedupe(emailRe.FindAllString(text, -1), identity),
		Phones:      collect(text, phoneRes, digitsOnly),
		Addresses:   collect(text, addressRes, identity),
		SocialMedia: collectSocial(text),
	}
}

func collect(text string, patterns []*regexp.Regexp, keyFn func(string) string) []string {
	var all []string
	for _, re := range patterns {
		all = append(all, re.FindAllString(text, -1)...)
	}
	return dedupe(all, keyFn)
}

// collectSocial handles the "portfolio:" / "website:" label form, which
// carries its value in a capture group rather than the whole match.
func collectSocial(text string) []string {
	var all []string
	for _, re := range socialRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && m[1] != "" {
				all = append(all, m[1])
			} else {
				all = append(all, m[0])
			}
		}
	}
	return dedupe(all, strings.ToLower)
}

func dedupe(matches []string, keyFn func(string) string) []string {
	out := []string{}
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		key := keyFn(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

func identity(s string) string { return s }

func digitsOnly(s string) string { return digitsRe.ReplaceAllString(s, "") }
