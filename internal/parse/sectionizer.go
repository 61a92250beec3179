// Package parse normalizes extracted resume text and partitions it into
// named semantic sections (contact, summary, experience, skills, ...).
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"resumelens/internal/errors"
)

// MinContentLength is the smallest trimmed input Parse accepts.
const MinContentLength = 50

// Sections holds the content of each recognized resume section. Empty
// strings mean the section was not found.
type Sections struct {
	ContactInfo    string
	Summary        string
	Experience     string
	Education      string
	Skills         string
	Projects       string
	Certifications string
	Other          string
}

// Metadata describes what the parser did to the input.
type Metadata struct {
	OriginalLength int
	CleanedLength  int
	SectionsFound  []string
	HasStructure   bool
}

// ParsedResume is the structured view of extracted resume text.
type ParsedResume struct {
	Sections  Sections
	CleanText string
	Metadata  Metadata
}

type headerPattern struct {
	name string
	re   *regexp.Regexp
}

// Ordered: a header line matches at most one entry, first match wins.
var headerPatterns = []headerPattern{
	{"contactInfo", regexp.MustCompile(`(?i)^(contact|personal|info|details|profile)$`)},
	{"summary", regexp.MustCompile(`(?i)^(summary|objective|about|overview|professional\s+summary)$`)},
	{"experience", regexp.MustCompile(`(?i)^(experience|work|employment|career|professional\s+experience|work\s+history)$`)},
	{"education", regexp.MustCompile(`(?i)^(education|academic|qualifications|degrees?)$`)},
	{"skills", regexp.MustCompile(`(?i)^(skills|technical|competencies|expertise|technologies|tools)$`)},
	{"projects", regexp.MustCompile(`(?i)^(projects?|portfolio|work\s+samples?)$`)},
	{"certifications", regexp.MustCompile(`(?i)^(certifications?|certificates?|licenses?|credentials?)$`)},
}

var bulletRes = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[•▪▫‣⁃◦▸▹▶►]\s*`),
	regexp.MustCompile(`^\s*[-*+]\s*`),
	regexp.MustCompile(`^\s*\d+\.\s*`),
	regexp.MustCompile(`^\s*[a-zA-Z]\.\s*`),
	regexp.MustCompile(`(?i)^\s*[ivxlcdm]+\.\s*`),
}

var (
	pageNumberRe = regexp.MustCompile(`(?i)^(page\s+\d+.*|\d+)$`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	headerWordRe = regexp.MustCompile(`[^\w\s]`)

	emailLineRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneLineRe   = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?(\(\d{3}\)[-.\s]?|\d{3}[-.\s])\d{3}[-.\s]?\d{4}`)
	socialLineRe  = regexp.MustCompile(`(?i)(linkedin\.com|github\.com|twitter\.com|gitlab\.com|portfolio\s*:|website\s*:)`)
	streetLineRe  = regexp.MustCompile(`(?i)\b\d{1,5}\s+\w[\w.' ]{1,40}\s(street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|court|ct|place|pl|way)\.?\b`)
	cityZipLineRe = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)*,\s*[A-Z]{2}\s+\d{5}(-\d{4})?\b`)
	nameLineRe    = regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z.]+){1,2}$`)

	sentenceEndRe = regexp.MustCompile(`[.!?]$`)
)

const (
	contactScanLines = 20
	nameScanLines    = 3
	maxSummaryLines  = 3
	minSummaryLength = 30
)

// Parse normalizes rawText and splits it into sections. Every non-blank
// input line lands in exactly one section; unclaimed content goes to Other.
func Parse(rawText string) (*ParsedResume, error) {
	if len(strings.TrimSpace(rawText)) < MinContentLength {
		return nil, errors.NewValidationError(errors.ErrCodeContentTooShort,
			fmt.Sprintf("resume text is too short to analyze (%d characters, need at least %d)",
				len(strings.TrimSpace(rawText)), MinContentLength), nil).
			WithContext("length", len(strings.TrimSpace(rawText)))
	}

	normalized := Normalize(rawText)
	sections, hasStructure := assignSections(normalized)
	cleanText := CreateStructuredText(sections)

	return &ParsedResume{
		Sections:  sections,
		CleanText: cleanText,
		Metadata: Metadata{
			OriginalLength: len(rawText),
			CleanedLength:  len(cleanText),
			SectionsFound:  foundSections(sections),
			HasStructure:   hasStructure,
		},
	}, nil
}

// Normalize unifies line endings, merges soft-wrapped lines, canonicalizes
// bullet markers, drops page-number lines and collapses blank runs. The
// pass is a fixed point: normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if pageNumberRe.MatchString(line) {
			continue
		}
		for _, re := range bulletRes {
			if re.MatchString(line) {
				line = re.ReplaceAllString(line, "- ")
				break
			}
		}
		lines = append(lines, line)
	}

	merged := mergeSoftWraps(lines)

	var out []string
	blank := false
	for _, line := range merged {
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// mergeSoftWraps joins a line ending mid-sentence with a following line
// that starts lowercase. Joining accumulates, so a sentence wrapped across
// three lines becomes one.
func mergeSoftWraps(lines []string) []string {
	var out []string
	for _, line := range lines {
		if len(out) > 0 && wrapsInto(out[len(out)-1], line) {
			out[len(out)-1] += " " + line
			continue
		}
		out = append(out, line)
	}
	return out
}

func wrapsInto(prev, next string) bool {
	if prev == "" || next == "" {
		return false
	}
	last := prev[len(prev)-1]
	first := next[0]
	endsMidSentence := (last >= 'a' && last <= 'z') || last == ','
	return endsMidSentence && first >= 'a' && first <= 'z'
}

func assignSections(normalized string) (Sections, bool) {
	lines := strings.Split(normalized, "\n")
	claimed := make(map[int]bool)

	var contact []string
	seenContact := make(map[string]bool)
	summaryCount := 0
	var summary []string

	// Claim contact and summary lines from the head of the document,
	// stopping at the first section header.
	limit := min(contactScanLines, len(lines))
	for i := 0; i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if headerFor(line) != "" {
			break
		}
		if isContactLine(line) || (i < nameScanLines && nameLineRe.MatchString(line)) {
			if !seenContact[line] {
				seenContact[line] = true
				contact = append(contact, line)
			}
			claimed[i] = true
			continue
		}
		if summaryCount < maxSummaryLines && len(line) > minSummaryLength && sentenceEndRe.MatchString(line) {
			summary = append(summary, line)
			summaryCount++
			claimed[i] = true
		}
	}

	buffers := map[string][]string{}
	current := "other"
	hasStructure := false

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || claimed[i] {
			continue
		}
		if name := headerFor(line); name != "" {
			current = name
			hasStructure = true
			continue
		}
		buffers[current] = append(buffers[current], line)
	}

	sections := Sections{
		ContactInfo:    strings.Join(contact, "\n"),
		Summary:        strings.Join(summary, "\n"),
		Experience:     strings.Join(buffers["experience"], "\n"),
		Education:      strings.Join(buffers["education"], "\n"),
		Skills:         strings.Join(buffers["skills"], "\n"),
		Projects:       strings.Join(buffers["projects"], "\n"),
		Certifications: strings.Join(buffers["certifications"], "\n"),
		Other:          strings.Join(buffers["other"], "\n"),
	}

	// Header-led contact/summary blocks merge with the heuristic ones.
	if extra := strings.Join(buffers["contactInfo"], "\n"); extra != "" {
		sections.ContactInfo = joinBlocks(sections.ContactInfo, extra)
	}
	if extra := strings.Join(buffers["summary"], "\n"); extra != "" {
		sections.Summary = joinBlocks(sections.Summary, extra)
	}

	return sections, hasStructure
}

func joinBlocks(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

func headerFor(line string) string {
	clean := strings.TrimSpace(headerWordRe.ReplaceAllString(line, ""))
	for _, hp := range headerPatterns {
		if hp.re.MatchString(clean) {
			return hp.name
		}
	}
	return ""
}

func isContactLine(line string) bool {
	return emailLineRe.MatchString(line) ||
		phoneLineRe.MatchString(line) ||
		socialLineRe.MatchString(line) ||
		streetLineRe.MatchString(line) ||
		cityZipLineRe.MatchString(line)
}

type orderedSection struct {
	name    string
	title   string
	content func(Sections) string
}

var canonicalOrder = []orderedSection{
	{"contactInfo", "CONTACT INFO", func(s Sections) string { return s.ContactInfo }},
	{"summary", "SUMMARY", func(s Sections) string { return s.Summary }},
	{"experience", "EXPERIENCE", func(s Sections) string { return s.Experience }},
	{"skills", "SKILLS", func(s Sections) string { return s.Skills }},
	{"education", "EDUCATION", func(s Sections) string { return s.Education }},
	{"projects", "PROJECTS", func(s Sections) string { return s.Projects }},
	{"certifications", "CERTIFICATIONS", func(s Sections) string { return s.Certifications }},
	{"other", "OTHER", func(s Sections) string { return s.Other }},
}

// CreateStructuredText renders non-empty sections as titled blocks in
// canonical order.
func CreateStructuredText(sections Sections) string {
	var parts []string
	for _, sec := range canonicalOrder {
		if content := strings.TrimSpace(sec.content(sections)); content != "" {
			parts = append(parts, fmt.Sprintf("=== %s ===\n%s", sec.title, content))
		}
	}
	return strings.Join(parts, "\n\n")
}

func foundSections(s Sections) []string {
	var found []string
	for _, sec := range canonicalOrder {
		if strings.TrimSpace(sec.content(s)) != "" {
			found = append(found, sec.name)
		}
	}
	return found
}
