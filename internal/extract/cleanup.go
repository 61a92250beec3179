package extract

import (
	"regexp"
	"strings"
)

var (
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
	innerSpaceRunRe = regexp.MustCompile(`[ \t]+`)
	boilerplateRe   = regexp.MustCompile(`(?i)^(page\s*\d+(\s*(of|/)\s*\d+)?|\d+|confidential.*|curriculum vitae|resume)$`)
)

// maxRepeats is how often a boilerplate line may appear before it is
// treated as a running header or footer.
const maxRepeats = 2

// cleanupExtracted removes running headers/footers, strips control
// characters and normalizes whitespace in freshly extracted text.
func cleanupExtracted(text string) string {
	text = strings.ReplaceAll(text, "\f", "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")

	counts := make(map[string]int, len(lines))
	for _, line := range lines {
		counts[strings.TrimSpace(line)]++
	}

	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(innerSpaceRunRe.ReplaceAllString(line, " "))
		if trimmed != "" && counts[strings.TrimSpace(line)] > maxRepeats && boilerplateRe.MatchString(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}

	out := strings.Join(kept, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
