// Package coerce converts loosely structured model output into strictly
// validated typed values, substituting a safe fallback on any failure.
// Every function here is total: malformed input degrades, it never errors.
package coerce

import (
	"encoding/json"
	"regexp"
	"strings"

	"resumelens/internal/errors"

	"github.com/tidwall/gjson"
)

var (
	boldRe        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe      = regexp.MustCompile(`\*(.*?)\*`)
	escapedNLRe   = regexp.MustCompile(`\\n`)
	smartDoubleRe = regexp.MustCompile("[“”]")
	smartSingleRe = regexp.MustCompile("[‘’]")
	fenceOpenRe   = regexp.MustCompile("```json\\s*")
	fenceCloseRe  = regexp.MustCompile("```\\s*$")
	fenceLineRe   = regexp.MustCompile("(?m)^\\s*```.*$")
)

// Sanitize strips markdown decoration, escaped newlines, smart quotes and
// code fences from a raw model response. Running it twice yields the same
// output as running it once.
func Sanitize(raw string) string {
	s := boldRe.ReplaceAllString(raw, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = escapedNLRe.ReplaceAllString(s, "")
	s = smartDoubleRe.ReplaceAllString(s, `"`)
	s = smartSingleRe.ReplaceAllString(s, "'")
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")
	s = fenceLineRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractJSON sanitizes the response and returns the first well-formed JSON
// candidate substring. Both objects and arrays are considered; when both
// delimiters are present the earlier opening delimiter wins.
func ExtractJSON(raw string) (string, bool) {
	cleaned := Sanitize(raw)

	objStart := strings.Index(cleaned, "{")
	objEnd := strings.LastIndex(cleaned, "}") + 1
	arrStart := strings.Index(cleaned, "[")
	arrEnd := strings.LastIndex(cleaned, "]") + 1

	start, end := -1, -1
	switch {
	case objStart != -1 && arrStart != -1:
		if objStart < arrStart {
			start, end = objStart, objEnd
		} else {
			start, end = arrStart, arrEnd
		}
	case objStart != -1:
		start, end = objStart, objEnd
	case arrStart != -1:
		start, end = arrStart, arrEnd
	}

	if start == -1 || end == 0 || start >= end {
		return "", false
	}
	return cleaned[start:end], true
}

// ParseWithFallback extracts, parses and validates a typed value from raw
// model output. Any failure returns the fallback unchanged, so callers
// always observe a value of the expected shape. Degradation is logged,
// never surfaced as an error.
func ParseWithFallback[T any](raw string, fallback T, schema Schema, logger *errors.Logger) T {
	jsonText, ok := ExtractJSON(raw)
	if !ok {
		logDegradation(logger, "no JSON value found in response", raw)
		return fallback
	}

	if !gjson.Valid(jsonText) {
		logDegradation(logger, "candidate substring is not valid JSON", jsonText)
		return fallback
	}

	if !schema.Validate(jsonText) {
		logDegradation(logger, "parsed JSON failed schema validation", jsonText)
		return fallback
	}

	var out T
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		logDegradation(logger, "JSON unmarshal failed: "+err.Error(), jsonText)
		return fallback
	}
	return out
}

func logDegradation(logger *errors.Logger, reason, payload string) {
	if logger == nil {
		return
	}
	if len(payload) > 200 {
		payload = payload[:200]
	}
	logger.Warn("Model response degraded to fallback",
		"reason", reason,
		"payload_prefix", payload)
}
