package coerce

import (
	"reflect"
	"testing"
)

type roleResult struct {
	DetectedRole     string   `json:"detectedRole"`
	Confidence       float64  `json:"confidence"`
	AlternativeRoles []string `json:"alternativeRoles"`
}

func roleSchema() Schema {
	return Object(
		Str("detectedRole"),
		Num("confidence"),
		Strs("alternativeRoles"),
	)
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"**bold** and *italic* text",
		"```json\n{\"a\":1}\n```",
		"\u201csmart\u201d and \u2018single\u2019 quotes",
		"plain text with no markup",
		"line one\\nline two",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			input:  `{"a":1}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "bare array",
			input:  `["x","y"]`,
			want:   `["x","y"]`,
			wantOK: true,
		},
		{
			name:   "object wrapped in prose",
			input:  `Sure, here is the result: {"a":1} hope that helps`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "fenced object",
			input:  "```json\n{\"a\":1}\n```",
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "object before array prefers object",
			input:  `{"list":["a","b"]}`,
			want:   `{"list":["a","b"]}`,
			wantOK: true,
		},
		{
			name:   "array before object prefers array",
			input:  `["a",{"b":1}]`,
			want:   `["a",{"b":1}]`,
			wantOK: true,
		},
		{
			name:   "no JSON at all",
			input:  "I could not analyze this resume.",
			wantOK: false,
		},
		{
			name:   "empty input",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractJSON(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseWithFallbackIsTotal(t *testing.T) {
	fallback := roleResult{DetectedRole: "Unknown", AlternativeRoles: []string{}}

	inputs := []string{
		"",
		"plain prose with no structure",
		`{"detectedRole":"Engineer","confidence":`,                      // truncated
		`{"detectedRole":42,"confidence":"high","alternativeRoles":{}}`, // schema violation
		"```json\n{\"broken\": \n```",
	}

	for _, in := range inputs {
		got := ParseWithFallback(in, fallback, roleSchema(), nil)
		if !reflect.DeepEqual(got, fallback) {
			t.Errorf("input %q: got %+v, want fallback %+v", in, got, fallback)
		}
	}
}

func TestParseWithFallbackFencedRoleResponse(t *testing.T) {
	raw := "Here you go:\n```json\n{\"detectedRole\":\"Backend Engineer\",\"confidence\":90,\"alternativeRoles\":[]}\n```"
	fallback := roleResult{DetectedRole: "Unknown", AlternativeRoles: []string{}}

	got := ParseWithFallback(raw, fallback, roleSchema(), nil)

	want := roleResult{
		DetectedRole:     "Backend Engineer",
		Confidence:       90,
		AlternativeRoles: []string{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseWithFallbackSmartQuotes(t *testing.T) {
	raw := "{\u201cdetectedRole\u201d:\u201cData Analyst\u201d,\u201cconfidence\u201d:70,\u201calternativeRoles\u201d:[\u201cBI Developer\u201d]}"
	fallback := roleResult{DetectedRole: "Unknown"}

	got := ParseWithFallback(raw, fallback, roleSchema(), nil)
	if got.DetectedRole != "Data Analyst" {
		t.Errorf("smart-quoted JSON not recovered: got %+v", got)
	}
	if len(got.AlternativeRoles) != 1 || got.AlternativeRoles[0] != "BI Developer" {
		t.Errorf("alternativeRoles not recovered: got %+v", got.AlternativeRoles)
	}
}

func TestParseWithFallbackStringArray(t *testing.T) {
	got := ParseWithFallback(`Skills: ["Go", "Python", "SQL"]`, []string{}, StringArray(), nil)
	want := []string{"Go", "Python", "SQL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Array of objects must not satisfy a string-array schema
	got = ParseWithFallback(`[{"skill":"Go"}]`, []string{}, StringArray(), nil)
	if len(got) != 0 {
		t.Errorf("object array accepted as string array: %v", got)
	}
}

func TestSchemaBounds(t *testing.T) {
	schema := Object(NumIn("score", 0, 100))

	if !schema.Validate(`{"score":85}`) {
		t.Error("in-bounds score rejected")
	}
	if schema.Validate(`{"score":150}`) {
		t.Error("out-of-bounds score accepted")
	}
	if schema.Validate(`{"score":-1}`) {
		t.Error("negative score accepted")
	}
	if schema.Validate(`{"score":"85"}`) {
		t.Error("string score accepted")
	}
}
