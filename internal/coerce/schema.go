package coerce

import "github.com/tidwall/gjson"

// FieldKind enumerates the primitive shapes a schema field can require
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindArray
	KindStringArray
)

// Field describes one required field of a model response: its gjson path,
// its expected kind, and optional numeric bounds.
type Field struct {
	Path    string
	Kind    FieldKind
	Bounded bool
	Min     float64
	Max     float64
}

// Schema is a declarative shape predicate for a JSON value. A zero Schema
// accepts any valid JSON. RootStringArray requires the value itself to be
// an array of strings (no named fields).
type Schema struct {
	Fields          []Field
	RootStringArray bool
}

// Object builds a schema over named fields
func Object(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// StringArray builds a schema requiring a bare array of strings
func StringArray() Schema {
	return Schema{RootStringArray: true}
}

// Str declares a required string field
func Str(path string) Field {
	return Field{Path: path, Kind: KindString}
}

// Num declares a required number field
func Num(path string) Field {
	return Field{Path: path, Kind: KindNumber}
}

// NumIn declares a required number field with inclusive bounds
func NumIn(path string, min, max float64) Field {
	return Field{Path: path, Kind: KindNumber, Bounded: true, Min: min, Max: max}
}

// Strs declares a required array-of-strings field
func Strs(path string) Field {
	return Field{Path: path, Kind: KindStringArray}
}

// Validate reports whether jsonText satisfies the schema. jsonText must
// already be known-valid JSON.
func (s Schema) Validate(jsonText string) bool {
	if s.RootStringArray {
		return isStringArray(gjson.Parse(jsonText))
	}

	for _, f := range s.Fields {
		v := gjson.Get(jsonText, f.Path)
		if !v.Exists() {
			return false
		}
		switch f.Kind {
		case KindString:
			if v.Type != gjson.String {
				return false
			}
		case KindNumber:
			if v.Type != gjson.Number {
				return false
			}
			if f.Bounded && (v.Num < f.Min || v.Num > f.Max) {
				return false
			}
		case KindArray:
			if !v.IsArray() {
				return false
			}
		case KindStringArray:
			if !isStringArray(v) {
				return false
			}
		}
	}
	return true
}

func isStringArray(v gjson.Result) bool {
	if !v.IsArray() {
		return false
	}
	ok := true
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			ok = false
			return false
		}
		return true
	})
	return ok
}
