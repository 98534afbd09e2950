package schema

import (
	"fmt"
	"strings"
)

// ValidationError is a structured validation failure against a Schema tree,
// mirroring the teacher's SchemaError variants (spec §4.H step 3).
type ValidationError interface {
	error
	// Prettify renders the error as a short English sentence an LLM can
	// read and correct its own output from (spec §4.H: "written for the
	// LLM to read and correct itself").
	Prettify(s *Schema) string
}

// RangeError reports a min/max constraint violation.
type RangeError struct {
	TooSmall bool // true="too small/short", false="too big/long"
	Bound    string
	IsNumber bool
	IsArray  bool
}

func (e *RangeError) Error() string { return "range error" }

func (e *RangeError) Prettify(_ *Schema) string {
	s1, s2 := "big", "is at most"
	if e.TooSmall {
		s1, s2 = "small", "is at least"
	}
	if !e.IsNumber {
		if e.TooSmall {
			s1, s2 = "short", "has at least"
		} else {
			s1, s2 = "long", "has at most"
		}
	}
	s3 := e.Bound
	switch {
	case e.IsNumber:
		// bare number
	case e.IsArray:
		s3 = e.Bound + " elements"
	default:
		s3 = e.Bound + " characters"
	}
	return fmt.Sprintf("Your output is too %s. Make sure that the output %s %s.", s1, s2, s3)
}

// MissingKeysError reports object fields the schema requires but the LLM
// omitted.
type MissingKeysError struct{ Keys []string }

func (e *MissingKeysError) Error() string { return "missing keys: " + strings.Join(e.Keys, ", ") }

func (e *MissingKeysError) Prettify(s *Schema) string {
	schemaKeys := s.Keys()
	field := "fields"
	if len(e.Keys) == 1 {
		field = "a field"
	}
	plural := "s"
	if len(schemaKeys) == 1 {
		plural = ""
	}
	return fmt.Sprintf(
		"Your output is missing %s: %s. Make sure that your output contains %d key%s: %s",
		field, strings.Join(e.Keys, ", "), len(schemaKeys), plural, strings.Join(schemaKeys, ", "),
	)
}

// UnnecessaryKeysError reports object fields the LLM produced that aren't
// in the schema.
type UnnecessaryKeysError struct{ Keys []string }

func (e *UnnecessaryKeysError) Error() string { return "unnecessary keys: " + strings.Join(e.Keys, ", ") }

func (e *UnnecessaryKeysError) Prettify(s *Schema) string {
	schemaKeys := s.Keys()
	article := ""
	plural := "s"
	if len(e.Keys) == 1 {
		article, plural = "an ", ""
	}
	schemaArticle := ""
	schemaPlural := "s"
	if len(schemaKeys) == 1 {
		schemaArticle, schemaPlural = "a ", ""
	}
	return fmt.Sprintf(
		"Your output has %sunnecessary key%s: %s. Make sure that the output contains %skey%s: %s",
		article, plural, strings.Join(e.Keys, ", "), schemaArticle, schemaPlural, strings.Join(schemaKeys, ", "),
	)
}

// ErrorInObject wraps a nested error at object field key.
type ErrorInObject struct {
	Key   string
	Cause ValidationError
}

func (e *ErrorInObject) Error() string { return fmt.Sprintf("field %q: %v", e.Key, e.Cause) }

func (e *ErrorInObject) Prettify(s *Schema) string {
	fieldSchema := s.field(e.Key)
	switch c := e.Cause.(type) {
	case *RangeError:
		s1, s2 := "big", "is at most"
		if c.TooSmall {
			s1, s2 = "small", "is at least"
		}
		if !c.IsNumber {
			if c.TooSmall {
				s1, s2 = "short", "has at least"
			} else {
				s1, s2 = "long", "has at most"
			}
		}
		return fmt.Sprintf("Field `%s` of your output is too %s. Make sure that the field %s %s.", e.Key, s1, s2, c.Bound)
	case *TypeError:
		got := c.Got
		expected := c.Expected
		if fieldSchema != nil {
			expected = fieldSchema.Type
		}
		return fmt.Sprintf("Field `%s` of your output has a wrong type. Make sure that the field is `%s`, not `%s`.", e.Key, expected, got)
	default:
		return "Please make sure that your output has a correct schema."
	}
}

// ErrorInArray wraps a nested error at array index.
type ErrorInArray struct {
	Index int
	Cause ValidationError
}

func (e *ErrorInArray) Error() string { return fmt.Sprintf("index %d: %v", e.Index, e.Cause) }

func (e *ErrorInArray) Prettify(_ *Schema) string {
	ord := arrayOrdinal(e.Index)
	switch c := e.Cause.(type) {
	case *RangeError:
		s1, s2 := "big", "is at most"
		if c.TooSmall {
			s1, s2 = "small", "is at least"
		}
		if !c.IsNumber {
			if c.TooSmall {
				s1, s2 = "short", "has at least"
			} else {
				s1, s2 = "long", "has at most"
			}
		}
		return fmt.Sprintf("The %s value of your output is too %s. Make sure that the value %s %s.", ord, s1, s2, c.Bound)
	case *TypeError:
		return fmt.Sprintf("The %s value of your output has a wrong type. Make sure all the elements are `%s`, not `%s`.", ord, c.Expected, c.Got)
	default:
		return "Please make sure that your output has a correct schema."
	}
}

func arrayOrdinal(index int) string {
	switch index {
	case 0:
		return "first"
	case 1:
		return "second"
	case 2:
		return "third"
	case 3:
		return "forth"
	case 4:
		return "fifth"
	default:
		return fmt.Sprintf("%dth", index+1)
	}
}

// TypeError reports that the LLM's value doesn't match the schema's type.
type TypeError struct {
	Expected Type
	Got      Type
}

func (e *TypeError) Error() string { return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got) }

func (e *TypeError) Prettify(_ *Schema) string {
	return fmt.Sprintf("Your output has a wrong type. It has to be `%s`, not `%s`", e.Expected, e.Got)
}

// ExtractionError reports that no usable literal of the schema's type could
// be found, or that more than one distinct candidate was found (spec §4.H
// step 2: "more than 1 candidates").
type ExtractionError struct{ Message string }

func (e *ExtractionError) Error() string { return e.Message }

func (e *ExtractionError) Prettify(_ *Schema) string { return e.Message }
