package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// isWellFormedJSON reports whether txt parses as JSON at all; used to
// discard brace/bracket spans the scanner flagged as likely broken.
func isWellFormedJSON(txt string) bool {
	var v interface{}
	return json.Unmarshal([]byte(txt), &v) == nil
}

// jsonTextsEqual compares two JSON texts by parsed value rather than by
// byte content, so "{"a": 1}" and "{\"a\":1}" count as the same candidate.
func jsonTextsEqual(a, b string) bool {
	var va, vb interface{}
	if json.Unmarshal([]byte(a), &va) != nil || json.Unmarshal([]byte(b), &vb) != nil {
		return false
	}
	ab, _ := json.Marshal(va)
	bb, _ := json.Marshal(vb)
	return string(ab) == string(bb)
}

// boolTrueWords / boolFalseWords are case-insensitive literals accepted for
// TypeBool, ported from the reference extractor's bare-word scan.
var boolTrueWords = []string{"true"}
var boolFalseWords = []string{"false"}

// yesWords / noWords are the accepted literals for TypeYesNo, which is a
// distinct type from TypeBool because LLMs are asked "yes or no" questions
// in natural language far more often than "true or false" ones.
var yesWords = []string{"yes", "y"}
var noWords = []string{"no", "n"}

// Validate runs the 3-step algorithm of spec §4.H against raw LLM output
// text and returns the extracted Go value (string, int64, float64, bool, []Task,
// map[string]interface{}, []interface{}, or nil) or a ValidationError whose
// Prettify message is meant to be fed back to the LLM verbatim.
func (s *Schema) Validate(text string) (interface{}, error) {
	switch s.Type {
	case TypeNull:
		return extractNull(text)
	case TypeBool:
		return extractWord(text, boolTrueWords, boolFalseWords, TypeBool)
	case TypeYesNo:
		return extractWord(text, yesWords, noWords, TypeYesNo)
	case TypeCode:
		return s.extractCode(text)
	case TypeTaskList:
		return s.extractTaskList(text)
	}

	lit := extractJsonishLiteral(text)

	switch s.Type {
	case TypeInt:
		return s.extractNumber(lit, TypeInt)
	case TypeFloat:
		return s.extractNumber(lit, TypeFloat)
	case TypeStr:
		return s.extractString(text)
	case TypeArray:
		m := lit.getMatches(TypeArray)
		switch m.kind {
		case matchNone:
			return nil, &ExtractionError{Message: "I cannot find an array in your output. Please try again."}
		case matchMultiple:
			return nil, &ExtractionError{Message: "Your output has more than 1 candidates for an array. Please make sure that your output has one json array."}
		}
		return s.validateArrayText(m.text)
	case TypeObject:
		m := lit.getMatches(TypeObject)
		switch m.kind {
		case matchNone:
			return nil, &ExtractionError{Message: "I cannot find an object in your output. Please try again."}
		case matchMultiple:
			return nil, &ExtractionError{Message: "Your output has more than 1 candidates for an object. Please make sure that your output has one json object."}
		}
		return s.validateObjectText(m.text)
	}

	return nil, &ExtractionError{Message: "unsupported schema type: " + string(s.Type)}
}

func extractNull(text string) (interface{}, error) {
	t := strings.TrimSpace(strings.ToLower(text))
	if t == "null" || t == "none" || t == "" {
		return nil, nil
	}
	return nil, &ExtractionError{Message: "I cannot find `null` in your output. Please try again."}
}

func extractWord(text string, trueWords, falseWords []string, t Type) (interface{}, error) {
	lower := strings.ToLower(text)
	foundTrue, foundFalse := false, false
	for _, w := range trueWords {
		if containsWord(lower, w) {
			foundTrue = true
		}
	}
	for _, w := range falseWords {
		if containsWord(lower, w) {
			foundFalse = true
		}
	}
	switch {
	case foundTrue && foundFalse:
		return nil, &ExtractionError{Message: fmt.Sprintf("Your output has more than 1 candidates for a `%s`. Please make sure that your output has one clear answer.", t)}
	case foundTrue:
		return true, nil
	case foundFalse:
		return false, nil
	default:
		return nil, &ExtractionError{Message: fmt.Sprintf("I cannot find a `%s` value in your output. Please try again.", t)}
	}
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		before := byte(' ')
		if start > 0 {
			before = haystack[start-1]
		}
		after := byte(' ')
		if end < len(haystack) {
			after = haystack[end]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (s *Schema) extractNumber(lit *jsonishLiteral, t Type) (interface{}, error) {
	m := lit.getMatches(t)
	switch m.kind {
	case matchNone:
		return nil, &ExtractionError{Message: fmt.Sprintf("I cannot find a `%s` value in your output. Please try again.", t)}
	case matchMultiple:
		return nil, &ExtractionError{Message: fmt.Sprintf("Your output has more than 1 candidates for a `%s`. Please make sure that your output has one number.", t)}
	case matchExpectedIntGotFloat:
		return nil, &TypeError{Expected: TypeInt, Got: TypeFloat}
	}

	if t == TypeInt {
		n, err := strconv.ParseInt(m.text, 10, 64)
		if err != nil {
			return nil, &ExtractionError{Message: "I cannot find a valid integer in your output. Please try again."}
		}
		if err := s.checkIntRange(n); err != nil {
			return nil, err
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(m.text, 64)
	if err != nil {
		return nil, &ExtractionError{Message: "I cannot find a valid number in your output. Please try again."}
	}
	if err := s.checkFloatRange(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Schema) checkIntRange(n int64) error {
	if s.Constraint == nil {
		return nil
	}
	minN, maxN, err := parseConstraintBounds(s.Constraint, true)
	if err != nil {
		return err
	}
	if n < minN {
		return &RangeError{TooSmall: true, Bound: strconv.FormatInt(minN, 10), IsNumber: true}
	}
	if n > maxN {
		return &RangeError{TooSmall: false, Bound: strconv.FormatInt(maxN, 10), IsNumber: true}
	}
	return nil
}

func (s *Schema) checkFloatRange(f float64) error {
	if s.Constraint == nil {
		return nil
	}
	minF, maxF, err := parseConstraintFloatBounds(s.Constraint)
	if err != nil {
		return err
	}
	if f < minF {
		return &RangeError{TooSmall: true, Bound: strconv.FormatFloat(minF, 'g', -1, 64), IsNumber: true}
	}
	if f > maxF {
		return &RangeError{TooSmall: false, Bound: strconv.FormatFloat(maxF, 'g', -1, 64), IsNumber: true}
	}
	return nil
}

// extractString takes the whole trimmed output verbatim: spec §4.H treats
// str as "whatever text the LLM wrote", not a jsonish-literal candidate.
func (s *Schema) extractString(text string) (interface{}, error) {
	v := strings.TrimSpace(text)
	if err := s.checkLengthRange(len(v), false); err != nil {
		return nil, err
	}
	return v, nil
}

// extractCode pulls the contents of the first fenced code block
// (```lang\n...\n```), falling back to the whole trimmed text when no
// fence is present.
func (s *Schema) extractCode(text string) (interface{}, error) {
	const fence = "```"
	start := strings.Index(text, fence)
	if start < 0 {
		v := strings.TrimSpace(text)
		if v == "" {
			return nil, &ExtractionError{Message: "I cannot find a code block in your output. Please try again."}
		}
		if err := s.checkLengthRange(len(v), false); err != nil {
			return nil, err
		}
		return v, nil
	}
	rest := text[start+len(fence):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return nil, &ExtractionError{Message: "Your code block is not closed. Please try again."}
	}
	v := strings.TrimRight(rest[:end], "\n")
	if err := s.checkLengthRange(len(v), false); err != nil {
		return nil, err
	}
	return v, nil
}

// Task is one line of a task-list output: "- [ ] text" or "- [x] text".
type Task struct {
	Done bool
	Text string
}

// extractTaskList parses "- [ ] ..." / "- [x] ..." lines, the format the
// reference prompts ask LLMs to answer multi-step plans with.
func (s *Schema) extractTaskList(text string) (interface{}, error) {
	var tasks []Task
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		switch {
		case strings.HasPrefix(rest, "[ ]"):
			tasks = append(tasks, Task{Done: false, Text: strings.TrimSpace(rest[3:])})
		case strings.HasPrefix(rest, "[x]"), strings.HasPrefix(rest, "[X]"):
			tasks = append(tasks, Task{Done: true, Text: strings.TrimSpace(rest[3:])})
		}
	}
	if tasks == nil {
		return nil, &ExtractionError{Message: "I cannot find a task list in your output. Please try again, using `- [ ]` or `- [x]` per line."}
	}
	if err := s.checkLengthRange(len(tasks), true); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Schema) checkLengthRange(n int, isArray bool) error {
	if s.Constraint == nil {
		return nil
	}
	minN, maxN, err := parseConstraintBounds(s.Constraint, true)
	if err != nil {
		return err
	}
	if int64(n) < minN {
		return &RangeError{TooSmall: true, Bound: strconv.FormatInt(minN, 10), IsArray: isArray}
	}
	if int64(n) > maxN {
		return &RangeError{TooSmall: false, Bound: strconv.FormatInt(maxN, 10), IsArray: isArray}
	}
	return nil
}

func (s *Schema) validateArrayText(text string) (interface{}, error) {
	var raw []interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &TypeError{Expected: TypeArray, Got: guessType(text)}
	}
	if err := s.checkLengthRange(len(raw), true); err != nil {
		return nil, err
	}
	if s.Elem == nil {
		return raw, nil
	}
	out := make([]interface{}, len(raw))
	for i, item := range raw {
		v, err := s.Elem.validateValue(item)
		if err != nil {
			return nil, &ErrorInArray{Index: i, Cause: asValidationError(err)}
		}
		out[i] = v
	}
	return out, nil
}

func (s *Schema) validateObjectText(text string) (interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &TypeError{Expected: TypeObject, Got: guessType(text)}
	}
	return s.validateObjectValue(raw)
}

// validateValue walks a parsed JSON value (already decoded by
// encoding/json) against s, used for both top-level object/array matches
// and for their nested fields/elements.
func (s *Schema) validateValue(v interface{}) (interface{}, error) {
	switch s.Type {
	case TypeNull:
		if v != nil {
			return nil, &TypeError{Expected: TypeNull, Got: jsonValueType(v)}
		}
		return nil, nil
	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, &TypeError{Expected: TypeBool, Got: jsonValueType(v)}
		}
		return b, nil
	case TypeInt:
		f, ok := v.(float64)
		if !ok {
			return nil, &TypeError{Expected: TypeInt, Got: jsonValueType(v)}
		}
		if f != float64(int64(f)) {
			return nil, &TypeError{Expected: TypeInt, Got: TypeFloat}
		}
		n := int64(f)
		if err := s.checkIntRange(n); err != nil {
			return nil, err
		}
		return n, nil
	case TypeFloat:
		f, ok := v.(float64)
		if !ok {
			return nil, &TypeError{Expected: TypeFloat, Got: jsonValueType(v)}
		}
		if err := s.checkFloatRange(f); err != nil {
			return nil, err
		}
		return f, nil
	case TypeStr, TypeCode:
		str, ok := v.(string)
		if !ok {
			return nil, &TypeError{Expected: s.Type, Got: jsonValueType(v)}
		}
		if err := s.checkLengthRange(len(str), false); err != nil {
			return nil, err
		}
		return str, nil
	case TypeArray:
		arr, ok := v.([]interface{})
		if !ok {
			return nil, &TypeError{Expected: TypeArray, Got: jsonValueType(v)}
		}
		if err := s.checkLengthRange(len(arr), true); err != nil {
			return nil, err
		}
		if s.Elem == nil {
			return arr, nil
		}
		out := make([]interface{}, len(arr))
		for i, item := range arr {
			elem, err := s.Elem.validateValue(item)
			if err != nil {
				return nil, &ErrorInArray{Index: i, Cause: asValidationError(err)}
			}
			out[i] = elem
		}
		return out, nil
	case TypeObject:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, &TypeError{Expected: TypeObject, Got: jsonValueType(v)}
		}
		return s.validateObjectValue(obj)
	default:
		return nil, &ExtractionError{Message: "unsupported nested schema type: " + string(s.Type)}
	}
}

func (s *Schema) validateObjectValue(raw map[string]interface{}) (interface{}, error) {
	var missing []string
	for _, f := range s.Fields {
		if _, ok := raw[f.Key]; !ok {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingKeysError{Keys: missing}
	}

	known := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		known[f.Key] = true
	}
	var extra []string
	for k := range raw {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		return nil, &UnnecessaryKeysError{Keys: extra}
	}

	out := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		v, err := f.Schema.validateValue(raw[f.Key])
		if err != nil {
			return nil, &ErrorInObject{Key: f.Key, Cause: asValidationError(err)}
		}
		out[f.Key] = v
	}
	return out, nil
}

func asValidationError(err error) ValidationError {
	if ve, ok := err.(ValidationError); ok {
		return ve
	}
	return &ExtractionError{Message: err.Error()}
}

func jsonValueType(v interface{}) Type {
	switch x := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBool
	case float64:
		if x == float64(int64(x)) {
			return TypeInt
		}
		return TypeFloat
	case string:
		return TypeStr
	case []interface{}:
		return TypeArray
	case map[string]interface{}:
		return TypeObject
	default:
		return TypeStr
	}
}

func guessType(text string) Type {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "{") {
		return TypeObject
	}
	if strings.HasPrefix(t, "[") {
		return TypeArray
	}
	return TypeStr
}
