package schema

// jsonishLiteral is the result of scanning free text for candidate JSON
// values, ported from the reference tokenizer's extract_jsonish_literal:
// not a JSON parser itself, just a classifier for which byte spans are
// worth handing to encoding/json. Braces/brackets are tracked with a
// small stack so nested structures are captured whole; bare integers and
// floats are tracked by span too.
type jsonishLiteral struct {
	s                  string
	integers           [][2]int
	floats             [][2]int
	braces             [][2]int
	brackets           [][2]int
	likelyBrokenJSON   bool
}

type naturalState int

const (
	stateInit naturalState = iota
	stateInteger
	stateFloat
	stateJSON
)

type jsonState int

const (
	jsonStateInit jsonState = iota
	jsonStateString
)

type jsonGroup byte

const (
	groupBrace jsonGroup = iota
	groupBracket
)

func groupOf(c byte) jsonGroup {
	if c == '{' || c == '}' {
		return groupBrace
	}
	return groupBracket
}

// extractJsonishLiteral scans s once, classifying candidate number and
// JSON-structure spans by byte offset.
func extractJsonishLiteral(s string) *jsonishLiteral {
	result := &jsonishLiteral{s: s}

	state := stateInit
	jstate := jsonStateInit
	escape := false
	var stack []jsonGroup
	startIndex := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateInit:
			switch {
			case (c >= '0' && c <= '9') || c == '-':
				state = stateInteger
				startIndex = i
			case c == '{' || c == '[':
				state = stateJSON
				jstate = jsonStateInit
				stack = []jsonGroup{groupOf(c)}
				startIndex = i
			case c == '}' || c == ']':
				result.likelyBrokenJSON = true
			}

		case stateInteger:
			switch {
			case c >= '0' && c <= '9':
				// keep accumulating
			case c == '.':
				state = stateFloat
			default:
				state = stateInit
				result.integers = append(result.integers, [2]int{startIndex, i})
				result.floats = append(result.floats, [2]int{startIndex, i})
			}

		case stateFloat:
			if c >= '0' && c <= '9' {
				// keep accumulating
			} else {
				state = stateInit
				result.floats = append(result.floats, [2]int{startIndex, i})
			}

		case stateJSON:
			switch jstate {
			case jsonStateInit:
				switch {
				case c == '{' || c == '[':
					stack = append(stack, groupOf(c))
				case c == '}' || c == ']':
					if len(stack) == 0 {
						state = stateInit
						result.likelyBrokenJSON = true
						goto done
					}
					top := stack[len(stack)-1]
					if top != groupOf(c) {
						state = stateInit
						result.likelyBrokenJSON = true
						goto done
					}
					stack = stack[:len(stack)-1]
					if len(stack) == 0 {
						state = stateInit
						if c == '}' {
							result.braces = append(result.braces, [2]int{startIndex, i + 1})
						} else {
							result.brackets = append(result.brackets, [2]int{startIndex, i + 1})
						}
					}
				case c == '"':
					jstate = jsonStateString
					escape = false
				}
			case jsonStateString:
				switch {
				case c == '"' && !escape:
					jstate = jsonStateInit
				case c == '\\' && !escape:
					escape = true
				default:
					escape = false
				}
			}
		}
	}

done:
	switch state {
	case stateInteger:
		result.integers = append(result.integers, [2]int{startIndex, len(s)})
		result.floats = append(result.floats, [2]int{startIndex, len(s)})
	case stateFloat:
		result.floats = append(result.floats, [2]int{startIndex, len(s)})
	case stateJSON:
		result.likelyBrokenJSON = true
	}

	return result
}

// jsonMatch is the outcome of selecting candidates of a given type.
type jsonMatch struct {
	kind jsonMatchKind
	text string
}

type jsonMatchKind int

const (
	matchNone jsonMatchKind = iota
	matchMultiple
	matchFound
	matchExpectedIntGotFloat
)

// getMatches selects the candidate span(s) matching t, deduplicating
// identical literal values and flagging ambiguity when distinct values
// appear (spec §4.H step 2).
func (j *jsonishLiteral) getMatches(t Type) jsonMatch {
	switch t {
	case TypeInt:
		switch len(j.integers) {
		case 0:
			if len(j.floats) == 1 {
				span := j.floats[0]
				if span[1] > 0 && j.s[span[1]-1] == '.' {
					return jsonMatch{kind: matchFound, text: j.s[span[0] : span[1]-1]}
				}
				return jsonMatch{kind: matchExpectedIntGotFloat, text: j.s[span[0]:span[1]]}
			}
			return jsonMatch{kind: matchNone}
		case 1:
			span := j.integers[0]
			return jsonMatch{kind: matchFound, text: j.s[span[0]:span[1]]}
		default:
			return dedupNumeric(j.s, j.integers)
		}
	case TypeFloat:
		if len(j.floats) == 0 {
			return jsonMatch{kind: matchNone}
		}
		return dedupFloat(j.s, j.floats)
	case TypeArray:
		return dedupJSON(j.s, j.brackets, &j.likelyBrokenJSON)
	case TypeObject:
		return dedupJSON(j.s, j.braces, &j.likelyBrokenJSON)
	default:
		return jsonMatch{kind: matchNone}
	}
}

func dedupNumeric(s string, spans [][2]int) jsonMatch {
	var lastText string
	have := false
	for _, span := range spans {
		txt := s[span[0]:span[1]]
		if !have {
			lastText = txt
			have = true
		} else if txt != lastText {
			return jsonMatch{kind: matchMultiple}
		}
	}
	if !have {
		return jsonMatch{kind: matchNone}
	}
	return jsonMatch{kind: matchFound, text: lastText}
}

func dedupFloat(s string, spans [][2]int) jsonMatch {
	var lastText string
	have := false
	for _, span := range spans {
		start, end := span[0], span[1]
		txt := s[start:end]
		if len(txt) > 0 && txt[len(txt)-1] == '.' {
			end--
			txt = s[start:end]
		}
		if !have {
			lastText = txt
			have = true
		} else if txt != lastText {
			return jsonMatch{kind: matchMultiple}
		}
	}
	if !have {
		return jsonMatch{kind: matchNone}
	}
	return jsonMatch{kind: matchFound, text: lastText}
}

func dedupJSON(s string, spans [][2]int, brokenFlag *bool) jsonMatch {
	if len(spans) == 0 {
		return jsonMatch{kind: matchNone}
	}
	var lastText string
	have := false
	for _, span := range spans {
		txt := s[span[0]:span[1]]
		if !isWellFormedJSON(txt) {
			*brokenFlag = true
			continue
		}
		if !have {
			lastText = txt
			have = true
		} else if !jsonTextsEqual(txt, lastText) {
			return jsonMatch{kind: matchMultiple}
		}
	}
	if !have {
		return jsonMatch{kind: matchNone}
	}
	return jsonMatch{kind: matchFound, text: lastText}
}
