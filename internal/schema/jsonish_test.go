package schema

import "testing"

func TestExtractJsonishLiteral_Integer(t *testing.T) {
	lit := extractJsonishLiteral("the answer is 42 apparently")
	m := lit.getMatches(TypeInt)
	if m.kind != matchFound || m.text != "42" {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_NegativeInteger(t *testing.T) {
	lit := extractJsonishLiteral("the delta is -7 from baseline")
	m := lit.getMatches(TypeInt)
	if m.kind != matchFound || m.text != "-7" {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_Float(t *testing.T) {
	lit := extractJsonishLiteral("the score is 3.14 out of five")
	m := lit.getMatches(TypeFloat)
	if m.kind != matchFound || m.text != "3.14" {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_FloatAskedAsInt(t *testing.T) {
	lit := extractJsonishLiteral("roughly 3.14 or so")
	m := lit.getMatches(TypeInt)
	if m.kind != matchExpectedIntGotFloat {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_MultipleDistinctIntegers(t *testing.T) {
	lit := extractJsonishLiteral("maybe 3 or maybe 7")
	m := lit.getMatches(TypeInt)
	if m.kind != matchMultiple {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_RepeatedIdenticalIntegerIsNotMultiple(t *testing.T) {
	lit := extractJsonishLiteral("the count is 5, yes 5 exactly")
	m := lit.getMatches(TypeInt)
	if m.kind != matchFound || m.text != "5" {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_Object(t *testing.T) {
	lit := extractJsonishLiteral(`here you go: {"a": 1, "b": [1,2]} thanks`)
	m := lit.getMatches(TypeObject)
	if m.kind != matchFound || m.text != `{"a": 1, "b": [1,2]}` {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_Array(t *testing.T) {
	lit := extractJsonishLiteral("the list is [1, 2, 3] done")
	m := lit.getMatches(TypeArray)
	if m.kind != matchFound || m.text != "[1, 2, 3]" {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_NestedBraces(t *testing.T) {
	lit := extractJsonishLiteral(`{"a": {"b": 1}}`)
	m := lit.getMatches(TypeObject)
	if m.kind != matchFound || m.text != `{"a": {"b": 1}}` {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_StringWithEscapedBrace(t *testing.T) {
	lit := extractJsonishLiteral(`{"a": "a \"quoted\" brace } inside"}`)
	m := lit.getMatches(TypeObject)
	if m.kind != matchFound {
		t.Fatalf("got %+v", m)
	}
}

func TestExtractJsonishLiteral_UnmatchedCloserIsBroken(t *testing.T) {
	lit := extractJsonishLiteral("oops } no opener")
	if !lit.likelyBrokenJSON {
		t.Fatalf("expected likelyBrokenJSON to be set")
	}
}

func TestExtractJsonishLiteral_NoCandidate(t *testing.T) {
	lit := extractJsonishLiteral("nothing numeric here")
	if m := lit.getMatches(TypeInt); m.kind != matchNone {
		t.Fatalf("got %+v", m)
	}
}
