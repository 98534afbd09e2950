package pdl

import "testing"

func TestParse_SystemAndUserTurns(t *testing.T) {
	src := "\n<|system|>\n\nYou're a code helper.\n\n<|user|>\n\nWrite me a sudoku-solver.\n\n\n"
	p, err := Parse(src, nil, ".", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Messages) != 2 {
		t.Fatalf("got %d messages: %+v", len(p.Messages), p.Messages)
	}
	if p.Messages[0].Role != RoleSystem || p.Messages[0].Text() != "You're a code helper." {
		t.Fatalf("got %+v", p.Messages[0])
	}
	if p.Messages[1].Role != RoleUser || p.Messages[1].Text() != "Write me a sudoku-solver." {
		t.Fatalf("got %+v", p.Messages[1])
	}
}

func TestParse_RawMediaBlock(t *testing.T) {
	src := "\n<|user|>\n\n<|raw_media(png:aGVsbG8=)|>\n"
	p, err := Parse(src, nil, ".", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Messages) != 1 || !p.Messages[0].HasImage() {
		t.Fatalf("got %+v", p.Messages)
	}
}

func TestParse_VariableSubstitution(t *testing.T) {
	src := "<|user|>\n\nHello {{name}}.\n"
	p, err := Parse(src, map[string]string{"name": "Ada"}, ".", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Messages[0].Text() != "Hello Ada." {
		t.Fatalf("got %q", p.Messages[0].Text())
	}
}

func TestParse_UnknownVariableLeftAsIs(t *testing.T) {
	out := Substitute("Hello {{missing}}.", nil)
	if out != "Hello {{missing}}." {
		t.Fatalf("got %q", out)
	}
}

func TestParse_SchemaTurn(t *testing.T) {
	src := "<|user|>\n\nGive me a number.\n\n<|schema|>\n\nint\n"
	p, err := Parse(src, nil, ".", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Schema == nil {
		t.Fatalf("expected schema to be parsed")
	}
}

func TestParse_RejectsConsecutiveUserTurns(t *testing.T) {
	src := "<|user|>\n\nfirst\n\n<|user|>\n\nsecond\n"
	_, err := Parse(src, nil, ".", true, true)
	if err == nil {
		t.Fatalf("expected error for consecutive user turns")
	}
}

func TestParse_SystemMustBeFirst(t *testing.T) {
	src := "<|user|>\n\nhi\n\n<|system|>\n\nlate system\n"
	_, err := Parse(src, nil, ".", true, true)
	if err == nil {
		t.Fatalf("expected error for non-leading system turn")
	}
}

func TestParse_TrailingAssistantDropped(t *testing.T) {
	src := "<|user|>\n\nquestion\n"
	p, err := Parse(src, nil, ".", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Messages) != 1 {
		t.Fatalf("the synthetic trailing <|assistant|> marker should not produce an empty message, got %+v", p.Messages)
	}
}

func TestEscapeUnescapeTokens_RoundTrip(t *testing.T) {
	s := "a & b <|not a turn|>"
	escaped := EscapeTokens(s)
	if escaped == s {
		t.Fatalf("expected escaping to change the string")
	}
	if UnescapeTokens(escaped) != s {
		t.Fatalf("round trip mismatch: %q", UnescapeTokens(escaped))
	}
}
