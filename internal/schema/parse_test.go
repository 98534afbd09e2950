package schema

import "testing"

func TestParse_BareTypes(t *testing.T) {
	cases := map[string]Type{
		"int":      TypeInt,
		"integer":  TypeInt,
		"float":    TypeFloat,
		"str":      TypeStr,
		"string":   TypeStr,
		"bool":     TypeBool,
		"boolean":  TypeBool,
		"yesno":    TypeYesNo,
		"code":     TypeCode,
		"tasklist": TypeTaskList,
		"null":     TypeNull,
	}
	for input, want := range cases {
		sc, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if sc.Type != want {
			t.Fatalf("Parse(%q) = %s, want %s", input, sc.Type, want)
		}
	}
}

func TestParse_IntWithConstraint(t *testing.T) {
	sc, err := Parse("int{min: 0, max: 100}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Type != TypeInt || sc.Constraint == nil {
		t.Fatalf("got %+v", sc)
	}
	if *sc.Constraint.Min != "0" || *sc.Constraint.Max != "100" {
		t.Fatalf("got constraint %+v", sc.Constraint)
	}
}

func TestParse_Array(t *testing.T) {
	sc, err := Parse("[str]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Type != TypeArray || sc.Elem == nil || sc.Elem.Type != TypeStr {
		t.Fatalf("got %+v", sc)
	}
}

func TestParse_ArrayWithConstraint(t *testing.T) {
	sc, err := Parse("[int]{min: 1, max: 5}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Constraint == nil || *sc.Constraint.Max != "5" {
		t.Fatalf("got %+v", sc)
	}
}

func TestParse_EmptyArray(t *testing.T) {
	sc, err := Parse("[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Type != TypeArray || sc.Elem != nil {
		t.Fatalf("got %+v", sc)
	}
}

func TestParse_Object(t *testing.T) {
	sc, err := Parse("{name: str, age: int}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Type != TypeObject || len(sc.Fields) != 2 {
		t.Fatalf("got %+v", sc)
	}
	if sc.Fields[0].Key != "name" || sc.Fields[1].Key != "age" {
		t.Fatalf("got fields %+v", sc.Fields)
	}
}

func TestParse_NestedObjectInArray(t *testing.T) {
	sc, err := Parse("[{name: str}]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Type != TypeArray || sc.Elem.Type != TypeObject || sc.Elem.Fields[0].Key != "name" {
		t.Fatalf("got %+v", sc)
	}
}

func TestParse_InvalidConstraintType(t *testing.T) {
	_, err := Parse("bool{min: 0}")
	if err == nil {
		t.Fatalf("expected error for bool with constraint")
	}
}

func TestParse_UnmatchedGroup(t *testing.T) {
	_, err := Parse("{name: str")
	if err == nil {
		t.Fatalf("expected error for unmatched group")
	}
}

func TestParse_UnknownType(t *testing.T) {
	_, err := Parse("blob")
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
