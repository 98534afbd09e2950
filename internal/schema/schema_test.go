package schema

import (
	"testing"
)

func TestValidate_Int(t *testing.T) {
	s := Int()
	v, err := s.Validate("the result is 42.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(int64) != 42 {
		t.Fatalf("got %v", v)
	}
}

func TestValidate_IntOutOfRange(t *testing.T) {
	s := Int().WithConstraint(Constraint{Max: strPtr("10")})
	_, err := s.Validate("the result is 42.")
	if _, ok := err.(*RangeError); !ok {
		t.Fatalf("expected RangeError, got %v (%T)", err, err)
	}
}

func TestValidate_Float(t *testing.T) {
	s := Float()
	v, err := s.Validate("pi is about 3.14159")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(float64) != 3.14159 {
		t.Fatalf("got %v", v)
	}
}

func TestValidate_YesNo(t *testing.T) {
	s := YesNo()
	v, err := s.Validate("Yes, that is correct.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(bool) != true {
		t.Fatalf("got %v", v)
	}
}

func TestValidate_YesNo_No(t *testing.T) {
	s := YesNo()
	v, err := s.Validate("No, it is not.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(bool) != false {
		t.Fatalf("got %v", v)
	}
}

func TestValidate_Bool(t *testing.T) {
	s := Bool()
	v, err := s.Validate("the flag is true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(bool) != true {
		t.Fatalf("got %v", v)
	}
}

func TestValidate_Str(t *testing.T) {
	s := Str()
	v, err := s.Validate("  hello world  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(string) != "hello world" {
		t.Fatalf("got %q", v)
	}
}

func TestValidate_Code(t *testing.T) {
	s := Code()
	v, err := s.Validate("here:\n```go\nfunc main() {}\n```\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(string) != "func main() {}" {
		t.Fatalf("got %q", v)
	}
}

func TestValidate_TaskList(t *testing.T) {
	s := TaskList()
	v, err := s.Validate("- [x] write code\n- [ ] write tests\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tasks := v.([]Task)
	if len(tasks) != 2 || !tasks[0].Done || tasks[1].Done {
		t.Fatalf("got %+v", tasks)
	}
}

func TestValidate_Array(t *testing.T) {
	s := Array(Int())
	v, err := s.Validate("here: [1, 2, 3]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := v.([]interface{})
	if len(arr) != 3 {
		t.Fatalf("got %v", arr)
	}
}

func TestValidate_Object(t *testing.T) {
	s := Object(
		Field{Key: "name", Schema: Str()},
		Field{Key: "age", Schema: Int()},
	)
	v, err := s.Validate(`{"name": "alice", "age": 30}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]interface{})
	if m["name"] != "alice" || m["age"].(int64) != 30 {
		t.Fatalf("got %v", m)
	}
}

func TestValidate_Object_MissingKey(t *testing.T) {
	s := Object(
		Field{Key: "name", Schema: Str()},
		Field{Key: "age", Schema: Int()},
	)
	_, err := s.Validate(`{"name": "alice"}`)
	mk, ok := err.(*MissingKeysError)
	if !ok {
		t.Fatalf("expected MissingKeysError, got %v (%T)", err, err)
	}
	if mk.Keys[0] != "age" {
		t.Fatalf("got %v", mk.Keys)
	}
}

func TestValidate_Object_UnnecessaryKey(t *testing.T) {
	s := Object(Field{Key: "name", Schema: Str()})
	_, err := s.Validate(`{"name": "alice", "extra": 1}`)
	if _, ok := err.(*UnnecessaryKeysError); !ok {
		t.Fatalf("expected UnnecessaryKeysError, got %v (%T)", err, err)
	}
}

func TestValidate_Object_NestedTypeError(t *testing.T) {
	s := Object(Field{Key: "age", Schema: Int()})
	_, err := s.Validate(`{"age": "thirty"}`)
	eio, ok := err.(*ErrorInObject)
	if !ok {
		t.Fatalf("expected ErrorInObject, got %v (%T)", err, err)
	}
	msg := eio.Prettify(s)
	if msg == "" {
		t.Fatalf("expected non-empty prettified message")
	}
}

func TestValidate_Array_NestedRangeError(t *testing.T) {
	s := Array(Int().WithConstraint(Constraint{Max: strPtr("5")}))
	_, err := s.Validate("[1, 2, 9]")
	eia, ok := err.(*ErrorInArray)
	if !ok {
		t.Fatalf("expected ErrorInArray, got %v (%T)", err, err)
	}
	if eia.Index != 2 {
		t.Fatalf("got index %d", eia.Index)
	}
}

func TestValidate_AmbiguousInteger(t *testing.T) {
	s := Int()
	_, err := s.Validate("it's either 3 or 9, not sure")
	if _, ok := err.(*ExtractionError); !ok {
		t.Fatalf("expected ExtractionError, got %v (%T)", err, err)
	}
}

func TestValidate_NoCandidate(t *testing.T) {
	s := Int()
	_, err := s.Validate("I don't have a number for you")
	if _, ok := err.(*ExtractionError); !ok {
		t.Fatalf("expected ExtractionError, got %v (%T)", err, err)
	}
}

func TestPrettify_RangeError_TooSmall(t *testing.T) {
	e := &RangeError{TooSmall: true, Bound: "10", IsNumber: true}
	msg := e.Prettify(nil)
	if msg != "Your output is too small. Make sure that the output is at least 10." {
		t.Fatalf("got %q", msg)
	}
}

func TestPrettify_MissingKeys(t *testing.T) {
	s := Object(Field{Key: "a", Schema: Int()}, Field{Key: "b", Schema: Int()})
	e := &MissingKeysError{Keys: []string{"b"}}
	msg := e.Prettify(s)
	want := "Your output is missing a field: b. Make sure that your output contains 2 keys: a, b"
	if msg != want {
		t.Fatalf("got %q want %q", msg, want)
	}
}

func strPtr(s string) *string { return &s }
