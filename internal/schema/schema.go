// Package schema implements the typed mini-language of spec §4.H: a small
// type tree an LLM's free-text output is validated against, with error
// messages written for the LLM to read and self-correct from rather than
// for a human operator.
package schema

import "strconv"

// Type names every schema node can take.
type Type string

const (
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeStr      Type = "str"
	TypeBool     Type = "bool"
	TypeYesNo    Type = "yesno"
	TypeCode     Type = "code"
	TypeTaskList Type = "tasklist"
	TypeArray    Type = "array"
	TypeObject   Type = "object"
	TypeNull     Type = "null"
)

// IsNumber reports whether t is int or float.
func (t Type) IsNumber() bool { return t == TypeInt || t == TypeFloat }

// Constraint bounds a node's value: min/max for numbers, min/max length for
// strings and code, min/max element count for arrays and task lists.
type Constraint struct {
	Min *string
	Max *string
}

// Field is one named entry of an Object schema, kept in declaration order
// so error messages and Prettify can report schema keys consistently.
type Field struct {
	Key    string
	Schema *Schema
}

// Schema is one node of the type tree spec §4.H describes.
type Schema struct {
	Type       Type
	Constraint *Constraint
	Elem       *Schema // Array element schema; nil means "untyped array"
	Fields     []Field // Object fields, in schema declaration order
}

// Keys returns the field names of an Object schema, in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

func (s *Schema) field(key string) *Schema {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Schema
		}
	}
	return nil
}

// Int, Float, Str, Bool, YesNo, Code, TaskList build unconstrained leaf
// schemas, mirroring the teacher's "default_*" constructors.
func Int() *Schema      { return &Schema{Type: TypeInt} }
func Float() *Schema    { return &Schema{Type: TypeFloat} }
func Str() *Schema      { return &Schema{Type: TypeStr} }
func Bool() *Schema     { return &Schema{Type: TypeBool} }
func YesNo() *Schema    { return &Schema{Type: TypeYesNo} }
func Code() *Schema     { return &Schema{Type: TypeCode} }
func TaskList() *Schema { return &Schema{Type: TypeTaskList} }
func Null() *Schema     { return &Schema{Type: TypeNull} }

// Array builds an array schema; elem may be nil for an untyped array.
func Array(elem *Schema) *Schema { return &Schema{Type: TypeArray, Elem: elem} }

// Object builds an object schema from ordered fields.
func Object(fields ...Field) *Schema { return &Schema{Type: TypeObject, Fields: fields} }

// WithConstraint attaches c to s and returns s for chaining. Panics if s
// already carries a constraint, matching the teacher's "add_constraint may
// only be called once" assertion.
func (s *Schema) WithConstraint(c Constraint) *Schema {
	if s.Constraint != nil {
		panic("schema: constraint already set")
	}
	s.Constraint = &c
	return s
}

// ValidateConstraint checks that a constraint's min/max make sense for s's
// type (e.g. bool/object/null can carry no min/max at all).
func (s *Schema) ValidateConstraint() error {
	if s.Constraint == nil {
		return nil
	}
	switch s.Type {
	case TypeInt, TypeArray, TypeStr, TypeCode, TypeTaskList:
		minN, maxN, err := parseConstraintBounds(s.Constraint, true)
		if err != nil {
			return err
		}
		if minN > maxN {
			return &ConstraintError{Message: "min is greater than max"}
		}
		return nil
	case TypeFloat:
		minF, maxF, err := parseConstraintFloatBounds(s.Constraint)
		if err != nil {
			return err
		}
		if minF > maxF {
			return &ConstraintError{Message: "min is greater than max"}
		}
		return nil
	default:
		if s.Constraint.Min != nil || s.Constraint.Max != nil {
			return &ConstraintError{Message: "type `" + string(s.Type) + "` cannot have a min/max constraint"}
		}
		return nil
	}
}

// ConstraintError reports a malformed {min,max} attached to a schema node,
// distinct from SchemaError which describes a bad LLM output.
type ConstraintError struct{ Message string }

func (e *ConstraintError) Error() string { return e.Message }

func parseConstraintBounds(c *Constraint, nonNegative bool) (int64, int64, error) {
	minN, maxN := int64(-1<<62), int64(1<<62)
	if c.Min != nil {
		n, err := strconv.ParseInt(*c.Min, 10, 64)
		if err != nil {
			return 0, 0, &ConstraintError{Message: "\"" + *c.Min + "\" is not a valid integer"}
		}
		if nonNegative && n < 0 {
			return 0, 0, &ConstraintError{Message: "min is supposed to be a positive integer"}
		}
		minN = n
	}
	if c.Max != nil {
		n, err := strconv.ParseInt(*c.Max, 10, 64)
		if err != nil {
			return 0, 0, &ConstraintError{Message: "\"" + *c.Max + "\" is not a valid integer"}
		}
		if nonNegative && n < 0 {
			return 0, 0, &ConstraintError{Message: "max is supposed to be a positive integer"}
		}
		maxN = n
	}
	return minN, maxN, nil
}

func parseConstraintFloatBounds(c *Constraint) (float64, float64, error) {
	minF, maxF := -1e308, 1e308
	if c.Min != nil {
		n, err := strconv.ParseFloat(*c.Min, 64)
		if err != nil {
			return 0, 0, &ConstraintError{Message: "\"" + *c.Min + "\" is not a valid number"}
		}
		minF = n
	}
	if c.Max != nil {
		n, err := strconv.ParseFloat(*c.Max, 64)
		if err != nil {
			return 0, 0, &ConstraintError{Message: "\"" + *c.Max + "\" is not a valid number"}
		}
		maxF = n
	}
	return minF, maxF, nil
}
