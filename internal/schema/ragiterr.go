package schema

import "github.com/ragit-kb/ragit/internal/ragiterr"

// ValidateErr runs Validate and, on failure, wraps the result as a
// *ragiterr.Error carrying the Prettify()'d message an LLM can act on,
// so a caller outside this package gets a
// single structured error type instead of reaching into the
// ValidationError interface themselves.
func (s *Schema) ValidateErr(text string) (interface{}, error) {
	v, err := s.Validate(text)
	if err == nil {
		return v, nil
	}
	verr, ok := err.(ValidationError)
	if !ok {
		return nil, ragiterr.SchemaError(ragiterr.CodeSchemaInvalidValue, err.Error(), err)
	}
	return nil, ragiterr.SchemaError(codeFor(verr), verr.Prettify(s), verr)
}

func codeFor(err ValidationError) string {
	switch e := err.(type) {
	case *TypeError:
		return ragiterr.CodeSchemaWrongType
	case *MissingKeysError:
		return ragiterr.CodeSchemaMissingField
	case *ErrorInObject:
		return codeFor(e.Cause)
	case *ErrorInArray:
		return codeFor(e.Cause)
	default:
		return ragiterr.CodeSchemaInvalidValue
	}
}
