package normalize

import "fmt"

// Error reports a field whose value could not be coerced to the canonical
// type. Coercion failures are never silently turned into zeroes.
type Error struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "normalize: " + e.Reason
	}
	return fmt.Sprintf("normalize: field %q: %s (got %v)", e.Field, e.Reason, e.Value)
}
