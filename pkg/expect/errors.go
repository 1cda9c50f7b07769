package expect

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusError reports a response status outside the accepted set.
type StatusError struct {
	Expected []int
	Actual   int
	Method   string
	URL      string
	Excerpt  string
}

func (e *StatusError) Error() string {
	want := "(none)"
	switch len(e.Expected) {
	case 0:
	case 1:
		want = strconv.Itoa(e.Expected[0])
	default:
		codes := make([]string, 0, len(e.Expected))
		for _, c := range e.Expected {
			codes = append(codes, strconv.Itoa(c))
		}
		want = "one of " + strings.Join(codes, ", ")
	}
	return fmt.Sprintf("unexpected status for %s %s: got %d, want %s (body: %s)",
		e.Method, e.URL, e.Actual, want, e.Excerpt)
}

// ParseError reports a body that could not be decoded as JSON. HTMLTitle is
// filled when the body turned out to be an HTML error page.
type ParseError struct {
	Excerpt   string
	HTMLTitle string
	cause     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("response body is not valid JSON: %v (body: %s)", e.cause, e.Excerpt)
	if e.HTMLTitle != "" {
		msg = fmt.Sprintf("%s (html page title: %q)", msg, e.HTMLTitle)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.cause }

// SchemaViolation is one offending location in a schema-validated document.
type SchemaViolation struct {
	// Field is a JSON pointer into the instance, empty for the root.
	Field  string
	Detail string
}

// SchemaError reports every violation found during schema validation.
type SchemaError struct {
	Schema     string
	Violations []SchemaViolation
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		field := v.Field
		if field == "" {
			field = "(root)"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.Detail))
	}
	return fmt.Sprintf("document does not conform to %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Fields lists the offending field pointers, deduplicated, in order of
// appearance.
func (e *SchemaError) Fields() []string {
	seen := make(map[string]bool, len(e.Violations))
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		field := v.Field
		if field == "" {
			field = "(root)"
		}
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	return out
}

// FieldError reports a failed field-level assertion on a decoded document.
type FieldError struct {
	Field    string
	Expected interface{}
	Got      interface{}
	Missing  bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("assert field %q: field is missing", e.Field)
	}
	return fmt.Sprintf("assert field %q: got %v, want %v", e.Field, e.Got, e.Expected)
}
