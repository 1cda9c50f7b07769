package expect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Document is a compiled JSON Schema, safe for shared read-only use.
type Document struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles src as a JSON Schema. The name shows up in error output.
func Compile(name, src string) (*Document, error) {
	sch, err := jsonschema.CompileString(name, src)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Document{name: name, schema: sch}, nil
}

// MustCompile is Compile for embedded schemas known to be valid.
func MustCompile(name, src string) *Document {
	d, err := Compile(name, src)
	if err != nil {
		panic(err)
	}
	return d
}

// LoadFile reads and compiles a schema document from disk.
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Compile(filepath.Base(path), string(raw))
}

// Name reports the schema's display name.
func (d *Document) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Validate checks decoded JSON against the schema. On failure the returned
// *SchemaError lists every offending field.
func (d *Document) Validate(data interface{}) error {
	if d == nil || d.schema == nil {
		return fmt.Errorf("schema document is not compiled")
	}
	err := d.schema.Validate(data)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate against %s: %w", d.name, err)
	}
	se := &SchemaError{Schema: d.name}
	collectViolations(ve, &se.Violations)
	return se
}

// collectViolations walks to the leaf causes, which carry the specific
// keyword failures and instance locations.
func collectViolations(ve *jsonschema.ValidationError, out *[]SchemaViolation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, SchemaViolation{Field: ve.InstanceLocation, Detail: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectViolations(cause, out)
	}
}
