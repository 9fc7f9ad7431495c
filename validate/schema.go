// Package validate checks records against a JSON Schema and routes the
// rejected ones according to a failure policy.
package validate

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/configura/configura/pipeline"
)

// Schema is a compiled JSON Schema document.
type Schema struct {
	compiled *gojsonschema.Schema
}

// NewSchema compiles a JSON Schema from raw JSON bytes.
func NewSchema(doc []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// LoadSchema reads and compiles the schema at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	s, err := NewSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// Check returns every violation of rec against the schema. A nil slice
// means the record is valid.
func (s *Schema) Check(rec pipeline.Record) ([]string, error) {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(map[string]any(rec)))
	if err != nil {
		return nil, fmt.Errorf("validating record: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
