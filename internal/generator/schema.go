package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resultSchemaURL = "schema://generator-result.json"

const resultSchemaJSON = `{
  "type": "object",
  "required": ["prompt", "type", "data", "correct_answer"],
  "properties": {
    "prompt": {"type": "string", "minLength": 1},
    "type": {"enum": ["MCQ", "MULTI_SELECT", "NUMERIC", "TEXT", "INTERACTIVE", "PLUGIN"]},
    "data": {"type": "object"},
    "correct_answer": {"type": "object"},
    "explanation": {"type": "string"},
    "level": {"type": "integer", "minimum": 1, "maximum": 5}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func resultSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(resultSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse result schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(resultSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(resultSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validateResult checks the raw program output against the result schema
// and returns its JSON encoding.
func validateResult(out any) ([]byte, error) {
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("result is not JSON encodable: %w", err)
	}

	// jsonschema wants values decoded by its own reader (json.Number etc).
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	sch, err := resultSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	return raw, nil
}
