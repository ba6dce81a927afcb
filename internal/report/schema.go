package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TableAnalysisSchema is the JSON Schema (draft 2020-12) of a structured
// table analysis.
//
//go:embed table_analysis.schema.json
var TableAnalysisSchema []byte

const schemaURL = "table_analysis.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func tableAnalysisSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(TableAnalysisSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to load table analysis schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile table analysis schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateStructured checks structured (JSON) table analysis output against
// TableAnalysisSchema.
func ValidateStructured(data []byte) error {
	schema, err := tableAnalysisSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode structured JSON for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}
