package spec

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/specforge-dev/specforge/pkg/apperrors"
)

//go:embed spec_schema.json
var schemaJSON string

// SchemaJSON returns the embedded schema text, used verbatim in the
// model-assisted synthesis prompt.
func SchemaJSON() string {
	return schemaJSON
}

// compiledSchema is the fixed contract between the extraction core and the
// planner/generator. Compiled once at init; the schema is embedded, so a
// compile failure is a programming error.
var compiledSchema = jsonschema.MustCompileString("spec_schema.json", schemaJSON)

// Validate checks a specification against the fixed schema. Violations
// after coercion should not occur; this is the backstop. The returned
// SchemaValidationError carries the violation path and message so
// model-assisted synthesis can feed them into a corrective prompt.
func Validate(s *Specification) error {
	// Round-trip through JSON so validation sees the serialized shape the
	// downstream consumers see.
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal specification: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("unmarshal specification: %w", err)
	}

	if err := compiledSchema.Validate(tree); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			path := leaf.InstanceLocation
			if path == "" {
				path = "/"
			}
			return &apperrors.SchemaValidationError{
				Path:    path,
				Message: leaf.Message,
				Cause:   err,
			}
		}
		return err
	}
	return nil
}
