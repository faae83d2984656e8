package validator

// The CUE schemas are the contract between the pipeline stages and the rego
// rules. Without them a renamed field silently becomes `undefined` inside
// OPA and rules stop firing while the run still reports success. Validation
// failures here mean an internal bug upstream; callers crash loudly rather
// than suppressing them.

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed tables_schema.cue
var tablesSchemaFS embed.FS

//go:embed output_schema.cue
var outputSchemaFS embed.FS

// TablesValidator validates the relational doc tables against the tables
// schema before they reach policy evaluation.
type TablesValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewTablesValidator creates a validator with the embedded tables schema.
func NewTablesValidator() (*TablesValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := tablesSchemaFS.ReadFile("tables_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading tables schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling tables schema: %w", schema.Err())
	}

	return &TablesValidator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks that the tables conform to #DocTables. Returns nil if
// valid, or an error explaining what failed.
func (v *TablesValidator) Validate(data interface{}) error {
	return validateAgainst(v.ctx, v.schema, "#DocTables", data)
}

// ValidationErrors returns every individual validation error instead of the
// first one, for the banner printed before aborting.
func (v *TablesValidator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	def := v.schema.LookupPath(cue.ParsePath("#DocTables"))
	if def.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", def.Err())}
	}

	unified := def.Unify(dataValue)
	err = unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// OutputValidator validates the final lint result against the output schema.
type OutputValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewOutputValidator creates a validator with the embedded output schema.
func NewOutputValidator() (*OutputValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := outputSchemaFS.ReadFile("output_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading output schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling output schema: %w", schema.Err())
	}

	return &OutputValidator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks that the result conforms to #LintOutput.
func (v *OutputValidator) Validate(data interface{}) error {
	return validateAgainst(v.ctx, v.schema, "#LintOutput", data)
}

// ValidateJSON validates JSON bytes directly against #LintOutput.
func (v *OutputValidator) ValidateJSON(jsonBytes []byte) error {
	return validateJSONAgainst(v.ctx, v.schema, "#LintOutput", jsonBytes)
}

func validateAgainst(ctx *cue.Context, schema cue.Value, path string, data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return validateJSONAgainst(ctx, schema, path, jsonBytes)
}

func validateJSONAgainst(ctx *cue.Context, schema cue.Value, path string, jsonBytes []byte) error {
	dataValue := ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	def := schema.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", path, def.Err())
	}

	// Concrete+Final also rejects missing fields; the Go structs marshal
	// every field, so valid data is always fully concrete.
	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
