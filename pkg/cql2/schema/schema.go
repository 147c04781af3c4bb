// Package schema compiles and runs the CQL2 JSON Schema (§4.6) against
// decoded cql2-json documents, surfacing the schema-validator error
// taxonomy at three verbosity tiers (§7's SchemaValidation variant).
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed cql2.json
var schemaDoc []byte

const schemaResourceURL = "https://schemas.opengis.net/cql2/cql2.json"

// Verbosity selects how much of the validator's failure tree a
// ValidationError.Error() renders.
type Verbosity int

const (
	// Terse reports only the first failing leaf.
	Terse Verbosity = iota
	// Detailed reports every failing leaf, one per line.
	Detailed
	// VeryDetailed additionally includes each leaf's JSON Pointer
	// location within the document being validated.
	VeryDetailed
)

// ValidationError wraps a jsonschema.ValidationError with the
// verbosity the caller asked for baked into its Error() rendering.
type ValidationError struct {
	verbosity Verbosity
	cause     *jsonschema.ValidationError
}

func (e *ValidationError) Error() string {
	basic := e.cause.BasicOutput()
	var leaves []string
	for _, ierr := range basic.Errors {
		if ierr.Error == nil {
			continue
		}
		switch e.verbosity {
		case Terse:
			return fmt.Sprintf("cql2: schema validation failed: %s", ierr.Error)
		case VeryDetailed:
			leaves = append(leaves, fmt.Sprintf("%s: %s", ierr.InstanceLocation, ierr.Error))
		default:
			leaves = append(leaves, fmt.Sprintf("%v", ierr.Error))
		}
	}
	if len(leaves) == 0 {
		return fmt.Sprintf("cql2: schema validation failed: %s", e.cause.Error())
	}
	return "cql2: schema validation failed:\n  " + strings.Join(leaves, "\n  ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Validator compiles the embedded CQL2 schema exactly once and is safe
// for concurrent use by any number of callers, matching §4.6's "built
// once, shared across requests" contract (the same shape as
// client.Client's single http.Client, reused rather than rebuilt per
// call).
type Validator struct {
	schema *jsonschema.Schema
}

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
	defaultValidatorErr  error
)

// Default returns the package-wide Validator, compiling it on first
// use. Compilation failure here indicates a broken embedded schema
// file, not a caller error, so it panics rather than threading a
// compile-time error through every Validate call site.
func Default() *Validator {
	defaultValidatorOnce.Do(func() {
		defaultValidator, defaultValidatorErr = New()
	})
	if defaultValidatorErr != nil {
		panic(defaultValidatorErr)
	}
	return defaultValidator
}

// New compiles a fresh Validator from the embedded schema document.
// Most callers should use Default; New exists for tests and for
// callers that want an isolated jsonschema.Compiler (e.g. to register
// additional schema resources alongside cql2.json).
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceURL, bytes.NewReader(schemaDoc)); err != nil {
		return nil, fmt.Errorf("cql2/schema: add resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("cql2/schema: compile: %w", err)
	}
	log.Debug().Str("schema", schemaResourceURL).Msg("cql2 schema compiled")
	return &Validator{schema: compiled}, nil
}

// Validate checks doc (already decoded from JSON, e.g. via
// encoding/json.Unmarshal into any) against the CQL2 schema at the
// requested verbosity. It returns nil when doc validates.
func (v *Validator) Validate(doc any, verbosity Verbosity) error {
	if err := v.schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		log.Debug().Err(ve).Msg("cql2 schema validation failed")
		return &ValidationError{verbosity: verbosity, cause: ve}
	}
	return nil
}

// ValidateJSON decodes raw JSON text and validates it in one step,
// the shape most cql2.Parse-adjacent callers want.
func (v *Validator) ValidateJSON(raw []byte, verbosity Verbosity) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("cql2/schema: invalid JSON: %w", err)
	}
	return v.Validate(doc, verbosity)
}
