package cql2

import "github.com/robert-malhotra/go-stac-client/pkg/cql2/schema"

// Validator is pkg/cql2/schema's compiled CQL2 JSON Schema validator,
// re-exported here so callers that only need parse+validate don't have
// to import the schema subpackage directly (§6.1).
type Validator = schema.Validator

// DefaultValidator returns the package-wide schema validator,
// compiling it on first use.
func DefaultValidator() *Validator { return schema.Default() }
