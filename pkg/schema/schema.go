// Package schema validates the structure of a raw circuit document tree.
//
// Schemas are JSON Schema documents compiled with
// github.com/santhosh-tekuri/jsonschema/v6. Schemas without a "$schema"
// declaration are read as draft 7. Every keyword of the draft is enforced;
// a schema the compiler cannot understand is rejected by [Parse].
//
// Format assertions are enabled. Besides the standard formats the package
// registers "semver", which accepts the lenient semantic versions understood
// by github.com/Masterminds/semver/v3 ("1.0", "2.1.3").
//
// A built-in schema for circuit documents is embedded in the package and
// returned by [Default].
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed default.json
var defaultSchema []byte

// resourceURL names schemas parsed from bytes. Local "#/..." references
// resolve against it; remote references are not loaded.
const resourceURL = "https://github.com/matzehuels/circuitkit/schema.json"

// Schema is a compiled JSON Schema.
type Schema struct {
	compiled *jsonschema.Schema
}

// Parse decodes and compiles a schema document.
func Parse(data []byte) (*Schema, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes and compiles a schema document from r.
func Read(r io.Reader) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.AssertFormat()
	c.RegisterFormat(&jsonschema.Format{Name: "semver", Validate: checkSemver})

	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

var loadDefault = sync.OnceValues(func() (*Schema, error) {
	return Parse(defaultSchema)
})

// Default returns the built-in circuit document schema.
func Default() *Schema {
	s, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("schema: embedded default schema is invalid: %v", err))
	}
	return s
}

// DefaultJSON returns the raw bytes of the built-in schema.
func DefaultJSON() []byte {
	out := make([]byte, len(defaultSchema))
	copy(out, defaultSchema)
	return out
}

func checkSemver(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if _, err := semver.NewVersion(s); err != nil {
		return fmt.Errorf("not a semantic version")
	}
	return nil
}
