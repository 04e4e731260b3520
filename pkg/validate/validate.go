package validate

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/observability"
	"github.com/matzehuels/circuitkit/pkg/schema"
)

// Stage names reported to observability hooks.
const (
	StageSchema   = "schema"
	StageSemantic = "semantic"
)

// Options configures a validation run.
type Options struct {
	// SchemaPath overrides the built-in schema. A schema that cannot be read
	// or parsed is skipped with a warning; semantic checks still run.
	SchemaPath string

	// Strict enables the unconnected-component check.
	Strict bool

	// Logger receives debug narration. Nil means log.Default().
	Logger *log.Logger
}

// Run validates a raw document tree: structure first, then semantics. The
// semantic checks only run when the structure is valid. The decoded document
// is returned when it could be built, even if the report holds errors.
func Run(ctx context.Context, tree any, opts Options) (*circuit.Document, Report) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var r Report
	r.Merge(Structure(ctx, tree, opts.SchemaPath, logger))
	if !r.Valid() {
		logger.Debug("skipping semantic checks", "errors", len(r.Errors))
		return nil, r
	}

	doc, err := circuit.FromTree(tree)
	if err != nil {
		r.Errorf(KindDecode, "", "Document cannot be decoded: %v", err)
		return nil, r
	}

	start := time.Now()
	sem := Semantic(doc, SemanticOptions{Strict: opts.Strict})
	observability.Validation().OnValidate(ctx, StageSemantic, len(sem.Errors), len(sem.Warnings), time.Since(start))
	logger.Debug("semantic checks done", "errors", len(sem.Errors), "warnings", len(sem.Warnings))
	r.Merge(sem)
	return doc, r
}

// Structure validates tree against the schema at schemaPath, or the built-in
// schema when schemaPath is empty.
func Structure(ctx context.Context, tree any, schemaPath string, logger *log.Logger) Report {
	if logger == nil {
		logger = log.Default()
	}

	var r Report
	r.Infof(KindProgress, "", "Validating against schema...")

	s, source, err := loadSchema(schemaPath)
	if err != nil {
		observability.Validation().OnSchemaSkipped(ctx, source, err)
		logger.Warn("schema validation skipped", "schema", source, "err", err)
		r.Warnf(KindSchemaSkipped, "", "Schema %s could not be loaded, skipping schema validation: %v", source, err)
		return r
	}

	start := time.Now()
	for _, v := range s.Validate(tree) {
		r.Errorf(KindSchema, v.Path, "Schema validation failed: %s", v.Message)
	}
	observability.Validation().OnValidate(ctx, StageSchema, len(r.Errors), len(r.Warnings), time.Since(start))
	logger.Debug("schema checks done", "schema", source, "violations", len(r.Errors))

	if r.Valid() {
		r.Infof(KindProgress, "", "Schema validation passed")
	}
	return r
}

func loadSchema(path string) (*schema.Schema, string, error) {
	if path == "" {
		return schema.Default(), "built-in", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, path, err
	}
	defer f.Close()

	s, err := schema.Read(f)
	return s, path, err
}
