package validate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/observability"
)

func tree(t *testing.T, doc string) any {
	t.Helper()
	v, err := circuit.ParseTree([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTree() error = %v", err)
	}
	return v
}

type recordingHooks struct {
	observability.NoopValidationHooks
	stages  []string
	skipped []string
}

func (h *recordingHooks) OnValidate(_ context.Context, stage string, _, _ int, _ time.Duration) {
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnSchemaSkipped(_ context.Context, source string, _ error) {
	h.skipped = append(h.skipped, source)
}

func TestRunValid(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetValidationHooks(hooks)
	t.Cleanup(observability.Reset)

	doc, r := Run(context.Background(), tree(t, `{"version": "1.0", "metadata": {"name": "blink"},
		"components": [
			{"id": "R1", "type": "resistor", "value": "330", "power": "0.25W", "pins": {"1": {}, "2": {}}},
			{"id": "D1", "type": "led", "color": "red", "forward_voltage": 2, "pins": {"a": {}, "k": {}}}],
		"nets": [{"id": "N1", "connections": [{"component": "R1", "pin": "2"}, {"component": "D1", "pin": "a"}]}]}`),
		Options{})

	if !r.Valid() {
		t.Fatalf("errors = %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("warnings = %v", r.Warnings)
	}
	if doc == nil || len(doc.Components) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if strings.Join(hooks.stages, ",") != "schema,semantic" {
		t.Errorf("stages = %v", hooks.stages)
	}
	if len(r.Info) == 0 || r.Info[0].Message != "Validating against schema..." {
		t.Errorf("info = %v", r.Info)
	}
}

func TestRunSkipsSemanticOnSchemaErrors(t *testing.T) {
	doc, r := Run(context.Background(), tree(t, `{"version": "1.0", "metadata": {},
		"components": [{"id": "R1", "type": "resistor", "params": {"resistance_ohm": -1}}, {"type": "gizmo"}]}`),
		Options{})

	if doc != nil {
		t.Error("doc should be nil when the structure is invalid")
	}
	for _, f := range r.Errors {
		if f.Kind != KindSchema {
			t.Errorf("unexpected non-schema error %+v", f)
		}
	}
	paths := make([]string, len(r.Errors))
	for i, f := range r.Errors {
		paths[i] = f.Path
	}
	if want := "components.1.id,components.1.type"; strings.Join(paths, ",") != want {
		t.Errorf("paths = %v, want %s", paths, want)
	}
}

func TestRunSchemaOverride(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(custom, []byte(`{"type": "object", "required": ["owner"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, r := Run(context.Background(), tree(t, `{"version": "1.0", "metadata": {}, "components": []}`),
		Options{SchemaPath: custom})
	if len(r.Errors) != 1 || r.Errors[0].Path != "owner" {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestRunSchemaUnavailable(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetValidationHooks(hooks)
	t.Cleanup(observability.Reset)

	missing := filepath.Join(t.TempDir(), "nope.json")
	doc, r := Run(context.Background(), tree(t, `{"version": "1.0", "metadata": {},
		"components": [{"id": "R1", "type": "other"}, {"id": "R1", "type": "other"}]}`),
		Options{SchemaPath: missing})

	if got := r.Find(KindSchemaSkipped); len(got) != 1 || got[0].Severity != SeverityWarning {
		t.Fatalf("schema skipped findings = %v", got)
	}
	if len(hooks.skipped) != 1 || hooks.skipped[0] != missing {
		t.Errorf("skipped = %v", hooks.skipped)
	}
	if doc == nil {
		t.Fatal("semantic stage should still run")
	}
	if len(r.Find(KindDuplicateComponent)) != 1 {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestRunUndecodableWithoutSchema(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"type": `), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, r := Run(context.Background(), tree(t, `{"version": "1.0", "components": [{"id": 5}]}`),
		Options{SchemaPath: bad})
	if doc != nil {
		t.Error("doc should be nil")
	}
	if len(r.Find(KindDecode)) != 1 {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestReportJSON(t *testing.T) {
	var r Report
	r.Warnf(KindSparseNet, "nets.0", "Net %s has fewer than 2 connections", "N1")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"valid":true,"errors":[],"warnings":[{"severity":"warning","kind":"sparse_net",` +
		`"message":"Net N1 has fewer than 2 connections","path":"nets.0"}],"info":[]}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}

	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Warnings) != 1 || back.Warnings[0].Severity != SeverityWarning {
		t.Errorf("decoded = %+v", back)
	}
}

func TestReportMerge(t *testing.T) {
	var a, b Report
	a.Infof(KindProgress, "", "one")
	b.Errorf(KindSchema, "x", "two")
	b.Infof(KindProgress, "", "three")
	a.Merge(b)

	if a.Valid() {
		t.Error("merged report should be invalid")
	}
	if got := strings.Join(a.Messages(SeverityInfo), ","); got != "one,three" {
		t.Errorf("info = %s", got)
	}
	if got := a.Errors[0].String(); got != "two (at x)" {
		t.Errorf("String() = %q", got)
	}
}
