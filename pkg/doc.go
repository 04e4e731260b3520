// Package pkg provides the core libraries for checking and persisting circuit
// documents.
//
// # Overview
//
// A circuit document is a JSON file describing components, their pins, the
// nets joining them, an optional board and advisory design rules. The pkg
// directory is organized as:
//
//  1. [circuit] - Typed document model and canonical JSON codec
//  2. [store] - Crash-safe load and save with backups, hashing and locks
//  3. [schema] - Structural validation against a JSON schema subset
//  4. [validate] - Semantic validation and the classified findings model
//  5. [drc] - Advisory design-rule checks (decoupling, spacing, power)
//  6. [diff] - Field-level changesets between two documents
//  7. [units] - Engineering value literals such as "100nF" or "4k7"
//
// Supporting packages are [errors] (error codes shared by every package),
// [observability] (hooks for store and validation events) and [buildinfo].
//
// # Architecture
//
// The typical data flow:
//
//	document file
//	     ↓
//	[store] package (read with retries, MALFORMED with line/column)
//	     ↓
//	[schema] package (structure)  →  errors stop here
//	     ↓
//	[validate] package (ids, references, pins, value signs)
//	     ↓
//	report (errors / warnings / info)
//
// [diff] works on any two loaded documents and does not require validation.
//
// # Quick Start
//
//	st, _ := store.New(store.DefaultOptions())
//	tree, err := st.LoadTree(ctx, "board.json")
//	if err != nil {
//	    return err
//	}
//	doc, report := validate.Run(ctx, tree, validate.Options{})
//	if !report.Valid() {
//	    for _, f := range report.Errors {
//	        fmt.Println(f)
//	    }
//	}
//
//	doc.Components[0].Package = circuit.ScalarPtr(circuit.StringValue("0805"))
//	err = st.Save(ctx, "board.json", doc, store.SaveOptions{})
//
// [circuit]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/circuit
// [store]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/store
// [schema]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/schema
// [validate]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/validate
// [drc]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/drc
// [diff]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/diff
// [units]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/units
// [errors]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/circuitkit/pkg/buildinfo
package pkg
