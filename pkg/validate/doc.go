// Package validate checks circuit documents and reports classified findings.
//
// Validation runs in two stages. [Structure] checks the raw document tree
// against a schema (see package schema). [Semantic] then checks what a schema
// cannot express:
//
//   - component ids are unique
//   - resistors, capacitors and LEDs carry a value and a rating
//   - every net and legacy connection endpoint names an existing component,
//     and net pins are declared on that component
//   - nets have at least two connections and unique ids
//   - resistance and capacitance are positive, voltage ratings non-negative
//
// [Run] chains both stages and skips the semantic stage when the structure is
// invalid.
//
// Domain problems never surface as Go errors. Each problem is a [Finding]
// with a [Severity], a [Kind] and a dotted document path, collected in a
// [Report]. A report is valid when it holds no error findings; warnings and
// info never affect validity.
package validate
