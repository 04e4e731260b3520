// Package diff computes a field-level changeset between two circuit
// documents.
//
// Components and nets are matched by id. When a document repeats an id, the
// last occurrence wins. Net connections compare as an unordered set of
// (component, pin) pairs, so reordering a net never shows up as a change.
//
// Every list in a [Changeset] is sorted, so the same two documents always
// produce byte-identical JSON and CBOR output.
package diff

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/matzehuels/circuitkit/pkg/circuit"
)

// Change is one field whose value differs. An absent value is nil.
type Change struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// ComponentChange lists the field changes of a component present in both
// documents.
type ComponentChange struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Changeset is the difference between an old and a new document.
type Changeset struct {
	Metadata    []Change            `json:"metadata_changes"`
	Added       []circuit.Component `json:"components_added"`
	Removed     []circuit.Component `json:"components_removed"`
	Modified    []ComponentChange   `json:"components_modified"`
	NetsChanged []string            `json:"nets_changed"`
}

// Empty reports whether the documents have no component or net differences.
// Metadata changes alone do not count.
func (c *Changeset) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0 && len(c.NetsChanged) == 0
}

// Summary returns a one-line count of the changes.
func (c *Changeset) Summary() string {
	if c.Empty() && len(c.Metadata) == 0 {
		return "no changes"
	}
	return fmt.Sprintf("%d added, %d removed, %d modified, %d nets changed, %d metadata changes",
		len(c.Added), len(c.Removed), len(c.Modified), len(c.NetsChanged), len(c.Metadata))
}

// AddedIDs returns the ids of added components.
func (c *Changeset) AddedIDs() []string { return ids(c.Added) }

// RemovedIDs returns the ids of removed components.
func (c *Changeset) RemovedIDs() []string { return ids(c.Removed) }

func ids(comps []circuit.Component) []string {
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.ID
	}
	return out
}

// Compute returns the changeset that turns before into after. It never fails
// and does not modify either document.
func Compute(before, after *circuit.Document) *Changeset {
	cs := &Changeset{
		Metadata:    diffMetadata(before.Metadata, after.Metadata),
		Added:       []circuit.Component{},
		Removed:     []circuit.Component{},
		Modified:    []ComponentChange{},
		NetsChanged: diffNets(before.Nets, after.Nets),
	}

	oldComps, newComps := byID(before.Components), byID(after.Components)
	for _, id := range sortedKeys(newComps) {
		if _, ok := oldComps[id]; !ok {
			cs.Added = append(cs.Added, *newComps[id])
		}
	}
	for _, id := range sortedKeys(oldComps) {
		o := oldComps[id]
		n, ok := newComps[id]
		if !ok {
			cs.Removed = append(cs.Removed, *o)
			continue
		}
		if changes := compareComponents(o, n); len(changes) > 0 {
			cs.Modified = append(cs.Modified, ComponentChange{ID: id, Changes: changes})
		}
	}
	return cs
}

// =============================================================================
// Metadata
// =============================================================================

func diffMetadata(before, after circuit.Metadata) []Change {
	keys := make(map[string]bool, len(before)+len(after))
	for k := range before {
		keys[k] = true
	}
	for k := range after {
		keys[k] = true
	}

	changes := []Change{}
	for _, k := range sortedKeys(keys) {
		o, n := before[k], after[k]
		if !circuit.ValuesEqual(o, n) {
			changes = append(changes, Change{Field: k, Old: o, New: n})
		}
	}
	return changes
}

// =============================================================================
// Components
// =============================================================================

// scalarFields is the fixed set of component fields compared one by one.
var scalarFields = []string{"value", "package", "description", "tolerance", "power", "voltage", "color", "notes"}

func compareComponents(o, n *circuit.Component) []Change {
	var changes []Change

	if o.Type != n.Type {
		changes = append(changes, Change{Field: "type", Old: o.Type, New: n.Type})
	}
	for _, f := range scalarFields {
		ov, nv := o.Field(f), n.Field(f)
		if !circuit.OptionalEqual(ov, nv) {
			changes = append(changes, Change{Field: f, Old: scalarValue(ov), New: scalarValue(nv)})
		}
	}

	changes = append(changes, compareParams(o.Params, n.Params)...)
	changes = append(changes, comparePins(o.Pins, n.Pins)...)
	return changes
}

func scalarValue(s *circuit.Scalar) any {
	if s == nil {
		return nil
	}
	return s.Interface()
}

func compareParams(o, n circuit.Params) []Change {
	keys := make(map[string]bool, len(o)+len(n))
	for k := range o {
		keys[k] = true
	}
	for k := range n {
		keys[k] = true
	}

	var changes []Change
	for _, k := range sortedKeys(keys) {
		if !circuit.ValuesEqual(o[k], n[k]) {
			changes = append(changes, Change{Field: "params." + k, Old: o[k], New: n[k]})
		}
	}
	return changes
}

// comparePins reports a whole-set change when the pin names differ, and
// otherwise per-pin net and position changes.
func comparePins(o, n map[string]circuit.Pin) []Change {
	oldNames, newNames := sortedKeys(o), sortedKeys(n)
	if !slices.Equal(oldNames, newNames) {
		return []Change{{Field: "pins", Old: oldNames, New: newNames}}
	}

	var changes []Change
	for _, name := range oldNames {
		op, np := o[name], n[name]
		if !equalPtr(op.Net, np.Net) {
			changes = append(changes, Change{Field: "pins." + name + ".net", Old: deref(op.Net), New: deref(np.Net)})
		}
		if !equalPtr(op.X, np.X) || !equalPtr(op.Y, np.Y) {
			changes = append(changes, Change{
				Field: "pins." + name + ".position",
				Old:   []any{deref(op.X), deref(op.Y)},
				New:   []any{deref(np.X), deref(np.Y)},
			})
		}
	}
	return changes
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// =============================================================================
// Nets
// =============================================================================

func diffNets(before, after []circuit.Net) []string {
	oldNets, newNets := netsByID(before), netsByID(after)

	changed := []string{}
	for id, o := range oldNets {
		n, ok := newNets[id]
		if !ok || !slices.Equal(o, n) {
			changed = append(changed, id)
		}
	}
	for id := range newNets {
		if _, ok := oldNets[id]; !ok {
			changed = append(changed, id)
		}
	}
	sort.Strings(changed)
	return changed
}

// netsByID maps each net id to its normalized connection set.
func netsByID(nets []circuit.Net) map[string][]string {
	out := make(map[string][]string, len(nets))
	for i := range nets {
		set := nets[i].PinSet()
		keys := make([]string, len(set))
		for j, c := range set {
			keys[j] = c.Component + "\x00" + c.Pin
		}
		out[nets[i].ID] = keys
	}
	return out
}

// =============================================================================
// Helpers
// =============================================================================

func byID(comps []circuit.Component) map[string]*circuit.Component {
	out := make(map[string]*circuit.Component, len(comps))
	for i := range comps {
		out[comps[i].ID] = &comps[i]
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders a change as "field: old -> new".
func (c Change) String() string {
	return c.Field + ": " + Display(c.Old) + " -> " + Display(c.New)
}

// Display renders one side of a change for humans. Absent values show as
// "(none)" and positions as "(x, y)".
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return "(none)"
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Display(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case string:
		return fmt.Sprintf("%q", x)
	}
	return fmt.Sprint(v)
}
