package circuit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Encode serializes a document as pretty-printed JSON with sorted keys and a
// trailing newline. The output is deterministic for equal documents. Text is
// written as is; "<", ">" and "&" are not escaped.
func Encode(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a JSON document into the typed model.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := decodeStrict(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseTree parses JSON into the generic tree of map[string]any, []any and
// scalar values that schema validation operates on. Numbers are json.Number.
func ParseTree(data []byte) (any, error) {
	var v any
	if err := decodeStrict(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// FromTree converts a parsed tree into the typed model.
func FromTree(tree any) (*Document, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return Decode(data)
}

// ErrTrailingData is returned when a JSON value is followed by more content.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// decodeStrict decodes exactly one JSON value, keeping number literals.
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	off := dec.InputOffset()
	rest := data[off:]
	if trimmed := bytes.TrimLeft(rest, " \t\r\n"); len(trimmed) > 0 {
		return &TrailingDataError{Offset: off + int64(len(rest)-len(trimmed))}
	}
	return nil
}

// TrailingDataError reports content after the top-level JSON value.
// Offset is the 0-based position of the first unexpected byte.
type TrailingDataError struct {
	Offset int64
}

func (e *TrailingDataError) Error() string {
	return fmt.Sprintf("%v at offset %d", ErrTrailingData, e.Offset)
}

func (e *TrailingDataError) Unwrap() error { return ErrTrailingData }

// =============================================================================
// Field helpers
// =============================================================================

// fields holds the members of a JSON object while known keys are consumed.
type fields map[string]json.RawMessage

func splitFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("expected object, got null")
	}
	return f, nil
}

// take decodes key into dst and removes it. Missing keys leave dst untouched.
func (f fields) take(key string, dst any) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	delete(f, key)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// rest returns the unconsumed members in compact form, or nil.
func (f fields) rest() (map[string]json.RawMessage, error) {
	if len(f) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(f))
	for k, raw := range f {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = json.RawMessage(buf.Bytes())
	}
	return out, nil
}

// object accumulates members for encoding. encoding/json sorts map keys,
// which gives the stable key order of the file format.
type object map[string]any

func newObject(extra map[string]json.RawMessage) object {
	o := make(object, len(extra)+8)
	for k, v := range extra {
		o[k] = v
	}
	return o
}

func (o object) setOpt(key string, v any, present bool) {
	if present {
		o[key] = v
	}
}

// =============================================================================
// Document
// =============================================================================

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	o := newObject(d.Extra)
	o["version"] = d.Version
	metadata := d.Metadata
	if metadata == nil {
		metadata = Metadata{}
	}
	o["metadata"] = metadata
	components := d.Components
	if components == nil {
		components = []Component{}
	}
	o["components"] = components
	o.setOpt("nets", d.Nets, d.Nets != nil)
	o.setOpt("connections", d.Connections, d.Connections != nil)
	o.setOpt("board", d.Board, d.Board != nil)
	o.setOpt("design_rules", d.DesignRules, d.DesignRules != nil)
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out Document
	steps := []struct {
		key string
		dst any
	}{
		{"version", &out.Version},
		{"metadata", &out.Metadata},
		{"components", &out.Components},
		{"nets", &out.Nets},
		{"connections", &out.Connections},
		{"board", &out.Board},
		{"design_rules", &out.DesignRules},
	}
	for _, s := range steps {
		if err := f.take(s.key, s.dst); err != nil {
			return err
		}
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*d = out
	return nil
}

// =============================================================================
// Component
// =============================================================================

// MarshalJSON implements json.Marshaler.
func (c Component) MarshalJSON() ([]byte, error) {
	o := newObject(c.Extra)
	o["id"] = c.ID
	o["type"] = c.Type
	for _, sf := range c.scalarFields() {
		o.setOpt(sf.key, *sf.ptr, *sf.ptr != nil)
	}
	o.setOpt("pins", c.Pins, c.Pins != nil)
	o.setOpt("params", c.Params, c.Params != nil)
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Component) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out Component
	if err := f.take("id", &out.ID); err != nil {
		return err
	}
	if err := f.take("type", &out.Type); err != nil {
		return err
	}
	for _, sf := range out.scalarFields() {
		if err := f.take(sf.key, sf.ptr); err != nil {
			return err
		}
	}
	if err := f.take("pins", &out.Pins); err != nil {
		return err
	}
	if err := f.take("params", &out.Params); err != nil {
		return err
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*c = out
	return nil
}

type scalarField struct {
	key string
	ptr **Scalar
}

// scalarFields lists the optional scalar fields with their JSON keys.
func (c *Component) scalarFields() []scalarField {
	return []scalarField{
		{"value", &c.Value},
		{"package", &c.Package},
		{"description", &c.Description},
		{"tolerance", &c.Tolerance},
		{"power", &c.Power},
		{"voltage", &c.Voltage},
		{"color", &c.Color},
		{"forward_voltage", &c.ForwardVoltage},
		{"notes", &c.Notes},
	}
}

// Field returns an optional scalar field by its JSON key.
func (c *Component) Field(key string) *Scalar {
	for _, sf := range c.scalarFields() {
		if sf.key == key {
			return *sf.ptr
		}
	}
	return nil
}

// =============================================================================
// Pin
// =============================================================================

// MarshalJSON implements json.Marshaler.
func (p Pin) MarshalJSON() ([]byte, error) {
	o := newObject(p.Extra)
	o.setOpt("net", p.Net, p.Net != nil)
	o.setOpt("x", p.X, p.X != nil)
	o.setOpt("y", p.Y, p.Y != nil)
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pin) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out Pin
	for key, dst := range map[string]any{"net": &out.Net, "x": &out.X, "y": &out.Y} {
		if err := f.take(key, dst); err != nil {
			return err
		}
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*p = out
	return nil
}

// =============================================================================
// Net, NetConnection, Connection
// =============================================================================

// MarshalJSON implements json.Marshaler.
func (n Net) MarshalJSON() ([]byte, error) {
	o := newObject(n.Extra)
	o["id"] = n.ID
	o.setOpt("name", n.Name, n.Name != nil)
	conns := n.Connections
	if conns == nil {
		conns = []NetConnection{}
	}
	o["connections"] = conns
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Net) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out Net
	for key, dst := range map[string]any{"id": &out.ID, "name": &out.Name, "connections": &out.Connections} {
		if err := f.take(key, dst); err != nil {
			return err
		}
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*n = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c NetConnection) MarshalJSON() ([]byte, error) {
	o := newObject(c.Extra)
	o["component"] = c.Component
	o["pin"] = c.Pin
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *NetConnection) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out NetConnection
	if err := f.take("component", &out.Component); err != nil {
		return err
	}
	if err := f.take("pin", &out.Pin); err != nil {
		return err
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Connection) MarshalJSON() ([]byte, error) {
	o := newObject(c.Extra)
	o["from"] = c.From
	o["to"] = c.To
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Connection) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out Connection
	if err := f.take("from", &out.From); err != nil {
		return err
	}
	if err := f.take("to", &out.To); err != nil {
		return err
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*c = out
	return nil
}

// =============================================================================
// Board, DesignRules, EMICompliance
// =============================================================================

// MarshalJSON implements json.Marshaler.
func (b Board) MarshalJSON() ([]byte, error) {
	o := newObject(b.Extra)
	o.setOpt("width_mm", b.WidthMM, b.WidthMM != nil)
	o.setOpt("height_mm", b.HeightMM, b.HeightMM != nil)
	o.setOpt("layers", b.Layers, b.Layers != nil)
	o.setOpt("thickness_mm", b.ThicknessMM, b.ThicknessMM != nil)
	o.setOpt("material", b.Material, b.Material != nil)
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Board) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out Board
	steps := map[string]any{
		"width_mm":     &out.WidthMM,
		"height_mm":    &out.HeightMM,
		"layers":       &out.Layers,
		"thickness_mm": &out.ThicknessMM,
		"material":     &out.Material,
	}
	for key, dst := range steps {
		if err := f.take(key, dst); err != nil {
			return err
		}
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*b = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r DesignRules) MarshalJSON() ([]byte, error) {
	o := newObject(r.Extra)
	o.setOpt("emi_compliance", r.EMICompliance, r.EMICompliance != nil)
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *DesignRules) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out DesignRules
	if err := f.take("emi_compliance", &out.EMICompliance); err != nil {
		return err
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*r = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e EMICompliance) MarshalJSON() ([]byte, error) {
	o := newObject(e.Extra)
	o.setOpt("standard", e.Standard, e.Standard != nil)
	o.setOpt("decoupling_strategy", e.DecouplingStrategy, e.DecouplingStrategy != nil)
	return marshal(map[string]any(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *EMICompliance) UnmarshalJSON(data []byte) error {
	f, err := splitFields(data)
	if err != nil {
		return err
	}
	var out EMICompliance
	if err := f.take("standard", &out.Standard); err != nil {
		return err
	}
	if err := f.take("decoupling_strategy", &out.DecouplingStrategy); err != nil {
		return err
	}
	if out.Extra, err = f.rest(); err != nil {
		return err
	}
	*e = out
	return nil
}
