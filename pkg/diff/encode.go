package diff

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Format names a machine-readable changeset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

var cborMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode serializes the changeset in the given format.
func (c *Changeset) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return c.JSON()
	case FormatCBOR:
		return c.CBOR()
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// JSON returns the changeset as indented JSON followed by a newline.
func (c *Changeset) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// CBOR returns the changeset in canonical CBOR. The payload carries the same
// tree as the JSON form: numbers become integers when they are whole and fit
// in 64 bits, floats otherwise.
func (c *Changeset) CBOR() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return cborMode.Marshal(normalize(tree))
}

// normalize replaces json.Number values with int64 or float64.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}
