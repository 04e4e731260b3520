// Package circuit defines the in-memory model of a circuit interchange document.
//
// This package is the serialization boundary between the on-disk JSON format
// and the validation and diff packages. Optional fields are explicit: a nil
// pointer, slice or map means the field is absent from the document, which
// keeps "absent" and "zero" distinguishable.
//
// # JSON Format
//
//	{
//	  "version": "1.0",
//	  "metadata": {"name": "LED blinker", "author": "..."},
//	  "components": [
//	    {
//	      "id": "R1",
//	      "type": "resistor",
//	      "value": "330",
//	      "params": {"resistance_ohm": 330, "power_rating_w": 0.25},
//	      "pins": {"1": {"net": "VCC"}, "2": {"x": 1.5, "y": 0}}
//	    }
//	  ],
//	  "nets": [
//	    {"id": "N1", "connections": [{"component": "R1", "pin": "1"}]}
//	  ],
//	  "connections": [{"from": "R1.2", "to": "GND"}]
//	}
//
// # Round-trip Fidelity
//
// Fields the model does not know about are kept in each type's Extra map as
// compact raw JSON and written back unchanged. [Encode] produces
// pretty-printed output with lexicographically sorted keys, so saving the same
// document twice yields identical bytes.
//
// # Connectivity
//
// A document may describe wiring as nets (current format), as legacy
// point-to-point connections, or both. [Document.Connectivity] exposes both
// representations through one [Connectivity] interface so referential checks
// are written once.
package circuit
