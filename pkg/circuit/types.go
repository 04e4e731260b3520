package circuit

import (
	"encoding/json"
	"slices"
	"sort"
)

// Component types recognized by the default schema.
const (
	TypeResistor         = "resistor"
	TypeCapacitor        = "capacitor"
	TypeInductor         = "inductor"
	TypeLED              = "led"
	TypeDiode            = "diode"
	TypeTransistor       = "transistor"
	TypeIC               = "ic"
	TypeConnector        = "connector"
	TypeVoltageRegulator = "voltage_regulator"
	TypePowerSupply      = "power_supply"
	TypeGround           = "ground"
	TypeSwitch           = "switch"
	TypeCrystal          = "crystal"
	TypeFuse             = "fuse"
	TypeOther            = "other"
)

// ComponentTypes lists every recognized component type in schema order.
var ComponentTypes = []string{
	TypeResistor, TypeCapacitor, TypeInductor, TypeLED, TypeDiode,
	TypeTransistor, TypeIC, TypeConnector, TypeVoltageRegulator,
	TypePowerSupply, TypeGround, TypeSwitch, TypeCrystal, TypeFuse, TypeOther,
}

// Well-known params keys.
const (
	ParamResistance     = "resistance_ohm"
	ParamCapacitance    = "capacitance_f"
	ParamVoltageRating  = "voltage_rating_v"
	ParamPowerRating    = "power_rating_w"
	ParamForwardVoltage = "forward_voltage_v"
	ParamColor          = "color"
)

// Virtual endpoint tokens. They are always treated as existing.
const (
	VirtualVCC = "VCC"
	VirtualGND = "GND"
)

// IsVirtual reports whether id names a virtual endpoint.
func IsVirtual(id string) bool {
	return id == VirtualVCC || id == VirtualGND
}

// =============================================================================
// Document
// =============================================================================

// Document is the root aggregate of a circuit file.
type Document struct {
	Version     string
	Metadata    Metadata
	Components  []Component
	Nets        []Net        // nil when the document has no "nets" field
	Connections []Connection // nil when the document has no "connections" field
	Board       *Board
	DesignRules *DesignRules
	Extra       map[string]json.RawMessage
}

// HasNets reports whether the document declares the current net format.
func (d *Document) HasNets() bool { return d.Nets != nil }

// HasConnections reports whether the document declares legacy connections.
func (d *Document) HasConnections() bool { return d.Connections != nil }

// ComponentIDs returns the set of component ids in the document.
func (d *Document) ComponentIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Components))
	for _, c := range d.Components {
		ids[c.ID] = true
	}
	return ids
}

// Component returns the first component with the given id.
func (d *Document) Component(id string) (*Component, bool) {
	for i := range d.Components {
		if d.Components[i].ID == id {
			return &d.Components[i], true
		}
	}
	return nil, false
}

// Metadata is the free-form, advisory metadata record.
type Metadata map[string]any

// Name returns metadata.name when it is a string.
func (m Metadata) Name() string { return m.str("name") }

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Metadata) str(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// =============================================================================
// Component
// =============================================================================

// Component is a placed part with named pins and type-specific parameters.
type Component struct {
	ID   string
	Type string

	Value          *Scalar
	Package        *Scalar
	Description    *Scalar
	Tolerance      *Scalar
	Power          *Scalar
	Voltage        *Scalar
	Color          *Scalar
	ForwardVoltage *Scalar
	Notes          *Scalar

	Pins   map[string]Pin // nil when absent
	Params Params         // nil when absent
	Extra  map[string]json.RawMessage
}

// PinNames returns the declared pin names in sorted order.
func (c *Component) PinNames() []string {
	names := make([]string, 0, len(c.Pins))
	for name := range c.Pins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPin reports whether the component declares a pin with the given name.
func (c *Component) HasPin(name string) bool {
	_, ok := c.Pins[name]
	return ok
}

// ExtraField decodes an unmodeled field into dst. It reports false when the
// field is absent.
func (c *Component) ExtraField(key string, dst any) (bool, error) {
	raw, ok := c.Extra[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

// Params holds type-specific physical parameters keyed by name,
// e.g. resistance_ohm or capacitance_f.
type Params map[string]any

// Float returns the numeric value of key when present and numeric.
func (p Params) Float(key string) (float64, bool) {
	return toFloat(p[key])
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Truthy reports whether key holds a usable value (non-empty, non-zero).
func (p Params) Truthy(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if sc, ok := ScalarOf(v); ok {
		return sc.Truthy()
	}
	return true
}

// Keys returns the parameter keys in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pin is a named connection point on a component.
type Pin struct {
	Net   *string  // legacy wiring label
	X     *float64 // position, when placed
	Y     *float64
	Extra map[string]json.RawMessage
}

// Position returns the pin coordinates when both are present.
func (p Pin) Position() (x, y float64, ok bool) {
	if p.X == nil || p.Y == nil {
		return 0, 0, false
	}
	return *p.X, *p.Y, true
}

// =============================================================================
// Connectivity
// =============================================================================

// Net joins a set of component pins. Connection order carries no meaning.
type Net struct {
	ID          string
	Name        *string
	Connections []NetConnection
	Extra       map[string]json.RawMessage
}

// DisplayName returns the net name, falling back to its id.
func (n *Net) DisplayName() string {
	if n.Name != nil && *n.Name != "" {
		return *n.Name
	}
	return n.ID
}

// PinSet returns the connections as a sorted, de-duplicated set.
func (n *Net) PinSet() []NetConnection {
	set := make([]NetConnection, 0, len(n.Connections))
	for _, c := range n.Connections {
		set = append(set, NetConnection{Component: c.Component, Pin: c.Pin})
	}
	slices.SortFunc(set, func(a, b NetConnection) int {
		if a.Component != b.Component {
			if a.Component < b.Component {
				return -1
			}
			return 1
		}
		if a.Pin < b.Pin {
			return -1
		}
		if a.Pin > b.Pin {
			return 1
		}
		return 0
	})
	return slices.CompactFunc(set, func(a, b NetConnection) bool {
		return a.Component == b.Component && a.Pin == b.Pin
	})
}

// NetConnection is one (component, pin) membership of a net.
type NetConnection struct {
	Component string
	Pin       string
	Extra     map[string]json.RawMessage
}

// Connection is a legacy point-to-point link between two endpoints written
// as "COMPONENT.pin" or a bare token such as "VCC".
type Connection struct {
	From  string
	To    string
	Extra map[string]json.RawMessage
}

// =============================================================================
// Board and design rules
// =============================================================================

// Board describes the physical board.
type Board struct {
	WidthMM     *float64
	HeightMM    *float64
	Layers      *int
	ThicknessMM *float64
	Material    *string
	Extra       map[string]json.RawMessage
}

// DesignRules holds advisory EMI and thermal constraints.
type DesignRules struct {
	EMICompliance *EMICompliance
	Extra         map[string]json.RawMessage
}

// EMICompliance is the design_rules.emi_compliance record.
type EMICompliance struct {
	Standard           *string
	DecouplingStrategy *string
	Extra              map[string]json.RawMessage
}
