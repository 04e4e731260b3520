package circuit

import (
	"fmt"
	"strings"
)

// Representation identifies how a document expresses its wiring.
type Representation int

const (
	// RepresentationNets is the current format: named nets of (component, pin) pairs.
	RepresentationNets Representation = iota
	// RepresentationLegacy is the point-to-point "from"/"to" format.
	RepresentationLegacy
)

func (r Representation) String() string {
	switch r {
	case RepresentationNets:
		return "nets"
	case RepresentationLegacy:
		return "connections"
	}
	return fmt.Sprintf("Representation(%d)", int(r))
}

// Connectivity is one wiring representation of a document, flattened into
// groups of endpoints. Referential checks consume this interface and do not
// care which representation produced the groups.
type Connectivity interface {
	Representation() Representation
	Groups() []Group
}

// Group is a set of endpoints that are electrically joined: one net, or one
// legacy connection.
type Group struct {
	ID        string // net id, or "from -> to" for legacy connections
	Path      string // dotted document path, e.g. "nets.0"
	Endpoints []Endpoint
}

// Endpoint references a component pin. Virtual endpoints (VCC, GND) do not
// reference a component.
type Endpoint struct {
	Component string
	Pin       string // empty when the endpoint names only a component
	Virtual   bool
	Raw       string // legacy endpoint text; empty for nets
	Path      string // dotted document path of the endpoint
}

// String formats the endpoint as "COMPONENT.pin".
func (e Endpoint) String() string {
	if e.Raw != "" {
		return e.Raw
	}
	if e.Pin == "" {
		return e.Component
	}
	return e.Component + "." + e.Pin
}

// ParseEndpoint splits a legacy endpoint on its first '.'.
// "R1.2" yields component R1 and pin 2; "VCC" yields a virtual endpoint.
func ParseEndpoint(s string) Endpoint {
	comp, pin, _ := strings.Cut(s, ".")
	return Endpoint{
		Component: comp,
		Pin:       pin,
		Virtual:   IsVirtual(comp),
		Raw:       s,
	}
}

// NetList exposes a document's nets as a Connectivity.
type NetList []Net

// Representation implements Connectivity.
func (NetList) Representation() Representation { return RepresentationNets }

// Groups implements Connectivity.
func (l NetList) Groups() []Group {
	groups := make([]Group, 0, len(l))
	for i, n := range l {
		g := Group{ID: n.ID, Path: fmt.Sprintf("nets.%d", i)}
		for j, c := range n.Connections {
			g.Endpoints = append(g.Endpoints, Endpoint{
				Component: c.Component,
				Pin:       c.Pin,
				Path:      fmt.Sprintf("nets.%d.connections.%d", i, j),
			})
		}
		groups = append(groups, g)
	}
	return groups
}

// ConnectionList exposes legacy connections as a Connectivity.
type ConnectionList []Connection

// Representation implements Connectivity.
func (ConnectionList) Representation() Representation { return RepresentationLegacy }

// Groups implements Connectivity.
func (l ConnectionList) Groups() []Group {
	groups := make([]Group, 0, len(l))
	for i, c := range l {
		from, to := ParseEndpoint(c.From), ParseEndpoint(c.To)
		from.Path = fmt.Sprintf("connections.%d.from", i)
		to.Path = fmt.Sprintf("connections.%d.to", i)
		groups = append(groups, Group{
			ID:        c.From + " -> " + c.To,
			Path:      fmt.Sprintf("connections.%d", i),
			Endpoints: []Endpoint{from, to},
		})
	}
	return groups
}

// Connectivity returns every wiring representation present in the document,
// nets first. Documents with neither return an empty slice.
func (d *Document) Connectivity() []Connectivity {
	var out []Connectivity
	if d.HasNets() {
		out = append(out, NetList(d.Nets))
	}
	if d.HasConnections() {
		out = append(out, ConnectionList(d.Connections))
	}
	return out
}

// ConnectedComponents returns the ids of components referenced by any
// non-virtual endpoint in any representation.
func (d *Document) ConnectedComponents() map[string]bool {
	seen := make(map[string]bool)
	for _, conn := range d.Connectivity() {
		for _, g := range conn.Groups() {
			for _, ep := range g.Endpoints {
				if !ep.Virtual && ep.Component != "" {
					seen[ep.Component] = true
				}
			}
		}
	}
	return seen
}
