package validate

import (
	"fmt"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/schema"
)

// SemanticOptions tunes the semantic checks.
type SemanticOptions struct {
	// Strict additionally warns about components that no net or connection
	// references. Power supplies and grounds are exempt.
	Strict bool
}

// Semantic runs the cross-reference and domain checks over doc. It assumes
// the document passed structural validation and never mutates it.
func Semantic(doc *circuit.Document, opts SemanticOptions) Report {
	var r Report
	s := semantic{doc: doc, report: &r}

	s.checkVersion()
	s.checkComponents()
	s.checkConnectivity()
	s.checkValues()
	s.checkLegacyPins()
	if opts.Strict {
		s.checkUnconnected()
	}
	return r
}

type semantic struct {
	doc    *circuit.Document
	report *Report

	// legacyPins holds legacy endpoints whose component exists but does not
	// declare the pin. They are reported after the value checks.
	legacyPins []circuit.Endpoint
}

func componentPath(i int) string { return fmt.Sprintf("components.%d", i) }

func (s *semantic) checkVersion() {
	if s.doc.Version == "" {
		return
	}
	ok, err := schema.IsCompatible(s.doc.Version)
	switch {
	case err != nil:
		s.report.Warnf(KindVersion, "version", "Document version %q is not a semantic version", s.doc.Version)
	case !ok:
		s.report.Warnf(KindVersion, "version", "Document version %s is outside the supported range %s",
			s.doc.Version, schema.SupportedVersions)
	default:
		s.report.Infof(KindVersion, "version", "Document version %s", s.doc.Version)
	}
}

// =============================================================================
// Components
// =============================================================================

func (s *semantic) checkComponents() {
	s.report.Infof(KindProgress, "", "Validating components...")

	seen := make(map[string]bool, len(s.doc.Components))
	for i := range s.doc.Components {
		c := &s.doc.Components[i]
		path := componentPath(i)
		if seen[c.ID] {
			s.report.Errorf(KindDuplicateComponent, path+".id", "Duplicate component ID: %s", c.ID)
		}
		seen[c.ID] = true

		switch c.Type {
		case circuit.TypeResistor:
			s.requireAny(c, path, KindMissingValue, "Resistor %s has no value specified",
				c.Value, circuit.ParamResistance)
			s.requireAny(c, path, KindMissingRating, "Resistor %s has no power rating specified",
				c.Power, circuit.ParamPowerRating)
		case circuit.TypeCapacitor:
			s.requireAny(c, path, KindMissingValue, "Capacitor %s has no value specified",
				c.Value, circuit.ParamCapacitance)
			s.requireAny(c, path, KindMissingRating, "Capacitor %s has no voltage rating specified",
				nil, circuit.ParamVoltageRating)
		case circuit.TypeLED:
			s.requireAny(c, path, KindMissingValue, "LED %s has no color specified",
				c.Color, circuit.ParamColor)
			s.requireAny(c, path, KindMissingRating, "LED %s has no forward voltage specified",
				c.ForwardVoltage, circuit.ParamForwardVoltage)
		}
	}

	s.report.Infof(KindProgress, "", "Found %d components", len(s.doc.Components))
}

// requireAny warns unless field or params[key] holds a usable value.
func (s *semantic) requireAny(c *circuit.Component, path string, kind Kind, format string, field *circuit.Scalar, key string) {
	if field != nil && field.Truthy() {
		return
	}
	if c.Params.Truthy(key) {
		return
	}
	s.report.Warnf(kind, path, format, c.ID)
}

// =============================================================================
// Connectivity
// =============================================================================

// checkNetIdentity flags duplicate net ids (error) and duplicate display
// names (warning). A net whose id is already a duplicate is not reported a
// second time for its name.
func (s *semantic) checkNetIdentity() {
	ids := make(map[string]bool, len(s.doc.Nets))
	names := make(map[string]bool, len(s.doc.Nets))
	for i := range s.doc.Nets {
		n := &s.doc.Nets[i]
		path := fmt.Sprintf("nets.%d", i)
		if ids[n.ID] {
			s.report.Errorf(KindDuplicateNetID, path+".id", "Duplicate net ID: %s", n.ID)
			continue
		}
		ids[n.ID] = true

		name := n.DisplayName()
		if names[name] {
			s.report.Warnf(KindDuplicateNetName, path, "Duplicate net name: %s", name)
		}
		names[name] = true
	}
}

// checkConnectivity runs the referential checks over every wiring
// representation in the document: legacy connections first, then nets.
func (s *semantic) checkConnectivity() {
	reps := s.doc.Connectivity()
	if len(reps) > 1 {
		s.report.Infof(KindDualConnectivity, "",
			"Document declares both nets and legacy connections; they are checked independently")
	}
	for _, want := range []circuit.Representation{circuit.RepresentationLegacy, circuit.RepresentationNets} {
		for _, conn := range reps {
			if conn.Representation() == want {
				s.checkRepresentation(conn)
			}
		}
	}
}

func (s *semantic) checkRepresentation(conn circuit.Connectivity) {
	rep := conn.Representation()
	groups := conn.Groups()
	s.report.Infof(KindProgress, "", "Validating %s...", rep)
	if rep == circuit.RepresentationNets {
		s.checkNetIdentity()
	}

	for _, g := range groups {
		subject := "Connection"
		if rep == circuit.RepresentationNets {
			subject = "Net " + g.ID
			if len(g.Endpoints) < 2 {
				s.report.Warnf(KindSparseNet, g.Path, "Net %s has fewer than 2 connections", g.ID)
			}
		}

		for _, ep := range g.Endpoints {
			if ep.Virtual {
				continue
			}
			c, ok := s.doc.Component(ep.Component)
			if !ok {
				s.report.Errorf(KindUnknownComponent, ep.Path, "%s references unknown component: %s", subject, ep.Component)
				continue
			}
			if rep == circuit.RepresentationNets {
				if !c.HasPin(ep.Pin) {
					s.report.Errorf(KindUndeclaredPin, ep.Path, "Net %s references undeclared pin %s on component %s",
						g.ID, ep.Pin, ep.Component)
				}
				continue
			}
			if ep.Pin != "" && !c.HasPin(ep.Pin) {
				s.legacyPins = append(s.legacyPins, ep)
			}
		}
	}

	s.report.Infof(KindProgress, "", "Found %d %s", len(groups), rep)
}

// =============================================================================
// Values
// =============================================================================

func (s *semantic) checkValues() {
	s.report.Infof(KindProgress, "", "Validating component values...")

	for i := range s.doc.Components {
		c := &s.doc.Components[i]
		path := componentPath(i) + ".params."

		for _, key := range []string{circuit.ParamResistance, circuit.ParamCapacitance} {
			if v, ok := c.Params.Float(key); ok && v <= 0 {
				s.report.Errorf(KindNonPositive, path+key, "Component %s: %s must be positive, got %s",
					c.ID, quantity(key), formatNumber(v))
			}
		}
		if v, ok := c.Params.Float(circuit.ParamVoltageRating); ok && v < 0 {
			s.report.Warnf(KindNegativeRating, path+circuit.ParamVoltageRating,
				"Component %s has negative voltage rating: %s", c.ID, formatNumber(v))
		}
	}
}

// checkLegacyPins warns about legacy endpoints naming a pin their component
// does not declare. The legacy format predates pin declarations, so this is
// advisory only.
func (s *semantic) checkLegacyPins() {
	for _, ep := range s.legacyPins {
		s.report.Warnf(KindUndeclaredPin, ep.Path, "Connection uses undeclared pin: %s", ep)
	}
}

func quantity(key string) string {
	switch key {
	case circuit.ParamResistance:
		return "resistance"
	case circuit.ParamCapacitance:
		return "capacitance"
	}
	return key
}

func formatNumber(f float64) string {
	return circuit.NumberValue(f).String()
}

func (s *semantic) checkUnconnected() {
	connected := s.doc.ConnectedComponents()
	for i := range s.doc.Components {
		c := &s.doc.Components[i]
		if c.Type == circuit.TypePowerSupply || c.Type == circuit.TypeGround {
			continue
		}
		if !connected[c.ID] {
			s.report.Warnf(KindUnconnected, componentPath(i), "Component %s is not connected to any net", c.ID)
		}
	}
}
