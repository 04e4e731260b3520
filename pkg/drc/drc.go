// Package drc runs advisory design-rule checks on a circuit document:
// decoupling capacitor placement, component spacing, power distribution,
// ground connectivity and the document's own EMI design rules.
//
// The checks produce a [validate.Report]. They never change whether a
// document is valid unless the caller merges the report into one that does.
package drc

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/observability"
	"github.com/matzehuels/circuitkit/pkg/units"
	"github.com/matzehuels/circuitkit/pkg/validate"
)

// Stage is the stage name reported to validation hooks.
const Stage = "drc"

// Finding kinds produced by this package.
const (
	KindDecoupling  validate.Kind = "decoupling"
	KindSpacing     validate.Kind = "spacing"
	KindPower       validate.Kind = "power_distribution"
	KindGround      validate.Kind = "ground"
	KindDesignRules validate.Kind = "design_rules"
	KindEMIStandard validate.Kind = "emi_standard"
)

// Check runs every design-rule check over doc.
func Check(ctx context.Context, doc *circuit.Document, rules Rules) validate.Report {
	start := time.Now()
	c := checker{doc: doc, rules: rules, parts: placeAll(doc)}

	c.decoupling()
	c.spacing()
	c.power()
	c.ground()
	c.designRules()

	observability.Validation().OnValidate(ctx, Stage, len(c.report.Errors), len(c.report.Warnings), time.Since(start))
	return c.report
}

type checker struct {
	doc    *circuit.Document
	rules  Rules
	parts  []part
	report validate.Report
}

// part is a component with its resolved position and capacitance.
type part struct {
	c           *circuit.Component
	path        string
	x, y        float64
	placed      bool
	capacitance float64
	hasCap      bool
}

func placeAll(doc *circuit.Document) []part {
	parts := make([]part, len(doc.Components))
	for i := range doc.Components {
		c := &doc.Components[i]
		p := part{c: c, path: fmt.Sprintf("components.%d", i)}
		p.x, p.y, p.placed = Position(c)
		p.capacitance, p.hasCap = Capacitance(c)
		parts[i] = p
	}
	return parts
}

func distance(a, b part) float64 {
	return math.Hypot(b.x-a.x, b.y-a.y)
}

// =============================================================================
// Checks
// =============================================================================

func (c *checker) decoupling() {
	c.report.Infof(validate.KindProgress, "", "Checking decoupling capacitors...")

	for _, ic := range c.parts {
		if ic.c.Type != circuit.TypeIC || !ic.placed {
			continue
		}

		nearby := 0
		hasBypass := false
		for _, cp := range c.parts {
			if cp.c.Type != circuit.TypeCapacitor || !cp.placed {
				continue
			}
			d := distance(ic, cp)
			if d >= c.rules.DecouplingRadiusMM {
				continue
			}
			nearby++
			if cp.hasCap && c.rules.isBypass(cp.capacitance) {
				hasBypass = true
				if d > c.rules.DecouplingMaxMM {
					c.report.Warnf(KindDecoupling, cp.path, "Decoupling cap %s for IC %s is %.1fmm away. Should be < %smm.",
						cp.c.ID, ic.c.ID, d, trim(c.rules.DecouplingMaxMM))
				}
			}
		}

		switch {
		case nearby == 0:
			c.report.Warnf(KindDecoupling, ic.path,
				"IC %s has no decoupling capacitor within %smm. Add 100nF capacitor within %smm of VCC pin.",
				ic.c.ID, trim(c.rules.DecouplingRadiusMM), trim(c.rules.DecouplingMaxMM))
		case !hasBypass:
			c.report.Warnf(KindDecoupling, ic.path, "IC %s should have 100nF ceramic capacitor nearby.", ic.c.ID)
		}
	}
}

func (c *checker) spacing() {
	c.report.Infof(validate.KindProgress, "", "Checking component spacing...")

	for i, a := range c.parts {
		if !a.placed {
			continue
		}
		for _, b := range c.parts[i+1:] {
			if !b.placed {
				continue
			}
			d := distance(a, b)
			minimum := c.rules.MinSpacing(a.c.Type, b.c.Type)
			if d < minimum {
				c.report.Warnf(KindSpacing, b.path, "Components %s and %s are only %.1fmm apart. Recommended minimum: %.1fmm",
					a.c.ID, b.c.ID, d, minimum)
			}
		}
	}
}

func (c *checker) power() {
	c.report.Infof(validate.KindProgress, "", "Checking power distribution...")

	var bulk, bypass bool
	for _, p := range c.parts {
		if p.c.Type != circuit.TypeCapacitor || !p.hasCap {
			continue
		}
		bulk = bulk || p.capacitance >= c.rules.BulkMinF
		bypass = bypass || c.rules.isBypass(p.capacitance)
	}
	if !bulk {
		c.report.Errorf(KindPower, "", "No bulk capacitor (≥%s) found in power supply. Add bulk capacitor at power input.",
			farads(c.rules.BulkMinF))
	}
	if !bypass {
		c.report.Warnf(KindPower, "", "No 100nF bypass capacitors found. Add 100nF ceramic capacitors for high-frequency filtering.")
	}

	var hasPower, hasGround bool
	for i := range c.doc.Nets {
		name := c.doc.Nets[i].DisplayName()
		hasPower = hasPower || c.rules.isPowerNet(name)
		hasGround = hasGround || c.rules.isGroundNet(name)
	}
	if !hasPower {
		c.report.Errorf(KindPower, "nets", "No power net (VCC/VDD) found in netlist.")
	}
	if !hasGround {
		c.report.Errorf(KindPower, "nets", "No ground net (GND) found in netlist.")
	}
}

func (c *checker) ground() {
	c.report.Infof(validate.KindProgress, "", "Checking ground connections...")

	idx := -1
	for i := range c.doc.Nets {
		if c.rules.isGroundNet(c.doc.Nets[i].DisplayName()) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	gnd := &c.doc.Nets[idx]
	path := fmt.Sprintf("nets.%d", idx)

	if len(gnd.Connections) < 2 {
		c.report.Errorf(KindGround, path,
			"Ground net has fewer than 2 connections. All components should be connected to ground.")
	}

	grounded := make(map[string]bool, len(gnd.Connections))
	for _, conn := range gnd.Connections {
		grounded[conn.Component] = true
	}
	for _, p := range c.parts {
		if p.c.Type == circuit.TypeIC && !grounded[p.c.ID] {
			c.report.Warnf(KindGround, p.path,
				"IC %s does not appear to be connected to ground. Verify ground connection.", p.c.ID)
		}
	}
}

func (c *checker) designRules() {
	c.report.Infof(validate.KindProgress, "", "Checking design rules...")

	rules := c.doc.DesignRules
	if rules == nil {
		c.report.Infof(KindDesignRules, "", "No design_rules section found. Consider adding EMI compliance specifications.")
		return
	}
	emi := rules.EMICompliance
	if emi == nil {
		return
	}
	if emi.Standard != nil && *emi.Standard != "" {
		c.report.Infof(KindEMIStandard, "design_rules.emi_compliance.standard", "Design targets %s compliance.", *emi.Standard)
	}
	var strategy string
	if emi.DecouplingStrategy != nil {
		strategy = *emi.DecouplingStrategy
	}
	if !strings.Contains(strategy, "100n") {
		c.report.Warnf(KindDesignRules, "design_rules.emi_compliance.decoupling_strategy",
			"Decoupling strategy should include 100nF capacitors.")
	}
}

// =============================================================================
// Component attributes
// =============================================================================

type model3D struct {
	Position *struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"position"`
}

// Position returns a component's board position: model_3d.position when it
// carries x and y, otherwise the first pin, by name, that has coordinates.
func Position(c *circuit.Component) (x, y float64, ok bool) {
	var m model3D
	if found, err := c.ExtraField("model_3d", &m); found && err == nil && m.Position != nil {
		if m.Position.X != nil && m.Position.Y != nil {
			return *m.Position.X, *m.Position.Y, true
		}
	}
	for _, name := range c.PinNames() {
		if x, y, ok := c.Pins[name].Position(); ok {
			return x, y, true
		}
	}
	return 0, 0, false
}

// Capacitance returns params.capacitance_f, or the value field parsed as an
// engineering literal such as "100nF".
func Capacitance(c *circuit.Component) (float64, bool) {
	if f, ok := c.Params.Float(circuit.ParamCapacitance); ok {
		return f, true
	}
	if c.Value == nil || c.Value.IsNumber() {
		return 0, false
	}
	f, err := units.ParseAs(c.Value.String(), units.Farad)
	if err != nil {
		return 0, false
	}
	return f, true
}

func trim(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func farads(f float64) string {
	switch {
	case f >= 1e-6:
		return trim(f*1e6) + "µF"
	case f >= 1e-9:
		return trim(f*1e9) + "nF"
	}
	return trim(f*1e12) + "pF"
}
