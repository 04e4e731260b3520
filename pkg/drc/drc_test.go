package drc

import (
	"context"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/validate"
)

const board = `{"version": "1.0", "metadata": {"name": "mcu"},
	"components": [
		{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 0, "y": 0}}},
		{"id": "C1", "type": "capacitor", "params": {"capacitance_f": 1e-7}, "pins": {"1": {"x": 3, "y": 0}}},
		{"id": "C2", "type": "capacitor", "value": "10uF", "pins": {"1": {"x": 8, "y": 0}}}
	],
	"nets": [
		{"id": "N1", "name": "VCC", "connections": [{"component": "U1", "pin": "8"}, {"component": "C1", "pin": "1"}]},
		{"id": "N2", "name": "gnd", "connections": [{"component": "U1", "pin": "4"}, {"component": "C2", "pin": "2"}]}
	],
	"design_rules": {"emi_compliance": {"standard": "FCC Part 15", "decoupling_strategy": "100nF per VCC pin"}}}`

func decode(t *testing.T, doc string) *circuit.Document {
	t.Helper()
	d, err := circuit.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return d
}

// withComponents swaps the components array of the board fixture.
func withComponents(components string) string {
	start := strings.Index(board, `"components": [`)
	end := strings.Index(board, `"nets"`)
	return board[:start] + `"components": [` + components + `],` + "\n\t" + board[end:]
}

func check(t *testing.T, doc string) validate.Report {
	t.Helper()
	return Check(context.Background(), decode(t, doc), DefaultRules())
}

func TestCheckCleanBoard(t *testing.T) {
	r := check(t, board)
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Fatalf("errors = %v, warnings = %v", r.Errors, r.Warnings)
	}
	if !slices.Contains(r.Messages(validate.SeverityInfo), "Design targets FCC Part 15 compliance.") {
		t.Errorf("info = %v", r.Messages(validate.SeverityInfo))
	}
	if got := len(r.Find(validate.KindProgress)); got != 5 {
		t.Errorf("progress findings = %d, want 5", got)
	}
}

func TestCheckDecoupling(t *testing.T) {
	tests := []struct {
		name       string
		components string
		want       string
	}{
		{
			name: "NoneNearby",
			components: `{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 0, "y": 0}}},
				{"id": "C1", "type": "capacitor", "params": {"capacitance_f": 1e-7}, "pins": {"1": {"x": 50, "y": 0}}},
				{"id": "C2", "type": "capacitor", "value": "10uF", "pins": {"1": {"x": 60, "y": 0}}}`,
			want: "IC U1 has no decoupling capacitor within 10mm. Add 100nF capacitor within 5mm of VCC pin.",
		},
		{
			name: "BypassTooFar",
			components: `{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 0, "y": 0}}},
				{"id": "C1", "type": "capacitor", "params": {"capacitance_f": 1e-7}, "pins": {"1": {"x": 7, "y": 0}}},
				{"id": "C2", "type": "capacitor", "value": "10uF", "pins": {"1": {"x": 30, "y": 0}}}`,
			want: "Decoupling cap C1 for IC U1 is 7.0mm away. Should be < 5mm.",
		},
		{
			name: "OnlyBulkNearby",
			components: `{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 0, "y": 0}}},
				{"id": "C1", "type": "capacitor", "params": {"capacitance_f": 1e-7}, "pins": {"1": {"x": 40, "y": 0}}},
				{"id": "C2", "type": "capacitor", "value": "10uF", "pins": {"1": {"x": 4, "y": 0}}}`,
			want: "IC U1 should have 100nF ceramic capacitor nearby.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := check(t, withComponents(tt.components))
			got := r.Find(KindDecoupling)
			if len(got) != 1 || got[0].Message != tt.want {
				t.Errorf("decoupling findings = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckUnplacedICIsSkipped(t *testing.T) {
	r := check(t, withComponents(`{"id": "U1", "type": "ic"},
		{"id": "C1", "type": "capacitor", "params": {"capacitance_f": 1e-7}},
		{"id": "C2", "type": "capacitor", "params": {"capacitance_f": 1e-5}}`))
	if got := r.Find(KindDecoupling); len(got) != 0 {
		t.Errorf("decoupling findings = %v", got)
	}
	if got := r.Find(KindSpacing); len(got) != 0 {
		t.Errorf("spacing findings = %v", got)
	}
}

func TestCheckSpacing(t *testing.T) {
	r := check(t, withComponents(`{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 0, "y": 0}}},
		{"id": "U2", "type": "ic", "model_3d": {"position": {"x": 0, "y": 3}}},
		{"id": "J1", "type": "connector", "model_3d": {"position": {"x": 12, "y": 0}}},
		{"id": "C1", "type": "capacitor", "params": {"capacitance_f": 1e-7}, "pins": {"1": {"x": 1, "y": 1}}},
		{"id": "C2", "type": "capacitor", "params": {"capacitance_f": 1e-5}, "pins": {"1": {"x": 40, "y": 40}}}`))

	var got []string
	for _, f := range r.Find(KindSpacing) {
		got = append(got, f.Message)
	}
	want := []string{
		"Components U1 and U2 are only 3.0mm apart. Recommended minimum: 5.0mm",
		"Components U1 and J1 are only 12.0mm apart. Recommended minimum: 15.0mm",
		"Components U1 and C1 are only 1.4mm apart. Recommended minimum: 2.0mm",
		"Components U2 and J1 are only 12.4mm apart. Recommended minimum: 15.0mm",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("spacing =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCheckPowerDistribution(t *testing.T) {
	r := check(t, `{"version": "1.0", "metadata": {}, "components": [
		{"id": "R1", "type": "resistor"},
		{"id": "C1", "type": "capacitor", "value": "1uF"}]}`)

	errs := r.Messages(validate.SeverityError)
	want := []string{
		"No bulk capacitor (≥10µF) found in power supply. Add bulk capacitor at power input.",
		"No power net (VCC/VDD) found in netlist.",
		"No ground net (GND) found in netlist.",
	}
	if strings.Join(errs, "|") != strings.Join(want, "|") {
		t.Errorf("errors = %q\nwant %q", errs, want)
	}
	if got := r.Find(KindPower); len(got) != 4 {
		t.Errorf("power findings = %v, want 3 errors and 1 warning", got)
	}
	if !slices.Contains(r.Messages(validate.SeverityInfo),
		"No design_rules section found. Consider adding EMI compliance specifications.") {
		t.Errorf("info = %v", r.Messages(validate.SeverityInfo))
	}
}

func TestCheckGround(t *testing.T) {
	doc := strings.Replace(board,
		`{"id": "N2", "name": "gnd", "connections": [{"component": "U1", "pin": "4"}, {"component": "C2", "pin": "2"}]}`,
		`{"id": "N2", "name": "GND", "connections": [{"component": "C2", "pin": "2"}]}`, 1)
	r := check(t, doc)

	got := r.Find(KindGround)
	if len(got) != 2 {
		t.Fatalf("ground findings = %v", got)
	}
	if got[0].Severity != validate.SeverityError || got[0].Path != "nets.1" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Severity != validate.SeverityWarning || !strings.Contains(got[1].Message, "IC U1") {
		t.Errorf("second = %+v", got[1])
	}
}

func TestCheckDesignRules(t *testing.T) {
	doc := strings.Replace(board, `"decoupling_strategy": "100nF per VCC pin"`, `"decoupling_strategy": "bulk only"`, 1)
	r := check(t, doc)
	got := r.Find(KindDesignRules)
	if len(got) != 1 || got[0].Message != "Decoupling strategy should include 100nF capacitors." {
		t.Errorf("design rule findings = %v", got)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name      string
		component string
		x, y      float64
		ok        bool
	}{
		{"Model3D", `{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 1, "y": 2}}, "pins": {"1": {"x": 9, "y": 9}}}`, 1, 2, true},
		{"Model3DIncomplete", `{"id": "U1", "type": "ic", "model_3d": {"position": {"x": 1}}, "pins": {"b": {"x": 5, "y": 6}}}`, 5, 6, true},
		{"FirstPinByName", `{"id": "U1", "type": "ic", "pins": {"b": {"x": 5, "y": 6}, "a": {"x": 3, "y": 4}}}`, 3, 4, true},
		{"SkipsUnplacedPins", `{"id": "U1", "type": "ic", "pins": {"a": {"x": 3}, "b": {"x": 5, "y": 6}}}`, 5, 6, true},
		{"Model3DArray", `{"id": "U1", "type": "ic", "model_3d": {"position": [1, 2]}}`, 0, 0, false},
		{"Unplaced", `{"id": "U1", "type": "ic"}`, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decode(t, `{"version": "1.0", "metadata": {}, "components": [`+tt.component+`]}`)
			x, y, ok := Position(&d.Components[0])
			if x != tt.x || y != tt.y || ok != tt.ok {
				t.Errorf("Position() = (%g, %g, %v), want (%g, %g, %v)", x, y, ok, tt.x, tt.y, tt.ok)
			}
		})
	}
}

func TestCapacitance(t *testing.T) {
	tests := []struct {
		name      string
		component string
		want      float64
		ok        bool
	}{
		{"Params", `{"id": "C1", "type": "capacitor", "value": "1uF", "params": {"capacitance_f": 1e-7}}`, 1e-7, true},
		{"ValueLiteral", `{"id": "C1", "type": "capacitor", "value": "100nF"}`, 1e-7, true},
		{"ValueWrongUnit", `{"id": "C1", "type": "capacitor", "value": "16V"}`, 0, false},
		{"NumericValueIgnored", `{"id": "C1", "type": "capacitor", "value": 100}`, 0, false},
		{"Absent", `{"id": "C1", "type": "capacitor"}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decode(t, `{"version": "1.0", "metadata": {}, "components": [`+tt.component+`]}`)
			got, ok := Capacitance(&d.Components[0])
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-15 {
				t.Errorf("Capacitance() = (%g, %v), want (%g, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRules(t *testing.T) {
	r := DefaultRules()
	if got := r.MinSpacing("ic", "connector"); got != 15 {
		t.Errorf("MinSpacing(ic, connector) = %g", got)
	}
	if got := r.MinSpacing("led", "ic"); got != 5 {
		t.Errorf("MinSpacing(led, ic) = %g", got)
	}
	if got := r.MinSpacing("resistor", "capacitor"); got != 2 {
		t.Errorf("MinSpacing(resistor, capacitor) = %g", got)
	}
	if PairKey("ic", "connector") != "connector,ic" {
		t.Errorf("PairKey = %q", PairKey("ic", "connector"))
	}
	if !r.isGroundNet("Ground") || r.isPowerNet("GND") {
		t.Error("net name classification is wrong")
	}
}
