package units

import (
	"math"
	"testing"

	"github.com/matzehuels/circuitkit/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		unit  string
	}{
		{"100nF", 100e-9, Farad},
		{"10uF", 10e-6, Farad},
		{"10µF", 10e-6, Farad},
		{"4.7k", 4700, NoUnits},
		{"4k7", 4700, NoUnits},
		{"330R", 330, Ohm},
		{"4R7", 4.7, Ohm},
		{"10kohm", 10000, Ohm},
		{"1 MΩ", 1e6, Ohm},
		{"16V", 16, Volt},
		{"0.25W", 0.25, Watt},
		{"20mA", 0.02, Ampere},
		{"16MHz", 16e6, Hertz},
		{"10mH", 0.01, Henry},
		{"1e-7", 1e-7, NoUnits},
		{"-5 V", -5, Volt},
		{".5", 0.5, NoUnits},
		{"220", 220, NoUnits},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if math.Abs(q.Value-tt.value) > math.Abs(tt.value)*1e-9 {
				t.Errorf("Parse(%q) value = %g, want %g", tt.in, q.Value, tt.value)
			}
			if q.Unit != tt.unit {
				t.Errorf("Parse(%q) unit = %q, want %q", tt.in, q.Unit, tt.unit)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "10 x", "5V extra", "4.7k7", "10 5", "1e", "10xF", "5%"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			if err == nil {
				t.Fatalf("Parse(%q) error = nil", in)
			}
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Parse(%q) code = %s, want INVALID_FORMAT", in, errors.GetCode(err))
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("5V extra")
	pos, ok := errors.GetPosition(err)
	if !ok {
		t.Fatalf("no position on %v", err)
	}
	if pos.Line != 1 || pos.Column != 4 {
		t.Errorf("position = %s, want line 1, column 4", pos)
	}
}

func TestParseAs(t *testing.T) {
	if v, err := ParseAs("100nF", Farad); err != nil || math.Abs(v-1e-7) > 1e-16 {
		t.Errorf("ParseAs(100nF) = %g, %v", v, err)
	}
	if v, err := ParseAs("47", Farad); err != nil || v != 47 {
		t.Errorf("ParseAs(47) = %g, %v", v, err)
	}
	if _, err := ParseAs("16V", Farad); err == nil {
		t.Error("ParseAs(16V, F) should fail")
	}
}

func TestQuantityString(t *testing.T) {
	if got := (Quantity{Value: 4700, Unit: Ohm}).String(); got != "4700Ω" {
		t.Errorf("String() = %q", got)
	}
}
