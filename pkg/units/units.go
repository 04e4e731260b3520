// Package units parses engineering value literals such as "100nF", "4.7k",
// "330R", "4k7" or "16 V" as they appear in component value fields.
//
// A literal is a number followed by an optional SI prefix and an optional
// unit symbol. RKM notation is accepted: the prefix (or R for ohms) may stand
// in for the decimal point, so "4k7" is 4700 and "4R7" is 4.7 ohms.
package units

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/circuitkit/pkg/errors"
)

// Unit symbols returned in Quantity.Unit.
const (
	Farad   = "F"
	Henry   = "H"
	Ohm     = "Ω"
	Volt    = "V"
	Watt    = "W"
	Ampere  = "A"
	Hertz   = "Hz"
	NoUnits = ""
)

// Quantity is a parsed value in base units.
type Quantity struct {
	Value float64
	Unit  string // one of the unit constants; NoUnits when the literal had none
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + q.Unit
}

var valueLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Number", Pattern: `[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Suffix", Pattern: `[a-zA-ZµμΩ]+`},
})

// literal is the grammar of a value: Number Suffix? Number?
// The trailing number only appears in RKM notation.
type literal struct {
	Number   string `parser:"@Number"`
	Suffix   string `parser:"@Suffix?"`
	Fraction string `parser:"@Number?"`
}

var parser = participle.MustBuild[literal](
	participle.Lexer(valueLexer),
	participle.Elide("Whitespace"),
)

// Longest names first so "Hz" wins over "H" and "ohms" over "ohm".
var unitNames = []struct{ name, unit string }{
	{"ohms", Ohm}, {"ohm", Ohm}, {"Ω", Ohm},
	{"Hz", Hertz},
	{"F", Farad}, {"H", Henry}, {"V", Volt}, {"W", Watt}, {"A", Ampere},
	{"R", Ohm},
}

// prefixes maps SI prefixes to powers of ten. Scaling is applied to the
// decimal exponent so "10uF" parses to exactly 1e-5.
var prefixes = map[string]int{
	"p": -12,
	"n": -9,
	"u": -6, "µ": -6, "μ": -6,
	"m": -3,
	"k": 3, "K": 3,
	"M": 6,
	"G": 9,
}

// Parse parses an engineering value literal.
func Parse(s string) (Quantity, error) {
	lit, err := parser.ParseString("", s)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return Quantity{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid value %q", s).
				At(errors.Position{Offset: int64(pos.Offset), Line: pos.Line, Column: pos.Column})
		}
		return Quantity{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid value %q", s)
	}

	prefix, unit := splitSuffix(lit.Suffix)
	exp, ok := prefixes[prefix]
	if prefix != "" && !ok {
		return Quantity{}, errors.New(errors.ErrCodeInvalidFormat, "invalid value %q: unknown suffix %q", s, lit.Suffix)
	}

	number := lit.Number
	if lit.Fraction != "" {
		if lit.Suffix == "" || !isDigits(lit.Number) || !isDigits(lit.Fraction) {
			return Quantity{}, errors.New(errors.ErrCodeInvalidFormat, "invalid value %q", s)
		}
		number = lit.Number + "." + lit.Fraction
	}

	f, err := scaled(number, exp)
	if err != nil {
		return Quantity{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid value %q", s)
	}
	return Quantity{Value: f, Unit: unit}, nil
}

// scaled parses a decimal literal multiplied by 10^exp.
func scaled(number string, exp int) (float64, error) {
	mantissa, e, found := strings.Cut(strings.ToLower(number), "e")
	if found {
		n, err := strconv.Atoi(e)
		if err != nil {
			return 0, err
		}
		exp += n
	}
	return strconv.ParseFloat(mantissa+"e"+strconv.Itoa(exp), 64)
}

// ParseAs parses s and requires its unit to be unit or absent. The value is
// returned in base units.
func ParseAs(s, unit string) (float64, error) {
	q, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if q.Unit != NoUnits && q.Unit != unit {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "value %q has unit %s, want %s", s, q.Unit, unit)
	}
	return q.Value, nil
}

// splitSuffix separates a suffix such as "nF" or "kohm" into its SI prefix
// and unit symbol.
func splitSuffix(suffix string) (prefix, unit string) {
	for _, u := range unitNames {
		if strings.HasSuffix(suffix, u.name) {
			return strings.TrimSuffix(suffix, u.name), u.unit
		}
	}
	return suffix, NoUnits
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
