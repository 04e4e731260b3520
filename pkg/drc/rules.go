package drc

import (
	"sort"
	"strings"
)

// Rules holds the thresholds used by the design-rule checks. Distances are in
// millimetres and capacitances in farads.
type Rules struct {
	DecouplingRadiusMM float64 `toml:"decoupling_radius_mm"`
	DecouplingMaxMM    float64 `toml:"decoupling_max_mm"`
	BypassMinF         float64 `toml:"bypass_min_f"`
	BypassMaxF         float64 `toml:"bypass_max_f"`
	BulkMinF           float64 `toml:"bulk_min_f"`

	// Spacing maps a type pair, written "a,b" with a <= b, to its minimum
	// distance. Pairs not listed use DefaultSpacingMM.
	Spacing          map[string]float64 `toml:"spacing"`
	DefaultSpacingMM float64            `toml:"default_spacing_mm"`

	PowerNets  []string `toml:"power_nets"`
	GroundNets []string `toml:"ground_nets"`
}

// DefaultRules returns the standard EMI-oriented thresholds.
func DefaultRules() Rules {
	return Rules{
		DecouplingRadiusMM: 10,
		DecouplingMaxMM:    5,
		BypassMinF:         80e-9,
		BypassMaxF:         120e-9,
		BulkMinF:           10e-6,
		Spacing: map[string]float64{
			"ic,ic":        5,
			"connector,ic": 15,
			"ic,led":       5,
		},
		DefaultSpacingMM: 2,
		PowerNets:        []string{"VCC", "VDD", "V+", "+5V", "+3V3"},
		GroundNets:       []string{"GND", "VSS", "V-", "GROUND"},
	}
}

// MinSpacing returns the minimum distance between components of types a and b.
func (r Rules) MinSpacing(a, b string) float64 {
	if d, ok := r.Spacing[PairKey(a, b)]; ok {
		return d
	}
	return r.DefaultSpacingMM
}

// PairKey returns the Spacing key for a type pair, independent of order.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ",")
}

func (r Rules) isBypass(f float64) bool {
	return f >= r.BypassMinF && f <= r.BypassMaxF
}

func (r Rules) isPowerNet(name string) bool  { return containsFold(r.PowerNets, name) }
func (r Rules) isGroundNet(name string) bool { return containsFold(r.GroundNets, name) }

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
