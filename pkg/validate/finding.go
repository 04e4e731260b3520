package validate

import (
	"encoding/json"
	"fmt"
)

// Severity classifies a finding.
type Severity int

const (
	// SeverityError blocks use of the document.
	SeverityError Severity = iota
	// SeverityWarning should be reviewed but does not affect validity.
	SeverityWarning
	// SeverityInfo narrates what was checked.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Kind identifies the check that produced a finding.
type Kind string

// Finding kinds produced by this package.
const (
	KindSchema             Kind = "schema"
	KindSchemaSkipped      Kind = "schema_skipped"
	KindDecode             Kind = "decode"
	KindProgress           Kind = "progress"
	KindVersion            Kind = "version"
	KindDuplicateComponent Kind = "duplicate_component"
	KindMissingValue       Kind = "missing_value"
	KindMissingRating      Kind = "missing_rating"
	KindUnknownComponent   Kind = "unknown_component"
	KindUndeclaredPin      Kind = "undeclared_pin"
	KindSparseNet          Kind = "sparse_net"
	KindDuplicateNetID     Kind = "duplicate_net_id"
	KindDuplicateNetName   Kind = "duplicate_net_name"
	KindNonPositive        Kind = "non_positive"
	KindNegativeRating     Kind = "negative_rating"
	KindUnconnected        Kind = "unconnected"
	KindDualConnectivity   Kind = "dual_connectivity"
)

// Finding is one classified result of a check.
type Finding struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"` // dotted document path, e.g. "components.0.params.resistance_ohm"
}

func (f Finding) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Message + " (at " + f.Path + ")"
}

// Report groups findings by severity. Findings keep the order in which the
// checks produced them.
type Report struct {
	Errors   []Finding
	Warnings []Finding
	Info     []Finding
}

// Valid reports whether the report holds no errors.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Add files f under its severity.
func (r *Report) Add(f Finding) {
	switch f.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, f)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, f)
	default:
		r.Info = append(r.Info, f)
	}
}

// Errorf adds an error finding.
func (r *Report) Errorf(kind Kind, path, format string, args ...any) {
	r.Add(Finding{Severity: SeverityError, Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Warnf adds a warning finding.
func (r *Report) Warnf(kind Kind, path, format string, args ...any) {
	r.Add(Finding{Severity: SeverityWarning, Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Infof adds an info finding.
func (r *Report) Infof(kind Kind, path, format string, args ...any) {
	r.Add(Finding{Severity: SeverityInfo, Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Merge appends every finding of o to r.
func (r *Report) Merge(o Report) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
	r.Info = append(r.Info, o.Info...)
}

// Messages returns the message text of each finding with the given severity.
func (r *Report) Messages(s Severity) []string {
	var src []Finding
	switch s {
	case SeverityError:
		src = r.Errors
	case SeverityWarning:
		src = r.Warnings
	default:
		src = r.Info
	}
	out := make([]string, len(src))
	for i, f := range src {
		out[i] = f.Message
	}
	return out
}

// Find returns the findings of the given kind across all severities.
func (r *Report) Find(kind Kind) []Finding {
	var out []Finding
	for _, list := range [][]Finding{r.Errors, r.Warnings, r.Info} {
		for _, f := range list {
			if f.Kind == kind {
				out = append(out, f)
			}
		}
	}
	return out
}

type reportJSON struct {
	Valid    bool      `json:"valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
	Info     []Finding `json:"info"`
}

// MarshalJSON emits the three lists (never null) and the validity flag.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Valid:    r.Valid(),
		Errors:   nonNil(r.Errors),
		Warnings: nonNil(r.Warnings),
		Info:     nonNil(r.Info),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report{Errors: raw.Errors, Warnings: raw.Warnings, Info: raw.Info}
	return nil
}

func nonNil(f []Finding) []Finding {
	if f == nil {
		return []Finding{}
	}
	return f
}
