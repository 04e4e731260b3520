package schema

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Violation is one structural problem found in a document tree.
type Violation struct {
	Path    string // dotted path into the document, e.g. "components.0.type"; empty for the root
	Keyword string // schema keyword that failed, e.g. "required"
	Message string
}

// String formats the violation as "path: message", using "(root)" for the
// document root.
func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "(root)"
	}
	return path + ": " + v.Message
}

// Validate checks tree against the schema and returns every violation,
// ordered by path (array indices numerically) and then by keyword.
//
// tree is the generic form produced by encoding/json (map[string]any, []any,
// string, bool, nil, and float64 or json.Number).
func (s *Schema) Validate(tree any) []Violation {
	err := s.compiled.Validate(tree)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Message: err.Error()}}
	}

	var out []Violation
	collect(ve, &out)
	slices.SortStableFunc(out, func(a, b Violation) int {
		if c := comparePaths(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Keyword, b.Keyword)
	})
	return out
}

// collect flattens the error tree into violations. anyOf and oneOf failures
// are reported once at their own location rather than per branch.
func collect(ve *jsonschema.ValidationError, out *[]Violation) {
	switch k := ve.ErrorKind.(type) {
	case *kind.AnyOf, *kind.OneOf:
	case *kind.Required:
		for _, name := range k.Missing {
			*out = append(*out, Violation{
				Path:    join(ve.InstanceLocation, name),
				Keyword: "required",
				Message: "required property " + strconv.Quote(name) + " is missing",
			})
		}
		return
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			*out = append(*out, Violation{
				Path:    join(ve.InstanceLocation, name),
				Keyword: "additionalProperties",
				Message: "property " + strconv.Quote(name) + " is not allowed",
			})
		}
		return
	default:
		if len(ve.Causes) > 0 {
			for _, cause := range ve.Causes {
				collect(cause, out)
			}
			return
		}
	}

	var keyword string
	if kp := ve.ErrorKind.KeywordPath(); len(kp) > 0 {
		keyword = kp[len(kp)-1]
	}
	*out = append(*out, Violation{
		Path:    join(ve.InstanceLocation),
		Keyword: keyword,
		Message: ve.ErrorKind.LocalizedString(printer),
	})
}

func join(location []string, elems ...string) string {
	return strings.Join(append(slices.Clone(location), elems...), ".")
}

// comparePaths orders dotted paths segment by segment, comparing numeric
// segments as integers.
func comparePaths(a, b string) int {
	if a == b {
		return 0
	}
	as, bs := split(a), split(b)
	for i := range min(len(as), len(bs)) {
		if as[i] == bs[i] {
			continue
		}
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			return ai - bi
		}
		return strings.Compare(as[i], bs[i])
	}
	return len(as) - len(bs)
}

func split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
