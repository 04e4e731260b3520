package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/circuitkit/pkg/diff"
	"github.com/matzehuels/circuitkit/pkg/validate"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleAdded   = lipgloss.NewStyle().Foreground(colorGreen)
	styleRemoved = lipgloss.NewStyle().Foreground(colorRed)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconAdded   = "+"
	iconRemoved = "-"
)

// =============================================================================
// Status Output
// =============================================================================

// printer writes styled lines to a command's output.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p printer) success(format string, args ...any) {
	p.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (p printer) fail(format string, args ...any) {
	p.line(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.line(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

func (p printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (p printer) title(s string) {
	p.line(StyleTitle.Render(s))
}

// keyValue prints a labeled value.
func (p printer) keyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	p.line(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Reports
// =============================================================================

// report prints findings grouped by severity. Info findings are only shown
// when showInfo is set.
func (p printer) report(r validate.Report, showInfo bool) {
	for _, f := range r.Errors {
		p.fail("%s", f.Message)
		if f.Path != "" {
			p.detail("at %s", f.Path)
		}
	}
	for _, f := range r.Warnings {
		p.warning("%s", f.Message)
		if f.Path != "" {
			p.detail("at %s", f.Path)
		}
	}
	if showInfo {
		for _, f := range r.Info {
			p.info("%s", f.Message)
		}
	}
}

// verdict prints the one-line outcome of a report.
func (p printer) verdict(subject string, r validate.Report) {
	switch {
	case !r.Valid():
		p.fail("%s has %s and %s", subject, plural(len(r.Errors), "error"), plural(len(r.Warnings), "warning"))
	case len(r.Warnings) > 0:
		p.success("%s is valid with %s", subject, plural(len(r.Warnings), "warning"))
	default:
		p.success("%s is valid", subject)
	}
}

// =============================================================================
// Changesets
// =============================================================================

// changeset prints a human-readable rendering of cs.
func (p printer) changeset(cs *diff.Changeset) {
	if cs.Empty() && len(cs.Metadata) == 0 {
		p.success("No differences")
		return
	}

	if len(cs.Metadata) > 0 {
		p.title("Metadata")
		for _, c := range cs.Metadata {
			p.detail("%s", c)
		}
	}
	if len(cs.Added)+len(cs.Removed) > 0 {
		p.title("Components")
		for _, c := range cs.Added {
			p.line("  " + styleAdded.Render(iconAdded+" "+c.ID) + " " + StyleDim.Render(c.Type))
		}
		for _, c := range cs.Removed {
			p.line("  " + styleRemoved.Render(iconRemoved+" "+c.ID) + " " + StyleDim.Render(c.Type))
		}
	}
	if len(cs.Modified) > 0 {
		p.title("Modified")
		p.line(modifiedTable(cs.Modified))
	}
	if len(cs.NetsChanged) > 0 {
		p.title("Nets")
		for _, id := range cs.NetsChanged {
			p.detail("%s", id)
		}
	}
	p.info("%s", cs.Summary())
}

// modifiedTable renders one row per changed field.
func modifiedTable(mods []diff.ComponentChange) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("COMPONENT", "FIELD", "OLD", "NEW").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return styleCell
		})

	for _, m := range mods {
		for i, c := range m.Changes {
			id := ""
			if i == 0 {
				id = m.ID
			}
			t.Row(id, c.Field, diff.Display(c.Old), diff.Display(c.New))
		}
	}
	return t.Render()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
