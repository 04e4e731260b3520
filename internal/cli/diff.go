package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitkit/pkg/diff"
	"github.com/matzehuels/circuitkit/pkg/errors"
)

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		format  string
		asJSON  bool
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show the changes between two circuit documents",
		Long: `Compare two circuit documents component by component and net by net.

Components and nets are matched by id. Reordering a net's connections is not
a change. The exit status is 1 when the documents differ in components or
nets, 0 otherwise.`,
		Example: `  circuit diff v1.json v2.json
  circuit diff --json v1.json v2.json
  circuit diff --format cbor v1.json v2.json > changes.cbor`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				format = string(diff.FormatJSON)
			}
			if format != "" {
				if err := errors.ValidateFormat(format, string(diff.FormatJSON), string(diff.FormatCBOR)); err != nil {
					return err
				}
			}

			_, st, err := c.setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			before, err := st.Load(ctx, args[0])
			if err != nil {
				return err
			}
			after, err := st.Load(ctx, args[1])
			if err != nil {
				return err
			}
			cs := diff.Compute(before, after)
			prog.done(fmt.Sprintf("Compared %s and %s", args[0], args[1]))

			out := cmd.OutOrStdout()
			switch {
			case format != "":
				data, err := cs.Encode(diff.Format(format))
				if err != nil {
					return err
				}
				if _, err := out.Write(data); err != nil {
					return err
				}
			case summary:
				fmt.Fprintln(out, cs.Summary())
			default:
				newPrinter(out).changeset(cs)
			}

			if !cs.Empty() {
				return exitCode(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "machine-readable output format (json, cbor)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "shorthand for --format json")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a one-line summary")

	return cmd
}
