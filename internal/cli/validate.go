package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitkit/pkg/drc"
	"github.com/matzehuels/circuitkit/pkg/store"
	"github.com/matzehuels/circuitkit/pkg/validate"
)

// validateOpts holds the flags of the validate command.
type validateOpts struct {
	strict  bool
	schema  string
	withDRC bool
	asJSON  bool
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a circuit document's structure and references",
		Long: `Validate a circuit document in two stages.

The schema stage checks required fields, types and enums. When it passes, the
semantic stage checks unique ids, net and connection references, declared
pins and the sign of physical parameters.

The exit status is 1 when the document has errors. Warnings never affect it.`,
		Example: `  circuit validate board.json
  circuit validate --strict --drc board.json
  circuit validate --json board.json | jq .errors`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := c.setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("strict") {
				opts.strict = cfg.Validate.Strict
			}
			if opts.schema == "" {
				opts.schema = cfg.Validate.Schema
			}
			return c.runValidate(cmd, st, args[0], opts, cfg.DRC)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "warn about components that are not connected")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "schema file overriding the built-in schema")
	cmd.Flags().BoolVar(&opts.withDRC, "drc", false, "also run the design-rule checks")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")

	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, st *store.Store, path string, opts validateOpts, rules drc.Rules) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	tree, err := st.LoadTree(ctx, path)
	if err != nil {
		return err
	}

	doc, report := validate.Run(ctx, tree, validate.Options{
		SchemaPath: opts.schema,
		Strict:     opts.strict,
		Logger:     logger,
	})
	if opts.withDRC && doc != nil {
		report.Merge(drc.Check(ctx, doc, rules))
	}
	prog.done("Validated " + path)

	if err := c.printReport(cmd, path, report, opts.asJSON); err != nil {
		return err
	}
	if !report.Valid() {
		return exitCode(1)
	}
	return nil
}

// printReport writes report either as indented JSON or as styled lines.
func (c *CLI) printReport(cmd *cobra.Command, subject string, report validate.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	p := newPrinter(cmd.OutOrStdout())
	p.report(report, c.verbose())
	p.verdict(subject, report)
	return nil
}

// drcCommand creates the drc command.
func (c *CLI) drcCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "drc <file>",
		Short: "Run advisory design-rule checks",
		Long: `Run advisory design-rule checks on a circuit document: decoupling
capacitors near ICs, component spacing, power distribution, ground
connectivity and the EMI section of design_rules.

Thresholds come from the [drc] section of the config file. The exit status is
1 when a check reports an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := c.setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			doc, err := st.Load(ctx, args[0])
			if err != nil {
				return err
			}
			report := drc.Check(ctx, doc, cfg.DRC)

			if err := c.printReport(cmd, args[0], report, asJSON); err != nil {
				return err
			}
			if !report.Valid() {
				return exitCode(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}
