package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/errors"
	"github.com/matzehuels/circuitkit/pkg/store"
	"github.com/matzehuels/circuitkit/pkg/validate"
)

// =============================================================================
// fmt
// =============================================================================

// fmtOpts holds the flags of the fmt command.
type fmtOpts struct {
	noBackup bool
	lock     bool
	check    bool
	validate bool
}

// fmtCommand creates the fmt command.
func (c *CLI) fmtCommand() *cobra.Command {
	var opts fmtOpts

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a document in canonical form",
		Long: `Rewrite a circuit document with sorted keys and two-space indentation.

The write is atomic: the new content goes to a temporary file that is synced
and renamed over the target. Unless --no-backup is given, the previous content
is kept at <file>.backup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := c.setup()
			if err != nil {
				return err
			}
			path := args[0]
			run := func(ctx context.Context) error {
				return c.format(ctx, cmd, st, path, opts)
			}
			if opts.lock {
				return st.WithLock(cmd.Context(), path, run)
			}
			return run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&opts.noBackup, "no-backup", false, "do not keep a backup of the previous content")
	cmd.Flags().BoolVar(&opts.lock, "lock", false, "hold the document lock while rewriting")
	cmd.Flags().BoolVar(&opts.check, "check", false, "only report whether the file is formatted")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "refuse to save a document with semantic errors")

	return cmd
}

func (c *CLI) format(ctx context.Context, cmd *cobra.Command, st *store.Store, path string, opts fmtOpts) error {
	p := newPrinter(cmd.OutOrStdout())
	prog := newProgress(loggerFromContext(ctx))

	raw, err := st.ReadRaw(ctx, path)
	if err != nil {
		return err
	}
	doc, err := st.Load(ctx, path)
	if err != nil {
		return err
	}
	want, err := circuit.Encode(doc)
	if err != nil {
		return err
	}

	if bytes.Equal(raw, want) {
		p.success("%s is already formatted", path)
		return nil
	}
	if opts.check {
		p.fail("%s is not formatted", path)
		return exitCode(1)
	}

	var saveOpts store.SaveOptions
	if opts.noBackup {
		backup := false
		saveOpts.Backup = &backup
	}
	if opts.validate {
		saveOpts.Validate = semanticCheck
	}
	if err := st.Save(ctx, path, doc, saveOpts); err != nil {
		return err
	}
	prog.done("Formatted " + path)

	p.success("Formatted %s", path)
	if !opts.noBackup && st.HasBackup(path) {
		p.detail("Backup: %s", st.BackupPath(path))
	}
	return nil
}

// semanticCheck rejects documents with semantic errors.
func semanticCheck(d *circuit.Document) error {
	r := validate.Semantic(d, validate.SemanticOptions{})
	if r.Valid() {
		return nil
	}
	msgs := r.Messages(validate.SeverityError)
	return fmt.Errorf("%s: %s", plural(len(msgs), "semantic error"), strings.Join(msgs, "; "))
}

// =============================================================================
// hash
// =============================================================================

// hashCommand creates the hash command.
func (c *CLI) hashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the SHA-256 digest of documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := c.setup()
			if err != nil {
				return err
			}
			for _, path := range args {
				digest, err := st.ComputeHash(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", digest, path)
			}
			return nil
		},
	}
}

// =============================================================================
// verify
// =============================================================================

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var expected string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that a document exists and parses",
		Long: `Check that a document exists, is readable and parses as JSON.

With --sha256 the file's digest must also match. The exit status is 1 when
any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := c.setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			path := args[0]
			p := newPrinter(cmd.OutOrStdout())

			if !st.VerifyIntegrity(ctx, path) {
				p.fail("%s is missing, unreadable or not valid JSON", path)
				if _, err := st.LoadTree(ctx, path); err != nil {
					p.detail("%s", errors.UserMessage(err))
				}
				return exitCode(1)
			}
			if expected != "" {
				digest, err := st.ComputeHash(ctx, path)
				if err != nil {
					return err
				}
				if !strings.EqualFold(digest, expected) {
					p.fail("%s does not match the expected digest", path)
					p.keyValue("expected", strings.ToLower(expected))
					p.keyValue("actual", digest)
					return exitCode(1)
				}
			}
			p.success("%s is intact", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&expected, "sha256", "", "expected hex digest")

	return cmd
}

// =============================================================================
// restore
// =============================================================================

// restoreCommand creates the restore command.
func (c *CLI) restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace a document with its backup",
		Long: `Copy <file>.backup over <file>. The exit status is 1 when there is no
backup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := c.setup()
			if err != nil {
				return err
			}
			path := args[0]
			p := newPrinter(cmd.OutOrStdout())

			ok, err := st.RestoreBackup(cmd.Context(), path)
			if err != nil {
				return err
			}
			if !ok {
				p.warning("No backup found for %s", path)
				return exitCode(1)
			}
			p.success("Restored %s", path)
			p.detail("From: %s", st.BackupPath(path))
			return nil
		},
	}
}
