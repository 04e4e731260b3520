package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitkit/pkg/buildinfo"
	"github.com/matzehuels/circuitkit/pkg/observability"
	"github.com/matzehuels/circuitkit/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "circuit"

	// configFile is the config file name inside the config directory.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	stats      *statsHooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is on.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Circuit validates, diffs and safely rewrites circuit documents",
		Long:          `Circuit is a CLI tool for checking JSON circuit documents for structural and referential integrity, comparing document versions, and rewriting them with atomic saves and backups.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.stats = newStatsHooks()
			observability.SetStoreHooks(c.stats)
			observability.SetValidationHooks(c.stats)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/circuit/config.toml)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.drcCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.hashCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.restoreCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	c.logStatsAfter(root)
	return root
}

// logStatsAfter wraps the RunE of cmd and its subcommands so the activity
// summary is logged however the command ends. Cobra skips PersistentPostRun
// when RunE returns an error, which includes every *ExitError.
func (c *CLI) logStatsAfter(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		c.logStatsAfter(sub)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer c.flushStats()
		return run(cmd, args)
	}
}

// flushStats logs and discards the collected activity.
func (c *CLI) flushStats() {
	if c.stats != nil {
		c.stats.log(c.Logger)
		c.stats = nil
	}
}

// =============================================================================
// Exit Status
// =============================================================================

// ExitError carries a non-zero exit status for outcomes that are not
// failures of the command itself, such as an invalid document or a
// non-empty diff. The command has already reported the outcome.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitCode returns an ExitError for code, or nil when code is zero.
func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// =============================================================================
// Store Factory
// =============================================================================

// loadConfig reads the config file selected by --config or the default path.
func (c *CLI) loadConfig() (Config, error) {
	if c.configPath != "" {
		return LoadConfig(c.configPath, true, c.Logger)
	}
	path, err := defaultConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path, false, c.Logger)
}

// newStore creates a document store configured from cfg.
func (c *CLI) newStore(cfg Config) (*store.Store, error) {
	return store.New(cfg.StoreOptions(c.Logger))
}

// setup loads the config and creates the store in one step.
func (c *CLI) setup() (Config, *store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return Config{}, nil, err
	}
	st, err := c.newStore(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, st, nil
}
