package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitkit/pkg/drc"
	"github.com/matzehuels/circuitkit/pkg/store"
)

// =============================================================================
// Config
// =============================================================================

// Config is the content of config.toml. Every field is optional; missing
// fields keep their defaults.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Validate ValidateConfig `toml:"validate"`
	DRC      drc.Rules      `toml:"drc"`
}

// StoreConfig configures document persistence.
type StoreConfig struct {
	MaxRetries   int      `toml:"max_retries"`
	RetryDelay   duration `toml:"retry_delay"`
	Backup       bool     `toml:"backup"`
	BackupSuffix string   `toml:"backup_suffix"`
	LockSuffix   string   `toml:"lock_suffix"`
	LockTimeout  duration `toml:"lock_timeout"`
}

// ValidateConfig configures the validate command.
type ValidateConfig struct {
	Strict bool `toml:"strict"`

	// Schema overrides the built-in schema. A relative path is resolved
	// against the config file's directory.
	Schema string `toml:"schema"`
}

// duration is a time.Duration written as a string such as "250ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			MaxRetries:   store.DefaultMaxRetries,
			RetryDelay:   duration{store.DefaultRetryDelay},
			Backup:       true,
			BackupSuffix: store.DefaultBackupSuffix,
			LockSuffix:   store.DefaultLockSuffix,
			LockTimeout:  duration{store.DefaultLockTimeout},
		},
		DRC: drc.DefaultRules(),
	}
}

// LoadConfig reads the config file at path on top of the defaults. A missing
// file yields the defaults unless required is set. Unknown keys are logged
// and ignored.
func LoadConfig(path string, required bool, logger *log.Logger) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		logger.Debug("no config file, using defaults", "path", path)
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "key", key.String(), "path", path)
	}

	if cfg.Validate.Schema != "" && !filepath.IsAbs(cfg.Validate.Schema) {
		cfg.Validate.Schema = filepath.Join(filepath.Dir(path), cfg.Validate.Schema)
	}
	logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// StoreOptions converts the [store] section into store options.
func (c Config) StoreOptions(logger *log.Logger) store.Options {
	opts := store.DefaultOptions()
	opts.Logger = logger
	opts.MaxRetries = c.Store.MaxRetries
	opts.RetryDelay = c.Store.RetryDelay.Duration
	opts.Backup = c.Store.Backup
	opts.BackupSuffix = c.Store.BackupSuffix
	opts.LockSuffix = c.Store.LockSuffix
	opts.LockTimeout = c.Store.LockTimeout.Duration
	return opts
}

// =============================================================================
// Paths
// =============================================================================

// defaultConfigPath returns the config file path using the XDG standard
// (~/.config/circuit/config.toml).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}

// =============================================================================
// Commands
// =============================================================================

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				var err error
				if path, err = defaultConfigPath(); err != nil {
					return fmt.Errorf("get config dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}
