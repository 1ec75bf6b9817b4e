// Package cli implements the fixpoint command-line interface: capture,
// restore, verify, show, and list over a directory of fixpoint artifacts.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/fixpoint/internal/store"
)

// Config keys resolved through viper (flag > env > config file > default).
const (
	cfgKeyStoreDir = "store_dir"
	cfgKeyDatabase = "database"

	defaultStoreDir = "fixpoints"
	configName      = "fixpoint"
)

// RootOptions holds global flags and resolved configuration for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	StoreDir string
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fixpoint CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fixpoint",
		Short: "Database-state snapshots for golden-file testing",
		Long: `Fixpoint captures the full content of a database as a named artifact,
rebuilds artifacts incrementally against a parent, replays artifacts into a
database, and verifies a database's current state against a stored artifact.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.loadConfig()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.StoreDir, "store", "", "artifact store directory (default: fixpoints)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database path")

	cmd.AddCommand(NewCaptureCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// loadConfig resolves store directory and database path from, in order of
// precedence: command-line flag, FIXPOINT_* environment variable, a
// fixpoint.yaml in the working directory, then the built-in default.
func (o *RootOptions) loadConfig() error {
	v := viper.New()
	v.SetDefault(cfgKeyStoreDir, defaultStoreDir)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("FIXPOINT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
		// Missing fixpoint.yaml is not an error.
	}

	if o.StoreDir == "" {
		o.StoreDir = v.GetString(cfgKeyStoreDir)
	}
	if o.Database == "" {
		o.Database = v.GetString(cfgKeyDatabase)
	}
	return nil
}

// openStore opens the configured artifact store.
func (o *RootOptions) openStore() (*store.Store, error) {
	st, err := store.Open(o.StoreDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open artifact store", err)
	}
	return st, nil
}

// openDatabase opens the configured SQLite database.
// The pool is capped at one connection; SQLite allows a single writer and
// capture/replay are sequential anyway.
func (o *RootOptions) openDatabase() (*sql.DB, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database configured: pass --db, set FIXPOINT_DATABASE, or add database to fixpoint.yaml")
	}
	if _, err := os.Stat(o.Database); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database %q", o.Database), err)
	}
	db, err := sql.Open("sqlite3", o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "connect to database", err)
	}
	return db, nil
}

// formatter builds the output formatter for a command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if format == f {
			return true
		}
	}
	return false
}
