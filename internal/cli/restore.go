package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fixpoint/internal/harness"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Replay a fixpoint artifact into the database",
		Long: `Restore materializes the named artifact's parent chain into its full table
set and loads every row into the target database.

The target tables are assumed empty: conflicting pre-existing rows abort the
load rather than being merged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runRestore(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	db, err := opts.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	h := harness.New(st)
	formatter.Verbosef("session %s: restoring %q into %s", h.Session(), name, opts.Database)

	if err := h.Restore(cmd.Context(), db, name); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("restore %q", name), err)
	}
	return formatter.Success(fmt.Sprintf("restored %q into %s", name, opts.Database))
}
