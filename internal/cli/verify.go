package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fixpoint/internal/engine"
	"github.com/roach88/fixpoint/internal/harness"
	"github.com/roach88/fixpoint/internal/record"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Ignore         []string
	Tables         []string
	Profile        string
	Parent         string
	CaptureMissing bool
}

// verifyResult is the payload reported by verify.
type verifyResult struct {
	Fixpoint   string   `json:"fixpoint"`
	Pending    bool     `json:"pending,omitempty"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <name>",
		Short: "Compare the database's current state against a fixpoint artifact",
		Long: `Verify materializes the named artifact and compares it against the
database's current state table by table. Ignored columns are masked on both
sides, so volatile audit columns never cause spurious differences.

Exit code 0 means the states match, 1 means mismatches were found, 2 means
the comparison could not run. With --capture-missing, a missing artifact is
captured as a new baseline and reported as pending instead of failing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "column names to mask during comparison")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", nil, "tables to compare (default: all)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "YAML compare profile naming ignore columns and tables")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "parent for the baseline captured by --capture-missing")
	cmd.Flags().BoolVar(&opts.CaptureMissing, "capture-missing", false, "capture a new baseline when the artifact does not exist")

	return cmd
}

func runVerify(opts *VerifyOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ignore, tables, err := opts.resolveSelection()
	if err != nil {
		return WrapExitError(ExitCommandError, "verify", err)
	}

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
	formatter.Verbosef("session %s: verifying %q against %s", h.Session(), name, opts.Database)

	var outcome *harness.Outcome
	if opts.CaptureMissing {
		outcome, err = h.CompareOrCapture(cmd.Context(), db, name, opts.Parent, ignore, tables)
	} else {
		outcome, err = h.Compare(cmd.Context(), db, name, ignore, tables)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("verify %q", name), err)
	}

	return reportOutcome(formatter, outcome)
}

// resolveSelection merges the profile file with inline flags.
// Inline flags extend the profile's ignore set and override its table list.
func (opts *VerifyOptions) resolveSelection() (record.IgnoreSet, []string, error) {
	ignore := opts.Ignore
	tables := opts.Tables

	if opts.Profile != "" {
		profile, err := loadProfile(opts.Profile)
		if err != nil {
			return nil, nil, err
		}
		ignore = append(ignore, profile.Ignore...)
		if len(tables) == 0 {
			tables = profile.Tables
		}
	}
	return record.NewIgnoreSet(ignore...), tables, nil
}

func reportOutcome(formatter *OutputFormatter, outcome *harness.Outcome) error {
	if outcome.Pending {
		text := fmt.Sprintf("fixpoint %q did not exist; captured as new baseline (pending, re-run to compare)", outcome.Fixpoint)
		return formatter.Emit("pending", verifyResult{Fixpoint: outcome.Fixpoint, Pending: true}, text)
	}

	if outcome.Clean() {
		return formatter.Success(verifyResult{Fixpoint: outcome.Fixpoint})
	}

	messages := make([]string, len(outcome.Mismatches))
	for i, m := range outcome.Mismatches {
		messages[i] = m.String()
	}
	if err := formatter.Emit("mismatch", verifyResult{
		Fixpoint:   outcome.Fixpoint,
		Mismatches: messages,
	}, formatMismatchText(outcome.Fixpoint, outcome.Mismatches)); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d table(s) differ from fixpoint %q", len(outcome.Mismatches), outcome.Fixpoint))
}

func formatMismatchText(name string, mismatches []engine.Mismatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "database differs from fixpoint %q:\n", name)
	for _, m := range mismatches {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r verifyResult) String() string {
	return fmt.Sprintf("database matches fixpoint %q", r.Fixpoint)
}
