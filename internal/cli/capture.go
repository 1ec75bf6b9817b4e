package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fixpoint/internal/harness"
)

// CaptureOptions holds flags for the capture command.
type CaptureOptions struct {
	*RootOptions
	Parent string
	Force  bool
}

// captureResult is the payload reported after a successful capture.
type captureResult struct {
	Fixpoint string `json:"fixpoint"`
	Parent   string `json:"parent,omitempty"`
	Tables   int    `json:"tables"`
}

// NewCaptureCommand creates the capture command.
func NewCaptureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CaptureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capture <name>",
		Short: "Capture the database's current state as a fixpoint artifact",
		Long: `Capture reads every table of the database and stores the result as a named
artifact. With --parent, only tables that differ from the parent's
materialized state are stored; identical tables are inherited from the chain.

Stored artifacts are immutable: capturing onto an existing name fails unless
--force is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Parent, "parent", "", "parent artifact name for incremental capture")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing artifact")

	return cmd
}

func runCapture(opts *CaptureOptions, name string, cmd *cobra.Command) error {
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
	formatter.Verbosef("session %s: capturing %q from %s", h.Session(), name, opts.Database)

	artifact, err := h.CaptureFromDatabase(cmd.Context(), db, name, opts.Parent)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("capture %q", name), err)
	}

	if opts.Force {
		err = st.Save(artifact)
	} else {
		err = h.SaveNew(artifact)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("save %q", name), err)
	}

	return formatter.Success(captureResult{
		Fixpoint: artifact.Name,
		Parent:   artifact.Parent,
		Tables:   len(artifact.StripEmpty().Tables),
	})
}

func (r captureResult) String() string {
	if r.Parent != "" {
		return fmt.Sprintf("captured %q (%d tables changed against parent %q)", r.Fixpoint, r.Tables, r.Parent)
	}
	return fmt.Sprintf("captured %q (%d tables)", r.Fixpoint, r.Tables)
}
