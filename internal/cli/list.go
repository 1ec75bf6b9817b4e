package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// listResult is the payload reported by list.
type listResult struct {
	Fixpoints []string `json:"fixpoints"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored fixpoint artifacts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	names, err := st.List()
	if err != nil {
		return WrapExitError(ExitCommandError, "list artifacts", err)
	}
	return formatter.Success(listResult{Fixpoints: names})
}

func (r listResult) String() string {
	if len(r.Fixpoints) == 0 {
		return "no fixpoints stored"
	}
	return strings.Join(r.Fixpoints, "\n")
}
