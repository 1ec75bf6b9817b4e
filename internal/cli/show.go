package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// showResult is the payload reported by show.
type showResult struct {
	Fixpoint string      `json:"fixpoint"`
	Parent   string      `json:"parent,omitempty"`
	Tables   []showTable `json:"tables"`
}

type showTable struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "show <name>",
		Short:         "Show a stored artifact's parent and table row counts",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	artifact, err := st.Load(name)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("show %q", name), err)
	}

	result := showResult{Fixpoint: artifact.Name, Parent: artifact.Parent}
	for _, table := range artifact.SortedTables() {
		result.Tables = append(result.Tables, showTable{Name: table.Name, Rows: len(table.Rows)})
	}
	return formatter.Success(result)
}

func (r showResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fixpoint %q", r.Fixpoint)
	if r.Parent != "" {
		fmt.Fprintf(&b, " (parent %q)", r.Parent)
	}
	for _, t := range r.Tables {
		fmt.Fprintf(&b, "\n  %s: %d row(s)", t.Name, t.Rows)
	}
	return b.String()
}
