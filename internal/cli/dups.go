package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

func (c *CLI) dupsCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "dups [graph]",
		Aliases: []string{"duplicates"},
		Short:   "List crates resolved at more than one version",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := c.newRunner()
			snap, err := c.load(cmd.Context(), runner, graphPath(args))
			if err != nil {
				return err
			}
			dups := runner.Duplicates(snap)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), dups)
			}
			printDuplicates(cmd.OutOrStdout(), dups)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	return cmd
}

func printDuplicates(w io.Writer, dups []depgraph.Duplicate) {
	if len(dups) == 0 {
		printSuccess(w, "No duplicated crates")
		return
	}
	width := 0
	for _, d := range dups {
		width = max(width, len(d.Name))
	}
	for _, d := range dups {
		fmt.Fprintf(w, "%-*s  %s\n", width, d.Name, StyleWarning.Render(strings.Join(d.Versions, ", ")))
	}
	printNextStep(w, "Show where they come from", "upkeep tree --duplicates")
}
