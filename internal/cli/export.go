package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/pkg/graph"
)

func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [graph]",
		Short: "Write the normalized graph JSON",
		Long: `Write the loaded graph in upkeep's normalized JSON form. The output can be
read back by every other command and is smaller than cargo metadata.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := c.newRunner()
			snap, err := c.load(cmd.Context(), runner, graphPath(args))
			if err != nil {
				return err
			}
			if output == "" {
				return graph.WriteGraph(snap.Graph, cmd.OutOrStdout())
			}
			if err := graph.WriteGraphFile(snap.Graph, output); err != nil {
				return err
			}
			printSuccess(stderr, "Exported %d packages", snap.Graph.NodeCount())
			printFile(stderr, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
