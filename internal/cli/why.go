package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

func (c *CLI) whyCommand() *cobra.Command {
	var (
		source  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "why <crate> <version> [graph]",
		Short: "Show how a crate gets into the build",
		Long: `Show the shortest chain of dependencies from a root package to one crate.

When several roots reach the crate, the earliest root wins; within a root,
the earliest-listed dependency wins.`,
		Example: `  upkeep why cfg-if 0.1.10
  upkeep why serde 1.0.210 metadata.json --json`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := c.newRunner()
			snap, err := c.load(cmd.Context(), runner, graphPath(args[2:]))
			if err != nil {
				return err
			}
			res, err := runner.Why(cmd.Context(), snap, args[0], args[1], source)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printPath(cmd.OutOrStdout(), args[0], args[1], res)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "prefer the package from this source")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")

	return cmd
}

func printPath(w io.Writer, name, version string, res depgraph.PathResult) {
	switch res.Status {
	case depgraph.PathFound:
		printSuccess(w, "%s %s is required via:", name, version)
		printDetail(w, "%s", strings.Join(res.Path, " "+iconArrow+" "))
	case depgraph.PathNoPath:
		printWarning(w, "%s %s is in the graph but no root depends on it", name, version)
	default:
		printWarning(w, "%s %s is not in the graph", name, version)
	}
}

// writeJSON writes v as indented JSON with a trailing newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
