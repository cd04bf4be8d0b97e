package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/pkg/depgraph"
	"github.com/matzehuels/upkeep/pkg/pipeline"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	depth       int
	duplicates  bool
	features    bool
	noDev       bool
	invert      string
	format      string
	ceiling     int
	output      string
	interactive bool
}

func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [graph]",
		Short: "Print the dependency tree",
		Long: `Print the dependency tree of a resolved graph.

The graph is cargo metadata JSON, a Cargo.lock file, or "-" for JSON on
stdin. It defaults to ./Cargo.lock.`,
		Example: `  upkeep tree
  cargo metadata --format-version 1 | upkeep tree - --no-dev
  upkeep tree --invert cfg-if
  upkeep tree --duplicates --format dot -o dups.dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.pipelineOptions(cmd, opts)
			if err := popts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runTree(cmd, graphPath(args), popts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.depth, "depth", 0, "maximum depth to expand (default: unlimited)")
	cmd.Flags().BoolVarP(&opts.duplicates, "duplicates", "d", false, "show only paths leading to duplicated crates")
	cmd.Flags().BoolVarP(&opts.features, "features", "F", false, "show enabled features")
	cmd.Flags().BoolVar(&opts.noDev, "no-dev", false, "exclude dev-only dependencies")
	cmd.Flags().StringVarP(&opts.invert, "invert", "i", "", "show what depends on this crate")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: text, json, dot, svg")
	cmd.Flags().IntVar(&opts.ceiling, "ceiling", 0, fmt.Sprintf("fail past this depth (default %d)", depgraph.DefaultCeiling))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "browse the tree in a terminal UI")

	return cmd
}

// pipelineOptions starts from the config file and applies flags the user set.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts treeOpts) pipeline.Options {
	tc := c.Config.Tree
	p := pipeline.Options{
		MaxDepth:       tc.Depth,
		DuplicatesOnly: tc.Duplicates,
		ShowFeatures:   tc.Features,
		ExcludeDev:     tc.NoDev,
		Format:         tc.Format,
		Ceiling:        tc.Ceiling,
		Invert:         opts.invert,
		Logger:         c.Logger,
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		p.MaxDepth = depgraph.Depth(opts.depth)
	}
	if flags.Changed("duplicates") {
		p.DuplicatesOnly = opts.duplicates
	}
	if flags.Changed("features") {
		p.ShowFeatures = opts.features
	}
	if flags.Changed("no-dev") {
		p.ExcludeDev = opts.noDev
	}
	if flags.Changed("format") {
		p.Format = opts.format
	}
	if flags.Changed("ceiling") {
		p.Ceiling = opts.ceiling
	}
	return p
}

func (c *CLI) runTree(cmd *cobra.Command, path string, popts pipeline.Options, opts treeOpts) error {
	ctx := cmd.Context()
	runner := c.newRunner()

	snap, err := c.load(ctx, runner, path)
	if err != nil {
		return err
	}

	if opts.interactive {
		out, _, err := runner.Build(ctx, snap, popts)
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(newTreeModel(out, popts.ShowFeatures), tea.WithAltScreen()).Run()
		return err
	}

	res, err := runner.Tree(ctx, snap, popts)
	if err != nil {
		return err
	}
	c.Logger.Debug("tree done",
		"nodes", res.Stats.NodeCount,
		"build", res.Stats.BuildTime,
		"render", res.Stats.RenderTime)

	if opts.output != "" {
		if err := os.WriteFile(opts.output, res.Artifact, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		printSuccess(stderr, "Wrote %s tree", res.Format)
		printFile(stderr, opts.output)
		return nil
	}

	w := cmd.OutOrStdout()
	if res.Format == pipeline.FormatText && isTerminal(w) {
		return writeColorTree(w, res.Tree, popts.ShowFeatures)
	}
	_, err = w.Write(res.Artifact)
	return err
}

// writeColorTree writes the text tree with terminal colors.
func writeColorTree(w io.Writer, out depgraph.TreeOutput, showFeatures bool) error {
	var buf bytes.Buffer
	if err := depgraph.WriteText(&buf, out.Root, depgraph.TextOptions{
		ShowFeatures: showFeatures,
		Decorate:     decorateLabel,
	}); err != nil {
		return err
	}
	buf.WriteString("\n")
	buf.WriteString(StyleDim.Render(depgraph.FormatStats(out.Stats)))
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}
