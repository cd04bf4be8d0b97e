package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/pkg/buildinfo"
	"github.com/matzehuels/upkeep/pkg/config"
	"github.com/matzehuels/upkeep/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and config lookup.
const appName = "upkeep"

// stderr receives spinners and status lines.
var stderr io.Writer = os.Stderr

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdin is read when a command is given "-" as its graph path.
	Stdin io.Reader

	// Config holds file defaults, loaded before any subcommand runs.
	Config     config.Config
	configPath string
	configFlag string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdin:  os.Stdin,
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Upkeep explains where the crates in a Rust build come from",
		Long: `Upkeep reads a resolved Cargo dependency graph (cargo metadata output or
Cargo.lock) and answers questions about it: the dependency tree, duplicated
crates, why a crate is in the build, and which paths bring in known
vulnerabilities.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default: $"+config.EnvVar+" or .upkeep.toml)")

	root.AddCommand(c.treeCommand())
	root.AddCommand(c.whyCommand())
	root.AddCommand(c.auditCommand())
	root.AddCommand(c.dupsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file, if any. A missing default file is fine;
// a missing explicit one is an error.
func (c *CLI) loadConfig() error {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	cfg, path, err := config.Discover(c.configFlag, dir)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.configPath = path
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// load reads the graph at path, with a spinner on interactive terminals.
func (c *CLI) load(ctx context.Context, runner *pipeline.Runner, path string) (*pipeline.Snapshot, error) {
	var spinner *Spinner
	if isTerminal(os.Stderr) {
		spinner = newSpinnerWithContext(ctx, "Loading "+path)
		spinner.Start()
	}

	prog := newProgress(c.Logger)
	snap, err := runner.Load(ctx, path, c.Stdin)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return nil, err
	}
	prog.done("Loaded " + path)
	return snap, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// graphPath returns the graph argument, defaulting to Cargo.lock.
func graphPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "Cargo.lock"
}
