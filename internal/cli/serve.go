package cli

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/internal/server"
	"github.com/matzehuels/upkeep/pkg/cache"
	"github.com/matzehuels/upkeep/pkg/cargo"
	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/observability"
	"github.com/matzehuels/upkeep/pkg/observability/metrics"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	watch     bool
	rate      float64
	burst     int
	noMetrics bool
	cacheSize int
	cacheTTL  time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve graph queries over HTTP",
		Long: `Load a graph once and answer tree, path, duplicate and audit queries over
HTTP until interrupted. With --watch the graph is reloaded when the file
changes; a reload that fails keeps the previous graph.`,
		Example: `  upkeep serve Cargo.lock --watch
  curl 'localhost:8080/path?name=cfg-if&version=0.1.10'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyServeConfig(cmd, &opts)
			path := graphPath(args)
			if opts.watch && path == cargo.StdinPath {
				return errs.New(errs.ErrCodeInvalidInput, "--watch needs a graph file, not stdin")
			}
			return c.runServe(cmd, path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the graph when the file changes")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "requests per second across all clients, 0 disables limiting (default 50)")
	cmd.Flags().IntVar(&opts.burst, "burst", 0, "request burst size (default 100)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-entries", cache.DefaultMaxEntries, "rendered trees kept in memory, 0 disables caching")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", 0, "how long a rendered tree stays cached, 0 keeps it until evicted")

	return cmd
}

// applyServeConfig fills flags the user did not set from the config file.
func (c *CLI) applyServeConfig(cmd *cobra.Command, opts *serveOpts) {
	sc := c.Config.Serve
	flags := cmd.Flags()
	if !flags.Changed("addr") {
		opts.addr = sc.Addr
	}
	if !flags.Changed("watch") {
		opts.watch = sc.Watch
	}
	if !flags.Changed("rate") {
		opts.rate = sc.RateLimit
	}
	if !flags.Changed("burst") {
		opts.burst = sc.Burst
	}
}

func (c *CLI) runServe(cmd *cobra.Command, path string, opts serveOpts) error {
	ctx := cmd.Context()

	var handler http.Handler
	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)
		observability.SetPipelineHooks(m)
		observability.SetPathHooks(m)
		observability.SetHTTPHooks(m)
		defer observability.Reset()
		handler = metrics.Handler(reg)
	}

	runner := c.newRunner()
	if opts.cacheSize > 0 {
		store := cache.NewMemoryCache(opts.cacheSize, opts.cacheTTL)
		defer store.Close()
		runner.Cache = store
		runner.CacheTTL = opts.cacheTTL
	}
	snap, err := c.load(ctx, runner, path)
	if err != nil {
		return err
	}

	srv := server.New(runner, snap, server.Options{
		Logger:    c.Logger,
		RateLimit: opts.rate,
		Burst:     opts.burst,
		Metrics:   handler,
	})

	printSuccess(stderr, "Serving %s (%d crates)", path, snap.Graph.NodeCount())
	printKeyValue(stderr, "address", opts.addr)
	if c.configPath != "" {
		printKeyValue(stderr, "config", c.configPath)
	}
	return srv.Run(ctx, opts.addr, opts.watch)
}
