package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upkeep/pkg/advisory"
	"github.com/matzehuels/upkeep/pkg/cache"
	"github.com/matzehuels/upkeep/pkg/cargo"
	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/graph"
	"github.com/matzehuels/upkeep/pkg/observability"
)

// Runner encapsulates pipeline execution.
// Both CLI and API use it so loading and querying behave the same.
//
// The Runner keeps no pipeline results of its own; rendered artifacts go
// to Cache, which is a NullCache unless set. Multiple goroutines can safely
// use the same Runner and the same Snapshot with different options.
type Runner struct {
	Logger *log.Logger

	// Cache holds rendered tree artifacts keyed by snapshot and options.
	Cache cache.Cache
	// CacheTTL is how long artifacts stay cached. Zero keeps them until evicted.
	CacheTTL time.Duration
}

// NewRunner creates a runner without caching. If logger is nil,
// log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger, Cache: cache.NewNullCache()}
}

// Load decodes the graph at path and indexes it. stdin is read when path
// is [cargo.StdinPath].
func (r *Runner) Load(ctx context.Context, path string, stdin io.Reader) (snap *Snapshot, err error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	var format cargo.Format
	defer func() {
		nodes := 0
		if snap != nil {
			nodes = snap.Graph.NodeCount()
		}
		hooks.OnLoadComplete(ctx, path, string(format), nodes, time.Since(start), err)
	}()

	in, format, err := cargo.Load(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	g, err := depgraph.New(in)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", format, err)
	}
	snap = NewSnapshot(g, path, format)

	r.Logger.Info("loaded graph",
		"path", path,
		"format", format,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duplicates", len(snap.Duplicates.Duplicates()),
		"duration", time.Since(start))
	return snap, nil
}

// Tree builds and renders a tree view of snap. A cached artifact is
// returned as is, with Result.Cached set and no Tree.
func (r *Runner) Tree(ctx context.Context, snap *Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key := cache.ArtifactKey(snap.Key(), opts.String())
	if data, ok, err := r.cache().Get(ctx, key); err == nil && ok {
		opts.Logger.Debug("tree cache hit", "format", opts.Format, "bytes", len(data))
		return &Result{Artifact: data, Format: opts.Format, Cached: true}, nil
	}

	out, buildTime, err := r.Build(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Tree: out, Format: opts.Format}
	result.Stats.NodeCount = out.Stats.TotalCrates
	result.Stats.BuildTime = buildTime

	renderStart := time.Now()
	artifact, err := r.Render(ctx, out, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)

	if err := r.cache().Set(ctx, key, artifact, r.CacheTTL); err != nil {
		opts.Logger.Warn("cache tree artifact", "err", err)
	}

	opts.Logger.Debug("rendered tree",
		"format", opts.Format,
		"bytes", len(artifact),
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Build runs the tree builder and stats aggregator without rendering.
func (r *Runner) Build(ctx context.Context, snap *Snapshot, opts Options) (depgraph.TreeOutput, time.Duration, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return depgraph.TreeOutput{}, 0, fmt.Errorf("invalid options: %w", err)
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Invert)
	start := time.Now()

	root, err := depgraph.Build(snap.Graph, snap.Duplicates, opts.TreeOptions())
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return depgraph.TreeOutput{}, 0, fmt.Errorf("build tree: %w", err)
	}
	out := depgraph.TreeOutput{Root: root, Stats: depgraph.ComputeStats(root)}
	elapsed := time.Since(start)
	hooks.OnBuildComplete(ctx, out.Stats.TotalCrates, elapsed, nil)

	opts.Logger.Info("built tree",
		"crates", out.Stats.TotalCrates,
		"direct", out.Stats.DirectDeps,
		"duplicates", out.Stats.DuplicateCrates,
		"options", opts.String(),
		"duration", elapsed)
	return out, elapsed, nil
}

// Why finds the shortest path from a root to (name, version). NotFound and
// NoPath are results, not errors; only invalid arguments fail.
func (r *Runner) Why(ctx context.Context, snap *Snapshot, name, version, source string) (depgraph.PathResult, error) {
	if err := errs.ValidateCrateName(name); err != nil {
		return depgraph.PathResult{}, err
	}
	if err := errs.ValidateVersion(version); err != nil {
		return depgraph.PathResult{}, err
	}

	res := snap.Graph.PathTo(name, version, source)
	observability.Path().OnPathResolved(ctx, name, version, string(res.Status), len(res.Path))

	r.Logger.Debug("resolved path",
		"package", name,
		"version", version,
		"status", res.Status,
		"length", len(res.Path))
	return res, nil
}

// Audit decodes findings from report and attributes each to a path.
func (r *Runner) Audit(ctx context.Context, snap *Snapshot, report io.Reader) (advisory.Report, error) {
	start := time.Now()
	findings, err := advisory.Decode(report)
	if err != nil {
		return advisory.Report{}, fmt.Errorf("audit: %w", err)
	}

	out := advisory.Attribute(snap.Graph, findings)
	hooks := observability.Path()
	for _, v := range out.Vulnerabilities {
		length := 0
		if v.PathStatus == depgraph.PathFound {
			length = len(v.Path)
		}
		hooks.OnPathResolved(ctx, v.Package, v.PackageVersion, string(v.PathStatus), length)
	}

	r.Logger.Info("attributed advisories",
		"total", out.Summary.Total,
		"critical", out.Summary.Critical,
		"high", out.Summary.High,
		"duration", time.Since(start))
	return out, nil
}

// Duplicates lists every package name resolved at more than one version.
func (r *Runner) Duplicates(snap *Snapshot) []depgraph.Duplicate {
	return snap.Duplicates.Report()
}

// Export returns the normalized form of the loaded graph.
func (r *Runner) Export(snap *Snapshot) graph.Graph {
	return graph.FromGraph(snap.Graph)
}

func (r *Runner) cache() cache.Cache {
	if r.Cache == nil {
		return cache.NewNullCache()
	}
	return r.Cache
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
