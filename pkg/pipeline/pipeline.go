// Package pipeline provides the load → build → render pipeline for upkeep.
//
// This package is shared by the CLI and the HTTP API. By centralizing this
// logic, every entry point validates options, logs, and reports hooks the
// same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a resolved graph (cargo metadata, Cargo.lock, or graph
//     JSON) and build the graph model and duplicate index once
//  2. Build: Run a tree, path, or audit query against the loaded snapshot
//  3. Render: Produce text, JSON, DOT, or SVG output
//
// A [Snapshot] is immutable once loaded, so any number of queries may run
// against it concurrently.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	snap, err := runner.Load(ctx, "Cargo.lock", os.Stdin)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Tree(ctx, snap, pipeline.Options{Format: pipeline.FormatText})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifact)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upkeep/pkg/cargo"
	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// Format constants for tree output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// DefaultFormat is the tree output format when none is given.
const DefaultFormat = FormatText

// ValidFormats is the set of supported tree output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Tree Configuration
// =============================================================================

// Options configures a tree query.
// This struct supports JSON serialization for API requests.
type Options struct {
	MaxDepth       *int   `json:"max_depth,omitempty"`
	DuplicatesOnly bool   `json:"duplicates,omitempty"`
	ShowFeatures   bool   `json:"features,omitempty"`
	ExcludeDev     bool   `json:"no_dev,omitempty"`
	Invert         string `json:"invert,omitempty"`
	Ceiling        int    `json:"ceiling,omitempty"`
	Format         string `json:"format,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Snapshot is a loaded graph with its duplicate index.
type Snapshot struct {
	Graph      *depgraph.Graph
	Duplicates depgraph.DuplicateIndex
	Path       string
	Format     cargo.Format
	LoadedAt   time.Time
}

// Key identifies this snapshot for caching. A reload yields a new key.
func (s *Snapshot) Key() string {
	return fmt.Sprintf("%s@%d", s.Path, s.LoadedAt.UnixNano())
}

// NewSnapshot indexes g. Path and Format describe where it came from.
func NewSnapshot(g *depgraph.Graph, path string, format cargo.Format) *Snapshot {
	return &Snapshot{
		Graph:      g,
		Duplicates: depgraph.NewDuplicateIndex(g),
		Path:       path,
		Format:     format,
		LoadedAt:   time.Now(),
	}
}

// Result contains the outputs of a tree query.
type Result struct {
	// Tree is the built tree and its stats.
	Tree depgraph.TreeOutput

	// Artifact is the rendered output in Format.
	Artifact []byte
	Format   string

	// Cached reports that Artifact came from the runner's cache.
	Cached bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: text, json, dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.MaxDepth != nil && *o.MaxDepth < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "depth must not be negative, got %d", *o.MaxDepth)
	}
	if o.Ceiling < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "ceiling must not be negative, got %d", o.Ceiling)
	}
	if o.Invert != "" {
		if err := errs.ValidateCrateName(o.Invert); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// TreeOptions returns the engine options.
func (o *Options) TreeOptions() depgraph.Options {
	return depgraph.Options{
		MaxDepth:       o.MaxDepth,
		DuplicatesOnly: o.DuplicatesOnly,
		ShowFeatures:   o.ShowFeatures,
		ExcludeDev:     o.ExcludeDev,
		Invert:         o.Invert,
		Ceiling:        o.Ceiling,
	}
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	depth := "all"
	if o.MaxDepth != nil {
		depth = fmt.Sprint(*o.MaxDepth)
	}
	return fmt.Sprintf("depth=%s duplicates=%t features=%t no_dev=%t invert=%q ceiling=%d format=%s",
		depth, o.DuplicatesOnly, o.ShowFeatures, o.ExcludeDev, o.Invert, o.Ceiling, o.Format)
}
