// Package cli implements the upkeep command-line interface.
//
// Every command reads one resolved dependency graph, a cargo metadata JSON
// document or a Cargo.lock file, and runs a query against it through
// [pipeline.Runner]. The CLI is built with cobra; diagnostics go to stderr
// through charmbracelet/log while results go to stdout.
//
// # Commands
//
//   - tree: print the dependency tree (text, json, dot, svg)
//   - why: show the shortest path from a root to one crate
//   - audit: attribute advisory findings to dependency paths
//   - dups: list crates resolved at more than one version
//   - export: write the normalized graph JSON
//   - serve: answer the same queries over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level along with the elapsed time, rounded to the
// millisecond. Example output: "Loaded Cargo.lock (12ms)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
