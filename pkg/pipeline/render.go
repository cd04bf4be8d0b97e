package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/upkeep/pkg/depgraph"
	"github.com/matzehuels/upkeep/pkg/observability"
	"github.com/matzehuels/upkeep/pkg/render/dot"
)

// Render produces the artifact for out in opts.Format.
//
// Text output is the connector tree followed by a blank line and the stats
// line. JSON is {"root": ..., "stats": ...}.
func (r *Runner) Render(ctx context.Context, out depgraph.TreeOutput, opts Options) (data []byte, err error) {
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err) }()

	switch opts.Format {
	case FormatText:
		return RenderText(out, opts.ShowFeatures), nil
	case FormatJSON:
		return MarshalTree(out)
	case FormatDOT:
		return []byte(dot.ToDOT(out.Root, dot.Options{ShowFeatures: opts.ShowFeatures})), nil
	case FormatSVG:
		svg, err := dot.RenderSVG(ctx, dot.ToDOT(out.Root, dot.Options{ShowFeatures: opts.ShowFeatures}))
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", opts.Format)
}

// RenderText renders the tree and its stats line.
func RenderText(out depgraph.TreeOutput, showFeatures bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(depgraph.RenderText(out.Root, showFeatures))
	buf.WriteString("\n\n")
	buf.WriteString(depgraph.FormatStats(out.Stats))
	buf.WriteString("\n")
	return buf.Bytes()
}

// MarshalTree encodes out as indented JSON with a trailing newline.
func MarshalTree(out depgraph.TreeOutput) ([]byte, error) {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}
	return append(data, '\n'), nil
}
