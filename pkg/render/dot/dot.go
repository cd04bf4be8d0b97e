package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

// Options configures DOT output.
type Options struct {
	// ShowFeatures adds the activated features to node labels.
	ShowFeatures bool
}

const duplicateFill = `"#fde68a"`

// ToDOT converts a display tree to Graphviz DOT format.
// Nodes appear in depth-first order and each edge is written once.
func ToDOT(root *depgraph.TreeNode, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	w := &walker{opts: opts, seen: make(map[string]bool), edges: make(map[[2]string]bool)}
	w.visit(root)

	for _, n := range w.nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range w.edgeList {
		if style := edgeStyle(e.to); style != "" {
			fmt.Fprintf(&buf, "  %q -> %q [style=%s];\n", nodeID(e.from), nodeID(e.to), style)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(e.from), nodeID(e.to))
	}

	buf.WriteString("}\n")
	return buf.String()
}

type edge struct {
	from, to *depgraph.TreeNode
}

type walker struct {
	opts     Options
	seen     map[string]bool
	edges    map[[2]string]bool
	nodes    []*depgraph.TreeNode
	edgeList []edge
}

func (w *walker) visit(n *depgraph.TreeNode) {
	id := nodeID(n)
	if !w.seen[id] {
		w.seen[id] = true
		w.nodes = append(w.nodes, n)
	}
	for _, c := range n.Dependencies {
		key := [2]string{id, nodeID(c)}
		if !w.edges[key] {
			w.edges[key] = true
			w.edgeList = append(w.edgeList, edge{from: n, to: c})
		}
		w.visit(c)
	}
}

// nodeID is the package id, or the label for a synthetic root.
func nodeID(n *depgraph.TreeNode) string {
	if n.IsSynthetic() {
		return depgraph.FormatLabel(n, false)
	}
	return n.ID
}

func fmtLabel(n *depgraph.TreeNode, opts Options) string {
	if n.IsSynthetic() {
		return depgraph.FormatLabel(n, false)
	}
	label := n.Name + "\nv" + n.Version
	if opts.ShowFeatures && len(n.Features) > 0 {
		label += "\n" + strings.Join(n.Features, ", ")
	}
	return label
}

func fmtAttrs(n *depgraph.TreeNode, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts))}
	switch {
	case n.IsSynthetic():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case n.Duplicate:
		attrs = append(attrs, "fillcolor="+duplicateFill)
	}
	return attrs
}

func edgeStyle(to *depgraph.TreeNode) string {
	switch {
	case to.IsDev && to.IsBuild:
		return `"dashed,bold"`
	case to.IsDev:
		return "dashed"
	case to.IsBuild:
		return "bold"
	}
	return ""
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the diagram scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
