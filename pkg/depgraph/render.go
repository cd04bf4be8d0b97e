package depgraph

import (
	"fmt"
	"io"
	"strings"
)

// Connectors used by the text rendering.
const (
	branch     = "|-- "
	lastBranch = "`-- "
	pipeIndent = "|   "
	lastIndent = "    "
)

// workspaceLabel is printed for the unnamed root of a virtual workspace.
const workspaceLabel = "[workspace]"

// TextOptions configures [WriteText].
type TextOptions struct {
	// ShowFeatures appends the feature list to each label.
	ShowFeatures bool
	// Decorate, when set, rewrites each label after formatting. The CLI
	// uses it to apply terminal colors.
	Decorate func(n *TreeNode, label string) string
}

// RenderText returns the indented text form of root without a trailing newline.
func RenderText(root *TreeNode, showFeatures bool) string {
	var b strings.Builder
	_ = WriteText(&b, root, TextOptions{ShowFeatures: showFeatures})
	return strings.TrimSuffix(b.String(), "\n")
}

// WriteText writes one line per node, depth first, to w.
func WriteText(w io.Writer, root *TreeNode, opts TextOptions) error {
	tw := &textWriter{w: w, opts: opts}
	tw.line("", root)
	for i, c := range root.Dependencies {
		tw.node(c, "", i == len(root.Dependencies)-1)
	}
	return tw.err
}

type textWriter struct {
	w    io.Writer
	opts TextOptions
	err  error
}

func (t *textWriter) node(n *TreeNode, prefix string, last bool) {
	connector, indent := branch, pipeIndent
	if last {
		connector, indent = lastBranch, lastIndent
	}
	t.line(prefix+connector, n)

	next := prefix + indent
	for i, c := range n.Dependencies {
		t.node(c, next, i == len(n.Dependencies)-1)
	}
}

func (t *textWriter) line(prefix string, n *TreeNode) {
	if t.err != nil {
		return
	}
	label := FormatLabel(n, t.opts.ShowFeatures)
	if t.opts.Decorate != nil {
		label = t.opts.Decorate(n, label)
	}
	_, t.err = fmt.Fprintln(t.w, prefix+label)
}

// FormatLabel renders "name vX.Y.Z [dup, dev, build, features: a, b]".
// Annotations are omitted when empty.
func FormatLabel(n *TreeNode, showFeatures bool) string {
	var notes []string
	if n.Duplicate {
		notes = append(notes, "dup")
	}
	if n.IsDev {
		notes = append(notes, "dev")
	}
	if n.IsBuild {
		notes = append(notes, "build")
	}
	if showFeatures && len(n.Features) > 0 {
		notes = append(notes, "features: "+strings.Join(n.Features, ", "))
	}

	name := n.Name
	if n.IsSynthetic() && name == "" {
		name = workspaceLabel
	}
	if n.Version != "" {
		name += " v" + n.Version
	}
	if len(notes) == 0 {
		return name
	}
	return name + " [" + strings.Join(notes, ", ") + "]"
}

// FormatStats renders the summary line printed under a text tree.
func FormatStats(s TreeStats) string {
	return fmt.Sprintf("Crates: %d  Direct deps: %d  Transitive deps: %d  Duplicate crates: %d",
		s.TotalCrates, s.DirectDeps, s.TransitiveDeps, s.DuplicateCrates)
}
