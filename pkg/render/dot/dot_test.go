package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

func node(id, name, version string, children ...*depgraph.TreeNode) *depgraph.TreeNode {
	return &depgraph.TreeNode{ID: id, Name: name, Version: version, Dependencies: children}
}

func TestToDOT(t *testing.T) {
	dup := node("dup 0.1.0", "dup", "0.1.0")
	dup.Duplicate = true
	dup.IsBuild = true

	devOnly := node("dev_only 0.1.0", "dev_only", "0.1.0")
	devOnly.IsDev = true

	// mid is reached twice; the second occurrence is a childless terminal
	root := node("app 0.1.0", "app", "0.1.0",
		node("dep_a 0.1.0", "dep_a", "0.1.0", dup, node("mid 1.0.0", "mid", "1.0.0", node("leaf 1.0.0", "leaf", "1.0.0"))),
		node("dep_b 0.1.0", "dep_b", "0.1.0", node("mid 1.0.0", "mid", "1.0.0")),
		devOnly,
	)

	want := `digraph G {
  rankdir=TB;
  bgcolor="transparent";
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];
  ranksep=0.5;
  nodesep=0.3;

  "app 0.1.0" [label="app\nv0.1.0"];
  "dep_a 0.1.0" [label="dep_a\nv0.1.0"];
  "dup 0.1.0" [label="dup\nv0.1.0", fillcolor="#fde68a"];
  "mid 1.0.0" [label="mid\nv1.0.0"];
  "leaf 1.0.0" [label="leaf\nv1.0.0"];
  "dep_b 0.1.0" [label="dep_b\nv0.1.0"];
  "dev_only 0.1.0" [label="dev_only\nv0.1.0"];

  "app 0.1.0" -> "dep_a 0.1.0";
  "dep_a 0.1.0" -> "dup 0.1.0" [style=bold];
  "dep_a 0.1.0" -> "mid 1.0.0";
  "mid 1.0.0" -> "leaf 1.0.0";
  "app 0.1.0" -> "dep_b 0.1.0";
  "dep_b 0.1.0" -> "mid 1.0.0";
  "app 0.1.0" -> "dev_only 0.1.0" [style=dashed];
}
`
	if got := ToDOT(root, Options{}); got != want {
		t.Errorf("ToDOT() =\n%s\nwant\n%s", got, want)
	}
}

func TestToDOTSyntheticRoot(t *testing.T) {
	root := &depgraph.TreeNode{Name: depgraph.ReversePrefix + "dup", Dependencies: []*depgraph.TreeNode{
		node("dup 0.1.0", "dup", "0.1.0"),
		node("dup 0.2.0", "dup", "0.2.0"),
	}}

	got := ToDOT(root, Options{})
	for _, line := range []string{
		`"reverse:dup" [label="reverse:dup", style="rounded,filled,dashed", fillcolor=lightgrey];`,
		`"reverse:dup" -> "dup 0.1.0";`,
		`"reverse:dup" -> "dup 0.2.0";`,
	} {
		if !strings.Contains(got, line) {
			t.Errorf("ToDOT() missing %q in\n%s", line, got)
		}
	}

	workspace := &depgraph.TreeNode{Dependencies: []*depgraph.TreeNode{node("a", "a", "1.0.0")}}
	if got := ToDOT(workspace, Options{}); !strings.Contains(got, `"[workspace]" -> "a";`) {
		t.Errorf("ToDOT(workspace) =\n%s", got)
	}
}

func TestToDOTFeatures(t *testing.T) {
	root := node("app", "app", "0.1.0")
	root.Features = []string{"default", "std"}

	if got := ToDOT(root, Options{ShowFeatures: true}); !strings.Contains(got, `label="app\nv0.1.0\ndefault, std"`) {
		t.Errorf("ToDOT(ShowFeatures) =\n%s", got)
	}
	if got := ToDOT(root, Options{}); strings.Contains(got, "default") {
		t.Errorf("ToDOT() shows features without ShowFeatures:\n%s", got)
	}
}

func TestEdgeStyle(t *testing.T) {
	tests := []struct {
		dev, build bool
		want       string
	}{
		{false, false, ""},
		{true, false, "dashed"},
		{false, true, "bold"},
		{true, true, `"dashed,bold"`},
	}
	for _, tt := range tests {
		n := &depgraph.TreeNode{IsDev: tt.dev, IsBuild: tt.build}
		if got := edgeStyle(n); got != tt.want {
			t.Errorf("edgeStyle(dev=%v, build=%v) = %q, want %q", tt.dev, tt.build, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed a tag without viewBox: %s", got)
	}
}
