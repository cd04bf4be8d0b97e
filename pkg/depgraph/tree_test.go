package depgraph

import (
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

func TestBuildCycleTerminates(t *testing.T) {
	g := mustGraph(t, Input{
		Root: id("a", "1.0.0"),
		Packages: []Package{
			pkg("a", "1.0.0", on(id("b", "1.0.0"))),
			pkg("b", "1.0.0", on(id("a", "1.0.0"))),
		},
	})
	root := mustBuild(t, g, Options{})

	if got := childNames(root); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("children of a = %v, want [b]", got)
	}
	b := root.Dependencies[0]
	if len(b.Dependencies) != 0 {
		t.Errorf("b has children %v, want none since a is on the path", childNames(b))
	}
}

func TestBuildNoRepeatOnAnyPath(t *testing.T) {
	// a -> b -> c -> a, plus a -> c
	g := mustGraph(t, Input{
		Root: id("a", "1.0.0"),
		Packages: []Package{
			pkg("a", "1.0.0", on(id("b", "1.0.0")), on(id("c", "1.0.0"))),
			pkg("b", "1.0.0", on(id("c", "1.0.0"))),
			pkg("c", "1.0.0", on(id("a", "1.0.0"))),
		},
	})
	root := mustBuild(t, g, Options{})

	var walk func(n *TreeNode, seen map[string]bool)
	walk = func(n *TreeNode, seen map[string]bool) {
		if seen[n.ID] {
			t.Fatalf("package %s repeats on a root-to-leaf path", n.ID)
		}
		seen[n.ID] = true
		for _, c := range n.Dependencies {
			walk(c, seen)
		}
		delete(seen, n.ID)
	}
	walk(root, map[string]bool{})
}

func TestBuildDiamondExpandsOnce(t *testing.T) {
	g := mustGraph(t, Input{
		Root: id("a", "1.0.0"),
		Packages: []Package{
			pkg("a", "1.0.0", on(id("b", "1.0.0")), on(id("c", "1.0.0"))),
			pkg("b", "1.0.0", on(id("d", "1.0.0"))),
			pkg("c", "1.0.0", on(id("d", "1.0.0"))),
			pkg("d", "1.0.0", on(id("e", "1.0.0"))),
			pkg("e", "1.0.0"),
		},
	})
	root := mustBuild(t, g, Options{})

	ds := findAll(root, "d")
	if len(ds) != 2 {
		t.Fatalf("d appears %d times, want 2", len(ds))
	}
	// b sorts before c, so d is expanded under b.
	if got := childNames(ds[0]); !slices.Equal(got, []string{"e"}) {
		t.Errorf("d under b has children %v, want [e]", got)
	}
	if len(ds[1].Dependencies) != 0 {
		t.Errorf("d under c has children %v, want none", childNames(ds[1]))
	}
}

func TestBuildChildrenSortedByName(t *testing.T) {
	g := mustGraph(t, Input{
		Root: id("root", "1.0.0"),
		Packages: []Package{
			pkg("root", "1.0.0", on(id("zeta", "1.0.0")), on(id("alpha", "1.0.0")), on(id("mu", "1.0.0"))),
			pkg("zeta", "1.0.0"),
			pkg("alpha", "1.0.0"),
			pkg("mu", "1.0.0"),
		},
	})
	root := mustBuild(t, g, Options{})
	if got := childNames(root); !slices.Equal(got, []string{"alpha", "mu", "zeta"}) {
		t.Errorf("children = %v", got)
	}
}

func TestBuildDuplicateFlag(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	root := mustBuild(t, g, Options{})

	dups := findAll(root, "dup")
	if len(dups) != 2 {
		t.Fatalf("dup appears %d times, want 2", len(dups))
	}
	for _, d := range dups {
		if !d.Duplicate {
			t.Errorf("dup %s not flagged", d.Version)
		}
	}
	if find(root, "leaf").Duplicate {
		t.Error("leaf flagged as duplicate")
	}
}

func TestBuildEdgeAnnotations(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	root := mustBuild(t, g, Options{})

	if n := find(root, "dev_only"); n == nil || !n.IsDev || n.IsBuild {
		t.Errorf("dev_only = %+v, want is_dev", n)
	}
	if n := find(root, "build_only"); n == nil || !n.IsBuild || n.IsDev {
		t.Errorf("build_only = %+v, want is_build", n)
	}
	if root.IsDev || root.IsBuild {
		t.Error("root carries edge annotations")
	}
}

func TestBuildMaxDepth(t *testing.T) {
	g := mustGraph(t, workspaceInput())

	root := mustBuild(t, g, Options{MaxDepth: Depth(1)})
	if len(root.Dependencies) != 3 {
		t.Fatalf("direct deps = %d, want 3", len(root.Dependencies))
	}
	for _, c := range root.Dependencies {
		if len(c.Dependencies) != 0 {
			t.Errorf("%s has children at max depth", c.Name)
		}
	}

	root = mustBuild(t, g, Options{MaxDepth: Depth(0)})
	if len(root.Dependencies) != 0 {
		t.Errorf("depth 0 root has children %v", childNames(root))
	}
}

func TestBuildExcludeDev(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	root := mustBuild(t, g, Options{ExcludeDev: true})

	if find(root, "dev_only") != nil {
		t.Error("dev_only present with ExcludeDev")
	}
	if find(root, "build_only") == nil {
		t.Error("build_only dropped with ExcludeDev")
	}
}

func TestBuildDuplicatesOnly(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	root := mustBuild(t, g, Options{DuplicatesOnly: true})

	if root.Name != "app" {
		t.Fatalf("root = %s, want app", root.Name)
	}
	if got := childNames(root); !slices.Equal(got, []string{"dep_a", "dep_b"}) {
		t.Errorf("children of app = %v, want [dep_a dep_b]", got)
	}

	var walk func(n *TreeNode, depth int) bool
	walk = func(n *TreeNode, depth int) bool {
		leadsToDup := n.Duplicate
		for _, c := range n.Dependencies {
			if walk(c, depth+1) {
				leadsToDup = true
			}
		}
		if depth > 0 && !leadsToDup {
			t.Errorf("kept %s with no duplicate below", n.Name)
		}
		return leadsToDup
	}
	walk(root, 0)
}

func TestBuildDuplicatesOnlyKeepsBareRoot(t *testing.T) {
	g := mustGraph(t, Input{
		Root:     id("a", "1.0.0"),
		Packages: []Package{pkg("a", "1.0.0", on(id("b", "1.0.0"))), pkg("b", "1.0.0")},
	})
	root := mustBuild(t, g, Options{DuplicatesOnly: true})
	if root == nil || root.Name != "a" || len(root.Dependencies) != 0 {
		t.Errorf("root = %+v, want bare a", root)
	}
}

func TestBuildShowFeatures(t *testing.T) {
	g := mustGraph(t, workspaceInput())

	root := mustBuild(t, g, Options{})
	if n := find(root, "dep_a"); len(n.Features) != 0 {
		t.Errorf("features without ShowFeatures = %v", n.Features)
	}

	root = mustBuild(t, g, Options{ShowFeatures: true})
	if n := find(root, "dep_a"); !slices.Equal(n.Features, []string{"default", "extra"}) {
		t.Errorf("features = %v", n.Features)
	}
}

func TestBuildInvert(t *testing.T) {
	g := mustGraph(t, workspaceInput())

	t.Run("single match", func(t *testing.T) {
		root := mustBuild(t, g, Options{Invert: "leaf"})
		if root.Name != "leaf" || root.IsSynthetic() {
			t.Fatalf("root = %+v", root)
		}
		// leaf <- mid <- dep_a <- app
		var chain []string
		for n := root; n != nil; {
			chain = append(chain, n.Name)
			if len(n.Dependencies) == 0 {
				break
			}
			n = n.Dependencies[0]
		}
		if !slices.Equal(chain, []string{"leaf", "mid", "dep_a", "app"}) {
			t.Errorf("chain = %v", chain)
		}
	})

	t.Run("multiple versions", func(t *testing.T) {
		root := mustBuild(t, g, Options{Invert: "dup"})
		if root.Name != "reverse:dup" || !root.IsSynthetic() {
			t.Fatalf("root = %+v, want synthetic reverse:dup", root)
		}
		if len(root.Dependencies) != 2 {
			t.Fatalf("children = %d, want 2", len(root.Dependencies))
		}
		if root.Dependencies[0].Version != "0.1.0" || root.Dependencies[1].Version != "0.2.0" {
			t.Errorf("versions = %s, %s", root.Dependencies[0].Version, root.Dependencies[1].Version)
		}
		if got := childNames(root.Dependencies[1]); !slices.Equal(got, []string{"dep_b"}) {
			t.Errorf("dependents of dup 0.2.0 = %v", got)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Build(g, NewDuplicateIndex(g), Options{Invert: "nope"})
		if !errs.Is(err, errs.ErrCodePackageNotFound) {
			t.Errorf("err = %v, want %v", err, errs.ErrCodePackageNotFound)
		}
	})
}

func TestBuildVirtualWorkspace(t *testing.T) {
	g := mustGraph(t, Input{
		WorkspaceMembers: []string{id("a", "0.1.0"), id("b", "0.1.0")},
		Packages: []Package{
			pkg("a", "0.1.0", on(id("shared", "1.0.0"))),
			pkg("b", "0.1.0", on(id("shared", "1.0.0"))),
			pkg("shared", "1.0.0"),
		},
	})
	root := mustBuild(t, g, Options{})

	if !root.IsSynthetic() || root.Name != "" || root.Version != "" {
		t.Fatalf("root = %+v, want unnamed synthetic root", root)
	}
	if got := childNames(root); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("children = %v, want [a b]", got)
	}

	stats := ComputeStats(root)
	if stats.DirectDeps != 2 {
		t.Errorf("DirectDeps = %d, want 2", stats.DirectDeps)
	}
	if stats.TotalCrates != 3 {
		t.Errorf("TotalCrates = %d, want 3", stats.TotalCrates)
	}
	if stats.TransitiveDeps != 1 {
		t.Errorf("TransitiveDeps = %d, want 1", stats.TransitiveDeps)
	}
}

func TestBuildErrors(t *testing.T) {
	chain := Input{Root: id("p0", "1.0.0")}
	for i := range 5 {
		name := "p" + string(rune('0'+i))
		p := pkg(name, "1.0.0")
		if i < 4 {
			p.Dependencies = []Dependency{on(id("p"+string(rune('0'+i+1)), "1.0.0"))}
		}
		chain.Packages = append(chain.Packages, p)
	}

	tests := []struct {
		name string
		in   Input
		opts Options
		code errs.Code
		msg  string
	}{
		{
			name: "empty workspace",
			in:   Input{Packages: []Package{pkg("a", "1.0.0")}},
			code: errs.ErrCodeEmptyWorkspace,
		},
		{
			name: "ceiling",
			in:   chain,
			opts: Options{Ceiling: 2},
			code: errs.ErrCodeDepthExceeded,
			msg:  "p3 1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.in)
			_, err := Build(g, NewDuplicateIndex(g), tt.opts)
			if !errs.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %v", err, tt.code)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %q, want it to name %q", err, tt.msg)
			}
		})
	}
}

func TestBuildChainWithinCeiling(t *testing.T) {
	in := Input{Root: id("p0", "1.0.0")}
	for i := range 5 {
		p := pkg("p"+string(rune('0'+i)), "1.0.0")
		if i < 4 {
			p.Dependencies = []Dependency{on(id("p"+string(rune('0'+i+1)), "1.0.0"))}
		}
		in.Packages = append(in.Packages, p)
	}
	g := mustGraph(t, in)
	if _, err := Build(g, NewDuplicateIndex(g), Options{Ceiling: 4}); err != nil {
		t.Errorf("Build() error = %v, want chain of depth 4 to fit", err)
	}
}
