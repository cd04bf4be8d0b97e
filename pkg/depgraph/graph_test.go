package depgraph

import (
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

func TestNewRejectsInconsistentInput(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{
			name: "unknown edge target",
			in:   Input{Root: id("a", "1.0.0"), Packages: []Package{pkg("a", "1.0.0", on(id("ghost", "1.0.0")))}},
		},
		{
			name: "duplicate id",
			in:   Input{Packages: []Package{pkg("a", "1.0.0"), pkg("a", "1.0.0")}},
		},
		{
			name: "duplicate key",
			in: Input{Packages: []Package{
				{ID: "one", Name: "a", Version: "1.0.0"},
				{ID: "two", Name: "a", Version: "1.0.0"},
			}},
		},
		{
			name: "empty id",
			in:   Input{Packages: []Package{{Name: "a", Version: "1.0.0"}}},
		},
		{
			name: "unknown root",
			in:   Input{Root: "missing", Packages: []Package{pkg("a", "1.0.0")}},
		},
		{
			name: "unknown member",
			in:   Input{WorkspaceMembers: []string{"missing"}, Packages: []Package{pkg("a", "1.0.0")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.in)
			if err == nil {
				t.Fatal("New() error = nil, want error")
			}
			if !errs.Is(err, errs.ErrCodeInvalidGraph) {
				t.Errorf("New() code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidGraph)
			}
		})
	}
}

func TestNewSameNameDifferentSource(t *testing.T) {
	g := mustGraph(t, Input{Packages: []Package{
		{ID: "reg", Name: "a", Version: "1.0.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
		{ID: "git", Name: "a", Version: "1.0.0", Source: "git+https://github.com/example/a"},
	}})
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if got := g.IDsByName("a"); !slices.Equal(got, []string{"reg", "git"}) {
		t.Errorf("IDsByName(a) = %v", got)
	}
}

func TestEdgeKinds(t *testing.T) {
	tests := []struct {
		name       string
		kinds      []DepKind
		dev, build bool
		nonDev     bool
	}{
		{"no kinds", nil, false, false, true},
		{"normal", []DepKind{KindNormal}, false, false, true},
		{"dev only", []DepKind{KindDev}, true, false, false},
		{"build only", []DepKind{KindBuild}, false, true, true},
		{"normal and dev", []DepKind{KindNormal, KindDev}, true, false, true},
		{"dev and build", []DepKind{KindDev, KindBuild}, true, true, true},
		{"unknown", []DepKind{KindUnknown}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEdge(Dependency{ID: "x", Kinds: tt.kinds})
			if e.Dev != tt.dev || e.Build != tt.build || e.NonDev != tt.nonDev {
				t.Errorf("newEdge(%v) = %+v, want dev=%v build=%v nonDev=%v", tt.kinds, e, tt.dev, tt.build, tt.nonDev)
			}
		})
	}
}

func TestParseDepKind(t *testing.T) {
	tests := map[string]DepKind{
		"":       KindNormal,
		"normal": KindNormal,
		"dev":    KindDev,
		"build":  KindBuild,
		"weird":  KindUnknown,
	}
	for in, want := range tests {
		if got := ParseDepKind(in); got != want {
			t.Errorf("ParseDepKind(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRepeatedEdgesMerge(t *testing.T) {
	g := mustGraph(t, Input{
		Root: id("a", "1.0.0"),
		Packages: []Package{
			pkg("a", "1.0.0", on(id("b", "1.0.0"), KindDev), on(id("b", "1.0.0"), KindBuild)),
			pkg("b", "1.0.0"),
		},
	})
	edges := g.Forward(false)[id("a", "1.0.0")]
	if len(edges) != 1 {
		t.Fatalf("edges = %v, want one merged edge", edges)
	}
	if !edges[0].Dev || !edges[0].Build || !edges[0].NonDev {
		t.Errorf("merged edge = %+v, want dev, build and non-dev", edges[0])
	}
}

func TestForwardExcludeDev(t *testing.T) {
	g := mustGraph(t, workspaceInput())

	all := g.Forward(false)[id("app", "0.1.0")]
	if len(all) != 3 {
		t.Fatalf("forward edges = %d, want 3", len(all))
	}

	kept := g.Forward(true)[id("app", "0.1.0")]
	for _, e := range kept {
		if e.To == id("dev_only", "0.1.0") {
			t.Error("dev-only edge survived ExcludeDev")
		}
	}
	if len(kept) != 2 {
		t.Errorf("edges after ExcludeDev = %d, want 2", len(kept))
	}

	// build edges are not dev edges
	depA := g.Forward(true)[id("dep_a", "0.1.0")]
	if len(depA) != 3 {
		t.Errorf("dep_a edges after ExcludeDev = %d, want 3", len(depA))
	}
}

func TestInvertTwiceRestoresAdjacency(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	fwd := g.Forward(false)
	back := Invert(Invert(fwd))

	if len(back) != len(fwd) {
		t.Fatalf("len = %d, want %d", len(back), len(fwd))
	}
	for from, edges := range fwd {
		want := sortedEdges(edges)
		got := sortedEdges(back[from])
		if !slices.Equal(got, want) {
			t.Errorf("edges of %s = %v, want %v", from, got, want)
		}
	}
}

func TestInvertKeepsAnnotations(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	inv := Invert(g.Forward(false))

	edges := inv[id("dev_only", "0.1.0")]
	if len(edges) != 1 || edges[0].To != id("app", "0.1.0") || !edges[0].Dev {
		t.Errorf("inverted dev_only edges = %+v", edges)
	}
	edges = inv[id("build_only", "0.1.0")]
	if len(edges) != 1 || !edges[0].Build {
		t.Errorf("inverted build_only edges = %+v", edges)
	}
}

func sortedEdges(edges []Edge) []Edge {
	out := slices.Clone(edges)
	slices.SortFunc(out, func(a, b Edge) int { return strings.Compare(a.To, b.To) })
	return out
}

func TestRoots(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	if got := g.Roots(); !slices.Equal(got, []string{id("app", "0.1.0")}) {
		t.Errorf("Roots() = %v", got)
	}

	ws := mustGraph(t, Input{
		WorkspaceMembers: []string{id("a", "0.1.0"), id("b", "0.1.0"), id("a", "0.1.0")},
		Packages:         []Package{pkg("a", "0.1.0"), pkg("b", "0.1.0")},
	})
	if ws.Root() != "" {
		t.Errorf("Root() = %q, want empty", ws.Root())
	}
	if got := ws.Roots(); !slices.Equal(got, []string{id("a", "0.1.0"), id("b", "0.1.0")}) {
		t.Errorf("Roots() = %v, want members deduplicated", got)
	}
}

func TestPackageKeyString(t *testing.T) {
	if got := (PackageKey{Name: "a", Version: "1.0.0"}).String(); got != "a 1.0.0" {
		t.Errorf("String() = %q", got)
	}
	k := PackageKey{Name: "a", Version: "1.0.0", Source: "registry+x"}
	if got := k.String(); got != "a 1.0.0 (registry+x)" {
		t.Errorf("String() = %q", got)
	}
}

func TestDuplicateIndex(t *testing.T) {
	g := mustGraph(t, workspaceInput())
	idx := NewDuplicateIndex(g)

	if !idx.IsDuplicate("dup") {
		t.Error("IsDuplicate(dup) = false")
	}
	if idx.IsDuplicate("leaf") {
		t.Error("IsDuplicate(leaf) = true")
	}
	if got := idx.Versions("dup"); !slices.Equal(got, []string{"0.1.0", "0.2.0"}) {
		t.Errorf("Versions(dup) = %v", got)
	}
	report := idx.Report()
	if len(report) != 1 || report[0].Name != "dup" {
		t.Errorf("Report() = %+v", report)
	}
}
