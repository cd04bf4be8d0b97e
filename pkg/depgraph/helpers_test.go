package depgraph

import "testing"

// id builds the package id used by test fixtures.
func id(name, version string) string { return name + "@" + version }

// on declares a dependency on target with the given kinds.
func on(target string, kinds ...DepKind) Dependency {
	return Dependency{ID: target, Kinds: kinds}
}

// pkg declares a package without a source.
func pkg(name, version string, deps ...Dependency) Package {
	return Package{ID: id(name, version), Name: name, Version: version, Dependencies: deps}
}

func mustGraph(t *testing.T, in Input) *Graph {
	t.Helper()
	g, err := New(in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func mustBuild(t *testing.T, g *Graph, opts Options) *TreeNode {
	t.Helper()
	root, err := Build(g, NewDuplicateIndex(g), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

// workspaceInput mirrors a small cargo workspace: app has normal, dev and
// build edges, and "dup" resolves to two versions through different parents.
func workspaceInput() Input {
	app := pkg("app", "0.1.0",
		on(id("dep_a", "0.1.0")),
		on(id("dep_b", "0.1.0")),
		on(id("dev_only", "0.1.0"), KindDev),
	)
	app.Features = []string{"default"}
	depA := pkg("dep_a", "0.1.0",
		on(id("mid", "0.1.0")),
		on(id("dup", "0.1.0")),
		on(id("build_only", "0.1.0"), KindBuild),
	)
	depA.Features = []string{"default", "extra"}

	return Input{
		Root: id("app", "0.1.0"),
		Packages: []Package{
			app,
			depA,
			pkg("dep_b", "0.1.0", on(id("dup", "0.2.0"))),
			pkg("mid", "0.1.0", on(id("leaf", "0.1.0"))),
			pkg("dup", "0.1.0"),
			pkg("dup", "0.2.0"),
			pkg("dev_only", "0.1.0"),
			pkg("leaf", "0.1.0"),
			pkg("build_only", "0.1.0"),
		},
	}
}

// find returns the first node named name in depth-first order.
func find(n *TreeNode, name string) *TreeNode {
	if n.Name == name {
		return n
	}
	for _, c := range n.Dependencies {
		if f := find(c, name); f != nil {
			return f
		}
	}
	return nil
}

// findAll returns every node named name in depth-first order.
func findAll(n *TreeNode, name string) []*TreeNode {
	var out []*TreeNode
	if n.Name == name {
		out = append(out, n)
	}
	for _, c := range n.Dependencies {
		out = append(out, findAll(c, name)...)
	}
	return out
}

func childNames(n *TreeNode) []string {
	names := make([]string, len(n.Dependencies))
	for i, c := range n.Dependencies {
		names[i] = c.Name
	}
	return names
}
