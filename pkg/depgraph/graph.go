package depgraph

import (
	"slices"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// DepKind is the declared kind of a dependency edge.
type DepKind int

const (
	// KindNormal is a regular dependency.
	KindNormal DepKind = iota
	// KindDev is a development-only dependency (tests, examples, benches).
	KindDev
	// KindBuild is a build-script dependency.
	KindBuild
	// KindUnknown is a kind the metadata producer did not recognise.
	// It is treated like KindNormal when excluding dev edges.
	KindUnknown
)

// String returns the lowercase kind name.
func (k DepKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindDev:
		return "dev"
	case KindBuild:
		return "build"
	default:
		return "unknown"
	}
}

// ParseDepKind maps a metadata kind tag to a DepKind. The empty string is
// how cargo reports a normal dependency.
func ParseDepKind(s string) DepKind {
	switch s {
	case "", "normal":
		return KindNormal
	case "dev":
		return KindDev
	case "build":
		return KindBuild
	default:
		return KindUnknown
	}
}

// PackageKey uniquely identifies one resolved package instance.
// An empty Source means the source is absent.
type PackageKey struct {
	Name    string
	Version string
	Source  string
}

// String renders the key the way lockfiles spell dependencies:
// "name version" or "name version (source)".
func (k PackageKey) String() string {
	if k.Source == "" {
		return k.Name + " " + k.Version
	}
	return k.Name + " " + k.Version + " (" + k.Source + ")"
}

// Dependency is one declared outbound edge of an input package.
type Dependency struct {
	ID    string    // target package id
	Kinds []DepKind // declared kinds; empty means normal
}

// Package is one resolved package as supplied by the metadata collaborator.
type Package struct {
	ID           string
	Name         string
	Version      string
	Source       string // empty when absent (path and workspace packages)
	Features     []string
	Dependencies []Dependency
}

// Input is the raw resolved graph. Root names the single root package when
// there is one; otherwise WorkspaceMembers lists the workspace roots.
type Input struct {
	Packages         []Package
	Root             string
	WorkspaceMembers []string
}

// Node is a package in the normalized graph.
type Node struct {
	ID       string
	Key      PackageKey
	Features []string
}

// Edge is an adjacency entry with its dev/build annotation.
//
// NonDev is true when at least one declared kind is normal, build or
// unknown; such an edge survives dev exclusion even if it is also dev.
type Edge struct {
	To     string
	Dev    bool
	Build  bool
	NonDev bool
}

// Adjacency maps a node id to its outbound edges, in input order.
type Adjacency map[string][]Edge

// Graph is the immutable, normalized form of an [Input].
// It is safe for concurrent readers.
type Graph struct {
	nodes   map[string]*Node
	order   []string
	byKey   map[PackageKey]string
	byName  map[string][]string
	forward Adjacency
	root    string
	members []string
}

// New validates in and builds its Graph.
//
// Returns an ErrCodeInvalidGraph error when a package id is empty or repeated,
// when two packages share a PackageKey, or when an edge, the root or a
// workspace member references an id with no package.
func New(in Input) (*Graph, error) {
	g := &Graph{
		nodes:   make(map[string]*Node, len(in.Packages)),
		order:   make([]string, 0, len(in.Packages)),
		byKey:   make(map[PackageKey]string, len(in.Packages)),
		byName:  make(map[string][]string),
		forward: make(Adjacency, len(in.Packages)),
		root:    in.Root,
		members: dedupe(in.WorkspaceMembers),
	}

	for _, p := range in.Packages {
		if p.ID == "" {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "package %q has an empty id", p.Name)
		}
		if _, dup := g.nodes[p.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "duplicate package id %q", p.ID)
		}
		key := PackageKey{Name: p.Name, Version: p.Version, Source: p.Source}
		if other, dup := g.byKey[key]; dup {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "packages %q and %q share key %s", other, p.ID, key)
		}
		g.nodes[p.ID] = &Node{ID: p.ID, Key: key, Features: slices.Clone(p.Features)}
		g.order = append(g.order, p.ID)
		g.byKey[key] = p.ID
		g.byName[p.Name] = append(g.byName[p.Name], p.ID)
	}

	for _, p := range in.Packages {
		edges := make([]Edge, 0, len(p.Dependencies))
		seen := make(map[string]int, len(p.Dependencies))
		for _, d := range p.Dependencies {
			if _, ok := g.nodes[d.ID]; !ok {
				return nil, errs.New(errs.ErrCodeInvalidGraph, "package %q depends on unknown id %q", p.ID, d.ID)
			}
			e := newEdge(d)
			// Repeated targets merge into the first edge.
			if i, dup := seen[d.ID]; dup {
				edges[i].Dev = edges[i].Dev || e.Dev
				edges[i].Build = edges[i].Build || e.Build
				edges[i].NonDev = edges[i].NonDev || e.NonDev
				continue
			}
			seen[d.ID] = len(edges)
			edges = append(edges, e)
		}
		g.forward[p.ID] = edges
	}

	if g.root != "" {
		if _, ok := g.nodes[g.root]; !ok {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "root %q is not a package", g.root)
		}
	}
	for _, m := range g.members {
		if _, ok := g.nodes[m]; !ok {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "workspace member %q is not a package", m)
		}
	}

	return g, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func newEdge(d Dependency) Edge {
	e := Edge{To: d.ID}
	if len(d.Kinds) == 0 {
		e.NonDev = true
		return e
	}
	for _, k := range d.Kinds {
		switch k {
		case KindDev:
			e.Dev = true
		case KindBuild:
			e.Build = true
			e.NonDev = true
		default:
			e.NonDev = true
		}
	}
	return e
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in input order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeCount returns the number of packages.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of forward edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.forward {
		n += len(edges)
	}
	return n
}

// Lookup returns the id of the package with exactly this key.
func (g *Graph) Lookup(key PackageKey) (string, bool) {
	id, ok := g.byKey[key]
	return id, ok
}

// IDsByName returns the ids of every package called name, in input order.
func (g *Graph) IDsByName(name string) []string {
	return slices.Clone(g.byName[name])
}

// Root returns the single root package id, or "" for a virtual workspace.
func (g *Graph) Root() string { return g.root }

// WorkspaceMembers returns the workspace member ids.
func (g *Graph) WorkspaceMembers() []string { return slices.Clone(g.members) }

// Roots returns the ids searches start from: the single root when present,
// otherwise the workspace members.
func (g *Graph) Roots() []string {
	if g.root != "" {
		return []string{g.root}
	}
	return slices.Clone(g.members)
}

// Forward returns a copy of the forward adjacency. With excludeDev, edges
// whose every declared kind is dev are dropped.
func (g *Graph) Forward(excludeDev bool) Adjacency {
	out := make(Adjacency, len(g.forward))
	for _, id := range g.order {
		edges := g.forward[id]
		kept := make([]Edge, 0, len(edges))
		for _, e := range edges {
			if excludeDev && !e.NonDev {
				continue
			}
			kept = append(kept, e)
		}
		out[id] = kept
	}
	return out
}

// Invert reverses every edge of adj, keeping its dev/build annotation.
// Sources are visited in sorted id order so the result is deterministic.
func Invert(adj Adjacency) Adjacency {
	out := make(Adjacency, len(adj))
	from := make([]string, 0, len(adj))
	for id := range adj {
		from = append(from, id)
	}
	slices.Sort(from)

	for _, id := range from {
		if _, ok := out[id]; !ok {
			out[id] = []Edge{}
		}
	}
	for _, id := range from {
		for _, e := range adj[id] {
			rev := e
			rev.To = id
			out[e.To] = append(out[e.To], rev)
		}
	}
	return out
}
