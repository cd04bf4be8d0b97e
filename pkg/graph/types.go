package graph

import (
	"slices"
	"strings"

	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// Edge kind names used in serialized graphs.
const (
	KindNormal = "normal"
	KindDev    = "dev"
	KindBuild  = "build"
)

// =============================================================================
// Graph - Resolved Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for resolved dependency graphs.
// It is what `upkeep export` writes and what every command accepts back.
//
// The format is designed for round-trip fidelity:
// export → re-import → export produces identical bytes.
type Graph struct {
	Root             string    `json:"root,omitempty"`
	WorkspaceMembers []string  `json:"workspace_members,omitempty"`
	Packages         []Package `json:"packages"`
	Edges            []Edge    `json:"edges"`
}

// =============================================================================
// Package - Resolved Package Instance
// =============================================================================

// Package is one resolved package. Source is empty for path and workspace
// packages.
type Package struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Source   string   `json:"source,omitempty"`
	Features []string `json:"features,omitempty"`
}

// Key returns the identity of p.
func (p Package) Key() depgraph.PackageKey {
	return depgraph.PackageKey{Name: p.Name, Version: p.Version, Source: p.Source}
}

// =============================================================================
// Edge - Directed Dependency
// =============================================================================

// Edge represents a directed dependency. Empty Kinds means normal.
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kinds []string `json:"kinds,omitempty"`
}

// =============================================================================
// Engine ↔ Graph Conversion
// =============================================================================

// FromGraph converts an engine graph to its serialization format.
// Packages are sorted by ID and edges by (from, to) for deterministic output.
func FromGraph(g *depgraph.Graph) Graph {
	nodes := g.Nodes()
	slices.SortFunc(nodes, func(a, b *depgraph.Node) int { return strings.Compare(a.ID, b.ID) })

	out := Graph{
		Root:             g.Root(),
		WorkspaceMembers: g.WorkspaceMembers(),
		Packages:         make([]Package, len(nodes)),
		Edges:            make([]Edge, 0, g.EdgeCount()),
	}
	if len(out.WorkspaceMembers) == 0 {
		out.WorkspaceMembers = nil
	}

	adj := g.Forward(false)
	for i, n := range nodes {
		out.Packages[i] = Package{
			ID:       n.ID,
			Name:     n.Key.Name,
			Version:  n.Key.Version,
			Source:   n.Key.Source,
			Features: slices.Clone(n.Features),
		}
		edges := slices.Clone(adj[n.ID])
		slices.SortFunc(edges, func(a, b depgraph.Edge) int { return strings.Compare(a.To, b.To) })
		for _, e := range edges {
			out.Edges = append(out.Edges, Edge{From: n.ID, To: e.To, Kinds: edgeKinds(e)})
		}
	}

	return out
}

// ToInput converts a Graph to engine input. Edges are attached to their
// source package in document order. An edge leaving an unknown package is an
// ErrCodeInvalidGraph error; other consistency checks happen in depgraph.New.
func ToInput(gj Graph) (depgraph.Input, error) {
	in := depgraph.Input{
		Root:             gj.Root,
		WorkspaceMembers: slices.Clone(gj.WorkspaceMembers),
		Packages:         make([]depgraph.Package, len(gj.Packages)),
	}

	index := make(map[string]int, len(gj.Packages))
	for i, p := range gj.Packages {
		in.Packages[i] = depgraph.Package{
			ID:       p.ID,
			Name:     p.Name,
			Version:  p.Version,
			Source:   p.Source,
			Features: slices.Clone(p.Features),
		}
		index[p.ID] = i
	}

	for _, e := range gj.Edges {
		i, ok := index[e.From]
		if !ok {
			return depgraph.Input{}, errs.New(errs.ErrCodeInvalidGraph, "edge %s -> %s leaves an unknown package", e.From, e.To)
		}
		dep := depgraph.Dependency{ID: e.To}
		for _, k := range e.Kinds {
			dep.Kinds = append(dep.Kinds, depgraph.ParseDepKind(k))
		}
		in.Packages[i].Dependencies = append(in.Packages[i].Dependencies, dep)
	}

	return in, nil
}

// ToGraph converts a Graph to a validated engine graph.
func ToGraph(gj Graph) (*depgraph.Graph, error) {
	in, err := ToInput(gj)
	if err != nil {
		return nil, err
	}
	return depgraph.New(in)
}

// =============================================================================
// Internal Helpers
// =============================================================================

// edgeKinds spells the annotation of e. Plain normal edges serialize
// without kinds.
func edgeKinds(e depgraph.Edge) []string {
	if !e.Dev && !e.Build {
		return nil
	}
	var kinds []string
	if e.NonDev && !e.Build {
		kinds = append(kinds, KindNormal)
	}
	if e.Dev {
		kinds = append(kinds, KindDev)
	}
	if e.Build {
		kinds = append(kinds, KindBuild)
	}
	return kinds
}
