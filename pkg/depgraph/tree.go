package depgraph

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/semver"
)

// DefaultCeiling is the hard traversal depth used when Options.Ceiling is 0.
const DefaultCeiling = 1000

// ReversePrefix labels the synthetic root of an inverted tree whose target
// name resolved to several versions.
const ReversePrefix = "reverse:"

// unresolvedName sorts after every valid package name.
const unresolvedName = "~"

// TreeNode is one node of a display tree. Synthetic roots have an empty ID
// and Version.
type TreeNode struct {
	Name         string      `json:"name"`
	Version      string      `json:"version"`
	ID           string      `json:"package_id"`
	Features     []string    `json:"features"`
	Dependencies []*TreeNode `json:"dependencies"`
	IsDev        bool        `json:"is_dev"`
	IsBuild      bool        `json:"is_build"`
	Duplicate    bool        `json:"duplicate"`
}

// IsSynthetic reports whether the node carries no package identity.
func (n *TreeNode) IsSynthetic() bool { return n.ID == "" }

func syntheticNode(name string) *TreeNode {
	return &TreeNode{Name: name, Features: []string{}, Dependencies: []*TreeNode{}}
}

// Options controls tree construction.
type Options struct {
	// MaxDepth stops expansion at this depth when non-nil. Depth 0 is the root.
	MaxDepth *int
	// DuplicatesOnly prunes branches that lead to no duplicate package.
	DuplicatesOnly bool
	// ShowFeatures fills TreeNode.Features.
	ShowFeatures bool
	// ExcludeDev drops edges whose every declared kind is dev.
	ExcludeDev bool
	// Invert builds the reverse-dependency tree of the named package.
	Invert string
	// Ceiling overrides DefaultCeiling when positive.
	Ceiling int
}

// Depth returns a pointer suitable for Options.MaxDepth.
func Depth(n int) *int { return &n }

// Build produces the display tree for g.
//
// Without Invert, the single root is traversed forward from depth 0; a
// virtual workspace gets an unnamed synthetic root whose children are the
// members at depth 1. With Invert, a unique match is traversed over the
// inverted adjacency from depth 0, and an ambiguous name gets a
// "reverse:<name>" root with one child per version at depth 1.
//
// Returns ErrCodePackageNotFound for an unknown Invert name,
// ErrCodeEmptyWorkspace when there is no root and no member,
// ErrCodeInvalidGraph when traversal meets an unknown id, and
// ErrCodeDepthExceeded when a path grows past the ceiling.
func Build(g *Graph, dups DuplicateIndex, opts Options) (*TreeNode, error) {
	b := &builder{
		g:        g,
		dups:     dups,
		opts:     opts,
		ceiling:  opts.Ceiling,
		expanded: make(map[string]bool),
		onPath:   make(map[string]bool),
	}
	if b.ceiling <= 0 {
		b.ceiling = DefaultCeiling
	}

	adj := g.Forward(opts.ExcludeDev)

	if opts.Invert != "" {
		b.adj = Invert(adj)
		matches := g.IDsByName(opts.Invert)
		if len(matches) == 0 {
			return nil, errs.New(errs.ErrCodePackageNotFound, "no package named %q in the resolved graph", opts.Invert)
		}
		if len(matches) == 1 {
			return b.build(matches[0], 0, false, false)
		}
		slices.SortStableFunc(matches, func(a, c string) int {
			return semver.Compare(g.nodes[a].Key.Version, g.nodes[c].Key.Version)
		})
		return b.buildSynthetic(ReversePrefix+opts.Invert, matches)
	}

	b.adj = adj
	if g.root != "" {
		return b.build(g.root, 0, false, false)
	}
	if len(g.members) == 0 {
		return nil, errs.New(errs.ErrCodeEmptyWorkspace, "no root package and no workspace members")
	}
	return b.buildSynthetic("", g.members)
}

// builder holds the traversal state of one Build call.
type builder struct {
	g        *Graph
	adj      Adjacency
	dups     DuplicateIndex
	opts     Options
	ceiling  int
	expanded map[string]bool // packages whose subtree has been built
	onPath   map[string]bool // packages on the current root-to-node path
}

func (b *builder) buildSynthetic(name string, ids []string) (*TreeNode, error) {
	root := syntheticNode(name)
	for _, id := range ids {
		child, err := b.build(id, 1, false, false)
		if err != nil {
			return nil, err
		}
		if child != nil {
			root.Dependencies = append(root.Dependencies, child)
		}
	}
	return root, nil
}

// build returns the subtree for id at depth, or nil when duplicates-only
// pruning drops it. The node at depth 0 is never pruned.
func (b *builder) build(id string, depth int, isDev, isBuild bool) (*TreeNode, error) {
	n, ok := b.g.nodes[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidGraph, "package %q missing from the resolved graph", id)
	}
	if depth > b.ceiling {
		return nil, errs.New(errs.ErrCodeDepthExceeded,
			"dependency chain deeper than %d levels at %s", b.ceiling, n.Key)
	}

	node := &TreeNode{
		Name:         n.Key.Name,
		Version:      n.Key.Version,
		ID:           n.ID,
		Features:     []string{},
		Dependencies: []*TreeNode{},
		IsDev:        isDev,
		IsBuild:      isBuild,
		Duplicate:    b.dups.IsDuplicate(n.Key.Name),
	}
	if b.opts.ShowFeatures {
		node.Features = slices.Clone(n.Features)
	}

	if b.opts.MaxDepth != nil && depth >= *b.opts.MaxDepth {
		return b.leaf(node, depth), nil
	}
	if b.expanded[id] {
		return b.leaf(node, depth), nil
	}
	b.expanded[id] = true

	b.onPath[id] = true
	defer delete(b.onPath, id)

	for _, e := range b.sortedEdges(id) {
		if b.onPath[e.To] {
			continue
		}
		child, err := b.build(e.To, depth+1, e.Dev, e.Build)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Dependencies = append(node.Dependencies, child)
		}
	}

	if b.prunable(node, depth) && len(node.Dependencies) == 0 {
		return nil, nil
	}
	return node, nil
}

// leaf returns a terminal node, or nil if duplicates-only drops it.
func (b *builder) leaf(node *TreeNode, depth int) *TreeNode {
	if b.prunable(node, depth) {
		return nil
	}
	return node
}

func (b *builder) prunable(node *TreeNode, depth int) bool {
	return b.opts.DuplicatesOnly && !node.Duplicate && depth > 0
}

// sortedEdges orders the edges of id by target name. Targets missing from
// the graph sort last and fail when visited.
func (b *builder) sortedEdges(id string) []Edge {
	edges := slices.Clone(b.adj[id])
	slices.SortStableFunc(edges, func(x, y Edge) int {
		return strings.Compare(b.nameOf(x.To), b.nameOf(y.To))
	})
	return edges
}

func (b *builder) nameOf(id string) string {
	if n, ok := b.g.nodes[id]; ok {
		return n.Key.Name
	}
	return unresolvedName
}
