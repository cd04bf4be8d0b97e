package depgraph

import "slices"

// PathStatus classifies the outcome of [Graph.PathTo].
type PathStatus string

const (
	// PathFound means a path from a root to the target exists.
	PathFound PathStatus = "found"
	// PathNotFound means no package matched the requested name and version.
	PathNotFound PathStatus = "not_found"
	// PathNoPath means the package exists but no root reaches it.
	PathNoPath PathStatus = "no_path"
)

// PathResult is the outcome of an attribution query. Path holds package
// names from a root to the target and is set only when Status is PathFound.
type PathResult struct {
	Status PathStatus `json:"status"`
	Path   []string   `json:"path,omitempty"`
	ID     string     `json:"package_id,omitempty"`
}

// Found reports whether a path was reconstructed.
func (r PathResult) Found() bool { return r.Status == PathFound }

// Resolve finds the package for (name, version, sourceHint). It tries the
// exact key, then the key without a source, then any source, first match
// wins. Advisory sources are not always spelled like the graph's.
func (g *Graph) Resolve(name, version, sourceHint string) (string, bool) {
	if id, ok := g.byKey[PackageKey{Name: name, Version: version, Source: sourceHint}]; ok {
		return id, true
	}
	if sourceHint != "" {
		if id, ok := g.byKey[PackageKey{Name: name, Version: version}]; ok {
			return id, true
		}
	}
	for _, id := range g.byName[name] {
		if g.nodes[id].Key.Version == version {
			return id, true
		}
	}
	return "", false
}

// PathTo returns the shortest chain of package names from any root to the
// package (name, version, sourceHint).
//
// The search is a single breadth-first pass seeded with all roots in order,
// over every forward edge regardless of kind. Each node keeps its first
// discovered predecessor, so ties go to the earlier root and then to the
// earlier edge.
func (g *Graph) PathTo(name, version, sourceHint string) PathResult {
	target, ok := g.Resolve(name, version, sourceHint)
	if !ok {
		return PathResult{Status: PathNotFound}
	}

	ids, ok := g.shortestPath(target)
	if !ok {
		return PathResult{Status: PathNoPath, ID: target}
	}

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.nodes[id].Key.Name
	}
	return PathResult{Status: PathFound, Path: names, ID: target}
}

// shortestPath returns package ids from a root to target.
func (g *Graph) shortestPath(target string) ([]string, bool) {
	roots := g.Roots()
	visited := make(map[string]bool, len(g.nodes))
	parent := make(map[string]string, len(g.nodes))
	queue := make([]string, 0, len(roots))

	for _, r := range roots {
		if visited[r] {
			continue
		}
		visited[r] = true
		queue = append(queue, r)
	}

	found := false
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == target {
			found = true
			break
		}
		for _, e := range g.forward[id] {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			parent[e.To] = id
			queue = append(queue, e.To)
		}
	}
	if !found {
		return nil, false
	}

	path := []string{target}
	for cur := target; ; {
		p, ok := parent[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	slices.Reverse(path)
	return path, true
}
