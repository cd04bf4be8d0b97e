package depgraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/upkeep/pkg/semver"
)

// DuplicateIndex maps a package name to the distinct versions resolved for
// it. A name is a duplicate when it has more than one version.
type DuplicateIndex map[string]map[string]struct{}

// NewDuplicateIndex records every node of g. It runs in O(nodes).
func NewDuplicateIndex(g *Graph) DuplicateIndex {
	idx := make(DuplicateIndex)
	for _, id := range g.order {
		idx.add(g.nodes[id].Key.Name, g.nodes[id].Key.Version)
	}
	return idx
}

func (d DuplicateIndex) add(name, version string) {
	versions, ok := d[name]
	if !ok {
		versions = make(map[string]struct{})
		d[name] = versions
	}
	versions[version] = struct{}{}
}

// IsDuplicate reports whether name resolved to more than one version.
func (d DuplicateIndex) IsDuplicate(name string) bool {
	return len(d[name]) > 1
}

// Versions returns the versions of name in ascending semver order.
func (d DuplicateIndex) Versions(name string) []string {
	return semver.Sorted(slices.Collect(maps.Keys(d[name])))
}

// Duplicates returns every duplicate name, sorted.
func (d DuplicateIndex) Duplicates() []string {
	var names []string
	for name, versions := range d {
		if len(versions) > 1 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Duplicate is one entry of a duplicate report.
type Duplicate struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// Report lists every duplicate name with its versions.
func (d DuplicateIndex) Report() []Duplicate {
	names := d.Duplicates()
	out := make([]Duplicate, len(names))
	for i, name := range names {
		out[i] = Duplicate{Name: name, Versions: d.Versions(name)}
	}
	return out
}
