package cargo

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// Decoder turns one resolved-graph format into engine input.
type Decoder interface {
	// Decode reads the whole document from r.
	Decode(r io.Reader) (depgraph.Input, error)
	// Supports reports whether this decoder handles the given file name.
	Supports(filename string) bool
	// Type returns the format identifier.
	Type() Format
}

// Metadata decodes `cargo metadata --format-version 1` output.
type Metadata struct{}

func (Metadata) Type() Format { return FormatMetadata }

func (Metadata) Supports(name string) bool {
	return name == "-" || strings.EqualFold(pathExt(name), ".json")
}

func (Metadata) Decode(r io.Reader) (depgraph.Input, error) { return DecodeMetadata(r) }

// DecodeMetadata reads cargo metadata JSON.
//
// Packages give identity; resolve.nodes give features and edges. A dep with
// no dep_kinds entry is normal, and a null kind is cargo's spelling of
// normal. Nodes written by cargo before dep_kinds existed only list
// dependency ids; those edges are normal too. Metadata produced with
// --no-deps has no resolve section and is rejected with ErrCodeInvalidInput.
func DecodeMetadata(r io.Reader) (depgraph.Input, error) {
	var meta metadataFile
	if err := json.NewDecoder(r).Decode(&meta); err != nil {
		return depgraph.Input{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode cargo metadata")
	}
	if meta.Resolve == nil {
		return depgraph.Input{}, errs.New(errs.ErrCodeInvalidInput,
			"cargo metadata has no resolve section (was it produced with --no-deps?)")
	}

	nodes := make(map[string]metadataNode, len(meta.Resolve.Nodes))
	for _, n := range meta.Resolve.Nodes {
		nodes[n.ID] = n
	}

	in := depgraph.Input{
		Packages:         make([]depgraph.Package, 0, len(meta.Packages)),
		WorkspaceMembers: meta.WorkspaceMembers,
	}
	if meta.Resolve.Root != nil {
		in.Root = *meta.Resolve.Root
	}

	for _, p := range meta.Packages {
		pkg := depgraph.Package{
			ID:      p.ID,
			Name:    p.Name,
			Version: p.Version,
		}
		if p.Source != nil {
			pkg.Source = *p.Source
		}
		if n, ok := nodes[p.ID]; ok {
			pkg.Features = n.Features
			pkg.Dependencies = n.dependencies()
		}
		in.Packages = append(in.Packages, pkg)
	}

	return in, nil
}

type metadataFile struct {
	Packages         []metadataPackage `json:"packages"`
	WorkspaceMembers []string          `json:"workspace_members"`
	Resolve          *metadataResolve  `json:"resolve"`
}

type metadataPackage struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Source  *string `json:"source"`
}

type metadataResolve struct {
	Nodes []metadataNode `json:"nodes"`
	Root  *string        `json:"root"`
}

type metadataNode struct {
	ID           string        `json:"id"`
	Deps         []metadataDep `json:"deps"`
	Dependencies []string      `json:"dependencies"`
	Features     []string      `json:"features"`
}

type metadataDep struct {
	Name     string            `json:"name"`
	Pkg      string            `json:"pkg"`
	DepKinds []metadataDepKind `json:"dep_kinds"`
}

type metadataDepKind struct {
	Kind   *string `json:"kind"`
	Target *string `json:"target"`
}

func (n metadataNode) dependencies() []depgraph.Dependency {
	if n.Deps == nil {
		deps := make([]depgraph.Dependency, len(n.Dependencies))
		for i, id := range n.Dependencies {
			deps[i] = depgraph.Dependency{ID: id}
		}
		return deps
	}

	deps := make([]depgraph.Dependency, len(n.Deps))
	for i, d := range n.Deps {
		dep := depgraph.Dependency{ID: d.Pkg}
		for _, k := range d.DepKinds {
			kind := ""
			if k.Kind != nil {
				kind = *k.Kind
			}
			dep.Kinds = append(dep.Kinds, depgraph.ParseDepKind(kind))
		}
		deps[i] = dep
	}
	return deps
}
