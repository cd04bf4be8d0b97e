package cargo

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// Lockfile decodes Cargo.lock files. Lockfiles hold the full transitive
// closure, but no dependency kinds and no features.
type Lockfile struct{}

func (Lockfile) Type() Format { return FormatLockfile }

func (Lockfile) Supports(name string) bool {
	return strings.EqualFold(filepath.Base(name), "Cargo.lock")
}

func (Lockfile) Decode(r io.Reader) (depgraph.Input, error) { return DecodeLockfile(r) }

type lockFile struct {
	Version  int           `toml:"version"`
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

func (p lockPackage) key() depgraph.PackageKey {
	return depgraph.PackageKey{Name: p.Name, Version: p.Version, Source: p.Source}
}

// DecodeLockfile reads a Cargo.lock document.
//
// Package ids are the lockfile spelling of each key, "name version" or
// "name version (source)". Dependency entries may abbreviate to "name" or
// "name version" when that is unambiguous; an entry matching no package, or
// more than one, is an ErrCodeInvalidGraph error.
func DecodeLockfile(r io.Reader) (depgraph.Input, error) {
	var lock lockFile
	if _, err := toml.NewDecoder(r).Decode(&lock); err != nil {
		return depgraph.Input{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode Cargo.lock")
	}

	byName := make(map[string][]int, len(lock.Packages))
	for i, p := range lock.Packages {
		if p.Name == "" || p.Version == "" {
			return depgraph.Input{}, errs.New(errs.ErrCodeInvalidFormat, "Cargo.lock package %d has no name or version", i+1)
		}
		byName[p.Name] = append(byName[p.Name], i)
	}

	in := depgraph.Input{Packages: make([]depgraph.Package, len(lock.Packages))}
	incoming := make(map[string]bool, len(lock.Packages))

	for i, p := range lock.Packages {
		pkg := depgraph.Package{
			ID:      p.key().String(),
			Name:    p.Name,
			Version: p.Version,
			Source:  p.Source,
		}
		for _, spec := range p.Dependencies {
			j, err := resolveLockDep(lock.Packages, byName, spec)
			if err != nil {
				return depgraph.Input{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "package %s", pkg.ID)
			}
			target := lock.Packages[j].key().String()
			pkg.Dependencies = append(pkg.Dependencies, depgraph.Dependency{ID: target})
			incoming[target] = true
		}
		in.Packages[i] = pkg
	}

	var roots []string
	for _, p := range in.Packages {
		if p.Source == "" && !incoming[p.ID] {
			roots = append(roots, p.ID)
		}
	}
	if len(roots) == 1 {
		in.Root = roots[0]
	} else {
		in.WorkspaceMembers = roots
	}

	return in, nil
}

// resolveLockDep finds the package a dependency entry refers to.
func resolveLockDep(pkgs []lockPackage, byName map[string][]int, spec string) (int, error) {
	name, version, source := parseLockDep(spec)

	var match []int
	for _, i := range byName[name] {
		p := pkgs[i]
		if version != "" && p.Version != version {
			continue
		}
		if source != "" && p.Source != source {
			continue
		}
		match = append(match, i)
	}

	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return 0, errs.New(errs.ErrCodeInvalidGraph, "dependency %q matches no package", spec)
	default:
		return 0, errs.New(errs.ErrCodeInvalidGraph, "dependency %q matches %d packages", spec, len(match))
	}
}

// parseLockDep splits "name", "name version" or "name version (source)".
func parseLockDep(spec string) (name, version, source string) {
	spec = strings.TrimSpace(spec)
	if i := strings.Index(spec, " ("); i >= 0 && strings.HasSuffix(spec, ")") {
		source = spec[i+2 : len(spec)-1]
		spec = spec[:i]
	}
	name, version, _ = strings.Cut(spec, " ")
	return name, strings.TrimSpace(version), source
}
