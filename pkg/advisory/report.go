package advisory

import (
	"cmp"
	"slices"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

// PathFinder resolves attribution paths. [*depgraph.Graph] implements it.
type PathFinder interface {
	PathTo(name, version, sourceHint string) depgraph.PathResult
}

// Vulnerability is a finding with its attribution path.
//
// When no path exists, Path holds only the package name and PathStatus
// says why.
type Vulnerability struct {
	Package        string              `json:"package"`
	PackageVersion string              `json:"package_version"`
	AdvisoryID     string              `json:"advisory_id"`
	Severity       Severity            `json:"severity"`
	Title          string              `json:"title"`
	Path           []string            `json:"path"`
	PathStatus     depgraph.PathStatus `json:"path_status"`
	FixAvailable   bool                `json:"fix_available"`
}

// Summary counts vulnerabilities by severity.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Moderate int `json:"moderate"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Report is the result of [Attribute].
type Report struct {
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Summary         Summary         `json:"summary"`
}

// Attribute resolves every finding against pf, one path query per finding.
// Vulnerabilities are ordered by severity, critical first, then by advisory
// id and package.
func Attribute(pf PathFinder, findings []Finding) Report {
	vulns := make([]Vulnerability, 0, len(findings))
	for _, f := range findings {
		res := pf.PathTo(f.Package, f.Version, f.Source)
		path := res.Path
		if !res.Found() {
			path = []string{f.Package}
		}
		vulns = append(vulns, Vulnerability{
			Package:        f.Package,
			PackageVersion: f.Version,
			AdvisoryID:     f.ID,
			Severity:       f.Severity,
			Title:          f.Title,
			Path:           path,
			PathStatus:     res.Status,
			FixAvailable:   f.FixAvailable,
		})
	}

	slices.SortStableFunc(vulns, func(a, b Vulnerability) int {
		return cmp.Or(
			cmp.Compare(a.Severity.rank(), b.Severity.rank()),
			cmp.Compare(a.AdvisoryID, b.AdvisoryID),
			cmp.Compare(a.Package, b.Package),
			cmp.Compare(a.PackageVersion, b.PackageVersion),
		)
	})

	return Report{Vulnerabilities: vulns, Summary: Summarize(vulns)}
}

// Summarize counts vulns by severity.
func Summarize(vulns []Vulnerability) Summary {
	s := Summary{Total: len(vulns)}
	for _, v := range vulns {
		switch v.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityModerate:
			s.Moderate++
		default:
			s.Low++
		}
	}
	return s
}
