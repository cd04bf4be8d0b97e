package advisory

import (
	"bytes"
	"encoding/json"
	"io"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// Finding is one vulnerable package reported by a scanner.
type Finding struct {
	ID           string   `json:"id"`
	Package      string   `json:"package"`
	Version      string   `json:"version"`
	Source       string   `json:"source,omitempty"`
	Title        string   `json:"title"`
	Severity     Severity `json:"severity"`
	FixAvailable bool     `json:"fix_available"`
}

// auditReport is the subset of `cargo audit --json` output we read.
type auditReport struct {
	Vulnerabilities *struct {
		List []auditEntry `json:"list"`
	} `json:"vulnerabilities"`
}

type auditEntry struct {
	Advisory struct {
		ID       string  `json:"id"`
		Package  string  `json:"package"`
		Title    string  `json:"title"`
		CVSS     *string `json:"cvss"`
		Severity string  `json:"severity"`
	} `json:"advisory"`
	Versions struct {
		Patched []string `json:"patched"`
	} `json:"versions"`
	Package struct {
		Name    string  `json:"name"`
		Version string  `json:"version"`
		Source  *string `json:"source"`
	} `json:"package"`
}

// plainFinding is the flat shape accepted from other scanners.
type plainFinding struct {
	ID           string   `json:"id"`
	Package      string   `json:"package"`
	Version      string   `json:"version"`
	Source       string   `json:"source"`
	Title        string   `json:"title"`
	Severity     string   `json:"severity"`
	CVSS         string   `json:"cvss"`
	Patched      []string `json:"patched"`
	FixAvailable *bool    `json:"fix_available"`
}

// Decode reads findings from r.
//
// A JSON array is read as a plain finding list; an object must be a cargo
// audit report with a "vulnerabilities" section. Entries without a package
// name or version are rejected with ErrCodeInvalidFormat.
func Decode(r io.Reader) ([]Finding, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read advisory report")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "empty advisory report")
	}
	if data[0] == '[' {
		return decodePlain(data)
	}
	return decodeAudit(data)
}

func decodeAudit(data []byte) ([]Finding, error) {
	var report auditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode cargo audit report")
	}
	if report.Vulnerabilities == nil {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "cargo audit report has no vulnerabilities section")
	}

	findings := make([]Finding, 0, len(report.Vulnerabilities.List))
	for i, e := range report.Vulnerabilities.List {
		name := e.Package.Name
		if name == "" {
			name = e.Advisory.Package
		}
		if name == "" || e.Package.Version == "" {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "vulnerability %d has no package name or version", i+1)
		}
		vector := ""
		if e.Advisory.CVSS != nil {
			vector = *e.Advisory.CVSS
		}
		sev, err := resolveSeverity(e.Advisory.Severity, vector)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "advisory %s", e.Advisory.ID)
		}
		f := Finding{
			ID:           e.Advisory.ID,
			Package:      name,
			Version:      e.Package.Version,
			Title:        e.Advisory.Title,
			Severity:     sev,
			FixAvailable: len(e.Versions.Patched) > 0,
		}
		if e.Package.Source != nil {
			f.Source = *e.Package.Source
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func decodePlain(data []byte) ([]Finding, error) {
	var list []plainFinding
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode findings")
	}

	findings := make([]Finding, 0, len(list))
	for i, p := range list {
		if p.Package == "" || p.Version == "" {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "finding %d has no package name or version", i+1)
		}
		sev, err := resolveSeverity(p.Severity, p.CVSS)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "finding %s", p.ID)
		}
		fix := len(p.Patched) > 0
		if p.FixAvailable != nil {
			fix = *p.FixAvailable
		}
		findings = append(findings, Finding{
			ID:           p.ID,
			Package:      p.Package,
			Version:      p.Version,
			Source:       p.Source,
			Title:        p.Title,
			Severity:     sev,
			FixAvailable: fix,
		})
	}
	return findings, nil
}
