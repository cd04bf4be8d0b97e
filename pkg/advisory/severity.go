package advisory

import (
	"strings"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// Severity is the normalized severity of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// rank orders severities from critical (0) to low (3).
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityModerate:
		return 2
	default:
		return 3
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.rank() <= min.rank()
}

// ParseSeverity normalizes a scanner severity label. "medium" is moderate
// and "none" and "informational" are low.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "moderate", "medium":
		return SeverityModerate, nil
	case "low", "none", "informational", "info":
		return SeverityLow, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown severity %q", s)
}

// SeverityForScore buckets a CVSS base score.
func SeverityForScore(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// resolveSeverity applies the explicit label, then the CVSS vector, then
// the high default. A vector that cannot be scored falls back to high.
func resolveSeverity(label, vector string) (Severity, error) {
	if label != "" {
		return ParseSeverity(label)
	}
	if vector == "" {
		return SeverityHigh, nil
	}
	score, err := BaseScore(vector)
	if err != nil {
		return SeverityHigh, nil
	}
	return SeverityForScore(score), nil
}
