package advisory

import (
	"strings"

	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// BaseScore scores a CVSS v3.0, v3.1 or v4.0 vector, for example
// "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H". For v3 this is the base
// score; for v4 it is the CVSS-B score of the vector as given.
func BaseScore(vector string) (float64, error) {
	switch {
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		v, err := gocvss31.ParseVector(vector)
		if err != nil {
			return 0, errs.Wrap(errs.ErrCodeInvalidFormat, err, "CVSS vector %q", vector)
		}
		return v.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		v, err := gocvss30.ParseVector(vector)
		if err != nil {
			return 0, errs.Wrap(errs.ErrCodeInvalidFormat, err, "CVSS vector %q", vector)
		}
		return v.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:4.0/"):
		v, err := gocvss40.ParseVector(vector)
		if err != nil {
			return 0, errs.Wrap(errs.ErrCodeInvalidFormat, err, "CVSS vector %q", vector)
		}
		return v.Score(), nil
	}
	return 0, errs.New(errs.ErrCodeUnsupported, "unsupported CVSS version in %q", vector)
}
