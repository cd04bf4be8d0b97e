package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/observability"
)

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeNotFound, errs.ErrCodePackageNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidPackage,
		errs.ErrCodeInvalidPath, errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidGraph, errs.ErrCodeDepthExceeded, errs.ErrCodeEmptyWorkspace:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errs.ToResponse(err)
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	writeJSON(w, statusFor(resp.Code), resp)
}

func notFound(path string) error {
	return errs.New(errs.ErrCodeNotFound, "no route for %s", path)
}
