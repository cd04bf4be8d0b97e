package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/upkeep/pkg/buildinfo"
	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/pipeline"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string    `json:"status"`
	Path     string    `json:"path"`
	Format   string    `json:"format"`
	Nodes    int       `json:"nodes"`
	Edges    int       `json:"edges"`
	LoadedAt time.Time `json:"loaded_at"`
	Version  string    `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Path:     snap.Path,
		Format:   string(snap.Format),
		Nodes:    snap.Graph.NodeCount(),
		Edges:    snap.Graph.EdgeCount(),
		LoadedAt: snap.LoadedAt,
		Version:  buildinfo.Version,
	})
}

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	opts, err := treeOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	res, err := s.runner.Tree(r.Context(), s.Snapshot(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[res.Format])
	w.Header().Set(CacheHeader, cacheStatus(res.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

// CacheHeader reports whether a tree response came from the artifact cache.
const CacheHeader = "X-Cache"

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// treeOptions parses tree query parameters. Format defaults to json.
func treeOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Invert: q.Get("invert"),
		Format: q.Get("format"),
	}
	if opts.Format == "" {
		opts.Format = pipeline.FormatJSON
	}

	if v := q.Get("depth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "depth: %q is not an integer", v)
		}
		opts.MaxDepth = depgraph.Depth(depth)
	}
	if v := q.Get("ceiling"); v != "" {
		ceiling, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "ceiling: %q is not an integer", v)
		}
		opts.Ceiling = ceiling
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"duplicates", &opts.DuplicatesOnly},
		{"features", &opts.ShowFeatures},
		{"no_dev", &opts.ExcludeDev},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "%s: %q is not a boolean", f.name, v)
		}
		*f.dst = b
	}
	return opts, nil
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.runner.Why(r.Context(), s.Snapshot(), q.Get("name"), q.Get("version"), q.Get("source"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Duplicates(s.Snapshot()))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Export(s.Snapshot()))
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	report, err := s.runner.Audit(r.Context(), s.Snapshot(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
