package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

func TestPipelineHooks(t *testing.T) {
	m, _ := newTestMetrics(t)
	ctx := context.Background()

	m.OnLoadStart(ctx, "Cargo.lock")
	m.OnLoadComplete(ctx, "Cargo.lock", "Cargo.lock", 42, 10*time.Millisecond, nil)
	m.OnBuildComplete(ctx, 12, time.Millisecond, nil)
	m.OnBuildComplete(ctx, 0, time.Millisecond, errors.New("boom"))
	m.OnRenderComplete(ctx, "svg", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.GraphNodes); got != 42 {
		t.Errorf("GraphNodes = %v, want 42", got)
	}
	tests := []struct {
		stage, status string
		want          float64
	}{
		{"load", "success", 1},
		{"build", "success", 1},
		{"build", "error", 1},
		{"render_svg", "success", 1},
		{"render_svg", "error", 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.StageTotal.WithLabelValues(tt.stage, tt.status)); got != tt.want {
			t.Errorf("StageTotal{%s,%s} = %v, want %v", tt.stage, tt.status, got, tt.want)
		}
	}
	if n := testutil.CollectAndCount(m.TreeNodes); n != 1 {
		t.Errorf("TreeNodes collected %d metrics, want 1", n)
	}
}

func TestPathHooks(t *testing.T) {
	m, _ := newTestMetrics(t)
	ctx := context.Background()

	m.OnPathResolved(ctx, "serde", "1.0.210", "found", 3)
	m.OnPathResolved(ctx, "ghost", "0.1.0", "not_found", 0)
	m.OnPathResolved(ctx, "orphan", "2.0.0", "no_path", 0)
	m.OnPathResolved(ctx, "log", "0.4.22", "found", 2)

	for status, want := range map[string]float64{"found": 2, "not_found": 1, "no_path": 1} {
		if got := testutil.ToFloat64(m.PathQueries.WithLabelValues(status)); got != want {
			t.Errorf("PathQueries{%s} = %v, want %v", status, got, want)
		}
	}
}

func TestHTTPHooks(t *testing.T) {
	m, _ := newTestMetrics(t)
	ctx := context.Background()

	m.OnRequest(ctx, "GET", "/tree")
	if got := testutil.ToFloat64(m.HTTPInFlight); got != 1 {
		t.Errorf("HTTPInFlight = %v, want 1", got)
	}
	m.OnError(ctx, "GET", "/tree", errs.New(errs.ErrCodePackageNotFound, "no package named %q", "x"))
	m.OnResponse(ctx, "GET", "/tree", 404, time.Millisecond)
	m.OnError(ctx, "POST", "/audit", errors.New("plain"))

	if got := testutil.ToFloat64(m.HTTPInFlight); got != 0 {
		t.Errorf("HTTPInFlight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/tree", "404")); got != 1 {
		t.Errorf("HTTPRequests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrors.WithLabelValues("GET", "/tree", "PACKAGE_NOT_FOUND")); got != 1 {
		t.Errorf("HTTPErrors{PACKAGE_NOT_FOUND} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrors.WithLabelValues("POST", "/audit", "INTERNAL_ERROR")); got != 1 {
		t.Errorf("HTTPErrors{INTERNAL_ERROR} = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.OnPathResolved(context.Background(), "serde", "1.0.210", "found", 2)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `upkeep_path_queries_total{status="found"} 1`) {
		t.Errorf("metrics output missing path counter:\n%s", body)
	}
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("New() on the same registry did not panic")
		}
	}()
	New(reg)
}
