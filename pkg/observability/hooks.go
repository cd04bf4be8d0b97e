// Package observability lets callers watch what upkeep does without tying
// any package to a metrics or tracing backend.
//
// Three interfaces cover the observable events: [PipelineHooks] for graph
// loads, tree builds and renders, [PathHooks] for attribution queries, and
// [HTTPHooks] for requests served by the API. Each has a no-op
// implementation that is installed until something else is registered.
//
// Only main (or a test) registers hooks. The engine in pkg/depgraph never
// calls them; pkg/pipeline and internal/server do. Package metrics implements
// all three interfaces with Prometheus collectors:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	observability.SetPipelineHooks(m)
//	observability.SetPathHooks(m)
//	observability.SetHTTPHooks(m)
//	defer observability.Reset()
//
// Emitting an event is a lookup plus a call:
//
//	observability.Pipeline().OnBuildStart(ctx, invert)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the pipeline runner.
type PipelineHooks interface {
	// Load events. Format is the detected input format.
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path, format string, nodeCount int, duration time.Duration, err error)

	// Build events. Invert is empty for forward trees.
	OnBuildStart(ctx context.Context, invert string)
	OnBuildComplete(ctx context.Context, nodeCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Path Hooks
// =============================================================================

// PathHooks receives attribution query results.
type PathHooks interface {
	// OnPathResolved records one query. Status is "found", "not_found" or
	// "no_path"; length is the number of packages on the path.
	OnPathResolved(ctx context.Context, name, version, status string, length int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request before routing.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status of a request. Route is the
	// matched pattern, so path parameters do not multiply label values.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error code.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnBuildStart(context.Context, string)                           {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// NoopPathHooks is a no-op implementation of PathHooks.
type NoopPathHooks struct{}

func (NoopPathHooks) OnPathResolved(context.Context, string, string, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry holds the installed hooks. Readers take a snapshot under the
// read lock and call hooks outside it.
type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	path     PathHooks
	http     HTTPHooks
}

var hooks = registry{
	pipeline: NoopPipelineHooks{},
	path:     NoopPathHooks{},
	http:     NoopHTTPHooks{},
}

func (r *registry) update(fn func(*registry)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

// SetPipelineHooks installs h for pipeline events. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	hooks.update(func(r *registry) { r.pipeline = h })
}

// SetPathHooks installs h for path queries. A nil h is ignored.
func SetPathHooks(h PathHooks) {
	if h == nil {
		return
	}
	hooks.update(func(r *registry) { r.path = h })
}

// SetHTTPHooks installs h for API requests. Call it before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	hooks.update(func(r *registry) { r.http = h })
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Path returns the installed path hooks.
func Path() PathHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.path
}

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.http
}

// Reset puts the no-op hooks back. Tests that install hooks defer it.
func Reset() {
	hooks.update(func(r *registry) {
		r.pipeline = NoopPipelineHooks{}
		r.path = NoopPathHooks{}
		r.http = NoopHTTPHooks{}
	})
}
