// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without the conversion
// libraries depending on a metrics backend. Consumers register hooks at
// startup to receive events about conversion runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Metrics] is the bundled implementation. It records Prometheus
// counters and histograms and can dump them in the node exporter textfile
// format, which suits a CLI that exits after each batch.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewMetrics()
//	    observability.SetPipelineHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run conversions
//	    m.WriteTextfile("/var/lib/node_exporter/shadebridge.prom")
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRunStart(ctx, root, renderer)
//	// ... convert ...
//	observability.Pipeline().OnRunComplete(ctx, root, renderer, nodes, diags, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Pipeline stage names passed to [PipelineHooks.OnStageComplete].
const (
	StageLoad        = "load"
	StagePreprocess  = "preprocess"
	StageMap         = "map"
	StagePostprocess = "postprocess"
	StageFinalize    = "finalize"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from conversion runs.
type PipelineHooks interface {
	// Run events
	OnRunStart(ctx context.Context, root, renderer string)
	OnRunComplete(ctx context.Context, root, renderer string, nodes, diagnostics int, duration time.Duration, err error)

	// OnStageComplete records one finished stage of a run.
	OnStageComplete(ctx context.Context, stage string, nodes int, duration time.Duration)

	// OnHookFailure records a rewrite hook that failed and was skipped.
	OnHookFailure(ctx context.Context, phase, nodeType string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, time.Duration) {}
func (NoopPipelineHooks) OnHookFailure(context.Context, string, string)                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any conversion.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
