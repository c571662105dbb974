// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in traitforge emit events through the hooks registered here
// instead of depending on a metrics backend. Nothing is recorded unless a
// consumer registers hooks at startup.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnJobStart(ctx, id)
//	// ... configure and render ...
//	observability.Render().OnJobComplete(ctx, id, attempts, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Generation Hooks
// =============================================================================

// GenerationHooks receives events from DNA set generation.
type GenerationHooks interface {
	OnGenerateStart(ctx context.Context, size int)
	OnGenerateComplete(ctx context.Context, size, attempts int, duration time.Duration, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the batch render driver.
type RenderHooks interface {
	// OnJobStart records the start of one configure-and-render step.
	OnJobStart(ctx context.Context, id int)

	// OnRetry records a failed render attempt that will be retried.
	OnRetry(ctx context.Context, id, attempt int, err error)

	// OnJobComplete records the end of a step, successful or not.
	OnJobComplete(ctx context.Context, id, attempts int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from DNA set and checkpoint storage.
type StoreHooks interface {
	// OnLoad records a read; kind is "set" or "cursor".
	OnLoad(ctx context.Context, backend, kind string, hit bool, err error)

	// OnSave records a write; kind is "set" or "cursor".
	OnSave(ctx context.Context, backend, kind string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGenerationHooks is a no-op implementation of GenerationHooks.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnGenerateStart(context.Context, int)                              {}
func (NoopGenerationHooks) OnGenerateComplete(context.Context, int, int, time.Duration, error) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnJobStart(context.Context, int)                              {}
func (NoopRenderHooks) OnRetry(context.Context, int, int, error)                     {}
func (NoopRenderHooks) OnJobComplete(context.Context, int, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, error)       {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generationHooks GenerationHooks = NoopGenerationHooks{}
	renderHooks     RenderHooks     = NoopRenderHooks{}
	storeHooks      StoreHooks      = NoopStoreHooks{}
	hooksMu         sync.RWMutex
)

// SetGenerationHooks registers custom generation hooks.
// This should be called once at application startup.
func SetGenerationHooks(h GenerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generationHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generationHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generationHooks = NoopGenerationHooks{}
	renderHooks = NoopRenderHooks{}
	storeHooks = NoopStoreHooks{}
}
