// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about document persistence and validation.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the store and validator
// packages never import a logging or metrics backend directly.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetValidationHooks(&myValidationHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	doc, err := load(path)
//	observability.Store().OnLoad(ctx, path, size, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document persistence.
type StoreHooks interface {
	// OnLoad records a completed load. size is the number of bytes read.
	OnLoad(ctx context.Context, path string, size int, duration time.Duration, err error)

	// OnSave records a completed save. size is the number of bytes written.
	OnSave(ctx context.Context, path string, size int, duration time.Duration, err error)

	// OnRetry records a transient failure that will be retried.
	OnRetry(ctx context.Context, op, path string, attempt int, err error)

	// OnBackup records a backup attempt. A non-nil err means the save
	// continued without a backup.
	OnBackup(ctx context.Context, path, backupPath string, err error)

	// OnLock records a lock acquisition. waited is the time spent blocking.
	OnLock(ctx context.Context, path string, waited time.Duration, err error)
}

// =============================================================================
// Validation Hooks
// =============================================================================

// ValidationHooks receives events from document validation.
type ValidationHooks interface {
	// OnValidate records the outcome of one validation stage
	// ("schema", "semantic" or "drc").
	OnValidate(ctx context.Context, stage string, errors, warnings int, duration time.Duration)

	// OnSchemaSkipped records that schema validation was skipped because the
	// schema could not be loaded.
	OnSchemaSkipped(ctx context.Context, source string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnRetry(context.Context, string, string, int, error)       {}
func (NoopStoreHooks) OnBackup(context.Context, string, string, error)           {}
func (NoopStoreHooks) OnLock(context.Context, string, time.Duration, error)      {}

// NoopValidationHooks is a no-op implementation of ValidationHooks.
type NoopValidationHooks struct{}

func (NoopValidationHooks) OnValidate(context.Context, string, int, int, time.Duration) {}
func (NoopValidationHooks) OnSchemaSkipped(context.Context, string, error)             {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks      StoreHooks      = NoopStoreHooks{}
	validationHooks ValidationHooks = NoopValidationHooks{}
	hooksMu         sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetValidationHooks registers custom validation hooks.
// This should be called once at application startup before any validation.
func SetValidationHooks(h ValidationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		validationHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Validation returns the registered validation hooks.
func Validation() ValidationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return validationHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	validationHooks = NoopValidationHooks{}
}
