package cli

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// statsHooks counts store and validation events for the verbose summary
// printed after each command.
type statsHooks struct {
	mu sync.Mutex

	loads, saves   int
	bytesRead      int
	bytesWritten   int
	retries        int
	backups        int
	backupFailures int
	lockWait       time.Duration
	stages         map[string]time.Duration
	schemaSkipped  bool
}

func newStatsHooks() *statsHooks {
	return &statsHooks{stages: make(map[string]time.Duration)}
}

func (h *statsHooks) OnLoad(_ context.Context, _ string, size int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.loads++
		h.bytesRead += size
	}
}

func (h *statsHooks) OnSave(_ context.Context, _ string, size int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.saves++
		h.bytesWritten += size
	}
}

func (h *statsHooks) OnRetry(context.Context, string, string, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retries++
}

func (h *statsHooks) OnBackup(_ context.Context, _, _ string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.backupFailures++
		return
	}
	h.backups++
}

func (h *statsHooks) OnLock(_ context.Context, _ string, waited time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lockWait += waited
}

func (h *statsHooks) OnValidate(_ context.Context, stage string, _, _ int, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages[stage] += d
}

func (h *statsHooks) OnSchemaSkipped(context.Context, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.schemaSkipped = true
}

// log writes the collected counters at debug level.
func (h *statsHooks) log(l *log.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loads+h.saves > 0 {
		l.Debug("store activity",
			"loads", h.loads, "read", h.bytesRead,
			"saves", h.saves, "written", h.bytesWritten,
			"retries", h.retries, "backups", h.backups, "backup_failures", h.backupFailures,
			"lock_wait", h.lockWait.Round(time.Millisecond))
	}
	for _, stage := range slices.Sorted(maps.Keys(h.stages)) {
		l.Debug("validation stage", "stage", stage, "took", h.stages[stage].Round(time.Microsecond))
	}
	if h.schemaSkipped {
		l.Debug("schema validation was skipped")
	}
}
