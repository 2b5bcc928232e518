package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds registry context to a logger.
// Returns a new logger with the registry_id field attached.
func EnrichLogger(logger *slog.Logger, registryID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("registry_id", registryID),
	)
}

// LogCleanupStart logs the start of a bulk-cleanup sweep.
func LogCleanupStart(logger *slog.Logger, entries int) {
	if logger == nil {
		return
	}
	logger.Debug("cleanup starting",
		slog.Int("entries", entries),
	)
}

// LogCleanupComplete logs a completed bulk-cleanup sweep.
func LogCleanupComplete(logger *slog.Logger, disposed int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("cleanup completed",
		slog.Int("disposed", disposed),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogOpaqueTask warns that a tracked payload carries no recognizable
// teardown capability and will no-op at disposal.
func LogOpaqueTask(logger *slog.Logger, key any, payloadType string) {
	if logger == nil {
		return
	}
	logger.Warn("task has no teardown capability",
		slog.Any("key", key),
		slog.String("payload_type", payloadType),
	)
}

// LogDisposalPanic logs a disposal action that panicked. The sweep continues
// with the remaining entries; the panic is isolated to the one task.
func LogDisposalPanic(logger *slog.Logger, key any, kind string, recovered any) {
	if logger == nil {
		return
	}
	logger.Error("task disposal panicked",
		slog.Any("key", key),
		slog.String("task_kind", kind),
		slog.Any("panic", recovered),
	)
}

// LogCloseError logs a non-fatal Close error from a teardown task.
func LogCloseError(logger *slog.Logger, key any, err error) {
	if logger == nil {
		return
	}
	logger.Warn("task close failed",
		slog.Any("key", key),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000.0
	}
}
