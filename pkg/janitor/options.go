package janitor

import (
	"fmt"
	"log/slog"

	"github.com/howmanysmall/nevermore-janitor/pkg/janitor/config"
	"github.com/howmanysmall/nevermore-janitor/pkg/janitor/journal"
	"github.com/howmanysmall/nevermore-janitor/pkg/janitor/observability"
)

// options holds construction-time configuration shared by Manager and
// Registry.
type options struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	store   journal.Store

	warnOpaque       bool
	compactThreshold int
}

// defaultOptions returns the default configuration: stdlib default logger,
// no metrics, no tracing, no journal.
func defaultOptions() options {
	return options{
		logger:           slog.Default(),
		metrics:          observability.NoopMetrics{},
		spans:            observability.NoopSpanManager{},
		warnOpaque:       true,
		compactThreshold: 64,
	}
}

// Option configures a Manager or Registry at construction.
type Option func(*options)

// WithLogger sets the structured logger used for diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}.
//
// Example:
//
//	m := janitor.New(janitor.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithSpanManager sets the trace span manager.
// Default: observability.NoopSpanManager{}.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(o *options) {
		if spans != nil {
			o.spans = spans
		}
	}
}

// WithJournal attaches a disposal journal. Every disposal appends one
// record; append failures are logged, never propagated. The store's
// lifetime belongs to the caller, not the manager.
func WithJournal(store journal.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithWarnOnOpaque controls the diagnostic for payloads with no teardown
// capability. Default: enabled.
func WithWarnOnOpaque(warn bool) Option {
	return func(o *options) {
		o.warnOpaque = warn
	}
}

// WithCompactThreshold sets the minimum order-queue length before tombstone
// compaction is considered. Default: 64.
func WithCompactThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.compactThreshold = n
		}
	}
}

// FromConfig builds options from a loaded configuration.
//
// Recognized keys:
//
//	warn_on_opaque:    bool   (default true)
//	compact_threshold: int    (default 64)
//	metrics:           bool   (default false; enables OTel metrics)
//	tracing:           bool   (default false; enables OTel spans)
//	journal:
//	  driver:          string ("memory" or "sqlite")
//	  path:            string (sqlite file path)
//
// A sqlite journal opened here is owned by the caller; close it when the
// manager is no longer needed.
func FromConfig(cfg config.Config) ([]Option, error) {
	opts := []Option{
		WithWarnOnOpaque(cfg.Bool("warn_on_opaque", true)),
		WithCompactThreshold(cfg.Int("compact_threshold", 64)),
	}

	if cfg.Bool("metrics", false) {
		opts = append(opts, WithMetrics(observability.NewMetricsRecorder()))
	}
	if cfg.Bool("tracing", false) {
		opts = append(opts, WithSpanManager(observability.NewSpanManager()))
	}

	jc := cfg.Sub("journal")
	switch driver := jc.String("driver", ""); driver {
	case "":
		// No journal configured.
	case "memory":
		opts = append(opts, WithJournal(journal.NewMemoryStore()))
	case "sqlite":
		path := jc.String("path", "")
		if path == "" {
			return nil, fmt.Errorf("journal driver %q requires a path", driver)
		}
		store, err := journal.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		opts = append(opts, WithJournal(store))
	default:
		return nil, fmt.Errorf("unknown journal driver: %q", driver)
	}

	return opts, nil
}
