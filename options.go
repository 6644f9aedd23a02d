package slate

import (
	"time"

	"github.com/zzstoatzz/slate/codec"
)

type options struct {
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	clock            func() time.Time
	scanWindow       int
}

// Option configures an EventLog or MemoryStore at construction time.
type Option func(*options)

func defaultOptions() options {
	return options{
		codec:            codec.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		clock:            nowUTC,
		scanWindow:       10_000,
	}
}

// WithCodec configures the codec used for record envelopes.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger configures structured logging. The default logger discards all
// output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsCollector configures operational metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

// WithClock configures the time source used for event timestamps and
// created_at/updated_at fields. The clock's result is normalized to UTC.
// Mainly useful in tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithScanWindow bounds predicate scans: queries whose selector is not a key
// prefix scan at most this many records. Matches beyond the window are
// silently missed, which is the documented scalability tradeoff of
// non-prefix queries.
func WithScanWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.scanWindow = n
		}
	}
}
