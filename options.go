package ocrflow

import "golang.org/x/time/rate"

type options struct {
	logger    *Logger
	metrics   MetricsCollector
	rateLimit rate.Limit
	rateBurst int
}

// Option configures Manager construction. Options cover cross-cutting
// collaborators; resource tunables live in Config.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector sets a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithRateLimit smooths task intake to perSecond submissions with the given
// burst. Waiting for a token counts against the task's deadline. Zero
// perSecond disables the limiter (the default).
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rate.Limit(perSecond)
		if burst <= 0 {
			burst = 1
		}
		o.rateBurst = burst
	}
}
