package engine

import "context"

// Input is one unit of recognition work handed to a provider.
type Input struct {
	// ID identifies the input for diagnostics and result correlation.
	ID string

	// Image holds the encoded image bytes to recognize.
	Image []byte

	// Languages are optional language hints, in provider-specific codes.
	Languages []string

	// DPI overrides the assumed input resolution when > 0.
	DPI int

	// Metadata carries provider-specific tuning variables.
	Metadata map[string]string
}

// Result is the outcome of a successful recognition.
type Result struct {
	// Text is the recognized plain text.
	Text string

	// Confidence is the mean recognition confidence in [0, 1], when the
	// provider reports one.
	Confidence float64

	// Engine names the provider that produced this result.
	Engine string

	// Fallback is true when the provider that succeeded was not the first
	// candidate tried.
	Fallback bool

	// OriginalEngine names the first candidate tried when Fallback is set.
	OriginalEngine string

	// Metadata carries provider-specific extras.
	Metadata map[string]string
}

// Engine is an interchangeable recognition provider.
type Engine interface {
	// Name returns a stable provider name used in results and logs.
	Name() string

	// Recognize performs recognition on a single input. Any error marks
	// the attempt as failed; the fallback chain moves on to the next
	// candidate.
	Recognize(ctx context.Context, in Input) (Result, error)
}

// HealthChecker is implemented by providers that can report usability
// cheaply. Providers without it are assumed always available.
type HealthChecker interface {
	// CheckHealth returns nil when the provider is usable. It must be
	// cheap: the result is cached, but a slow probe still stalls the
	// first caller after every cache expiry.
	CheckHealth(ctx context.Context) error
}
