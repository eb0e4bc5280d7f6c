// Package engine defines the recognition capability consumed by the
// execution manager and the fallback chain that selects among
// interchangeable providers.
//
// The interfaces are intentionally small and transport-agnostic so providers
// can be backed by native libraries, local binaries, or remote APIs without
// leaking provider-specific concerns into callers.
//
// # Fallback
//
// A FallbackChain orders providers by priority, filters to those whose
// cached health probe passes, and invokes them strictly in order until one
// succeeds:
//
//	chain, _ := engine.NewFallbackChain([]engine.Descriptor{
//	    {Engine: tesseract.New(), Priority: 10},
//	    {Engine: remoteOCR, Priority: 20},
//	})
//
//	result, err := chain.Recognize(ctx, input)
//
// The result carries which provider produced it; when the first candidate
// was not the one that succeeded, Fallback is set along with the name of the
// provider originally selected.
//
// Health probes are cached with a TTL so availability checks stay cheap on
// the hot path; a provider is never re-initialized inline just to decide
// whether it is usable.
package engine
