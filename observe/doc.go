// Package observe provides observability primitives for the document cache.
//
// It is a pure instrumentation library: no caching, no codec work, no I/O
// beyond exporter setup. Consumers wire the observer's logger, meter, and
// tracer into the registry and the nickdb facade.
package observe
