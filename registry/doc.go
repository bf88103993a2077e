// Package registry provides the process-wide cache mapping an external
// identity to its decoded attribute Document.
//
// A Registry deduplicates Document instances per identity, validates cached
// entries against the caller-supplied current host string (the platform's
// string is the source of truth), and bounds memory with a sampled,
// best-effort idle-eviction sweep triggered by every lookup.
package registry
