// Package nickdb stores small string attributes inside externally-owned
// display strings by embedding delimiter+key+value tokens in the text.
//
// The document package implements the codec, the registry package the
// process-wide identity-keyed cache. This package ties them to a
// caller-implemented Source that fetches the current display string from
// the host platform. Persisting a mutated string back to the platform is
// always the caller's job: read it with Document.String and write it back
// yourself.
//
//	db, _ := nickdb.New(src)
//	doc, err := db.Document(ctx, registry.Identity{UserID: "u", GroupID: "g"})
//	if err != nil { ... }
//	doc.Set('A', "FOO")
//	platform.SetDisplayName(ctx, id, doc.String())
package nickdb

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/nickdb/document"
	"github.com/jonwraymond/nickdb/observe"
	"github.com/jonwraymond/nickdb/registry"
)

// Source fetches the current display string for an identity from the host
// platform. Implementations are caller-supplied and may block on I/O.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines.
type Source interface {
	// DisplayName returns the identity's current display string.
	DisplayName(ctx context.Context, id registry.Identity) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, id registry.Identity) (string, error)

// DisplayName calls fn.
func (fn SourceFunc) DisplayName(ctx context.Context, id registry.Identity) (string, error) {
	return fn(ctx, id)
}

// DB combines a Source with the document registry. It is the usual entry
// point for callers that do not manage the registry themselves.
type DB struct {
	source  Source
	reg     *registry.Registry
	tracer  observe.Tracer
	fetches singleflight.Group // collapses concurrent fetches per identity
}

// New creates a DB over the given Source.
func New(src Source, opts ...Option) (*DB, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	var o options
	o.cfg = registry.DefaultConfig()
	for _, opt := range opts {
		opt(&o)
	}

	reg, err := registry.New(o.cfg, o.regOpts...)
	if err != nil {
		return nil, err
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = observe.NopTracer()
	}

	return &DB{
		source: src,
		reg:    reg,
		tracer: tracer,
	}, nil
}

// Document returns the shared attribute document for id, fetching the
// current display string through the Source and validating the cache
// against it. Concurrent calls for the same identity share one fetch.
func (db *DB) Document(ctx context.Context, id registry.Identity) (*document.Document, error) {
	ctx, span := db.tracer.StartLookup(ctx, id.String())

	v, err, _ := db.fetches.Do(id.String(), func() (any, error) {
		return db.source.DisplayName(ctx, id)
	})
	if err != nil {
		db.tracer.EndSpan(span, err)
		return nil, fmt.Errorf("nickdb: fetch display name for %s: %w", id, err)
	}

	doc := db.reg.GetOrCreate(ctx, id, v.(string))
	db.tracer.EndSpan(span, nil)
	return doc, nil
}

// Forget drops the cached document for id, if any. The next Document call
// decodes fresh from the platform's string.
func (db *DB) Forget(id registry.Identity) {
	db.reg.Remove(id)
}

// Registry exposes the underlying registry, for callers that obtain display
// strings themselves and only need GetOrCreate.
func (db *DB) Registry() *registry.Registry {
	return db.reg
}
