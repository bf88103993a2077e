package registry

import (
	"context"
	"sync"
	"time"
	"unicode"

	"github.com/jonwraymond/nickdb/document"
	"github.com/jonwraymond/nickdb/observe"
)

// Config controls Registry behavior.
type Config struct {
	// Delimiter is the token delimiter applied to every Document this
	// Registry creates. Default: '^'.
	Delimiter rune

	// IdleAfter is how long a Document may go untouched before a sweep
	// may evict it. Default: 1 minute.
	IdleAfter time.Duration

	// SweepStride selects every SweepStride-th entry for sampling during
	// a sweep. 1 means a full scan. Default: 2.
	SweepStride int
}

// DefaultConfig returns the default Registry configuration.
// Delimiter: '^', IdleAfter: 1 minute, SweepStride: 2.
func DefaultConfig() Config {
	return Config{
		Delimiter:   '^',
		IdleAfter:   time.Minute,
		SweepStride: 2,
	}
}

// Validate validates the configuration. Zero fields are valid; New fills
// them from DefaultConfig.
func (c Config) Validate() error {
	if c.Delimiter != 0 && !validDelimiter(c.Delimiter) {
		return ErrInvalidDelimiter
	}
	if c.IdleAfter < 0 {
		return ErrNonPositiveIdle
	}
	if c.SweepStride < 0 {
		return ErrInvalidStride
	}
	return nil
}

// validDelimiter rejects runes the token grammar already claims: a word
// character would parse as a key, whitespace terminates values.
func validDelimiter(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	return true
}

// Option configures optional Registry collaborators.
type Option func(*Registry)

// WithLogger sets the logger. Default: no-op.
func WithLogger(l observe.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observe.Metrics) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// Registry caches one Document per identity.
//
// Contract:
// - Concurrency: safe for concurrent use. The identity map has one lock,
//   held only for lookup/insert/remove; each Document carries its own.
//   Neither lock is held while blocking on the other.
// - Errors: no operation fails; a stale or missing entry is rebuilt from
//   the caller's current host string.
type Registry struct {
	cfg     Config
	logger  observe.Logger
	metrics observe.Metrics

	mu   sync.Mutex
	docs map[Identity]*document.Document
}

// New creates a Registry. Zero Config fields take their defaults.
func New(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	def := DefaultConfig()
	if cfg.Delimiter == 0 {
		cfg.Delimiter = def.Delimiter
	}
	if cfg.IdleAfter == 0 {
		cfg.IdleAfter = def.IdleAfter
	}
	if cfg.SweepStride == 0 {
		cfg.SweepStride = def.SweepStride
	}

	r := &Registry{
		cfg:     cfg,
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
		docs:    make(map[Identity]*document.Document),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// GetOrCreate returns the shared Document for id, valid for current.
//
// A cached Document is returned only while its host string still equals
// the caller-supplied current string; the platform's string is the source
// of truth, so any mismatch discards the entry and decodes fresh from
// current. Every call triggers a sweep.
func (r *Registry) GetOrCreate(ctx context.Context, id Identity, current string) *document.Document {
	start := time.Now()
	outcome := observe.LookupMiss

	r.mu.Lock()
	doc, ok := r.docs[id]
	r.mu.Unlock()

	// Freshness check happens under the Document's own lock, with the map
	// lock released, so a slow Document never stalls unrelated identities.
	if ok {
		if doc.String() == current {
			r.metrics.RecordLookup(ctx, observe.LookupHit, time.Since(start))
			r.Sweep(ctx)
			return doc
		}
		outcome = observe.LookupStale
	}

	fresh := document.New(current, r.cfg.Delimiter)
	r.mu.Lock()
	r.docs[id] = fresh
	r.mu.Unlock()

	if outcome == observe.LookupStale {
		r.logger.Debug(ctx, "stale document rebuilt", observe.Field{Key: "identity", Value: id.String()})
	}
	r.metrics.RecordLookup(ctx, outcome, time.Since(start))
	r.Sweep(ctx)
	return fresh
}

// Remove unconditionally drops the cached entry for id, if any.
func (r *Registry) Remove(id Identity) {
	r.mu.Lock()
	delete(r.docs, id)
	r.mu.Unlock()
}

// Len returns a snapshot of the number of cached entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// Sweep samples every SweepStride-th entry and evicts those idle beyond
// IdleAfter. Entries locked by another caller are skipped, never waited
// on. Best-effort: eviction only removes the map entry, it performs no
// write-back.
func (r *Registry) Sweep(ctx context.Context) {
	type candidate struct {
		id  Identity
		doc *document.Document
	}

	r.mu.Lock()
	sampled := make([]candidate, 0, len(r.docs)/r.cfg.SweepStride+1)
	i := 0
	for id, doc := range r.docs {
		if i%r.cfg.SweepStride == 0 {
			sampled = append(sampled, candidate{id: id, doc: doc})
		}
		i++
	}
	r.mu.Unlock()

	var evicted int64
	for _, c := range sampled {
		if !c.doc.TryIdle(r.cfg.IdleAfter) {
			continue
		}
		r.mu.Lock()
		// Only evict the sampled Document; the entry may have been
		// replaced by a concurrent rebuild since sampling.
		if r.docs[c.id] == c.doc {
			delete(r.docs, c.id)
			evicted++
		}
		r.mu.Unlock()
	}

	if evicted > 0 {
		r.metrics.RecordEvictions(ctx, evicted)
		r.logger.Debug(ctx, "idle documents evicted", observe.Field{Key: "count", Value: evicted})
	}
}
