package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/nickdb/observe"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"defaults", DefaultConfig(), nil},
		{"zero config", Config{}, nil},
		{"pipe delimiter", Config{Delimiter: '|'}, nil},
		{"letter delimiter", Config{Delimiter: 'a'}, ErrInvalidDelimiter},
		{"digit delimiter", Config{Delimiter: '1'}, ErrInvalidDelimiter},
		{"underscore delimiter", Config{Delimiter: '_'}, ErrInvalidDelimiter},
		{"space delimiter", Config{Delimiter: ' '}, ErrInvalidDelimiter},
		{"negative idle", Config{IdleAfter: -time.Second}, ErrNonPositiveIdle},
		{"negative stride", Config{SweepStride: -1}, ErrInvalidStride},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if r.cfg.Delimiter != '^' {
		t.Errorf("default delimiter = %q, want '^'", r.cfg.Delimiter)
	}
	if r.cfg.IdleAfter != time.Minute {
		t.Errorf("default idle threshold = %v, want 1m", r.cfg.IdleAfter)
	}
	if r.cfg.SweepStride != 2 {
		t.Errorf("default sweep stride = %d, want 2", r.cfg.SweepStride)
	}
}

func TestRegistry_CacheCoherence(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	id := Identity{UserID: "u1", GroupID: "g1"}

	first := r.GetOrCreate(ctx, id, "menfie")
	second := r.GetOrCreate(ctx, id, "menfie")
	if first != second {
		t.Fatal("identical identity and current string should share one document")
	}

	// Mutations through one handle are visible through the other, and a
	// follow-up lookup with the updated string is still a hit.
	first.Set('A', "FOO")
	if got, ok := second.Get('A'); !ok || got != "FOO" {
		t.Errorf("shared handle Get = (%q, %v), want (%q, true)", got, ok, "FOO")
	}
	third := r.GetOrCreate(ctx, id, first.String())
	if third != first {
		t.Error("lookup with the document's own current string should hit")
	}
}

func TestRegistry_StaleInvalidation(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	id := Identity{UserID: "u1", GroupID: "g1"}

	stale := r.GetOrCreate(ctx, id, "menfie")
	stale.Set('A', "FOO")

	// The platform's string is the source of truth: a different current
	// string discards the cached entry and decodes fresh.
	fresh := r.GetOrCreate(ctx, id, "renamed")
	if fresh == stale {
		t.Fatal("mismatched current string should rebuild the document")
	}
	if got := fresh.String(); got != "renamed" {
		t.Errorf("fresh document host string = %q, want %q", got, "renamed")
	}
	if fresh.Exists('A') {
		t.Error("fresh document should not inherit stale attributes")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	id := Identity{UserID: "u1", GroupID: "g1"}

	r.GetOrCreate(ctx, id, "menfie")
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	r.Remove(id)
	if r.Len() != 0 {
		t.Errorf("Len after Remove = %d, want 0", r.Len())
	}

	// Removing an absent identity is a no-op.
	r.Remove(id)
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	r, err := New(Config{IdleAfter: 10 * time.Millisecond, SweepStride: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	r.GetOrCreate(ctx, Identity{UserID: "u1", GroupID: "g1"}, "menfie")
	time.Sleep(25 * time.Millisecond)

	r.Sweep(ctx)
	if r.Len() != 0 {
		t.Errorf("Len after sweep = %d, want 0", r.Len())
	}
}

func TestRegistry_SweepRetainsFresh(t *testing.T) {
	r, err := New(Config{IdleAfter: time.Hour, SweepStride: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	r.GetOrCreate(ctx, Identity{UserID: "u1", GroupID: "g1"}, "menfie")
	r.Sweep(ctx)
	if r.Len() != 1 {
		t.Errorf("Len after sweep = %d, want 1", r.Len())
	}
}

func TestRegistry_LookupTriggersSweep(t *testing.T) {
	r, err := New(Config{IdleAfter: 10 * time.Millisecond, SweepStride: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	idle := Identity{UserID: "idle", GroupID: "g1"}
	r.GetOrCreate(ctx, idle, "menfie")
	time.Sleep(25 * time.Millisecond)

	// The lookup for a second identity sweeps the first one out.
	r.GetOrCreate(ctx, Identity{UserID: "busy", GroupID: "g1"}, "other")

	r.mu.Lock()
	_, stillThere := r.docs[idle]
	r.mu.Unlock()
	if stillThere {
		t.Error("idle entry should have been evicted by the lookup's sweep")
	}
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	id := Identity{UserID: "u1", GroupID: "g1"}

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			doc := r.GetOrCreate(ctx, id, "menfie")
			if doc == nil {
				return errors.New("nil document")
			}
			doc.Get('A')
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if r.Len() != 1 {
		t.Errorf("Len after concurrent lookups = %d, want 1", r.Len())
	}
}

func TestRegistry_DistinctIdentities(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	a := r.GetOrCreate(ctx, Identity{UserID: "u1", GroupID: "g1"}, "menfie")
	b := r.GetOrCreate(ctx, Identity{UserID: "u1", GroupID: "g2"}, "menfie")
	if a == b {
		t.Error("the same user in different groups must get distinct documents")
	}
}

// captureMetrics records lookup outcomes for assertions.
type captureMetrics struct {
	mu       sync.Mutex
	outcomes []string
	evicted  int64
}

func (m *captureMetrics) RecordLookup(_ context.Context, outcome string, _ time.Duration) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, outcome)
	m.mu.Unlock()
}

func (m *captureMetrics) RecordEvictions(_ context.Context, n int64) {
	m.mu.Lock()
	m.evicted += n
	m.mu.Unlock()
}

func TestRegistry_LookupOutcomes(t *testing.T) {
	metrics := &captureMetrics{}
	r, err := New(Config{IdleAfter: time.Hour}, WithMetrics(metrics))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	id := Identity{UserID: "u1", GroupID: "g1"}

	r.GetOrCreate(ctx, id, "menfie")  // miss
	r.GetOrCreate(ctx, id, "menfie")  // hit
	r.GetOrCreate(ctx, id, "renamed") // stale

	want := []string{observe.LookupMiss, observe.LookupHit, observe.LookupStale}
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.outcomes) != len(want) {
		t.Fatalf("recorded %d outcomes, want %d", len(metrics.outcomes), len(want))
	}
	for i, o := range want {
		if metrics.outcomes[i] != o {
			t.Errorf("outcome[%d] = %q, want %q", i, metrics.outcomes[i], o)
		}
	}
}

func TestIdentity_String(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want string
	}{
		{"complete", Identity{UserID: "u1", GroupID: "g1"}, "u1@g1"},
		{"empty", Identity{}, "<empty>"},
		{"missing user", Identity{GroupID: "g1"}, "<unknown>@g1"},
		{"missing group", Identity{UserID: "u1"}, "u1@<unknown>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if tt.id.IsZero() != (tt.id.UserID == "" || tt.id.GroupID == "") {
				t.Errorf("IsZero() inconsistent for %+v", tt.id)
			}
		})
	}
}
