package document

import (
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Document holds a host string with embedded attribute tokens.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use; each operation
//   runs under the Document's own lock.
// - Errors: no operation fails. Absent keys are ordinary misses.
// - Ownership: the host string is externally owned; the caller reads it
//   back with String and persists it to the platform itself.
//
// Token grammar: delimiter, one word character (the key), then one or more
// characters that are neither the delimiter nor whitespace (the value).
// Values may not contain whitespace. Text that does not match the grammar
// is never interpreted or altered, except for a single whitespace trim of
// the residual text when tokens are re-encoded.
type Document struct {
	mu         sync.Mutex
	text       string
	delimiter  rune
	token      *regexp.Regexp
	lastAccess time.Time
}

// New creates a Document over the given host string. It never fails;
// a host string without tokens simply has no attributes.
func New(text string, delimiter rune) *Document {
	q := regexp.QuoteMeta(string(delimiter))
	return &Document{
		text:       text,
		delimiter:  delimiter,
		token:      regexp.MustCompile(q + `\w[^` + q + `\s]+`),
		lastAccess: time.Now(),
	}
}

// Delimiter returns the delimiter this Document was created with.
func (d *Document) Delimiter() rune {
	return d.delimiter
}

// String returns the current host string. This is the value the caller
// persists back to the platform after mutating attributes.
func (d *Document) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()
	return d.text
}

// Exists reports whether the host string contains the literal substring
// delimiter+key. It may be true for malformed tokens that Get cannot parse.
func (d *Document) Exists(key rune) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()
	return d.exists(key)
}

// Get returns the value of the first token matching key.
// The second return is false when no token matches.
func (d *Document) Get(key rune) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()

	if !d.exists(key) {
		return "", false
	}
	for _, tok := range d.token.FindAllString(d.text, -1) {
		k, v := d.splitToken(tok)
		if k == key {
			return v, true
		}
	}
	return "", false
}

// Set stores value under key, overwriting any existing value. The host
// string is re-encoded: all current tokens are stripped, the residual text
// is trimmed, and the surviving attribute set is appended after a single
// separating space. Token order is unspecified.
func (d *Document) Set(key rune, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()

	kv := d.decode()
	kv[key] = value
	d.encode(kv)
}

// Delete removes the attribute for key. It is a no-op when key is absent.
func (d *Document) Delete(key rune) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()

	if !d.exists(key) {
		return
	}
	kv := d.decode()
	delete(kv, key)
	d.encode(kv)
}

// CompareAndDelete removes the attribute for key only if its current value
// equals value. It is a no-op when key is absent or the values differ.
func (d *Document) CompareAndDelete(key rune, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()

	if !d.exists(key) {
		return
	}
	kv := d.decode()
	cur, ok := kv[key]
	if !ok || cur != value {
		return
	}
	delete(kv, key)
	d.encode(kv)
}

// Keys returns the keys of all decodable attributes, in unspecified order.
func (d *Document) Keys() []rune {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()

	kv := d.decode()
	keys := make([]rune, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	return keys
}

// All returns a snapshot of the full attribute mapping.
func (d *Document) All() map[rune]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()
	return d.decode()
}

// SinceLastAccess returns how long ago the Document was last operated on.
// Every other method, reads included, refreshes the last-access clock.
func (d *Document) SinceLastAccess() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return time.Since(d.lastAccess)
}

// TryIdle reports whether the Document has been idle longer than threshold.
// It never blocks: if the Document is locked by another caller it returns
// false immediately. TryIdle does not count as an access.
func (d *Document) TryIdle(threshold time.Duration) bool {
	if !d.mu.TryLock() {
		return false
	}
	defer d.mu.Unlock()
	return time.Since(d.lastAccess) > threshold
}

// touch refreshes the last-access clock. Callers must hold d.mu.
func (d *Document) touch() {
	d.lastAccess = time.Now()
}

func (d *Document) exists(key rune) bool {
	return strings.Contains(d.text, string(d.delimiter)+string(key))
}

// splitToken splits a matched token into its key and value.
func (d *Document) splitToken(tok string) (rune, string) {
	rest := tok[len(string(d.delimiter)):]
	key, size := utf8.DecodeRuneInString(rest)
	return key, rest[size:]
}

// decode scans the host string left to right for non-overlapping tokens.
// If duplicate tokens exist for the same key, the last one scanned wins.
// Callers must hold d.mu.
func (d *Document) decode() map[rune]string {
	kv := make(map[rune]string)
	for _, tok := range d.token.FindAllString(d.text, -1) {
		k, v := d.splitToken(tok)
		kv[k] = v
	}
	return kv
}

// encode replaces the host string with the residual non-token text,
// trimmed, followed by a single space and every surviving token.
// Callers must hold d.mu.
func (d *Document) encode(kv map[rune]string) {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(d.token.ReplaceAllString(d.text, "")))
	b.WriteByte(' ')
	for k, v := range kv {
		b.WriteRune(d.delimiter)
		b.WriteRune(k)
		b.WriteString(v)
	}
	d.text = b.String()
}
