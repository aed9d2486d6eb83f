// Package kv provides a key-value store interface with hierarchical path-based
// keys. Keys are represented as string slices (e.g., ["user", "profile", "123"])
// and encoded internally using a configurable separator (default ':').
//
// The package includes a BadgerDB-backed implementation for production use and
// an in-memory implementation for testing.
package kv

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"sort"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")
)

// Key is a hierarchical path represented as a slice of string segments.
// For example, Key{"user", "g", "e", "Alice"} encodes to "user:g:e:Alice"
// using the default separator ':'.
//
// Segments must not contain the configured separator character.
type Key []string

// String returns the key as a human-readable string using ':' as separator.
// This is for display/debug only; use Options.encode for storage encoding.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair returned by List and used by BatchSet.
type Entry struct {
	Key   Key
	Value []byte
}

// MergeFunc computes a new value for a key given its current value (if any)
// and an operand supplied by the caller. It must be a pure function of its
// inputs: the store may retry it on write conflict.
type MergeFunc func(existing []byte, exists bool, operand []byte) ([]byte, error)

// Store is the interface for a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given prefix.
	// The iteration order is lexicographic by encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Range iterates over all entries whose encoded key lies in the
	// half-open interval [start, end), in lexicographic order by encoded
	// key. Unlike List, start and end need not share a common prefix.
	Range(ctx context.Context, start, end Key) iter.Seq2[Entry, error]

	// Merge applies fn to the current value at key (nil/false if absent)
	// together with operand, and atomically stores the result. The read and
	// write happen under the same transaction/lock, so concurrent Merge
	// calls on the same key never lose an update; fn may be invoked more
	// than once if the underlying backend must retry on conflict.
	Merge(ctx context.Context, key Key, operand []byte, fn MergeFunc) error

	// BatchSet atomically stores multiple key-value pairs.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete atomically removes multiple keys.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases any resources held by the store.
	Close() error
}

// WriteOnceMerge is a MergeFunc that accepts the operand as the stored value
// only if no value is currently present; otherwise it leaves the existing
// value untouched. Used for artifact and symbol storage, where the first
// writer of a given content-addressed key wins.
func WriteOnceMerge(existing []byte, exists bool, operand []byte) ([]byte, error) {
	if exists {
		return existing, nil
	}
	return operand, nil
}

// SortedFixedWidthMerge returns a MergeFunc that treats both the existing
// value and the operand as sorted concatenations of width-byte entries, and
// returns their sorted, deduplicated union. This is how inverted-index
// postings (16-byte ClaimIds, or 8-byte variants) grow without read-modify-
// write races: the merge is associative and commutative, so concurrent
// merges on the same key converge regardless of order.
func SortedFixedWidthMerge(width int) MergeFunc {
	return func(existing []byte, exists bool, operand []byte) ([]byte, error) {
		if !exists || len(existing) == 0 {
			return sortedDedupCopy(operand, width), nil
		}
		return mergeSortedFixedWidth(existing, operand, width), nil
	}
}

// mergeSortedFixedWidth merges two sorted, width-byte-entry sequences into
// one sorted, deduplicated sequence. Both a and b are assumed sorted and
// deduplicated already (the invariant this function maintains); the result
// preserves that invariant.
func mergeSortedFixedWidth(a, b []byte, width int) []byte {
	na, nb := len(a)/width, len(b)/width
	out := make([]byte, 0, len(a)+len(b))
	i, j := 0, 0
	for i < na && j < nb {
		ea := a[i*width : i*width+width]
		eb := b[j*width : j*width+width]
		switch bytes.Compare(ea, eb) {
		case 0:
			out = append(out, ea...)
			i++
			j++
		case -1:
			out = append(out, ea...)
			i++
		default:
			out = append(out, eb...)
			j++
		}
	}
	for ; i < na; i++ {
		out = append(out, a[i*width:i*width+width]...)
	}
	for ; j < nb; j++ {
		out = append(out, b[j*width:j*width+width]...)
	}
	return out
}

// sortedDedupCopy sorts and deduplicates a sequence of width-byte entries,
// returning a fresh slice. Used when there is no prior value to merge
// against (a is the identity for the merge).
func sortedDedupCopy(b []byte, width int) []byte {
	n := len(b) / width
	entries := make([][]byte, n)
	for i := 0; i < n; i++ {
		entries[i] = b[i*width : i*width+width]
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i], entries[j]) < 0 })
	out := make([]byte, 0, len(b))
	for i, e := range entries {
		if i > 0 && bytes.Equal(entries[i-1], e) {
			continue
		}
		out = append(out, e...)
	}
	return out
}

// DefaultSeparator is the default separator byte used to encode key segments.
const DefaultSeparator byte = ':'

// Options configures store behavior.
type Options struct {
	// Separator is the byte used to join key segments when encoding to storage.
	// Default is ':' if zero.
	Separator byte
}

// sep returns the effective separator.
func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// encode converts a Key to its byte representation using the separator.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	// Calculate total length to avoid allocations.
	n := 0
	for i, seg := range k {
		if i > 0 {
			n++ // separator
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = s
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decode converts a byte representation back to a Key using the separator.
func (o *Options) decode(b []byte) Key {
	s := o.sep()
	parts := splitBytes(b, s)
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = string(p)
	}
	return k
}

// splitBytes splits b by separator byte, similar to bytes.Split with a
// single-byte separator.
func splitBytes(b []byte, sep byte) [][]byte {
	n := 1
	for _, c := range b {
		if c == sep {
			n++
		}
	}
	parts := make([][]byte, 0, n)
	start := 0
	for i, c := range b {
		if c == sep {
			parts = append(parts, b[start:i])
			start = i + 1
		}
	}
	parts = append(parts, b[start:])
	return parts
}
