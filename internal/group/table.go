// Package group accumulates fingerprints into buckets of possibly identical
// files.
package group

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/fingerprint"
	"github.com/puzpuzpuz/xsync/v3"
)

// Bucket is every path sharing one fingerprint. Size is the byte size
// declared for each member.
type Bucket struct {
	Key   fingerprint.Key
	Size  int64
	Paths []string
}

// IsDuplicate reports whether the bucket has at least two members.
func (b Bucket) IsDuplicate() bool {
	return len(b.Paths) >= 2
}

// Bytes returns the bucket's total size on disk.
func (b Bucket) Bytes() int64 {
	return b.Size * int64(len(b.Paths))
}

// Table maps fingerprints to buckets. Add may be called from any number of
// goroutines; singletons are kept until Duplicates filters them.
type Table struct {
	m *xsync.MapOf[fingerprint.Key, Bucket]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{m: xsync.NewMapOf[fingerprint.Key, Bucket]()}
}

// Add appends p's path to its bucket, creating the bucket when absent. The
// lookup and append happen as one step under the key's lock.
func (t *Table) Add(p fingerprint.Pair) {
	t.m.Compute(p.Key, func(old Bucket, loaded bool) (Bucket, bool) {
		if !loaded {
			return Bucket{Key: p.Key, Size: p.Size, Paths: []string{p.Path}}, false
		}
		old.Paths = append(old.Paths, p.Path)
		return old, false
	})
}

// Len returns the number of buckets.
func (t *Table) Len() int {
	return t.m.Size()
}

// Members returns the number of paths across all buckets.
func (t *Table) Members() int {
	n := 0
	t.m.Range(func(_ fingerprint.Key, b Bucket) bool {
		n += len(b.Paths)
		return true
	})
	return n
}

// Buckets returns a snapshot of all buckets ordered by key. Paths inside a
// bucket are sorted so output does not depend on worker interleaving.
func (t *Table) Buckets() []Bucket {
	out := make([]Bucket, 0, t.m.Size())
	t.m.Range(func(_ fingerprint.Key, b Bucket) bool {
		paths := slices.Clone(b.Paths)
		sort.Strings(paths)
		b.Paths = paths
		out = append(out, b)
		return true
	})
	slices.SortFunc(out, func(a, b Bucket) int { return a.Key.Compare(b.Key) })
	return out
}

// Duplicates keeps buckets with two or more members.
func Duplicates(buckets []Bucket) []Bucket {
	var out []Bucket
	for _, b := range buckets {
		if b.IsDuplicate() {
			out = append(out, b)
		}
	}
	return out
}

// FromSorted groups pairs that are already ordered by ComparePairs. Equal
// keys are adjacent, so each run of them becomes one bucket.
func FromSorted(pairs []fingerprint.Pair) *Table {
	t := NewTable()
	for i := 0; i < len(pairs); {
		j := i + 1
		for j < len(pairs) && pairs[j].Key == pairs[i].Key {
			j++
		}
		paths := make([]string, 0, j-i)
		for _, p := range pairs[i:j] {
			paths = append(paths, p.Path)
		}
		t.m.Store(pairs[i].Key, Bucket{Key: pairs[i].Key, Size: pairs[i].Size, Paths: paths})
		i = j
	}
	return t
}

// Collect fingerprints files with h and accumulates the results. Strategies
// that need ordered keys are fully fingerprinted and sorted before any
// grouping happens; the others insert directly from the workers.
func Collect(ctx context.Context, h *fingerprint.Hasher, files []entry.Candidate) *Table {
	if !h.Strategy().Sorted() {
		t := NewTable()
		h.Run(ctx, files, t.Add)
		return t
	}

	var (
		mu    sync.Mutex
		pairs = make([]fingerprint.Pair, 0, len(files))
	)
	h.Run(ctx, files, func(p fingerprint.Pair) {
		mu.Lock()
		pairs = append(pairs, p)
		mu.Unlock()
	})
	slices.SortFunc(pairs, fingerprint.ComparePairs)
	return FromSorted(pairs)
}
