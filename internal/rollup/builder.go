package rollup

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/report"
)

// Builder computes reclaimable-space rollups bottom-up. The last member of
// each group is the one the delete command keeps, so only the others count.
type Builder struct {
	root   string
	direct map[string]*entry.Rollup
	depth  map[string]int
}

// NewBuilder creates a builder that stops rolling up at root. An empty root
// rolls up to the top of the filesystem.
func NewBuilder(root string) *Builder {
	if root != "" {
		root = filepath.Clean(root)
	}
	return &Builder{
		root:   root,
		direct: make(map[string]*entry.Rollup),
		depth:  make(map[string]int),
	}
}

// Build returns one rollup per directory holding or containing a reclaimable
// member, ordered by reclaimable bytes descending, then path.
func (b *Builder) Build(ctx context.Context, records []report.Record) ([]entry.Rollup, error) {
	for _, r := range records {
		if len(r.Paths) < 2 {
			continue
		}
		for _, p := range r.Paths[:len(r.Paths)-1] {
			b.add(filepath.Dir(filepath.Clean(p)), r.BytesEach)
		}
	}

	// Deepest first so every child is final before its parent reads it.
	dirs := make([]string, 0, len(b.depth))
	for dir := range b.depth {
		dirs = append(dirs, dir)
	}
	slices.SortFunc(dirs, func(x, y string) int {
		if dx, dy := b.depth[x], b.depth[y]; dx != dy {
			return dy - dx
		}
		return strings.Compare(x, y)
	})

	out := make([]entry.Rollup, 0, len(dirs))
	for i, dir := range dirs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r := b.rollup(dir)
		if parent, ok := b.parent(dir); ok {
			p := b.rollup(parent)
			p.ReclaimableBytes += r.ReclaimableBytes
			p.ReclaimableFiles += r.ReclaimableFiles
		}
		out = append(out, *r)
	}

	slices.SortFunc(out, func(x, y entry.Rollup) int {
		switch {
		case x.ReclaimableBytes > y.ReclaimableBytes:
			return -1
		case x.ReclaimableBytes < y.ReclaimableBytes:
			return 1
		}
		return strings.Compare(x.Path, y.Path)
	})
	return out, nil
}

func (b *Builder) add(dir string, size int64) {
	r := b.rollup(dir)
	r.ReclaimableBytes += size
	r.ReclaimableFiles++

	for d := dir; ; {
		if _, seen := b.depth[d]; seen {
			break
		}
		b.depth[d] = depthOf(d)
		parent, ok := b.parent(d)
		if !ok {
			break
		}
		d = parent
	}
}

func (b *Builder) rollup(dir string) *entry.Rollup {
	r, ok := b.direct[dir]
	if !ok {
		r = &entry.Rollup{Path: dir}
		b.direct[dir] = r
	}
	return r
}

// parent returns dir's parent while it stays inside the root.
func (b *Builder) parent(dir string) (string, bool) {
	if dir == b.root {
		return "", false
	}
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", false
	}
	if b.root != "" {
		rel, err := filepath.Rel(b.root, parent)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", false
		}
	}
	return parent, true
}

func depthOf(dir string) int {
	if filepath.Dir(dir) == dir {
		return 0
	}
	return strings.Count(dir, string(filepath.Separator))
}

// TopN returns the first n rollups of a list ordered by Build.
func TopN(rollups []entry.Rollup, n int) []entry.Rollup {
	if n < 0 || n >= len(rollups) {
		return rollups
	}
	return rollups[:n]
}
