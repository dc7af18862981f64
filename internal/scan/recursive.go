package scan

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// RecursiveWalker walks the whole tree on the calling goroutine with no depth
// limit.
type RecursiveWalker struct {
	fs  afero.Fs
	log zerolog.Logger
}

// NewRecursiveWalker creates a single-threaded unbounded walker.
func NewRecursiveWalker(fsys afero.Fs, log zerolog.Logger) *RecursiveWalker {
	return &RecursiveWalker{fs: fsys, log: log}
}

// Walk implements Walker.
func (w *RecursiveWalker) Walk(ctx context.Context, root string, visit func(Node)) error {
	info, err := w.fs.Stat(root)
	if err != nil {
		return err
	}
	visit(infoNode{path: root, info: info})
	w.recurse(ctx, root, visit)
	return ctx.Err()
}

func (w *RecursiveWalker) recurse(ctx context.Context, dir string, visit func(Node)) {
	if ctx.Err() != nil {
		return
	}
	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		w.log.Debug().Err(err).Str("path", dir).Msg("skipping unreadable directory")
		return
	}
	for _, info := range infos {
		n := infoNode{path: filepath.Join(dir, info.Name()), info: info}
		visit(n)
		if n.IsDir() {
			w.recurse(ctx, n.path, visit)
		}
	}
}
