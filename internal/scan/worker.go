package scan

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

type dirWork struct {
	path  string
	depth int
}

// PooledWalker walks the tree with a fixed pool of workers sharing a
// directory queue. Entries deeper than maxDepth are not visited.
type PooledWalker struct {
	fs       afero.Fs
	workers  int
	maxDepth int
	log      zerolog.Logger

	dirQueue  chan dirWork
	inFlight  int64
	closeOnce sync.Once
}

// NewPooledWalker creates a depth-bounded parallel walker.
func NewPooledWalker(fsys afero.Fs, workers, maxDepth int, log zerolog.Logger) *PooledWalker {
	if workers < 1 {
		workers = 1
	}
	// Much larger queue to avoid stacking for directories with many subdirs
	queueSize := workers * 1024
	if queueSize < 4096 {
		queueSize = 4096
	}
	return &PooledWalker{
		fs:       fsys,
		workers:  workers,
		maxDepth: maxDepth,
		log:      log,
		dirQueue: make(chan dirWork, queueSize),
	}
}

// Walk implements Walker.
func (p *PooledWalker) Walk(ctx context.Context, root string, visit func(Node)) error {
	info, err := p.fs.Stat(root)
	if err != nil {
		return err
	}
	rootNode := lstatNode{path: root, info: info}
	visit(rootNode)
	if !rootNode.IsDir() || p.maxDepth < 1 {
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		w := &worker{id: i, walker: p, visit: visit}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	atomic.AddInt64(&p.inFlight, 1)
	p.dirQueue <- dirWork{path: root, depth: 0}

	wg.Wait()
	p.closeDirQueue()
	return ctx.Err()
}

func (p *PooledWalker) closeDirQueue() {
	p.closeOnce.Do(func() {
		close(p.dirQueue)
	})
}

// done marks one directory finished; the last one closes the queue.
func (p *PooledWalker) done() {
	if atomic.AddInt64(&p.inFlight, -1) == 0 {
		p.closeDirQueue()
	}
}

type worker struct {
	id     int
	walker *PooledWalker
	visit  func(Node)
	stack  []dirWork
}

func (w *worker) run(ctx context.Context) {
	for {
		if len(w.stack) > 0 {
			work := w.stack[len(w.stack)-1]
			w.stack = w.stack[:len(w.stack)-1]
			w.processWork(ctx, work)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case work, ok := <-w.walker.dirQueue:
			if !ok {
				return
			}
			w.processWork(ctx, work)
		}
	}
}

func (w *worker) processWork(ctx context.Context, work dirWork) {
	w.processDirectory(ctx, work.path, work.depth)
	w.walker.done()
}

// processDirectory lists dirPath and visits each child.
func (w *worker) processDirectory(ctx context.Context, dirPath string, depth int) {
	if ctx.Err() != nil {
		return
	}

	f, err := w.walker.fs.Open(dirPath)
	if err != nil {
		w.walker.log.Debug().Err(err).Int("worker", w.id).Str("path", dirPath).Msg("skipping unreadable directory")
		return
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil {
		w.walker.log.Debug().Err(err).Int("worker", w.id).Str("path", dirPath).Msg("skipping unreadable directory")
		return
	}

	childDepth := depth + 1
	for i, name := range names {
		if i%100 == 0 && ctx.Err() != nil {
			return
		}

		childPath := filepath.Join(dirPath, name)

		// Always use Lstat to avoid following symlinks
		info, err := lstat(w.walker.fs, childPath)
		n := lstatNode{path: childPath, info: info, err: err}
		w.visit(n)

		if n.IsDir() && childDepth < w.walker.maxDepth {
			w.enqueueOrStack(childPath, childDepth)
		}
	}
}

func (w *worker) enqueueOrStack(path string, depth int) {
	atomic.AddInt64(&w.walker.inFlight, 1)
	select {
	case w.walker.dirQueue <- dirWork{path: path, depth: depth}:
	default:
		// Queue full: keep work local to avoid deadlock
		w.stack = append(w.stack, dirWork{path: path, depth: depth})
	}
}
