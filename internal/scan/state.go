package scan

import (
	"sync"
	"sync/atomic"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/rs/zerolog"
)

// State holds everything a single run's traversal produces. It is created
// by the caller that owns the run and is safe for concurrent visitors.
type State struct {
	opts *ScanOptions
	log  zerolog.Logger

	mu    sync.Mutex
	dirs  []string
	files []entry.Candidate

	// Progress tracking (atomic)
	filesSeen  int64
	dirCount   int64
	totalBytes int64
	errorCount int64
}

// NewState creates an empty traversal state for opts.
func NewState(opts *ScanOptions, log zerolog.Logger) *State {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &State{opts: opts, log: log}
}

// Visit records one node. Directories are listed; regular files that pass
// the filters become candidates. A file whose metadata cannot be read is
// still counted and listed with size zero.
func (s *State) Visit(n Node) {
	if n.IsDir() {
		atomic.AddInt64(&s.dirCount, 1)
		s.mu.Lock()
		s.dirs = append(s.dirs, n.Path())
		s.mu.Unlock()
		return
	}

	c := entry.Candidate{Path: n.Path()}
	info, err := n.Info()
	if err != nil {
		atomic.AddInt64(&s.errorCount, 1)
		if s.opts.Verbose {
			s.log.Debug().Err(err).Str("path", c.Path).Msg("metadata unavailable, counting as 0 bytes")
		}
	} else {
		if kind := entry.KindFromMode(info.Mode()); kind != entry.KindFile {
			if s.opts.Verbose {
				s.log.Debug().Stringer("kind", kind).Str("path", c.Path).Msg("not a regular file, skipped")
			}
			return
		}
		c.Size = info.Size()
		c.ModTime = info.ModTime()
	}

	atomic.AddInt64(&s.filesSeen, 1)
	if !s.opts.MatchesSize(c.Size) || !s.opts.MatchesExtension(c.Path) {
		return
	}

	s.mu.Lock()
	s.files = append(s.files, c)
	s.mu.Unlock()
	atomic.AddInt64(&s.totalBytes, c.Size)
}

// Progress holds current scan progress.
type Progress struct {
	Files      int64
	Dirs       int64
	Errors     int64
	TotalBytes int64
}

// Progress returns current scan progress (safe for concurrent access).
func (s *State) Progress() Progress {
	return Progress{
		Files:      atomic.LoadInt64(&s.filesSeen),
		Dirs:       atomic.LoadInt64(&s.dirCount),
		Errors:     atomic.LoadInt64(&s.errorCount),
		TotalBytes: atomic.LoadInt64(&s.totalBytes),
	}
}

// Result is the immutable outcome of a traversal.
type Result struct {
	Root       string
	Dirs       []string
	Files      []entry.Candidate
	FilesSeen  int64
	TotalBytes int64
	Errors     int64
}

// Result snapshots the state. Call it only after the walk has returned.
func (s *State) Result(root string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.Progress()
	return &Result{
		Root:       root,
		Dirs:       append([]string(nil), s.dirs...),
		Files:      append([]entry.Candidate(nil), s.files...),
		FilesSeen:  p.Files,
		TotalBytes: p.TotalBytes,
		Errors:     p.Errors,
	}
}
