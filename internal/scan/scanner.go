package scan

import (
	"context"
	"fmt"

	"github.com/michaelscutari/clonehunt/internal/pathutil"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Scanner coordinates the filesystem traversal for one run.
type Scanner struct {
	fs    afero.Fs
	opts  *ScanOptions
	log   zerolog.Logger
	state *State
}

// NewScanner creates a new scanner.
func NewScanner(fsys afero.Fs, opts *ScanOptions, log zerolog.Logger) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Scanner{
		fs:    fsys,
		opts:  opts,
		log:   log,
		state: NewState(opts, log),
	}
}

// Walker returns the walker selected by the options.
func (s *Scanner) Walker() Walker {
	if s.opts.Unbounded {
		return NewRecursiveWalker(s.fs, s.log)
	}
	return NewPooledWalker(s.fs, s.opts.Workers, s.opts.MaxDepth, s.log)
}

// Run walks root and returns the candidate set.
func (s *Scanner) Run(ctx context.Context, root string) (*Result, error) {
	root = pathutil.Absolute(root)

	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	if err := s.Walker().Walk(ctx, root, s.state.Visit); err != nil {
		return nil, err
	}
	return s.state.Result(root), nil
}

// Progress returns current scan progress (safe for concurrent access).
func (s *Scanner) Progress() Progress {
	return s.state.Progress()
}
