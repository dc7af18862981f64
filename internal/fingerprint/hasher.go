package fingerprint

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Hasher fingerprints candidates on a fixed-size worker pool.
type Hasher struct {
	fs       afero.Fs
	strategy Strategy
	workers  int
	log      zerolog.Logger

	// Progress tracking (atomic)
	processed int64
	skipped   int64
	failed    int64
}

// NewHasher creates a hasher using at most workers concurrent file reads.
func NewHasher(fsys afero.Fs, strategy Strategy, workers int, log zerolog.Logger) *Hasher {
	if workers < 1 {
		workers = 1
	}
	return &Hasher{
		fs:       fsys,
		strategy: strategy,
		workers:  workers,
		log:      log,
	}
}

// Strategy returns the strategy in use.
func (h *Hasher) Strategy() Strategy {
	return h.strategy
}

// Run fingerprints every file and hands each successful pair to emit, which
// is called concurrently from the workers. Failures are logged and the file
// is left out.
func (h *Hasher) Run(ctx context.Context, files []entry.Candidate, emit func(Pair)) {
	jobs := make(chan int, h.workers*4)

	var wg sync.WaitGroup
	for i := 0; i < h.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				h.process(files[idx], emit)
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}

func (h *Hasher) process(c entry.Candidate, emit func(Pair)) {
	defer atomic.AddInt64(&h.processed, 1)

	key, size, err := h.strategy.Fingerprint(h.fs, c)
	if errors.Is(err, ErrSkip) {
		atomic.AddInt64(&h.skipped, 1)
		return
	}
	if err != nil {
		atomic.AddInt64(&h.failed, 1)
		h.log.Error().Err(err).Str("file", c.Path).Msg("cannot fingerprint file")
		return
	}

	h.log.Debug().Str("hash", key.String()).Str("file", c.Path).Msg("hash")
	emit(Pair{Key: key, Path: c.Path, Size: size})
}

// Stats holds fingerprinting counters.
type Stats struct {
	Processed int64
	Skipped   int64
	Failed    int64
}

// Stats returns current counters (safe for concurrent access).
func (h *Hasher) Stats() Stats {
	return Stats{
		Processed: atomic.LoadInt64(&h.processed),
		Skipped:   atomic.LoadInt64(&h.skipped),
		Failed:    atomic.LoadInt64(&h.failed),
	}
}
