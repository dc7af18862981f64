// Package hunt runs the scan, fingerprint, group and report stages for one
// invocation.
package hunt

import (
	"context"
	"fmt"
	"time"

	"github.com/michaelscutari/clonehunt/internal/config"
	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/fingerprint"
	"github.com/michaelscutari/clonehunt/internal/group"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/michaelscutari/clonehunt/internal/rollup"
	"github.com/michaelscutari/clonehunt/internal/scan"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Progress is a point-in-time view of a running hunt.
type Progress struct {
	Files  int64
	Dirs   int64
	Errors int64
	Bytes  int64
	Hashed int64
	Total  int64 // candidates to hash, zero while scanning
}

// ProgressFunc is called periodically with current progress.
type ProgressFunc func(Progress)

// StageFunc is called when the hunt moves to a new stage.
type StageFunc func(stage string)

// Outcome is everything a finished hunt produced.
type Outcome struct {
	Meta    entry.HuntMeta
	Records []report.Record
	Totals  report.Totals
	Rollups []entry.Rollup
	Hashing fingerprint.Stats
}

// Runner owns the state of one hunt.
type Runner struct {
	fs           afero.Fs
	settings     *config.Settings
	log          zerolog.Logger
	progressFunc ProgressFunc
	stageFunc    StageFunc
	interval     time.Duration
	started      time.Time
}

// NewRunner creates a runner for validated settings.
func NewRunner(fsys afero.Fs, settings *config.Settings, log zerolog.Logger) *Runner {
	return &Runner{
		fs:       fsys,
		settings: settings,
		log:      log,
		interval: 100 * time.Millisecond,
	}
}

// SetProgressFunc sets a callback for progress updates.
func (r *Runner) SetProgressFunc(f ProgressFunc) {
	r.progressFunc = f
}

// SetStageFunc sets a callback for stage changes.
func (r *Runner) SetStageFunc(f StageFunc) {
	r.stageFunc = f
}

func (r *Runner) stage(s string) {
	if r.stageFunc != nil {
		r.stageFunc(s)
	}
}

// report polls sample until the returned stop function is called.
func (r *Runner) report(sample func() Progress) (stop func()) {
	if r.progressFunc == nil {
		return func() {}
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				r.progressFunc(sample())
				return
			case <-ticker.C:
				r.progressFunc(sample())
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// Scan walks the root and returns the candidate set.
func (r *Runner) Scan(ctx context.Context) (*scan.Result, error) {
	r.started = time.Now()
	r.stage("scan")

	scanner := scan.NewScanner(r.fs, r.settings.Scan, r.log)
	stop := r.report(func() Progress {
		p := scanner.Progress()
		return Progress{Files: p.Files, Dirs: p.Dirs, Errors: p.Errors, Bytes: p.TotalBytes}
	})
	res, err := scanner.Run(ctx, r.settings.Root)
	stop()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	r.log.Debug().
		Str("root", res.Root).
		Int("candidates", len(res.Files)).
		Int64("errors", res.Errors).
		Msg("scan finished")
	return res, nil
}

// Hunt fingerprints the scanned candidates and builds the report.
func (r *Runner) Hunt(ctx context.Context, res *scan.Result) (*Outcome, error) {
	if r.started.IsZero() {
		r.started = time.Now()
	}

	r.stage("hash")
	strategy := fingerprint.New(r.settings.Checksum)
	hasher := fingerprint.NewHasher(r.fs, strategy, r.settings.Threads, r.log)
	total := int64(len(res.Files))
	stop := r.report(func() Progress {
		s := hasher.Stats()
		return Progress{
			Files:  res.FilesSeen,
			Dirs:   int64(len(res.Dirs)),
			Errors: res.Errors + s.Failed,
			Bytes:  res.TotalBytes,
			Hashed: s.Processed,
			Total:  total,
		}
	})
	table := group.Collect(ctx, hasher, res.Files)
	stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.stage("group")
	sorted := report.Sort(group.Duplicates(table.Buckets()), r.settings.Sorting)
	records := report.Records(sorted)
	totals := report.Summarize(records)

	out := &Outcome{
		Records: records,
		Totals:  totals,
		Hashing: hasher.Stats(),
	}

	if r.settings.TopDirs > 0 || r.settings.OutputStyle == report.StyleSQLite {
		r.stage("rollup")
		rollups, err := rollup.NewBuilder(res.Root).Build(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("rollup failed: %w", err)
		}
		out.Rollups = rollups
	}

	out.Meta = entry.HuntMeta{
		RootPath:        res.Root,
		StartTime:       r.started,
		EndTime:         time.Now(),
		Strategy:        strategy.Name(),
		FilesScanned:    res.FilesSeen,
		DirsScanned:     int64(len(res.Dirs)),
		BytesScanned:    res.TotalBytes,
		DuplicateGroups: totals.Groups,
		DuplicateFiles:  totals.Records,
		DuplicateBytes:  totals.Bytes,
	}
	return out, nil
}
