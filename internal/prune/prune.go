// Package prune removes duplicates listed in a saved report, keeping the
// last member of every group.
package prune

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrMalformedReport wraps every problem found while loading a report.
var ErrMalformedReport = errors.New("malformed report")

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	retainedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("201"))
)

// Load reads a JSON report. Any decoding problem, a negative size or a
// group whose count disagrees with its member list is an ErrMalformedReport.
func Load(r io.Reader) ([]report.Record, error) {
	records, err := report.ReadRecords(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	for _, rec := range records {
		if rec.BytesEach < 0 {
			return nil, fmt.Errorf("%w: group %d has negative size %d",
				ErrMalformedReport, rec.GroupNo, rec.BytesEach)
		}
		if rec.Count != len(rec.Paths) {
			return nil, fmt.Errorf("%w: group %d lists %d members but declares %d",
				ErrMalformedReport, rec.GroupNo, len(rec.Paths), rec.Count)
		}
		for _, p := range rec.Paths {
			if p == "" {
				return nil, fmt.Errorf("%w: group %d has an empty path", ErrMalformedReport, rec.GroupNo)
			}
		}
	}
	return records, nil
}

// Failure is one member that could not be removed.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("Failed to delete the file %s due to %v", f.Path, f.Err)
}

// Result summarizes a run.
type Result struct {
	DryRun    bool
	Confirmed bool
	Groups    int
	Deleted   int
	Retained  int
	Failures  []Failure
}

// Pruner deletes duplicates. Everything it would do is written to out in
// the same shape whether or not DryRun is set.
type Pruner struct {
	fs      afero.Fs
	out     io.Writer
	confirm Confirmer
	dryRun  bool
	log     zerolog.Logger
}

// New creates a pruner.
func New(fsys afero.Fs, out io.Writer, confirm Confirmer, dryRun bool, log zerolog.Logger) *Pruner {
	return &Pruner{fs: fsys, out: out, confirm: confirm, dryRun: dryRun, log: log}
}

// Run asks for confirmation once and then processes every group. A removal
// failure is recorded and processing continues. Groups with fewer than two
// members are left alone; zero-byte groups keep their last member like any
// other group.
func (p *Pruner) Run(ctx context.Context, records []report.Record) (*Result, error) {
	res := &Result{DryRun: p.dryRun}

	var bytesEach int64
	for _, r := range records {
		bytesEach += r.BytesEach
	}
	fmt.Fprintf(p.out, "Is this a dry run? : %t\n\n", p.dryRun)
	fmt.Fprintf(p.out, "Found %d group(s) with %s total files size on the disk.\n\n",
		len(records), humanize.IBytes(uint64(bytesEach)))

	if len(records) == 0 {
		fmt.Fprintln(p.out, "\nFound no duplicates.")
		return res, nil
	}

	ok, err := p.confirm.Confirm(promptStyle.Render("Shall I proceed to delete the duplicates?"))
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		fmt.Fprintln(p.out, "Aborted, nothing was deleted.")
		return res, nil
	}
	res.Confirmed = true

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if len(r.Paths) < 2 {
			continue
		}
		res.Groups++
		p.pruneGroup(r, res)
	}

	p.summarize(res)
	return res, nil
}

func (p *Pruner) pruneGroup(r report.Record, res *Result) {
	retained := r.Paths[len(r.Paths)-1]
	victims := r.Paths[:len(r.Paths)-1]

	fmt.Fprintf(p.out, "\nTrying deleting %d file(s) in group %d\n", len(victims), r.GroupNo)
	for i, path := range victims {
		if !p.dryRun {
			if err := p.fs.Remove(path); err != nil {
				p.log.Debug().Err(err).Str("path", path).Msg("remove failed")
				res.Failures = append(res.Failures, Failure{Path: path, Err: err})
				continue
			}
		}
		res.Deleted++
		fmt.Fprintf(p.out, "      Deleted the file (%d) :: %s\n", i, pathStyle.Render(path))
	}
	res.Retained++
	fmt.Fprintf(p.out, "\n      Retained the file :: %s\n\n", retainedStyle.Render(retained))
}

func (p *Pruner) summarize(res *Result) {
	if p.dryRun {
		fmt.Fprintln(p.out, "\nNothing changed. This was a dry run.")
		return
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(p.out, "## %s ##\n\n", errorStyle.Render("Error: some duplicates could not be deleted. Here is the list"))
		for _, f := range res.Failures {
			fmt.Fprintln(p.out, failureStyle.Render(f.String()))
		}
	}
	fmt.Fprintf(p.out, "\nDone. Deleted %s file(s) across %d group(s)", humanize.Comma(int64(res.Deleted)), res.Groups)
	if n := len(res.Failures); n > 0 {
		fmt.Fprintf(p.out, " with %d failure(s)", n)
	}
	fmt.Fprintln(p.out, ".")
}
