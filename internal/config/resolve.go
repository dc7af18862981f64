package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/clonehunt/internal/pathutil"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/michaelscutari/clonehunt/internal/scan"
)

// Settings is a validated hunt configuration.
type Settings struct {
	Root        string
	Scan        *scan.ScanOptions
	Checksum    bool
	Threads     int
	Verbose     bool
	Sorting     report.Sorting
	OutputFile  string
	OutputStyle report.Style // empty when the report goes to the console
	TopDirs     int
}

// Resolve validates h and converts it into Settings. Every configuration
// error is reported here, before any filesystem work.
func (h Hunt) Resolve() (*Settings, error) {
	if strings.TrimSpace(h.Path) == "" {
		return nil, fmt.Errorf("a path to hunt is required")
	}
	if h.Threads < 1 {
		return nil, fmt.Errorf("threads must be at least 1, got %d", h.Threads)
	}
	if !h.Unbounded && h.MaxDepth < 1 {
		return nil, fmt.Errorf("max depth must be at least 1, got %d", h.MaxDepth)
	}
	if h.MinSize != "" && h.MaxSize != "" {
		return nil, fmt.Errorf("%w: min size and max size cannot be used together", ErrConflictingOptions)
	}
	if (h.OutputFile == "") != (h.OutputStyle == "") {
		return nil, fmt.Errorf("%w: output file and output style must be given together", ErrConflictingOptions)
	}
	if h.TopDirs < 0 {
		return nil, fmt.Errorf("top dirs cannot be negative, got %d", h.TopDirs)
	}

	mode, err := report.ParseSortMode(h.SortBy)
	if err != nil {
		return nil, err
	}
	order, err := report.ParseOrder(h.OrderBy)
	if err != nil {
		return nil, err
	}
	sorting := report.Sorting{Mode: mode, Order: order}
	if err := sorting.Validate(); err != nil {
		return nil, err
	}

	s := &Settings{
		Root:       pathutil.Absolute(h.Path),
		Checksum:   h.Checksum,
		Threads:    h.Threads,
		Verbose:    h.Verbose,
		Sorting:    sorting,
		OutputFile: h.OutputFile,
		TopDirs:    h.TopDirs,
	}
	if h.OutputStyle != "" {
		if s.OutputStyle, err = report.ParseStyle(h.OutputStyle); err != nil {
			return nil, err
		}
	}

	opts := scan.DefaultOptions().
		WithWorkers(h.Threads).
		WithMaxDepth(h.MaxDepth).
		WithExtensions(h.Extensions).
		WithVerbose(h.Verbose)
	if h.Unbounded {
		opts = opts.WithUnbounded()
	}
	if h.MinSize != "" {
		n, err := parseSize("min", h.MinSize)
		if err != nil {
			return nil, err
		}
		opts = opts.WithMinSize(n)
	}
	if h.MaxSize != "" {
		n, err := parseSize("max", h.MaxSize)
		if err != nil {
			return nil, err
		}
		opts = opts.WithMaxSize(n)
	}
	s.Scan = opts

	return s, nil
}

// parseSize parses a byte count such as "150 KiB" that must fit a file size.
func parseSize(which, s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s size %q: %w", which, s, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid %s size %q: larger than %d bytes", which, s, int64(math.MaxInt64))
	}
	return int64(n), nil
}
