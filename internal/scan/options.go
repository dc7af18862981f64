package scan

import (
	"strings"

	"github.com/michaelscutari/clonehunt/internal/pathutil"
)

// DefaultMaxDepth is the traversal depth used when none is configured.
const DefaultMaxDepth = 10

// ScanOptions configures the scanning behavior.
type ScanOptions struct {
	// Workers is the number of concurrent directory processors used by the
	// depth-bounded walk.
	Workers int

	// MaxDepth limits how far below the root entries are visited. The root's
	// children are at depth 1.
	MaxDepth int

	// Unbounded selects the single-threaded recursive walk with no depth limit.
	Unbounded bool

	// Extensions restricts candidates to these extensions (case-sensitive,
	// without the leading dot). Empty means every file passes.
	Extensions []string

	// MinSize, when set, keeps only files strictly larger than it.
	MinSize    int64
	HasMinSize bool

	// MaxSize, when set, keeps only files strictly smaller than it.
	MaxSize    int64
	HasMaxSize bool

	Verbose bool
}

// DefaultOptions returns sensible defaults for scanning.
func DefaultOptions() *ScanOptions {
	return &ScanOptions{
		Workers:  8,
		MaxDepth: DefaultMaxDepth,
	}
}

// WithWorkers sets the number of workers.
func (o *ScanOptions) WithWorkers(n int) *ScanOptions {
	o.Workers = n
	return o
}

// WithMaxDepth bounds the walk to n levels below the root.
func (o *ScanOptions) WithMaxDepth(n int) *ScanOptions {
	o.MaxDepth = n
	o.Unbounded = false
	return o
}

// WithUnbounded switches to the recursive walk without a depth limit.
func (o *ScanOptions) WithUnbounded() *ScanOptions {
	o.Unbounded = true
	return o
}

// WithExtensions parses a comma-separated extension list such as "pdf,txt".
func (o *ScanOptions) WithExtensions(list string) *ScanOptions {
	o.Extensions = nil
	for _, ext := range strings.Split(list, ",") {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			o.Extensions = append(o.Extensions, ext)
		}
	}
	return o
}

// WithMinSize keeps only files larger than n bytes.
func (o *ScanOptions) WithMinSize(n int64) *ScanOptions {
	o.MinSize = n
	o.HasMinSize = true
	return o
}

// WithMaxSize keeps only files smaller than n bytes.
func (o *ScanOptions) WithMaxSize(n int64) *ScanOptions {
	o.MaxSize = n
	o.HasMaxSize = true
	return o
}

// WithVerbose enables per-entry debug logging.
func (o *ScanOptions) WithVerbose(v bool) *ScanOptions {
	o.Verbose = v
	return o
}

// MatchesExtension reports whether path passes the extension filter.
func (o *ScanOptions) MatchesExtension(path string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := pathutil.Ext(path)
	if ext == "" {
		return false
	}
	for _, want := range o.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// MatchesSize reports whether size passes the active size bound. The minimum
// bound takes precedence if both are somehow set; validation rejects that.
func (o *ScanOptions) MatchesSize(size int64) bool {
	switch {
	case o.HasMinSize:
		return size > o.MinSize
	case o.HasMaxSize:
		return size < o.MaxSize
	default:
		return true
	}
}
