package entry

import (
	"os"
	"time"
)

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile    Kind = 0
	KindDir     Kind = 1
	KindSymlink Kind = 2
	KindOther   Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from an os.FileMode.
func KindFromMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Candidate is a regular file discovered during traversal. It is never
// mutated after the walk that produced it.
type Candidate struct {
	Path    string // Absolute, cleaned path
	Size    int64  // Zero when metadata could not be read
	ModTime time.Time
}

// Rollup holds the duplicate bytes that deleting every non-retained member
// would free beneath a directory.
type Rollup struct {
	Path             string
	ReclaimableBytes int64
	ReclaimableFiles int64
}

// HuntMeta holds metadata about a finished hunt.
type HuntMeta struct {
	RootPath        string
	StartTime       time.Time
	EndTime         time.Time
	Strategy        string
	FilesScanned    int64
	DirsScanned     int64
	BytesScanned    int64
	DuplicateGroups int64
	DuplicateFiles  int64
	DuplicateBytes  int64
}
