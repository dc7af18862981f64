package scan

import (
	"context"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Node is a directory entry produced by a Walker.
type Node interface {
	Path() string
	IsDir() bool
	Info() (fs.FileInfo, error)
}

// Walker visits every entry reachable from root. visit may be called from
// several goroutines at once.
type Walker interface {
	Walk(ctx context.Context, root string, visit func(Node)) error
}

// infoNode carries metadata obtained from a directory listing.
type infoNode struct {
	path string
	info fs.FileInfo
}

func (n infoNode) Path() string { return n.path }
func (n infoNode) IsDir() bool { return n.info.IsDir() }
func (n infoNode) Info() (fs.FileInfo, error) { return n.info, nil }

// lstatNode carries the result of an explicit Lstat, including its failure.
type lstatNode struct {
	path string
	info fs.FileInfo
	err  error
}

func (n lstatNode) Path() string { return n.path }
func (n lstatNode) IsDir() bool { return n.err == nil && n.info.IsDir() }
func (n lstatNode) Info() (fs.FileInfo, error) { return n.info, n.err }

// lstat never follows symlinks when the filesystem supports it.
func lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}
