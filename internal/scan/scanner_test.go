package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, fsys afero.Fs, files map[string]int) {
	t.Helper()
	for path, size := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fsys, path, make([]byte, size), 0644))
	}
}

func candidatePaths(res *Result) []string {
	var out []string
	for _, c := range res.Files {
		out = append(out, c.Path)
	}
	sort.Strings(out)
	return out
}

func runScan(t *testing.T, fsys afero.Fs, opts *ScanOptions, root string) *Result {
	t.Helper()
	res, err := NewScanner(fsys, opts, zerolog.Nop()).Run(context.Background(), root)
	require.NoError(t, err)
	return res
}

func TestBothWalkersVisitHiddenEntries(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]int{
		"/data/a.txt":            10,
		"/data/.hidden":          5,
		"/data/.git/config":      7,
		"/data/sub/deeper/b.txt": 3,
	})
	want := []string{"/data/.git/config", "/data/.hidden", "/data/a.txt", "/data/sub/deeper/b.txt"}

	for name, opts := range map[string]*ScanOptions{
		"recursive": DefaultOptions().WithUnbounded(),
		"pooled":    DefaultOptions().WithWorkers(3),
	} {
		t.Run(name, func(t *testing.T) {
			res := runScan(t, fsys, opts, "/data")
			require.Equal(t, want, candidatePaths(res))
			require.Equal(t, int64(25), res.TotalBytes)
			require.Equal(t, int64(4), res.FilesSeen)
			require.Len(t, res.Dirs, 4) // root, .git, sub, sub/deeper
		})
	}
}

func TestPooledWalkerRespectsMaxDepth(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]int{
		"/r/one.txt":       1,
		"/r/a/two.txt":     1,
		"/r/a/b/three.txt": 1,
	})

	res := runScan(t, fsys, DefaultOptions().WithMaxDepth(1), "/r")
	require.Equal(t, []string{"/r/one.txt"}, candidatePaths(res))

	res = runScan(t, fsys, DefaultOptions().WithMaxDepth(2), "/r")
	require.Equal(t, []string{"/r/a/two.txt", "/r/one.txt"}, candidatePaths(res))
}

func TestExtensionAndSizeFilters(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]int{
		"/r/small.pdf": 10,
		"/r/big.pdf":   500,
		"/r/big.PDF":   500,
		"/r/note.txt":  100,
		"/r/README":    100,
	})

	res := runScan(t, fsys, DefaultOptions().WithExtensions("pdf,txt"), "/r")
	require.Equal(t, []string{"/r/big.pdf", "/r/note.txt", "/r/small.pdf"}, candidatePaths(res))
	require.Equal(t, int64(5), res.FilesSeen)
	require.Equal(t, int64(610), res.TotalBytes)

	res = runScan(t, fsys, DefaultOptions().WithMinSize(100), "/r")
	require.Equal(t, []string{"/r/big.PDF", "/r/big.pdf"}, candidatePaths(res))

	res = runScan(t, fsys, DefaultOptions().WithMaxSize(100), "/r")
	require.Equal(t, []string{"/r/small.pdf"}, candidatePaths(res))
}

// flakyFs fails to open or stat selected paths.
type flakyFs struct {
	afero.Fs
	badDir  string
	badStat string
}

func (f flakyFs) Open(name string) (afero.File, error) {
	if name == f.badDir {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func (f flakyFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if name == f.badStat {
		return nil, false, errors.New("stat failed")
	}
	return f.Fs.(afero.Lstater).LstatIfPossible(name)
}

func TestUnreadableEntriesDoNotAbortTheWalk(t *testing.T) {
	base := afero.NewMemMapFs()
	writeTree(t, base, map[string]int{
		"/r/ok.txt":          4,
		"/r/locked/gone.txt": 4,
		"/r/vanishing.bin":   9,
	})
	fsys := flakyFs{Fs: base, badDir: "/r/locked", badStat: "/r/vanishing.bin"}

	res := runScan(t, fsys, DefaultOptions().WithWorkers(2), "/r")
	require.Equal(t, []string{"/r/ok.txt", "/r/vanishing.bin"}, candidatePaths(res))
	require.Equal(t, int64(4), res.TotalBytes)
	require.Equal(t, int64(1), res.Errors)

	res = runScan(t, flakyFs{Fs: base, badDir: "/r/locked"}, DefaultOptions().WithUnbounded(), "/r")
	require.Equal(t, []string{"/r/ok.txt", "/r/vanishing.bin"}, candidatePaths(res))
}

func TestScannerOnDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(root, "file.txt"), filepath.Join(root, "link.txt")))

	res := runScan(t, afero.NewOsFs(), DefaultOptions().WithWorkers(1), root)
	require.Len(t, res.Files, 1)
	require.Equal(t, filepath.Join(root, "file.txt"), res.Files[0].Path)
	require.Equal(t, int64(5), res.Files[0].Size)
}

func TestSkippedSymlinkIsLoggedWhenVerbose(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(root, "file.txt"), filepath.Join(root, "link.txt")))

	var buf bytes.Buffer
	log := zerolog.New(zerolog.SyncWriter(&buf))
	opts := DefaultOptions().WithWorkers(2).WithVerbose(true)
	res, err := NewScanner(afero.NewOsFs(), opts, log).Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	require.Contains(t, buf.String(), `"kind":"symlink"`)
	require.Contains(t, buf.String(), "link.txt")
}

func TestScannerRejectsMissingRoot(t *testing.T) {
	_, err := NewScanner(afero.NewMemMapFs(), nil, zerolog.Nop()).Run(context.Background(), "/nope")
	require.Error(t, err)
}
