package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/michaelscutari/clonehunt/internal/config"
	"github.com/michaelscutari/clonehunt/internal/hunt"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/michaelscutari/clonehunt/internal/scan"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestSortIntent(t *testing.T) {
	require.Contains(t, sortIntent(report.Sorting{Mode: report.SortFileType}), "by file type")
	require.Contains(t, sortIntent(report.Sorting{Mode: report.SortFileSize, Order: report.OrderAsc}), "file size in the ascending order")
	require.Contains(t, sortIntent(report.Sorting{Mode: report.SortBoth, Order: report.OrderDesc}), "file size and file type in the descending order")
}

func TestHuntConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CLONEHUNT_CONFIG", "")
	t.Setenv("CLONEHUNT_THREADS", "3")
	t.Setenv("CLONEHUNT_SORT_BY", "file-size")
	t.Setenv("CLONEHUNT_ORDER_BY", "asc")

	dir := t.TempDir()
	require.NoError(t, huntCmd.ParseFlags([]string{"-c", "-o", "desc", "-e", "pdf,txt"}))
	t.Cleanup(func() {
		for _, name := range []string{"checksum", "order-by", "extension"} {
			huntCmd.Flags().Lookup(name).Changed = false
		}
		huntChecksum, huntOrderBy, huntExtension = false, "", ""
	})

	s, err := huntConfig(huntCmd, []string{dir})
	require.NoError(t, err)
	require.Equal(t, dir, s.Root)
	require.Equal(t, 3, s.Threads)
	require.True(t, s.Checksum)
	require.Equal(t, report.Sorting{Mode: report.SortFileSize, Order: report.OrderDesc}, s.Sorting)
	require.Equal(t, []string{"pdf", "txt"}, s.Scan.Extensions)
}

func TestPrintOperationalInfo(t *testing.T) {
	h := config.Default()
	h.Path = "/data"
	h.Unbounded = true
	s, err := h.Resolve()
	require.NoError(t, err)

	var buf bytes.Buffer
	printOperationalInfo(&buf, s, &scan.Result{Root: "/data", Dirs: []string{"/data"}, TotalBytes: 2048})

	out := buf.String()
	require.Contains(t, out, "**** Operational Info ****")
	require.Regexp(t, `Maximum depth of directories to look for\s+: Ignored`, out)
	require.Regexp(t, `Total size of source directory\s+: 2.0 KiB`, out)
	require.Regexp(t, `Output style\s+: NA`, out)
	require.Regexp(t, `Sort by\s+: file-type`, out)
}

func TestElapsedIncludesReportWrite(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/data", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/data/a", []byte("same"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/data/b", []byte("same"), 0644))

	h := config.Default()
	h.Path = "/data"
	h.Checksum = true
	s, err := h.Resolve()
	require.NoError(t, err)

	runner := hunt.NewRunner(fsys, s, zerolog.Nop())
	res, err := runner.Scan(context.Background())
	require.NoError(t, err)

	const writeTime = 50 * time.Millisecond
	var written int
	out, elapsed, err := huntAndWrite(context.Background(), runner, res, newProgressDisplay(false, 0),
		func(out *hunt.Outcome) error {
			written = len(out.Records)
			time.Sleep(writeTime)
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, 1, written)
	require.Len(t, out.Records, 1)
	require.GreaterOrEqual(t, elapsed, writeTime)
}
