package rollup

import (
	"context"
	"testing"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/stretchr/testify/require"
)

func TestBuilderRollup(t *testing.T) {
	records := []report.Record{
		{GroupNo: 1, Count: 3, BytesEach: 10, Paths: []string{"/root/a/f1", "/root/a/x/f2", "/root/b/f3"}},
		{GroupNo: 2, Count: 2, BytesEach: 100, Paths: []string{"/root/b/big1", "/root/a/big2"}},
		{GroupNo: 3, Count: 1, BytesEach: 999, Paths: []string{"/root/b/lonely"}},
	}

	rollups, err := NewBuilder("/root").Build(context.Background(), records)
	require.NoError(t, err)

	require.Equal(t, []entry.Rollup{
		{Path: "/root", ReclaimableBytes: 120, ReclaimableFiles: 3},
		{Path: "/root/b", ReclaimableBytes: 100, ReclaimableFiles: 1},
		{Path: "/root/a", ReclaimableBytes: 20, ReclaimableFiles: 2},
		{Path: "/root/a/x", ReclaimableBytes: 10, ReclaimableFiles: 1},
	}, rollups)

	require.Len(t, TopN(rollups, 2), 2)
	require.Len(t, TopN(rollups, 10), 4)
	require.Equal(t, "/root", TopN(rollups, 1)[0].Path)
}

func TestBuilderWithoutRoot(t *testing.T) {
	records := []report.Record{
		{GroupNo: 1, Count: 2, BytesEach: 5, Paths: []string{"/a/b/f", "/c/f"}},
	}

	rollups, err := NewBuilder("").Build(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, []entry.Rollup{
		{Path: "/", ReclaimableBytes: 5, ReclaimableFiles: 1},
		{Path: "/a", ReclaimableBytes: 5, ReclaimableFiles: 1},
		{Path: "/a/b", ReclaimableBytes: 5, ReclaimableFiles: 1},
	}, rollups)
}

func TestBuilderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder("/r").Build(ctx, []report.Record{{Count: 2, Paths: []string{"/r/a", "/r/b"}}})
	require.ErrorIs(t, err, context.Canceled)
}
