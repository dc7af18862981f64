package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/michaelscutari/clonehunt/internal/fingerprint"
	"github.com/michaelscutari/clonehunt/internal/group"
	"github.com/stretchr/testify/require"
)

func bucket(key uint64, size int64, paths ...string) group.Bucket {
	return group.Bucket{Key: fingerprint.KeyFromUint64(key), Size: size, Paths: paths}
}

func firstPaths(buckets []group.Bucket) []string {
	var out []string
	for _, b := range buckets {
		out = append(out, b.Paths[0])
	}
	return out
}

func TestSortingValidate(t *testing.T) {
	require.NoError(t, Sorting{Mode: SortFileType}.Validate())
	require.ErrorIs(t, Sorting{Mode: SortFileType, Order: OrderAsc}.Validate(), ErrOrderNotAllowed)
	require.ErrorIs(t, Sorting{Mode: SortFileSize}.Validate(), ErrOrderRequired)
	require.ErrorIs(t, Sorting{Mode: SortBoth}.Validate(), ErrOrderRequired)
	require.NoError(t, Sorting{Mode: SortBoth, Order: OrderDesc}.Validate())
	require.ErrorIs(t, Sorting{Mode: "name"}.Validate(), ErrUnknownSortMode)

	_, err := ParseSortMode("bogus")
	require.ErrorIs(t, err, ErrUnknownSortMode)
	_, err = ParseOrder("sideways")
	require.ErrorIs(t, err, ErrUnknownOrder)
	m, err := ParseSortMode("")
	require.NoError(t, err)
	require.Equal(t, SortFileType, m)
}

func TestSortModes(t *testing.T) {
	buckets := []group.Bucket{
		bucket(1, 300, "/a/z.txt", "/b/z.txt"),
		bucket(2, 100, "/a/noext", "/b/noext"),
		bucket(3, 200, "/a/y.jpg", "/b/y.jpg"),
		bucket(4, 100, "/a/x.txt", "/b/x.txt"),
	}

	got := Sort(buckets, Sorting{Mode: SortFileType})
	require.Equal(t, []string{"/a/y.jpg", "/a/x.txt", "/a/z.txt", "/a/noext"}, firstPaths(got))

	got = Sort(buckets, Sorting{Mode: SortFileSize, Order: OrderAsc})
	require.Equal(t, []string{"/a/x.txt", "/a/noext", "/a/y.jpg", "/a/z.txt"}, firstPaths(got))

	got = Sort(buckets, Sorting{Mode: SortFileSize, Order: OrderDesc})
	require.Equal(t, []string{"/a/z.txt", "/a/y.jpg", "/a/noext", "/a/x.txt"}, firstPaths(got))

	got = Sort(buckets, Sorting{Mode: SortBoth, Order: OrderAsc})
	require.Equal(t, []string{"/a/x.txt", "/a/noext", "/a/y.jpg", "/a/z.txt"}, firstPaths(got))

	// Input order does not matter.
	reversed := []group.Bucket{buckets[3], buckets[2], buckets[1], buckets[0]}
	require.Equal(t, Sort(buckets, Sorting{Mode: SortFileType}), Sort(reversed, Sorting{Mode: SortFileType}))
}

func TestRecordsAndTotals(t *testing.T) {
	sorted := []group.Bucket{
		bucket(1, 100, "/d/A", "/d/B"),
		bucket(2, 100, "/d/C"),
		bucket(3, 7, "/e/1", "/e/2", "/e/3"),
	}
	records := Records(sorted)
	require.Equal(t, []Record{
		{GroupNo: 1, Count: 2, BytesEach: 100, Paths: []string{"/d/A", "/d/B"}},
		{GroupNo: 2, Count: 3, BytesEach: 7, Paths: []string{"/e/1", "/e/2", "/e/3"}},
	}, records)
	require.Equal(t, Totals{Groups: 2, Records: 5, Bytes: 221}, Summarize(records))

	require.Equal(t, Totals{}, Summarize(Records([]group.Bucket{bucket(1, 5, "/only")})))
}

func TestJSONRoundTrip(t *testing.T) {
	records := []Record{
		{GroupNo: 1, Count: 3, BytesEach: 4096, Paths: []string{"/z", "/a", "/m"}},
		{GroupNo: 2, Count: 2, BytesEach: 0, Paths: []string{"/e1", "/e2"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))
	require.Contains(t, buf.String(), `"duplicate_group_bytes_each": 4096`)
	require.Contains(t, buf.String(), `"duplicate_list"`)

	back, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Equal(t, records, back)
}

func TestReadRecordsRejectsMalformed(t *testing.T) {
	for _, in := range []string{`{"duplicate_group_no": 1}`, `[{"duplicate_list": [1]}]`, `[`, `[] []`} {
		_, err := ReadRecords(strings.NewReader(in))
		require.Error(t, err, in)
	}

	records, err := ReadRecords(strings.NewReader(`[]`))
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestPlainAndConsole(t *testing.T) {
	records := []Record{{GroupNo: 1, Count: 2, BytesEach: 2048, Paths: []string{"/d/A", "/d/B"}}}

	var plain bytes.Buffer
	require.NoError(t, Write(&plain, StyleDefault, records))
	require.Equal(t, "\nClone 1, 2.0 KiB (2048 bytes) each * 2\n      \"/d/A\"\n      \"/d/B\"\n", plain.String())

	var console bytes.Buffer
	require.NoError(t, WriteConsole(&console, records))
	require.Contains(t, console.String(), "Clone 1, 2.0 KiB (2048 bytes) each * 2")
	require.Contains(t, console.String(), "/d/B")

	require.ErrorIs(t, Write(&plain, StyleSQLite, records), ErrUnknownStyle)
}
