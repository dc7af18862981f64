package fingerprint

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func patterned(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i) ^ seed
	}
	return b
}

func writeFile(t *testing.T, fsys afero.Fs, path string, data []byte) entry.Candidate {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, data, 0644))
	info, err := fsys.Stat(path)
	require.NoError(t, err)
	return entry.Candidate{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

func digest(parts ...[]byte) Key {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func TestChecksumSmallFileHashesWholeContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	data := patterned(SmallFileLimit, 7)
	c := writeFile(t, fsys, "/f/exact", data)

	key, size, err := ChecksumStrategy{}.Fingerprint(fsys, c)
	require.NoError(t, err)
	require.Equal(t, int64(2048), size)
	require.Equal(t, digest(data), key)
}

func TestChecksumLargeFileHashesEdgesAndLength(t *testing.T) {
	fsys := afero.NewMemMapFs()
	data := patterned(SmallFileLimit+1, 3)
	c := writeFile(t, fsys, "/f/over", data)

	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(data)))
	want := digest(data[:EdgeBlockSize], data[len(data)-EdgeBlockSize:], length[:])

	key, size, err := ChecksumStrategy{}.Fingerprint(fsys, c)
	require.NoError(t, err)
	require.Equal(t, int64(2049), size)
	require.Equal(t, want, key)
	require.NotEqual(t, digest(data), key)
}

func TestChecksumIgnoresMiddleOfLargeFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := patterned(8192, 1)
	b := bytes.Clone(a)
	b[4096] ^= 0xff

	ka, _, err := ChecksumStrategy{}.Fingerprint(fsys, writeFile(t, fsys, "/f/a", a))
	require.NoError(t, err)
	kb, _, err := ChecksumStrategy{}.Fingerprint(fsys, writeFile(t, fsys, "/f/b", b))
	require.NoError(t, err)
	require.Equal(t, ka, kb)

	// Same edges, different length.
	cdata := append(bytes.Clone(a[:4096]), a[4095:]...)
	kc, _, err := ChecksumStrategy{}.Fingerprint(fsys, writeFile(t, fsys, "/f/c", cdata))
	require.NoError(t, err)
	require.NotEqual(t, ka, kc)
}

func TestChecksumMissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, _, err := ChecksumStrategy{}.Fingerprint(fsys, entry.Candidate{Path: "/nope"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSkip)
}

func TestFastStrategy(t *testing.T) {
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := entry.Candidate{Path: "/a/report.pdf", Size: 100, ModTime: mtime}

	k1, size, err := FastStrategy{}.Fingerprint(nil, base)
	require.NoError(t, err)
	require.Equal(t, int64(100), size)

	sameNameElsewhere := base
	sameNameElsewhere.Path = "/b/report.pdf"
	k2, _, err := FastStrategy{}.Fingerprint(nil, sameNameElsewhere)
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	for name, c := range map[string]entry.Candidate{
		"other mtime": {Path: base.Path, Size: base.Size, ModTime: mtime.Add(time.Second)},
		"other size":  {Path: base.Path, Size: 101, ModTime: mtime},
		"other name":  {Path: "/a/report.txt", Size: base.Size, ModTime: mtime},
	} {
		k, _, err := FastStrategy{}.Fingerprint(nil, c)
		require.NoError(t, err, name)
		require.NotEqual(t, k1, k, name)
	}
}

func TestFastStrategySkipsMissingMetadata(t *testing.T) {
	_, _, err := FastStrategy{}.Fingerprint(nil, entry.Candidate{Path: "/a/x", Size: 0})
	require.ErrorIs(t, err, ErrSkip)
}

func TestKeyOrdering(t *testing.T) {
	require.Negative(t, KeyFromUint64(1).Compare(KeyFromUint64(2)))
	require.Negative(t, KeyFromUint64(255).Compare(KeyFromUint64(256)))
	require.Zero(t, KeyFromUint64(9).Compare(KeyFromUint64(9)))
	require.Len(t, KeyFromUint64(1).String(), 64)

	a := Pair{Key: KeyFromUint64(1), Path: "/z"}
	b := Pair{Key: KeyFromUint64(1), Path: "/a"}
	require.Positive(t, ComparePairs(a, b))
}
