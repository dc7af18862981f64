package fingerprint

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestHasherProcessesEveryFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	var files []entry.Candidate
	for i := 0; i < 50; i++ {
		files = append(files, writeFile(t, fsys, fmt.Sprintf("/d/%02d", i), patterned(10+i, byte(i))))
	}
	files = append(files, entry.Candidate{Path: "/d/gone", Size: 4})

	var buf bytes.Buffer
	h := NewHasher(fsys, ChecksumStrategy{}, 4, zerolog.New(zerolog.SyncWriter(&buf)))

	var mu sync.Mutex
	var got []Pair
	h.Run(context.Background(), files, func(p Pair) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})

	require.Len(t, got, 50)
	stats := h.Stats()
	require.Equal(t, int64(51), stats.Processed)
	require.Equal(t, int64(1), stats.Failed)
	require.Zero(t, stats.Skipped)
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), "/d/gone")
}

func TestHasherLogsHashesAtDebug(t *testing.T) {
	fsys := afero.NewMemMapFs()
	files := []entry.Candidate{writeFile(t, fsys, "/d/a", []byte("abc"))}

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)
	NewHasher(fsys, ChecksumStrategy{}, 1, log).Run(context.Background(), files, func(Pair) {})
	require.Empty(t, buf.String())

	buf.Reset()
	NewHasher(fsys, ChecksumStrategy{}, 1, log.Level(zerolog.DebugLevel)).Run(context.Background(), files, func(Pair) {})
	require.Contains(t, buf.String(), `"file":"/d/a"`)
}

func TestHasherCountsSkips(t *testing.T) {
	h := NewHasher(afero.NewMemMapFs(), FastStrategy{}, 0, zerolog.Nop())
	h.Run(context.Background(), []entry.Candidate{{Path: "/x"}}, func(Pair) {
		t.Fatal("skipped file emitted")
	})
	require.Equal(t, Stats{Processed: 1, Skipped: 1}, h.Stats())
}
