package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/clonehunt/internal/db"
	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/fingerprint"
	"github.com/michaelscutari/clonehunt/internal/group"
	"github.com/michaelscutari/clonehunt/internal/pathutil"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/michaelscutari/clonehunt/internal/rollup"
	"github.com/michaelscutari/clonehunt/internal/scan"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

func main() {
	dir := flag.String("dir", ".", "Directory to probe")
	limit := flag.Int("limit", 200000, "Max candidates to fingerprint (0 = all)")
	workerList := flag.String("workers", "1,4,8", "Comma-separated worker counts to compare")
	strategies := flag.String("strategy", "metadata,checksum", "Strategies to run: metadata, checksum")
	depth := flag.Int("depth", 0, "Maximum walk depth (0 = unbounded)")
	shuffle := flag.Bool("shuffle", false, "Shuffle sampled paths")
	sampleSeed := flag.Int64("seed", 0, "Shuffle seed (0 = time-based)")
	exportGroups := flag.Int("export-groups", 0, "Also time a SQLite export of this many synthetic groups")
	exportDir := flag.String("export-dir", os.TempDir(), "Directory for the temporary export database")
	flag.Parse()

	workers, err := parseWorkers(*workerList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --workers: %v\n", err)
		os.Exit(1)
	}

	fsys := afero.NewOsFs()
	root := pathutil.Absolute(*dir)

	opts := scan.DefaultOptions().WithUnbounded()
	if *depth > 0 {
		opts = scan.DefaultOptions().WithMaxDepth(*depth)
	}
	start := time.Now()
	res, err := scan.NewScanner(fsys, opts, zerolog.Nop()).Run(context.Background(), root)
	walkDur := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk error: %v\n", err)
		os.Exit(1)
	}

	files := res.Files
	if *shuffle && len(files) > 1 {
		seed := *sampleSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
	}
	if *limit > 0 && *limit < len(files) {
		files = files[:*limit]
	}

	var sampleBytes int64
	for _, f := range files {
		sampleBytes += f.Size
	}

	fmt.Printf("dir=%s candidates=%d bytes=%s shuffle=%t\n", root, len(files), humanize.IBytes(uint64(sampleBytes)), *shuffle)
	fmt.Printf("walk: %v dirs=%d errors=%d\n", walkDur, len(res.Dirs), res.Errors)

	for _, name := range strings.Split(*strategies, ",") {
		var checksum bool
		switch strings.TrimSpace(name) {
		case "metadata":
		case "checksum":
			checksum = true
		default:
			fmt.Fprintf(os.Stderr, "unknown strategy %q\n", name)
			os.Exit(1)
		}
		for _, w := range workers {
			run(fsys, checksum, w, files)
		}
	}

	if *exportGroups > 0 {
		if err := benchExport(*exportDir, *exportGroups); err != nil {
			fmt.Fprintf(os.Stderr, "export error: %v\n", err)
			os.Exit(1)
		}
	}
}

func benchExport(dir string, groups int) error {
	records := make([]report.Record, groups)
	for i := range records {
		paths := []string{
			filepath.Join(dir, "a", strconv.Itoa(i)),
			filepath.Join(dir, "b", strconv.Itoa(i)),
			filepath.Join(dir, "c", strconv.Itoa(i)),
		}
		records[i] = report.Record{GroupNo: i + 1, Count: len(paths), BytesEach: int64(i%4096 + 1), Paths: paths}
	}

	ctx := context.Background()
	start := time.Now()
	rollups, err := rollup.NewBuilder(dir).Build(ctx, records)
	if err != nil {
		return err
	}
	rollupDur := time.Since(start)

	dbPath := filepath.Join(dir, fmt.Sprintf(".clonehuntbench-%d.db", time.Now().UnixNano()))
	defer os.Remove(dbPath)

	start = time.Now()
	meta := entry.HuntMeta{RootPath: dir, StartTime: start, EndTime: start, Strategy: "synthetic"}
	if err := db.Export(ctx, dbPath, meta, records, rollups); err != nil {
		return err
	}
	elapsed := time.Since(start)

	members := groups * 3
	fmt.Printf("export: groups=%d members=%d rollups=%d rollup=%v total=%v", groups, members, len(rollups), rollupDur, elapsed)
	if elapsed.Seconds() > 0 {
		fmt.Printf(" throughput=%.0f rows/sec", float64(groups+members)/elapsed.Seconds())
	}
	fmt.Println()
	return nil
}

func run(fsys afero.Fs, checksum bool, workers int, files []entry.Candidate) {
	strategy := fingerprint.New(checksum)
	h := fingerprint.NewHasher(fsys, strategy, workers, zerolog.Nop())

	start := time.Now()
	table := group.Collect(context.Background(), h, files)
	elapsed := time.Since(start)

	dups := group.Duplicates(table.Buckets())
	stats := h.Stats()
	fmt.Printf("%-8s workers=%-3d calls=%d skipped=%d errors=%d groups=%d total=%v",
		strategy.Name(), workers, stats.Processed, stats.Skipped, stats.Failed, len(dups), elapsed)
	if elapsed.Seconds() > 0 {
		fmt.Printf(" throughput=%.0f files/sec", float64(stats.Processed)/elapsed.Seconds())
	}
	fmt.Println()
}

func parseWorkers(list string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("worker count must be at least 1, got %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}
