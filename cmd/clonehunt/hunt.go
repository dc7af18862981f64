package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/clonehunt/internal/config"
	"github.com/michaelscutari/clonehunt/internal/db"
	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/hunt"
	"github.com/michaelscutari/clonehunt/internal/logging"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/michaelscutari/clonehunt/internal/rollup"
	"github.com/michaelscutari/clonehunt/internal/scan"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var huntCmd = &cobra.Command{
	Use:   "hunt [path]",
	Short: "Hunt for duplicate files under a directory",
	Long: `Walk a directory, fingerprint every candidate file and report groups of
identical files. Without --checksum files match on name, modification time and
size; with it they match on the first and last KiB of content plus the length.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHunt,
}

var (
	huntMaxDepth    int
	huntNoMaxDepth  bool
	huntChecksum    bool
	huntExtension   string
	huntMinSize     string
	huntMaxSize     string
	huntSortBy      string
	huntOrderBy     string
	huntOutputStyle string
	huntOutputFile  string
	huntTopDirs     int
	huntProgress    time.Duration
)

func init() {
	huntCmd.Flags().IntVarP(&huntMaxDepth, "max-depth", "m", config.DefaultDepth, "Maximum directory depth to descend")
	huntCmd.Flags().BoolVar(&huntNoMaxDepth, "no-max-depth", false, "Descend without a depth limit (single-threaded walk)")
	huntCmd.Flags().BoolVarP(&huntChecksum, "checksum", "c", false, "Match on a partial content checksum instead of metadata")
	huntCmd.Flags().StringVarP(&huntExtension, "extension", "e", "", "Comma-separated extensions to target, e.g. pdf,txt")
	huntCmd.Flags().StringVar(&huntMinSize, "min-size", "", "Only consider files larger than this, e.g. 150KiB")
	huntCmd.Flags().StringVar(&huntMaxSize, "max-size", "", "Only consider files smaller than this, e.g. 2MB")
	huntCmd.Flags().StringVarP(&huntSortBy, "sort-by", "s", "file-type", "Sort groups by: file-type, file-size, both")
	huntCmd.Flags().StringVarP(&huntOrderBy, "order-by", "o", "", "Order for size sorting: asc, desc")
	huntCmd.Flags().StringVarP(&huntOutputStyle, "output-style", "u", "", "Report file style: default, json, sqlite")
	huntCmd.Flags().StringVarP(&huntOutputFile, "output-file", "f", "", "Write the report to this file")
	huntCmd.Flags().IntVar(&huntTopDirs, "top-dirs", 0, "Print the N directories with the most reclaimable bytes")
	huntCmd.Flags().DurationVar(&huntProgress, "progress-interval", 30*time.Second, "Emit progress lines to stderr at this interval when not a TTY (0 to disable)")
}

// huntConfig layers explicitly set flags over the loaded configuration.
func huntConfig(cmd *cobra.Command, args []string) (*config.Settings, error) {
	h, err := config.Load(globalConfig)
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		h.Path = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("threads") {
		h.Threads = globalThreads
	}
	if flags.Changed("verbose") {
		h.Verbose = globalVerbose
	}
	if flags.Changed("max-depth") {
		h.MaxDepth = huntMaxDepth
	}
	if flags.Changed("no-max-depth") {
		h.Unbounded = huntNoMaxDepth
	}
	if flags.Changed("checksum") {
		h.Checksum = huntChecksum
	}
	if flags.Changed("extension") {
		h.Extensions = huntExtension
	}
	if flags.Changed("min-size") {
		h.MinSize = huntMinSize
	}
	if flags.Changed("max-size") {
		h.MaxSize = huntMaxSize
	}
	if flags.Changed("sort-by") {
		h.SortBy = huntSortBy
	}
	if flags.Changed("order-by") {
		h.OrderBy = huntOrderBy
	}
	if flags.Changed("output-style") {
		h.OutputStyle = huntOutputStyle
	}
	if flags.Changed("output-file") {
		h.OutputFile = huntOutputFile
	}
	if flags.Changed("top-dirs") {
		h.TopDirs = huntTopDirs
	}
	return h.Resolve()
}

func runHunt(cmd *cobra.Command, args []string) error {
	settings, err := huntConfig(cmd, args)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, settings.Verbose)

	fmt.Println(sortIntent(settings.Sorting))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	runner := hunt.NewRunner(afero.NewOsFs(), settings, log)
	display := newProgressDisplay(logging.IsTerminal(os.Stderr), huntProgress)
	runner.SetProgressFunc(display.update)
	runner.SetStageFunc(display.setStage)

	display.start()
	res, err := runner.Scan(ctx)
	display.stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Hunt canceled.")
			return nil
		}
		return err
	}
	printOperationalInfo(os.Stdout, settings, res)

	out, elapsed, err := huntAndWrite(ctx, runner, res, display, func(out *hunt.Outcome) error {
		return writeReport(ctx, settings, out)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Hunt canceled.")
			return nil
		}
		return err
	}

	fmt.Printf("\n============ Result ============\n\n")
	fmt.Printf("Time taken to finish Operation: %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Total duplicate records found: %s\n", humanize.Comma(out.Totals.Records))
	fmt.Printf("Total duplicate records file size on the disk: %s\n", humanize.IBytes(uint64(out.Totals.Bytes)))
	if out.Hashing.Failed > 0 {
		fmt.Printf("Files that could not be fingerprinted: %d\n", out.Hashing.Failed)
	}
	if settings.OutputFile != "" {
		fmt.Printf("Report written to: %s\n", settings.OutputFile)
	}

	if settings.TopDirs > 0 {
		printTopDirs(os.Stdout, rollup.TopN(out.Rollups, settings.TopDirs))
	}
	fmt.Printf("\n================================\n")
	return nil
}

// huntAndWrite runs the hunt phase and writes its report. The elapsed time
// covers both, from the first fingerprint to the last byte of output.
func huntAndWrite(ctx context.Context, runner *hunt.Runner, res *scan.Result, display *progressDisplay,
	write func(*hunt.Outcome) error) (*hunt.Outcome, time.Duration, error) {
	start := time.Now()

	display.start()
	out, err := runner.Hunt(ctx, res)
	display.stop()
	if err != nil {
		return nil, 0, err
	}
	if err := write(out); err != nil {
		return nil, 0, err
	}
	return out, time.Since(start), nil
}

func sortIntent(s report.Sorting) string {
	switch s.Mode {
	case report.SortFileSize:
		return fmt.Sprintf("I will sort the final output by file size in the %s order\n", orderWord(s.Order))
	case report.SortBoth:
		return fmt.Sprintf("I will sort the final output by file size and file type in the %s order\n", orderWord(s.Order))
	}
	return "I will sort the final output by file type\n"
}

func orderWord(o report.Order) string {
	if o == report.OrderDesc {
		return "descending"
	}
	return "ascending"
}

func orNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}

func printOperationalInfo(w io.Writer, s *config.Settings, res *scan.Result) {
	depth := fmt.Sprint(s.Scan.MaxDepth)
	if s.Scan.Unbounded {
		depth = "Ignored"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "\n**** Operational Info ****\n\n")
	fmt.Fprintf(tw, "Operating system\t: %s\n", runtime.GOOS)
	fmt.Fprintf(tw, "The source directory you provided\t: %s\n", res.Root)
	fmt.Fprintf(tw, "Maximum depth of directories to look for\t: %s\n", depth)
	fmt.Fprintf(tw, "Total directories found in the path provided\t: %s\n", humanize.Comma(int64(len(res.Dirs))))
	fmt.Fprintf(tw, "Total files found in the directories\t: %s\n", humanize.Comma(int64(len(res.Files))))
	fmt.Fprintf(tw, "Total size of source directory\t: %s\n", humanize.IBytes(uint64(res.TotalBytes)))
	fmt.Fprintf(tw, "Total threads about to be used\t: %d\n", s.Threads)
	fmt.Fprintf(tw, "Perform a Checksum?\t: %t\n", s.Checksum)
	fmt.Fprintf(tw, "Verbose printing?\t: %t\n", s.Verbose)
	fmt.Fprintf(tw, "Target file type / Extension\t: %s\n", orNA(strings.Join(s.Scan.Extensions, ",")))
	fmt.Fprintf(tw, "Sort by\t: %s\n", s.Sorting.Mode)
	fmt.Fprintf(tw, "Order by\t: %s\n", orNA(string(s.Sorting.Order)))
	fmt.Fprintf(tw, "Output file\t: %s\n", orNA(s.OutputFile))
	fmt.Fprintf(tw, "Output style\t: %s\n", orNA(string(s.OutputStyle)))
	if res.Errors > 0 {
		fmt.Fprintf(tw, "Entries skipped (unreadable)\t: %d\n", res.Errors)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func writeReport(ctx context.Context, s *config.Settings, out *hunt.Outcome) error {
	switch s.OutputStyle {
	case "":
		return report.WriteConsole(os.Stdout, out.Records)
	case report.StyleSQLite:
		if err := db.Export(ctx, s.OutputFile, out.Meta, out.Records, out.Rollups); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		return nil
	}

	f, err := os.Create(s.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create the output file: %w", err)
	}
	if err := report.Write(f, s.OutputStyle, out.Records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

func printTopDirs(w io.Writer, dirs []entry.Rollup) {
	fmt.Fprintf(w, "\nTop directories by reclaimable space:\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RECLAIMABLE\tFILES\tPATH\n")
	for _, d := range dirs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			humanize.IBytes(uint64(d.ReclaimableBytes)),
			humanize.Comma(d.ReclaimableFiles),
			d.Path,
		)
	}
	tw.Flush()
}

// progressDisplay draws a spinner on a terminal or periodic PROGRESS lines
// otherwise, fed by the runner's callbacks.
type progressDisplay struct {
	isTTY    bool
	interval time.Duration

	files, dirs, errors, bytes, hashed, total int64
	stage                                     atomic.Value

	startTime time.Time
	done      chan struct{}
	finished  chan struct{}
}

func newProgressDisplay(isTTY bool, interval time.Duration) *progressDisplay {
	d := &progressDisplay{isTTY: isTTY, interval: interval, startTime: time.Now()}
	d.stage.Store("scan")
	return d
}

func (d *progressDisplay) update(p hunt.Progress) {
	atomic.StoreInt64(&d.files, p.Files)
	atomic.StoreInt64(&d.dirs, p.Dirs)
	atomic.StoreInt64(&d.errors, p.Errors)
	atomic.StoreInt64(&d.bytes, p.Bytes)
	atomic.StoreInt64(&d.hashed, p.Hashed)
	atomic.StoreInt64(&d.total, p.Total)
}

func (d *progressDisplay) setStage(s string) {
	if s != "" {
		d.stage.Store(s)
	}
}

func (d *progressDisplay) start() {
	d.done = make(chan struct{})
	d.finished = make(chan struct{})
	go d.loop()
}

func (d *progressDisplay) stop() {
	close(d.done)
	<-d.finished
	if d.isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}
}

func (d *progressDisplay) loop() {
	defer close(d.finished)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	lastNonTTY := time.Now()
	var spinnerIdx int
	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			if d.isTTY {
				spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
				spinnerIdx++
				fmt.Fprintf(os.Stderr, "\r\033[K%s %s", spinner, d.line())
			} else if d.interval > 0 && time.Since(lastNonTTY) >= d.interval {
				fmt.Fprintf(os.Stderr, "PROGRESS %s\n", d.fields())
				lastNonTTY = time.Now()
			}
		}
	}
}

func (d *progressDisplay) line() string {
	stage, _ := d.stage.Load().(string)
	elapsed := time.Since(d.startTime).Round(time.Millisecond)
	errStr := ""
	if errs := atomic.LoadInt64(&d.errors); errs > 0 {
		errStr = fmt.Sprintf(" | %d errors", errs)
	}

	switch stage {
	case "scan":
		files := atomic.LoadInt64(&d.files)
		dirs := atomic.LoadInt64(&d.dirs)
		rate := float64(0)
		if elapsed.Seconds() > 0 {
			rate = float64(files+dirs) / elapsed.Seconds()
		}
		return fmt.Sprintf("Scanning... %d files | %d dirs | %s | %.0f/sec | %s%s",
			files, dirs, humanize.IBytes(uint64(atomic.LoadInt64(&d.bytes))), rate, elapsed, errStr)
	case "hash":
		return fmt.Sprintf("Hunting... %d/%d files fingerprinted | %s%s",
			atomic.LoadInt64(&d.hashed), atomic.LoadInt64(&d.total), elapsed, errStr)
	}
	return fmt.Sprintf("%s... | %s", stage, elapsed)
}

func (d *progressDisplay) fields() string {
	stage, _ := d.stage.Load().(string)
	elapsed := time.Since(d.startTime).Round(time.Millisecond)
	switch stage {
	case "scan":
		return fmt.Sprintf("stage=scan files=%d dirs=%d bytes=%s elapsed=%s errors=%d",
			atomic.LoadInt64(&d.files), atomic.LoadInt64(&d.dirs),
			humanize.IBytes(uint64(atomic.LoadInt64(&d.bytes))), elapsed, atomic.LoadInt64(&d.errors))
	case "hash":
		return fmt.Sprintf("stage=hash hashed=%d total=%d elapsed=%s errors=%d",
			atomic.LoadInt64(&d.hashed), atomic.LoadInt64(&d.total), elapsed, atomic.LoadInt64(&d.errors))
	}
	return fmt.Sprintf("stage=%s elapsed=%s", stage, elapsed)
}
