package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clonehunt",
	Short: "Find groups of identical files",
	Long: `clonehunt walks a directory tree, fingerprints files by metadata or by a
partial content checksum and reports groups of possible clones. Reports can be
written as text, JSON or SQLite, browsed interactively and fed back to the
delete command to remove all but one member of each group.`,
	SilenceUsage: true,
}

var (
	globalThreads int
	globalVerbose bool
	globalConfig  string
)

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().IntVarP(&globalThreads, "threads", "t", 8, "Number of worker goroutines")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Log every fingerprint and skipped entry")
	rootCmd.PersistentFlags().StringVar(&globalConfig, "config", "", "YAML config file (default $CLONEHUNT_CONFIG)")

	rootCmd.AddCommand(huntCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(browseCmd)
}
