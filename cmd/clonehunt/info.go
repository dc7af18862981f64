package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/clonehunt/internal/db"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display hunt metadata",
	Long:  `Print metadata about an exported report database including timestamps and statistics.`,
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

var infoDB string

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "./clonehunt.db", "Path to database file")
}

func runInfo(cmd *cobra.Command, args []string) error {
	reader, err := db.OpenReader(infoDB)
	if err != nil {
		return err
	}
	defer reader.Close()

	meta, err := reader.Meta()
	if err != nil {
		return fmt.Errorf("failed to read hunt metadata: %w", err)
	}

	fmt.Printf("Hunt Information\n")
	fmt.Printf("================\n\n")
	fmt.Printf("Root Path:    %s\n", meta.RootPath)
	fmt.Printf("Strategy:     %s\n", meta.Strategy)
	fmt.Printf("Start Time:   %s\n", meta.StartTime.Format(time.RFC3339))
	if !meta.EndTime.IsZero() {
		fmt.Printf("End Time:     %s\n", meta.EndTime.Format(time.RFC3339))
		fmt.Printf("Duration:     %s\n", meta.EndTime.Sub(meta.StartTime).Round(time.Millisecond))
	}
	fmt.Printf("\nStatistics\n")
	fmt.Printf("----------\n")
	fmt.Printf("Files:            %s\n", humanize.Comma(meta.FilesScanned))
	fmt.Printf("Directories:      %s\n", humanize.Comma(meta.DirsScanned))
	fmt.Printf("Scanned Size:     %s\n", humanize.IBytes(uint64(meta.BytesScanned)))
	fmt.Printf("Duplicate Groups: %s\n", humanize.Comma(meta.DuplicateGroups))
	fmt.Printf("Duplicate Files:  %s\n", humanize.Comma(meta.DuplicateFiles))
	fmt.Printf("Duplicate Size:   %s\n", humanize.IBytes(uint64(meta.DuplicateBytes)))

	return nil
}
