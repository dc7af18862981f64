package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/clonehunt/internal/db"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an exported report database non-interactively",
	Long:  `Query a report database written with "hunt -u sqlite" and print results for scripting.`,
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

var (
	queryDB      string
	querySort    string
	queryLimit   int
	queryDirs    bool
	queryMembers bool
)

func init() {
	queryCmd.Flags().StringVarP(&queryDB, "db", "d", "./clonehunt.db", "Path to database file")
	queryCmd.Flags().StringVarP(&querySort, "sort", "s", "size", "Sort by: size, count, waste, group")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 20, "Maximum number of results (0 = all)")
	queryCmd.Flags().BoolVar(&queryDirs, "dirs", false, "List directories by reclaimable space instead of groups")
	queryCmd.Flags().BoolVarP(&queryMembers, "members", "m", false, "Print the members of each group")
}

func runQuery(cmd *cobra.Command, args []string) error {
	reader, err := db.OpenReader(queryDB)
	if err != nil {
		return err
	}
	defer reader.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if queryDirs {
		rollups, err := reader.Rollups(queryLimit)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Fprintf(w, "RECLAIMABLE\tFILES\tPATH\n")
		for _, r := range rollups {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				humanize.IBytes(uint64(r.ReclaimableBytes)),
				humanize.Comma(r.ReclaimableFiles),
				r.Path,
			)
		}
		return nil
	}

	switch querySort {
	case "size", "count", "waste", "group":
	default:
		return fmt.Errorf("invalid sort %q (expected size|count|waste|group)", querySort)
	}

	groups, err := reader.Groups(querySort, queryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Fprintf(w, "GROUP\tEACH\tCOUNT\tWASTE\tFIRST MEMBER\n")
	for _, g := range groups {
		paths, err := reader.Members(g.GroupNo)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		first := ""
		if len(paths) > 0 {
			first = paths[0]
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			g.GroupNo,
			humanize.IBytes(uint64(g.BytesEach)),
			g.Count,
			humanize.IBytes(uint64(g.BytesEach*int64(g.Count-1))),
			first,
		)
		if queryMembers {
			for _, p := range paths {
				fmt.Fprintf(w, "\t\t\t\t  %s\n", p)
			}
		}
	}
	return nil
}
