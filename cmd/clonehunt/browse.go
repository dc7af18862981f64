package main

import (
	"fmt"
	"os"

	"github.com/michaelscutari/clonehunt/internal/db"
	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/michaelscutari/clonehunt/internal/tui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a report interactively",
	Long:  `Open an interactive TUI over a JSON report or an exported report database.`,
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

var (
	browseReport string
	browseDB     string
)

func init() {
	browseCmd.Flags().StringVarP(&browseReport, "report", "r", "", "JSON report produced by hunt")
	browseCmd.Flags().StringVarP(&browseDB, "db", "d", "", "Report database produced by hunt")
	browseCmd.MarkFlagsMutuallyExclusive("report", "db")
	browseCmd.MarkFlagsOneRequired("report", "db")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	var model *tui.Model
	if browseDB != "" {
		reader, err := db.OpenReader(browseDB)
		if err != nil {
			return err
		}
		defer reader.Close()
		model = tui.NewModel(browseDB, func() ([]report.Record, error) {
			return reader.Groups("group", 0)
		}).WithMembers(reader.Members)
	} else {
		model = tui.NewModel(browseReport, loadJSONReport(browseReport))
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

func loadJSONReport(path string) tui.Loader {
	return func() ([]report.Record, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return report.ReadRecords(f)
	}
}
