package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var ErrUnknownStyle = errors.New("unknown output style")

// Style is the format used when a report goes to a file.
type Style string

const (
	StyleDefault Style = "default"
	StyleJSON    Style = "json"
	StyleSQLite  Style = "sqlite"
)

// ParseStyle parses an output style name.
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleDefault, StyleJSON, StyleSQLite:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	memberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func header(r Record) string {
	return fmt.Sprintf("Clone %d, %s (%d bytes) each * %d",
		r.GroupNo, humanize.IBytes(uint64(r.BytesEach)), r.BytesEach, len(r.Paths))
}

// WriteConsole renders records for a terminal. Members are listed in report
// order without marking which one the delete command would keep.
func WriteConsole(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, bannerStyle.Render("######## Report ########"))
	for _, r := range records {
		fmt.Fprintf(bw, "\n%s\n", headerStyle.Render(header(r)))
		for _, p := range r.Paths {
			fmt.Fprintf(bw, "      %s\n", memberStyle.Render(p))
		}
	}
	return bw.Flush()
}

// WritePlain renders records as uncolored text with quoted paths.
func WritePlain(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		fmt.Fprintf(bw, "\n%s\n", header(r))
		for _, p := range r.Paths {
			fmt.Fprintf(bw, "      %q\n", p)
		}
	}
	return bw.Flush()
}

// Write renders records to a file in the given style. StyleSQLite is
// handled by the db package and rejected here.
func Write(w io.Writer, style Style, records []Record) error {
	switch style {
	case StyleDefault:
		return WritePlain(w, records)
	case StyleJSON:
		return WriteJSON(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownStyle, style)
}
