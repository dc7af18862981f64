package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/michaelscutari/clonehunt/internal/report"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if !m.loaded {
		return "Loading..."
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	writeLine(titleStyle.Render("clonehunt - Duplicate Browser"))

	info := fmt.Sprintf("Report: %s | Groups: %s | Files: %s | Bytes: %s",
		truncateMiddle(m.source, max(10, m.width/3)),
		FormatCount(m.totals.Groups),
		FormatCount(m.totals.Records),
		FormatSize(m.totals.Bytes),
	)
	writeLine(statsStyle.Render(info))

	if m.open != nil {
		m.viewMembers(&b, writeLine, &headerLines)
	} else {
		m.viewGroups(&b, writeLine, &headerLines)
	}

	help := m.helpLine()
	if n := m.rows(); n > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, n)
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) visibleRange(headerLines, footerLines int) (int, int) {
	visibleRows := m.height - headerLines - footerLines
	if visibleRows < 5 {
		visibleRows = 5
	}
	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	return startIdx, min(m.rows(), startIdx+visibleRows)
}

func (m *Model) viewGroups(b *strings.Builder, writeLine func(string), headerLines *int) {
	status := fmt.Sprintf("Groups shown: %s | Sort: %s", FormatCount(int64(len(m.groups))), m.sort)
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	writeLine(statusStyle.Render(status))

	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	}

	widths := columnWidths{group: 6, each: 10, count: 6, waste: 10}
	nameWidth := calcNameWidth(m.width, widths)
	gap := strings.Repeat(" ", colGap)

	header := fmt.Sprintf("%*s%s%*s%s%*s%s%*s%s%-*s%s%*s",
		widths.group, headerLabel("GROUP", m.sort == SortByGroup, "^"), gap,
		widths.each, headerLabel("EACH", m.sort == SortBySize, "v"), gap,
		widths.count, headerLabel("COUNT", m.sort == SortByCount, "v"), gap,
		widths.waste, headerLabel("WASTE", m.sort == SortByWaste, "v"), gap,
		nameWidth, "FIRST MEMBER", gap,
		barColWidth, "WASTE%",
	)
	writeLine(headerStyle.Render(header))

	start, end := m.visibleRange(*headerLines, 2)
	for i := start; i < end; i++ {
		b.WriteString(m.formatGroup(m.groups[i], i == m.cursor, widths, nameWidth))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *Model) viewMembers(b *strings.Builder, writeLine func(string), headerLines *int) {
	g := m.open
	label := fmt.Sprintf("Clone %d: %s each * %d", g.GroupNo, FormatSize(g.BytesEach), memberCount(*g))
	writeLine(breadcrumbStyle.Render(label))
	if m.membersPending() {
		b.WriteString(statusStyle.Render("Loading members..."))
		b.WriteString("\n\n")
		return
	}
	writeLine(headerStyle.Render(fmt.Sprintf("%-10s%s", "ACTION", "PATH")))

	start, end := m.visibleRange(*headerLines, 2)
	for i := start; i < end; i++ {
		path := truncateMiddle(g.Paths[i], max(10, m.width-12))
		var line string
		if i == len(g.Paths)-1 {
			line = retainedStyle.Render(fmt.Sprintf("%-10s", "retain")) + fileStyle.Render(path)
		} else {
			line = deleteStyle.Render(fmt.Sprintf("%-10s", "delete")) + fileStyle.Render(path)
		}
		if i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("%-10s%s", memberAction(i, len(g.Paths)), path))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func memberAction(i, n int) string {
	if i == n-1 {
		return "retain"
	}
	return "delete"
}

type columnWidths struct {
	group int
	each  int
	count int
	waste int
}

const (
	colGap        = 2
	minNameWidth  = 10
	barBlockWidth = 10                                        // number of block characters
	barPctWidth   = 4                                         // " 78%" or "100%"
	barGapWidth   = 1                                         // space between blocks and pct
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth // 15
)

func calcNameWidth(totalWidth int, w columnWidths) int {
	used := w.group + w.each + w.count + w.waste + (colGap * 5) + barColWidth
	nameWidth := totalWidth - used
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return nameWidth
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func (m *Model) formatGroup(g report.Record, selected bool, widths columnWidths, nameWidth int) string {
	name := ""
	if len(g.Paths) > 0 {
		name = filepath.Base(g.Paths[0])
	}
	name = truncateRight(name, nameWidth)

	gap := strings.Repeat(" ", colGap)
	line := fmt.Sprintf("%*d%s%*s%s%*s%s%*s%s%-*s%s%s",
		widths.group, g.GroupNo, gap,
		widths.each, FormatSize(g.BytesEach), gap,
		widths.count, FormatCount(int64(memberCount(g))), gap,
		widths.waste, FormatSize(waste(g)), gap,
		nameWidth, name, gap,
		formatBar(waste(g), m.totalWaste()),
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func (m *Model) totalWaste() int64 {
	var total int64
	for _, g := range m.allGroups {
		total += waste(g)
	}
	return total
}

func formatBar(entryVal, parentTotal int64) string {
	if parentTotal <= 0 || entryVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := float64(entryVal) / float64(parentTotal) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func headerLabel(label string, active bool, dir string) string {
	if active {
		return label + dir
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
