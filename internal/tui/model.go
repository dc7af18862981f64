package tui

import (
	"slices"
	"strings"

	"github.com/michaelscutari/clonehunt/internal/report"

	tea "github.com/charmbracelet/bubbletea"
)

// SortColumn represents the current sort field.
type SortColumn int

const (
	SortByWaste SortColumn = iota
	SortBySize
	SortByCount
	SortByGroup
)

func (s SortColumn) String() string {
	switch s {
	case SortBySize:
		return "size"
	case SortByCount:
		return "count"
	case SortByGroup:
		return "group"
	default:
		return "waste"
	}
}

// Loader produces the groups to browse. Groups may come without members
// when a MemberLoader is set.
type Loader func() ([]report.Record, error)

// MemberLoader fetches one group's members when it is opened.
type MemberLoader func(groupNo int) ([]string, error)

// Model holds the TUI state. The list view shows groups; opening one shows
// its members with the retained one marked.
type Model struct {
	load         Loader
	members      MemberLoader
	pending      int // group whose members are being fetched, 0 for none
	source       string
	allGroups    []report.Record
	groups       []report.Record
	totals       report.Totals
	cursor       int
	open         *report.Record
	listCursor   int
	sort         SortColumn
	width        int
	height       int
	filter       string
	filterActive bool
	loaded       bool
	err          error
}

// NewModel creates a new TUI model. source names what is being browsed.
func NewModel(source string, load Loader) *Model {
	return &Model{
		load:   load,
		source: source,
		sort:   SortByWaste,
	}
}

// WithMembers makes the model fetch members lazily through f.
func (m *Model) WithMembers(f MemberLoader) *Model {
	m.members = f
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadInitialData
}

type dataLoadedMsg struct {
	groups []report.Record
	err    error
}

func (m *Model) loadInitialData() tea.Msg {
	groups, err := m.load()
	return dataLoadedMsg{groups: groups, err: err}
}

type membersLoadedMsg struct {
	groupNo int
	paths   []string
	err     error
}

// loadMembers returns a command fetching g's members, or nil when they are
// already known.
func (m *Model) loadMembers(g report.Record) tea.Cmd {
	if m.members == nil || len(g.Paths) >= g.Count {
		return nil
	}
	return func() tea.Msg {
		paths, err := m.members(g.GroupNo)
		return membersLoadedMsg{groupNo: g.GroupNo, paths: paths, err: err}
	}
}

// setMembers stores fetched members on every copy of the group.
func (m *Model) setMembers(groupNo int, paths []string) {
	for i := range m.allGroups {
		if m.allGroups[i].GroupNo == groupNo {
			m.allGroups[i].Paths = paths
		}
	}
	for i := range m.groups {
		if m.groups[i].GroupNo == groupNo {
			m.groups[i].Paths = paths
		}
	}
	if m.open != nil && m.open.GroupNo == groupNo {
		m.open.Paths = paths
	}
}

// membersPending reports whether the open group is still loading.
func (m *Model) membersPending() bool {
	return m.open != nil && m.pending == m.open.GroupNo
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	if m.open != nil {
		return "↑/↓ move | Backspace: back | q: quit"
	}
	return "↑/↓ move | Enter: open | w/s/c/g: sort | /: filter | q: quit"
}

// memberCount counts a group's members whether or not they are loaded.
func memberCount(r report.Record) int {
	return max(r.Count, len(r.Paths))
}

func waste(r report.Record) int64 {
	n := memberCount(r)
	if n < 2 {
		return 0
	}
	return int64(n-1) * r.BytesEach
}

func (m *Model) setGroups(groups []report.Record) {
	m.allGroups = groups
	m.totals = report.Summarize(groups)
	m.sortGroups()
	m.applyFilter()
}

func (m *Model) sortGroups() {
	slices.SortStableFunc(m.allGroups, func(a, b report.Record) int {
		var x, y int64
		switch m.sort {
		case SortBySize:
			x, y = b.BytesEach, a.BytesEach
		case SortByCount:
			x, y = int64(memberCount(b)), int64(memberCount(a))
		case SortByGroup:
			x, y = int64(a.GroupNo), int64(b.GroupNo)
		default:
			x, y = waste(b), waste(a)
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return a.GroupNo - b.GroupNo
	})
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.groups = m.allGroups
	} else {
		filtered := make([]report.Record, 0, len(m.allGroups))
		needle := strings.ToLower(m.filter)
		for _, g := range m.allGroups {
			for _, p := range g.Paths {
				if strings.Contains(strings.ToLower(p), needle) {
					filtered = append(filtered, g)
					break
				}
			}
		}
		m.groups = filtered
	}
	m.cursor = 0
}

// rows returns how many selectable rows the current view has.
func (m *Model) rows() int {
	if m.open != nil {
		return len(m.open.Paths)
	}
	return len(m.groups)
}
