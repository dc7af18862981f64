package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

const pageSize = 10

// sortKeys maps list-view keys to the column they sort by.
var sortKeys = map[string]SortColumn{
	"w": SortByWaste,
	"s": SortBySize,
	"c": SortByCount,
	"g": SortByGroup,
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.loaded = true
		m.filter, m.filterActive = "", false
		m.setGroups(msg.groups)

	case membersLoadedMsg:
		if m.pending == msg.groupNo {
			m.pending = 0
		}
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.setMembers(msg.groupNo, msg.paths)

	case tea.KeyMsg:
		k := msg.String()
		if k == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.filterActive:
			m.editFilter(msg)
		case k == "q":
			return m, tea.Quit
		case m.open != nil:
			m.memberKey(k)
		default:
			return m, m.listKey(k)
		}
	}
	return m, nil
}

// editFilter handles typing while the filter prompt is open.
func (m *Model) editFilter(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filterActive = false
	case tea.KeyEsc:
		m.filterActive = false
		m.filter = ""
		m.applyFilter()
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
			m.applyFilter()
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
		m.applyFilter()
	}
}

func (m *Model) listKey(k string) tea.Cmd {
	if col, ok := sortKeys[k]; ok {
		m.sort = col
		m.sortGroups()
		m.applyFilter()
		return nil
	}
	switch k {
	case "enter", "l", "right":
		if m.cursor < len(m.groups) {
			g := m.groups[m.cursor]
			m.open = &g
			m.listCursor, m.cursor = m.cursor, 0
			cmd := m.loadMembers(g)
			if cmd != nil {
				m.pending = g.GroupNo
			}
			return cmd
		}
	case "/":
		m.filterActive = true
	default:
		m.navigate(k)
	}
	return nil
}

func (m *Model) memberKey(k string) {
	switch k {
	case "backspace", "h", "left", "esc":
		m.open = nil
		m.cursor = m.listCursor
	case "g":
		m.cursor = 0
	default:
		m.navigate(k)
	}
}

// navigate moves the cursor for keys shared by both views.
func (m *Model) navigate(k string) {
	switch k {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-pageSize)
	case "pgdown":
		m.move(pageSize)
	case "home":
		m.cursor = 0
	case "end", "G":
		m.move(m.rows())
	}
}

// move shifts the cursor by delta, clamped to the visible rows.
func (m *Model) move(delta int) {
	m.cursor = max(0, min(m.cursor+delta, m.rows()-1))
}
