package tui

import (
	"errors"
	"testing"

	"github.com/michaelscutari/clonehunt/internal/report"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"
)

var sample = []report.Record{
	{GroupNo: 1, Count: 2, BytesEach: 100, Paths: []string{"/a/one.txt", "/b/one.txt"}},
	{GroupNo: 2, Count: 3, BytesEach: 50, Paths: []string{"/a/two.jpg", "/b/two.jpg", "/c/two.jpg"}},
	{GroupNo: 3, Count: 2, BytesEach: 400, Paths: []string{"/a/three.iso", "/b/three.iso"}},
}

func loaded(t *testing.T) *Model {
	t.Helper()
	m := NewModel("report.json", func() ([]report.Record, error) {
		return append([]report.Record(nil), sample...), nil
	})
	m.Update(m.Init()())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	require.True(t, m.loaded)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func groupNos(m *Model) []int {
	var out []int
	for _, g := range m.groups {
		out = append(out, g.GroupNo)
	}
	return out
}

func TestSortKeys(t *testing.T) {
	m := loaded(t)
	require.Equal(t, []int{3, 1, 2}, groupNos(m)) // waste: 400, 100, 100

	m.Update(key("c"))
	require.Equal(t, []int{2, 1, 3}, groupNos(m))

	m.Update(key("s"))
	require.Equal(t, []int{3, 1, 2}, groupNos(m))

	m.Update(key("g"))
	require.Equal(t, []int{1, 2, 3}, groupNos(m))
}

func TestOpenGroupMarksRetained(t *testing.T) {
	m := loaded(t)
	m.Update(key("g"))
	m.Update(key("down"))
	m.Update(key("enter"))
	require.NotNil(t, m.open)
	require.Equal(t, 2, m.open.GroupNo)

	view := m.View()
	require.Contains(t, view, "Clone 2")
	require.Contains(t, view, "retain")
	require.Contains(t, view, "/c/two.jpg")

	m.Update(key("backspace"))
	require.Nil(t, m.open)
	require.Equal(t, 1, m.cursor)
}

func TestFilter(t *testing.T) {
	m := loaded(t)
	m.Update(key("/"))
	for _, r := range "iso" {
		m.Update(key(string(r)))
	}
	require.Equal(t, []int{3}, groupNos(m))

	m.Update(key("esc"))
	require.Len(t, m.groups, 3)
}

func TestLoadError(t *testing.T) {
	m := NewModel("broken.json", func() ([]report.Record, error) { return nil, errors.New("boom") })
	m.Update(m.Init()())
	require.Contains(t, m.View(), "boom")
}

func TestMembersLoadedOnOpen(t *testing.T) {
	headers := []report.Record{
		{GroupNo: 1, Count: 2, BytesEach: 100},
		{GroupNo: 2, Count: 3, BytesEach: 50},
	}
	var calls []int
	m := NewModel("hunt.db", func() ([]report.Record, error) {
		return append([]report.Record(nil), headers...), nil
	}).WithMembers(func(groupNo int) ([]string, error) {
		calls = append(calls, groupNo)
		return []string{"/x/a", "/x/b", "/x/c"}, nil
	})
	m.Update(m.Init()())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m.Update(key("g"))
	require.Equal(t, int64(100), waste(m.groups[0]))

	m.Update(key("down"))
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Loading members...")
	require.Contains(t, m.View(), "Clone 2")

	m.Update(cmd())
	require.Equal(t, []int{2}, calls)
	view := m.View()
	require.NotContains(t, view, "Loading members...")
	require.Contains(t, view, "/x/c")
	require.Contains(t, view, "retain")

	m.Update(key("backspace"))
	_, cmd = m.Update(key("enter"))
	require.Nil(t, cmd)
	require.Equal(t, []string{"/x/a", "/x/b", "/x/c"}, m.open.Paths)
	require.Equal(t, []int{2}, calls)
}
