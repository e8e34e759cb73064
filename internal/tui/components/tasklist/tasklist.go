// Package tasklist shows the tasks of one Day in creation order.
package tasklist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daynote/internal/models"
)

// AddTaskMsg asks for a new task on the shown Day.
type AddTaskMsg struct {
	Day models.Day
}

// BackMsg returns to the day list.
type BackMsg struct{}

type Item struct {
	Task models.Task
}

func (i Item) Title() string       { return i.Task.Text }
func (i Item) Description() string { return i.Task.CreatedTime + "  " + i.Task.CreatedDate }
func (i Item) FilterValue() string { return i.Task.Text }

type KeyMap struct {
	Add  key.Binding
	Back key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	day  models.Day
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Back}
	}

	return Model{list: l, keys: keys}
}

// SetDay shows day's tasks. Title is the header line, e.g. "martes 5  3/2024".
func (m *Model) SetDay(day models.Day, title string) {
	m.day = day
	m.list.Title = title

	items := make([]list.Item, len(day.Tasks))
	for i, t := range day.Tasks {
		items[i] = Item{Task: t}
	}
	m.list.SetItems(items)
}

func (m Model) Day() models.Day {
	return m.day
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			day := m.day
			return m, func() tea.Msg { return AddTaskMsg{Day: day} }
		case key.Matches(msg, m.keys.Back):
			if m.list.FilterState() == list.Unfiltered {
				return m, func() tea.Msg { return BackMsg{} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  " + m.list.Title + "\n\n  No tasks for this day.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
