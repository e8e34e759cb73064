// Package daylist shows the journal, one entry per Day.
package daylist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daynote/internal/models"
)

// AddTaskMsg asks for a new task on Day.
type AddTaskMsg struct {
	Day models.Day
}

// OpenDayMsg asks to show the tasks of Day.
type OpenDayMsg struct {
	Day models.Day
}

type Item struct {
	Day     models.Day
	Weekday string
	IsToday bool
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s %d  %d/%d", i.Weekday, i.Day.Day, i.Day.Month, i.Day.Year)
	if i.IsToday {
		title += "  •"
	}
	return title
}

func (i Item) Description() string {
	switch n := len(i.Day.Tasks); n {
	case 0:
		return "No tasks for this day."
	case 1:
		return "1 task"
	default:
		return fmt.Sprintf("%d tasks", n)
	}
}

func (i Item) FilterValue() string { return i.Weekday + " " + i.Day.Date.String() }

type KeyMap struct {
	Add  key.Binding
	Open key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open day"),
		),
	}
}

type Model struct {
	list    list.Model
	keys    KeyMap
	weekday func(models.Day) string
	today   models.Date
}

// New lists days newest first. weekday renders the weekday name of a Day.
func New(days []models.Day, today models.Date, weekday func(models.Day) string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Days"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Open}
	}

	m := Model{list: l, keys: keys, weekday: weekday, today: today}
	m.SetDays(days)
	return m
}

// SetDays replaces the items, keeping the selection on the same date when possible.
func (m *Model) SetDays(days []models.Day) {
	var selected *models.Date
	if d, ok := m.Selected(); ok {
		selected = &d.Date
	}

	items := make([]list.Item, len(days))
	cursor := 0
	for i := range days {
		day := days[len(days)-1-i]
		items[i] = Item{Day: day, Weekday: m.weekday(day), IsToday: day.Date == m.today}
		if selected != nil && day.Date == *selected {
			cursor = i
		}
	}
	m.list.SetItems(items)
	m.list.Select(cursor)
}

// Selected returns the highlighted Day.
func (m Model) Selected() (models.Day, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Day, true
	}
	return models.Day{}, false
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
			if day, ok := m.Selected(); ok {
				return m, func() tea.Msg { return AddTaskMsg{Day: day} }
			}
		case key.Matches(msg, m.keys.Open):
			if day, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenDayMsg{Day: day} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No days recorded yet."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
