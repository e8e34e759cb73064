// Package tui is the interactive journal view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daynote/internal/app"
	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/tui/components/daylist"
	"github.com/julianstephens/daynote/internal/tui/components/tasklist"
)

type SessionState int

const (
	StateDays SessionState = iota
	StateDay
	StateAddTask
)

type TaskFormModel struct {
	Text string
}

type (
	daysLoadedMsg struct {
		days []models.Day
	}
	taskAddedMsg struct {
		day  models.Day
		days []models.Day
	}
	errMsg struct {
		err error
	}
)

type Model struct {
	ctx           context.Context
	app           *app.Controller
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	days          []models.Day
	dayList       daylist.Model
	taskList      tasklist.Model
	form          *huh.Form
	taskForm      *TaskFormModel
	target        models.Day
	status        string
	err           error
	quitting      bool
	width         int
	height        int
}

// NewModel starts on the day list. days is what EnsureToday returned.
func NewModel(ctx context.Context, ctrl *app.Controller, days []models.Day) Model {
	m := Model{
		ctx:      ctx,
		app:      ctrl,
		state:    StateDays,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		dayList:  daylist.New(nil, ctrl.Today(), ctrl.WeekdayName, 0, 0),
		taskList: tasklist.New(0, 0),
	}
	m.setDays(days)
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateDays:
		keys = append(keys, m.keys.Enter, m.keys.Add)
	case StateDay:
		keys = append(keys, m.keys.Back, m.keys.Add)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Back}
	actions := []key.Binding{m.keys.Add}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) setDays(days []models.Day) {
	m.days = days
	m.dayList.SetDays(days)
	if m.state == StateDay || m.previousState == StateDay {
		if day, ok := m.find(m.taskList.Day().Date); ok {
			m.showDay(day)
		}
	}
}

func (m Model) find(date models.Date) (models.Day, bool) {
	for _, day := range m.days {
		if day.Date == date {
			return day, true
		}
	}
	return models.Day{}, false
}

func (m *Model) showDay(day models.Day) {
	title := fmt.Sprintf("%s %d  %d/%d", m.app.WeekdayName(day), day.Day, day.Month, day.Year)
	m.taskList.SetDay(day, title)
}

func (m *Model) openForm(day models.Day) tea.Cmd {
	m.target = day
	m.taskForm = &TaskFormModel{}
	m.form = newTaskForm(m.taskForm, m.app.WeekdayName(day))
	if m.state != StateAddTask {
		m.previousState = m.state
	}
	m.state = StateAddTask
	m.err = nil
	return m.form.Init()
}

func newTaskForm(fm *TaskFormModel, weekday string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New task for " + weekday).
				Value(&fm.Text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return models.ErrEmptyTask
					}
					return nil
				}),
		),
	).WithShowHelp(false)
}

func (m Model) addTask(day models.Day, text string) tea.Cmd {
	ctx, ctrl := m.ctx, m.app
	return func() tea.Msg {
		days, err := ctrl.AddTask(ctx, &day, text)
		if err != nil {
			logger.Error("Failed to add task", "date", day.Date.String(), "error", err)
			return errMsg{err: err}
		}
		return taskAddedMsg{day: day, days: days}
	}
}

func (m Model) reload() tea.Cmd {
	ctx, ctrl := m.ctx, m.app
	return func() tea.Msg {
		days, err := ctrl.EnsureToday(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return daysLoadedMsg{days: days}
	}
}
