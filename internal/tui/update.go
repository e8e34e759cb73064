package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daynote/internal/tui/components/daylist"
	"github.com/julianstephens/daynote/internal/tui/components/tasklist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.dayList.SetSize(msg.Width-h, msg.Height-v-4)
		m.taskList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case daysLoadedMsg:
		m.err = nil
		m.setDays(msg.days)
		return m, nil

	case taskAddedMsg:
		m.err = nil
		m.setDays(msg.days)
		if n := len(msg.day.Tasks); n > 0 {
			m.status = fmt.Sprintf("Added %q at %s", msg.day.Tasks[n-1].Text, msg.day.Tasks[n-1].CreatedTime)
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case daylist.AddTaskMsg:
		return m, m.openForm(msg.Day)
	case tasklist.AddTaskMsg:
		return m, m.openForm(msg.Day)

	case daylist.OpenDayMsg:
		m.showDay(msg.Day)
		m.state = StateDay
		return m, nil
	case tasklist.BackMsg:
		m.state = StateDays
		return m, nil
	}

	if m.state == StateAddTask {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.reload()
		case key.Matches(msg, m.keys.Tab):
			return m.toggleToday(), nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateDays:
		m.dayList, cmd = m.dayList.Update(msg)
	case StateDay:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

// toggleToday switches between the day list and today's tasks.
func (m Model) toggleToday() Model {
	if m.state == StateDay {
		m.state = StateDays
		return m
	}
	if day, ok := m.find(m.app.Today()); ok {
		m.showDay(day)
		m.state = StateDay
	}
	return m
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		cmds = append(cmds, m.addTask(m.target, m.taskForm.Text))
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, tea.Batch(cmds...)
}
