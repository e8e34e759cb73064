package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daynote/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDays:
		content = docStyle.Render(m.dayList.View())
	case StateDay:
		content = docStyle.Render(m.taskList.View())
	case StateAddTask:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	today := m.app.Today()
	header := headerStyle.Render(m.app.WeekdayName(m.todayDay()) + " " + m.app.Locale().FormatDate(today.Time()))

	daysTab, dayTab := inactiveTabStyle, inactiveTabStyle
	if m.state == StateDays || (m.state == StateAddTask && m.previousState == StateDays) {
		daysTab = activeTabStyle
	} else {
		dayTab = activeTabStyle
	}

	title := "Day"
	if m.taskList.Day().Date == today {
		title = "Today"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		daysTab.Render("Days"),
		dayTab.Render(title),
		"  ",
		header,
	)
}

func (m Model) todayDay() models.Day {
	if d, ok := m.find(m.app.Today()); ok {
		return d
	}
	return models.NewDay(m.app.Today())
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}
