package cli

import (
	"fmt"
	"io"

	"github.com/julianstephens/daynote/internal/app"
	"github.com/julianstephens/daynote/internal/models"
)

// NoTasksMessage is shown under a Day without tasks.
const NoTasksMessage = "No tasks for this day."

// RenderDays prints each Day as a "weekday day  month/year" header followed
// by its tasks, time first.
func RenderDays(w io.Writer, c *app.Controller, days []models.Day) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No days recorded yet.")
		return
	}
	today := c.Today()
	for i, day := range days {
		if i > 0 {
			fmt.Fprintln(w)
		}
		marker := ""
		if day.Date == today {
			marker = "  (today)"
		}
		fmt.Fprintf(w, "%s %d  %d/%d%s\n", c.WeekdayName(day), day.Day, day.Month, day.Year, marker)
		if len(day.Tasks) == 0 {
			fmt.Fprintf(w, "  %s\n", NoTasksMessage)
			continue
		}
		for _, task := range day.Tasks {
			fmt.Fprintf(w, "  %s  %s\n", task.CreatedTime, task.Text)
		}
	}
}
