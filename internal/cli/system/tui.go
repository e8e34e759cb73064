package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	days, err := ctx.App.EnsureToday(ctx.Ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Ctx, ctx.App, days), tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	_, err = p.Run()
	return err
}
