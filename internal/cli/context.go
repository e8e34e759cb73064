package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/daynote/internal/app"
	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx   context.Context
	Store storage.Provider
	// App is nil for commands that run without an opened store.
	App *app.Controller
	Out io.Writer
}

// NewContext builds the controller over an opened store, using the
// persisted locale setting.
func NewContext(ctx context.Context, store storage.Provider, opts ...app.Option) *Context {
	loc := models.DefaultLocale
	settings, err := store.GetSettings(ctx)
	switch {
	case err == nil:
		if l, ok := models.LookupLocale(settings.Locale); ok {
			loc = l
		} else {
			logger.Warn("Unknown locale setting, using default", "locale", settings.Locale)
		}
	case errors.Is(err, storage.ErrNotLoaded):
	default:
		logger.Warn("Failed to read settings, using default locale", "error", err)
	}

	return &Context{
		Ctx:   ctx,
		Store: store,
		App:   app.New(store, append([]app.Option{app.WithLocale(loc)}, opts...)...),
		Out:   os.Stdout,
	}
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}
