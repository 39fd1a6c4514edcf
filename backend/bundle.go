package backend

import (
	"context"
	"log/slog"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle holds the application-wide backends shared by every window.
type Bundle struct {
	Source *Source
}

func NewBundle(logger *slog.Logger) Bundle {
	return Bundle{
		Source: NewSource(logger),
	}
}
