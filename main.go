package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/sparkline/backend"
)

func main() {
	file := flag.String("file", "", "chart definitions to open on launch (.yaml or .csv)")
	paused := flag.Bool("paused", false, "do not reload the definitions when they change on disk")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	bundle := backend.NewBundle(logger)
	bundle.Source.SetPaused(*paused)
	if *file != "" {
		bundle.Source.Open(*file)
	}

	go func() {
		w := app.NewWindow(app.Title("Sparkline"), app.Size(unit.Dp(640), unit.Dp(480)))
		if err := loop(w, bundle, logger); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window, bundle backend.Bundle, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expl := explorer.NewExplorer(w)
	ws := backend.NewWindowState(ctx, bundle, w)
	ui, err := NewUI(ws, expl, logger)
	if err != nil {
		return err
	}
	defer ui.Close()

	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
