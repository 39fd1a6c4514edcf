package main

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/sparkline/backend"
	"git.sr.ht/~whereswaldon/sparkline/chart"
	"git.sr.ht/~whereswaldon/sparkline/factory"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var pauseIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPause)
	return icon
}()

var playIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPlayArrow)
	return icon
}()

var openIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.FileFolderOpen)
	return icon
}()

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws     backend.WindowState
	expl   *explorer.Explorer
	logger *slog.Logger

	charts  *chart.Context
	factory *factory.Factory
	sheet   *Sheet
	overlay Overlay

	openBtn  widget.Clickable
	pauseBtn widget.Clickable

	th          *material.Theme
	sheetStream *stream.Stream[backend.Sheet]
	current     backend.Sheet
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer, logger *slog.Logger) (*UI, error) {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	charts := chart.NewContext(logger)
	f, err := factory.New(charts)
	if err != nil {
		return nil, err
	}
	ui := &UI{
		ws:          ws,
		th:          th,
		expl:        expl,
		logger:      logger,
		charts:      charts,
		factory:     f,
		sheetStream: stream.New(ws.Controller, ws.Bundle.Source.Sheets),
	}
	ui.sheet = NewSheet(f, logger)
	return ui, nil
}

// Close releases every chart and the shared tooltip.
func (ui *UI) Close() {
	ui.sheet.Close()
	ui.factory.Cleanup()
	ui.charts.Teardown()
}

// Update the state of the UI from the backend and from input events.
func (ui *UI) Update(gtx C) {
	ui.sheetStream.ReadInto(gtx, &ui.current, backend.Sheet{})
	ui.sheet.SetSheet(ui.current)
	if ui.openBtn.Clicked(gtx) {
		go func() {
			if err := ui.ws.Bundle.Source.OpenFromExplorer(ui.expl); err != nil && !errors.Is(err, explorer.ErrUserDecline) {
				ui.logger.Warn("failed opening chart definitions", "err", err)
			}
		}()
	}
	if ui.pauseBtn.Clicked(gtx) {
		ui.ws.Bundle.Source.SetPaused(!ui.ws.Bundle.Source.Paused())
	}
}

func (ui *UI) layoutToolbar(gtx C) D {
	icon := pauseIcon
	desc := "Stop watching for changes"
	if ui.ws.Bundle.Source.Paused() {
		icon = playIcon
		desc = "Watch for changes"
	}
	title := "No chart definitions open"
	if ui.current.Path != "" {
		title = filepath.Base(ui.current.Path)
	}
	return layout.UniformInset(4).Layout(gtx, func(gtx C) D {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(material.IconButton(ui.th, &ui.openBtn, openIcon, "Open chart definitions").Layout),
			layout.Rigid(layout.Spacer{Width: 4}.Layout),
			layout.Rigid(material.IconButton(ui.th, &ui.pauseBtn, icon, desc).Layout),
			layout.Rigid(layout.Spacer{Width: 8}.Layout),
			layout.Flexed(1, func(gtx C) D {
				l := material.H6(ui.th, title)
				l.MaxLines = 1
				return l.Layout(gtx)
			}),
		)
	})
}

func (ui *UI) layoutError(gtx C) D {
	if ui.current.Err == nil {
		return D{}
	}
	l := material.Body1(ui.th, ui.current.Err.Error())
	l.Color = color.NRGBA{R: 150, A: 255}
	return layout.UniformInset(4).Layout(gtx, l.Layout)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body1(ui.th, "Open a YAML or CSV file describing some charts.").Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	ui.charts.Viewport = tooltip.Viewport{
		W: float64(gtx.Constraints.Max.X),
		H: float64(gtx.Constraints.Max.Y),
	}
	ui.charts.Advance(gtx.Now)
	var top int
	dims := layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			dims := layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(ui.layoutToolbar),
				layout.Rigid(ui.layoutError),
			)
			top = dims.Size.Y
			return dims
		}),
		layout.Flexed(1, func(gtx C) D {
			if ui.sheet.Len() == 0 {
				return ui.layoutStartScreen(gtx)
			}
			return ui.sheet.Layout(gtx, ui.th, top)
		}),
	)
	ui.overlay.Layout(gtx, ui.th, ui.charts)
	if ui.charts.Pending() > 0 {
		gtx.Execute(op.InvalidateCmd{})
	}
	return dims
}
