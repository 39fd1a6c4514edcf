package main

import (
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"time"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"git.sr.ht/~whereswaldon/sparkline/backend"
	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/chart"
	"git.sr.ht/~whereswaldon/sparkline/factory"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

const (
	defaultChartWidth  = 160
	defaultChartHeight = 32
	nameColumnWidth    = 140
	rowInset           = 4
)

// cell is one row of the sheet: a definition and the chart drawn for it.
type cell struct {
	key   string
	def   backend.Definition
	dirty bool

	surface *canvas.Canvas
	chart   *chart.Chart
	// origin is the window position of the surface as of the last frame.
	origin canvas.Point
	height int

	pressed   bool
	pressedAt image.Point
	lastClick string
}

// Sheet lays out one chart per definition in a scrolling list. Charts are
// rebuilt through the factory whenever their definition or size changes,
// carrying any visible tooltip across the rebuild.
type Sheet struct {
	factory *factory.Factory
	logger  *slog.Logger

	version uint64
	cells   []*cell
	byKey   map[string]*cell

	list    widget.List
	lastPos layout.Position
}

func NewSheet(f *factory.Factory, logger *slog.Logger) *Sheet {
	s := &Sheet{
		factory: f,
		logger:  logger.With("component", "sheet"),
		byKey:   make(map[string]*cell),
	}
	s.list.Axis = layout.Vertical
	return s
}

func (s *Sheet) Len() int { return len(s.cells) }

// SetSheet replaces the displayed definitions. Rows are matched by name so
// that a chart being hovered keeps its tooltip when its data changes.
func (s *Sheet) SetSheet(sheet backend.Sheet) {
	if sheet.Version == s.version {
		return
	}
	s.version = sheet.Version
	seen := make(map[string]int, len(sheet.Definitions))
	cells := make([]*cell, 0, len(sheet.Definitions))
	for _, def := range sheet.Definitions {
		key := def.Name
		if n := seen[def.Name]; n > 0 {
			key += "#" + strconv.Itoa(n)
		}
		seen[def.Name]++
		c, ok := s.byKey[key]
		if !ok {
			c = &cell{key: key}
		}
		delete(s.byKey, key)
		c.def = def
		c.dirty = true
		cells = append(cells, c)
	}
	for _, stale := range s.byKey {
		s.drop(stale)
	}
	clear(s.byKey)
	for _, c := range cells {
		s.byKey[c.key] = c
	}
	s.cells = cells
}

// Close releases every chart in the sheet.
func (s *Sheet) Close() {
	for _, c := range s.cells {
		s.drop(c)
	}
	s.cells = nil
	clear(s.byKey)
}

func (s *Sheet) drop(c *cell) {
	s.factory.DestroyImmediately(c.chart)
	c.chart = nil
	if c.surface != nil {
		c.surface.Release()
	}
}

// ensure rebuilds the chart of c when its definition or pixel size changed.
func (s *Sheet) ensure(c *cell, size image.Point) {
	if !c.dirty && c.surface != nil && c.surface.Size() == size {
		return
	}
	var (
		preserved chart.PreservedState
		prevID    tooltip.ID
	)
	if c.chart != nil {
		prevID = c.chart.ID()
		preserved = c.chart.Preserve()
		s.factory.Release(c.chart)
		c.chart = nil
	}
	if c.surface == nil {
		c.surface = canvas.New(size.X, size.Y)
	} else {
		c.surface.Resize(size.X, size.Y)
		c.surface.Clear()
	}
	c.dirty = false
	c.chart = s.factory.CreateNamed(c.def.Kind, c.surface, chart.Props{
		Data:    c.def.Data,
		Options: c.def.Options,
	})
	if c.chart == nil {
		s.factory.Context().Tooltip.Hide(prevID)
		return
	}
	c.chart.SetOrigin(c.origin)
	c.chart.OnClick(func(ev chart.ClickEvent) {
		c.lastClick = fmt.Sprintf("%v: %s", ev.Region, tooltip.Stringify(ev.Value))
		s.logger.Info("chart clicked", "chart", c.def.Name, "region", ev.Region.String(), "value", ev.Value)
	})
	c.chart.OnRegionChange(func(ev chart.RegionChange) {
		if ev.Region != nil {
			s.logger.Debug("hovered region changed", "chart", c.def.Name, "region", ev.Region.String())
		}
	})
	if !c.chart.RestoreSmart(preserved) && prevID != 0 {
		s.factory.Context().Tooltip.Hide(prevID)
	}
}

func (s *Sheet) update(gtx C, c *cell) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			s.handle(c, pe, gtx.Now)
		}
	}
}

// handle converts a Gio pointer event into chart input. Mouse clicks are
// synthesized from a press and release that did not travel.
func (s *Sheet) handle(c *cell, ev pointer.Event, now time.Time) {
	if c.chart == nil {
		return
	}
	local := canvas.Pt(float64(ev.Position.X), float64(ev.Position.Y))
	touch := ev.Source == pointer.Touch
	sample := chart.MouseSample(local, c.origin)
	if touch {
		sample = chart.TouchSample(local, c.origin)
	}
	var kind chart.EventKind
	switch ev.Kind {
	case pointer.Enter, pointer.Move, pointer.Drag:
		kind = chart.Move
	case pointer.Leave, pointer.Cancel:
		c.pressed = false
		kind = chart.Leave
	case pointer.Press:
		c.pressed = true
		c.pressedAt = ev.Position.Round()
		kind = chart.Press
	case pointer.Release:
		kind = chart.Release
		if !touch && c.pressed && ev.Position.Round().Sub(c.pressedAt) == (image.Point{}) {
			kind = chart.Click
		}
		c.pressed = false
	default:
		return
	}
	c.chart.HandlePointer(chart.PointerEvent{Kind: kind, Sample: sample, At: now})
}

func (s *Sheet) layoutChart(gtx C, th *material.Theme, c *cell) D {
	w, h := c.def.Width, c.def.Height
	if w <= 0 {
		w = defaultChartWidth
	}
	if h <= 0 {
		h = defaultChartHeight
	}
	size := image.Pt(gtx.Dp(unit.Dp(w)), gtx.Dp(unit.Dp(h)))
	s.ensure(c, size)
	s.update(gtx, c)
	if c.chart == nil {
		gtx.Constraints.Min = image.Point{}
		l := material.Body2(th, fmt.Sprintf("chart type %q not supported", c.def.Kind))
		l.Color = th.ContrastBg
		return l.Layout(gtx)
	}

	area := clip.Rect{Max: size}.Push(gtx.Ops)
	paint.FillShape(gtx.Ops, surfaceBackground, clip.Rect{Max: size}.Op())
	event.Op(gtx.Ops, c)
	c.surface.Paint(gtx.Ops)
	area.Pop()
	return D{Size: size}
}

func (s *Sheet) layoutRow(gtx C, th *material.Theme, c *cell) D {
	inset := unit.Dp(rowInset)
	dims := layout.UniformInset(inset).Layout(gtx, func(gtx C) D {
		return layout.Flex{Alignment: layout.Start}.Layout(gtx,
			layout.Rigid(func(gtx C) D {
				width := gtx.Dp(nameColumnWidth)
				gtx.Constraints.Min.X = width
				gtx.Constraints.Max.X = width
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(func(gtx C) D {
						sz := image.Pt(gtx.Dp(8), gtx.Dp(8))
						paint.FillShape(gtx.Ops, kindColor(c.def.Kind), clip.Ellipse{Max: sz}.Op(gtx.Ops))
						return D{Size: sz}
					}),
					layout.Rigid(layout.Spacer{Width: 6}.Layout),
					layout.Flexed(1, func(gtx C) D {
						l := material.Body1(th, c.def.Name)
						l.MaxLines = 1
						return l.Layout(gtx)
					}),
				)
			}),
			layout.Rigid(func(gtx C) D {
				return s.layoutChart(gtx, th, c)
			}),
			layout.Rigid(layout.Spacer{Width: 8}.Layout),
			layout.Flexed(1, func(gtx C) D {
				if c.lastClick == "" {
					return D{}
				}
				l := material.Caption(th, c.lastClick)
				l.MaxLines = 1
				return l.Layout(gtx)
			}),
		)
	})
	c.height = dims.Size.Y
	return dims
}

// Layout draws the sheet. top is the window Y coordinate of the sheet, used
// to track where each chart sits on screen.
func (s *Sheet) Layout(gtx C, th *material.Theme, top int) D {
	dims := material.List(th, &s.list).Layout(gtx, len(s.cells), func(gtx C, i int) D {
		return s.layoutRow(gtx, th, s.cells[i])
	})
	s.trackOrigins(gtx, top)
	return dims
}

// trackOrigins recomputes the window position of every visible chart from
// the list position, and repositions the tooltip when the list scrolled.
func (s *Sheet) trackOrigins(gtx C, top int) {
	pos := s.list.Position
	x := float64(gtx.Dp(rowInset) + gtx.Dp(nameColumnWidth))
	y := top - pos.Offset
	for i := pos.First; i < min(pos.First+pos.Count, len(s.cells)); i++ {
		c := s.cells[i]
		c.origin = canvas.Pt(x, float64(y+gtx.Dp(rowInset)))
		if c.chart != nil {
			c.chart.SetOrigin(c.origin)
		}
		y += c.height
	}
	if pos.First != s.lastPos.First || pos.Offset != s.lastPos.Offset {
		s.factory.Context().Scroll()
	}
	s.lastPos = pos
}
