package chart

import (
	"math"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
	"git.sr.ht/~whereswaldon/sparkline/values"
)

type linePoint struct {
	canvas.Point
	index int
	value float64
}

// lineChart draws a polyline that breaks at gaps, optionally filling the
// area under each unbroken run.
type lineChart struct {
	c *Chart

	xs     []float64
	points []linePoint
	// data extremes, used for the min and max spots
	lo, hi float64
}

// xValue returns the x coordinate of value i: the pair x, or the index.
func xValue(s values.Series, i int) float64 {
	if s[i].Kind == values.Pair {
		return s[i].X
	}
	return float64(i)
}

func (l *lineChart) draw(s canvas.Surface) {
	c := l.c
	d := c.dims()
	l.points = l.points[:0]
	l.xs = l.xs[:0]
	for i := range c.series {
		l.xs = append(l.xs, xValue(c.series, i))
	}
	lo, hi, ok := c.series.MinMax()
	if !ok {
		return
	}
	l.lo, l.hi = lo, hi
	minY, maxY := c.valueRange(lo, hi)
	rangeY := span(minY, maxY)

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, x := range l.xs {
		minX, maxX = min(minX, x), max(maxX, x)
	}
	if c.opts.ChartRangeMinX != nil {
		minX = *c.opts.ChartRangeMinX
	}
	if c.opts.ChartRangeMaxX != nil {
		maxX = *c.opts.ChartRangeMaxX
	}
	rangeX := span(minX, maxX)

	yPos := func(v float64) float64 {
		return d.top + d.height - (v-minY)/rangeY*d.height
	}

	if c.opts.NormalRangeMin != nil && c.opts.NormalRangeMax != nil {
		if col, ok := canvas.ParseColor(c.opts.NormalRangeColor); ok {
			yMin, yMax := yPos(*c.opts.NormalRangeMin), yPos(*c.opts.NormalRangeMax)
			s.Rect(canvas.Rect{X: 0, Y: yMax, W: c.width, H: yMin - yMax}, canvas.Filled(col))
		}
	}

	var (
		runs [][]canvas.Point
		run  []canvas.Point
	)
	for i, v := range c.series {
		if v.IsNull() {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		p := canvas.Pt((l.xs[i]-minX)/rangeX*c.width, yPos(v.Y))
		l.points = append(l.points, linePoint{Point: p, index: i, value: v.Y})
		run = append(run, p)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}

	if fill, ok := canvas.ParseColor(c.opts.FillColor); ok {
		base := c.height - d.bottom
		var areas [][]canvas.Point
		for _, r := range runs {
			if len(r) < 2 {
				continue
			}
			area := append([]canvas.Point(nil), r...)
			area = append(area, canvas.Pt(r[len(r)-1].X, base), canvas.Pt(r[0].X, base))
			areas = append(areas, area)
		}
		if len(areas) > 0 {
			s.Path(areas, true, canvas.Filled(fill))
		}
	}

	if stroke, ok := canvas.ParseColor(c.opts.LineColor); ok {
		lw := c.opts.LineWidth.Px
		if c.opts.LineWidth.Mode != WidthPx || lw <= 0 {
			lw = 1
		}
		s.Path(runs, false, canvas.Stroked(stroke, lw))
	}

	r := c.opts.SpotRadius
	if spot, ok := canvas.ParseColor(c.opts.SpotColor); ok && r > 0 {
		for _, p := range l.points {
			s.Circle(p.Point, r, canvas.Filled(spot))
		}
	}
	if r > 0 && lo != hi {
		minSpot, hasMin := canvas.ParseColor(c.opts.MinSpotColor)
		maxSpot, hasMax := canvas.ParseColor(c.opts.MaxSpotColor)
		for _, p := range l.points {
			if p.value == lo && hasMin {
				s.Circle(p.Point, r, canvas.Filled(minSpot))
			}
			if p.value == hi && hasMax {
				s.Circle(p.Point, r, canvas.Filled(maxSpot))
			}
		}
	}
}

func (l *lineChart) point(i int) (linePoint, bool) {
	for _, p := range l.points {
		if p.index == i {
			return p, true
		}
	}
	return linePoint{}, false
}

func (l *lineChart) regionAt(x, y float64) (Region, bool) {
	for _, p := range l.points {
		box := canvas.Rect{X: p.X - 5, Y: p.Y - 5, W: 10, H: 10}
		if box.Contains(canvas.Pt(x, y)) {
			return IndexRegion(p.index), true
		}
	}
	return Region{}, false
}

// nearestRegion weights horizontal distance so that hovering above or below
// the line still resolves to the right index.
func (l *lineChart) nearestRegion(x, y float64) (Region, bool) {
	best, found := math.Inf(1), false
	var idx int
	for _, p := range l.points {
		dist := math.Abs(p.X-x) + math.Abs(p.Y-y)*0.1
		if dist < best {
			best, idx, found = dist, p.index, true
		}
	}
	return IndexRegion(idx), found
}

func (l *lineChart) drawHighlight(s canvas.Surface, r Region) {
	p, ok := l.point(r.Index)
	if !ok {
		return
	}
	c := l.c
	if col, ok := canvas.ParseColor(c.opts.HighlightSpotColor); ok {
		radius := c.opts.SpotRadius
		if radius <= 0 {
			radius = 1.5
		}
		s.Circle(p.Point, radius+1, canvas.Filled(col))
	}
	if col, ok := canvas.ParseColor(c.opts.HighlightLineColor); ok {
		st := canvas.Stroked(col, 1)
		st.Dash = []float64{2, 2}
		s.Path([][]canvas.Point{{canvas.Pt(p.X, 0), canvas.Pt(p.X, c.height)}}, false, st)
	}
}

func (l *lineChart) extreme(v float64) (isMin, isMax bool) {
	return v == l.lo && v != l.hi, v == l.hi && v != l.lo
}

func (l *lineChart) regionColor(i int) string {
	c := l.c
	isMin, isMax := l.extreme(c.series[i].Y)
	switch {
	case isMin && c.opts.MinSpotColor != "":
		return c.opts.MinSpotColor
	case isMax && c.opts.MaxSpotColor != "":
		return c.opts.MaxSpotColor
	case c.opts.SpotColor != "":
		return c.opts.SpotColor
	}
	return c.opts.LineColor
}

func (l *lineChart) tooltipContent(r Region) (tooltip.Content, bool) {
	c := l.c
	if r.Index < 0 || r.Index >= len(c.series) || c.series[r.Index].IsNull() {
		return tooltip.Content{}, false
	}
	col, ok := canvas.ParseColor(l.regionColor(r.Index))
	if !ok {
		return tooltip.Content{}, false
	}
	v := c.series[r.Index].Y
	label := c.label(v, r)
	if c.formatter == nil {
		isMin, isMax := l.extreme(v)
		switch {
		case isMin && c.opts.MinSpotColor != "":
			label = "Min: " + label
		case isMax && c.opts.MaxSpotColor != "":
			label = "Max: " + label
		}
	}
	return tooltip.Content{Items: []tooltip.Item{{Label: label, Color: col}}}, true
}

func (l *lineChart) regionFields(r Region) map[string]any {
	c := l.c
	i := r.Index
	f := map[string]any{
		"isNull":    true,
		"value":     nil,
		"index":     i,
		"x":         i,
		"y":         nil,
		"color":     c.opts.LineColor,
		"fillColor": c.opts.FillColor,
		"offset":    i,
		"point":     i + 1,
		"total":     len(c.series),
	}
	if i >= 0 && i < len(c.series) && !c.series[i].IsNull() {
		f["isNull"] = false
		f["value"] = c.series[i].Y
		f["y"] = c.series[i].Y
		f["x"] = xValue(c.series, i)
	}
	return f
}

// defaultFormat shows the coordinate when no template is configured.
func (l *lineChart) defaultFormat(v any, r Region) string {
	c := l.c
	if c.opts.TooltipFormat == "" && r.Index >= 0 && r.Index < len(c.series) {
		return "(" + tooltip.Stringify(xValue(c.series, r.Index)) + ", " + tooltip.Stringify(v) + ")"
	}
	return fixed2(v)
}
