package chart

import (
	"math"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

type tick struct {
	x, top, bottom float64
	index          int
	value          float64
	color          string
}

// discreteChart draws every value as a short vertical tick whose position
// encodes its magnitude.
type discreteChart struct {
	c *Chart

	slots slots
	ticks []tick
}

func (t *discreteChart) tickColor(v float64) string {
	o := &t.c.opts
	if o.ThresholdColor != "" && v < o.ThresholdValue {
		return o.ThresholdColor
	}
	return o.LineColor
}

func (t *discreteChart) strokeWidth() float64 {
	return max(1, t.slots.bar-1)
}

func (t *discreteChart) hitWidth() float64 {
	return max(t.slots.bar*0.8, 8)
}

func (t *discreteChart) draw(s canvas.Surface) {
	c := t.c
	t.ticks = t.ticks[:0]
	lo, hi, ok := c.series.MinMax()
	if !ok {
		return
	}
	d := c.dims()
	minV, maxV := c.valueRange(lo, hi)
	rng := span(minV, maxV)
	t.slots = layoutSlots(len(c.series), c.width, c.opts.LineWidth, c.opts.LineSpacing)
	length := c.opts.LineHeight.Resolve(d.height)
	limit := c.height - d.bottom

	for i, v := range c.series {
		if v.IsNull() {
			continue
		}
		val := v.Y
		if c.opts.ChartRangeClip {
			val = clamp(val, minV, maxV)
		}
		top := d.top + d.height - (val-minV)/rng*d.height
		tk := tick{
			x:      t.slots.center(i),
			top:    top,
			bottom: min(top+length, limit),
			index:  i,
			value:  val,
			color:  t.tickColor(val),
		}
		t.ticks = append(t.ticks, tk)
		col := c.opts.color(tk.color, canvas.MustColor("#00f"))
		s.Path([][]canvas.Point{{canvas.Pt(tk.x, tk.top), canvas.Pt(tk.x, tk.bottom)}}, false, canvas.Stroked(col, t.strokeWidth()))
	}
}

func (t *discreteChart) regionAt(x, _ float64) (Region, bool) {
	half := t.hitWidth() / 2
	for _, tk := range t.ticks {
		if math.Abs(x-tk.x) <= half {
			return IndexRegion(tk.index), true
		}
	}
	return Region{}, false
}

func (t *discreteChart) nearestRegion(x, _ float64) (Region, bool) {
	best, found := math.Inf(1), false
	var idx int
	for _, tk := range t.ticks {
		if dist := math.Abs(x - tk.x); dist < best {
			best, idx, found = dist, tk.index, true
		}
	}
	return IndexRegion(idx), found
}

func (t *discreteChart) drawHighlight(s canvas.Surface, r Region) {
	c := t.c
	d := c.dims()
	for _, tk := range t.ticks {
		if tk.index != r.Index {
			continue
		}
		w := t.hitWidth()
		s.Rect(canvas.Rect{X: tk.x - w/2, Y: d.top, W: w, H: d.height}, canvas.Filled(canvas.WithAlpha(canvas.MustColor("#fff"), 0.3)))
		col := canvas.WithAlpha(c.opts.color(tk.color, canvas.MustColor("#00f")), 0.8)
		s.Path([][]canvas.Point{{canvas.Pt(tk.x, tk.top), canvas.Pt(tk.x, tk.bottom)}}, false, canvas.Stroked(col, max(3, t.strokeWidth()+2)))
		return
	}
}

func (t *discreteChart) tooltipContent(r Region) (tooltip.Content, bool) {
	c := t.c
	if r.Index < 0 || r.Index >= len(c.series) || c.series[r.Index].IsNull() {
		return tooltip.Content{}, false
	}
	v := c.series[r.Index].Y
	col, ok := canvas.ParseColor(t.tickColor(v))
	if !ok {
		return tooltip.Content{}, false
	}
	return tooltip.Content{Items: []tooltip.Item{{Label: c.label(v, r), Color: col}}}, true
}

func (t *discreteChart) regionFields(r Region) map[string]any {
	c := t.c
	i := r.Index
	f := map[string]any{"isNull": true, "value": nil, "index": i, "x": i, "y": nil, "offset": i, "color": c.opts.LineColor}
	if i >= 0 && i < len(c.series) && !c.series[i].IsNull() {
		v := c.series[i].Y
		f["isNull"], f["value"], f["y"] = false, v, v
		f["color"] = t.tickColor(v)
	}
	return f
}

func (t *discreteChart) defaultFormat(v any, _ Region) string { return fixed2(v) }
