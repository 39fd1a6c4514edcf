package chart

import (
	"math"
	"slices"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
	"git.sr.ht/~whereswaldon/sparkline/values"
)

var (
	zeroLineColor = canvas.MustColor("#666")
	outlineColor  = canvas.MustColor("#333")
)

// barChart draws one bar per value, or a stacked column per value when the
// series holds multi-part values.
type barChart struct {
	c *Chart

	stacked bool
	slots   slots
	boxes   []hitBox
}

func (b *barChart) draw(s canvas.Surface) {
	c := b.c
	b.boxes = b.boxes[:0]
	b.stacked = c.series.HasStacks() || c.series.HasPairs()
	b.slots = layoutSlots(len(c.series), c.width, c.opts.BarWidth, c.opts.BarSpacing)
	if b.stacked {
		b.drawStacked(s)
		return
	}
	lo, hi, ok := c.series.MinMax()
	if !ok {
		return
	}
	d := c.dims()
	minV, maxV := c.valueRange(lo, hi)
	rng := span(minV, maxV)
	bottom := d.top + d.height
	straddle := c.opts.ZeroAxis && minV < 0 && maxV > 0
	zero := bottom
	if straddle {
		zero = bottom - (-minV/rng)*d.height
	} else if c.opts.ZeroAxis && maxV <= 0 {
		zero = d.top
	}

	for i, v := range c.series {
		x := b.slots.x(i)
		if v.IsNull() {
			if col, ok := canvas.ParseColor(c.opts.NullColor); ok {
				s.Rect(canvas.Rect{X: x, Y: d.top, W: b.slots.bar, H: d.height}, canvas.Filled(col))
			}
			b.boxes = append(b.boxes, hitBox{
				Rect:  canvas.Rect{X: x, Y: d.top, W: b.slots.bar, H: d.height},
				Index: i,
				Null:  true,
			})
			continue
		}
		val := v.Y
		if c.opts.ChartRangeClip {
			val = clamp(val, minV, maxV)
		}
		var top, height float64
		if straddle {
			if val > 0 {
				top = bottom - (val-minV)/rng*d.height
				height = zero - top
			} else {
				top = zero
				height = bottom - (val-minV)/rng*d.height - zero
			}
		} else {
			height = math.Abs((val-minV)/rng) * d.height
			top = bottom - height
			if c.opts.ZeroAxis && maxV <= 0 {
				top = d.top + (val-minV)/rng*d.height
			}
		}
		height = max(1, math.Abs(height))
		top = clamp(top, d.top, bottom-height)

		col := c.opts.color(b.barColor(v.Y, i), canvas.MustColor("#3366cc"))
		r := canvas.Rect{X: x, Y: top, W: b.slots.bar, H: height}
		s.Rect(r, canvas.Filled(col))
		b.boxes = append(b.boxes, hitBox{Rect: r, Index: i, Value: v.Y, Color: col})
	}

	if straddle && zero != bottom && zero != d.top {
		s.Path([][]canvas.Point{{canvas.Pt(0, zero), canvas.Pt(c.width, zero)}}, false, canvas.Stroked(zeroLineColor, 1))
	}
}

// drawStacked stacks the positive segments of each value bottom up against
// a baseline shared by every column.
func (b *barChart) drawStacked(s canvas.Surface) {
	c := b.c
	d := c.dims()
	var totals []float64
	for _, v := range c.series {
		if !v.IsNull() {
			totals = append(totals, segmentSum(v))
		}
	}
	if len(totals) == 0 {
		return
	}
	minV := min(0, slices.Min(totals))
	maxV := slices.Max(totals)
	rng := span(minV, maxV)
	fallback := c.opts.color(c.opts.BarColor, canvas.MustColor("#3366cc"))

	for i, v := range c.series {
		if v.IsNull() {
			continue
		}
		x := b.slots.x(i)
		cur := d.top + d.height
		for j, seg := range v.Segments() {
			if seg <= 0 {
				continue
			}
			h := seg / rng * d.height
			col := fallback
			if n := len(c.opts.StackedBarColor); n > 0 {
				col = c.opts.color(c.opts.StackedBarColor[j%n], fallback)
			}
			r := canvas.Rect{X: x, Y: cur - h, W: b.slots.bar, H: h}
			s.Rect(r, canvas.Filled(col))
			b.boxes = append(b.boxes, hitBox{Rect: r, Index: i, Segment: j, Value: seg, Color: col})
			cur -= h
		}
	}
}

// segmentSum totals a value read as a stack, so a pair counts both parts.
func segmentSum(v values.Value) float64 {
	var t float64
	for _, seg := range v.Segments() {
		t += seg
	}
	return t
}

// barColor picks the color of a plain bar. A color map wins over the sign
// based colors.
func (b *barChart) barColor(v float64, i int) string {
	o := &b.c.opts
	if !o.ColorMap.empty() {
		if col, ok := o.ColorMap.lookup(i, v); ok {
			return col
		}
		return o.BarColor
	}
	switch {
	case v < 0:
		return o.NegBarColor
	case v == 0 && o.ZeroColor != "":
		return o.ZeroColor
	}
	return o.BarColor
}

// column returns the boxes of stack i.
func (b *barChart) column(i int) []hitBox {
	var out []hitBox
	for _, h := range b.boxes {
		if h.Index == i {
			out = append(out, h)
		}
	}
	return out
}

func (b *barChart) regionAt(x, y float64) (Region, bool) {
	p := canvas.Pt(x, y)
	if b.stacked {
		for _, h := range b.boxes {
			if x < h.X || x > h.X+h.W {
				continue
			}
			top, bottom := math.Inf(1), math.Inf(-1)
			for _, seg := range b.column(h.Index) {
				top = min(top, seg.Y)
				bottom = max(bottom, seg.Y+seg.H)
			}
			if y >= top && y <= bottom {
				return Region{Kind: RegionStack, Index: h.Index}, true
			}
		}
		return Region{}, false
	}
	for i := len(b.boxes) - 1; i >= 0; i-- {
		if b.boxes[i].Contains(p) {
			return IndexRegion(b.boxes[i].Index), true
		}
	}
	return Region{}, false
}

func (b *barChart) nearestRegion(x, _ float64) (Region, bool) {
	best, found := math.Inf(1), false
	var idx int
	for _, h := range b.boxes {
		if dist := math.Abs(h.X + h.W/2 - x); dist < best {
			best, idx, found = dist, h.Index, true
		}
	}
	if !found {
		return Region{}, false
	}
	if b.stacked {
		return Region{Kind: RegionStack, Index: idx}, true
	}
	return IndexRegion(idx), true
}

func (b *barChart) drawHighlight(s canvas.Surface, r Region) {
	c := b.c
	for _, h := range b.column(r.Index) {
		col := h.Color
		if col.A == 0 {
			col = c.opts.color(c.opts.BarColor, canvas.MustColor("#3366cc"))
		}
		s.Rect(h.Rect, canvas.Filled(canvas.Lighten(col, c.opts.HighlightLighten)))
		s.Rect(h.Rect, canvas.Stroked(outlineColor, 1))
		if !b.stacked {
			return
		}
	}
}

func (b *barChart) tooltipContent(r Region) (tooltip.Content, bool) {
	c := b.c
	if r.Index < 0 || r.Index >= len(c.series) || c.series[r.Index].IsNull() {
		return tooltip.Content{}, false
	}
	if b.stacked {
		segs := b.column(r.Index)
		if len(segs) == 0 {
			return tooltip.Content{}, false
		}
		// top of the column first
		slices.SortFunc(segs, func(p, q hitBox) int { return q.Segment - p.Segment })
		items := make([]tooltip.Item, len(segs))
		for i, h := range segs {
			items[i] = tooltip.Item{Label: c.label(h.Value, r), Color: h.Color}
		}
		return tooltip.Content{Items: items}, true
	}
	v := c.series[r.Index].Y
	col, ok := canvas.ParseColor(b.barColor(v, r.Index))
	if !ok {
		return tooltip.Content{}, false
	}
	return tooltip.Content{Items: []tooltip.Item{{Label: c.label(v, r), Color: col}}}, true
}

func (b *barChart) regionFields(r Region) map[string]any {
	c := b.c
	i := r.Index
	f := map[string]any{
		"isNull": true,
		"value":  nil,
		"index":  i,
		"x":      i,
		"y":      nil,
		"offset": i,
		"bar":    i + 1,
		"total":  len(c.series),
	}
	if i < 0 || i >= len(c.series) || c.series[i].IsNull() {
		f["color"] = c.opts.NullColor
		return f
	}
	v := c.series[i]
	f["isNull"] = false
	if b.stacked {
		f["value"] = segmentSum(v)
		f["y"] = segmentSum(v)
		f["stackIndex"] = i
		f["stack"] = i + 1
		f["segments"] = len(v.Segments())
		return f
	}
	f["value"] = v.Y
	f["y"] = v.Y
	f["color"] = b.barColor(v.Y, i)
	f["isPositive"] = v.Y > 0
	f["isNegative"] = v.Y < 0
	f["isZero"] = v.Y == 0
	return f
}

func (b *barChart) defaultFormat(v any, r Region) string {
	if r.Kind == RegionStack {
		return "Stack " + tooltip.Stringify(r.Index+1) + ": " + tooltip.Stringify(v)
	}
	return "Bar " + tooltip.Stringify(r.Index+1) + ": " + tooltip.Stringify(v)
}
