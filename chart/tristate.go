package chart

import (
	"math"
	"strconv"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

const tristateZeroHeight = 3

// tristateChart draws win, loss and draw markers around a middle line.
type tristateChart struct {
	c *Chart

	slots slots
	boxes []hitBox
}

// geometry returns the vertical extent of the marker for v.
func (t *tristateChart) geometry(v float64) (y, h float64) {
	d := t.c.dims()
	bar := d.height / 6
	zero := d.top + d.height/2
	switch {
	case v > 0:
		return zero - tristateZeroHeight/2.0 - bar, bar
	case v < 0:
		return zero + tristateZeroHeight/2.0, bar
	}
	return zero - tristateZeroHeight/2.0, tristateZeroHeight
}

func (t *tristateChart) color(v float64, i int) string {
	o := &t.c.opts
	if col, ok := o.ColorMap.lookup(i, v); ok {
		return col
	}
	switch {
	case v > 0:
		return o.PosBarColor
	case v < 0:
		return o.NegBarColor
	}
	return o.ZeroBarColor
}

func (t *tristateChart) draw(s canvas.Surface) {
	c := t.c
	t.boxes = t.boxes[:0]
	t.slots = layoutSlots(len(c.series), c.width, c.opts.BarWidth, c.opts.BarSpacing)
	for i, v := range c.series {
		if v.IsNull() {
			continue
		}
		y, h := t.geometry(v.Y)
		col := c.opts.color(t.color(v.Y, i), canvas.MustColor("#999"))
		r := canvas.Rect{X: t.slots.x(i), Y: y, W: t.slots.bar, H: h}
		s.Rect(r, canvas.Filled(col))
		t.boxes = append(t.boxes, hitBox{Rect: r, Index: i, Value: v.Y, Color: col})
	}
}

// regionAt only checks the horizontal span, since markers are short.
func (t *tristateChart) regionAt(x, _ float64) (Region, bool) {
	for _, b := range t.boxes {
		if x >= b.X && x <= b.X+b.W {
			return IndexRegion(b.Index), true
		}
	}
	return Region{}, false
}

func (t *tristateChart) nearestRegion(x, _ float64) (Region, bool) {
	best, found := math.Inf(1), false
	var idx int
	for _, b := range t.boxes {
		if dist := math.Abs(x - (b.X + b.W/2)); dist < best {
			best, idx, found = dist, b.Index, true
		}
	}
	return IndexRegion(idx), found
}

func (t *tristateChart) drawHighlight(s canvas.Surface, r Region) {
	for _, b := range t.boxes {
		if b.Index == r.Index {
			s.Rect(b.Rect, canvas.Filled(canvas.WithAlpha(canvas.MustColor("#fff"), 0.3)))
			return
		}
	}
}

// tooltipContent summarizes the whole series next to the hovered state.
func (t *tristateChart) tooltipContent(r Region) (tooltip.Content, bool) {
	c := t.c
	if r.Index < 0 || r.Index >= len(c.series) {
		return tooltip.Content{}, false
	}
	var wins, losses, draws int
	for _, v := range c.series {
		switch {
		case v.IsNull():
		case v.Y > 0:
			wins++
		case v.Y < 0:
			losses++
		default:
			draws++
		}
	}
	pos := c.opts.color(c.opts.PosBarColor, canvas.MustColor("#0f0"))
	neg := c.opts.color(c.opts.NegBarColor, canvas.MustColor("#f00"))
	zero := c.opts.color(c.opts.ZeroBarColor, canvas.MustColor("#999"))

	var items []tooltip.Item
	switch cur := c.series[r.Index]; {
	case !cur.IsNull() && cur.Y > 0:
		items = append(items, tooltip.Item{Label: "Current: Win", Color: pos})
	case !cur.IsNull() && cur.Y < 0:
		items = append(items, tooltip.Item{Label: "Current: Loss", Color: neg})
	default:
		items = append(items, tooltip.Item{Label: "Current: Draw", Color: zero})
	}
	if wins > 0 {
		items = append(items, tooltip.Item{Label: "Wins: " + strconv.Itoa(wins), Color: pos})
	}
	if losses > 0 {
		items = append(items, tooltip.Item{Label: "Losses: " + strconv.Itoa(losses), Color: neg})
	}
	if draws > 0 {
		items = append(items, tooltip.Item{Label: "Draws: " + strconv.Itoa(draws), Color: zero})
	}
	return tooltip.Content{Items: items}, true
}

func (t *tristateChart) regionFields(r Region) map[string]any {
	c := t.c
	i := r.Index
	f := map[string]any{"isNull": true, "value": nil, "index": i, "x": i, "y": nil, "offset": i}
	if i >= 0 && i < len(c.series) && !c.series[i].IsNull() {
		v := c.series[i].Y
		f["isNull"], f["value"], f["y"] = false, v, v
		f["color"] = t.color(v, i)
	}
	return f
}

func (t *tristateChart) fixedFormat(v any, r Region) string {
	return t.defaultFormat(v, r)
}

func (t *tristateChart) defaultFormat(v any, _ Region) string {
	switch v {
	case 1.0:
		return "Win"
	case 0.0:
		return "Draw"
	case -1.0:
		return "Loss"
	}
	return "Tristate: " + tooltip.Stringify(v)
}
