package chart

import (
	"image/color"
	"math"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

type slice struct {
	index      int // position in the series
	valid      int // position among the drawn slices
	value      float64
	start, end float64
	color      string
}

// pieChart draws one slice per positive value. Gaps and non-positive values
// take no angle.
type pieChart struct {
	c *Chart

	center canvas.Point
	radius float64
	slices []slice
}

// layout computes the slices without drawing them.
func (p *pieChart) layout() {
	c := p.c
	d := c.dims()
	p.slices = p.slices[:0]
	p.center = canvas.Pt(c.width/2, d.top+d.height/2)
	p.radius = min(c.width, d.height)/2 - c.opts.BorderWidth

	var total float64
	for _, v := range c.series {
		if !v.IsNull() && v.Y > 0 {
			total += v.Y
		}
	}
	if total <= 0 {
		return
	}
	angle := -math.Pi/2 + c.opts.Offset*math.Pi/180
	for i, v := range c.series {
		if v.IsNull() || v.Y <= 0 {
			continue
		}
		sweep := v.Y / total * 2 * math.Pi
		n := len(p.slices)
		col := ""
		if len(c.opts.SliceColors) > 0 {
			col = c.opts.SliceColors[n%len(c.opts.SliceColors)]
		}
		p.slices = append(p.slices, slice{index: i, valid: n, value: v.Y, start: angle, end: angle + sweep, color: col})
		angle += sweep
	}
}

func (p *pieChart) draw(s canvas.Surface) {
	c := p.c
	p.layout()
	if p.radius <= 0 {
		return
	}
	border, hasBorder := canvas.ParseColor(c.opts.BorderColor)
	hasBorder = hasBorder && c.opts.BorderWidth > 0
	fallback := canvas.Palette(max(1, len(p.slices)))
	for _, sl := range p.slices {
		st := canvas.Filled(c.opts.color(sl.color, fallback[sl.valid%len(fallback)]))
		if hasBorder {
			st.Stroke, st.Width = border, c.opts.BorderWidth
		}
		s.Sector(p.center, p.radius, sl.start, sl.end, st)
	}
}

// regionAt measures the pointer angle from the top of the pie, removes the
// rotational offset and walks the cumulative slice angles.
func (p *pieChart) regionAt(x, y float64) (Region, bool) {
	if len(p.slices) == 0 {
		return Region{}, false
	}
	dx, dy := x-p.center.X, y-p.center.Y
	if math.Hypot(dx, dy) > p.radius {
		return Region{}, false
	}
	angle := math.Atan2(dy, dx) + math.Pi/2
	if angle < 0 {
		angle += 2 * math.Pi
	}
	offset := p.c.opts.Offset * math.Pi / 180
	angle = math.Mod(angle-offset+4*math.Pi, 2*math.Pi)
	base := p.slices[0].start
	for _, sl := range p.slices {
		if angle >= sl.start-base && angle < sl.end-base {
			return IndexRegion(sl.index), true
		}
	}
	return Region{}, false
}

func (p *pieChart) nearestRegion(x, y float64) (Region, bool) {
	return p.regionAt(x, y)
}

func (p *pieChart) find(i int) (slice, bool) {
	for _, sl := range p.slices {
		if sl.index == i {
			return sl, true
		}
	}
	return slice{}, false
}

func (p *pieChart) sliceColor(sl slice) color.NRGBA {
	fallback := canvas.Palette(max(1, len(p.slices)))
	return p.c.opts.color(sl.color, fallback[sl.valid%len(fallback)])
}

func (p *pieChart) drawHighlight(s canvas.Surface, r Region) {
	sl, ok := p.find(r.Index)
	if !ok {
		return
	}
	col := p.sliceColor(sl)
	glow := canvas.WithAlpha(canvas.Lighten(col, p.c.opts.HighlightLighten), 0.6)
	s.Sector(p.center, p.radius+2, sl.start, sl.end, canvas.Filled(glow))
	s.Sector(p.center, p.radius, sl.start, sl.end, canvas.Filled(col))
}

func (p *pieChart) tooltipContent(r Region) (tooltip.Content, bool) {
	sl, ok := p.find(r.Index)
	if !ok {
		return tooltip.Content{}, false
	}
	return tooltip.Content{Items: []tooltip.Item{{Label: p.c.label(sl.value, r), Color: p.sliceColor(sl)}}}, true
}

func (p *pieChart) regionFields(r Region) map[string]any {
	c := p.c
	i := r.Index
	f := map[string]any{"isNull": true, "value": nil, "index": i, "offset": i, "percent": 0.0}
	if i < 0 || i >= len(c.series) || c.series[i].IsNull() {
		return f
	}
	v := c.series[i].Y
	f["value"] = v
	f["isNull"] = v <= 0
	var total float64
	for _, sl := range p.slices {
		total += sl.value
	}
	if total > 0 {
		f["percent"] = v / total * 100
	}
	if sl, ok := p.find(i); ok {
		f["color"] = sl.color
	}
	return f
}

func (p *pieChart) defaultFormat(v any, _ Region) string { return fixed2(v) }
