package chart

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

type bulletRange struct {
	index int // position among the ranges
	value float64
}

// bulletScale holds the geometry shared by drawing and hit-testing.
type bulletScale struct {
	ok          bool
	target      float64
	performance float64
	ranges      []bulletRange
	lo, rng     float64
}

// bulletChart reads the first value as the target, the second as the
// performance measure and the rest as qualitative ranges.
type bulletChart struct {
	c *Chart
}

func (b *bulletChart) scale() bulletScale {
	c := b.c
	if len(c.series) < 2 || c.series[0].IsNull() || c.series[1].IsNull() {
		return bulletScale{}
	}
	sc := bulletScale{target: c.series[0].Y, performance: c.series[1].Y}
	hi := max(sc.target, sc.performance)
	for i, v := range c.series[2:] {
		if v.IsNull() {
			continue
		}
		sc.ranges = append(sc.ranges, bulletRange{index: i, value: v.Y})
		hi = max(hi, v.Y)
	}
	if c.opts.Base != nil {
		sc.lo = *c.opts.Base
	}
	sc.rng = hi - sc.lo
	sc.ok = sc.rng > 0
	return sc
}

func (sc bulletScale) x(v, width float64) float64 {
	return (v - sc.lo) / sc.rng * width
}

func (b *bulletChart) performanceBar(sc bulletScale) canvas.Rect {
	d := b.c.dims()
	h := d.height * 0.4
	return canvas.Rect{X: 0, Y: d.top + (d.height-h)/2, W: sc.x(sc.performance, b.c.width), H: h}
}

func (b *bulletChart) targetMarker(sc bulletScale) canvas.Rect {
	d := b.c.dims()
	h := d.height * 0.8
	tw := b.c.opts.TargetWidth
	return canvas.Rect{X: sc.x(sc.target, b.c.width) - tw/2, Y: d.top + (d.height-h)/2, W: tw, H: h}
}

func (b *bulletChart) draw(s canvas.Surface) {
	c := b.c
	sc := b.scale()
	if !sc.ok {
		return
	}
	d := c.dims()
	widest := slices.Clone(sc.ranges)
	slices.SortStableFunc(widest, func(p, q bulletRange) int { return cmp.Compare(q.value, p.value) })
	border := canvas.Stroked(canvas.WithAlpha(canvas.MustColor("#fff"), 0.5), 0.5)
	for _, r := range widest {
		if r.index >= len(c.opts.RangeColors) {
			continue
		}
		col, ok := canvas.ParseColor(c.opts.RangeColors[r.index])
		if !ok {
			continue
		}
		rect := canvas.Rect{X: 0, Y: d.top, W: sc.x(r.value, c.width), H: d.height}
		s.Rect(rect, canvas.Filled(col))
		s.Rect(rect, border)
	}
	s.Rect(b.performanceBar(sc), canvas.Filled(c.opts.color(c.opts.PerformanceColor, canvas.MustColor("#33f"))))
	s.Rect(b.targetMarker(sc), canvas.Filled(c.opts.color(c.opts.TargetColor, canvas.MustColor("#f33"))))
}

func (sc bulletScale) targetRegion() Region {
	return Region{Kind: RegionBullet, Index: 0, Field: FieldTarget, Value: sc.target}
}

func (sc bulletScale) performanceRegion() Region {
	return Region{Kind: RegionBullet, Index: 1, Field: FieldPerformance, Value: sc.performance}
}

func rangeRegion(r bulletRange) Region {
	return Region{
		Kind:       RegionBullet,
		Index:      r.index + 2,
		Field:      "range" + strconv.Itoa(r.index+1),
		Value:      r.value,
		RangeIndex: r.index,
	}
}

// regionAt checks the target marker, then the performance bar, then the
// range edges from the smallest range up so small ranges stay reachable.
func (b *bulletChart) regionAt(x, y float64) (Region, bool) {
	c := b.c
	sc := b.scale()
	if !sc.ok {
		return Region{}, false
	}
	if math.Abs(x-sc.x(sc.target, c.width)) <= c.opts.TargetWidth/2+2 {
		return sc.targetRegion(), true
	}
	if b.performanceBar(sc).Contains(canvas.Pt(x, y)) {
		return sc.performanceRegion(), true
	}
	asc := slices.Clone(sc.ranges)
	slices.SortStableFunc(asc, func(p, q bulletRange) int { return cmp.Compare(p.value, q.value) })
	const margin = 5
	for _, r := range asc {
		edge := sc.x(r.value, c.width)
		if x >= max(0, edge-margin) && x <= edge+margin {
			return rangeRegion(r), true
		}
	}
	return Region{}, false
}

func (b *bulletChart) nearestRegion(x, _ float64) (Region, bool) {
	c := b.c
	sc := b.scale()
	if !sc.ok {
		return Region{}, false
	}
	best := math.Abs(x - sc.x(sc.target, c.width))
	nearest := sc.targetRegion()
	if dist := math.Abs(x - sc.x(sc.performance, c.width)/2); dist < best {
		best, nearest = dist, sc.performanceRegion()
	}
	for _, r := range sc.ranges {
		if dist := math.Abs(x - sc.x(r.value, c.width)); dist < best {
			best, nearest = dist, rangeRegion(r)
		}
	}
	return nearest, true
}

func (b *bulletChart) drawHighlight(s canvas.Surface, r Region) {
	c := b.c
	sc := b.scale()
	if !sc.ok || r.Kind != RegionBullet {
		return
	}
	switch r.Field {
	case FieldTarget:
		m := b.targetMarker(sc)
		tw := c.opts.TargetWidth
		s.Rect(canvas.Rect{X: m.X - tw/2, Y: m.Y - 3, W: tw * 2, H: m.H + 6}, canvas.Filled(canvas.MustColor("#ff6666")))
		s.Rect(m, canvas.Filled(canvas.WithAlpha(canvas.MustColor("#ff3333"), 0.7)))
	case FieldPerformance:
		bar := b.performanceBar(sc)
		s.Rect(canvas.Rect{X: -2, Y: bar.Y - 3, W: bar.W + 4, H: bar.H + 6}, canvas.Filled(canvas.MustColor("#6666ff")))
		s.Rect(bar, canvas.Filled(canvas.WithAlpha(canvas.MustColor("#4444ff"), 0.8)))
	default:
		d := c.dims()
		w := sc.x(r.Value, c.width)
		s.Rect(canvas.Rect{X: -1, Y: d.top - 2, W: w + 2, H: d.height + 4}, canvas.Stroked(outlineColor, 2))
		s.Rect(canvas.Rect{X: 0, Y: d.top, W: w, H: d.height}, canvas.Filled(canvas.WithAlpha(canvas.MustColor("#000"), 0.2)))
		s.Rect(canvas.Rect{X: max(0, w-3), Y: d.top, W: 3, H: d.height}, canvas.Filled(canvas.MustColor("#ff6600")))
	}
}

// tooltipContent defers to plain text; bullet tooltips name the part.
func (b *bulletChart) tooltipContent(Region) (tooltip.Content, bool) {
	return tooltip.Content{}, false
}

func (b *bulletChart) regionFields(r Region) map[string]any {
	c := b.c
	var ranges []any
	if len(c.series) > 2 {
		for _, v := range c.series[2:] {
			ranges = append(ranges, v.Any())
		}
	}
	var target, performance any
	if len(c.series) > 0 {
		target = c.series[0].Any()
	}
	if len(c.series) > 1 {
		performance = c.series[1].Any()
	}
	return map[string]any{
		"isNull":      false,
		"value":       r.Value,
		"index":       r.Index,
		"fieldkey":    r.Field,
		"type":        b.regionType(r),
		"x":           r.Index,
		"y":           r.Value,
		"offset":      r.Index,
		"rangeIndex":  r.RangeIndex,
		"target":      target,
		"performance": performance,
		"ranges":      ranges,
	}
}

func (b *bulletChart) regionType(r Region) string {
	if r.Field == FieldTarget || r.Field == FieldPerformance {
		return r.Field
	}
	return "range"
}

func (b *bulletChart) fixedFormat(v any, r Region) string {
	return b.defaultFormat(v, r)
}

func (b *bulletChart) defaultFormat(v any, r Region) string {
	if r.Kind != RegionBullet {
		return fixed2(v)
	}
	return r.Field + ": " + tooltip.Fixed(r.Value)
}
