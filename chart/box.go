package chart

import (
	"slices"
	"strconv"
	"strings"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

// BoxStats is the five number summary of a sample plus its outliers.
type BoxStats struct {
	Q1, Median, Q3             float64
	LowerWhisker, UpperWhisker float64
	LowerFence, UpperFence     float64
	Outliers                   []float64
}

// ComputeBoxStats summarizes sample. Quartiles are the order statistics at
// floor(n/4) and floor(3n/4); the median averages the two middle samples
// when n is even. Fences sit k interquartile ranges outside the quartiles
// and the whiskers are the most extreme samples inside them.
func ComputeBoxStats(sample []float64, k float64) (BoxStats, bool) {
	n := len(sample)
	if n == 0 {
		return BoxStats{}, false
	}
	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	st := BoxStats{
		Q1: sorted[n/4],
		Q3: sorted[n*3/4],
	}
	if n%2 == 0 {
		st.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		st.Median = sorted[n/2]
	}
	iqr := st.Q3 - st.Q1
	st.LowerFence = st.Q1 - k*iqr
	st.UpperFence = st.Q3 + k*iqr

	st.LowerWhisker, st.UpperWhisker = st.Q1, st.Q3
	for _, v := range sorted {
		if v >= st.LowerFence {
			st.LowerWhisker = v
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		if sorted[i] <= st.UpperFence {
			st.UpperWhisker = sorted[i]
			break
		}
	}
	for _, v := range sorted {
		if v < st.LowerFence || v > st.UpperFence {
			st.Outliers = append(st.Outliers, v)
		}
	}
	return st, true
}

// boxChart draws a vertical box plot. The whole chart is a single region.
type boxChart struct {
	c *Chart

	// memoized summary of the last computed sample
	snapshot     []float64
	snapshotK    float64
	cached       BoxStats
	computations int

	left, width float64
	lo, rng     float64
}

// stats returns the summary to draw. Raw mode reads the seven precomputed
// values directly; otherwise the sample is summarized, reusing the previous
// result while the sample is unchanged.
func (b *boxChart) stats() (BoxStats, bool) {
	c := b.c
	if c.opts.Raw {
		if len(c.series) < 7 {
			return BoxStats{}, false
		}
		for _, v := range c.series[1:6] {
			if v.IsNull() {
				return BoxStats{}, false
			}
		}
		st := BoxStats{
			LowerWhisker: c.series[1].Y,
			Q1:           c.series[2].Y,
			Median:       c.series[3].Y,
			Q3:           c.series[4].Y,
			UpperWhisker: c.series[5].Y,
		}
		for _, v := range []int{0, 6} {
			if !c.series[v].IsNull() {
				st.Outliers = append(st.Outliers, c.series[v].Y)
			}
		}
		return st, true
	}
	sample := c.series.Scalars()
	if len(sample) == 0 {
		return BoxStats{}, false
	}
	k := c.opts.OutlierIQR
	if b.snapshot != nil && k == b.snapshotK && slices.Equal(b.snapshot, sample) {
		return b.cached, true
	}
	st, _ := ComputeBoxStats(sample, k)
	b.computations++
	b.snapshot, b.snapshotK, b.cached = sample, k, st
	return st, true
}

func (b *boxChart) y(v float64) float64 {
	d := b.c.dims()
	return d.top + d.height - (v-b.lo)/b.rng*d.height
}

func (b *boxChart) scale(st BoxStats) {
	c := b.c
	lo := min(st.LowerWhisker, st.Q1, st.Median, st.Q3, st.UpperWhisker)
	hi := max(st.LowerWhisker, st.Q1, st.Median, st.Q3, st.UpperWhisker)
	for _, o := range st.Outliers {
		lo, hi = min(lo, o), max(hi, o)
	}
	if c.opts.MinValue != nil {
		lo = *c.opts.MinValue
	}
	if c.opts.MaxValue != nil {
		hi = *c.opts.MaxValue
	}
	b.lo, b.rng = lo, span(lo, hi)
	b.width = min(c.width*0.3, 20)
	b.left = (c.width - b.width) / 2
}

func (b *boxChart) draw(s canvas.Surface) {
	c := b.c
	st, ok := b.stats()
	if !ok {
		return
	}
	b.scale(st)
	top, bottom := b.y(st.Q3), b.y(st.Q1)
	box := canvas.Rect{X: b.left, Y: top, W: b.width, H: bottom - top}
	s.Rect(box, canvas.Style{
		Fill:   c.opts.color(c.opts.BoxFillColor, canvas.MustColor("#cdf")),
		Stroke: c.opts.color(c.opts.BoxLineColor, canvas.MustColor("#000")),
		Width:  1,
	})

	med := b.y(st.Median)
	s.Path([][]canvas.Point{{canvas.Pt(b.left, med), canvas.Pt(b.left+b.width, med)}}, false,
		canvas.Stroked(c.opts.color(c.opts.MedianColor, canvas.MustColor("#f00")), 2))

	center := c.width / 2
	capHalf := min(b.width*0.8, 16) / 2
	upper, lower := b.y(st.UpperWhisker), b.y(st.LowerWhisker)
	s.Path([][]canvas.Point{
		{canvas.Pt(center, top), canvas.Pt(center, upper)},
		{canvas.Pt(center-capHalf, upper), canvas.Pt(center+capHalf, upper)},
		{canvas.Pt(center, bottom), canvas.Pt(center, lower)},
		{canvas.Pt(center-capHalf, lower), canvas.Pt(center+capHalf, lower)},
	}, false, canvas.Stroked(c.opts.color(c.opts.WhiskerColor, canvas.MustColor("#000")), 1))

	if c.opts.ShowOutliers && c.opts.SpotRadius > 0 {
		style := canvas.Style{
			Fill:   c.opts.color(c.opts.OutlierFillColor, canvas.MustColor("#fff")),
			Stroke: c.opts.color(c.opts.OutlierLineColor, canvas.MustColor("#333")),
			Width:  1,
		}
		for _, o := range st.Outliers {
			s.Circle(canvas.Pt(center, b.y(o)), c.opts.SpotRadius, style)
		}
	}

	if c.opts.Target != nil {
		if col, ok := canvas.ParseColor(c.opts.TargetColor); ok {
			ty := b.y(*c.opts.Target)
			s.Path([][]canvas.Point{{canvas.Pt(0, ty), canvas.Pt(c.width, ty)}}, false, canvas.Stroked(col, 2))
		}
	}
}

func (b *boxChart) regionAt(x, y float64) (Region, bool) {
	c := b.c
	top, bottom := c.opts.TopPadding, c.height-c.opts.BottomPadding
	if x >= 0 && x <= c.width && y >= top && y <= bottom {
		return IndexRegion(0), true
	}
	return Region{}, false
}

func (b *boxChart) nearestRegion(x, y float64) (Region, bool) {
	return b.regionAt(x, y)
}

func (b *boxChart) drawHighlight(s canvas.Surface, _ Region) {
	c := b.c
	st, ok := b.stats()
	if !ok {
		return
	}
	b.scale(st)
	col := c.opts.color(c.opts.HighlightSpotColor, canvas.MustColor("#2196F3"))
	top, bottom := b.y(st.Q3), b.y(st.Q1)
	s.Rect(canvas.Rect{X: b.left - 0.5, Y: top - 0.5, W: b.width + 1, H: bottom - top + 1}, canvas.Stroked(col, 1))
	med := b.y(st.Median)
	s.Path([][]canvas.Point{{canvas.Pt(b.left-1, med), canvas.Pt(b.left+b.width+1, med)}}, false,
		canvas.Stroked(canvas.WithAlpha(col, 0.6), 1))
}

func (b *boxChart) tooltipContent(Region) (tooltip.Content, bool) {
	c := b.c
	st, ok := b.stats()
	if !ok {
		return tooltip.Content{}, false
	}
	fill := c.opts.color(c.opts.BoxFillColor, canvas.MustColor("#cdf"))
	whisker := c.opts.color(c.opts.WhiskerColor, canvas.MustColor("#000"))
	items := []tooltip.Item{
		{Label: "Lower Quartile: " + tooltip.Fixed(st.Q1), Color: fill},
		{Label: "Median: " + tooltip.Fixed(st.Median), Color: c.opts.color(c.opts.MedianColor, canvas.MustColor("#f00"))},
		{Label: "Upper Quartile: " + tooltip.Fixed(st.Q3), Color: fill},
		{Label: "Left Whisker: " + tooltip.Fixed(st.LowerWhisker), Color: whisker},
		{Label: "Right Whisker: " + tooltip.Fixed(st.UpperWhisker), Color: whisker},
	}
	outlier := c.opts.color(c.opts.OutlierFillColor, canvas.MustColor("#fff"))
	for i, o := range st.Outliers {
		items = append(items, tooltip.Item{Label: "Outlier " + strconv.Itoa(i+1) + ": " + tooltip.Fixed(o), Color: outlier})
	}
	return tooltip.Content{Items: items}, true
}

func (b *boxChart) regionFields(Region) map[string]any {
	st, ok := b.stats()
	if !ok {
		return map[string]any{"isNull": true, "value": nil, "index": 0}
	}
	f := map[string]any{
		"isNull": false,
		"value":  st.Median,
		"index":  0,
		"field":  "med",
		"x":      0,
		"y":      st.Median,
		"lq":     st.Q1,
		"med":    st.Median,
		"uq":     st.Q3,
		"lw":     st.LowerWhisker,
		"rw":     st.UpperWhisker,
		"lo":     nil,
		"ro":     nil,
	}
	if len(st.Outliers) > 0 {
		f["lo"] = slices.Min(st.Outliers)
		f["ro"] = slices.Max(st.Outliers)
	}
	return f
}

// fixedFormat always shows the summary, whatever template is configured.
func (b *boxChart) fixedFormat(v any, r Region) string {
	return b.defaultFormat(v, r)
}

func (b *boxChart) defaultFormat(any, Region) string {
	st, ok := b.stats()
	if !ok {
		return "No data"
	}
	return strings.Join([]string{
		"Lower Quartile: " + tooltip.Fixed(st.Q1),
		"Median: " + tooltip.Fixed(st.Median),
		"Upper Quartile: " + tooltip.Fixed(st.Q3),
		"Left Whisker: " + tooltip.Fixed(st.LowerWhisker),
		"Right Whisker: " + tooltip.Fixed(st.UpperWhisker),
	}, "\n")
}
