package chart

import (
	"math"
	"strconv"
	"testing"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandsOf(kind canvas.CommandKind, cmds []canvas.Command) []canvas.Command {
	var out []canvas.Command
	for _, c := range cmds {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func TestLineBreaksAtGaps(t *testing.T) {
	surface := canvas.New(100, 20)
	_, err := New(testContext(), KindLine, surface, Props{Data: []any{1, 2, nil, 3, 4, nil, 5}})
	require.NoError(t, err)

	paths := commandsOf(canvas.CmdPath, surface.Commands())
	require.Len(t, paths, 2)

	fill := paths[0]
	assert.True(t, fill.Closed)
	require.Len(t, fill.Subpaths, 2, "the lone trailing point has no area")
	for _, sp := range fill.Subpaths {
		assert.Len(t, sp, 4)
		assert.Equal(t, 17.0, sp[len(sp)-1].Y, "areas close against the bottom padding")
	}

	stroke := paths[1]
	assert.False(t, stroke.Closed)
	assert.Len(t, stroke.Subpaths, 3)
}

func TestLineSpots(t *testing.T) {
	surface := canvas.New(100, 20)
	_, err := New(testContext(), KindLine, surface, Props{Data: []any{1, 3, 2}})
	require.NoError(t, err)
	circles := commandsOf(canvas.CmdCircle, surface.Commands())
	// one spot per point plus the min and max spots
	assert.Len(t, circles, 5)
}

func TestLineNearestPrefersHorizontalDistance(t *testing.T) {
	c := newTestChart(t, testContext(), KindLine, 100, 20, []any{0, 10, 0}, nil)
	r, ok := c.NearestRegion(30, 17)
	require.True(t, ok)
	assert.Equal(t, IndexRegion(1), r)

	_, ok = c.RegionAt(30, 17)
	assert.False(t, ok, "exact hits need to be within the spot box")
	r, ok = c.RegionAt(52, 4)
	require.True(t, ok)
	assert.Equal(t, IndexRegion(1), r)
}

func TestLineTooltipMarksExtremes(t *testing.T) {
	c := newTestChart(t, testContext(), KindLine, 100, 20, []any{1, 3, 2}, nil)
	assert.Equal(t, []string{"Min: 1"}, c.TooltipContent(IndexRegion(0)).Lines())
	assert.Equal(t, []string{"Max: 3"}, c.TooltipContent(IndexRegion(1)).Lines())
	assert.Equal(t, []string{"2"}, c.TooltipContent(IndexRegion(2)).Lines())

	c = newTestChart(t, testContext(), KindLine, 100, 20, []any{[]float64{2, 1}, []float64{4, 3}}, map[string]any{"tooltipFormat": ""})
	assert.Equal(t, "(4, 3)", c.formatValue(3.0, IndexRegion(1)))
}

func TestBarWidthModes(t *testing.T) {
	data := []any{1, 2, 3, 4, 5, 6, 7}
	tests := []struct {
		name     string
		barWidth any
		bar      float64
		centered bool
	}{
		{name: "auto", barWidth: "auto", bar: 13, centered: true},
		{name: "fill", barWidth: "fill", bar: 14},
		{name: "pixels", barWidth: 10, bar: 10, centered: true},
		{name: "too wide", barWidth: 30, bar: 13, centered: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChart(t, testContext(), KindBar, 100, 20, data, map[string]any{"barWidth": tt.barWidth})
			boxes := c.r.(*barChart).boxes
			require.Len(t, boxes, len(data))

			for _, b := range boxes {
				assert.Equal(t, tt.bar, b.W)
			}
			first, last := boxes[0], boxes[len(boxes)-1]
			assert.GreaterOrEqual(t, first.X, 0.0)
			assert.LessOrEqual(t, last.X+last.W, 100.0)
			for i := 1; i < len(boxes); i++ {
				assert.GreaterOrEqual(t, boxes[i].X, boxes[i-1].X+boxes[i-1].W, "bars must not overlap")
			}
			if tt.centered {
				assert.InDelta(t, first.X, 100-(last.X+last.W), 1e-9)
			}
		})
	}
}

func TestBarWidthCrowded(t *testing.T) {
	for _, n := range []int{30, 50, 60} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			data := make([]any, n)
			for i := range data {
				data[i] = i + 1
			}
			c := newTestChart(t, testContext(), KindBar, 50, 20, data, nil)
			boxes := c.r.(*barChart).boxes
			require.Len(t, boxes, n)

			last := boxes[n-1]
			assert.GreaterOrEqual(t, boxes[0].X, 0.0)
			assert.LessOrEqual(t, last.X+last.W, 50.0+1e-9)
			for i := 1; i < n; i++ {
				assert.GreaterOrEqual(t, boxes[i].X+1e-9, boxes[i-1].X+boxes[i-1].W, "bars must not overlap")
			}

			r, ok := c.RegionAt(last.X+last.W/2, last.Y+last.H/2)
			require.True(t, ok)
			assert.Equal(t, IndexRegion(n-1), r)
		})
	}
}

func TestBarStraddlesZero(t *testing.T) {
	surface := canvas.New(20, 20)
	c, err := New(testContext(), KindBar, surface, Props{Data: []any{-2, 2}, Options: map[string]any{"barWidth": "fill"}})
	require.NoError(t, err)

	boxes := c.r.(*barChart).boxes
	require.Len(t, boxes, 2)
	assert.Equal(t, 10.0, boxes[0].Y, "negative bars hang from the zero line")
	assert.Equal(t, 7.0, boxes[0].H)
	assert.Equal(t, 3.0, boxes[1].Y)
	assert.Equal(t, 7.0, boxes[1].H)

	paths := commandsOf(canvas.CmdPath, surface.Commands())
	require.Len(t, paths, 1)
	assert.Equal(t, 10.0, paths[0].Subpaths[0][0].Y)

	assert.Equal(t, canvas.MustColor("#f44"), boxes[0].Color)
	assert.Equal(t, canvas.MustColor("#3366cc"), boxes[1].Color)
}

func TestBarNullsAreTransparentButHittable(t *testing.T) {
	surface := canvas.New(20, 20)
	c, err := New(testContext(), KindBar, surface, Props{Data: []any{nil, 2}, Options: map[string]any{"barWidth": "fill"}})
	require.NoError(t, err)
	assert.Len(t, commandsOf(canvas.CmdRect, surface.Commands()), 1)

	r, ok := c.RegionAt(5, 10)
	require.True(t, ok)
	assert.Equal(t, IndexRegion(0), r)
	assert.Equal(t, "null", c.TooltipContent(r).Text)
}

func TestStackedBars(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindBar, 60, 20, []any{[]any{1, 2, 3}, []any{4, 1, 1}, nil}, nil)
	bar := c.r.(*barChart)
	require.True(t, bar.stacked)
	require.Len(t, bar.boxes, 6)

	c.HandlePointer(mouse(Move, 10, 10))
	r, ok := c.Hovered()
	require.True(t, ok)
	assert.Equal(t, Region{Kind: RegionStack, Index: 0}, r)
	assert.Equal(t, []string{"3", "2", "1"}, ctx.Tooltip.Content().Lines(), "segments are listed from the top")

	r, ok = c.RegionAt(10, 16)
	require.True(t, ok)
	assert.Equal(t, RegionStack, r.Kind)
	_, ok = c.RegionAt(10, 1)
	assert.False(t, ok)

	// both columns total 6, so they fill the drawable height
	for _, i := range []int{0, 1} {
		col := bar.column(i)
		top := col[len(col)-1]
		assert.InDelta(t, 3.0, top.Y, 1e-9)
	}
	assert.Equal(t, "Stack 1: 6", bar.defaultFormat(6.0, r))
}

func TestTriStateTooltip(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindTriState, 90, 20, []any{1, 1, 1, 0, -1, 1, -1, 0, 1}, nil)
	lines := c.TooltipContent(IndexRegion(4)).Lines()
	assert.Equal(t, []string{"Current: Loss", "Wins: 5", "Losses: 2", "Draws: 2"}, lines)

	assert.Equal(t, "Win", c.formatValue(1.0, IndexRegion(0)))
	assert.Equal(t, "Tristate: 2", c.formatValue(2.0, IndexRegion(0)))

	boxes := c.r.(*tristateChart).boxes
	require.Len(t, boxes, 9)
	assert.Less(t, boxes[0].Y, boxes[3].Y, "wins sit above the middle")
	assert.Greater(t, boxes[4].Y, boxes[3].Y, "losses sit below it")
	assert.Equal(t, float64(tristateZeroHeight), boxes[3].H)
}

func TestDiscreteThreshold(t *testing.T) {
	c := newTestChart(t, testContext(), KindDiscrete, 30, 20, []any{1, 5, 2}, map[string]any{
		"thresholdValue": 3,
		"thresholdColor": "#f00",
	})
	ticks := c.r.(*discreteChart).ticks
	require.Len(t, ticks, 3)
	assert.Equal(t, "#f00", ticks[0].color)
	assert.Equal(t, "#00f", ticks[1].color)
	assert.Equal(t, "#f00", ticks[2].color)
	for _, tk := range ticks {
		assert.LessOrEqual(t, tk.bottom, 17.0)
		assert.LessOrEqual(t, tk.top, tk.bottom)
	}
	assert.InDelta(t, 3+0.3*14, ticks[1].bottom, 1e-9)
	assert.Equal(t, "5", c.formatValue(5.0, IndexRegion(1)))
}

func TestBulletRegions(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindBullet, 100, 20, []any{35, 25, 18, 40, 50}, nil)

	c.HandlePointer(mouse(Move, 25, 10))
	r, ok := c.Hovered()
	require.True(t, ok)
	assert.Equal(t, FieldPerformance, r.Field)
	assert.Equal(t, 25.0, r.Value)
	assert.Equal(t, "performance: 25.00", ctx.Tooltip.Content().Text)

	c.HandlePointer(mouse(Move, 70, 10))
	r, _ = c.Hovered()
	assert.Equal(t, FieldTarget, r.Field)
	assert.Equal(t, 35.0, r.Value)

	r, ok = c.RegionAt(36, 1)
	require.True(t, ok)
	assert.Equal(t, "range1", r.Field)
	assert.Equal(t, 2, r.Index)
	assert.Equal(t, 18.0, r.Value)

	f := c.RegionFields(r)
	assert.Equal(t, "range", f["type"])
	assert.Equal(t, []any{18.0, 40.0, 50.0}, f["ranges"])
}

func TestBulletNeedsPositiveRange(t *testing.T) {
	surface := canvas.New(100, 20)
	c, err := New(testContext(), KindBullet, surface, Props{Data: []any{0, 0}})
	require.NoError(t, err)
	assert.Empty(t, surface.Commands())
	_, ok := c.NearestRegion(10, 10)
	assert.False(t, ok)
}

func TestComputeBoxStats(t *testing.T) {
	st, ok := ComputeBoxStats([]float64{85, 4, 59, 34, 78, 50, 70}, 1.5)
	require.True(t, ok)
	assert.Equal(t, 34.0, st.Q1)
	assert.Equal(t, 59.0, st.Median)
	assert.Equal(t, 78.0, st.Q3)
	assert.Equal(t, -32.0, st.LowerFence)
	assert.Equal(t, 144.0, st.UpperFence)
	assert.Equal(t, 4.0, st.LowerWhisker)
	assert.Equal(t, 85.0, st.UpperWhisker)
	assert.Empty(t, st.Outliers)

	st, ok = ComputeBoxStats([]float64{4, 27, 34, 52, 54, 59, 61, 68, 78, 82, 85}, 1.5)
	require.True(t, ok)
	assert.Equal(t, BoxStats{
		Q1: 34, Median: 59, Q3: 78,
		LowerWhisker: 4, UpperWhisker: 85,
		LowerFence: -32, UpperFence: 144,
	}, st)

	st, _ = ComputeBoxStats([]float64{1, 2, 3, 4}, 1.5)
	assert.Equal(t, 2.5, st.Median)

	st, _ = ComputeBoxStats([]float64{1, 2, 3, 4, 100}, 1.5)
	assert.Equal(t, []float64{100}, st.Outliers)
	assert.Equal(t, 4.0, st.UpperWhisker)

	_, ok = ComputeBoxStats(nil, 1.5)
	assert.False(t, ok)
}

func TestBoxStatsAreMemoized(t *testing.T) {
	c := newTestChart(t, testContext(), KindBox, 40, 40, []any{1, 2, 3, 4, 5}, nil)
	box := c.r.(*boxChart)
	require.Equal(t, 1, box.computations)

	c.TooltipContent(IndexRegion(0))
	c.Draw()
	assert.Equal(t, 1, box.computations)

	c.series[3].Y = 1000
	c.Draw()
	assert.Equal(t, 2, box.computations)
}

func TestBoxRegionHonorsPadding(t *testing.T) {
	c := newTestChart(t, testContext(), KindBox, 40, 40, []any{1, 2, 3, 4, 5}, map[string]any{
		"topPadding":    2,
		"bottomPadding": 10,
	})
	_, ok := c.RegionAt(20, 1)
	assert.False(t, ok)
	_, ok = c.RegionAt(20, 2)
	assert.True(t, ok)
	_, ok = c.RegionAt(20, 30)
	assert.True(t, ok)
	_, ok = c.RegionAt(20, 35)
	assert.False(t, ok, "the bottom padding is outside the box")
}

func TestBoxRawMode(t *testing.T) {
	c := newTestChart(t, testContext(), KindBox, 40, 40, []any{1, 2, 3, 4, 5, 6, 7}, map[string]any{"raw": true})
	st, ok := c.r.(*boxChart).stats()
	require.True(t, ok)
	assert.Equal(t, BoxStats{
		LowerWhisker: 2, Q1: 3, Median: 4, Q3: 5, UpperWhisker: 6,
		Outliers: []float64{1, 7},
	}, st)

	lines := c.TooltipContent(IndexRegion(0)).Lines()
	assert.Equal(t, []string{
		"Lower Quartile: 3.00",
		"Median: 4.00",
		"Upper Quartile: 5.00",
		"Left Whisker: 2.00",
		"Right Whisker: 6.00",
		"Outlier 1: 1.00",
		"Outlier 2: 7.00",
	}, lines)

	c = newTestChart(t, testContext(), KindBox, 40, 40, []any{1, 2, 3}, map[string]any{"raw": true})
	assert.Equal(t, "No data", c.formatValue(1.0, IndexRegion(0)))
}

func TestPieSlices(t *testing.T) {
	c := newTestChart(t, testContext(), KindPie, 40, 40, []any{3, nil, -1, 5, 2, 0}, map[string]any{"offset": 30})
	pie := c.r.(*pieChart)
	require.Len(t, pie.slices, 3)

	var sweep float64
	var indices []int
	for _, sl := range pie.slices {
		sweep += sl.end - sl.start
		indices = append(indices, sl.index)
	}
	assert.InDelta(t, 2*math.Pi, sweep, 1e-9)
	assert.Equal(t, []int{0, 3, 4}, indices)
	assert.InDelta(t, -math.Pi/2+math.Pi/6, pie.slices[0].start, 1e-9)

	for _, sl := range pie.slices {
		mid := (sl.start + sl.end) / 2
		x := pie.center.X + pie.radius/2*math.Cos(mid)
		y := pie.center.Y + pie.radius/2*math.Sin(mid)
		r, ok := c.RegionAt(x, y)
		require.True(t, ok)
		assert.Equal(t, sl.index, r.Index)
	}

	_, ok := c.RegionAt(0, 0)
	assert.False(t, ok, "corners are outside the pie")
	assert.InDelta(t, 50.0, c.RegionFields(IndexRegion(3))["percent"], 1e-9)
}
