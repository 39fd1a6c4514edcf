package chart

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	return NewContext(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestChart(t *testing.T, ctx *Context, kind Kind, w, h int, data []any, opts map[string]any) *Chart {
	t.Helper()
	c, err := New(ctx, kind, canvas.New(w, h), Props{Data: data, Options: opts})
	require.NoError(t, err)
	return c
}

func mouse(kind EventKind, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, Sample: MouseSample(canvas.Pt(x, y), canvas.Point{})}
}

func touch(kind EventKind, x, y float64, at time.Time) PointerEvent {
	return PointerEvent{Kind: kind, Sample: TouchSample(canvas.Pt(x, y), canvas.Point{}), At: at}
}

func TestUnknownKind(t *testing.T) {
	_, err := New(testContext(), Kind(42), canvas.New(10, 10), Props{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = ParseKind("sparkle")
	assert.ErrorIs(t, err, ErrUnknownKind)
	k, err := ParseKind(" Bullet ")
	require.NoError(t, err)
	assert.Equal(t, KindBullet, k)
}

func TestOptionsDecode(t *testing.T) {
	c := newTestChart(t, testContext(), KindBar, 60, 20, []any{1, 2, 3}, map[string]any{
		"barWidth":   "fill",
		"colorMap":   map[string]any{"2": "#0f0"},
		"lineHeight": "50%",
		"tooltipFormatter": Formatter(func(any, Region, *Chart) (string, error) {
			return "x", nil
		}),
	})
	opts := c.Options()
	assert.Equal(t, WidthFill, opts.BarWidth.Mode)
	assert.Equal(t, "#0f0", opts.ColorMap.ByValue["2"])
	assert.InDelta(t, 0.5, opts.LineHeight.Fraction, 1e-9)
	assert.Equal(t, "#3366cc", opts.BarColor, "unset options keep their defaults")

	bar := c.r.(*barChart)
	assert.Equal(t, "#0f0", bar.barColor(2, 1))
	assert.Equal(t, "#3366cc", bar.barColor(3, 2))
	assert.NotNil(t, c.formatter, "formatter passed through options is picked up")
}

func TestOptionsDecodeError(t *testing.T) {
	_, err := New(testContext(), KindDiscrete, canvas.New(10, 10), Props{
		Data:    []any{1},
		Options: map[string]any{"lineHeight": "tall%"},
	})
	assert.Error(t, err)
}

func TestTooltipOwnershipAcrossCharts(t *testing.T) {
	ctx := testContext()
	a := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	b := newTestChart(t, ctx, KindLine, 100, 20, []any{3, 2, 1}, nil)

	a.HandlePointer(mouse(Move, 50, 10))
	require.True(t, ctx.Tooltip.Visible())
	assert.Equal(t, a.ID(), ctx.Tooltip.Owner())

	b.HandlePointer(mouse(Move, 50, 10))
	assert.Equal(t, b.ID(), ctx.Tooltip.Owner())

	// a's late leave must not hide b's tooltip
	a.HandlePointer(mouse(Leave, 0, 0))
	assert.True(t, ctx.Tooltip.Visible())
	assert.Equal(t, b.ID(), ctx.Tooltip.Owner())

	b.HandlePointer(mouse(Leave, 0, 0))
	assert.False(t, ctx.Tooltip.Visible())
}

func TestTransferTooltip(t *testing.T) {
	ctx := testContext()
	a := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	b := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	assert.False(t, a.TransferTooltip(b))
	a.HandlePointer(mouse(Move, 0, 10))
	assert.True(t, a.TransferTooltip(b))
	assert.Equal(t, b.ID(), ctx.Tooltip.Owner())
}

func TestRegionChangeNotifications(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	var got []RegionChange
	c.OnRegionChange(func(ev RegionChange) { got = append(got, ev) })

	c.HandlePointer(mouse(Move, 0, 10))
	c.HandlePointer(mouse(Move, 2, 10))
	c.HandlePointer(mouse(Move, 100, 10))
	c.HandlePointer(mouse(Leave, 0, 0))

	require.Len(t, got, 3, "moving within a region does not notify")
	assert.Equal(t, IndexRegion(0), *got[0].Region)
	assert.Nil(t, got[0].Previous)
	assert.Equal(t, IndexRegion(2), *got[1].Region)
	assert.Equal(t, IndexRegion(0), *got[1].Previous)
	assert.Nil(t, got[2].Region)
	assert.Equal(t, IndexRegion(2), *got[2].Previous)
	assert.Same(t, c, got[2].Chart)
}

func TestHighlightRedraw(t *testing.T) {
	ctx := testContext()
	surface := canvas.New(100, 20)
	c, err := New(ctx, KindLine, surface, Props{Data: []any{1, 2, 3}})
	require.NoError(t, err)
	plain := len(surface.Commands())

	c.HandlePointer(mouse(Move, 50, 10))
	assert.Greater(t, len(surface.Commands()), plain, "hovering adds highlight commands")

	c.HandlePointer(mouse(Leave, 0, 0))
	assert.Len(t, surface.Commands(), plain, "leaving repaints without highlight")
}

func TestClickEmitsExactRegion(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindBar, 20, 20, []any{1, 10}, map[string]any{"barWidth": "fill"})
	var clicks []ClickEvent
	c.OnClick(func(ev ClickEvent) { clicks = append(clicks, ev) })

	c.HandlePointer(mouse(Click, 15, 15))
	require.Len(t, clicks, 1)
	assert.Equal(t, IndexRegion(1), clicks[0].Region)
	assert.Equal(t, 10.0, clicks[0].Value)

	// above the short bar there is no exact hit
	c.HandlePointer(mouse(Click, 5, 4))
	assert.Len(t, clicks, 1)
}

func TestFormatterOutputIsSanitized(t *testing.T) {
	ctx := testContext()
	c, err := New(ctx, KindLine, canvas.New(100, 20), Props{
		Data: []any{1, 2, 3},
		Formatter: func(v any, r Region, _ *Chart) (string, error) {
			return `<img src=x onerror=alert(1)>` + tooltip.Stringify(v), nil
		},
	})
	require.NoError(t, err)
	c.HandlePointer(mouse(Move, 0, 10))
	lines := ctx.Tooltip.Content().Lines()
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "<")
	assert.NotContains(t, lines[0], ">")
	assert.Equal(t, "1", lines[0])
}

func TestFormatterFailureFallsBack(t *testing.T) {
	var logs bytes.Buffer
	ctx := NewContext(slog.New(slog.NewTextHandler(&logs, nil)))
	panicky := newTestChartWithFormatter(t, ctx, func(any, Region, *Chart) (string, error) {
		panic("boom")
	})
	failing := newTestChartWithFormatter(t, ctx, func(any, Region, *Chart) (string, error) {
		return "", errors.New("no")
	})

	assert.Equal(t, "5.00", panicky.formatValue(5.0, IndexRegion(0)))
	assert.Equal(t, "5.00", failing.formatValue(5.0, IndexRegion(0)))
	assert.Contains(t, logs.String(), "tooltip formatter panicked")
	assert.Contains(t, logs.String(), "tooltip formatter failed")
}

func newTestChartWithFormatter(t *testing.T, ctx *Context, f Formatter) *Chart {
	t.Helper()
	c, err := New(ctx, KindDiscrete, canvas.New(30, 20), Props{Data: []any{5, 6}, Formatter: f})
	require.NoError(t, err)
	return c
}

func TestTemplateFormat(t *testing.T) {
	c := newTestChart(t, testContext(), KindBar, 30, 20, []any{1, 2, 3}, map[string]any{
		"tooltipFormat": "{{value.1}} of {{total}}",
		"tooltipPrefix": "$",
	})
	assert.Equal(t, "$2.0 of 3", c.label(2.0, IndexRegion(1)))
	assert.Equal(t, "null", c.formatValue(nil, IndexRegion(1)))

	c = newTestChart(t, testContext(), KindBar, 30, 20, []any{1, 2, 3}, map[string]any{"tooltipFormat": ""})
	assert.Equal(t, "Bar 2: 2", c.formatValue(2.0, IndexRegion(1)))
}

func TestBoxIgnoresTemplate(t *testing.T) {
	c := newTestChart(t, testContext(), KindBox, 40, 20, []any{1, 2, 3, 4, 5}, map[string]any{
		"tooltipFormat": "value={{value}}",
	})
	got := c.formatValue(1.0, IndexRegion(0))
	assert.Contains(t, got, "Lower Quartile: 2.00")
	assert.NotContains(t, got, "value=")
}

func TestTouchTapAndDelayedHide(t *testing.T) {
	ctx := testContext()
	t0 := time.Unix(1000, 0)
	ctx.Advance(t0)
	c := newTestChart(t, ctx, KindBar, 20, 20, []any{5, 10}, map[string]any{"barWidth": "fill"})
	var clicks int
	c.OnClick(func(ClickEvent) { clicks++ })

	c.HandlePointer(touch(Press, 15, 15, t0))
	require.True(t, ctx.Tooltip.Visible())
	c.HandlePointer(touch(Release, 16, 15, t0.Add(100*time.Millisecond)))
	assert.Equal(t, 1, clicks, "a short, still touch is a tap")
	assert.Equal(t, 1, ctx.Pending())

	ctx.Advance(t0.Add(100 * time.Millisecond))
	assert.True(t, ctx.Tooltip.Visible(), "the tooltip lingers after the tap")
	ctx.Advance(t0.Add(TouchTooltipDelay + time.Millisecond))
	assert.False(t, ctx.Tooltip.Visible())
	assert.Zero(t, ctx.Pending())

	// a long press is not a tap
	c.HandlePointer(touch(Press, 15, 15, ctx.Now()))
	c.HandlePointer(touch(Release, 15, 15, ctx.Now().Add(time.Second)))
	assert.Equal(t, 1, clicks)
}

func TestNewTouchKeepsTooltip(t *testing.T) {
	ctx := testContext()
	t0 := time.Unix(1000, 0)
	ctx.Advance(t0)
	c := newTestChart(t, ctx, KindBar, 20, 20, []any{10, 10}, map[string]any{"barWidth": "fill"})

	c.HandlePointer(touch(Press, 5, 15, t0))
	c.HandlePointer(touch(Release, 5, 15, t0))
	c.HandlePointer(touch(Press, 15, 15, t0))
	ctx.Advance(t0.Add(time.Second))
	assert.True(t, ctx.Tooltip.Visible())
	r, ok := c.Hovered()
	require.True(t, ok)
	assert.Equal(t, IndexRegion(1), r)

	// moving the finger off the chart counts as leaving
	c.HandlePointer(touch(Move, 50, 50, t0))
	assert.False(t, ctx.Tooltip.Visible())
}

func TestDestroyCancelsTimers(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindBar, 20, 20, []any{10, 10}, nil)
	c.HandlePointer(touch(Press, 5, 15, time.Time{}))
	c.HandlePointer(touch(Release, 5, 15, time.Time{}))
	require.Equal(t, 1, ctx.Pending())

	c.Destroy()
	assert.Zero(t, ctx.Pending())
	assert.Zero(t, ctx.Registered())
	assert.True(t, c.Destroyed())
	ctx.Advance(time.Unix(1<<31, 0))
}

func TestPreserveAndRestore(t *testing.T) {
	ctx := testContext()
	old := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3, 4, 5}, nil)
	old.HandlePointer(mouse(Move, 50, 10))
	st := old.Preserve()
	require.True(t, st.WasVisible)
	require.NotNil(t, st.LastRegion)
	assert.Equal(t, IndexRegion(2), *st.LastRegion)
	assert.InDelta(t, 0.5, st.RatioX, 1e-9)

	old.Destroy()
	assert.True(t, ctx.Tooltip.Visible(), "an owned tooltip survives destroy for the replacement")
	kept, ok := old.Preserved()
	require.True(t, ok)
	assert.Equal(t, st.RatioX, kept.RatioX)

	replacement := newTestChart(t, ctx, KindLine, 200, 40, []any{1, 2, 3, 4, 5, 6, 7, 8, 9}, nil)
	require.True(t, replacement.RestoreSmart(st))
	assert.Equal(t, replacement.ID(), ctx.Tooltip.Owner())
	r, ok := replacement.Hovered()
	require.True(t, ok)
	assert.Equal(t, IndexRegion(4), r)
}

func TestDestroyHovered(t *testing.T) {
	ctx := testContext()
	a := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3, 4, 5}, nil)
	b := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3, 4, 5}, nil)
	a.HandlePointer(mouse(Move, 50, 10))
	require.Equal(t, a.ID(), ctx.Tooltip.Owner())

	a.Destroy()
	assert.False(t, ctx.Tooltip.Visible())
	assert.Zero(t, ctx.Tooltip.Owner())

	b.HandlePointer(mouse(Move, 50, 10))
	assert.Equal(t, b.ID(), ctx.Tooltip.Owner())
	b.HandlePointer(mouse(Leave, 0, 0))
	assert.False(t, ctx.Tooltip.Visible())

	// a tooltip left up for a replacement can still be dismissed by id
	b.HandlePointer(mouse(Move, 50, 10))
	b.Preserve()
	b.Destroy()
	require.True(t, ctx.Tooltip.Visible())
	assert.True(t, ctx.Tooltip.Hide(b.ID()))
	assert.False(t, ctx.Tooltip.Visible())
}

func TestRestoreWithInvalidGeometry(t *testing.T) {
	ctx := testContext()
	c, err := New(ctx, KindLine, canvas.New(0, 0), Props{Data: []any{1, 2}})
	require.NoError(t, err)
	assert.False(t, c.RestoreSmart(PreservedState{WasVisible: true, HasPosition: true, RatioX: 0.5, RatioY: 0.5}))

	c = newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2}, nil)
	assert.False(t, c.RestoreSmart(PreservedState{WasVisible: true, HasPosition: true, RatioX: 1.5}))
	assert.False(t, c.RestoreSmart(PreservedState{WasVisible: false, HasPosition: true, RatioX: 0.5}))
	assert.False(t, ctx.Tooltip.Visible())
}

func TestEstimateIndexSearchesLeftFirst(t *testing.T) {
	c := newTestChart(t, testContext(), KindBar, 100, 20, []any{1, nil, nil, nil, 5}, nil)
	idx, ok := c.estimateIndex(40)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = c.estimateIndex(100)
	require.True(t, ok)
	assert.Equal(t, 4, idx)
}

func TestRefreshTooltipRestoresPreserved(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	c.HandlePointer(mouse(Move, 100, 10))
	c.Preserve()
	ctx.Tooltip.Hide(c.ID())
	c.hovering = false

	ctx.RefreshTooltips()
	assert.True(t, ctx.Tooltip.Visible())
	r, _ := c.Hovered()
	assert.Equal(t, IndexRegion(2), r)
}

func TestScrollRepositionsAndDropsInvalid(t *testing.T) {
	ctx := testContext()
	ctx.Viewport.W = 1000
	surface := canvas.New(100, 20)
	a, err := New(ctx, KindLine, surface, Props{Data: []any{1, 2, 3}})
	require.NoError(t, err)
	gone := canvas.New(100, 20)
	_, err = New(ctx, KindLine, gone, Props{Data: []any{1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, 2, ctx.Registered())

	a.SetOrigin(canvas.Pt(200, 200))
	a.HandlePointer(PointerEvent{Kind: Move, Sample: MouseSample(canvas.Pt(50, 10), canvas.Pt(200, 200))})
	before := ctx.Tooltip.Position()

	gone.Release()
	a.SetOrigin(canvas.Pt(200, 100))
	ctx.Scroll()
	assert.Equal(t, 1, ctx.Registered())
	after := ctx.Tooltip.Position()
	assert.Equal(t, before.Left, after.Left)
	assert.InDelta(t, before.Top-100, after.Top, 1e-9)
}

func TestNoPointerSkipsInteraction(t *testing.T) {
	ctx := testContext()
	ctx.Env = Env{}
	c := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	assert.False(t, c.Interactive())
	assert.Zero(t, ctx.Registered())
	c.HandlePointer(mouse(Move, 50, 10))
	assert.False(t, ctx.Tooltip.Visible())

	ctx.Env = Env{Pointer: true}
	c = newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, map[string]any{"disableInteraction": true})
	assert.False(t, c.Interactive())
}

func TestDisableTooltips(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, map[string]any{"disableTooltips": true})
	c.HandlePointer(mouse(Move, 50, 10))
	_, hovering := c.Hovered()
	assert.True(t, hovering)
	assert.False(t, ctx.Tooltip.Visible())
}

func TestPieWithoutPositiveValues(t *testing.T) {
	surface := canvas.New(50, 20)
	c, err := New(testContext(), KindPie, surface, Props{Data: []any{"x", nil}})
	require.NoError(t, err)
	assert.Empty(t, surface.Commands())
	_, ok := c.NearestRegion(25, 10)
	assert.False(t, ok)
}

func TestResetAndReinitialize(t *testing.T) {
	ctx := testContext()
	c := newTestChart(t, ctx, KindLine, 100, 20, []any{1, 2, 3}, nil)
	c.OnClick(func(ClickEvent) {})
	c.HandlePointer(mouse(Move, 50, 10))
	id := c.ID()

	c.Reset()
	assert.Zero(t, c.Listeners())
	assert.False(t, ctx.Tooltip.Visible())
	assert.Zero(t, ctx.Registered())

	require.NoError(t, c.Reinitialize(canvas.New(50, 10), Props{Data: []any{4, 5}}))
	assert.Equal(t, id, c.ID())
	assert.Len(t, c.Values(), 2)
	_, hovering := c.Hovered()
	assert.False(t, hovering)
	assert.Equal(t, 1, ctx.Registered())
}
