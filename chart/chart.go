// Package chart implements the sparkline chart types and the interaction
// engine they share.
//
// A Chart draws into a canvas.Surface and turns pointer input into hovered
// regions, highlight repaints and tooltip updates. All charts on a page share
// a Context, which owns the single tooltip overlay, the scroll registry and a
// virtual clock for deferred work. Nothing in this package is safe for
// concurrent use; drive it from the UI goroutine.
package chart

import (
	"fmt"
	"math"
	"time"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
	"git.sr.ht/~whereswaldon/sparkline/values"
)

// Touch interaction tuning.
const (
	TouchTapThreshold = 10
	TouchTapDuration  = 300 * time.Millisecond
	TouchTooltipDelay = 150 * time.Millisecond
)

// Formatter produces custom tooltip text. Its output is sanitized before
// display. Errors and panics fall back to the default format.
type Formatter func(value any, region Region, c *Chart) (string, error)

// Props are the inputs a chart is built from.
type Props struct {
	Data []any
	// Width and Height override the surface size when non-zero.
	Width, Height int
	Options       map[string]any
	Formatter     Formatter

	// Defaults replaces the built-in defaults for the kind when set.
	Defaults *Options
	// Values is used instead of processing Data when non-nil.
	Values values.Series
}

// renderer is implemented by each chart type.
type renderer interface {
	draw(s canvas.Surface)
	regionAt(x, y float64) (Region, bool)
	nearestRegion(x, y float64) (Region, bool)
	drawHighlight(s canvas.Surface, r Region)
	// tooltipContent returns structured content, or false to use the
	// formatted value as plain text.
	tooltipContent(r Region) (tooltip.Content, bool)
	regionFields(r Region) map[string]any
	defaultFormat(v any, r Region) string
}

// fixedFormatter is implemented by chart types whose tooltip format cannot
// be overridden by a template.
type fixedFormatter interface {
	fixedFormat(v any, r Region) string
}

// PreservedState captures hover state across a teardown so a replacement
// chart can restore it. The pointer is stored relative to the chart size.
type PreservedState struct {
	WasVisible     bool
	LastRegion     *Region
	RatioX, RatioY float64
	HasPosition    bool
	WasTouch       bool
}

// Chart is one sparkline instance.
type Chart struct {
	id   tooltip.ID
	kind Kind
	ctx  *Context

	surface   canvas.Surface
	opts      Options
	series    values.Series
	formatter Formatter
	r         renderer

	width, height float64
	origin        canvas.Point

	interactive bool
	destroyed   bool

	hovering bool
	hover    Region
	last     PointerSample
	hasLast  bool

	touching   bool
	touchStart PointerSample
	touchAt    time.Time

	preserved *PreservedState
	timers    timerSet

	// handoff is set by Preserve while the chart owns a visible tooltip, so
	// that Destroy leaves it up for a replacement.
	handoff bool

	regionListeners []func(RegionChange)
	clickListeners  []func(ClickEvent)
}

// New builds a chart of the given kind and draws it onto surface.
func New(ctx *Context, kind Kind, surface canvas.Surface, props Props) (*Chart, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	c := &Chart{
		id:     ctx.newID(),
		kind:   kind,
		ctx:    ctx,
		timers: timerSet{},
	}
	if err := c.init(surface, props); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chart) init(surface canvas.Surface, props Props) error {
	base := DefaultOptions(c.kind)
	if props.Defaults != nil {
		base = *props.Defaults
	}
	opts, err := mergeOptions(base, props.Options)
	if err != nil {
		return fmt.Errorf("failed building %v chart options: %w", c.kind, err)
	}
	series := props.Values
	if series == nil {
		series = values.Process(props.Data)
	}
	formatter := props.Formatter
	if formatter == nil {
		switch f := props.Options["tooltipFormatter"].(type) {
		case Formatter:
			formatter = f
		case func(any, Region, *Chart) (string, error):
			formatter = f
		}
	}

	c.surface = surface
	c.opts = opts
	c.series = series
	c.formatter = formatter
	c.destroyed = false
	c.width, c.height = float64(props.Width), float64(props.Height)
	if surface != nil {
		size := surface.Size()
		if c.width <= 0 {
			c.width = float64(size.X)
		}
		if c.height <= 0 {
			c.height = float64(size.Y)
		}
	}
	if c.width <= 0 {
		c.width = float64(len(series)) * opts.DefaultPixelsPerValue
	}
	c.r = newRenderer(c)
	c.setupInteractions()
	c.Draw()
	return nil
}

func newRenderer(c *Chart) renderer {
	switch c.kind {
	case KindLine:
		return &lineChart{c: c}
	case KindBar:
		return &barChart{c: c}
	case KindTriState:
		return &tristateChart{c: c}
	case KindDiscrete:
		return &discreteChart{c: c}
	case KindBullet:
		return &bulletChart{c: c}
	case KindPie:
		return &pieChart{c: c}
	case KindBox:
		return &boxChart{c: c}
	}
	panic(fmt.Sprintf("no renderer for %v", c.kind))
}

func (c *Chart) setupInteractions() {
	c.interactive = false
	if c.opts.DisableInteraction {
		return
	}
	if !c.ctx.Env.Pointer && !c.ctx.Env.Touch {
		c.ctx.Logger.Debug("no pointer or touch support, skipping interaction setup", "chart", c.id)
		return
	}
	c.interactive = true
	c.ctx.register(c)
}

// ID returns the chart identity used for tooltip ownership.
func (c *Chart) ID() tooltip.ID { return c.id }

func (c *Chart) Kind() Kind { return c.kind }

// Options returns the merged options in effect.
func (c *Chart) Options() Options { return c.opts }

// Values returns the processed series.
func (c *Chart) Values() values.Series { return c.series }

// Surface returns the surface the chart draws onto.
func (c *Chart) Surface() canvas.Surface { return c.surface }

// Size returns the chart size in pixels.
func (c *Chart) Size() (w, h float64) { return c.width, c.height }

// Hovered returns the currently hovered region.
func (c *Chart) Hovered() (Region, bool) { return c.hover, c.hovering }

// Interactive reports whether the chart accepts pointer input.
func (c *Chart) Interactive() bool { return c.interactive }

// Destroyed reports whether Destroy has been called.
func (c *Chart) Destroyed() bool { return c.destroyed }

// SetOrigin records where the surface's top-left corner sits on the page,
// used to translate local positions into tooltip coordinates.
func (c *Chart) SetOrigin(p canvas.Point) { c.origin = p }

// OnRegionChange registers a listener for hovered region changes.
func (c *Chart) OnRegionChange(fn func(RegionChange)) {
	c.regionListeners = append(c.regionListeners, fn)
}

// OnClick registers a listener for clicks on regions.
func (c *Chart) OnClick(fn func(ClickEvent)) {
	c.clickListeners = append(c.clickListeners, fn)
}

// Listeners returns the number of registered listeners.
func (c *Chart) Listeners() int {
	return len(c.regionListeners) + len(c.clickListeners)
}

type drawDims struct {
	width, height float64
	top, bottom   float64
}

// dims returns the drawable area after vertical padding.
func (c *Chart) dims() drawDims {
	return drawDims{
		width:  c.width,
		height: max(1, c.height-c.opts.TopPadding-c.opts.BottomPadding),
		top:    c.opts.TopPadding,
		bottom: c.opts.BottomPadding,
	}
}

// Draw repaints the chart from scratch and overlays the highlight of the
// hovered region.
func (c *Chart) Draw() {
	if c.surface == nil || c.destroyed {
		return
	}
	c.surface.Clear()
	if len(c.series) == 0 {
		return
	}
	c.r.draw(c.surface)
	if c.hovering && !c.opts.DisableHighlight {
		c.r.drawHighlight(c.surface, c.hover)
	}
}

// RegionAt resolves the region exactly under a local point.
func (c *Chart) RegionAt(x, y float64) (Region, bool) {
	if len(c.series) == 0 {
		return Region{}, false
	}
	return c.r.regionAt(x, y)
}

// NearestRegion resolves the region closest to a local point.
func (c *Chart) NearestRegion(x, y float64) (Region, bool) {
	if len(c.series) == 0 {
		return Region{}, false
	}
	return c.r.nearestRegion(x, y)
}

// RegionFields returns the template fields for r.
func (c *Chart) RegionFields(r Region) map[string]any {
	return c.r.regionFields(r)
}

// TooltipContent returns what the tooltip shows for r.
func (c *Chart) TooltipContent(r Region) tooltip.Content {
	if content, ok := c.r.tooltipContent(r); ok {
		return content
	}
	return tooltip.Content{Text: c.label(c.regionValue(r), r)}
}

func (c *Chart) regionValue(r Region) any {
	if r.Kind == RegionBullet {
		return r.Value
	}
	if r.Index < 0 || r.Index >= len(c.series) {
		return nil
	}
	return c.series[r.Index].Any()
}

// HandlePointer feeds one pointer event through the interaction state machine.
func (c *Chart) HandlePointer(ev PointerEvent) {
	if !c.interactive || c.destroyed {
		return
	}
	at := ev.At
	if at.IsZero() {
		at = c.ctx.now
	}
	s := ev.Sample
	switch ev.Kind {
	case Move:
		if s.IsTouch && !c.inside(s) {
			c.toIdle()
			return
		}
		c.hoverAt(s)
	case Leave:
		c.toIdle()
	case Press:
		if !s.IsTouch {
			return
		}
		c.touching = true
		c.touchStart = s
		c.touchAt = at
		c.hoverAt(s)
	case Release:
		if !s.IsTouch || !c.touching {
			return
		}
		if at.Sub(c.touchAt) < TouchTapDuration &&
			math.Hypot(s.X-c.touchStart.X, s.Y-c.touchStart.Y) < TouchTapThreshold {
			c.click(s)
		}
		c.touching = false
		c.after(TouchTooltipDelay, func() {
			if !c.touching {
				c.toIdle()
			}
		})
	case Click:
		c.click(s)
	}
}

func (c *Chart) inside(s PointerSample) bool {
	return s.X >= 0 && s.Y >= 0 && s.X <= c.width && s.Y <= c.height
}

func (c *Chart) hoverAt(s PointerSample) {
	c.last = s
	c.hasLast = true
	region, ok := c.NearestRegion(s.X, s.Y)
	if !ok {
		c.leaveRegion()
		return
	}
	if c.hovering && region == c.hover {
		c.positionTooltip(s)
		return
	}
	var prev *Region
	if c.hovering {
		p := c.hover
		prev = &p
	}
	c.hover = region
	c.hovering = true
	c.showTooltip(s, region)
	c.Draw()
	c.emitRegionChange(&region, prev)
}

// toIdle handles the pointer leaving the chart.
func (c *Chart) toIdle() {
	c.hasLast = false
	c.leaveRegion()
}

func (c *Chart) leaveRegion() {
	if !c.hovering {
		return
	}
	prev := c.hover
	c.hovering = false
	c.hover = Region{}
	c.hideTooltip()
	c.Draw()
	c.preserved = nil
	c.handoff = false
	c.emitRegionChange(nil, &prev)
}

func (c *Chart) click(s PointerSample) {
	region, ok := c.RegionAt(s.X, s.Y)
	if !ok {
		return
	}
	ev := ClickEvent{Chart: c, Region: region, Value: c.regionValue(region)}
	for _, fn := range c.clickListeners {
		fn(ev)
	}
}

func (c *Chart) emitRegionChange(region, prev *Region) {
	ev := RegionChange{Chart: c, Region: region, Previous: prev}
	for _, fn := range c.regionListeners {
		fn(ev)
	}
}

func (c *Chart) showTooltip(s PointerSample, r Region) {
	if c.opts.DisableTooltips {
		return
	}
	c.ctx.Tooltip.Show(c.id, c.TooltipContent(r))
	c.positionTooltip(s)
}

func (c *Chart) positionTooltip(s PointerSample) {
	if c.opts.DisableTooltips || c.ctx.Tooltip.Owner() != c.id {
		return
	}
	c.ctx.Tooltip.Move(tooltip.Place(s.PageX, s.PageY, c.ctx.Tooltip.Size(), c.ctx.Viewport, s.IsTouch))
}

func (c *Chart) hideTooltip() {
	c.ctx.Tooltip.Hide(c.id)
}

// refreshPosition re-derives page coordinates from the current origin and
// moves the tooltip there.
func (c *Chart) refreshPosition() {
	if !c.hovering || !c.hasLast {
		return
	}
	c.last.PageX = c.origin.X + c.last.X
	c.last.PageY = c.origin.Y + c.last.Y
	c.positionTooltip(c.last)
}

func (c *Chart) surfaceValid() bool {
	if c.destroyed || c.surface == nil {
		return false
	}
	if v, ok := c.surface.(interface{ Valid() bool }); ok {
		return v.Valid()
	}
	size := c.surface.Size()
	return size.X > 0 && size.Y > 0
}

// TransferTooltip hands tooltip ownership to another chart.
func (c *Chart) TransferTooltip(to *Chart) bool {
	return c.ctx.Tooltip.Transfer(c.id, to.id)
}

// Preserve snapshots the hover state so that a replacement chart can
// restore it after a data update.
func (c *Chart) Preserve() PreservedState {
	st := PreservedState{
		WasVisible: c.ctx.Tooltip.Visible() && c.ctx.Tooltip.Owner() == c.id,
		WasTouch:   c.last.IsTouch,
	}
	if c.hovering {
		r := c.hover
		st.LastRegion = &r
	}
	if c.hasLast && c.width > 0 && c.height > 0 {
		st.RatioX = c.last.X / c.width
		st.RatioY = c.last.Y / c.height
		st.HasPosition = true
	}
	c.preserved = &st
	c.handoff = st.WasVisible
	return st
}

// Preserved returns the last snapshot taken by Preserve or RestoreSmart.
func (c *Chart) Preserved() (PreservedState, bool) {
	if c.preserved == nil {
		return PreservedState{}, false
	}
	return *c.preserved, true
}

// RestoreSmart re-establishes a preserved hover. It scales the stored ratio
// back to pixels, resolves the nearest region there and, failing that,
// estimates the nearest non-gap index. It reports whether anything was
// restored; invalid geometry restores nothing.
func (c *Chart) RestoreSmart(st PreservedState) bool {
	if c.destroyed || !c.interactive || !st.WasVisible || !st.HasPosition {
		return false
	}
	if c.width <= 0 || c.height <= 0 || len(c.series) == 0 {
		return false
	}
	x, y := st.RatioX*c.width, st.RatioY*c.height
	if x < 0 || x > c.width || y < 0 || y > c.height || math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	region, ok := c.NearestRegion(x, y)
	if !ok {
		idx, found := c.estimateIndex(x)
		if !found {
			return false
		}
		region = IndexRegion(idx)
	}
	s := PointerSample{
		X: x, Y: y,
		PageX: c.origin.X + x, PageY: c.origin.Y + y,
		IsTouch: st.WasTouch,
	}
	c.last = s
	c.hasLast = true
	c.hover = region
	c.hovering = true
	c.preserved = &st
	c.showTooltip(s, region)
	c.Draw()
	return true
}

// estimateIndex maps x proportionally onto the series and searches outward,
// left first, for the closest non-gap value.
func (c *Chart) estimateIndex(x float64) (int, bool) {
	n := len(c.series)
	if n == 0 || c.width <= 0 {
		return 0, false
	}
	est := int(math.Round(x / (c.width / float64(n))))
	est = clamp(est, 0, n-1)
	if !c.series[est].IsNull() {
		return est, true
	}
	for d := 1; d < n; d++ {
		if l := est - d; l >= 0 && !c.series[l].IsNull() {
			return l, true
		}
		if r := est + d; r < n && !c.series[r].IsNull() {
			return r, true
		}
	}
	return 0, false
}

// RefreshTooltip re-shows the tooltip for the current hover, or restores the
// preserved state when the chart is not hovering.
func (c *Chart) RefreshTooltip() bool {
	if c.hovering && c.hasLast {
		c.showTooltip(c.last, c.hover)
		return true
	}
	if c.preserved != nil {
		return c.RestoreSmart(*c.preserved)
	}
	return false
}

// Destroy tears the chart down and hides its tooltip. When the host called
// Preserve first and the tooltip was visible then, the tooltip is left up for
// the replacement to claim through RestoreSmart.
func (c *Chart) Destroy() {
	if c.destroyed {
		return
	}
	c.clearTimers()
	if !c.handoff {
		c.hideTooltip()
	}
	c.regionListeners = nil
	c.clickListeners = nil
	c.ctx.unregister(c)
	c.interactive = false
	c.destroyed = true
}

// Reset strips listeners, timers and hover state while keeping the object
// for reuse.
func (c *Chart) Reset() {
	c.clearTimers()
	c.hideTooltip()
	c.regionListeners = nil
	c.clickListeners = nil
	c.ctx.unregister(c)
	c.interactive = false
	c.hovering = false
	c.hover = Region{}
	c.hasLast = false
	c.touching = false
	c.preserved = nil
	c.handoff = false
	c.formatter = nil
	c.series = nil
	if c.surface != nil {
		c.surface.Clear()
	}
	c.surface = nil
}

// Reinitialize rebuilds the chart in place from new props.
func (c *Chart) Reinitialize(surface canvas.Surface, props Props) error {
	c.Reset()
	return c.init(surface, props)
}
