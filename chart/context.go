package chart

import (
	"log/slog"
	"sort"
	"time"

	"git.sr.ht/~whereswaldon/sparkline/tooltip"
)

// Env describes the input capabilities of the host. Charts skip interaction
// setup when neither is available.
type Env struct {
	Pointer bool
	Touch   bool
}

// Context holds the state shared by every chart on a page: the tooltip
// overlay, the scroll registry, pending timers and the logger. A Context is
// not safe for concurrent use; it belongs to the UI goroutine.
type Context struct {
	Tooltip  *tooltip.Shared
	Logger   *slog.Logger
	Env      Env
	Viewport tooltip.Viewport

	now    time.Time
	nextID tooltip.ID
	// scroll lists charts that want tooltip repositioning on scroll, in
	// registration order.
	scroll []*Chart
	timers []*timer
}

// NewContext returns a context with a fresh tooltip. A nil logger selects
// slog.Default.
func NewContext(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Tooltip: &tooltip.Shared{},
		Logger:  logger,
		Env:     Env{Pointer: true, Touch: true},
	}
}

func (ctx *Context) newID() tooltip.ID {
	ctx.nextID++
	return ctx.nextID
}

// Now returns the context clock.
func (ctx *Context) Now() time.Time { return ctx.now }

// Advance moves the clock to now and runs every timer that has come due, in
// due order.
func (ctx *Context) Advance(now time.Time) {
	if now.After(ctx.now) {
		ctx.now = now
	}
	for {
		due := ctx.timers[:0:0]
		rest := ctx.timers[:0]
		for _, t := range ctx.timers {
			if t.cancelled {
				continue
			}
			if !t.due.After(ctx.now) {
				due = append(due, t)
			} else {
				rest = append(rest, t)
			}
		}
		ctx.timers = rest
		if len(due) == 0 {
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })
		for _, t := range due {
			if t.cancelled {
				continue
			}
			t.owner.timers.remove(t)
			t.fn()
		}
	}
}

// Pending returns the number of timers waiting to fire.
func (ctx *Context) Pending() int {
	n := 0
	for _, t := range ctx.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (ctx *Context) register(c *Chart) {
	for _, existing := range ctx.scroll {
		if existing == c {
			return
		}
	}
	ctx.scroll = append(ctx.scroll, c)
}

func (ctx *Context) unregister(c *Chart) {
	for i, existing := range ctx.scroll {
		if existing == c {
			ctx.scroll = append(ctx.scroll[:i], ctx.scroll[i+1:]...)
			return
		}
	}
}

// Registered returns the number of charts in the scroll registry.
func (ctx *Context) Registered() int { return len(ctx.scroll) }

// Scroll repositions the tooltip of every hovering chart after the page
// moved. Charts whose surface became invalid are dropped from the registry.
func (ctx *Context) Scroll() {
	kept := ctx.scroll[:0]
	for _, c := range ctx.scroll {
		if !c.surfaceValid() {
			ctx.Logger.Debug("dropping chart with invalid surface from scroll registry", "chart", c.id)
			continue
		}
		kept = append(kept, c)
		c.refreshPosition()
	}
	clear(ctx.scroll[len(kept):])
	ctx.scroll = kept
}

// RefreshTooltips re-renders the tooltip of every hovering chart, restoring
// preserved state for charts that are not hovering.
func (ctx *Context) RefreshTooltips() {
	for _, c := range ctx.scroll {
		c.RefreshTooltip()
	}
}

// Teardown hides and discards the shared tooltip, cancels every timer and
// empties the scroll registry.
func (ctx *Context) Teardown() {
	for _, t := range ctx.timers {
		t.cancelled = true
	}
	ctx.timers = nil
	ctx.scroll = nil
	ctx.Tooltip.Cleanup()
}
