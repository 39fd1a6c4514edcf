package chart

import "time"

type timer struct {
	owner     *Chart
	due       time.Time
	fn        func()
	cancelled bool
}

// timerSet tracks the pending timers of one chart so teardown can cancel
// them before they fire against a dead instance.
type timerSet map[*timer]struct{}

func (s timerSet) remove(t *timer) { delete(s, t) }

// after schedules fn to run once the context clock passes d from now.
func (c *Chart) after(d time.Duration, fn func()) *timer {
	t := &timer{owner: c, due: c.ctx.now.Add(d), fn: fn}
	c.timers[t] = struct{}{}
	c.ctx.timers = append(c.ctx.timers, t)
	return t
}

// clearTimers cancels every pending timer of the chart.
func (c *Chart) clearTimers() {
	for t := range c.timers {
		t.cancelled = true
		delete(c.timers, t)
	}
}
