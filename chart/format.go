package chart

import "git.sr.ht/~whereswaldon/sparkline/tooltip"

// label formats v and wraps it in the configured prefix and suffix.
func (c *Chart) label(v any, r Region) string {
	return c.opts.TooltipPrefix + c.formatValue(v, r) + c.opts.TooltipSuffix
}

// formatValue resolves tooltip text for v. A custom formatter wins, then a
// format fixed by the chart type, then the template, then the type default.
func (c *Chart) formatValue(v any, r Region) string {
	if v == nil {
		return "null"
	}
	if c.formatter != nil {
		if s, ok := c.callFormatter(v, r); ok {
			return s
		}
		return c.r.defaultFormat(v, r)
	}
	if ff, ok := c.r.(fixedFormatter); ok {
		return ff.fixedFormat(v, r)
	}
	if c.opts.TooltipFormat != "" {
		fields := c.r.regionFields(r)
		fields["value"] = v
		return tooltip.Expand(c.opts.TooltipFormat, fields)
	}
	return c.r.defaultFormat(v, r)
}

func (c *Chart) callFormatter(v any, r Region) (s string, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			c.ctx.Logger.Warn("tooltip formatter panicked", "chart", c.id, "panic", p)
			s, ok = "", false
		}
	}()
	out, err := c.formatter(v, r, c)
	if err != nil {
		c.ctx.Logger.Warn("tooltip formatter failed", "chart", c.id, "err", err)
		return "", false
	}
	return tooltip.Sanitize(out), true
}

// fixed2 is the default number format.
func fixed2(v any) string {
	if f, ok := v.(float64); ok {
		return tooltip.Fixed(f)
	}
	return tooltip.Stringify(v)
}
