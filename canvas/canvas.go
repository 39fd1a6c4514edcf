// Package canvas provides the drawing surface charts render onto. Charts draw
// into a retained display list which can then be replayed into a Gio op list
// for interactive display or rasterized into an image.
package canvas

import (
	"image"
	"image/color"
	"math"
)

// Point is a position in surface pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Rect is an axis aligned rectangle in surface pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies within r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Style describes how a shape is painted. A color with zero alpha disables
// that half of the paint.
type Style struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
	Width  float64
	// Dash holds alternating on/off lengths for strokes.
	Dash []float64
}

// Filled returns a Style that only fills with c.
func Filled(c color.NRGBA) Style { return Style{Fill: c} }

// Stroked returns a Style that only strokes with c at the given width.
func Stroked(c color.NRGBA, width float64) Style { return Style{Stroke: c, Width: width} }

func (s Style) fills() bool   { return s.Fill.A > 0 }
func (s Style) strokes() bool { return s.Stroke.A > 0 && s.Width > 0 }

// Surface is the drawing target of every chart type.
type Surface interface {
	// Size returns the surface size in pixels.
	Size() image.Point
	// Clear discards everything drawn so far.
	Clear()
	Rect(r Rect, st Style)
	// Path draws each subpath as an independent polyline. Closed subpaths
	// are joined back to their first point.
	Path(subpaths [][]Point, closed bool, st Style)
	Circle(center Point, radius float64, st Style)
	// Sector draws a pie wedge between two angles in radians, measured
	// clockwise from the positive x axis.
	Sector(center Point, radius, start, end float64, st Style)
}

// CommandKind identifies a recorded drawing command.
type CommandKind uint8

const (
	CmdRect CommandKind = iota
	CmdPath
	CmdCircle
	CmdSector
)

// Command is a single recorded drawing operation.
type Command struct {
	Kind     CommandKind
	Rect     Rect
	Subpaths [][]Point
	Closed   bool
	Center   Point
	Radius   float64
	Start    float64
	End      float64
	Style    Style
}

// Canvas is a retained Surface. It records commands which are later replayed
// by Paint or Rasterize.
type Canvas struct {
	size     image.Point
	cmds     []Command
	released bool
}

var _ Surface = (*Canvas)(nil)

// New returns an empty canvas with the given pixel size.
func New(width, height int) *Canvas {
	return &Canvas{size: image.Pt(width, height)}
}

func (c *Canvas) Size() image.Point {
	if c.released {
		return image.Point{}
	}
	return c.size
}

// Resize changes the surface size. It does not clear recorded commands.
func (c *Canvas) Resize(width, height int) {
	c.size = image.Pt(width, height)
}

// Release marks the canvas as unmounted. A released canvas reports a zero
// size and ignores further drawing.
func (c *Canvas) Release() {
	c.released = true
	c.cmds = c.cmds[:0]
}

// Valid reports whether the canvas can still be drawn onto.
func (c *Canvas) Valid() bool {
	return !c.released && c.size.X > 0 && c.size.Y > 0
}

// Commands returns the recorded display list. The slice is only valid until
// the next call to Clear.
func (c *Canvas) Commands() []Command {
	return c.cmds
}

func (c *Canvas) Clear() {
	c.cmds = c.cmds[:0]
}

func (c *Canvas) push(cmd Command) {
	if c.released {
		return
	}
	c.cmds = append(c.cmds, cmd)
}

func (c *Canvas) Rect(r Rect, st Style) {
	c.push(Command{Kind: CmdRect, Rect: r, Style: st})
}

func (c *Canvas) Path(subpaths [][]Point, closed bool, st Style) {
	// Copy so that callers may reuse their scratch slices.
	cp := make([][]Point, 0, len(subpaths))
	for _, sp := range subpaths {
		if len(sp) == 0 {
			continue
		}
		cp = append(cp, append([]Point(nil), sp...))
	}
	if len(cp) == 0 {
		return
	}
	c.push(Command{Kind: CmdPath, Subpaths: cp, Closed: closed, Style: st})
}

func (c *Canvas) Circle(center Point, radius float64, st Style) {
	c.push(Command{Kind: CmdCircle, Center: center, Radius: radius, Style: st})
}

func (c *Canvas) Sector(center Point, radius, start, end float64, st Style) {
	c.push(Command{Kind: CmdSector, Center: center, Radius: radius, Start: start, End: end, Style: st})
}

// arcPoints approximates an arc with line segments no longer than roughly
// two pixels.
func arcPoints(center Point, radius, start, end float64) []Point {
	sweep := end - start
	n := int(math.Ceil(math.Abs(sweep) * radius / 2))
	n = max(n, 8)
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		pts = append(pts, Pt(center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a)))
	}
	return pts
}

// dashed splits a polyline into its visible dash segments.
func dashed(pts []Point, pattern []float64) [][]Point {
	if len(pattern) == 0 || len(pts) < 2 {
		return [][]Point{pts}
	}
	var total float64
	for _, p := range pattern {
		total += p
	}
	if total <= 0 {
		return [][]Point{pts}
	}
	var (
		out  [][]Point
		cur  = []Point{pts[0]}
		idx  int
		left = pattern[0]
		on   = true
	)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for segLen-pos > left {
			pos += left
			t := pos / segLen
			p := Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
			if on {
				cur = append(cur, p)
				out = append(out, cur)
				cur = nil
			} else {
				cur = []Point{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}
