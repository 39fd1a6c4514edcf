package canvas

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

// Paint replays the display list into ops. The caller is responsible for
// offsetting ops to the surface origin.
func (c *Canvas) Paint(ops *op.Ops) {
	for _, cmd := range c.cmds {
		paintCommand(ops, cmd)
	}
}

func paintCommand(ops *op.Ops, cmd Command) {
	switch cmd.Kind {
	case CmdRect:
		r := cmd.Rect
		pts := []Point{Pt(r.X, r.Y), Pt(r.X+r.W, r.Y), Pt(r.X+r.W, r.Y+r.H), Pt(r.X, r.Y+r.H)}
		paintPolys(ops, [][]Point{pts}, true, cmd.Style)
	case CmdPath:
		paintPolys(ops, cmd.Subpaths, cmd.Closed, cmd.Style)
	case CmdCircle:
		pts := arcPoints(cmd.Center, cmd.Radius, 0, 2*math.Pi)
		paintPolys(ops, [][]Point{pts}, true, cmd.Style)
	case CmdSector:
		pts := append([]Point{cmd.Center}, arcPoints(cmd.Center, cmd.Radius, cmd.Start, cmd.End)...)
		paintPolys(ops, [][]Point{pts}, true, cmd.Style)
	}
}

func paintPolys(ops *op.Ops, subpaths [][]Point, closed bool, st Style) {
	if st.fills() {
		var p clip.Path
		p.Begin(ops)
		for _, sp := range subpaths {
			if len(sp) < 3 {
				continue
			}
			tracePath(&p, sp)
			p.Close()
		}
		fillPath(ops, p.End(), st.Fill)
	}
	if !st.strokes() {
		return
	}
	var p clip.Path
	p.Begin(ops)
	for _, sp := range subpaths {
		if closed && len(sp) > 1 {
			sp = append(sp[:len(sp):len(sp)], sp[0])
		}
		for _, dash := range dashed(sp, st.Dash) {
			tracePath(&p, dash)
		}
	}
	spec := p.End()
	stack := clip.Stroke{Path: spec, Width: float32(st.Width)}.Op().Push(ops)
	paint.Fill(ops, st.Stroke)
	stack.Pop()
}

func tracePath(p *clip.Path, pts []Point) {
	for i, pt := range pts {
		fp := f32.Pt(float32(pt.X), float32(pt.Y))
		if i == 0 {
			p.MoveTo(fp)
		} else {
			p.LineTo(fp)
		}
	}
}

func fillPath(ops *op.Ops, spec clip.PathSpec, c color.NRGBA) {
	stack := clip.Outline{Path: spec}.Op().Push(ops)
	paint.Fill(ops, c)
	stack.Pop()
}
