package main

import (
	"image"
	"math"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"git.sr.ht/~whereswaldon/sparkline/chart"
	"git.sr.ht/~whereswaldon/sparkline/tooltip"
	"golang.org/x/exp/constraints"
)

// Overlay draws the shared chart tooltip above the rest of the window.
type Overlay struct{}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

func (o Overlay) layoutContent(gtx C, th *material.Theme, content tooltip.Content) D {
	if len(content.Items) == 0 {
		return material.Body2(th, content.Text).Layout(gtx)
	}
	children := make([]layout.FlexChild, 0, len(content.Items))
	for _, item := range content.Items {
		item := item
		children = append(children, layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					if item.Color.A == 0 {
						return D{}
					}
					size := image.Pt(gtx.Dp(8), gtx.Dp(8))
					paint.FillShape(gtx.Ops, item.Color, clip.Ellipse{Max: size}.Op(gtx.Ops))
					return D{Size: size}
				}),
				layout.Rigid(layout.Spacer{Width: 6}.Layout),
				layout.Rigid(material.Body2(th, item.Label).Layout),
			)
		}))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

// Layout draws the tooltip of ctx if it is visible and reports its measured
// size back so later placements account for it.
func (o Overlay) Layout(gtx C, th *material.Theme, ctx *chart.Context) D {
	tip := ctx.Tooltip
	if !tip.Visible() {
		return D{}
	}
	gtx.Constraints.Min = image.Point{}
	dims, call := rec(gtx, func(gtx C) D {
		return widget.Border{
			Color:        tooltipBorder,
			Width:        1,
			CornerRadius: 3,
		}.Layout(gtx, func(gtx C) D {
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					rr := gtx.Dp(3)
					paint.FillShape(gtx.Ops, tooltipBackground, clip.UniformRRect(image.Rectangle{Max: gtx.Constraints.Min}, rr).Op(gtx.Ops))
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					return layout.UniformInset(6).Layout(gtx, func(gtx C) D {
						return o.layoutContent(gtx, th, tip.Content())
					})
				},
			)
		})
	})
	tip.SetSize(tooltip.Size{W: float64(dims.Size.X), H: float64(dims.Size.Y)})

	pos := tip.Position()
	stack := op.Offset(image.Pt(int(floor(pos.Left)), int(floor(pos.Top)))).Push(gtx.Ops)
	call.Add(gtx.Ops)
	stack.Pop()
	return dims
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}
