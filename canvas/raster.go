package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

// Rasterize replays the display list onto a new image of the canvas size.
// A background with zero alpha leaves the image transparent.
func (c *Canvas) Rasterize(bg color.Color) image.Image {
	return c.rasterContext(bg).Image()
}

// EncodePNG rasterizes the canvas and writes it to w as a PNG.
func (c *Canvas) EncodePNG(w io.Writer, bg color.Color) error {
	if err := c.rasterContext(bg).EncodePNG(w); err != nil {
		return fmt.Errorf("failed encoding png: %w", err)
	}
	return nil
}

func (c *Canvas) rasterContext(bg color.Color) *gg.Context {
	size := c.Size()
	dc := gg.NewContext(max(size.X, 1), max(size.Y, 1))
	if _, _, _, a := bg.RGBA(); a > 0 {
		dc.SetColor(bg)
		dc.Clear()
	}
	for _, cmd := range c.cmds {
		rasterCommand(dc, cmd)
	}
	return dc
}

func rasterCommand(dc *gg.Context, cmd Command) {
	dc.ClearPath()
	switch cmd.Kind {
	case CmdRect:
		r := cmd.Rect
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	case CmdPath:
		for _, sp := range cmd.Subpaths {
			dc.NewSubPath()
			for i, pt := range sp {
				if i == 0 {
					dc.MoveTo(pt.X, pt.Y)
				} else {
					dc.LineTo(pt.X, pt.Y)
				}
			}
			if cmd.Closed {
				dc.ClosePath()
			}
		}
	case CmdCircle:
		dc.DrawCircle(cmd.Center.X, cmd.Center.Y, cmd.Radius)
	case CmdSector:
		dc.MoveTo(cmd.Center.X, cmd.Center.Y)
		dc.DrawArc(cmd.Center.X, cmd.Center.Y, cmd.Radius, cmd.Start, cmd.End)
		dc.ClosePath()
	}
	st := cmd.Style
	if st.fills() {
		dc.SetColor(st.Fill)
		if st.strokes() {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if st.strokes() {
		dc.SetColor(st.Stroke)
		dc.SetLineWidth(st.Width)
		dc.SetLineCapButt()
		dc.SetDash(st.Dash...)
		dc.Stroke()
		dc.SetDash()
	}
	dc.ClearPath()
}
