package main

import (
	"image/color"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/chart"
)

var (
	surfaceBackground = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	tooltipBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
	tooltipBorder     = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
)

var kindColors = canvas.Palette(len(chart.Kinds()))

// kindColor returns the badge color shown next to charts of the named kind.
func kindColor(name string) color.NRGBA {
	kind, err := chart.ParseKind(name)
	if err != nil {
		return color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	}
	return kindColors[int(kind)%len(kindColors)]
}
