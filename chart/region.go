package chart

import (
	"fmt"
	"image/color"
	"time"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
)

// RegionKind distinguishes plain index regions from structured ones.
type RegionKind uint8

const (
	// RegionIndex addresses a value by its position in the series.
	RegionIndex RegionKind = iota
	// RegionBullet addresses one part of a bullet chart.
	RegionBullet
	// RegionStack addresses a whole column of a stacked bar chart.
	RegionStack
)

// Bullet chart region fields.
const (
	FieldTarget      = "target"
	FieldPerformance = "performance"
)

// Region is the unit of hover and click interaction within a chart.
type Region struct {
	Kind  RegionKind
	Index int
	// Field names the bullet part: "target", "performance" or "rangeN".
	Field      string
	Value      float64
	RangeIndex int
}

// IndexRegion returns the region addressing the value at i.
func IndexRegion(i int) Region { return Region{Kind: RegionIndex, Index: i} }

func (r Region) String() string {
	switch r.Kind {
	case RegionBullet:
		return fmt.Sprintf("%s(%g)", r.Field, r.Value)
	case RegionStack:
		return fmt.Sprintf("stack[%d]", r.Index)
	}
	return fmt.Sprintf("[%d]", r.Index)
}

// hitBox is per-draw geometry used for hit-testing.
type hitBox struct {
	canvas.Rect
	Index   int
	Segment int
	Value   float64
	Null    bool
	Color   color.NRGBA
}

// RegionChange is delivered when the hovered region changes. Region is nil
// when the pointer left the chart.
type RegionChange struct {
	Chart    *Chart
	Region   *Region
	Previous *Region
}

// ClickEvent is delivered when a click lands exactly on a region.
type ClickEvent struct {
	Chart  *Chart
	Region Region
	Value  any
}

// PointerSample is a unified mouse or touch position. X and Y are relative
// to the chart surface; PageX and PageY are in page coordinates.
type PointerSample struct {
	X, Y         float64
	PageX, PageY float64
	IsTouch      bool
}

// MouseSample builds a sample from a mouse position local to a surface
// whose top-left corner sits at origin on the page.
func MouseSample(local, origin canvas.Point) PointerSample {
	return PointerSample{
		X: local.X, Y: local.Y,
		PageX: origin.X + local.X, PageY: origin.Y + local.Y,
	}
}

// TouchSample builds a sample from a touch point local to a surface whose
// top-left corner sits at origin on the page.
func TouchSample(local, origin canvas.Point) PointerSample {
	s := MouseSample(local, origin)
	s.IsTouch = true
	return s
}

// EventKind enumerates pointer events the engine understands.
type EventKind uint8

const (
	Move EventKind = iota
	Leave
	Press
	Release
	Click
)

// PointerEvent is one pointer input delivered to a chart.
type PointerEvent struct {
	Kind   EventKind
	Sample PointerSample
	// At is the event time. The context clock is used when it is zero.
	At time.Time
}
