package tooltip

const (
	MouseOffset       = 15
	TouchOffset       = 25
	TouchSafetyBuffer = 5
	// EdgeMargin is the minimum gap kept between the tooltip and the
	// viewport edges.
	EdgeMargin = 10
)

var (
	mouseFallback = Size{W: 150, H: 40}
	touchFallback = Size{W: 100, H: 30}
)

// Viewport describes the visible window in page coordinates. A zero width
// disables right edge flipping.
type Viewport struct {
	W, H float64
}

// Place computes the tooltip position for a pointer at (pageX, pageY). A zero
// size stands for "not yet measured" and is replaced with a fallback.
//
// Mouse tooltips sit up and to the right of the pointer, flipping left when
// they would overflow the right edge and below when they would overflow the
// top. Touch tooltips sit up and to the left, clear of the finger, falling
// back to the right or below.
func Place(pageX, pageY float64, size Size, vp Viewport, touch bool) Position {
	if touch {
		if size.W <= 0 || size.H <= 0 {
			size = touchFallback
		}
		left := pageX - (size.W + TouchOffset)
		top := pageY - (size.H + TouchOffset)
		if left < EdgeMargin {
			left = pageX + TouchOffset + TouchSafetyBuffer
		}
		if top < EdgeMargin {
			top = pageY + TouchOffset + TouchSafetyBuffer
		}
		return Position{Left: left, Top: top}
	}
	if size.W <= 0 || size.H <= 0 {
		size = mouseFallback
	}
	left := pageX + MouseOffset
	top := pageY - (size.H + MouseOffset)
	if vp.W > 0 && left+size.W > vp.W-EdgeMargin {
		left = pageX - (size.W + MouseOffset)
	}
	if top < EdgeMargin {
		top = pageY + MouseOffset
	}
	return Position{Left: max(EdgeMargin, left), Top: max(EdgeMargin, top)}
}
