// Package tooltip implements the single tooltip overlay shared by every chart
// on a page, along with placement and text formatting helpers.
//
// Ownership is advisory. Any chart may claim the tooltip by showing it, but
// only the current owner (or anyone, when it is unowned) may hide it. This
// keeps a chart's leave event from hiding a tooltip that a neighbouring chart
// claimed a moment earlier.
package tooltip

import "image/color"

// ID identifies a chart instance. The zero ID means "nobody".
type ID uint64

// Item is one labelled, colored line of tooltip content.
type Item struct {
	Label string
	Color color.NRGBA
}

// Content is what the tooltip displays: either a list of items or plain text.
type Content struct {
	Text  string
	Items []Item
}

// Empty reports whether c has nothing to show.
func (c Content) Empty() bool {
	return c.Text == "" && len(c.Items) == 0
}

// Lines flattens the content into display lines.
func (c Content) Lines() []string {
	if len(c.Items) == 0 {
		if c.Text == "" {
			return nil
		}
		return []string{c.Text}
	}
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Label
	}
	return out
}

// Position is the top-left corner of the tooltip in page coordinates.
type Position struct {
	Left, Top float64
}

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

type overlay struct {
	attached bool
	visible  bool
	content  Content
	pos      Position
	size     Size
}

// Shared is the page-wide tooltip overlay.
type Shared struct {
	el    *overlay
	owner ID
	// created counts how many times the overlay has been built.
	created int
}

// element returns the overlay, building it on first use or after the host
// detached it.
func (s *Shared) element() *overlay {
	if s.el == nil || !s.el.attached {
		s.el = &overlay{attached: true}
		s.created++
	}
	return s.el
}

// Show claims the tooltip for owner and displays content.
func (s *Shared) Show(owner ID, content Content) {
	el := s.element()
	s.owner = owner
	el.content = content
	el.visible = true
}

// Move repositions the tooltip.
func (s *Shared) Move(pos Position) {
	s.element().pos = pos
}

// Hide hides the tooltip on behalf of id and clears ownership. It does
// nothing and returns false when another chart owns the tooltip.
func (s *Shared) Hide(id ID) bool {
	if s.owner != 0 && s.owner != id {
		return false
	}
	if s.el != nil {
		s.el.visible = false
	}
	s.owner = 0
	return true
}

// Transfer hands ownership from one chart to another. It fails when from
// is not the current owner.
func (s *Shared) Transfer(from, to ID) bool {
	if s.owner != from {
		return false
	}
	s.owner = to
	return true
}

// Cleanup discards the overlay entirely. The next Show builds a new one.
func (s *Shared) Cleanup() {
	s.el = nil
	s.owner = 0
}

// Detach simulates the host unmounting the overlay element.
func (s *Shared) Detach() {
	if s.el != nil {
		s.el.attached = false
	}
}

// SetSize records the rendered size of the overlay as measured by the host.
func (s *Shared) SetSize(sz Size) {
	s.element().size = sz
}

// Owner returns the chart currently entitled to hide the tooltip.
func (s *Shared) Owner() ID { return s.owner }

// Visible reports whether the tooltip is currently shown.
func (s *Shared) Visible() bool {
	return s.el != nil && s.el.attached && s.el.visible
}

func (s *Shared) Content() Content {
	if s.el == nil {
		return Content{}
	}
	return s.el.content
}

func (s *Shared) Position() Position {
	if s.el == nil {
		return Position{}
	}
	return s.el.pos
}

// Size returns the last measured size, which is zero until the host reports one.
func (s *Shared) Size() Size {
	if s.el == nil {
		return Size{}
	}
	return s.el.size
}

// Created returns how many overlays have been built so far.
func (s *Shared) Created() int { return s.created }
