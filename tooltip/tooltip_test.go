package tooltip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHideRespectsOwnership(t *testing.T) {
	var s Shared
	const a, b ID = 1, 2
	s.Show(a, Content{Text: "a"})
	s.Show(b, Content{Text: "b"})
	require.Equal(t, b, s.Owner())

	assert.False(t, s.Hide(a), "a must not hide b's tooltip")
	assert.True(t, s.Visible())
	assert.Equal(t, "b", s.Content().Text)

	assert.True(t, s.Hide(b))
	assert.False(t, s.Visible())
	assert.Zero(t, s.Owner())

	// Unowned tooltips may be hidden by anyone.
	assert.True(t, s.Hide(a))
}

func TestTransferAndCleanup(t *testing.T) {
	var s Shared
	s.Show(1, Content{Text: "x"})
	assert.False(t, s.Transfer(2, 3))
	assert.True(t, s.Transfer(1, 2))
	assert.False(t, s.Hide(1))
	assert.True(t, s.Visible())

	s.Cleanup()
	assert.False(t, s.Visible())
	assert.Zero(t, s.Owner())
}

func TestOverlayRecreatedAfterDetach(t *testing.T) {
	var s Shared
	s.Show(1, Content{Text: "x"})
	require.Equal(t, 1, s.Created())
	s.Show(1, Content{Text: "y"})
	assert.Equal(t, 1, s.Created())

	s.Detach()
	assert.False(t, s.Visible())
	s.Show(1, Content{Text: "z"})
	assert.Equal(t, 2, s.Created())
	assert.True(t, s.Visible())
}

func TestPlaceMouse(t *testing.T) {
	vp := Viewport{W: 800, H: 600}
	sz := Size{W: 100, H: 30}

	// Up and to the right by default.
	assert.Equal(t, Position{Left: 215, Top: 155}, Place(200, 200, sz, vp, false))
	// Flips left near the right edge.
	assert.Equal(t, Position{Left: 635, Top: 155}, Place(750, 200, sz, vp, false))
	// Flips below near the top edge.
	assert.Equal(t, Position{Left: 215, Top: 35}, Place(200, 20, sz, vp, false))
	// Never closer than the margin to the left edge.
	assert.Equal(t, Position{Left: 10, Top: 155}, Place(-50, 200, Size{W: 900, H: 30}, vp, false))
	// Unmeasured tooltips use the fallback size.
	assert.Equal(t, Position{Left: 215, Top: 145}, Place(200, 200, Size{}, vp, false))
}

func TestPlaceTouch(t *testing.T) {
	vp := Viewport{W: 800, H: 600}
	assert.Equal(t, Position{Left: 75, Top: 145}, Place(200, 200, Size{}, vp, true))
	assert.Equal(t, Position{Left: 50, Top: 50}, Place(20, 20, Size{}, vp, true))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", Sanitize(`<img src=x onerror=alert(1)>`))
	assert.Equal(t, "alert(1)", Sanitize(`<script>alert(1)</script>`))
	assert.Equal(t, "link", Sanitize(`javascript:link`))
	assert.Equal(t, "x alert(1)", Sanitize(`x onclick=alert(1)`))
	assert.Equal(t, "ok", Sanitize(`&lt;script&gt;bad()&lt;/script&gt; ok`))
	assert.Len(t, []rune(Sanitize(strings.Repeat("é", 600))), MaxLength)
	assert.NotContains(t, Sanitize(`a<b onmouseover="x">c</b>`), "<")
}

func TestExpand(t *testing.T) {
	fields := map[string]any{"value": 3.14159, "index": 2, "label": "cpu", "none": nil}
	assert.Equal(t, "3.14 at 2", Expand("{{value.2}} at {{index}}", fields))
	assert.Equal(t, "cpu: 3.14159", Expand("{{label}}: {{value}}", fields))
	assert.Equal(t, "{{missing}} null", Expand("{{missing}} {{none}}", fields))
	assert.Equal(t, "cpu", Expand("{{label.3}}", fields))
}

func TestContentLines(t *testing.T) {
	assert.Nil(t, Content{}.Lines())
	assert.True(t, Content{}.Empty())
	assert.Equal(t, []string{"a", "b"}, Content{Items: []Item{{Label: "a"}, {Label: "b"}}}.Lines())
}
