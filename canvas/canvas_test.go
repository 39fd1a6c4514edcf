package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want color.NRGBA
	}{
		{"#00f", color.NRGBA{B: 0xff, A: 0xff}},
		{"#3366cc", color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}},
		{"#3366cc80", color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0x80}},
		{"rgba(255, 0, 0, 0.5)", color.NRGBA{R: 0xff, A: 0x80}},
		{"rgb(0,255,0)", color.NRGBA{G: 0xff, A: 0xff}},
		{" White ", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	} {
		got, ok := ParseColor(tc.in)
		require.True(t, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	for _, bad := range []string{"", "#12", "hsl(1,2,3)", "rgb(1,2)", "#zzzzzz"} {
		_, ok := ParseColor(bad)
		assert.False(t, ok, bad)
	}
}

func TestLighten(t *testing.T) {
	got := Lighten(color.NRGBA{R: 100, G: 200, B: 10, A: 255}, 1.4)
	assert.Equal(t, color.NRGBA{R: 140, G: 255, B: 14, A: 255}, got)
	assert.Equal(t, "#3366cc", Hex(MustColor("#36c")))
}

func TestCanvasRecordsAndClears(t *testing.T) {
	c := New(40, 20)
	c.Rect(Rect{X: 1, Y: 2, W: 3, H: 4}, Filled(MustColor("#f00")))
	c.Path([][]Point{{Pt(0, 0), Pt(1, 1)}, {}}, false, Stroked(MustColor("#000"), 1))
	require.Len(t, c.Commands(), 2)
	assert.Len(t, c.Commands()[1].Subpaths, 1)
	c.Clear()
	assert.Empty(t, c.Commands())

	c.Release()
	assert.False(t, c.Valid())
	c.Circle(Pt(1, 1), 1, Filled(MustColor("#000")))
	assert.Empty(t, c.Commands())
	assert.Zero(t, c.Size())
}

func TestDashedSplitsPolyline(t *testing.T) {
	segs := dashed([]Point{Pt(0, 0), Pt(0, 10)}, []float64{2, 2})
	require.Len(t, segs, 3)
	assert.Equal(t, []Point{Pt(0, 0), Pt(0, 2)}, segs[0])
	assert.Equal(t, []Point{Pt(0, 4), Pt(0, 6)}, segs[1])
	assert.Equal(t, []Point{Pt(0, 8), Pt(0, 10)}, segs[2])
}

func TestRasterizePNG(t *testing.T) {
	c := New(10, 10)
	c.Rect(Rect{W: 10, H: 10}, Filled(MustColor("#f00")))
	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf, color.Transparent))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	r, _, _, a := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}
