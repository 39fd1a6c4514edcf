package canvas

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var named = map[string]color.NRGBA{
	"black":       {A: 0xff},
	"white":       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":         {R: 0xff, A: 0xff},
	"green":       {G: 0x80, A: 0xff},
	"lime":        {G: 0xff, A: 0xff},
	"blue":        {B: 0xff, A: 0xff},
	"gray":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"grey":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"orange":      {R: 0xff, G: 0xa5, A: 0xff},
	"transparent": {},
}

// ParseColor understands the CSS color forms used in chart options: #rgb,
// #rrggbb, #rrggbbaa, rgb(), rgba() and a handful of names.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.NRGBA{}, false
	}
	if c, ok := named[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") && len(s) == 9 {
		c, ok := ParseColor(s[:7])
		if !ok {
			return color.NRGBA{}, false
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		c.A = uint8(a)
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		cf, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, false
		}
		r, g, b := cf.Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true
	}
	if strings.HasPrefix(s, "rgb") {
		return parseFunctional(s)
	}
	return color.NRGBA{}, false
}

func parseFunctional(s string) (color.NRGBA, bool) {
	lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if lp < 0 || rp < lp {
		return color.NRGBA{}, false
	}
	parts := strings.Split(s[lp+1:rp], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, false
	}
	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		ch[i] = f
	}
	cf := colorful.Color{R: ch[0] / 255, G: ch[1] / 255, B: ch[2] / 255}.Clamped()
	r, g, b := cf.RGB255()
	a := uint8(math.Round(math.Max(0, math.Min(1, ch[3])) * 255))
	return color.NRGBA{R: r, G: g, B: b, A: a}, true
}

// MustColor parses s and falls back to opaque black.
func MustColor(s string) color.NRGBA {
	c, ok := ParseColor(s)
	if !ok {
		return color.NRGBA{A: 0xff}
	}
	return c
}

// Hex formats c as #rrggbb, ignoring alpha.
func Hex(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// Lighten scales each channel of c by factor, saturating at full intensity.
func Lighten(c color.NRGBA, factor float64) color.NRGBA {
	scale := func(v uint8) uint8 {
		return uint8(min(255, math.Floor(float64(v)*factor)))
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

// WithAlpha returns c with its alpha replaced by a fraction of full opacity.
func WithAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255))
	return c
}

// Palette derives n distinguishable colors by stepping hue with the golden
// ratio at fixed chroma and lightness.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, 0, n)
	for i := 0; i < n; i++ {
		h := math.Mod(float64(i+1)*math.Phi, 1) * 360
		r, g, b := colorful.Hcl(h, 0.5, 0.55).Clamped().RGB255()
		out = append(out, color.NRGBA{R: r, G: g, B: b, A: 0xff})
	}
	return out
}
