package chart

import (
	"math"

	"golang.org/x/exp/constraints"
)

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

// slots lays out n equal columns across a width for bars and ticks.
type slots struct {
	n      int
	mode   WidthMode
	width  float64 // total width
	bar    float64 // column width
	gap    float64 // spacing between columns
	offset float64 // left edge of the first column
}

// layoutSlots resolves a width option. Auto fits the columns and spacing
// into the width and centers the row; a crowded row gives up spacing first
// and then whole pixels. Fill divides the width into equal slots and centers
// each column in its slot. A pixel width is honored when the row fits and
// falls back to auto otherwise.
func layoutSlots(n int, total float64, w Width, spacing float64) slots {
	s := slots{n: n, mode: w.Mode, width: total, gap: spacing}
	if n <= 0 {
		return s
	}
	fn := float64(n)
	auto := func() float64 {
		return max(1, floor((total-(fn-1)*spacing)/fn))
	}
	switch w.Mode {
	case WidthFill:
		s.bar = floor(total / fn)
		s.gap = 0
		return s
	case WidthPx:
		s.bar = w.Px
		if s.bar <= 0 || fn*s.bar+(fn-1)*spacing > total {
			s.bar = auto()
		}
	default:
		s.bar = auto()
	}
	if fn*s.bar+(fn-1)*s.gap > total {
		s.gap = 0
		if n > 1 {
			s.gap = max(0, (total-fn*s.bar)/(fn-1))
		}
		if fn*s.bar > total {
			s.bar = total / fn
		}
	}
	s.offset = max(0, (total-(fn*s.bar+(fn-1)*s.gap))/2)
	return s
}

// x returns the left edge of column i.
func (s slots) x(i int) float64 {
	if s.mode == WidthFill {
		slot := s.width / float64(s.n)
		return float64(i)*slot + (slot-s.bar)/2
	}
	return s.offset + float64(i)*(s.bar+s.gap)
}

// center returns the horizontal center of column i.
func (s slots) center(i int) float64 {
	return s.x(i) + s.bar/2
}

// column returns the column whose span contains x.
func (s slots) column(x float64) (int, bool) {
	for i := 0; i < s.n; i++ {
		left := s.x(i)
		if x >= left && x <= left+s.bar {
			return i, true
		}
	}
	return 0, false
}

// valueRange returns the vertical range of the chart, honoring the
// chartRangeMin and chartRangeMax options.
func (c *Chart) valueRange(lo, hi float64) (float64, float64) {
	if c.opts.ChartRangeMin != nil {
		lo = *c.opts.ChartRangeMin
	}
	if c.opts.ChartRangeMax != nil {
		hi = *c.opts.ChartRangeMax
	}
	return lo, hi
}

// span returns hi-lo, or 1 when the range is empty.
func span(lo, hi float64) float64 {
	if r := hi - lo; r != 0 {
		return r
	}
	return 1
}
