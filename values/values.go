// Package values normalizes raw chart input into an index-aligned series of
// processed values.
package values

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the shape of a processed value.
type Kind uint8

const (
	// Null marks a gap in the series.
	Null Kind = iota
	// Scalar is a single number.
	Scalar
	// Pair is an explicit (x, y) coordinate.
	Pair
	// Stack is a list of segment values for stacked bar charts.
	Stack
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Scalar:
		return "scalar"
	case Pair:
		return "pair"
	case Stack:
		return "stack"
	default:
		return "unknown"
	}
}

// Value is one processed element of a series.
type Value struct {
	Kind Kind
	// Y holds the scalar value, or the y coordinate of a pair.
	Y float64
	// X holds the x coordinate of a pair.
	X float64
	// Parts holds the segments of a stack value.
	Parts []float64
}

// IsNull reports whether v is a gap.
func (v Value) IsNull() bool { return v.Kind == Null }

// Sum returns the total of a stack, or Y for any other non-null value.
func (v Value) Sum() float64 {
	if v.Kind != Stack {
		return v.Y
	}
	var s float64
	for _, p := range v.Parts {
		s += p
	}
	return s
}

// Segments returns the stack segments of v. A pair is read as a two segment
// stack since the input form is identical.
func (v Value) Segments() []float64 {
	switch v.Kind {
	case Stack:
		return v.Parts
	case Pair:
		return []float64{v.X, v.Y}
	case Scalar:
		return []float64{v.Y}
	}
	return nil
}

// Any converts the value back into the loosely typed form callers pass in.
func (v Value) Any() any {
	switch v.Kind {
	case Scalar:
		return v.Y
	case Pair:
		return [2]float64{v.X, v.Y}
	case Stack:
		return append([]float64(nil), v.Parts...)
	default:
		return nil
	}
}

// Series is an ordered sequence of processed values aligned with the raw input.
type Series []Value

// Process normalizes raw input. Nils become gaps, two element numeric
// sequences become pairs, other numeric sequences become stacks, and
// everything else is coerced to a float and dropped when not finite.
func Process(raw []any) Series {
	out := make(Series, 0, len(raw))
	for _, r := range raw {
		v, ok := processOne(r)
		if !ok {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Floats is a convenience wrapper around Process for plain numeric input.
func Floats(raw ...float64) Series {
	in := make([]any, len(raw))
	for i, f := range raw {
		in[i] = f
	}
	return Process(in)
}

func processOne(r any) (Value, bool) {
	if r == nil {
		return Value{Kind: Null}, true
	}
	if f, ok := toFloat(r); ok {
		if !finite(f) {
			return Value{}, false
		}
		return Value{Kind: Scalar, Y: f}, true
	}
	parts, ok := toFloats(r)
	if !ok {
		return Value{}, false
	}
	if len(parts) == 2 {
		return Value{Kind: Pair, X: parts[0], Y: parts[1]}, true
	}
	if len(parts) == 0 {
		return Value{}, false
	}
	return Value{Kind: Stack, Parts: parts, Y: sum(parts)}, true
}

func toFloat(r any) (float64, bool) {
	switch v := r.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return math.NaN(), true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// toFloats accepts any slice or array whose elements are all finite numbers.
func toFloats(r any) ([]float64, bool) {
	rv := reflect.ValueOf(r)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]float64, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		f, ok := toFloat(rv.Index(i).Interface())
		if !ok || !finite(f) {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sum(fs []float64) float64 {
	var s float64
	for _, f := range fs {
		s += f
	}
	return s
}

// HasPairs reports whether any element carries an explicit x coordinate.
func (s Series) HasPairs() bool {
	for _, v := range s {
		if v.Kind == Pair {
			return true
		}
	}
	return false
}

// HasStacks reports whether any element is a stack.
func (s Series) HasStacks() bool {
	for _, v := range s {
		if v.Kind == Stack {
			return true
		}
	}
	return false
}

// NonNull returns the number of non-gap values.
func (s Series) NonNull() int {
	n := 0
	for _, v := range s {
		if !v.IsNull() {
			n++
		}
	}
	return n
}

// Scalars returns the y value of every non-gap element in order.
func (s Series) Scalars() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.IsNull() {
			continue
		}
		out = append(out, v.Y)
	}
	return out
}

// MinMax returns the extremes of the non-gap y values. ok is false when the
// series holds no numbers.
func (s Series) MinMax() (lo, hi float64, ok bool) {
	for _, v := range s {
		if v.IsNull() {
			continue
		}
		if !ok {
			lo, hi, ok = v.Y, v.Y, true
			continue
		}
		lo = min(lo, v.Y)
		hi = max(hi, v.Y)
	}
	return lo, hi, ok
}

// Key serializes the series into a stable string suitable for cache keys.
func (s Series) Key() string {
	var b strings.Builder
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		switch v.Kind {
		case Null:
			b.WriteString("null")
		case Scalar:
			b.WriteString(strconv.FormatFloat(v.Y, 'g', -1, 64))
		case Pair:
			b.WriteString(strconv.FormatFloat(v.X, 'g', -1, 64))
			b.WriteByte(':')
			b.WriteString(strconv.FormatFloat(v.Y, 'g', -1, 64))
		case Stack:
			for j, p := range v.Parts {
				if j > 0 {
					b.WriteByte('|')
				}
				b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
			}
		}
	}
	return b.String()
}

// RawKey serializes unprocessed input so that cache lookups can happen
// before processing. Sequences are bracketed, so [5] and 5 differ.
func RawKey(raw []any) string {
	var b strings.Builder
	for i, r := range raw {
		if i > 0 {
			b.WriteByte(',')
		}
		if r == nil {
			b.WriteString("null")
			continue
		}
		if f, ok := toFloat(r); ok {
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
			continue
		}
		if fs, ok := toFloats(r); ok {
			b.WriteByte('[')
			for j, p := range fs {
				if j > 0 {
					b.WriteByte('|')
				}
				b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
			}
			b.WriteByte(']')
			continue
		}
		b.WriteString("?")
	}
	return b.String()
}
