package tooltip

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxLength bounds the length of sanitized text in runes.
const MaxLength = 500

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	jsProtoPattern = regexp.MustCompile(`(?i)javascript:`)
	handlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
	encodedScript  = regexp.MustCompile(`(?i)&lt;script.*?&gt;.*?&lt;/script&gt;`)

	placeholder = regexp.MustCompile(`\{\{(\w+)(?:\.(\d+))?\}\}`)
)

// Sanitize strips markup, script protocols and inline event handlers from
// text produced by user callbacks, then trims and truncates it.
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = jsProtoPattern.ReplaceAllString(s, "")
	s = handlerPattern.ReplaceAllString(s, "")
	s = encodedScript.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxLength {
		s = string(r[:MaxLength])
	}
	return s
}

// Expand replaces {{field}} and {{field.N}} placeholders with values from
// fields. N applies fixed-point precision to numeric fields. Unknown fields
// are left untouched.
func Expand(format string, fields map[string]any) string {
	return placeholder.ReplaceAllStringFunc(format, func(match string) string {
		sub := placeholder.FindStringSubmatch(match)
		val, ok := fields[sub[1]]
		if !ok {
			return match
		}
		if sub[2] != "" {
			if f, ok := number(val); ok {
				prec, _ := strconv.Atoi(sub[2])
				return strconv.FormatFloat(f, 'f', prec, 64)
			}
		}
		return Stringify(val)
	})
}

// Stringify renders a field value the way a template shows it.
func Stringify(v any) string {
	if v == nil {
		return "null"
	}
	if f, ok := number(v); ok {
		if math.IsNaN(f) {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Fixed formats v with two decimals, the default for numeric tooltips.
func Fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
