package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"gopkg.in/yaml.v3"
)

// Options is the merged configuration of a chart. Every kind shares the
// same struct; each kind reads the fields relevant to it. Field names follow
// the option keys callers supply.
type Options struct {
	LineColor          string   `yaml:"lineColor"`
	FillColor          string   `yaml:"fillColor"`
	SpotColor          string   `yaml:"spotColor"`
	MinSpotColor       string   `yaml:"minSpotColor"`
	MaxSpotColor       string   `yaml:"maxSpotColor"`
	SpotRadius         float64  `yaml:"spotRadius"`
	LineWidth          Width    `yaml:"lineWidth"`
	HighlightSpotColor string   `yaml:"highlightSpotColor"`
	HighlightLineColor string   `yaml:"highlightLineColor"`
	NormalRangeMin     *float64 `yaml:"normalRangeMin"`
	NormalRangeMax     *float64 `yaml:"normalRangeMax"`
	NormalRangeColor   string   `yaml:"normalRangeColor"`
	ChartRangeMin      *float64 `yaml:"chartRangeMin"`
	ChartRangeMax      *float64 `yaml:"chartRangeMax"`
	ChartRangeMinX     *float64 `yaml:"chartRangeMinX"`
	ChartRangeMaxX     *float64 `yaml:"chartRangeMaxX"`
	ChartRangeClip     bool     `yaml:"chartRangeClip"`

	DefaultPixelsPerValue float64 `yaml:"defaultPixelsPerValue"`
	DisableTooltips       bool    `yaml:"disableTooltips"`
	DisableHighlight      bool    `yaml:"disableHighlight"`
	DisableInteraction    bool    `yaml:"disableInteraction"`
	TooltipPrefix         string  `yaml:"tooltipPrefix"`
	TooltipSuffix         string  `yaml:"tooltipSuffix"`
	TooltipFormat         string  `yaml:"tooltipFormat"`
	HighlightLighten      float64 `yaml:"highlightLighten"`
	TopPadding            float64 `yaml:"topPadding"`
	BottomPadding         float64 `yaml:"bottomPadding"`

	// bar
	BarColor        string   `yaml:"barColor"`
	NegBarColor     string   `yaml:"negBarColor"`
	ZeroColor       string   `yaml:"zeroColor"`
	NullColor       string   `yaml:"nullColor"`
	ZeroAxis        bool     `yaml:"zeroAxis"`
	BarWidth        Width    `yaml:"barWidth"`
	BarSpacing      float64  `yaml:"barSpacing"`
	ColorMap        ColorMap `yaml:"colorMap"`
	StackedBarColor []string `yaml:"stackedBarColor"`

	// tristate
	PosBarColor  string `yaml:"posBarColor"`
	ZeroBarColor string `yaml:"zeroBarColor"`

	// discrete
	LineSpacing    float64 `yaml:"lineSpacing"`
	LineHeight     Length  `yaml:"lineHeight"`
	ThresholdColor string  `yaml:"thresholdColor"`
	ThresholdValue float64 `yaml:"thresholdValue"`

	// bullet
	TargetColor      string   `yaml:"targetColor"`
	TargetWidth      float64  `yaml:"targetWidth"`
	PerformanceColor string   `yaml:"performanceColor"`
	RangeColors      []string `yaml:"rangeColors"`
	Base             *float64 `yaml:"base"`

	// pie
	Offset      float64  `yaml:"offset"`
	SliceColors []string `yaml:"sliceColors"`
	BorderWidth float64  `yaml:"borderWidth"`
	BorderColor string   `yaml:"borderColor"`

	// box
	Raw              bool     `yaml:"raw"`
	BoxLineColor     string   `yaml:"boxLineColor"`
	BoxFillColor     string   `yaml:"boxFillColor"`
	WhiskerColor     string   `yaml:"whiskerColor"`
	OutlierLineColor string   `yaml:"outlierLineColor"`
	OutlierFillColor string   `yaml:"outlierFillColor"`
	MedianColor      string   `yaml:"medianColor"`
	ShowOutliers     bool     `yaml:"showOutliers"`
	OutlierIQR       float64  `yaml:"outlierIQR"`
	Target           *float64 `yaml:"target"`
	MinValue         *float64 `yaml:"minValue"`
	MaxValue         *float64 `yaml:"maxValue"`
}

func baseDefaults() Options {
	return Options{
		LineColor:             "#00f",
		FillColor:             "#cdf",
		SpotColor:             "#f80",
		MinSpotColor:          "#f80",
		MaxSpotColor:          "#f80",
		SpotRadius:            1.5,
		LineWidth:             Width{Mode: WidthPx, Px: 1},
		HighlightSpotColor:    "#5f5",
		HighlightLineColor:    "#f22",
		NormalRangeColor:      "#ccc",
		DefaultPixelsPerValue: 3,
		TooltipFormat:         "{{value}}",
		HighlightLighten:      1.4,
		TopPadding:            3,
		BottomPadding:         3,
	}
}

// DefaultOptions returns the defaults for kind. Callers own the result.
func DefaultOptions(kind Kind) Options {
	o := baseDefaults()
	switch kind {
	case KindLine:
		o.MinSpotColor = "#f44"
		o.MaxSpotColor = "#4f4"
	case KindBar:
		o.BarColor = "#3366cc"
		o.NegBarColor = "#f44"
		o.ZeroColor = "#909090"
		o.ZeroAxis = true
		o.BarWidth = Width{Mode: WidthAuto}
		o.BarSpacing = 1
		o.StackedBarColor = []string{"#3366cc", "#dc3912", "#ff9900", "#109618", "#66aa00", "#dd4477", "#0099c6", "#990099"}
	case KindTriState:
		o.PosBarColor = "#0f0"
		o.NegBarColor = "#f00"
		o.ZeroBarColor = "#999"
		o.BarWidth = Width{Mode: WidthAuto}
		o.BarSpacing = 1
	case KindDiscrete:
		o.LineWidth = Width{Mode: WidthAuto}
		o.LineSpacing = 1
		o.LineHeight = Length{Fraction: 0.3}
	case KindBullet:
		o.TargetColor = "#f33"
		o.TargetWidth = 3
		o.PerformanceColor = "#33f"
		o.RangeColors = []string{"#d3dafe", "#a8b6ff", "#7f94ff"}
	case KindPie:
		o.SliceColors = []string{"#3366cc", "#dc3912", "#ff9900", "#109618", "#66aa00", "#dd4477", "#0099c6", "#990099"}
		o.BorderColor = "#000"
	case KindBox:
		o.BoxLineColor = "#000"
		o.BoxFillColor = "#cdf"
		o.WhiskerColor = "#000"
		o.OutlierLineColor = "#333"
		o.OutlierFillColor = "#fff"
		o.MedianColor = "#f00"
		o.ShowOutliers = true
		o.OutlierIQR = 1.5
		o.TargetColor = "#4a2"
		o.HighlightSpotColor = "#2196F3"
	}
	return o
}

// mergeOptions decodes the caller's option map over base. Keys that do not
// name an option are ignored.
func mergeOptions(base Options, user map[string]any) (Options, error) {
	if len(user) == 0 {
		return base, nil
	}
	clean := make(map[string]any, len(user))
	for k, v := range user {
		if _, isFormatter := v.(Formatter); isFormatter {
			continue
		}
		if _, isFunc := v.(func(any, Region, *Chart) (string, error)); isFunc {
			continue
		}
		clean[k] = v
	}
	raw, err := yaml.Marshal(clean)
	if err != nil {
		return base, fmt.Errorf("failed encoding options: %w", err)
	}
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return base, fmt.Errorf("failed decoding options: %w", err)
	}
	return base, nil
}

// color resolves an option color, falling back when it is empty or invalid.
func (o *Options) color(s string, fallback color.NRGBA) color.NRGBA {
	if c, ok := canvas.ParseColor(s); ok {
		return c
	}
	return fallback
}

// WidthMode selects how bar and tick widths are computed.
type WidthMode uint8

const (
	// WidthPx uses a fixed pixel width and centers the row.
	WidthPx WidthMode = iota
	// WidthAuto derives the width from the available space and spacing,
	// then centers the row.
	WidthAuto
	// WidthFill divides the width evenly without spacing.
	WidthFill
)

// Width is a bar or tick width option: "auto", "fill", or a pixel count.
type Width struct {
	Mode WidthMode
	Px   float64
}

func (w *Width) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("width must be a scalar, got %q", node.Tag)
	}
	v := strings.TrimSpace(node.Value)
	switch v {
	case "auto":
		*w = Width{Mode: WidthAuto}
		return nil
	case "fill":
		*w = Width{Mode: WidthFill}
		return nil
	}
	px, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil || node.Tag == "!!str" && !strings.HasSuffix(v, "px") {
		// Any other string behaves like fill.
		*w = Width{Mode: WidthFill}
		return nil
	}
	*w = Width{Mode: WidthPx, Px: px}
	return nil
}

func (w Width) MarshalYAML() (any, error) {
	switch w.Mode {
	case WidthAuto:
		return "auto", nil
	case WidthFill:
		return "fill", nil
	}
	return w.Px, nil
}

// Length is a size given either in pixels or as a fraction of the chart
// height, written "30%".
type Length struct {
	Px       float64
	Fraction float64
}

// Resolve converts the length into pixels against total.
func (l Length) Resolve(total float64) float64 {
	if l.Fraction > 0 {
		return total * l.Fraction
	}
	return l.Px
}

func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	v := strings.TrimSpace(node.Value)
	if v == "auto" {
		*l = Length{Fraction: 0.3}
		return nil
	}
	if pct, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return fmt.Errorf("invalid percentage %q: %w", v, err)
		}
		*l = Length{Fraction: f / 100}
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return fmt.Errorf("invalid length %q: %w", v, err)
	}
	*l = Length{Px: f}
	return nil
}

func (l Length) MarshalYAML() (any, error) {
	if l.Fraction > 0 {
		return strconv.FormatFloat(l.Fraction*100, 'f', -1, 64) + "%", nil
	}
	return l.Px, nil
}

// ColorMap overrides bar colors either by position (a list, cycled) or by
// value (a mapping keyed by the formatted value).
type ColorMap struct {
	List    []string
	ByValue map[string]string
}

func (m ColorMap) empty() bool { return len(m.List) == 0 && len(m.ByValue) == 0 }

// lookup returns the mapped color for the value at index.
func (m ColorMap) lookup(index int, value float64) (string, bool) {
	if len(m.List) > 0 {
		return m.List[index%len(m.List)], true
	}
	c, ok := m.ByValue[strconv.FormatFloat(value, 'f', -1, 64)]
	return c, ok && c != ""
}

func (m *ColorMap) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&m.List)
	case yaml.MappingNode:
		return node.Decode(&m.ByValue)
	}
	return fmt.Errorf("colorMap must be a list or mapping, got %q", node.Tag)
}

func (m ColorMap) MarshalYAML() (any, error) {
	if len(m.List) > 0 {
		return m.List, nil
	}
	return m.ByValue, nil
}
