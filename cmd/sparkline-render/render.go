package main

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"git.sr.ht/~whereswaldon/sparkline/backend"
	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/chart"
	"git.sr.ht/~whereswaldon/sparkline/factory"
	"github.com/spf13/cobra"
)

type renderConfig struct {
	OutDir     string
	Width      int
	Height     int
	Scale      float64
	Background string
	// Hover places a synthetic pointer at this fraction of the chart
	// width before rendering. Negative values disable it.
	Hover float64
}

func NewRenderCmd() *cobra.Command {
	cfg := renderConfig{Hover: -1}
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render every chart of the given definition files",
		Long: `Render every chart of the given YAML or CSV definition files into
one PNG per chart, named after the chart.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Scale <= 0 || math.IsInf(cfg.Scale, 0) {
				return fmt.Errorf("invalid scale %v", cfg.Scale)
			}
			if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
				return fmt.Errorf("failed creating output directory: %w", err)
			}
			r, err := newRenderer(slog.Default(), cfg)
			if err != nil {
				return err
			}
			defer r.factory.Cleanup()
			var errs []error
			for _, path := range args {
				written, err := r.renderFile(path)
				for _, w := range written {
					fmt.Fprintln(cmd.OutOrStdout(), w)
				}
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVarP(&cfg.OutDir, "out", "o", ".", "Directory to write images into")
	cmd.Flags().IntVar(&cfg.Width, "width", 100, "Chart width for definitions that do not set one")
	cmd.Flags().IntVar(&cfg.Height, "height", 20, "Chart height for definitions that do not set one")
	cmd.Flags().Float64Var(&cfg.Scale, "scale", 1, "Pixels per chart unit")
	cmd.Flags().StringVar(&cfg.Background, "background", "transparent", "Image background color")
	cmd.Flags().Float64Var(&cfg.Hover, "hover", -1, "Render charts hovered at this fraction of their width (0 to 1)")
	return cmd
}

type renderer struct {
	cfg     renderConfig
	bg      color.NRGBA
	logger  *slog.Logger
	factory *factory.Factory
}

func newRenderer(logger *slog.Logger, cfg renderConfig) (*renderer, error) {
	bg, ok := canvas.ParseColor(cfg.Background)
	if !ok {
		return nil, fmt.Errorf("invalid background color %q", cfg.Background)
	}
	f, err := factory.New(chart.NewContext(logger))
	if err != nil {
		return nil, err
	}
	return &renderer{cfg: cfg, bg: bg, logger: logger, factory: f}, nil
}

// renderFile writes one image per chart defined in path and returns the
// written file names. Charts that cannot be built are logged and skipped.
func (r *renderer) renderFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defs, err := backend.Decode(path, f)
	if err != nil {
		return nil, fmt.Errorf("failed reading %q: %w", path, err)
	}

	var written []string
	used := map[string]bool{}
	for _, def := range defs {
		base := fileName(def.Name)
		name := base
		for n := 1; used[name]; n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		used[name] = true
		out := filepath.Join(r.cfg.OutDir, name+".png")
		ok, err := r.renderChart(def, out)
		if err != nil {
			return written, err
		}
		if ok {
			written = append(written, out)
		}
	}
	return written, nil
}

func (r *renderer) size(def backend.Definition) (int, int) {
	w, h := def.Width, def.Height
	if w <= 0 {
		w = r.cfg.Width
	}
	if h <= 0 {
		h = r.cfg.Height
	}
	return int(math.Round(float64(w) * r.cfg.Scale)), int(math.Round(float64(h) * r.cfg.Scale))
}

func (r *renderer) renderChart(def backend.Definition, out string) (bool, error) {
	w, h := r.size(def)
	surface := canvas.New(w, h)
	c := r.factory.CreateNamed(def.Kind, surface, chart.Props{
		Data:    def.Data,
		Options: def.Options,
	})
	if c == nil {
		r.logger.Warn("skipping chart", "chart", def.Name, "kind", def.Kind)
		return false, nil
	}
	defer r.factory.Release(c)
	if r.cfg.Hover >= 0 {
		x := min(r.cfg.Hover, 1) * float64(w)
		c.HandlePointer(chart.PointerEvent{
			Kind:   chart.Move,
			Sample: chart.MouseSample(canvas.Pt(x, float64(h)/2), canvas.Point{}),
		})
	}

	file, err := os.Create(out)
	if err != nil {
		return false, fmt.Errorf("failed creating %q: %w", out, err)
	}
	if err := surface.EncodePNG(file, r.bg); err != nil {
		file.Close()
		return false, err
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("failed writing %q: %w", out, err)
	}
	r.logger.Debug("rendered chart", "chart", def.Name, "path", out)
	return true, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// fileName turns a chart name into a safe file name stem.
func fileName(name string) string {
	stem := strings.Trim(unsafeFileChars.ReplaceAllString(name, "-"), "-.")
	if stem == "" {
		return "chart"
	}
	return stem
}
