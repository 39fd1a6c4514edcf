package backend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoCharts is returned when a definition file parses but defines nothing.
var ErrNoCharts = errors.New("no charts defined")

// MaxPoints bounds the values kept per chart when rows are appended to a
// CSV sheet. Older values are dropped first.
const MaxPoints = 500

// Definition describes one chart: its kind, its raw data and the options
// passed through to the engine.
type Definition struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	Width   int            `yaml:"width"`
	Height  int            `yaml:"height"`
	Data    []any          `yaml:"data"`
	Options map[string]any `yaml:"options"`
}

// Sheet is the parsed content of one definition file.
type Sheet struct {
	Path        string
	Definitions []Definition
	Err         error
	// Version increases with every sheet a Source emits.
	Version uint64
}

// clone returns a copy of s that shares nothing mutable with it.
func (s Sheet) clone() Sheet {
	out := s
	out.Definitions = slices.Clone(s.Definitions)
	for i := range out.Definitions {
		out.Definitions[i].Data = slices.Clone(out.Definitions[i].Data)
	}
	return out
}

type sheetFile struct {
	Charts []Definition `yaml:"charts"`
}

// isCSV reports whether name should be read as CSV rather than YAML.
func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Decode parses a definition file, choosing the format from its name.
func Decode(name string, r io.Reader) ([]Definition, error) {
	if isCSV(name) {
		return DecodeCSV(r)
	}
	return DecodeYAML(r)
}

// DecodeYAML parses a document of the form
//
//	charts:
//	  - name: load
//	    kind: line
//	    data: [1, 2, null, 4]
//	    options: {lineColor: "#f00"}
func DecodeYAML(r io.Reader) ([]Definition, error) {
	var f sheetFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCharts
		}
		return nil, fmt.Errorf("failed decoding chart definitions: %w", err)
	}
	if len(f.Charts) == 0 {
		return nil, ErrNoCharts
	}
	for i := range f.Charts {
		if f.Charts[i].Name == "" {
			f.Charts[i].Name = "chart " + strconv.Itoa(i+1)
		}
	}
	return f.Charts, nil
}

// DecodeCSV parses rows of the form name,kind,v1,v2,... Empty cells are
// gaps and a|b|c cells are multi-part values. A row naming a chart that
// already exists appends its values to that chart.
func DecodeCSV(r io.Reader) ([]Definition, error) {
	var acc csvSheet
	if err := readRows(newCSVReader(r), &acc); err != nil {
		return nil, err
	}
	if len(acc.defs) == 0 {
		return nil, ErrNoCharts
	}
	return acc.defs, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	return reader
}

// csvSheet accumulates CSV rows into definitions.
type csvSheet struct {
	defs   []Definition
	byName map[string]int
	logger *slog.Logger
}

func (c *csvSheet) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *csvSheet) add(rec []string) {
	if len(rec) < 2 {
		c.log().Warn("skipping short chart row", "fields", len(rec))
		return
	}
	name, kind := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
	if c.byName == nil {
		c.byName = make(map[string]int)
	}
	idx, ok := c.byName[name]
	if !ok {
		idx = len(c.defs)
		c.byName[name] = idx
		c.defs = append(c.defs, Definition{Name: name, Kind: kind})
	} else if kind != "" && kind != c.defs[idx].Kind {
		c.log().Warn("ignoring kind change for existing chart", "chart", name, "kind", kind)
	}
	def := &c.defs[idx]
	for i, cell := range rec[2:] {
		v, err := parseCell(cell)
		if err != nil {
			c.log().Warn("failed parsing cell", "chart", name, "column", i+2, "err", err)
			continue
		}
		def.Data = append(def.Data, v)
	}
	if over := len(def.Data) - MaxPoints; over > 0 {
		def.Data = slices.Delete(def.Data, 0, over)
	}
}

// parseCell converts one CSV cell into a raw value.
func parseCell(cell string) (any, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "null") {
		return nil, nil
	}
	if !strings.Contains(cell, "|") {
		return strconv.ParseFloat(cell, 64)
	}
	parts := strings.Split(cell, "|")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid part %d of %q: %w", i, cell, err)
		}
		out[i] = f
	}
	return out, nil
}
