// Package factory builds charts by kind and recycles them through per-kind
// pools, so hosts that create and drop many sparklines per frame (a table
// being scrolled, say) do not pay for fresh allocations every time.
package factory

import (
	"fmt"
	"log/slog"
	"slices"

	"git.sr.ht/~whereswaldon/sparkline/canvas"
	"git.sr.ht/~whereswaldon/sparkline/chart"
	"git.sr.ht/~whereswaldon/sparkline/values"
	lru "github.com/hashicorp/golang-lru"
)

const (
	// MaxPoolSize bounds the free list of each chart kind.
	MaxPoolSize = 50
	// MaxValuesCacheSize bounds the processed values cache.
	MaxValuesCacheSize = 1000
)

// Factory hands out charts bound to a single chart.Context. Like the context,
// it belongs to the UI goroutine.
type Factory struct {
	ctx *chart.Context
	log *slog.Logger

	pools    map[chart.Kind][]*chart.Chart
	defaults map[chart.Kind]chart.Options
	values   *lru.Cache
}

// New returns a factory creating charts in ctx.
func New(ctx *chart.Context) (*Factory, error) {
	cache, err := lru.New(MaxValuesCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed creating values cache: %w", err)
	}
	return &Factory{
		ctx:      ctx,
		log:      ctx.Logger.With("component", "factory"),
		pools:    make(map[chart.Kind][]*chart.Chart),
		defaults: make(map[chart.Kind]chart.Options),
		values:   cache,
	}, nil
}

// Context returns the context charts are created in.
func (f *Factory) Context() *chart.Context { return f.ctx }

// Create returns a chart of kind drawn onto surface, reusing a pooled
// instance when one is available. It logs and returns nil when the kind is
// unknown or the chart cannot be built, so one bad definition does not
// abort a caller building many charts.
func (f *Factory) Create(kind chart.Kind, surface canvas.Surface, props chart.Props) *chart.Chart {
	if !kind.Valid() {
		f.log.Warn("chart type not supported", "kind", kind)
		return nil
	}
	if props.Defaults == nil {
		d := f.defaultsFor(kind)
		props.Defaults = &d
	}
	if props.Values == nil {
		props.Values = f.valuesFor(kind, props.Data)
	}

	if pool := f.pools[kind]; len(pool) > 0 {
		c := pool[len(pool)-1]
		pool[len(pool)-1] = nil
		f.pools[kind] = pool[:len(pool)-1]
		if err := c.Reinitialize(surface, props); err != nil {
			f.log.Warn("failed reinitializing pooled chart", "kind", kind, "err", err)
			c.Destroy()
			return nil
		}
		return c
	}

	c, err := chart.New(f.ctx, kind, surface, props)
	if err != nil {
		f.log.Warn("failed creating chart", "kind", kind, "err", err)
		return nil
	}
	return c
}

// CreateNamed is Create for a kind given by name.
func (f *Factory) CreateNamed(name string, surface canvas.Surface, props chart.Props) *chart.Chart {
	kind, err := chart.ParseKind(name)
	if err != nil {
		f.log.Warn("chart type not supported", "kind", name)
		return nil
	}
	return f.Create(kind, surface, props)
}

// Release returns c to its pool after stripping its listeners and state.
// When the pool is full the chart is destroyed instead.
func (f *Factory) Release(c *chart.Chart) {
	if c == nil || c.Destroyed() {
		return
	}
	pool := f.pools[c.Kind()]
	if slices.Contains(pool, c) {
		return
	}
	if len(pool) >= MaxPoolSize {
		c.Destroy()
		return
	}
	c.Reset()
	f.pools[c.Kind()] = append(pool, c)
}

// DestroyImmediately tears c down without pooling it, for hosts that are
// removing the surface for good.
func (f *Factory) DestroyImmediately(c *chart.Chart) {
	if c == nil {
		return
	}
	c.Destroy()
}

func (f *Factory) defaultsFor(kind chart.Kind) chart.Options {
	d, ok := f.defaults[kind]
	if !ok {
		d = chart.DefaultOptions(kind)
		f.defaults[kind] = d
	}
	return d
}

// valuesFor processes data through the cache. The cached series is shared
// between charts and must not be modified.
func (f *Factory) valuesFor(kind chart.Kind, data []any) values.Series {
	if len(data) == 0 {
		return values.Series{}
	}
	key := kind.String() + ":" + values.RawKey(data)
	if v, ok := f.values.Get(key); ok {
		return v.(values.Series)
	}
	s := values.Process(data)
	f.values.Add(key, s)
	return s
}

// PreWarm loads the defaults of every kind and processes each of the given
// datasets for every kind.
func (f *Factory) PreWarm(datasets ...[]any) {
	for _, kind := range chart.Kinds() {
		f.defaultsFor(kind)
		for _, data := range datasets {
			f.valuesFor(kind, data)
		}
	}
}

// ClearCaches drops the cached defaults and processed values.
func (f *Factory) ClearCaches() {
	f.values.Purge()
	clear(f.defaults)
}

// ClearValuesCache drops only the processed values.
func (f *Factory) ClearValuesCache() {
	f.values.Purge()
}

// Cleanup clears the caches, destroys every pooled chart and discards the
// shared tooltip.
func (f *Factory) Cleanup() {
	f.ClearCaches()
	for kind, pool := range f.pools {
		for _, c := range pool {
			c.Destroy()
		}
		delete(f.pools, kind)
	}
	f.ctx.Tooltip.Cleanup()
}

// Stats describes the factory caches.
type Stats struct {
	Defaults int
	Values   int
	Pools    map[chart.Kind]int
}

// Stats returns the current cache and pool sizes.
func (f *Factory) Stats() Stats {
	st := Stats{
		Defaults: len(f.defaults),
		Values:   f.values.Len(),
		Pools:    make(map[chart.Kind]int, len(f.pools)),
	}
	for kind, pool := range f.pools {
		st.Pools[kind] = len(pool)
	}
	return st
}

// MemoryReport is Stats plus a pooled total and suggestions for reducing
// memory use.
type MemoryReport struct {
	Stats
	TotalPooled     int
	Recommendations []string
}

func (f *Factory) MemoryReport() MemoryReport {
	r := MemoryReport{Stats: f.Stats()}
	for _, n := range r.Pools {
		r.TotalPooled += n
	}
	if r.TotalPooled > MaxPoolSize*2 {
		r.Recommendations = append(r.Recommendations, "Consider calling Cleanup: high number of pooled charts")
	}
	if r.Values > MaxValuesCacheSize*8/10 {
		r.Recommendations = append(r.Recommendations, "Values cache is nearly full: consider ClearValuesCache")
	}
	return r
}
