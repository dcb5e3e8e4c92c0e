package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/pkg/cache"
	"TelescopeStatus/pkg/logger"
	"TelescopeStatus/pkg/util"
)

// Figure kinds served by the registry.
const (
	FigureInstruments = "instruments"
	FigureDataTypes   = "datatypes"
	FigureExposure    = "exposure"
	FigureScatter     = "scatter"
)

var ErrUnknownFigure = errors.New("unknown figure kind")

// RegistryConfig controls how the registry builds and caches datasets.
type RegistryConfig struct {
	CacheDir   string
	Format     repository.Format
	MaxResults int
	Token      string
	FigureTTL  time.Duration
}

// FigureOptions carries per-kind figure arguments.
type FigureOptions struct {
	Log  bool
	X, Y string
}

type entry struct {
	mu   sync.Mutex
	data *TelescopeData
}

// Registry owns one TelescopeData per telescope and serializes access to
// each. Tables are persisted under CacheDir keyed by telescope, range and
// result cap, so a reconfigured range never reads another range's file.
type Registry struct {
	deps     Deps
	cfg      RegistryConfig
	figures  cache.Service
	notifier repository.RefreshNotifier
	log      *logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates a registry. figures may be nil to disable figure caching.
func NewRegistry(deps Deps, figures cache.Service, cfg RegistryConfig) *Registry {
	deps = deps.withDefaults()
	if cfg.Format == "" {
		cfg.Format = repository.DefaultFormat()
	}
	return &Registry{
		deps:    deps,
		cfg:     cfg,
		figures: figures,
		log:     deps.Logger.Named("registry"),
		entries: make(map[string]*entry),
	}
}

// SetNotifier registers a listener for table reloads.
func (r *Registry) SetNotifier(n repository.RefreshNotifier) { r.notifier = n }

// Missions lists the telescopes the archive knows about.
func (r *Registry) Missions(ctx context.Context) ([]string, error) {
	return r.deps.Catalog.Missions(ctx)
}

// CachePath returns the file a telescope/range/cap table is persisted to.
func (r *Registry) CachePath(telescope string, rng TimeRange, maxResults int, format repository.Format) string {
	key := cache.GenerateKeyWithParams(telescope, util.FormatDate(rng.Start), util.FormatDate(rng.End), maxResults)
	return filepath.Join(r.cfg.CacheDir, telescope+"-"+cache.HashKey(key)+format.Extension())
}

func (r *Registry) entry(ctx context.Context, name string) (string, *entry, error) {
	telescope, err := r.deps.Catalog.Validate(ctx, name)
	if err != nil {
		return "", nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[telescope]
	if !ok {
		e = &entry{}
		r.entries[telescope] = e
	}
	return telescope, e, nil
}

// with runs fn on the telescope's dataset, building it first if needed.
func (r *Registry) with(ctx context.Context, name string, fn func(d *TelescopeData) error) error {
	telescope, e, err := r.entry(ctx, name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data == nil {
		rng := DefaultTimeRange(r.deps.Now())
		d, err := r.build(ctx, telescope, rng, r.cfg.MaxResults)
		if err != nil {
			return err
		}
		e.data = d
	}
	return fn(e.data)
}

func (r *Registry) build(ctx context.Context, telescope string, rng TimeRange, maxResults int) (*TelescopeData, error) {
	p := Params{Telescope: telescope, Start: rng.Start, End: rng.End, MaxResults: maxResults}
	path, cached := r.cached(telescope, rng, maxResults)
	if cached {
		p.CachePath, p.CacheFormat = path, string(r.cfg.Format)
	} else {
		p.Token = r.cfg.Token
	}

	d, err := New(ctx, r.deps, p)
	if err != nil {
		return nil, err
	}
	r.afterLoad(d, path, cached)
	return d, nil
}

func (r *Registry) cached(telescope string, rng TimeRange, maxResults int) (string, bool) {
	path := r.CachePath(telescope, rng, maxResults, r.cfg.Format)
	_, err := os.Stat(path)
	hit := err == nil
	if r.deps.Metrics != nil {
		r.deps.Metrics.RecordCacheLookup("table", hit)
	}
	return path, hit
}

// afterLoad persists freshly fetched tables, drops stale figures and
// notifies listeners.
func (r *Registry) afterLoad(d *TelescopeData, path string, fromCache bool) {
	if !fromCache && !d.Observations().Empty() && r.cfg.CacheDir != "" {
		if err := d.Export(path, string(r.cfg.Format)); err != nil {
			r.log.Warn("cache save failed", logger.String("path", path), logger.Error(err))
		}
	}

	if r.figures != nil {
		pattern := cache.BuildPattern(cache.GenerateKey("figure", d.Telescope()) + ":")
		if err := r.figures.DeleteByPattern(context.Background(), pattern); err != nil {
			r.log.Warn("figure cache invalidation failed", logger.String("telescope", d.Telescope()), logger.Error(err))
		}
	}

	if r.notifier != nil {
		disp := d.DisplayRange()
		r.notifier.Publish(models.RefreshEvent{
			Telescope: d.Telescope(),
			Rows:      d.Observations().Len(),
			Start:     disp.Start,
			End:       disp.End,
			At:        r.deps.Now().UTC(),
		})
	}
}

// Describe returns the telescope's current parameters and table shape.
func (r *Registry) Describe(ctx context.Context, name string) (models.Summary, error) {
	var s models.Summary
	err := r.with(ctx, name, func(d *TelescopeData) error {
		s = d.Summary()
		return nil
	})
	return s, err
}

// Reconfigure changes the telescope's range and cap and reloads its table,
// from the cache directory when a matching file exists.
func (r *Registry) Reconfigure(ctx context.Context, name string, start, end any, maxResults int) (models.Summary, error) {
	telescope, e, err := r.entry(ctx, name)
	if err != nil {
		return models.Summary{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, curMax := DefaultTimeRange(r.deps.Now()), r.cfg.MaxResults
	if e.data != nil {
		cur, curMax = e.data.Range(), e.data.MaxResults()
	}
	rng, err := resolveRange(cur, start, end, r.deps.Now())
	if err != nil {
		return models.Summary{}, err
	}
	switch {
	case maxResults > 0:
		curMax = maxResults
	case maxResults < 0:
		curMax = 0
	}

	if e.data == nil {
		d, err := r.build(ctx, telescope, rng, curMax)
		if err != nil {
			return models.Summary{}, err
		}
		e.data = d
		return d.Summary(), nil
	}

	p := Params{Start: rng.Start, End: rng.End, MaxResults: maxResults}
	path, cached := r.cached(telescope, rng, curMax)
	if cached {
		p.CachePath, p.CacheFormat = path, string(r.cfg.Format)
	} else {
		p.Token = r.cfg.Token
	}
	if err := e.data.Reconfigure(ctx, p); err != nil {
		return models.Summary{}, err
	}
	r.afterLoad(e.data, path, cached)
	return e.data.Summary(), nil
}

// Figure returns a chart description for the telescope's current table.
func (r *Registry) Figure(ctx context.Context, name, kind string, opts FigureOptions) (models.Figure, error) {
	var fig models.Figure
	err := r.with(ctx, name, func(d *TelescopeData) error {
		build, err := figureBuilder(d, kind, opts)
		if err != nil {
			return err
		}
		if r.figures == nil {
			fig, err = build()
			return err
		}

		disp := d.DisplayRange()
		key := cache.GenerateKeyWithParams(cache.GenerateKey("figure", d.Telescope()),
			kind, disp.Start, disp.End, d.MaxResults(), opts.Log, opts.X, opts.Y)
		var hit bool
		fig, hit, err = cache.GetOrLoad(ctx, r.figures, key, r.cfg.FigureTTL, func(context.Context) (models.Figure, error) {
			return build()
		})
		if r.deps.Metrics != nil {
			r.deps.Metrics.RecordCacheLookup("figure", hit)
		}
		return err
	})
	return fig, err
}

func figureBuilder(d *TelescopeData, kind string, opts FigureOptions) (func() (models.Figure, error), error) {
	switch kind {
	case FigureInstruments:
		return func() (models.Figure, error) { return d.InstrumentsPie(), nil }, nil
	case FigureDataTypes:
		return func() (models.Figure, error) { return d.DataTypePie(), nil }, nil
	case FigureExposure:
		return func() (models.Figure, error) { return d.ExposureLengthHist(opts.Log), nil }, nil
	case FigureScatter:
		return func() (models.Figure, error) { return d.CompareScatter(opts.X, opts.Y) }, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFigure, kind)
}

// Export writes the telescope's table to its cache path in format and
// returns that path.
func (r *Registry) Export(ctx context.Context, name, format string) (string, error) {
	f, err := repository.ParseFormat(format)
	if err != nil {
		return "", err
	}
	var path string
	err = r.with(ctx, name, func(d *TelescopeData) error {
		path = r.CachePath(d.Telescope(), d.Range(), d.MaxResults(), f)
		return d.Export(path, string(f))
	})
	return path, err
}

// Warm builds the given telescopes up front. Failures are logged.
func (r *Registry) Warm(ctx context.Context, names []string) {
	for _, name := range names {
		if err := r.with(ctx, name, func(d *TelescopeData) error {
			r.log.Info("telescope ready", logger.String("telescope", d.Telescope()), logger.Int("rows", d.Observations().Len()))
			return nil
		}); err != nil {
			r.log.Error("telescope warmup failed", logger.String("telescope", name), logger.Error(err))
		}
	}
}
