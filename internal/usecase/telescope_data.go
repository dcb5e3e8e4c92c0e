package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Deps are the collaborators of a TelescopeData.
type Deps struct {
	Archive repository.Archive
	Catalog *MissionCatalog
	Store   repository.TableStore
	Logger  *logger.Logger
	Metrics repository.Metrics
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Catalog == nil {
		d.Catalog = NewMissionCatalog(d.Archive, nil, 0, d.Metrics, d.Logger)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Params configures a TelescopeData. On reconfiguration zero values keep the
// previous setting. Start and End take anything ParseTimeParam accepts.
type Params struct {
	Telescope string `validate:"omitempty,max=64"`
	Start     any
	End       any
	// MaxResults caps the fetch; 0 keeps the current cap, negative removes it.
	MaxResults int
	Token      string
	// CachePath loads the table from a file instead of the archive.
	CachePath   string
	CacheFormat string
}

// plan is a fully validated Params.
type plan struct {
	telescope  string
	rng        TimeRange
	maxResults int
	token      string
	cachePath  string
	format     repository.Format
}

// TelescopeData owns one telescope's query window and observation table.
// It is not safe for concurrent use.
type TelescopeData struct {
	deps       Deps
	telescope  string
	rng        TimeRange
	maxResults int
	table      *models.Table
}

// New validates p, then loads the table from p.CachePath or fetches it from
// the archive. Validation and authentication failures are returned; fetch and
// cache load failures are logged and leave the table empty.
func New(ctx context.Context, deps Deps, p Params) (*TelescopeData, error) {
	deps = deps.withDefaults()
	d := &TelescopeData{
		deps:  deps,
		rng:   DefaultTimeRange(deps.Now()),
		table: models.NewTable(nil),
	}
	if p.Telescope == "" {
		_, err := deps.Catalog.Validate(ctx, p.Telescope)
		if err == nil {
			err = &models.UnknownTelescopeError{Name: p.Telescope}
		}
		return nil, err
	}
	if err := d.Reconfigure(ctx, p); err != nil {
		return nil, err
	}
	return d, nil
}

// Reconfigure applies a partial update and reloads the table.
// Nothing changes if validation or archive login fails.
func (d *TelescopeData) Reconfigure(ctx context.Context, p Params) error {
	pl, err := d.resolve(ctx, p)
	if err != nil {
		return err
	}
	if pl.cachePath == "" && pl.token != "" {
		if err := d.login(ctx, pl.telescope, pl.token); err != nil {
			return err
		}
	}

	d.telescope = pl.telescope
	d.rng = pl.rng
	d.maxResults = pl.maxResults
	d.table = models.NewTable(nil)

	if pl.cachePath != "" {
		d.loadCache(pl.cachePath, pl.format)
		return nil
	}
	d.fetch(ctx)
	return nil
}

func (d *TelescopeData) resolve(ctx context.Context, p Params) (plan, error) {
	if err := validate.StructCtx(ctx, p); err != nil {
		return plan{}, fmt.Errorf("invalid parameters: %w", err)
	}

	pl := plan{
		telescope:  d.telescope,
		maxResults: d.maxResults,
		token:      p.Token,
		cachePath:  p.CachePath,
	}

	if p.Telescope != "" {
		name, err := d.deps.Catalog.Validate(ctx, p.Telescope)
		if err != nil {
			return plan{}, err
		}
		pl.telescope = name
	}

	rng, err := resolveRange(d.rng, p.Start, p.End, d.deps.Now())
	if err != nil {
		return plan{}, err
	}
	pl.rng = rng

	switch {
	case p.MaxResults > 0:
		pl.maxResults = p.MaxResults
	case p.MaxResults < 0:
		pl.maxResults = 0
	}

	if p.CachePath != "" {
		if p.CacheFormat == "" {
			return plan{}, models.ErrMissingCacheFormat
		}
		f, err := repository.ParseFormat(p.CacheFormat)
		if err != nil {
			return plan{}, err
		}
		pl.format = f
	}
	return pl, nil
}

func (d *TelescopeData) loadCache(path string, format repository.Format) {
	t, err := d.deps.Store.Load(path, format)
	if err != nil {
		d.recordError("cache_load")
		d.deps.Logger.Warn("cache load failed, continuing with empty table",
			logger.String("telescope", d.telescope),
			logger.String("path", path),
			logger.String("format", string(format)),
			logger.Error(err),
		)
		return
	}
	d.table = t
	d.deps.Logger.Info("observations loaded from cache",
		logger.String("telescope", d.telescope),
		logger.String("path", path),
		logger.Int("rows", t.Len()),
	)
}

func (d *TelescopeData) login(ctx context.Context, telescope, token string) error {
	err := d.deps.Archive.Login(ctx, token)
	if err == nil {
		return nil
	}
	d.recordError("auth")
	d.deps.Logger.Error("archive login failed", logger.String("telescope", telescope), logger.Error(err))
	if !errors.Is(err, models.ErrAuthentication) {
		err = fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}
	return err
}

// fetch replaces the table with a live query. Failures are logged and leave
// the table empty.
func (d *TelescopeData) fetch(ctx context.Context) {
	d.deps.Logger.Info("fetching observations",
		logger.String("telescope", d.telescope),
		logger.String("start", d.rng.Display().Start),
		logger.String("end", d.rng.Display().End),
		logger.Int("max_results", d.maxResults),
	)
	started := time.Now()
	t, err := d.deps.Archive.QueryObservations(ctx, models.ObservationQuery{
		Collection: d.telescope,
		Start:      d.rng.Start,
		End:        d.rng.End,
		MaxResults: d.maxResults,
	})
	if err != nil {
		d.recordError("fetch")
		d.deps.Logger.Error("archive query failed, continuing with empty table",
			logger.String("telescope", d.telescope),
			logger.Error(err),
		)
		return
	}
	if t == nil {
		t = models.NewTable(nil)
	}
	d.table = t

	elapsed := time.Since(started)
	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordFetch(d.telescope, t.Len(), elapsed.Seconds())
	}
	d.deps.Logger.Info("observations fetched",
		logger.String("telescope", d.telescope),
		logger.Int("rows", t.Len()),
		logger.Duration("elapsed_ms", elapsed),
	)
}

// Export writes the current table to path.
func (d *TelescopeData) Export(path, format string) error {
	f, err := repository.ParseFormat(format)
	if err != nil {
		return err
	}
	if err := d.deps.Store.Save(d.table, path, f); err != nil {
		return fmt.Errorf("export %s: %w", d.telescope, err)
	}
	return nil
}

// ImportFrom replaces the table with the contents of path. Read failures
// are returned and leave the current table untouched.
func (d *TelescopeData) ImportFrom(path, format string) error {
	f, err := repository.ParseFormat(format)
	if err != nil {
		return err
	}
	t, err := d.deps.Store.Load(path, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", d.telescope, err)
	}
	d.table = t
	return nil
}

func (d *TelescopeData) recordError(kind string) {
	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordError(kind)
	}
}

func (d *TelescopeData) Telescope() string { return d.telescope }

func (d *TelescopeData) Start() time.Time { return d.rng.Start }

func (d *TelescopeData) End() time.Time { return d.rng.End }

func (d *TelescopeData) Range() TimeRange { return d.rng }

func (d *TelescopeData) MaxResults() int { return d.maxResults }

// Observations returns the current table. Callers must not mutate it.
func (d *TelescopeData) Observations() *models.Table { return d.table }

// DisplayRange returns the query window formatted for chart titles.
func (d *TelescopeData) DisplayRange() models.DisplayRange { return d.rng.Display() }

// Summary describes the loaded dataset.
func (d *TelescopeData) Summary() models.Summary {
	cols := make([]string, len(d.table.Columns))
	copy(cols, d.table.Columns)
	return models.Summary{
		Telescope:  d.telescope,
		Start:      d.rng.Start,
		End:        d.rng.End,
		MaxResults: d.maxResults,
		Rows:       d.table.Len(),
		Columns:    cols,
	}
}
