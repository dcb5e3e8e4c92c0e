package di

import (
	"fmt"

	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/internal/handler/api"
	"TelescopeStatus/internal/handler/ws"
	internalrepo "TelescopeStatus/internal/repository"
	"TelescopeStatus/internal/service/mast"
	svcmetrics "TelescopeStatus/internal/service/metrics"
	"TelescopeStatus/internal/service/ratelimit"
	"TelescopeStatus/internal/usecase"
	"TelescopeStatus/pkg/cache"
	"TelescopeStatus/pkg/config"
	xhttp "TelescopeStatus/pkg/http"
	"TelescopeStatus/pkg/logger"
	"TelescopeStatus/pkg/metrics"
	"TelescopeStatus/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegisterer returns the Prometheus registry all collectors share.
func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

// ProvideFigureMetrics creates the figure API collectors.
func ProvideFigureMetrics(reg prometheus.Registerer) *svcmetrics.FigureMetrics {
	return svcmetrics.NewFigureMetrics(reg)
}

// ProvideArchive creates the MAST client.
func ProvideArchive(cfg *config.Config, l *logger.Logger) repository.Archive {
	return mast.NewClient(
		mast.WithBaseURL(cfg.Archive.BaseURL),
		mast.WithAuthURL(cfg.Archive.AuthURL),
		mast.WithTimeout(cfg.Archive.Timeout),
		mast.WithPageSize(cfg.Archive.PageSize),
		mast.WithPolling(cfg.Archive.PollInterval, cfg.Archive.MaxPolls),
		mast.WithLogger(l.Named("mast")),
	)
}

// ProvideTableStore creates the local table cache.
func ProvideTableStore() repository.TableStore {
	return internalrepo.NewFileTableStore()
}

// ProvideCache creates the mission/figure cache: layered over Redis when
// enabled, in-memory otherwise.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", logger.String("addr", cfg.Cache.Redis.Addr))
	return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
}

// ProvideMissionCatalog creates the telescope validator.
func ProvideMissionCatalog(
	archive repository.Archive,
	c cache.Service,
	m repository.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) *usecase.MissionCatalog {
	return usecase.NewMissionCatalog(archive, c, cfg.Archive.MissionTTL, m, l.Named("catalog"))
}

// ProvideRefreshHub creates the websocket refresh stream.
func ProvideRefreshHub(cfg *config.Config, l *logger.Logger) *ws.Hub {
	return ws.NewHub(l, cfg.Dashboard.PingInterval)
}

// ProvideRegistry creates the telescope registry and attaches the refresh hub.
func ProvideRegistry(
	archive repository.Archive,
	catalog *usecase.MissionCatalog,
	store repository.TableStore,
	m repository.Metrics,
	c cache.Service,
	hub *ws.Hub,
	cfg *config.Config,
	l *logger.Logger,
) (*usecase.Registry, error) {
	format, err := repository.ParseFormat(cfg.Cache.Format)
	if err != nil {
		return nil, err
	}
	reg := usecase.NewRegistry(usecase.Deps{
		Archive: archive,
		Catalog: catalog,
		Store:   store,
		Logger:  l.Named("telescope"),
		Metrics: m,
	}, c, usecase.RegistryConfig{
		CacheDir:   cfg.Cache.Dir,
		Format:     format,
		MaxResults: cfg.Dashboard.MaxResults,
		Token:      cfg.Archive.Token,
		FigureTTL:  cfg.Cache.FigureTTL,
	})
	reg.SetNotifier(hub)
	return reg, nil
}

// ProvideHTTPHandler combines the figure API and the refresh stream.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *logger.Logger,
	reg *usecase.Registry,
	hub *ws.Hub,
	fm *svcmetrics.FigureMetrics,
) xhttp.Handler {
	limit := api.RateLimit{
		Capacity:     cfg.Dashboard.RateLimit.Capacity,
		RefillPerSec: cfg.Dashboard.RateLimit.RefillPerSec,
	}
	return xhttp.MultiHandler{
		api.NewTelescopesEchoHandler(l.Named("api"), reg, ratelimit.New(), limit, fm),
		hub,
	}
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, h xhttp.Handler, reg prometheus.Registerer) *xhttp.Server {
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithMetrics(metricsPath, reg, prometheus.DefaultGatherer),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	reg *usecase.Registry,
	srv *xhttp.Server,
	c cache.Service,
) *server.App {
	return server.New(cfg, l, reg, srv, c)
}
