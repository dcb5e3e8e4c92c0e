// Command fetch pulls one telescope's observations from MAST and writes them
// to a cache file the dashboard can load offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TelescopeStatus/internal/di"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/internal/usecase"
	"TelescopeStatus/pkg/config"
	"TelescopeStatus/pkg/logger"

	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath = flag.StringP("config", "c", "", "optional config file path")
		telescope  = flag.StringP("telescope", "t", "JWST", "mission to fetch")
		start      = flag.String("start", "", "range start (YYYY-MM-DD, RFC 3339 or \"now\")")
		end        = flag.String("end", "", "range end (YYYY-MM-DD, RFC 3339 or \"now\")")
		maxResults = flag.IntP("max-results", "n", 0, "cap on returned rows (0 = no cap)")
		token      = flag.String("token", "", "MAST API token (overrides MAST_TOKEN)")
		out        = flag.StringP("out", "o", "", "output file (default <cache dir>/<hash><ext>)")
		format     = flag.StringP("format", "f", "", "csv or binary (default from config)")
	)
	flag.Parse()

	if err := run(*configPath, *telescope, *start, *end, *maxResults, *token, *out, *format); err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, telescope, start, end string, maxResults int, token, out, format string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if token != "" {
		cfg.Archive.Token = token
	}
	if format == "" {
		format = cfg.Cache.Format
	}
	f, err := repository.ParseFormat(format)
	if err != nil {
		return err
	}

	log, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	archive := di.ProvideArchive(cfg, log)
	deps := usecase.Deps{
		Archive: archive,
		Store:   di.ProvideTableStore(),
		Logger:  log.Named("telescope"),
	}

	p := usecase.Params{
		Telescope:  telescope,
		MaxResults: maxResults,
		Token:      cfg.Archive.Token,
	}
	if start != "" {
		p.Start = start
	}
	if end != "" {
		p.End = end
	}

	data, err := usecase.New(ctx, deps, p)
	if err != nil {
		return err
	}

	if out == "" {
		reg := usecase.NewRegistry(deps, nil, usecase.RegistryConfig{CacheDir: cfg.Cache.Dir, Format: f})
		out = reg.CachePath(data.Telescope(), data.Range(), data.MaxResults(), f)
	}
	if err := data.Export(out, string(f)); err != nil {
		return err
	}

	log.Info("table exported",
		logger.String("telescope", data.Telescope()),
		logger.Int("rows", data.Observations().Len()),
		logger.String("path", out),
	)
	return nil
}
