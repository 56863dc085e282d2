// Package app wires configuration, logging and the marking pipeline into the
// pieces the binaries run.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-marker-mcp/internal/config"
	"github.com/ironsheep/image-marker-mcp/internal/imaging"
	"github.com/ironsheep/image-marker-mcp/internal/logging"
	"github.com/ironsheep/image-marker-mcp/internal/marker"
	"github.com/ironsheep/image-marker-mcp/internal/source"
)

// App holds the shared components of a running process.
type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	Fonts   *imaging.FontRegistry
	Service *marker.Service

	closers []func() error
}

// Setup loads the configuration at configPath (empty for the default
// search), builds a stderr logger from it and then the App.
func Setup(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	return New(cfg, log)
}

// New builds the pipeline described by cfg.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.Marker.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	a := &App{Config: cfg, Log: log}

	cache, err := a.fetchCache()
	if err != nil {
		return nil, err
	}

	fetcher := source.NewFetcher(source.FetchOptions{
		Timeout:    cfg.Fetch.Timeout,
		Retries:    cfg.Fetch.Retries,
		RetryDelay: cfg.Fetch.RetryDelay,
		MaxBytes:   cfg.Fetch.MaxBytes,
	}, cache, log.WithField("component", "fetch"))

	resolver := source.NewResolver(fetcher, source.Resources{Dirs: cfg.Marker.ResourceDirs}, log.WithField("component", "resolver"))
	a.Fonts = imaging.NewFontRegistry(log.WithField("component", "fonts"), cfg.Marker.FontDirs...)

	margins := imaging.LegacyMargins
	if !cfg.Marker.LegacyMargins {
		margins = imaging.SymmetricMargins
	}
	a.Service = marker.NewService(resolver, a.Fonts, marker.Options{
		Workers:   cfg.Marker.Workers,
		Margins:   margins,
		MaxPixels: cfg.Marker.MaxPixels,
	}, log.WithField("component", "marker"))

	return a, nil
}

// fetchCache picks the body cache. An unreachable Redis falls back to the
// in-memory cache.
func (a *App) fetchCache() (source.Cache, error) {
	cfg := a.Config
	switch cfg.Fetch.Cache {
	case "none":
		return nil, nil
	case "memory":
		return source.NewMemoryCache(cfg.Fetch.CacheMaxBytes), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rc := source.NewRedisCache(client, cfg.Redis.Prefix, cfg.Redis.TTL)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			client.Close()
			a.Log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, using in-memory fetch cache")
			return source.NewMemoryCache(cfg.Fetch.CacheMaxBytes), nil
		}
		a.closers = append(a.closers, client.Close)
		a.Log.WithField("addr", cfg.Redis.Addr).Info("using redis fetch cache")
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown fetch cache %q", cfg.Fetch.Cache)
	}
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
