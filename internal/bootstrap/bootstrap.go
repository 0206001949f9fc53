// Package bootstrap wires the lookup engine from a shared.Config; every
// binary builds its dependencies through Build.
package bootstrap

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/adapters/booking"
	redisad "hotel_lookup/internal/adapters/redis"
	"hotel_lookup/internal/app"
	"hotel_lookup/internal/domain"
	"hotel_lookup/internal/shared"
	"hotel_lookup/internal/storage"
)

type Deps struct {
	Catalog  domain.CatalogClient
	Store    domain.HotelStore
	Cache    domain.Cache // nil without REDIS_ADDR
	Registry *app.Registry
	Local    *app.LocalCache
	Resolver *app.Resolver
	Info     *app.InfoService

	closers []io.Closer
}

func Build(ctx context.Context, cfg shared.Config) (*Deps, error) {
	places, err := shared.LoadPlaces(cfg.PlacesFile)
	if err != nil {
		return nil, err
	}

	d := &Deps{Catalog: booking.New(cfg.BookingBase, cfg.BookingUser, cfg.BookingPass, cfg.BookingRPS)}

	store, closer, err := storage.Open(cfg.Store, cfg.SQLitePath, cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	d.Store = store
	d.closers = append(d.closers, closer)

	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without cache")
			_ = rc.Close()
		} else {
			d.Cache = rc
			d.closers = append(d.closers, rc)
		}
	}

	d.Registry = app.NewRegistry(places, d.Catalog, d.Cache)
	d.Local = app.NewLocalCache(d.Store, d.Registry, d.Catalog)
	d.Resolver = app.NewResolver(d.Local, cfg.StrictFuzzy)
	d.Info = app.NewInfoService(d.Resolver, d.Registry, d.Catalog, d.Cache, cfg.CacheTTL)
	return d, nil
}

func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
