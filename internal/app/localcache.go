package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_lookup/internal/adapters/observability"
	"hotel_lookup/internal/domain"
)

// LocalCache keeps one hotel_id -> name table per place and rebuilds it from
// the remote catalog whenever it is missing or empty.
type LocalCache struct {
	store   domain.HotelStore
	places  *Registry
	catalog domain.CatalogClient
	flight  singleflight.Group
}

func NewLocalCache(s domain.HotelStore, r *Registry, c domain.CatalogClient) *LocalCache {
	return &LocalCache{store: s, places: r, catalog: c}
}

// EnsurePopulated rebuilds the place's table if it is absent or empty.
// Concurrent calls for one place share a single rebuild.
func (c *LocalCache) EnsurePopulated(ctx context.Context, label string) error {
	p, err := c.places.Lookup(label)
	if err != nil {
		return err
	}
	_, err = c.shared(ctx, p, func(ctx context.Context) (int, error) {
		n, err := c.store.Count(ctx, p.Table())
		switch {
		case errors.Is(err, domain.ErrTableNotFound):
			log.Info().Str("place", p.Label).Msg("no lookup table, storing hotel lookups")
		case err != nil:
			return 0, err
		case n == 0:
			log.Info().Str("place", p.Label).Msg("lookup table empty, storing hotel lookups")
		default:
			return n, nil
		}
		return c.populate(ctx, p)
	})
	return err
}

// Populate forces a full re-fetch of the place's hotels, upserting every
// record. It returns the number of records fetched, or the row count of a
// rebuild already in flight that it joined.
func (c *LocalCache) Populate(ctx context.Context, label string) (int, error) {
	p, err := c.places.Lookup(label)
	if err != nil {
		return 0, err
	}
	return c.shared(ctx, p, func(ctx context.Context) (int, error) { return c.populate(ctx, p) })
}

// shared runs fn once per place at a time. The run is detached from the
// caller's cancellation so a dropped request cannot cut a rebuild short for
// the callers sharing it; ctx only bounds how long this caller waits.
func (c *LocalCache) shared(ctx context.Context, p domain.Place, fn func(context.Context) (int, error)) (int, error) {
	run := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(p.Label, func() (any, error) { return fn(run) })
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		n, _ := res.Val.(int)
		return n, nil
	}
}

// populate fetches every page and upserts it. On failure the table is
// dropped: a partial table is not empty, so it would never be seen as stale.
func (c *LocalCache) populate(ctx context.Context, p domain.Place) (n int, err error) {
	defer func() { observability.ObservePopulation(n, err) }()

	table := p.Table()
	if err := c.store.CreateTable(ctx, table); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if dropErr := c.store.DropTable(ctx, table); dropErr != nil {
			log.Error().Err(dropErr).Str("table", table).Msg("drop partial lookup table failed")
			return
		}
		log.Warn().Str("place", p.Label).Int("discarded", n).Msg("population failed, lookup table dropped")
	}()

	pages := HotelPages(c.catalog, p.ID)
	for {
		hotels, err := pages.Next(ctx)
		if err != nil {
			return n, fmt.Errorf("fetch hotels of %s: %w", p.Label, err)
		}
		if len(hotels) == 0 {
			break
		}
		if err := c.store.Upsert(ctx, table, hotels); err != nil {
			return n, fmt.Errorf("upsert into %s: %w", table, err)
		}
		n += len(hotels)
		log.Debug().Str("place", p.Label).Int("stored", n).Msg("stored hotel page")
	}
	log.Info().Str("place", p.Label).Int("hotels", n).Msg("finished store hotels")
	return n, nil
}

// ExactLookup matches pattern (LIKE syntax) against stored names.
func (c *LocalCache) ExactLookup(ctx context.Context, label, pattern string) ([]domain.HotelRecord, error) {
	p, err := c.places.Lookup(label)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("table", p.Table()).Str("pattern", pattern).Msg("select hotel_id")
	return c.store.Match(ctx, p.Table(), pattern)
}

// Dump returns every cached row of the place in hotel_id order.
func (c *LocalCache) Dump(ctx context.Context, label string) ([]domain.HotelRecord, error) {
	p, err := c.places.Lookup(label)
	if err != nil {
		return nil, err
	}
	return c.store.All(ctx, p.Table())
}
