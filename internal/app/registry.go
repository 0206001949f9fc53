package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/domain"
)

// Registry maps place labels to remote PlaceIDs. The known table comes from
// configuration and grows as ResolvePlaceID discovers new places.
type Registry struct {
	mu      sync.RWMutex
	known   map[string]domain.PlaceID
	catalog domain.CatalogClient
	cache   domain.Cache // optional
}

func NewRegistry(places map[string]domain.PlaceID, c domain.CatalogClient, cache domain.Cache) *Registry {
	known := make(map[string]domain.PlaceID, len(places))
	for label, id := range places {
		known[domain.NormalizeLabel(label)] = id
	}
	return &Registry{known: known, catalog: c, cache: cache}
}

// Lookup consults the known table only. It never touches the network or a cache.
func (r *Registry) Lookup(label string) (domain.Place, error) {
	key := domain.NormalizeLabel(label)
	r.mu.RLock()
	id, ok := r.known[key]
	r.mu.RUnlock()
	if !ok {
		return domain.Place{}, fmt.Errorf("%q: %w", label, domain.ErrUnknownPlace)
	}
	return domain.Place{Label: key, ID: id}, nil
}

func (r *Registry) Register(label string, id domain.PlaceID) {
	r.mu.Lock()
	r.known[domain.NormalizeLabel(label)] = id
	r.mu.Unlock()
}

// Places lists the known table sorted by label.
func (r *Registry) Places() []domain.Place {
	r.mu.RLock()
	out := make([]domain.Place, 0, len(r.known))
	for label, id := range r.known {
		out = append(out, domain.Place{Label: label, ID: id})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func placeKey(country, label string) string {
	return fmt.Sprintf("place:%s:%s", strings.ToLower(country), domain.NormalizeLabel(label))
}

// ResolvePlaceID finds the id for label, scanning the country's cities page by
// page when it is not already known. The first city whose name starts with
// label (case-insensitive) wins.
func (r *Registry) ResolvePlaceID(ctx context.Context, label, country string) (domain.PlaceID, error) {
	if p, err := r.Lookup(label); err == nil {
		return p.ID, nil
	}

	key := placeKey(country, label)
	if r.cache != nil {
		var id domain.PlaceID
		if ok, err := r.cache.Get(ctx, key, &id); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("place cache read failed")
		} else if ok {
			r.Register(label, id)
			return id, nil
		}
	}

	prefix := strings.ToLower(strings.TrimSpace(label))
	pages := CityPages(r.catalog, country)
	for {
		cities, err := pages.Next(ctx)
		if err != nil {
			return 0, fmt.Errorf("scan cities of %q: %w", country, err)
		}
		if len(cities) == 0 {
			break
		}
		for _, c := range cities {
			if strings.HasPrefix(strings.ToLower(c.Name), prefix) {
				log.Info().Str("label", label).Str("city", c.Name).Int64("id", int64(c.ID)).Msg("place id found")
				r.Register(label, c.ID)
				if r.cache != nil {
					if err := r.cache.Set(ctx, key, c.ID, 0); err != nil {
						log.Warn().Err(err).Str("key", key).Msg("place cache write failed")
					}
				}
				return c.ID, nil
			}
		}
		log.Debug().Str("label", label).Int("offset", pages.Offset()).Msg("place not on this page, paging on")
	}
	log.Info().Str("label", label).Str("country", country).Msg("finished city scan without a match")
	return 0, fmt.Errorf("place %q in %q: %w", label, country, domain.ErrNotFound)
}
