package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/domain"
)

// InfoService resolves a hotel name and fetches its remote detail payload.
type InfoService struct {
	resolver *Resolver
	places   *Registry
	catalog  domain.CatalogClient
	cache    domain.Cache // optional
	cacheTTL time.Duration
}

func NewInfoService(r *Resolver, p *Registry, c domain.CatalogClient, cache domain.Cache, ttl time.Duration) *InfoService {
	return &InfoService{resolver: r, places: p, catalog: c, cache: cache, cacheTTL: ttl}
}

func (s *InfoService) HotelInfo(ctx context.Context, q domain.Query) (domain.HotelInfo, error) {
	m, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return domain.HotelInfo{}, err
	}
	log.Info().Int64("hotel_id", m.Hotel.ID).Str("hotel", q.Text).Str("strategy", m.Strategy).Msg("found hotel_id")

	p, err := s.places.Lookup(q.Place)
	if err != nil {
		return domain.HotelInfo{}, err
	}

	key := fmt.Sprintf("hotel:%d:%d", p.ID, m.Hotel.ID)
	var details json.RawMessage
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &details); ok {
			return domain.HotelInfo{Match: m, Details: details}, nil
		}
	}
	details, err = s.catalog.HotelDetails(ctx, p.ID, m.Hotel.ID)
	if err != nil {
		return domain.HotelInfo{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, details, int(s.cacheTTL.Seconds()))
	}
	return domain.HotelInfo{Match: m, Details: details}, nil
}
