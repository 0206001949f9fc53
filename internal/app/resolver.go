package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/adapters/observability"
	"hotel_lookup/internal/domain"
)

// Resolver turns free-text hotel names into hotel ids using the local cache.
type Resolver struct {
	cache *LocalCache
	// StrictFuzzy makes a fuzzy strategy that matches several hotels fail with
	// AmbiguousError instead of returning the lowest hotel_id.
	StrictFuzzy bool
}

func NewResolver(c *LocalCache, strictFuzzy bool) *Resolver {
	return &Resolver{cache: c, StrictFuzzy: strictFuzzy}
}

// Resolve runs the exact pass and, when it finds nothing and q.Fuzzy is set,
// the fuzzy cascade. Several exact matches are always an *AmbiguousError.
func (r *Resolver) Resolve(ctx context.Context, q domain.Query) (m domain.Match, err error) {
	strategy := "exact"
	defer func() { observability.ObserveResolution(strategy, outcome(err)) }()

	if err := r.cache.EnsurePopulated(ctx, q.Place); err != nil {
		return domain.Match{}, err
	}

	rows, err := r.cache.ExactLookup(ctx, q.Place, exactPattern(q.Text))
	if err != nil {
		return domain.Match{}, err
	}
	switch {
	case len(rows) == 1:
		return domain.Match{Hotel: rows[0], Strategy: strategy}, nil
	case len(rows) > 1:
		log.Warn().Str("hotel", q.Text).Int("candidates", len(rows)).
			Msg("too many candidates, consider a more specific hotel name")
		return domain.Match{}, &domain.AmbiguousError{Query: q.Text, Candidates: rows}
	case !q.Fuzzy:
		log.Debug().Str("hotel", q.Text).Msg("found 0 matches")
		return domain.Match{}, fmt.Errorf("hotel %q in %s: %w", q.Text, q.Place, domain.ErrNotFound)
	}

	log.Debug().Str("hotel", q.Text).Msg("found 0 matches, trying fuzzier patterns")
	for _, s := range FuzzyCascade {
		strategy = s.Name
		pattern := s.Pattern(q.Text)
		if !constrains(pattern) {
			log.Debug().Str("strategy", s.Name).Str("pattern", pattern).Msg("pattern matches everything, skipped")
			continue
		}
		rows, err := r.cache.ExactLookup(ctx, q.Place, pattern)
		if err != nil {
			return domain.Match{}, err
		}
		if len(rows) == 0 {
			continue
		}
		if len(rows) > 1 {
			if r.StrictFuzzy {
				return domain.Match{}, &domain.AmbiguousError{Query: q.Text, Candidates: rows}
			}
			log.Debug().Str("strategy", s.Name).Int("candidates", len(rows)).Msg("fuzzy match not unique, taking lowest hotel_id")
		}
		return domain.Match{Hotel: rows[0], Strategy: s.Name}, nil
	}
	strategy = "fuzzy"
	return domain.Match{}, fmt.Errorf("hotel %q in %s: %w", q.Text, q.Place, domain.ErrNotFound)
}

// ResolveHotelID is Resolve reduced to the hotel id.
func (r *Resolver) ResolveHotelID(ctx context.Context, q domain.Query) (int64, error) {
	m, err := r.Resolve(ctx, q)
	if err != nil {
		return 0, err
	}
	return m.Hotel.ID, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, domain.ErrAmbiguous):
		return "ambiguous"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnknownPlace):
		return "unknown_place"
	default:
		return "error"
	}
}
