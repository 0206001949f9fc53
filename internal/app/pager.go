package app

import (
	"context"

	"hotel_lookup/internal/domain"
)

// PageSize is the remote catalog's fixed page step.
const PageSize = 1000

// PageFunc fetches one page of records starting at offset.
type PageFunc[T any] func(ctx context.Context, offset int) ([]T, error)

// Pager walks a remote listing one page at a time. It is lazy and cannot be
// rewound: once it has seen an empty or short page, or an error, every
// further Next returns an empty page without fetching.
type Pager[T any] struct {
	fetch  PageFunc[T]
	offset int
	done   bool
}

func NewPager[T any](fetch PageFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

// Next returns the next non-empty page, or an empty page when the listing is
// exhausted.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}
	page, err := p.fetch(ctx, p.offset)
	if err != nil {
		p.done = true
		return nil, err
	}
	if len(page) == 0 {
		p.done = true
		return nil, nil
	}
	p.offset += PageSize
	if len(page) < PageSize {
		p.done = true
	}
	return page, nil
}

// Offset is the offset the next fetch would use.
func (p *Pager[T]) Offset() int { return p.offset }

// Done reports whether the listing has ended.
func (p *Pager[T]) Done() bool { return p.done }

// CityPages pages through every city of a country.
func CityPages(c domain.CatalogClient, country string) *Pager[domain.City] {
	return NewPager(func(ctx context.Context, offset int) ([]domain.City, error) {
		return c.ListCities(ctx, country, offset)
	})
}

// HotelPages pages through every hotel of a place.
func HotelPages(c domain.CatalogClient, place domain.PlaceID) *Pager[domain.HotelRecord] {
	return NewPager(func(ctx context.Context, offset int) ([]domain.HotelRecord, error) {
		return c.ListHotels(ctx, place, offset)
	})
}
