package app_test

import (
	"context"
	"errors"
	"testing"

	"hotel_lookup/internal/app"
	"hotel_lookup/internal/domain"
)

func collect(t *testing.T, p *app.Pager[domain.HotelRecord]) [][]domain.HotelRecord {
	t.Helper()
	var pages [][]domain.HotelRecord
	for {
		pg, err := p.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if len(pg) == 0 {
			return pages
		}
		pages = append(pages, pg)
	}
}

func TestPager_1500RecordsTwoPages(t *testing.T) {
	fc := newFakeCatalog()
	fc.hotels[madrid] = hotels(1500)

	p := app.HotelPages(fc, madrid)
	pages := collect(t, p)

	if len(pages) != 2 || len(pages[0]) != 1000 || len(pages[1]) != 500 {
		t.Fatalf("unexpected pages: %d", len(pages))
	}
	if fc.hotelCalls != 2 {
		t.Fatalf("expected 2 fetches, got %d", fc.hotelCalls)
	}

	// exhausted pagers never fetch again
	if pg, err := p.Next(context.Background()); len(pg) != 0 || err != nil {
		t.Fatalf("expected empty page after end, got %d rows, %v", len(pg), err)
	}
	if fc.hotelCalls != 2 {
		t.Fatalf("exhausted pager fetched again: %d calls", fc.hotelCalls)
	}
}

func TestPager_ExactMultipleEndsOnEmptyPage(t *testing.T) {
	fc := newFakeCatalog()
	fc.hotels[madrid] = hotels(2000)

	pages := collect(t, app.HotelPages(fc, madrid))
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if fc.hotelCalls != 3 {
		t.Fatalf("expected a third (empty) fetch, got %d calls", fc.hotelCalls)
	}
}

func TestPager_OffsetsAdvanceByPageSize(t *testing.T) {
	var offsets []int
	p := app.NewPager(func(ctx context.Context, offset int) ([]int, error) {
		offsets = append(offsets, offset)
		if offset >= 3*app.PageSize {
			return nil, nil
		}
		return make([]int, app.PageSize), nil
	})
	for {
		pg, _ := p.Next(context.Background())
		if len(pg) == 0 {
			break
		}
	}
	want := []int{0, 1000, 2000, 3000}
	if len(offsets) != len(want) {
		t.Fatalf("offsets %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets %v, want %v", offsets, want)
		}
	}
}

func TestPager_ErrorEndsSequence(t *testing.T) {
	fc := newFakeCatalog()
	fc.err = &domain.TransportError{Endpoint: "getHotels", Status: 500}

	p := app.HotelPages(fc, madrid)
	_, err := p.Next(context.Background())
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !p.Done() {
		t.Fatalf("pager should be done after an error")
	}
	if pg, err := p.Next(context.Background()); pg != nil || err != nil || fc.hotelCalls != 1 {
		t.Fatalf("failed pager must not restart")
	}
}
